package auth

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

const (
	MsgEmailPasswordRequired = "Email and password required"
	MsgInvalidCredentials    = "Invalid credentials"
	MsgTooManyAttempts       = "Too many login attempts, try again later"
	MsgLoginSuccess          = "Login successful"
)

// HTTPAuthenticator is the surface the controller needs from the route
// authenticator.
type HTTPAuthenticator interface {
	Login(ctx router.Context, payload LoginPayload) (string, error)
	ProtectedRoute(minRole UserRole) router.MiddlewareFunc
}

// RegisterAuthRoutes mounts the authentication endpoints:
//
//	POST /auth/login     credential verification, token issuance
//	GET  /auth/verify    token verification, returns the current user
//	POST /auth/register  admin-gated account creation
func RegisterAuthRoutes[T any](app router.Router[T], opts ...AuthControllerOption) {
	controller := NewAuthController(opts...)

	app.Post(controller.Routes.Login, controller.LoginPost).
		SetName("auth.login.post")

	app.Get(
		controller.Routes.Verify,
		controller.VerifyGet,
		controller.Auther.ProtectedRoute(RoleUser),
	).SetName("auth.verify.get")

	app.Post(
		controller.Routes.Register,
		controller.RegistrationCreate,
		controller.Auther.ProtectedRoute(RoleAdmin),
	).SetName("auth.register.post")
}

type AuthControllerRoutes struct {
	Login    string
	Verify   string
	Register string
}

type AuthController struct {
	Debug    bool
	Logger   Logger
	Repo     RepositoryManager
	Routes   *AuthControllerRoutes
	Auther   HTTPAuthenticator
	Register *RegisterUserHandler
}

type AuthControllerOption func(*AuthController) *AuthController

func WithControllerLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

func WithControllerRepo(repo RepositoryManager) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Repo = repo
		return c
	}
}

func WithControllerAuther(auther HTTPAuthenticator) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Auther = auther
		return c
	}
}

func WithControllerDebug(debug bool) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Debug = debug
		return c
	}
}

func WithControllerRegisterHandler(handler *RegisterUserHandler) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Register = handler
		return c
	}
}

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger: defLogger{},
		Routes: &AuthControllerRoutes{
			Login:    "/auth/login",
			Verify:   "/auth/verify",
			Register: "/auth/register",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in auth controller...")
	}

	if c.Auther == nil {
		panic("Missing HTTPAuthenticator in auth controller...")
	}

	if c.Register == nil {
		c.Register = NewRegisterUserHandler(c.Repo)
	}

	return c
}

// LoginRequest payload
type LoginRequest struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// GetIdentifier returns the login identifier, the account email
func (r LoginRequest) GetIdentifier() string {
	return r.Email
}

// GetPassword will return the password
func (r LoginRequest) GetPassword() string {
	return r.Password
}

// Validate will run validation rules. Both fields are only checked for
// presence; a malformed email fails the credential lookup downstream
// and surfaces as invalid credentials, not as a validation error.
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Email,
			validation.Required,
		),
		validation.Field(
			&r.Password,
			validation.Required,
		),
	)
}

// LoginResponse is the success body for POST /auth/login.
type LoginResponse struct {
	Message string     `json:"message"`
	Token   string     `json:"token"`
	User    PublicUser `json:"user"`
}

func (a *AuthController) LoginPost(ctx router.Context) error {
	payload := new(LoginRequest)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("Login bind error", "error", err)
		return ctx.JSON(router.StatusBadRequest, ErrorResponse{Error: MsgEmailPasswordRequired})
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(router.StatusBadRequest, ErrorResponse{Error: MsgEmailPasswordRequired})
	}

	if a.Debug {
		a.Logger.Debug("auth login request", "payload", print.MaybePrettyJSON(payload))
	}

	token, err := a.Auther.Login(ctx, payload)
	if err != nil {
		return a.loginError(ctx, err)
	}

	user, err := a.Repo.Users().FindByEmail(ctx.Context(), payload.Email)
	if err != nil {
		a.Logger.Error("Login user fetch error", "error", err)
		return ctx.JSON(router.StatusInternalServerError, ErrorResponse{Error: MsgServerError})
	}

	return ctx.JSON(router.StatusOK, LoginResponse{
		Message: MsgLoginSuccess,
		Token:   token,
		User:    user.Public(),
	})
}

// loginError flattens credential failures into the external contract.
// Wrong password, unknown email, and deactivated account are one and
// the same on the wire.
func (a *AuthController) loginError(ctx router.Context, err error) error {
	if errors.Is(err, ErrTooManyLoginAttempts) {
		return ctx.JSON(router.StatusTooManyRequests, ErrorResponse{Error: MsgTooManyAttempts})
	}

	var rich *errors.Error
	if errors.As(err, &rich) && rich.Category == errors.CategoryInternal {
		return ctx.JSON(router.StatusInternalServerError, ErrorResponse{Error: MsgServerError})
	}

	return ctx.JSON(router.StatusBadRequest, ErrorResponse{Error: MsgInvalidCredentials})
}

// VerifyGet returns the authenticated user. The guard has already
// validated the token and resolved the subject, so this is a read of
// what the middleware attached.
func (a *AuthController) VerifyGet(ctx router.Context) error {
	user, ok := GetRouterUser(ctx)
	if !ok {
		a.Logger.Error("Verify reached without a resolved user")
		return ctx.JSON(router.StatusUnauthorized, ErrorResponse{Error: MsgTokenInvalid})
	}

	return ctx.JSON(router.StatusOK, user.Public())
}

// RegisterRequest payload
type RegisterRequest struct {
	Name         string `form:"name" json:"name"`
	Email        string `form:"email" json:"email"`
	Password     string `form:"password" json:"password"`
	Role         string `form:"role" json:"role"`
	RestaurantID string `form:"restaurant_id" json:"restaurant_id"`
}

// Validate will run validation rules
func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Email,
			validation.Required,
			is.Email,
		),
		validation.Field(
			&r.Password,
			validation.Required,
			validation.Length(8, 0),
		),
		validation.Field(
			&r.RestaurantID,
			is.UUIDv4,
		),
	)
}

// RegisterResponse is the success body for POST /auth/register.
type RegisterResponse struct {
	Message string     `json:"message"`
	User    PublicUser `json:"user"`
}

func (a *AuthController) RegistrationCreate(ctx router.Context) error {
	payload := new(RegisterRequest)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("Register bind error", "error", err)
		return ctx.JSON(router.StatusBadRequest, ErrorResponse{Error: "Invalid registration payload"})
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(router.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}

	msg := RegisterUserMessage{
		Name:         payload.Name,
		Email:        payload.Email,
		Password:     payload.Password,
		Role:         payload.Role,
		RestaurantID: payload.RestaurantID,
		UseHashid:    true,
	}

	if err := a.Register.Execute(ctx.Context(), msg); err != nil {
		a.Logger.Error("Register execute error", "error", err)

		var rich *errors.Error
		if errors.As(err, &rich) && rich.Category == errors.CategoryConflict {
			return ctx.JSON(router.StatusConflict, ErrorResponse{Error: "Account already exists"})
		}

		return ctx.JSON(router.StatusInternalServerError, ErrorResponse{Error: MsgServerError})
	}

	user, err := a.Repo.Users().FindByEmail(ctx.Context(), payload.Email)
	if err != nil {
		a.Logger.Error("Register user fetch error", "error", err)
		return ctx.JSON(router.StatusInternalServerError, ErrorResponse{Error: MsgServerError})
	}

	return ctx.JSON(router.StatusCreated, RegisterResponse{
		Message: "Account created",
		User:    user.Public(),
	})
}
