package auth

import (
	"context"

	"github.com/BrayanMorningstar237/waiter-backend-sub001/middleware/jwtware"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// External response bodies. Verification failures collapse into a
// single message on the wire; the audit trail keeps the real kind.
const (
	MsgNoToken            = "No token, authorization denied"
	MsgTokenInvalid       = "Token invalid"
	MsgAdminRequired      = "Admin access required"
	MsgSuperAdminRequired = "Super admin access required"
	MsgServerError        = "Server error"
)

// ErrorResponse is the JSON error envelope for every auth endpoint.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ClaimsResolver resolves validated claims to a live user record.
type ClaimsResolver interface {
	ResolveClaims(ctx context.Context, claims AuthClaims) (*User, error)
}

type accessDeniedRecorder interface {
	RecordAccessDenied(ctx context.Context, user *User, required UserRole)
}

// RouteAuthenticator wires the authenticator into HTTP routes: a guard
// middleware for protected endpoints plus the shared error handler that
// flattens failure kinds into the external contract.
type RouteAuthenticator struct {
	auth             Authenticator
	cfg              Config
	tokens           TokenService
	resolver         ClaimsResolver
	Logger           Logger
	AuthErrorHandler func(c router.Context, err error) error
}

func NewHTTPAuthenticator(auther Authenticator, cfg Config) (*RouteAuthenticator, error) {
	a := &RouteAuthenticator{
		cfg:    cfg,
		auth:   auther,
		Logger: defLogger{},
	}

	if provider, ok := auther.(interface{ TokenService() TokenService }); ok {
		a.tokens = provider.TokenService()
	} else {
		a.tokens = NewTokenService(
			[]byte(cfg.GetSigningKey()),
			cfg.GetTokenExpiration(),
			cfg.GetIssuer(),
			cfg.GetAudience(),
			defLogger{},
		)
	}

	if resolver, ok := auther.(ClaimsResolver); ok {
		a.resolver = resolver
	}

	a.AuthErrorHandler = a.defaultAuthErrHandler

	return a, nil
}

func (a *RouteAuthenticator) WithLogger(logger Logger) *RouteAuthenticator {
	if logger != nil {
		a.Logger = logger
	}
	return a
}

// ProtectedRoute guards a route: token extraction, validation, subject
// resolution, then the role check against the live record. The role is
// checked on the resolved user, not the claims, so demotions take
// effect on the next request without waiting for token expiry.
func (a *RouteAuthenticator) ProtectedRoute(minRole UserRole) router.MiddlewareFunc {
	cfg := jwtware.Config{
		ErrorHandler:   a.AuthErrorHandler,
		TokenValidator: tokenValidatorAdapter{tokens: a.tokens},
		SigningKey: jwtware.SigningKey{
			Key:    []byte(a.cfg.GetSigningKey()),
			JWTAlg: a.cfg.GetSigningMethod(),
		},
		AuthScheme:      a.cfg.GetAuthScheme(),
		ContextKey:      a.cfg.GetContextKey(),
		TokenLookup:     a.cfg.GetTokenLookup(),
		ContextEnricher: ContextEnricherAdapter,
	}

	RegisterValidationListeners(&cfg, a.resolveAndAuthorize(minRole))

	return jwtware.New(cfg)
}

// Login verifies the payload credentials and returns a session token.
func (a *RouteAuthenticator) Login(ctx router.Context, payload LoginPayload) (string, error) {
	token, err := a.auth.Login(ctx.Context(), payload.GetIdentifier(), payload.GetPassword())
	if err != nil {
		a.Logger.Error("Login error", "error", err, "kind", FailureKind(err))
		return "", err
	}

	return token, nil
}

// MakeClientRouteAuthErrorHandler returns an error handler for routes
// where authentication is optional: failures log and fall through to
// the next handler instead of rejecting the request.
func (a *RouteAuthenticator) MakeClientRouteAuthErrorHandler(optional bool) func(router.Context, error) error {
	return func(ctx router.Context, err error) error {
		if optional {
			a.Logger.Info("Optional auth failed, proceeding", "kind", FailureKind(err))
			return ctx.Next()
		}

		return a.AuthErrorHandler(ctx, err)
	}
}

// resolveAndAuthorize is the guard core: resolve the token subject to a
// live record, then check role dominance.
func (a *RouteAuthenticator) resolveAndAuthorize(minRole UserRole) ValidationListener {
	return func(ctx router.Context, claims jwtware.AuthClaims) error {
		if a.resolver == nil {
			a.Logger.Error("ProtectedRoute has no claims resolver configured")
			return ErrUpstreamFailure
		}

		authClaims, ok := claims.(AuthClaims)
		if !ok {
			return ErrTokenMalformed
		}

		user, err := a.resolver.ResolveClaims(ctx.Context(), authClaims)
		if err != nil {
			return err
		}

		if minRole != "" && !user.Role.IsAtLeast(minRole) {
			if recorder, ok := a.auth.(accessDeniedRecorder); ok {
				recorder.RecordAccessDenied(ctx.Context(), user, minRole)
			}
			return ErrInsufficientRole.Clone().WithMetadata(map[string]any{
				"required": string(minRole),
				"actual":   string(user.Role),
			})
		}

		ctx.Locals(currentUserKey, user)
		ctx.SetContext(WithContext(ctx.Context(), user))

		return nil
	}
}

// defaultAuthErrHandler maps internal failures to the external JSON
// contract: 401 for anything token-shaped, 403 for role failures, 500
// for upstream errors. Details never leak to the response body.
func (a *RouteAuthenticator) defaultAuthErrHandler(c router.Context, err error) error {
	kind := FailureKind(err)

	var rich *errors.Error
	if errors.As(err, &rich) {
		a.Logger.Info(
			"Auth guard rejected request",
			"kind", kind,
			"category", rich.Category,
			"path", c.OriginalURL(),
			"details", print.MaybePrettyJSON(rich.Metadata),
		)
	} else {
		a.Logger.Info("Auth guard rejected request", "error", err, "path", c.OriginalURL())
	}

	if errors.Is(err, jwtware.ErrTokenMissing) || kind == TextCodeTokenMissing {
		return c.JSON(router.StatusUnauthorized, ErrorResponse{Error: MsgNoToken})
	}

	if errors.Is(err, jwtware.ErrRoleRequired) || kind == TextCodeInsufficientRole {
		return c.JSON(router.StatusForbidden, ErrorResponse{Error: roleDeniedMessage(err)})
	}

	if IsVerificationFailure(err) {
		return c.JSON(router.StatusUnauthorized, ErrorResponse{Error: MsgTokenInvalid})
	}

	return c.JSON(router.StatusInternalServerError, ErrorResponse{Error: MsgServerError})
}

func roleDeniedMessage(err error) string {
	var rich *errors.Error
	if errors.As(err, &rich) && rich.Metadata != nil {
		if required, ok := rich.Metadata["required"].(string); ok {
			if UserRole(required) == RoleSuperAdmin {
				return MsgSuperAdminRequired
			}
		}
	}
	return MsgAdminRequired
}

// tokenValidatorAdapter lifts the TokenService into the middleware
// validator contract.
type tokenValidatorAdapter struct {
	tokens TokenService
}

func (t tokenValidatorAdapter) Validate(tokenString string) (jwtware.AuthClaims, error) {
	claims, err := t.tokens.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	return claims, nil
}
