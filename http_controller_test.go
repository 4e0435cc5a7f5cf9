package auth_test

import (
	"context"
	"testing"

	auth "github.com/BrayanMorningstar237/waiter-backend-sub001"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// fakeUsers overrides the lookups the controller touches; everything
// else panics through the embedded nil interface.
type fakeUsers struct {
	auth.Users
	byEmail map[string]*auth.User
}

func (f *fakeUsers) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	if user, ok := f.byEmail[email]; ok {
		return user, nil
	}
	return nil, goerrors.New("record not found", goerrors.CategoryNotFound)
}

type fakeRepoManager struct {
	auth.RepositoryManager
	users *fakeUsers
}

func (f *fakeRepoManager) Users() auth.Users { return f.users }

func newFakeRepo(users ...*auth.User) *fakeRepoManager {
	byEmail := map[string]*auth.User{}
	for _, user := range users {
		byEmail[user.Email] = user
	}
	return &fakeRepoManager{users: &fakeUsers{byEmail: byEmail}}
}

// stubHTTPAuth returns canned login results and pass-through guards.
type stubHTTPAuth struct {
	token string
	err   error
}

func (s stubHTTPAuth) Login(ctx router.Context, payload auth.LoginPayload) (string, error) {
	return s.token, s.err
}

func (s stubHTTPAuth) ProtectedRoute(minRole auth.UserRole) router.MiddlewareFunc {
	return func(hf router.HandlerFunc) router.HandlerFunc {
		return hf
	}
}

func newController(repo auth.RepositoryManager, auther auth.HTTPAuthenticator) *auth.AuthController {
	return auth.NewAuthController(
		auth.WithControllerRepo(repo),
		auth.WithControllerAuther(auther),
	)
}

func bindLogin(mctx *MockContext, email, password string) {
	mctx.On("Bind", mock.AnythingOfType("*auth.LoginRequest")).
		Run(func(args mock.Arguments) {
			payload := args.Get(0).(*auth.LoginRequest)
			payload.Email = email
			payload.Password = password
		}).
		Return(nil)
}

func TestLoginPost(t *testing.T) {
	t.Run("success returns token and user", func(t *testing.T) {
		user := activeUser(t, "secret-pass")
		controller := newController(newFakeRepo(user), stubHTTPAuth{token: "signed.jwt.token"})

		mctx := new(MockContext)
		bindLogin(mctx, user.Email, "secret-pass")
		mctx.On("Context").Return(context.Background())
		mctx.On("JSON", router.StatusOK, auth.LoginResponse{
			Message: auth.MsgLoginSuccess,
			Token:   "signed.jwt.token",
			User:    user.Public(),
		}).Return(nil)

		require.NoError(t, controller.LoginPost(mctx))
		mctx.AssertExpectations(t)
	})

	t.Run("missing fields", func(t *testing.T) {
		controller := newController(newFakeRepo(), stubHTTPAuth{})

		for name, creds := range map[string][2]string{
			"no email":    {"", "secret-pass"},
			"no password": {"grace@plates.test", ""},
			"neither":     {"", ""},
		} {
			t.Run(name, func(t *testing.T) {
				mctx := new(MockContext)
				bindLogin(mctx, creds[0], creds[1])
				mctx.On("JSON", router.StatusBadRequest, auth.ErrorResponse{Error: auth.MsgEmailPasswordRequired}).Return(nil)

				require.NoError(t, controller.LoginPost(mctx))
				mctx.AssertExpectations(t)
			})
		}
	})

	t.Run("bind failure", func(t *testing.T) {
		controller := newController(newFakeRepo(), stubHTTPAuth{})

		mctx := new(MockContext)
		mctx.On("Bind", mock.Anything).Return(goerrors.New("bad payload", goerrors.CategoryBadInput))
		mctx.On("JSON", router.StatusBadRequest, auth.ErrorResponse{Error: auth.MsgEmailPasswordRequired}).Return(nil)

		require.NoError(t, controller.LoginPost(mctx))
		mctx.AssertExpectations(t)
	})

	t.Run("bad credentials flatten to one message", func(t *testing.T) {
		controller := newController(newFakeRepo(), stubHTTPAuth{err: auth.ErrInvalidCredentials})

		mctx := new(MockContext)
		bindLogin(mctx, "grace@plates.test", "wrong-pass")
		mctx.On("JSON", router.StatusBadRequest, auth.ErrorResponse{Error: auth.MsgInvalidCredentials}).Return(nil)

		require.NoError(t, controller.LoginPost(mctx))
		mctx.AssertExpectations(t)
	})

	t.Run("deactivated account is indistinguishable", func(t *testing.T) {
		controller := newController(newFakeRepo(), stubHTTPAuth{err: auth.ErrAccountDeactivated})

		mctx := new(MockContext)
		bindLogin(mctx, "grace@plates.test", "secret-pass")
		mctx.On("JSON", router.StatusBadRequest, auth.ErrorResponse{Error: auth.MsgInvalidCredentials}).Return(nil)

		require.NoError(t, controller.LoginPost(mctx))
		mctx.AssertExpectations(t)
	})

	t.Run("throttled account", func(t *testing.T) {
		controller := newController(newFakeRepo(), stubHTTPAuth{err: auth.ErrTooManyLoginAttempts})

		mctx := new(MockContext)
		bindLogin(mctx, "grace@plates.test", "secret-pass")
		mctx.On("JSON", router.StatusTooManyRequests, auth.ErrorResponse{Error: auth.MsgTooManyAttempts}).Return(nil)

		require.NoError(t, controller.LoginPost(mctx))
		mctx.AssertExpectations(t)
	})

	t.Run("upstream failure is a server error", func(t *testing.T) {
		controller := newController(newFakeRepo(), stubHTTPAuth{err: auth.ErrUpstreamFailure})

		mctx := new(MockContext)
		bindLogin(mctx, "grace@plates.test", "secret-pass")
		mctx.On("JSON", router.StatusInternalServerError, auth.ErrorResponse{Error: auth.MsgServerError}).Return(nil)

		require.NoError(t, controller.LoginPost(mctx))
		mctx.AssertExpectations(t)
	})
}

func TestVerifyGet(t *testing.T) {
	t.Run("returns the resolved user", func(t *testing.T) {
		user := activeUser(t, "secret-pass")
		controller := newController(newFakeRepo(user), stubHTTPAuth{})

		mctx := new(MockContext)
		mctx.On("Locals", "current_user").Return(user)
		mctx.On("JSON", router.StatusOK, user.Public()).Return(nil)

		require.NoError(t, controller.VerifyGet(mctx))
		mctx.AssertExpectations(t)
	})

	t.Run("guard bypass leaves no user", func(t *testing.T) {
		controller := newController(newFakeRepo(), stubHTTPAuth{})

		mctx := new(MockContext)
		mctx.On("Locals", "current_user").Return(nil)
		mctx.On("JSON", router.StatusUnauthorized, auth.ErrorResponse{Error: auth.MsgTokenInvalid}).Return(nil)

		require.NoError(t, controller.VerifyGet(mctx))
		mctx.AssertExpectations(t)
	})
}

func TestNewAuthControllerPanics(t *testing.T) {
	assert.Panics(t, func() {
		auth.NewAuthController(auth.WithControllerAuther(stubHTTPAuth{}))
	})
	assert.Panics(t, func() {
		auth.NewAuthController(auth.WithControllerRepo(newFakeRepo()))
	})
}

func TestRegisterRequestValidate(t *testing.T) {
	valid := auth.RegisterRequest{
		Name:         "Grace",
		Email:        "grace@plates.test",
		Password:     "long-enough-pass",
		Role:         "user",
		RestaurantID: "c2957bd0-0000-4000-8000-00000000000b",
	}
	assert.NoError(t, valid.Validate())

	t.Run("rejects short passwords", func(t *testing.T) {
		bad := valid
		bad.Password = "short"
		assert.Error(t, bad.Validate())
	})

	t.Run("rejects malformed email", func(t *testing.T) {
		bad := valid
		bad.Email = "not-an-email"
		assert.Error(t, bad.Validate())
	})

	t.Run("rejects malformed restaurant id", func(t *testing.T) {
		bad := valid
		bad.RestaurantID = "not-a-uuid"
		assert.Error(t, bad.Validate())
	})
}
