package auth

import (
	"context"
	"reflect"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// Auther composes the credential verifier, the token issuer, and the
// token verifier. Each request is handled independently; the only
// shared state is the read-only signing configuration captured at
// construction.
type Auther struct {
	provider        IdentityProvider
	resolver        UserResolver
	signingKey      []byte
	tokenExpiration int
	issuer          string
	audience        []string
	logger          Logger
	tokenService    TokenService
	activitySink    ActivitySink
}

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(provider IdentityProvider, opts Config) *Auther {
	tokenService := NewTokenService(
		[]byte(opts.GetSigningKey()),
		opts.GetTokenExpiration(),
		opts.GetIssuer(),
		opts.GetAudience(),
		defLogger{},
	)

	a := &Auther{
		provider:        provider,
		signingKey:      []byte(opts.GetSigningKey()),
		tokenExpiration: opts.GetTokenExpiration(),
		audience:        opts.GetAudience(),
		issuer:          opts.GetIssuer(),
		logger:          defLogger{},
		tokenService:    tokenService,
		activitySink:    noopActivitySink{},
	}

	if resolver, ok := provider.(UserResolver); ok {
		a.resolver = resolver
	}

	return a
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	s.logger = logger
	s.tokenService = NewTokenService(
		s.signingKey,
		s.tokenExpiration,
		s.issuer,
		s.audience,
		logger,
	)
	return s
}

// WithUserResolver sets the resolver used to turn token subjects back
// into live user records.
func (s *Auther) WithUserResolver(resolver UserResolver) *Auther {
	s.resolver = resolver
	return s
}

// WithActivitySink configures an ActivitySink for emitting auth events.
func (s *Auther) WithActivitySink(sink ActivitySink) *Auther {
	s.activitySink = normalizeActivitySink(sink)
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// Login verifies the email/password pair and mints a session token for
// the resolved identity. Credential failures come back untouched so the
// caller cannot tell a missing account from a wrong password.
func (s *Auther) Login(ctx context.Context, email, password string) (string, error) {
	var err error
	var identity Identity

	if identity, err = s.provider.VerifyIdentity(ctx, email, password); err != nil {
		s.logger.Error("Login verify identity error", "error", err)
		s.emitAuthEvent(ctx, ActivityEventLoginFailure, ActorRef{Type: "unknown"}, "", map[string]any{
			"email": email,
			"kind":  FailureKind(err),
		})
		return "", err
	}

	if identity == nil || reflect.ValueOf(identity).IsZero() {
		s.logger.Error("Login identity is nil or zero value")
		s.emitAuthEvent(ctx, ActivityEventLoginFailure, ActorRef{Type: "unknown"}, "", map[string]any{
			"email": email,
			"kind":  TextCodeInvalidCredentials,
		})
		return "", ErrInvalidCredentials
	}

	token, err := s.tokenService.Generate(identity)
	if err != nil {
		s.emitAuthEvent(ctx, ActivityEventLoginFailure, s.actorFromIdentity(identity), identity.ID(), map[string]any{
			"email": email,
			"kind":  FailureKind(err),
		})
		return "", err
	}

	s.emitAuthEvent(ctx, ActivityEventLoginSuccess, s.actorFromIdentity(identity), identity.ID(), map[string]any{
		"email": email,
	})

	return token, nil
}

// VerifyToken runs the full verification pipeline against a raw token
// string: parse, signature, expiry, then subject resolution and the
// active-flag check. Every failure kind is distinguishable to callers
// inside the process; the HTTP layer flattens them.
func (s *Auther) VerifyToken(ctx context.Context, raw string) (*User, AuthClaims, error) {
	claims, err := s.tokenService.Validate(raw)
	if err != nil {
		s.emitAuthEvent(ctx, ActivityEventTokenRejected, ActorRef{Type: "unknown"}, "", map[string]any{
			"kind": FailureKind(err),
		})
		return nil, nil, err
	}

	user, err := s.ResolveClaims(ctx, claims)
	if err != nil {
		return nil, claims, err
	}

	return user, claims, nil
}

// ResolveClaims resolves already-validated claims to a live user
// record. Split from VerifyToken so guards that validated the token
// during extraction do not parse it twice.
func (s *Auther) ResolveClaims(ctx context.Context, claims AuthClaims) (*User, error) {
	if claims == nil {
		return nil, ErrTokenMalformed
	}

	if s.resolver == nil {
		s.logger.Error("ResolveClaims called without a user resolver")
		return nil, ErrUpstreamFailure
	}

	user, err := s.resolver.FindUserByID(ctx, claims.UserID())
	if err != nil {
		s.emitAuthEvent(ctx, ActivityEventTokenRejected, ActorRef{Type: "unknown"}, claims.UserID(), map[string]any{
			"kind": FailureKind(err),
		})
		return nil, err
	}

	if user == nil {
		return nil, ErrUnknownSubject
	}

	if !user.Active {
		s.emitAuthEvent(ctx, ActivityEventTokenRejected, ActorRef{ID: user.ID.String(), Type: "user"}, user.ID.String(), map[string]any{
			"kind": TextCodeAccountDeactivated,
		})
		return nil, ErrAccountDeactivated
	}

	return user, nil
}

// SessionFromToken validates a raw token and lifts its claims into a
// Session. No repository round-trip happens here.
func (s Auther) SessionFromToken(raw string) (Session, error) {
	claims, err := s.tokenService.Validate(raw)
	if err != nil {
		s.logger.Error("SessionFromToken validation failed", "error", err)
		return nil, err
	}

	session, err := sessionFromAuthClaims(claims)
	if err != nil {
		s.logger.Error("SessionFromToken failed to create session from claims", "error", err)
		return nil, err
	}

	return session, nil
}

func (s *Auther) IdentityFromSession(ctx context.Context, session Session) (Identity, error) {
	identity, err := s.provider.FindIdentityByID(ctx, session.GetUserID())
	if err != nil {
		s.logger.Error("IdentityFromSession find identity error", "error", err)
		return nil, err
	}

	return identity, nil
}

func (s *Auther) emitAuthEvent(ctx context.Context, eventType ActivityEventType, actor ActorRef, userID string, metadata map[string]any) {
	sink := normalizeActivitySink(s.activitySink)
	event := ActivityEvent{
		EventType: eventType,
		Actor:     actor,
		UserID:    userID,
		Metadata:  metadata,
	}

	if event.Metadata == nil {
		event.Metadata = map[string]any{}
	}

	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	if err := sink.Record(ctx, event); err != nil {
		s.logger.Warn("activity sink record error: %v", err)
	}
}

// RecordAccessDenied emits an audit event for a verified user rejected
// by a role gate.
func (s *Auther) RecordAccessDenied(ctx context.Context, user *User, required UserRole) {
	actor := ActorRef{Type: "unknown"}
	userID := ""
	actual := ""

	if user != nil {
		actor = ActorRef{ID: user.ID.String(), Type: "user"}
		userID = user.ID.String()
		actual = string(user.Role)
	}

	s.emitAuthEvent(ctx, ActivityEventAccessDenied, actor, userID, map[string]any{
		"required": string(required),
		"actual":   actual,
		"kind":     TextCodeInsufficientRole,
	})
}

func (s *Auther) actorFromIdentity(identity Identity) ActorRef {
	if identity == nil {
		return ActorRef{Type: "unknown"}
	}

	return ActorRef{
		ID:   identity.ID(),
		Type: "user",
	}
}

var _ Authenticator = (*Auther)(nil)

// wrapUpstream normalizes unexpected repository errors into the
// upstream-failure kind, keeping the cause for operator logs.
func wrapUpstream(err error, msg string) error {
	return goerrors.Wrap(err, goerrors.CategoryInternal, msg).
		WithTextCode(TextCodeUpstreamFailure).
		WithCode(goerrors.CodeInternal)
}
