// Package auth implements authentication and authorization for a
// multi-restaurant backend: credential verification, JWT issuance and
// validation, and role-gated route guards.
//
// Verification pipeline:
//   - UserProvider verifies email/password pairs against the Users
//     repository, enforcing the active flag and a login attempt cooldown.
//     Unknown accounts and wrong passwords are indistinguishable to the
//     caller.
//   - Auther composes the provider with a TokenService: Login mints a
//     signed HS256 token for a verified identity, VerifyToken walks the
//     full chain back from a raw token to a live user record.
//   - RouteAuthenticator turns that into middleware. ProtectedRoute
//     validates the bearer token, re-resolves the subject on every
//     request (so deactivation and demotion bite immediately), then
//     checks role dominance: user < admin < super_admin.
//
// Failure kinds stay distinguishable inside the process and in the
// audit trail; the HTTP layer flattens them into a fixed external
// contract so callers cannot probe why a token was rejected.
//
// Activity sinks:
//   - ActivitySink is a light-weight audit emitter used by Auther and
//     the guards to describe login, rejection, and registration events.
//     Sinks run best-effort (errors are logged) so you can forward to a
//     database or queue without blocking authentication.
package auth
