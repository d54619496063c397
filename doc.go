// Package auth implements the authentication and session-security core of a
// user-management application: dual-token sessions (short-lived HS256 access
// tokens plus long-lived opaque refresh tokens), the password-reset token
// lifecycle, and per-IP brute-force login throttling.
//
// The package is transport agnostic. Auther exposes the operations (Signup,
// Login, Logout, Refresh, CurrentUser, RequestPasswordReset, ResetPassword)
// as plain methods returning typed errors; HTTP or gRPC handlers bind on top.
//
// Persistence is split into small ports (CredentialStore, Sessions,
// ResetTokens, ThrottleStore) with Bun-backed reference implementations and
// embedded SQL migrations. All time reads go through an injected
// clockwork.Clock so expiry behavior is testable.
//
// Activity sinks:
//   - ActivitySink is a best-effort audit emitter. Auther never fails an
//     operation because a sink errored; wrap any sink in BufferedActivitySink
//     to decouple recording from the request path entirely.
//
// Known, deliberate gaps carried over from the product contract: refresh
// tokens are not rotated on redeem, and a password reset does not revoke
// outstanding refresh sessions.
package auth
