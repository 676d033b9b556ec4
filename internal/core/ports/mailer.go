package ports

import "context"

// Mailer delivers transactional emails. Implementations are fire-and-forget:
// delivery failures are logged and counted, never propagated to the caller.
type Mailer interface {
	SendVerifyEmail(ctx context.Context, email, url string)
	SendResetPassword(ctx context.Context, email, url string)
	SendApproved(ctx context.Context, email, url, firstName, lastName string)
}
