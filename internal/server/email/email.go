// Package email renders and dispatches the transactional emails of the
// confirmation workflows. Dispatch failures abort the surrounding
// transaction, so every send is bounded by a timeout.
package email

import "context"

// Sender dispatches rendered emails. Implementations must honor the context
// deadline; a slow transport must not hang a registration.
type Sender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
	SendEmailConfirmation(ctx context.Context, to, username, token string) error
	SendPasswordReset(ctx context.Context, to, username, token string) error
	SendEmailChangeConfirmation(ctx context.Context, to, username, token string) error
}
