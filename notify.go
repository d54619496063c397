package auth

import "context"

// NotificationSender delivers the password reset link to the account owner.
// Implementations own the channel (email, SMS, queue); this package only
// builds the link.
type NotificationSender interface {
	SendPasswordReset(ctx context.Context, email, resetLink string) error
}

// NotificationSenderFunc adapts a function to the NotificationSender
// interface.
type NotificationSenderFunc func(ctx context.Context, email, resetLink string) error

// SendPasswordReset implements NotificationSender.
func (f NotificationSenderFunc) SendPasswordReset(ctx context.Context, email, resetLink string) error {
	if f == nil {
		return nil
	}
	return f(ctx, email, resetLink)
}

type noopNotificationSender struct{}

func (noopNotificationSender) SendPasswordReset(context.Context, string, string) error {
	return nil
}

func normalizeNotificationSender(n NotificationSender) NotificationSender {
	if n == nil {
		return noopNotificationSender{}
	}
	return n
}

// LogNotificationSender prints the reset link instead of delivering it. It
// is meant for local development only; the raw token is part of the link.
type LogNotificationSender struct {
	Logger Logger
}

// SendPasswordReset implements NotificationSender.
func (l LogNotificationSender) SendPasswordReset(_ context.Context, email, resetLink string) error {
	logger := l.Logger
	if logger == nil {
		logger = defLogger{}
	}
	logger.Info("password reset for %s: %s", email, resetLink)
	return nil
}
