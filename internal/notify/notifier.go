package notify

import (
	"context"
	"log/slog"
	"time"
)

// NotifierConfig holds the addressing of operator notifications.
type NotifierConfig struct {
	// From is the relay account; it is also the envelope sender.
	From string
	// Recipient is the single operator address.
	Recipient string
	// Configured is false when any relay credential or the recipient is
	// missing. An unconfigured Notifier skips every notification.
	Configured bool
	// SendTimeout bounds one delivery. Zero means DefaultSendTimeout.
	SendTimeout time.Duration
}

// DefaultSendTimeout bounds a single relay conversation.
const DefaultSendTimeout = 15 * time.Second

// Notifier renders and sends the operator notification for a payload.
type Notifier struct {
	mailer Mailer
	cfg    NotifierConfig
	logger *slog.Logger
	now    func() time.Time
}

// NewNotifier creates a Notifier.
func NewNotifier(mailer Mailer, cfg NotifierConfig, logger *slog.Logger) *Notifier {
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = DefaultSendTimeout
	}
	return &Notifier{
		mailer: mailer,
		cfg:    cfg,
		logger: logger.With("component", "notify.notifier"),
		now:    time.Now,
	}
}

// Configured reports whether notifications will actually be sent.
func (n *Notifier) Configured() bool {
	return n.cfg.Configured
}

// Notify sends the notification for p. It returns ErrNotConfigured without
// contacting the relay when the notifier is not configured.
func (n *Notifier) Notify(ctx context.Context, p Payload) error {
	if !n.cfg.Configured {
		n.logger.Warn("relay credentials or recipient not set, skipping notification",
			"message_id", p.MessageID,
		)
		return ErrNotConfigured
	}

	email, err := BuildEmail(p, n.cfg.From, n.cfg.Recipient, n.now())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, n.cfg.SendTimeout)
	defer cancel()

	if err := n.mailer.Send(ctx, email); err != nil {
		return err
	}

	n.logger.Info("notification sent",
		"message_id", p.MessageID,
		"recipient", n.cfg.Recipient,
	)
	return nil
}
