package email

import (
	"log/slog"

	"go.uber.org/fx"
)

// Module provides email functionality
var Module = fx.Module("email",
	fx.Provide(
		NewConfig,
		NewSender, // Uses Mailgun when configured, otherwise no-op
	),
)

// NewSender creates the appropriate email sender based on configuration.
// Uses Mailgun when configured, otherwise falls back to no-op sender.
func NewSender(log *slog.Logger, cfg *Config) Sender {
	if cfg.IsConfigured() && cfg.Enabled {
		mailgunSender := NewMailgunSender(cfg, log)
		if mailgunSender != nil {
			log.Info("using Mailgun sender",
				slog.String("domain", cfg.MailgunDomain),
				slog.String("from", cfg.FromEmail))
			return mailgunSender
		}
	}

	log.Info("using no-op email sender (Mailgun not configured or email disabled)")
	return &noOpSender{log: log}
}
