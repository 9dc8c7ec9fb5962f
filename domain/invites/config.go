package invites

import (
	"errors"
	"strings"

	"github.com/growloop/growloop/internal/config"
)

// Config contains invite link settings
type Config struct {
	// BaseURL is the URL prefix invite ids are appended to
	BaseURL string
	// SendEmail controls whether one-off invites with an email
	// identity dispatch an invitation email
	SendEmail bool
	// AcceptRetries bounds the accept retry loop under contention
	AcceptRetries int
}

// NewConfig creates invite configuration from the app config.
// A missing base URL is a setup error, never defaulted.
func NewConfig(cfg *config.Config) (*Config, error) {
	if cfg.Invite.BaseURL == "" {
		return nil, errors.New("INVITE_BASE_URL is required")
	}

	retries := cfg.Invite.AcceptRetries
	if retries <= 0 {
		retries = 3
	}

	return &Config{
		BaseURL:       strings.TrimRight(cfg.Invite.BaseURL, "/"),
		SendEmail:     cfg.Invite.SendEmail,
		AcceptRetries: retries,
	}, nil
}
