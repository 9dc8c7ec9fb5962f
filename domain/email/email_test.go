package email

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMailgunSenderValidate(t *testing.T) {
	tests := []struct {
		name      string
		cfg       *Config
		wantError string
	}{
		{
			name: "all fields valid",
			cfg: &Config{
				MailgunDomain: "mg.example.com",
				MailgunAPIKey: "key-abc123",
				FromEmail:     "noreply@example.com",
				FromName:      "Growloop",
			},
			wantError: "",
		},
		{
			name: "missing MailgunDomain",
			cfg: &Config{
				MailgunAPIKey: "key-abc123",
				FromEmail:     "noreply@example.com",
				FromName:      "Growloop",
			},
			wantError: "MAILGUN_DOMAIN is required",
		},
		{
			name: "missing MailgunAPIKey",
			cfg: &Config{
				MailgunDomain: "mg.example.com",
				FromEmail:     "noreply@example.com",
				FromName:      "Growloop",
			},
			wantError: "MAILGUN_API_KEY is required",
		},
		{
			name: "missing FromEmail",
			cfg: &Config{
				MailgunDomain: "mg.example.com",
				MailgunAPIKey: "key-abc123",
				FromName:      "Growloop",
			},
			wantError: "EMAIL_FROM_ADDRESS is required",
		},
		{
			name: "missing FromName",
			cfg: &Config{
				MailgunDomain: "mg.example.com",
				MailgunAPIKey: "key-abc123",
				FromEmail:     "noreply@example.com",
			},
			wantError: "EMAIL_FROM_NAME is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// validate does not touch the client, so a bare struct is enough
			sender := &MailgunSender{cfg: tt.cfg}

			err := sender.validate()

			if tt.wantError == "" {
				if err != nil {
					t.Errorf("validate() unexpected error: %v", err)
				}
			} else {
				if err == nil {
					t.Error("validate() expected error, got nil")
				} else if err.Error() != tt.wantError {
					t.Errorf("validate() error = %q, want %q", err.Error(), tt.wantError)
				}
			}
		})
	}
}

func TestNewSenderFallsBackToNoOp(t *testing.T) {
	cfg := &Config{Enabled: true} // Mailgun not configured
	sender := NewSender(testLogger(), cfg)

	if _, ok := sender.(*noOpSender); !ok {
		t.Fatalf("NewSender() = %T, want *noOpSender", sender)
	}

	result, err := sender.Send(context.Background(), SendOptions{
		To:      "friend@example.com",
		Subject: "hello",
	})
	if err != nil {
		t.Fatalf("Send() unexpected error: %v", err)
	}
	if !result.Success {
		t.Error("Send() result.Success = false, want true")
	}
	if result.MessageID != "noop-friend@example.com" {
		t.Errorf("Send() MessageID = %q", result.MessageID)
	}
}

func TestNewSenderUsesMailgunWhenConfigured(t *testing.T) {
	cfg := &Config{
		Enabled:       true,
		MailgunDomain: "mg.example.com",
		MailgunAPIKey: "key-abc123",
		FromEmail:     "noreply@example.com",
		FromName:      "Growloop",
	}
	sender := NewSender(testLogger(), cfg)

	if _, ok := sender.(*MailgunSender); !ok {
		t.Fatalf("NewSender() = %T, want *MailgunSender", sender)
	}
}

func TestMailgunSenderDisabled(t *testing.T) {
	cfg := &Config{
		Enabled:       false,
		MailgunDomain: "mg.example.com",
		MailgunAPIKey: "key-abc123",
		FromEmail:     "noreply@example.com",
		FromName:      "Growloop",
	}
	sender := NewMailgunSender(cfg, testLogger())
	if sender == nil {
		t.Fatal("NewMailgunSender() = nil for configured Mailgun")
	}

	result, err := sender.Send(context.Background(), SendOptions{To: "friend@example.com"})
	if err != nil {
		t.Fatalf("Send() unexpected error: %v", err)
	}
	if result.Success {
		t.Error("Send() result.Success = true with email disabled")
	}
}

func TestRenderInvitation(t *testing.T) {
	msg, err := RenderInvitation(InvitationData{
		AppName:      "Growloop",
		FromName:     "The Growloop Team",
		InviterName:  "Ada",
		InviterEmail: "ada@example.com",
		URL:          "https://app.example.com/invite/abc123",
	})
	if err != nil {
		t.Fatalf("RenderInvitation() error: %v", err)
	}

	if msg.Subject != "[Growloop] You've been invited" {
		t.Errorf("Subject = %q", msg.Subject)
	}
	for _, want := range []string{"Ada", "Growloop", "https://app.example.com/invite/abc123", "ada@example.com", "The Growloop Team"} {
		if !strings.Contains(msg.Text, want) {
			t.Errorf("Text missing %q:\n%s", want, msg.Text)
		}
		if !strings.Contains(msg.HTML, want) {
			t.Errorf("HTML missing %q", want)
		}
	}
}

func TestRenderInvitationAnonymousInviter(t *testing.T) {
	msg, err := RenderInvitation(InvitationData{
		AppName:  "Growloop",
		FromName: "Growloop",
		URL:      "https://app.example.com/invite/abc123",
	})
	if err != nil {
		t.Fatalf("RenderInvitation() error: %v", err)
	}

	if !strings.Contains(msg.Text, "Someone has invited you") {
		t.Errorf("Text should fall back to anonymous inviter:\n%s", msg.Text)
	}
	if strings.Contains(msg.Text, "reply to") {
		t.Errorf("Text should omit reply-to line without inviter email:\n%s", msg.Text)
	}
}

func TestConfigDisplayName(t *testing.T) {
	cfg := &Config{FromName: "Growloop", AppName: "Growloop App"}
	if got := cfg.DisplayName(); got != "Growloop App" {
		t.Errorf("DisplayName() = %q, want AppName", got)
	}

	cfg = &Config{FromName: "Growloop"}
	if got := cfg.DisplayName(); got != "Growloop" {
		t.Errorf("DisplayName() = %q, want FromName fallback", got)
	}
}
