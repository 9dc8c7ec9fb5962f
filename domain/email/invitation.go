package email

import (
	"fmt"
	"sync"

	"github.com/aymerick/raymond"
)

// InvitationData is the context passed to the invitation templates.
type InvitationData struct {
	AppName      string
	FromName     string
	InviterName  string
	InviterEmail string
	URL          string
}

// Invitation is a rendered invitation message, ready to hand to a Sender.
type Invitation struct {
	Subject string
	Text    string
	HTML    string
}

const invitationSubjectTpl = `[{{appName}}] You've been invited`

const invitationTextTpl = `Hi,

{{#if inviterName}}{{inviterName}}{{else}}Someone{{/if}} has invited you to join {{appName}}.

Follow this link to accept the invitation:

{{url}}

{{#if inviterEmail}}If you have questions, reply to {{inviterEmail}}.{{/if}}

— {{fromName}}
`

const invitationHTMLTpl = `<html>
<body style="font-family: sans-serif; color: #333;">
<p>Hi,</p>
<p>{{#if inviterName}}<strong>{{inviterName}}</strong>{{else}}Someone{{/if}} has invited you to join <strong>{{appName}}</strong>.</p>
<p><a href="{{url}}">Accept the invitation</a></p>
<p style="color: #777; font-size: 12px;">Or paste this link into your browser: {{url}}</p>
{{#if inviterEmail}}<p>If you have questions, reply to <a href="mailto:{{inviterEmail}}">{{inviterEmail}}</a>.</p>{{/if}}
<p>— {{fromName}}</p>
</body>
</html>
`

var (
	invitationOnce    sync.Once
	invitationErr     error
	invitationSubject *raymond.Template
	invitationText    *raymond.Template
	invitationHTML    *raymond.Template
)

func parseInvitationTemplates() error {
	invitationOnce.Do(func() {
		parse := func(src string) *raymond.Template {
			if invitationErr != nil {
				return nil
			}
			tmpl, err := raymond.Parse(src)
			if err != nil {
				invitationErr = fmt.Errorf("failed to parse invitation template: %w", err)
			}
			return tmpl
		}
		invitationSubject = parse(invitationSubjectTpl)
		invitationText = parse(invitationTextTpl)
		invitationHTML = parse(invitationHTMLTpl)
	})
	return invitationErr
}

// RenderInvitation renders the invitation subject, plain text and HTML
// bodies for the given data.
func RenderInvitation(data InvitationData) (*Invitation, error) {
	if err := parseInvitationTemplates(); err != nil {
		return nil, err
	}

	ctx := map[string]interface{}{
		"appName":      data.AppName,
		"fromName":     data.FromName,
		"inviterName":  data.InviterName,
		"inviterEmail": data.InviterEmail,
		"url":          data.URL,
	}

	subject, err := invitationSubject.Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to render invitation subject: %w", err)
	}
	text, err := invitationText.Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to render invitation text: %w", err)
	}
	html, err := invitationHTML.Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to render invitation html: %w", err)
	}

	return &Invitation{
		Subject: subject,
		Text:    text,
		HTML:    html,
	}, nil
}
