package invites

import (
	"time"

	"github.com/uptrace/bun"
)

// Invite represents a single redeemable invitation link.
//
// A record is either the inviter's reusable "main" link or a one-off
// link tagged with the invitee's email/phone. Acceptance is monotonic:
// once accepted the record never reverts; a second redemption of the
// same link lands on a freshly spawned sibling record instead.
type Invite struct {
	bun.BaseModel `bun:"table:invites,alias:i"`

	ID         string      `bun:"id,pk,type:uuid,default:gen_random_uuid()" json:"id"`
	UserID     string      `bun:"user_id,notnull" json:"userId"`
	Email      *string     `bun:"email" json:"email,omitempty"`
	Phone      *string     `bun:"phone" json:"phone,omitempty"`
	Main       bool        `bun:"main,notnull,default:false" json:"main"`
	Accepted   bool        `bun:"accepted,notnull,default:false" json:"accepted"`
	AcceptedAt *time.Time  `bun:"accepted_at" json:"acceptedAt,omitempty"`
	AcceptedBy *string     `bun:"accepted_by" json:"acceptedBy,omitempty"`
	Clicks     []time.Time `bun:"clicks,array" json:"clicks"`
	ClickCount int         `bun:"click_count,notnull,default:0" json:"clickCount"`
	CreatedAt  time.Time   `bun:"created_at,notnull,default:now()" json:"createdAt"`
}

// Inviter identifies the user issuing invites. Name and Email are
// only used to compose the invitation message.
type Inviter struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// Person is a single invitee identity for batch sending
type Person struct {
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// CreateStatus classifies the outcome of one-off invite creation
type CreateStatus string

const (
	// StatusCreated means the invite was persisted and any requested
	// email went out
	StatusCreated CreateStatus = "created"
	// StatusCreatedEmailFailed means the invite was persisted but the
	// invitation email could not be sent
	StatusCreatedEmailFailed CreateStatus = "created_email_failed"
	// StatusFailed means the invite record was not created
	StatusFailed CreateStatus = "failed"
)

// CreateResult is the outcome of a one-off invite creation. The
// invite record is the source of truth: an email failure still
// yields a usable Invite and URL.
type CreateResult struct {
	Status CreateStatus `json:"status"`
	Invite *Invite      `json:"invite,omitempty"`
	URL    string       `json:"url,omitempty"`
	Err    error        `json:"-"`
}

// Created reports whether an invite record was persisted
func (r *CreateResult) Created() bool {
	return r.Status == StatusCreated || r.Status == StatusCreatedEmailFailed
}
