// Package invites implements the invitation lifecycle engine: link
// issuance, identity dedup, acceptance with conflict resolution,
// click tracking and windowed statistics.
package invites

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/growloop/growloop/domain/email"
	"github.com/growloop/growloop/pkg/apperror"
	"github.com/growloop/growloop/pkg/logger"
)

// Store is the persistence contract the engine needs. Implemented by
// the Postgres Repository; tests use an in-memory store.
type Store interface {
	Create(ctx context.Context, invite *Invite) error
	FindByID(ctx context.Context, id string) (*Invite, error)
	FindMain(ctx context.Context, userID string) (*Invite, error)
	FindByEmail(ctx context.Context, email string) (*Invite, error)
	FindByPhone(ctx context.Context, phone string) (*Invite, error)
	MarkAccepted(ctx context.Context, id, acceptedBy string, at time.Time) (*Invite, error)
	AppendClick(ctx context.Context, id string, at time.Time) error
	CountCreatedSince(ctx context.Context, since time.Time) (int, error)
	CountAcceptedSince(ctx context.Context, since time.Time) (int, error)
	CountClicksSince(ctx context.Context, since time.Time) (int, error)
}

// Notifier is the optional push-notification collaborator. Delivery
// fan-out lives outside this service; a nil Notifier is valid.
type Notifier interface {
	Notify(ctx context.Context, userID string, payload map[string]any) error
}

// Service is the invitation lifecycle engine
type Service struct {
	store    Store
	cfg      *Config
	emailCfg *email.Config
	sender   email.Sender
	notifier Notifier
	log      *slog.Logger
	hooks    *acceptHooks
}

// NewService creates a new invites service. sender and notifier are
// best-effort collaborators and may be nil.
func NewService(store Store, cfg *Config, emailCfg *email.Config, sender email.Sender, notifier Notifier, log *slog.Logger) *Service {
	return &Service{
		store:    store,
		cfg:      cfg,
		emailCfg: emailCfg,
		sender:   sender,
		notifier: notifier,
		log:      log.With(logger.Scope("invites")),
		hooks:    newAcceptHooks(log),
	}
}

// URL returns the shareable link for an invite
func (s *Service) URL(invite *Invite) string {
	return s.cfg.BaseURL + "/" + invite.ID
}

// IssueUniqueLink returns the inviter's single reusable link,
// creating the main invite on first use. Idempotent: repeated calls
// return the same link.
func (s *Service) IssueUniqueLink(ctx context.Context, userID string) (string, error) {
	invite, err := s.store.FindMain(ctx, userID)
	if err == nil {
		return s.URL(invite), nil
	}
	if !errors.Is(err, apperror.ErrInviteNotFound) {
		return "", err
	}

	invite = &Invite{UserID: userID, Main: true}
	if err := s.store.Create(ctx, invite); err != nil {
		if !errors.Is(err, ErrMainExists) {
			return "", err
		}
		// Lost the find-or-create race; the winner's record is the link
		invite, err = s.store.FindMain(ctx, userID)
		if err != nil {
			return "", err
		}
	}

	return s.URL(invite), nil
}

// IssueOneOffLink creates a new single-purpose invite tagged with the
// invitee's identity. The invite record is the source of truth: a
// failed invitation email downgrades the status but never rolls the
// record back.
func (s *Service) IssueOneOffLink(ctx context.Context, inviter Inviter, emailAddr, phone string) *CreateResult {
	invite := &Invite{UserID: inviter.ID}
	if emailAddr != "" {
		invite.Email = &emailAddr
	}
	if phone != "" {
		invite.Phone = &phone
	}

	if err := s.store.Create(ctx, invite); err != nil {
		s.log.Error("failed to create invite",
			slog.String("user_id", inviter.ID),
			logger.Error(err))
		return &CreateResult{Status: StatusFailed, Err: err}
	}

	result := &CreateResult{
		Status: StatusCreated,
		Invite: invite,
		URL:    s.URL(invite),
	}

	if s.cfg.SendEmail && emailAddr != "" && s.sender != nil {
		if err := s.sendInvitation(ctx, inviter, emailAddr, result.URL); err != nil {
			s.log.Warn("invitation email failed",
				slog.String("invite_id", invite.ID),
				slog.String("to", emailAddr),
				logger.Error(err))
			result.Status = StatusCreatedEmailFailed
			result.Err = err
		}
	}

	return result
}

// SendInvites creates one invite per person, sequentially. The result
// slice is positionally one-to-one with persons; a failed entry is
// recorded in place and never short-circuits the rest.
func (s *Service) SendInvites(ctx context.Context, inviter Inviter, persons []Person) []*CreateResult {
	results := make([]*CreateResult, len(persons))
	for i, person := range persons {
		results[i] = s.IssueOneOffLink(ctx, inviter, person.Email, person.Phone)
	}
	return results
}

// FindByIdentity returns the first invite matching the email, falling
// back to the phone. Email and phone are never combined; the email
// match wins when both would hit. Returns nil when neither matches.
func (s *Service) FindByIdentity(ctx context.Context, emailAddr, phone string) (*Invite, error) {
	if emailAddr != "" {
		invite, err := s.store.FindByEmail(ctx, emailAddr)
		if err == nil {
			return invite, nil
		}
		if !errors.Is(err, apperror.ErrInviteNotFound) {
			return nil, err
		}
	}

	if phone != "" {
		invite, err := s.store.FindByPhone(ctx, phone)
		if err == nil {
			return invite, nil
		}
		if !errors.Is(err, apperror.ErrInviteNotFound) {
			return nil, err
		}
	}

	return nil, nil
}

// Accept redeems an invite for newUserID and returns the updated
// record. An already-redeemed invite (a stale shared link, or a lost
// race) is never mutated; the acceptance lands on a freshly spawned
// sibling invite under the same inviter, preserving attribution
// without failing the second redeemer.
func (s *Service) Accept(ctx context.Context, inviteID, newUserID string) (*Invite, error) {
	target, err := s.store.FindByID(ctx, inviteID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	for attempt := 0; attempt < s.cfg.AcceptRetries; attempt++ {
		if !target.Accepted {
			updated, err := s.store.MarkAccepted(ctx, target.ID, newUserID, now)
			if err == nil {
				s.afterAccept(updated)
				return updated, nil
			}
			if !errors.Is(err, ErrAlreadyAccepted) {
				return nil, err
			}
			// Someone redeemed it between our read and the update;
			// fall through and spawn
		}

		sibling := &Invite{UserID: target.UserID}
		if err := s.store.Create(ctx, sibling); err != nil {
			return nil, err
		}
		target = sibling
	}

	return nil, apperror.ErrConflict.WithMessage(
		fmt.Sprintf("invite %s could not be accepted after %d attempts", inviteID, s.cfg.AcceptRetries))
}

// CheckInvite is the signup-time entry point: if any invite matches
// the new user's email it is driven through Accept. No matching
// invite is a silent no-op; not every signup arrives via invite.
func (s *Service) CheckInvite(ctx context.Context, newUserID, emailAddr string) (*Invite, error) {
	invite, err := s.FindByIdentity(ctx, emailAddr, "")
	if err != nil || invite == nil {
		return nil, err
	}
	return s.Accept(ctx, invite.ID, newUserID)
}

// RecordClick appends the current timestamp to the invite's click log.
// Every visit counts; rapid repeats are not deduplicated.
func (s *Service) RecordClick(ctx context.Context, inviteID string) error {
	return s.store.AppendClick(ctx, inviteID, time.Now())
}

// OnAccept registers a hook invoked after every successful
// acceptance. Hooks run on their own goroutine; their outcome never
// affects the accept result.
func (s *Service) OnAccept(hook AcceptHook) {
	s.hooks.register(hook)
}

// afterAccept fires hooks and the optional notifier collaborator
func (s *Service) afterAccept(invite *Invite) {
	s.hooks.emit(invite)

	if s.notifier != nil {
		inv := *invite
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := s.notifier.Notify(ctx, inv.UserID, map[string]any{
				"type":     "invite.accepted",
				"inviteId": inv.ID,
			}); err != nil {
				s.log.Warn("accept notification failed",
					slog.String("invite_id", inv.ID),
					logger.Error(err))
			}
		}()
	}
}

// WindowStart computes the statistics window start as a calendar-day
// subtraction from now. days <= 0 selects the default 7-day window.
func WindowStart(days int) time.Time {
	if days <= 0 {
		days = 7
	}
	return time.Now().AddDate(0, 0, -days)
}

// StatsSent counts invites created inside the window
func (s *Service) StatsSent(ctx context.Context, days int) (int, error) {
	return s.store.CountCreatedSince(ctx, WindowStart(days))
}

// StatsAccepted counts invites accepted inside the window
func (s *Service) StatsAccepted(ctx context.Context, days int) (int, error) {
	return s.store.CountAcceptedSince(ctx, WindowStart(days))
}

// StatsClicked counts individual click events inside the window, not
// invites: an invite clicked five times in the window contributes
// five.
func (s *Service) StatsClicked(ctx context.Context, days int) (int, error) {
	return s.store.CountClicksSince(ctx, WindowStart(days))
}

// sendInvitation composes and sends the invitation email
func (s *Service) sendInvitation(ctx context.Context, inviter Inviter, to, url string) error {
	msg, err := email.RenderInvitation(email.InvitationData{
		AppName:      s.emailCfg.DisplayName(),
		FromName:     s.emailCfg.FromName,
		InviterName:  inviter.Name,
		InviterEmail: inviter.Email,
		URL:          url,
	})
	if err != nil {
		return err
	}

	result, err := s.sender.Send(ctx, email.SendOptions{
		To:      to,
		Subject: msg.Subject,
		Text:    msg.Text,
		HTML:    msg.HTML,
	})
	if err != nil {
		return err
	}
	if !result.Success {
		return errors.New(result.Error)
	}
	return nil
}
