package invites

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/uptrace/bun"

	"github.com/growloop/growloop/pkg/apperror"
	"github.com/growloop/growloop/pkg/logger"
)

var (
	// ErrMainExists is returned by Create when the inviter already has
	// a main invite (partial unique index on user_id WHERE main)
	ErrMainExists = errors.New("main invite already exists for user")
	// ErrAlreadyAccepted is returned by MarkAccepted when the record
	// exists but was redeemed first by someone else
	ErrAlreadyAccepted = errors.New("invite already accepted")
)

const mainUniqueConstraint = "invites_user_main_uniq"

// Repository is the Postgres-backed invite store
type Repository struct {
	db  bun.IDB
	log *slog.Logger
}

// NewRepository creates a new invites repository
func NewRepository(db bun.IDB, log *slog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With(logger.Scope("invites.repo")),
	}
}

// Create inserts a new invite. The database fills id and created_at.
func (r *Repository) Create(ctx context.Context, invite *Invite) error {
	if invite.Clicks == nil {
		invite.Clicks = []time.Time{}
	}

	_, err := r.db.NewInsert().Model(invite).Exec(ctx)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == mainUniqueConstraint {
			return ErrMainExists
		}
		r.log.Error("failed to create invite", logger.Error(err))
		return apperror.ErrDatabase.WithInternal(err)
	}

	return nil
}

// FindByID returns the invite with the given id
func (r *Repository) FindByID(ctx context.Context, id string) (*Invite, error) {
	invite := &Invite{}
	err := r.db.NewSelect().
		Model(invite).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrInviteNotFound
		}
		return nil, apperror.ErrDatabase.WithInternal(err)
	}
	return invite, nil
}

// FindMain returns the inviter's main invite, accepted or not
func (r *Repository) FindMain(ctx context.Context, userID string) (*Invite, error) {
	invite := &Invite{}
	err := r.db.NewSelect().
		Model(invite).
		Where("user_id = ?", userID).
		Where("main").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrInviteNotFound
		}
		return nil, apperror.ErrDatabase.WithInternal(err)
	}
	return invite, nil
}

// FindByEmail returns the earliest invite tagged with the email
func (r *Repository) FindByEmail(ctx context.Context, email string) (*Invite, error) {
	return r.findByIdentity(ctx, "email", email)
}

// FindByPhone returns the earliest invite tagged with the phone
func (r *Repository) FindByPhone(ctx context.Context, phone string) (*Invite, error) {
	return r.findByIdentity(ctx, "phone", phone)
}

func (r *Repository) findByIdentity(ctx context.Context, column, value string) (*Invite, error) {
	invite := &Invite{}
	err := r.db.NewSelect().
		Model(invite).
		Where("? = ?", bun.Ident(column), value).
		Order("created_at ASC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrInviteNotFound
		}
		return nil, apperror.ErrDatabase.WithInternal(err)
	}
	return invite, nil
}

// MarkAccepted flips a still-pending invite to accepted and returns
// the updated record. The update is conditional on accepted = false,
// so at most one caller wins the first acceptance of a record.
func (r *Repository) MarkAccepted(ctx context.Context, id, acceptedBy string, at time.Time) (*Invite, error) {
	invite := &Invite{}
	err := r.db.NewRaw(`
		UPDATE invites
		SET accepted = true, accepted_at = ?, accepted_by = ?
		WHERE id = ? AND accepted = false
		RETURNING *
	`, at, acceptedBy, id).Scan(ctx, invite)
	if err == nil {
		return invite, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.ErrDatabase.WithInternal(err)
	}

	// No row updated: distinguish a lost race from a bad id
	exists, err := r.db.NewSelect().
		Model((*Invite)(nil)).
		Where("id = ?", id).
		Exists(ctx)
	if err != nil {
		return nil, apperror.ErrDatabase.WithInternal(err)
	}
	if exists {
		return nil, ErrAlreadyAccepted
	}
	return nil, apperror.ErrInviteNotFound
}

// AppendClick records one link visit. The array append and the
// counter increment are a single statement so they cannot be
// observed half-applied.
func (r *Repository) AppendClick(ctx context.Context, id string, at time.Time) error {
	res, err := r.db.NewUpdate().
		Model((*Invite)(nil)).
		Set("clicks = array_append(clicks, ?)", at).
		Set("click_count = click_count + 1").
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return apperror.ErrDatabase.WithInternal(err)
	}

	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		return apperror.ErrInviteNotFound
	}

	return nil
}

// CountCreatedSince counts invites created at or after since
func (r *Repository) CountCreatedSince(ctx context.Context, since time.Time) (int, error) {
	count, err := r.db.NewSelect().
		Model((*Invite)(nil)).
		Where("created_at >= ?", since).
		Count(ctx)
	if err != nil {
		return 0, apperror.ErrDatabase.WithInternal(err)
	}
	return count, nil
}

// CountAcceptedSince counts invites accepted at or after since
func (r *Repository) CountAcceptedSince(ctx context.Context, since time.Time) (int, error) {
	count, err := r.db.NewSelect().
		Model((*Invite)(nil)).
		Where("accepted").
		Where("accepted_at >= ?", since).
		Count(ctx)
	if err != nil {
		return 0, apperror.ErrDatabase.WithInternal(err)
	}
	return count, nil
}

// CountClicksSince counts individual click events at or after since,
// across all invites. An invite with clicks on both sides of the
// window contributes only the in-window subset. count(*) over the
// lateral unnest yields 0 when nothing matches, never a missing row.
func (r *Repository) CountClicksSince(ctx context.Context, since time.Time) (int, error) {
	var count int
	err := r.db.NewRaw(`
		SELECT count(*)
		FROM invites i, LATERAL unnest(i.clicks) AS click
		WHERE click >= ?
	`, since).Scan(ctx, &count)
	if err != nil {
		return 0, apperror.ErrDatabase.WithInternal(err)
	}
	return count, nil
}
