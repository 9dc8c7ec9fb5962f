package invites

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/growloop/growloop/pkg/logger"
)

// Module provides the invites domain
var Module = fx.Module("invites",
	fx.Provide(
		NewConfig,
		NewRepository,
		fx.Annotate(
			func(r *Repository) Store { return r },
			fx.As(new(Store)),
		),
		fx.Annotate(
			NewService,
			fx.ParamTags(``, ``, ``, ``, `optional:"true"`, ``),
		),
	),
	fx.Invoke(registerAcceptLogging),
)

// registerAcceptLogging wires a hook that records every acceptance in
// the application log
func registerAcceptLogging(svc *Service, log *slog.Logger) {
	log = log.With(logger.Scope("invites"))
	svc.OnAccept(func(invite *Invite) {
		attrs := []any{
			slog.String("invite_id", invite.ID),
			slog.String("inviter_id", invite.UserID),
		}
		if invite.AcceptedBy != nil {
			attrs = append(attrs, slog.String("accepted_by", *invite.AcceptedBy))
		}
		log.Info("invite accepted", attrs...)
	})
}
