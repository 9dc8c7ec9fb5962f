package invites

import (
	"log/slog"
	"sync"

	"github.com/growloop/growloop/pkg/logger"
)

// AcceptHook receives the updated invite after a successful accept
type AcceptHook func(*Invite)

// acceptHooks is a minimal observer registry. Hooks are fire-and
// forget: each runs on its own goroutine and a panicking hook is
// logged, never propagated.
type acceptHooks struct {
	mu    sync.RWMutex
	hooks []AcceptHook
	log   *slog.Logger
}

func newAcceptHooks(log *slog.Logger) *acceptHooks {
	return &acceptHooks{
		log: log.With(logger.Scope("invites.hooks")),
	}
}

func (h *acceptHooks) register(hook AcceptHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hooks = append(h.hooks, hook)
}

func (h *acceptHooks) emit(invite *Invite) {
	h.mu.RLock()
	hooks := make([]AcceptHook, len(h.hooks))
	copy(hooks, h.hooks)
	h.mu.RUnlock()

	for _, hook := range hooks {
		go func(hook AcceptHook) {
			defer func() {
				if r := recover(); r != nil {
					h.log.Error("accept hook panicked",
						slog.Any("panic", r),
						slog.String("invite_id", invite.ID))
				}
			}()
			// Each hook gets its own copy; hooks must not mutate the
			// accepted record
			inv := *invite
			hook(&inv)
		}(hook)
	}
}
