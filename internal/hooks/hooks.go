package hooks

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/studiolane/studiolane-backend/internal/logger"
)

// Hook runs after an entity mutation has committed. Hooks observe; they can
// never roll the mutation back.
type Hook func(ctx context.Context, boardID uuid.UUID) error

// Runner fans one committed mutation out to every registered hook. Each
// failure is logged independently and never propagated.
type Runner struct {
	log   *logger.Logger
	hooks []Hook
}

func NewRunner(baseLog *logger.Logger, hooks ...Hook) *Runner {
	return &Runner{
		log:   baseLog.With("component", "HookRunner"),
		hooks: hooks,
	}
}

func (r *Runner) Register(h Hook) {
	r.hooks = append(r.hooks, h)
}

func (r *Runner) BoardChanged(ctx context.Context, boardID uuid.UUID) {
	if r == nil {
		return
	}
	for _, h := range r.hooks {
		if err := h(ctx, boardID); err != nil {
			r.log.Warn("post-commit hook failed", "board_id", boardID, "error", err)
		}
	}
}

// LayoutCacheInvalidator drops the cached layout for a board whenever
// anything on the board changes. Cache state is advisory; a miss just falls
// back to storage.
func LayoutCacheInvalidator(client *redis.Client) Hook {
	return func(ctx context.Context, boardID uuid.UUID) error {
		if client == nil || boardID == uuid.Nil {
			return nil
		}
		key := fmt.Sprintf("board:layout:%s", boardID)
		return client.Del(ctx, key).Err()
	}
}
