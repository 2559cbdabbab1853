package service

import (
	"context"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/memodb-io/notespace/internal/modules/repo"
	"go.uber.org/zap"
)

// CacheInvalidator replays change events as visible-notes evictions. It runs in the
// worker process.
type CacheInvalidator struct {
	memberships repo.MembershipRepo
	cache       VisibleNotesCache
	log         *zap.Logger
}

func NewCacheInvalidator(memberships repo.MembershipRepo, cache VisibleNotesCache, log *zap.Logger) *CacheInvalidator {
	return &CacheInvalidator{memberships: memberships, cache: cache, log: log}
}

// Handle evicts the lists affected by one event. Unknown routing keys are ignored.
// Malformed bodies are dropped with a log line since redelivery cannot fix them.
func (i *CacheInvalidator) Handle(ctx context.Context, routingKey string, body []byte) error {
	var users []uuid.UUID
	switch routingKey {
	case RoutingNoteChanged:
		var ev NoteChangedEvent
		if err := sonic.Unmarshal(body, &ev); err != nil {
			i.log.Sugar().Warnw("drop malformed event", "routing_key", routingKey, "err", err)
			return nil
		}
		users = append(users, ev.AuthorID)
		if ev.ProjectID != nil {
			members, err := i.memberships.ListUserIDs(ctx, *ev.ProjectID)
			if err != nil {
				return fmt.Errorf("list members of %s: %w", *ev.ProjectID, err)
			}
			users = append(users, members...)
		}
	case RoutingMembershipChanged:
		var ev MembershipChangedEvent
		if err := sonic.Unmarshal(body, &ev); err != nil {
			i.log.Sugar().Warnw("drop malformed event", "routing_key", routingKey, "err", err)
			return nil
		}
		users = append(users, ev.UserID)
	default:
		return nil
	}

	if err := i.cache.Invalidate(ctx, users...); err != nil {
		return fmt.Errorf("invalidate visible notes: %w", err)
	}
	i.log.Sugar().Debugw("visible notes invalidated", "routing_key", routingKey, "users", len(users))
	return nil
}
