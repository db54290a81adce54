package storage

import (
	"context"

	"github.com/lcalzada-xor/navify/internal/core/domain"
	"github.com/lcalzada-xor/navify/internal/core/ports"
)

var _ ports.SessionRepository = (*SQLiteAdapter)(nil)

func (a *SQLiteAdapter) SaveSessionEvent(ctx context.Context, ev domain.SessionEvent) error {
	model := toModel(ev)
	return a.db.WithContext(ctx).Create(&model).Error
}

// ListSessionEvents returns up to limit events, newest first.
func (a *SQLiteAdapter) ListSessionEvents(ctx context.Context, limit int) ([]domain.SessionEvent, error) {
	var models []SessionEventModel
	if err := a.db.WithContext(ctx).Order("timestamp desc, id desc").Limit(limit).Find(&models).Error; err != nil {
		return nil, err
	}

	events := make([]domain.SessionEvent, len(models))
	for i, m := range models {
		events[i] = toDomain(m)
	}
	return events, nil
}
