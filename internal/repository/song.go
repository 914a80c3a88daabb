package repository

import (
	"context"

	"songbox/internal/domain"
)

// SongRepository exposes persistence operations for Song records. All reads
// used by request handlers are owner-scoped; cross-user access goes through
// explicit owner predicates, never implicit relations.
type SongRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, song *domain.Song) (int64, error)
	Update(ctx context.Context, song *domain.Song) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Song, error)
	GetForOwner(ctx context.Context, id, ownerID int64) (*domain.Song, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]domain.Song, error)
}
