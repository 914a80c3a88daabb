package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"songbox/internal/domain"
	"songbox/internal/repository"
)

const createSongsTable = `
CREATE TABLE IF NOT EXISTS songs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	owner_id INTEGER NOT NULL,
	name TEXT NOT NULL,
	artist TEXT NOT NULL,
	storage_key TEXT NOT NULL,
	size INTEGER NOT NULL DEFAULT 0,
	content_type TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	FOREIGN KEY(owner_id) REFERENCES users(id)
);
CREATE INDEX IF NOT EXISTS idx_songs_owner_id ON songs(owner_id);
`

const songColumns = `id, owner_id, name, artist, storage_key, size, content_type, created_at, updated_at`

type SongRepository struct {
	db *sql.DB
}

func NewSongRepository(db *sql.DB) repository.SongRepository {
	return &SongRepository{db: db}
}

func (r *SongRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createSongsTable); err != nil {
		return fmt.Errorf("create songs table: %w", err)
	}
	return nil
}

func (r *SongRepository) Create(ctx context.Context, song *domain.Song) (int64, error) {
	now := time.Now().UTC()
	song.CreatedAt = now
	song.UpdatedAt = now

	res, err := r.db.ExecContext(ctx, `
INSERT INTO songs (owner_id, name, artist, storage_key, size, content_type, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		song.OwnerID,
		song.Name,
		song.Artist,
		song.StorageKey,
		song.Size,
		song.ContentType,
		song.CreatedAt,
		song.UpdatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert song: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("song last insert id: %w", err)
	}
	song.ID = id
	return id, nil
}

func (r *SongRepository) Update(ctx context.Context, song *domain.Song) error {
	song.UpdatedAt = time.Now().UTC()

	res, err := r.db.ExecContext(ctx, `
UPDATE songs
SET name = ?, artist = ?, storage_key = ?, size = ?, content_type = ?, updated_at = ?
WHERE id = ?`,
		song.Name,
		song.Artist,
		song.StorageKey,
		song.Size,
		song.ContentType,
		song.UpdatedAt,
		song.ID,
	)
	if err != nil {
		return fmt.Errorf("update song: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update song rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update song: %w", repository.ErrNotFound)
	}
	return nil
}

func (r *SongRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM songs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete song: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete song rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("delete song: %w", repository.ErrNotFound)
	}
	return nil
}

func (r *SongRepository) GetByID(ctx context.Context, id int64) (*domain.Song, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+songColumns+`
FROM songs
WHERE id = ?`,
		id,
	)
	return scanSong(row)
}

func (r *SongRepository) GetForOwner(ctx context.Context, id, ownerID int64) (*domain.Song, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+songColumns+`
FROM songs
WHERE id = ? AND owner_id = ?`,
		id,
		ownerID,
	)
	return scanSong(row)
}

func (r *SongRepository) ListByOwner(ctx context.Context, ownerID int64) ([]domain.Song, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+songColumns+`
FROM songs
WHERE owner_id = ?
ORDER BY id ASC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("query songs: %w", err)
	}
	defer rows.Close()

	var songs []domain.Song
	for rows.Next() {
		var song domain.Song
		if err := rows.Scan(
			&song.ID,
			&song.OwnerID,
			&song.Name,
			&song.Artist,
			&song.StorageKey,
			&song.Size,
			&song.ContentType,
			&song.CreatedAt,
			&song.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan song: %w", err)
		}
		songs = append(songs, song)
	}

	return songs, rows.Err()
}

func scanSong(row *sql.Row) (*domain.Song, error) {
	var song domain.Song
	if err := row.Scan(
		&song.ID,
		&song.OwnerID,
		&song.Name,
		&song.Artist,
		&song.StorageKey,
		&song.Size,
		&song.ContentType,
		&song.CreatedAt,
		&song.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan song: %w", err)
	}
	return &song, nil
}
