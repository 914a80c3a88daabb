package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"songbox/internal/domain"
	"songbox/internal/repository"
	"songbox/internal/storage"
)

// ErrSongNotFound covers both a missing record and a record owned by
// someone else; callers cannot tell the two apart.
var ErrSongNotFound = errors.New("song not found")

// SongService coordinates song records and their media files.
type SongService interface {
	Add(ctx context.Context, ownerID int64, name, artist, filename string, file io.Reader, size int64, contentType string) (*domain.Song, error)
	Get(ctx context.Context, ownerID, id int64) (*domain.Song, error)
	List(ctx context.Context, ownerID int64) ([]domain.Song, error)
	UpdateInfo(ctx context.Context, ownerID, id int64, name, artist string) (*domain.Song, error)
	Remove(ctx context.Context, ownerID, id int64) error
	StreamURL(ctx context.Context, ownerID, id int64, expires time.Duration) (string, error)
}

type songService struct {
	songs  repository.SongRepository
	store  storage.Store
	logger *logrus.Logger
}

func NewSongService(songs repository.SongRepository, store storage.Store, logger *logrus.Logger) SongService {
	return &songService{
		songs:  songs,
		store:  store,
		logger: logger,
	}
}

func (s *songService) Add(ctx context.Context, ownerID int64, name, artist, filename string, file io.Reader, size int64, contentType string) (*domain.Song, error) {
	name = strings.TrimSpace(name)
	artist = strings.TrimSpace(artist)
	if name == "" {
		return nil, errors.New("song name is required")
	}
	if artist == "" {
		return nil, errors.New("artist is required")
	}
	if file == nil {
		return nil, errors.New("media file is required")
	}

	key := fmt.Sprintf("songs/%d/%s%s", ownerID, uuid.NewString(), path.Ext(filename))
	if err := s.store.Put(ctx, key, file, size, contentType); err != nil {
		return nil, fmt.Errorf("store media: %w", err)
	}

	song := &domain.Song{
		OwnerID:     ownerID,
		Name:        name,
		Artist:      artist,
		StorageKey:  key,
		Size:        size,
		ContentType: contentType,
	}

	if _, err := s.songs.Create(ctx, song); err != nil {
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			s.logger.Warnf("remove orphaned media %s: %v", key, delErr)
		}
		return nil, err
	}

	return song, nil
}

func (s *songService) Get(ctx context.Context, ownerID, id int64) (*domain.Song, error) {
	song, err := s.songs.GetForOwner(ctx, id, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSongNotFound
		}
		return nil, err
	}
	return song, nil
}

func (s *songService) List(ctx context.Context, ownerID int64) ([]domain.Song, error) {
	return s.songs.ListByOwner(ctx, ownerID)
}

func (s *songService) UpdateInfo(ctx context.Context, ownerID, id int64, name, artist string) (*domain.Song, error) {
	song, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if name = strings.TrimSpace(name); name != "" {
		song.Name = name
	}
	if artist = strings.TrimSpace(artist); artist != "" {
		song.Artist = artist
	}

	if err := s.songs.Update(ctx, song); err != nil {
		return nil, err
	}
	return song, nil
}

func (s *songService) Remove(ctx context.Context, ownerID, id int64) error {
	song, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, song.StorageKey); err != nil {
		s.logger.Warnf("remove media %s: %v", song.StorageKey, err)
	}

	if err := s.songs.Delete(ctx, song.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrSongNotFound
		}
		return err
	}
	return nil
}

func (s *songService) StreamURL(ctx context.Context, ownerID, id int64, expires time.Duration) (string, error) {
	song, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return "", err
	}
	return s.store.URL(ctx, song.StorageKey, expires)
}
