package domain

import "time"

// Song represents a single library entry: metadata plus the location of the
// uploaded media file in the configured store.
type Song struct {
	ID          int64
	OwnerID     int64
	Name        string
	Artist      string
	StorageKey  string
	Size        int64
	ContentType string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
