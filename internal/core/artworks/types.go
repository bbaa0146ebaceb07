package artworks

import (
	"time"
)

// Artist is a content group: one artist's artworks under one storage prefix
type Artist struct {
	ID            string    `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	Hashtag       string    `json:"hashtag" db:"hashtag"` // without leading '#'
	StoragePrefix string    `json:"storagePrefix" db:"storage_prefix"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
}

// Tag is a curated content group spanning artists
type Tag struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Hashtag   string    `json:"hashtag" db:"hashtag"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Artwork is one postable image asset in the blob store.
// LastPostedAt is nil until the artwork has been posted (or consumed);
// exhaustion reset nulls it again.
type Artwork struct {
	ID           string     `json:"id" db:"id"`
	ArtistID     string     `json:"artistId" db:"artist_id"`
	StoragePath  string     `json:"storagePath" db:"storage_path"`
	Title        *string    `json:"title,omitempty" db:"title"`
	LastPostedAt *time.Time `json:"lastPostedAt,omitempty" db:"last_posted_at"`
	CreatedAt    time.Time  `json:"createdAt" db:"created_at"`
}

// SyncResult reports an artist-prefix reconciliation run
type SyncResult struct {
	ArtistID string `json:"artistId"`
	Listed   int    `json:"listed"`
	Added    int    `json:"added"`
}
