package artworks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"Aviary/internal/core/accounts"
	"Aviary/internal/core/rotation"
	"Aviary/internal/core/storage"
)

type artworkService struct {
	repo  Repository
	store storage.Store
	now   func() time.Time
}

// NewArtworkService creates the artwork content provider.
// It serves both artist accounts (one artist's works) and tag accounts
// (curated works across artists).
func NewArtworkService(repo Repository, store storage.Store, now func() time.Time) Service {
	if now == nil {
		now = time.Now
	}
	return &artworkService{
		repo:  repo,
		store: store,
		now:   now,
	}
}

// SelectCandidate picks the next artwork for the account's group.
// Never-posted artworks win, oldest-created first; once the group has no
// never-posted artworks left, the one posted longest ago is reposted and
// the group is reported exhausted.
func (s *artworkService) SelectCandidate(ctx context.Context, acct *accounts.Account) (*rotation.Candidate, bool, error) {
	items, hashtags, err := s.groupItems(ctx, acct)
	if err != nil {
		return nil, false, err
	}

	eligible := make([]*Artwork, 0, len(items))
	for _, a := range items {
		if storage.IsImagePath(a.StoragePath) {
			eligible = append(eligible, a)
		}
	}
	if len(eligible) == 0 {
		return nil, false, rotation.ErrNoCandidate
	}

	// Items arrive ordered by creation time ascending, so the first
	// never-posted item is also the oldest-created one.
	var selected *Artwork
	for _, a := range eligible {
		if a.LastPostedAt == nil {
			selected = a
			break
		}
	}

	exhausted := false
	if selected == nil {
		exhausted = true
		selected = eligible[0]
		for _, a := range eligible[1:] {
			if a.LastPostedAt.Before(*selected.LastPostedAt) {
				selected = a
			}
		}
	}

	return &rotation.Candidate{
		ItemID: selected.ID,
		Ref:    selected.StoragePath,
		Text:   formatPostText(selected.Title, hashtags),
	}, exhausted, nil
}

// ResetGroup nulls the last-posted timestamp for every artwork in the
// account's group. Idempotent; a partially applied reset only leaves some
// artworks temporarily ineligible.
func (s *artworkService) ResetGroup(ctx context.Context, acct *accounts.Account) error {
	switch acct.Kind {
	case accounts.KindTag:
		ids, err := s.repo.ListTagArtworkIDs(ctx, acct.GroupID)
		if err != nil {
			return fmt.Errorf("failed to list tag artworks for reset: %w", err)
		}
		return s.repo.ClearPostedByIDs(ctx, ids)
	default:
		return s.repo.ClearPostedByArtist(ctx, acct.GroupID)
	}
}

// Fetch downloads the artwork bytes from the blob store
func (s *artworkService) Fetch(ctx context.Context, acct *accounts.Account, cand *rotation.Candidate) (*rotation.Media, error) {
	data, err := s.store.Download(ctx, cand.Ref)
	if err != nil {
		if storage.IsNotFound(err) {
			return nil, fmt.Errorf("%w: %s", rotation.ErrMediaNotFound, cand.Ref)
		}
		return nil, err
	}

	return &rotation.Media{
		Data:        data,
		ContentType: storage.ContentTypeForPath(cand.Ref),
	}, nil
}

// MarkPosted stamps the artwork's last-posted time. Artworks carry a
// single timestamp, so the status id is not recorded here.
func (s *artworkService) MarkPosted(ctx context.Context, acct *accounts.Account, cand *rotation.Candidate, statusID *string) error {
	return s.repo.MarkPosted(ctx, cand.ItemID, s.now().UTC())
}

// SyncArtist inserts artwork rows for files that appeared under the
// artist's storage prefix out of band
func (s *artworkService) SyncArtist(ctx context.Context, artistID string) (*SyncResult, error) {
	artist, err := s.repo.GetArtist(ctx, artistID)
	if err != nil {
		return nil, err
	}

	keys, err := s.store.ListPrefix(ctx, artist.StoragePrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list storage prefix %s: %w", artist.StoragePrefix, err)
	}

	paths := make([]string, 0, len(keys))
	for _, key := range keys {
		if storage.IsImagePath(key) {
			paths = append(paths, key)
		}
	}

	added, err := s.repo.InsertMissing(ctx, artist.ID, paths)
	if err != nil {
		return nil, fmt.Errorf("failed to insert missing artworks: %w", err)
	}

	return &SyncResult{
		ArtistID: artist.ID,
		Listed:   len(paths),
		Added:    added,
	}, nil
}

// groupItems resolves the account's group and loads its member artworks
// plus the hashtags to append to post text
func (s *artworkService) groupItems(ctx context.Context, acct *accounts.Account) ([]*Artwork, []string, error) {
	switch acct.Kind {
	case accounts.KindTag:
		tag, err := s.repo.GetTag(ctx, acct.GroupID)
		if err != nil {
			if IsNotFound(err) {
				return nil, nil, fmt.Errorf("%w: tag %s", rotation.ErrGroupNotFound, acct.GroupID)
			}
			return nil, nil, err
		}

		ids, err := s.repo.ListTagArtworkIDs(ctx, tag.ID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to list tag artworks: %w", err)
		}
		if len(ids) == 0 {
			return nil, nil, rotation.ErrNoCandidate
		}

		items, err := s.repo.ListByIDs(ctx, ids)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load tag artworks: %w", err)
		}
		return items, []string{tag.Hashtag, "art"}, nil

	default:
		artist, err := s.repo.GetArtist(ctx, acct.GroupID)
		if err != nil {
			if IsNotFound(err) {
				return nil, nil, fmt.Errorf("%w: artist %s", rotation.ErrGroupNotFound, acct.GroupID)
			}
			return nil, nil, err
		}

		items, err := s.repo.ListByArtist(ctx, artist.ID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to list artist artworks: %w", err)
		}
		return items, []string{artist.Hashtag, "art"}, nil
	}
}

// formatPostText builds the status text: optional title, then hashtags
func formatPostText(title *string, hashtags []string) string {
	var b strings.Builder
	if title != nil && *title != "" {
		b.WriteString(*title)
		b.WriteString("\n\n")
	}
	written := 0
	for _, tag := range hashtags {
		if tag == "" {
			continue
		}
		if written > 0 {
			b.WriteString(" ")
		}
		b.WriteString("#")
		b.WriteString(strings.TrimPrefix(tag, "#"))
		written++
	}
	return b.String()
}
