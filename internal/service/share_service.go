package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/marcuseden/slavajewlery-sub001/internal/config"
	"github.com/marcuseden/slavajewlery-sub001/internal/models"
	"github.com/marcuseden/slavajewlery-sub001/internal/repository"
	"github.com/marcuseden/slavajewlery-sub001/internal/security"
)

var (
	ErrNoImagePaths   = errors.New("no image paths supplied")
	ErrNotDesignOwner = errors.New("caller does not own the design")
	ErrShareNotFound  = errors.New("share link not found")
)

// DesignAuthorizer answers whether image paths really belong to a design
// owned by the caller.
type DesignAuthorizer interface {
	OwnsImagePaths(ctx context.Context, userID, designID string, paths []string) (bool, error)
}

type ShareStore interface {
	Create(ctx context.Context, link models.ShareLink) error
	GetByToken(ctx context.Context, token string) (models.ShareLink, error)
	PurgeExpired(ctx context.Context) (int64, error)
}

type ShareIssue struct {
	Token     string
	URL       string
	ExpiresAt time.Time
}

type ShareView struct {
	DesignID   string
	ImagePaths []string
	ImageURLs  []string
	ExpiresAt  time.Time
}

// ShareService issues and resolves capability-style share links: possession
// of the token is the only credential a viewer needs.
type ShareService struct {
	designs DesignAuthorizer
	links   ShareStore
	store   BlobStore
	cache   *redis.Client
	cfg     config.ShareConfig
	log     zerolog.Logger
	now     func() time.Time
}

func NewShareService(designs DesignAuthorizer, links ShareStore, store BlobStore, cache *redis.Client, cfg config.ShareConfig, log zerolog.Logger) *ShareService {
	return &ShareService{
		designs: designs,
		links:   links,
		store:   store,
		cache:   cache,
		cfg:     cfg,
		log:     log,
		now:     time.Now,
	}
}

func (s *ShareService) Issue(ctx context.Context, userID, designID string, imagePaths []string) (ShareIssue, error) {
	paths := dedupe(imagePaths)
	if len(paths) == 0 {
		return ShareIssue{}, ErrNoImagePaths
	}

	owns, err := s.designs.OwnsImagePaths(ctx, userID, designID, paths)
	if err != nil {
		return ShareIssue{}, fmt.Errorf("verify ownership: %w", err)
	}
	if !owns {
		return ShareIssue{}, ErrNotDesignOwner
	}

	token, err := security.GenerateShareToken()
	if err != nil {
		return ShareIssue{}, err
	}

	now := s.now().UTC()
	link := models.ShareLink{
		Token:      token,
		DesignID:   designID,
		UserID:     userID,
		ImagePaths: paths,
		CreatedAt:  now,
		ExpiresAt:  now.Add(s.cfg.TTL),
	}

	if err := s.links.Create(ctx, link); err != nil {
		return ShareIssue{}, fmt.Errorf("persist share link: %w", err)
	}

	return ShareIssue{
		Token:     token,
		URL:       fmt.Sprintf("%s/shared/%s", s.cfg.BaseURL, token),
		ExpiresAt: link.ExpiresAt,
	}, nil
}

// Resolve returns the shared image set for a live token. An expired link is
// indistinguishable from one that never existed.
func (s *ShareService) Resolve(ctx context.Context, token string) (ShareView, error) {
	if link, ok := s.cachedLink(ctx, token); ok {
		return s.view(link)
	}

	link, err := s.links.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrShareLinkNotFound) {
			return ShareView{}, ErrShareNotFound
		}
		return ShareView{}, fmt.Errorf("load share link: %w", err)
	}

	view, err := s.view(link)
	if err != nil {
		return ShareView{}, err
	}

	s.cacheLink(ctx, link)
	return view, nil
}

func (s *ShareService) view(link models.ShareLink) (ShareView, error) {
	if link.Expired(s.now()) {
		return ShareView{}, ErrShareNotFound
	}

	urls := make([]string, len(link.ImagePaths))
	for i, path := range link.ImagePaths {
		urls[i] = s.store.PublicURL(path)
	}

	return ShareView{
		DesignID:   link.DesignID,
		ImagePaths: link.ImagePaths,
		ImageURLs:  urls,
		ExpiresAt:  link.ExpiresAt,
	}, nil
}

// PurgeExpired removes dead rows; resolution already treats them as absent.
func (s *ShareService) PurgeExpired(ctx context.Context) (int64, error) {
	return s.links.PurgeExpired(ctx)
}

func shareCacheKey(token string) string {
	return "share:" + token
}

func (s *ShareService) cachedLink(ctx context.Context, token string) (models.ShareLink, bool) {
	if s.cache == nil {
		return models.ShareLink{}, false
	}

	raw, err := s.cache.Get(ctx, shareCacheKey(token)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.Warn().Err(err).Msg("share cache read failed")
		}
		return models.ShareLink{}, false
	}

	var link models.ShareLink
	if err := json.Unmarshal(raw, &link); err != nil {
		return models.ShareLink{}, false
	}
	return link, true
}

// cacheLink stores live links only; negative results are never cached so an
// expired token cannot be told apart from an unknown one.
func (s *ShareService) cacheLink(ctx context.Context, link models.ShareLink) {
	if s.cache == nil {
		return
	}

	ttl := time.Until(link.ExpiresAt)
	if ttl <= 0 {
		return
	}
	if ttl > 5*time.Minute {
		ttl = 5 * time.Minute
	}

	raw, err := json.Marshal(link)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, shareCacheKey(link.Token), raw, ttl).Err(); err != nil {
		s.log.Warn().Err(err).Msg("share cache write failed")
	}
}

func dedupe(paths []string) []string {
	seen := make(map[string]struct{}, len(paths))
	out := paths[:0:0]
	for _, p := range paths {
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
