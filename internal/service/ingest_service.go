package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/marcuseden/slavajewlery-sub001/internal/config"
)

// ErrSourceFetch marks a transient failure pulling the generated image from
// its time-limited source URL. The caller decides whether to retry.
var ErrSourceFetch = errors.New("source fetch failed")

// BlobStore is the slice of the object store the ingest pipeline needs.
type BlobStore interface {
	Put(ctx context.Context, objectKey string, reader io.Reader, size int64, contentType string) error
	Remove(ctx context.Context, objectKey string) error
	RemoveAll(ctx context.Context, objectKeys []string) error
	PublicURL(objectKey string) string
}

type IngestInput struct {
	SourceURL string
	OwnerID   string
	DesignID  string
	ViewIndex int
}

type IngestResult struct {
	ObjectKey string
	PublicURL string
}

type BatchItem struct {
	SourceURL string
	ViewIndex int
}

// BatchResult reports one item's outcome. Results keep input order and a
// failed item never aborts its siblings.
type BatchResult struct {
	ViewIndex int
	ObjectKey string
	PublicURL string
	Err       error
}

// IngestService copies generated images from their short-lived source URLs
// into the blob store under collision-free keys.
type IngestService struct {
	store      BlobStore
	httpClient *http.Client
	maxSize    int64
	log        zerolog.Logger
}

func NewIngestService(store BlobStore, cfg config.GeneratorConfig, log zerolog.Logger) *IngestService {
	return &IngestService{
		store:      store,
		httpClient: &http.Client{Timeout: cfg.FetchTimeout},
		maxSize:    cfg.MaxImageSize,
		log:        log,
	}
}

func (s *IngestService) Ingest(ctx context.Context, input IngestInput) (IngestResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, input.SourceURL, nil)
	if err != nil {
		return IngestResult{}, fmt.Errorf("%w: build request: %v", ErrSourceFetch, err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return IngestResult{}, fmt.Errorf("%w: %v", ErrSourceFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return IngestResult{}, fmt.Errorf("%w: status %d", ErrSourceFetch, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, s.maxSize+1))
	if err != nil {
		return IngestResult{}, fmt.Errorf("%w: read body: %v", ErrSourceFetch, err)
	}
	if int64(len(data)) > s.maxSize {
		return IngestResult{}, fmt.Errorf("%w: image exceeds %d bytes", ErrSourceFetch, s.maxSize)
	}
	if len(data) == 0 {
		return IngestResult{}, fmt.Errorf("%w: empty body", ErrSourceFetch)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/png"
	}

	objectKey := buildObjectKey(input.OwnerID, input.DesignID, input.ViewIndex, contentType)

	if err := s.store.Put(ctx, objectKey, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		return IngestResult{}, fmt.Errorf("store image: %w", err)
	}

	return IngestResult{
		ObjectKey: objectKey,
		PublicURL: s.store.PublicURL(objectKey),
	}, nil
}

// IngestBatch processes items sequentially; output order matches input
// order and each item's outcome is reported independently.
func (s *IngestService) IngestBatch(ctx context.Context, ownerID, designID string, items []BatchItem) []BatchResult {
	results := make([]BatchResult, len(items))
	for i, item := range items {
		results[i].ViewIndex = item.ViewIndex

		res, err := s.Ingest(ctx, IngestInput{
			SourceURL: item.SourceURL,
			OwnerID:   ownerID,
			DesignID:  designID,
			ViewIndex: item.ViewIndex,
		})
		if err != nil {
			s.log.Warn().Err(err).
				Str("design_id", designID).
				Int("view", item.ViewIndex).
				Msg("batch item ingest failed")
			results[i].Err = err
			continue
		}
		results[i].ObjectKey = res.ObjectKey
		results[i].PublicURL = res.PublicURL
	}
	return results
}

// buildObjectKey derives a deterministic, collision-free key. The timestamp
// component keeps regenerated views as history instead of overwrites.
func buildObjectKey(ownerID, designID string, viewIndex int, contentType string) string {
	ext := ".png"
	switch contentType {
	case "image/jpeg":
		ext = ".jpg"
	case "image/webp":
		ext = ".webp"
	}
	return fmt.Sprintf("%s/%s/view_%d_%d%s", ownerID, designID, viewIndex, time.Now().UTC().UnixNano(), ext)
}
