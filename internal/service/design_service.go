package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/marcuseden/slavajewlery-sub001/internal/ids"
	"github.com/marcuseden/slavajewlery-sub001/internal/models"
)

var ErrInvalidDesign = errors.New("invalid design input")

type DesignStore interface {
	Create(ctx context.Context, design models.Design) error
	GetByID(ctx context.Context, id string) (models.Design, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Design, error)
	UpdateStatus(ctx context.Context, id string, status models.DesignStatus) error
	ReplaceImage(ctx context.Context, ref models.ImageRef) ([]string, error)
}

// ImageGenerator is the external AI rendering API.
type ImageGenerator interface {
	Generate(ctx context.Context, prompt string, view string) (string, error)
}

type Ingestor interface {
	IngestBatch(ctx context.Context, ownerID, designID string, items []BatchItem) []BatchResult
}

type CreateDesignInput struct {
	OwnerID    string
	Prompt     string
	Title      string
	Tags       []string
	PriceCents int64
}

type ViewRequest struct {
	Index int
	Label string
}

// ViewOutcome reports one view's generation+ingestion result, in request
// order.
type ViewOutcome struct {
	Index int
	Label string
	Ref   *models.ImageRef
	Err   error
}

type DesignService struct {
	designs   DesignStore
	generator ImageGenerator
	ingest    Ingestor
	store     BlobStore
	log       zerolog.Logger
}

func NewDesignService(designs DesignStore, generator ImageGenerator, ingest Ingestor, store BlobStore, log zerolog.Logger) *DesignService {
	return &DesignService{
		designs:   designs,
		generator: generator,
		ingest:    ingest,
		store:     store,
		log:       log,
	}
}

func (s *DesignService) Create(ctx context.Context, input CreateDesignInput) (models.Design, error) {
	input.Prompt = strings.TrimSpace(input.Prompt)
	if input.Prompt == "" {
		return models.Design{}, fmt.Errorf("%w: prompt required", ErrInvalidDesign)
	}
	if input.PriceCents < 0 {
		return models.Design{}, fmt.Errorf("%w: negative price", ErrInvalidDesign)
	}

	design := models.Design{
		ID:         ids.New(),
		UserID:     input.OwnerID,
		Prompt:     input.Prompt,
		Title:      input.Title,
		Tags:       input.Tags,
		PriceCents: input.PriceCents,
		Status:     models.DesignStatusDraft,
	}
	if design.Tags == nil {
		design.Tags = []string{}
	}

	if err := s.designs.Create(ctx, design); err != nil {
		return models.Design{}, fmt.Errorf("persist design: %w", err)
	}
	return design, nil
}

func (s *DesignService) Get(ctx context.Context, ownerID, designID string) (models.Design, error) {
	design, err := s.designs.GetByID(ctx, designID)
	if err != nil {
		return models.Design{}, err
	}
	if design.UserID != ownerID {
		return models.Design{}, ErrNotDesignOwner
	}
	return design, nil
}

func (s *DesignService) List(ctx context.Context, ownerID string, limit, offset int) ([]models.Design, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.designs.ListByUser(ctx, ownerID, limit, offset)
}

// GenerateImages renders the requested views, persists each result through
// the ingest pipeline and swaps the design's image references. Per-view
// partial failure: a view that fails is reported and the rest proceed; its
// previous image is kept.
func (s *DesignService) GenerateImages(ctx context.Context, ownerID, designID string, views []ViewRequest) ([]ViewOutcome, error) {
	design, err := s.designs.GetByID(ctx, designID)
	if err != nil {
		return nil, err
	}
	if design.UserID != ownerID {
		return nil, ErrNotDesignOwner
	}
	if len(views) == 0 {
		return nil, fmt.Errorf("%w: no views requested", ErrInvalidDesign)
	}

	outcomes := make([]ViewOutcome, len(views))
	items := make([]BatchItem, 0, len(views))
	itemPos := make([]int, 0, len(views))

	for i, view := range views {
		outcomes[i].Index = view.Index
		outcomes[i].Label = view.Label

		sourceURL, err := s.generator.Generate(ctx, design.Prompt, view.Label)
		if err != nil {
			s.log.Warn().Err(err).Str("design_id", designID).Int("view", view.Index).Msg("generation failed")
			outcomes[i].Err = err
			continue
		}
		items = append(items, BatchItem{SourceURL: sourceURL, ViewIndex: view.Index})
		itemPos = append(itemPos, i)
	}

	results := s.ingest.IngestBatch(ctx, ownerID, designID, items)

	for j, res := range results {
		i := itemPos[j]
		if res.Err != nil {
			outcomes[i].Err = res.Err
			continue
		}

		ref := models.ImageRef{
			ID:        ids.New(),
			DesignID:  designID,
			ViewIndex: res.ViewIndex,
			Label:     outcomes[i].Label,
			ObjectKey: res.ObjectKey,
			PublicURL: res.PublicURL,
		}

		// The swap is transactional: if it fails the previous ref stays in
		// place, so only the freshly ingested blob needs discarding.
		oldKeys, err := s.designs.ReplaceImage(ctx, ref)
		if err != nil {
			outcomes[i].Err = fmt.Errorf("replace image ref: %w", err)
			if rmErr := s.store.Remove(ctx, res.ObjectKey); rmErr != nil {
				s.log.Warn().Err(rmErr).Str("design_id", designID).Msg("orphaned blob cleanup failed")
			}
			continue
		}
		outcomes[i].Ref = &ref

		if len(oldKeys) > 0 {
			if err := s.store.RemoveAll(ctx, oldKeys); err != nil {
				s.log.Warn().Err(err).Str("design_id", designID).Msg("old image cleanup failed")
			}
		}
	}

	if anySucceeded(outcomes) {
		if err := s.designs.UpdateStatus(ctx, designID, models.DesignStatusGenerated); err != nil {
			s.log.Warn().Err(err).Str("design_id", designID).Msg("status update failed")
		}
	}

	return outcomes, nil
}

func anySucceeded(outcomes []ViewOutcome) bool {
	for _, o := range outcomes {
		if o.Err == nil {
			return true
		}
	}
	return false
}
