package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/marcuseden/slavajewlery-sub001/internal/models"
	"github.com/marcuseden/slavajewlery-sub001/internal/repository"
)

type fakeDesignStore struct {
	designs    map[string]models.Design
	refs       map[string][]models.ImageRef
	statuses   map[string]models.DesignStatus
	replaceErr error
}

func newFakeDesignStore() *fakeDesignStore {
	return &fakeDesignStore{
		designs:  make(map[string]models.Design),
		refs:     make(map[string][]models.ImageRef),
		statuses: make(map[string]models.DesignStatus),
	}
}

func (f *fakeDesignStore) Create(ctx context.Context, design models.Design) error {
	f.designs[design.ID] = design
	return nil
}

func (f *fakeDesignStore) GetByID(ctx context.Context, id string) (models.Design, error) {
	design, ok := f.designs[id]
	if !ok {
		return models.Design{}, repository.ErrDesignNotFound
	}
	design.Images = f.refs[id]
	return design, nil
}

func (f *fakeDesignStore) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Design, error) {
	var out []models.Design
	for _, design := range f.designs {
		if design.UserID == userID {
			out = append(out, design)
		}
	}
	return out, nil
}

func (f *fakeDesignStore) UpdateStatus(ctx context.Context, id string, status models.DesignStatus) error {
	f.statuses[id] = status
	return nil
}

func (f *fakeDesignStore) ReplaceImage(ctx context.Context, ref models.ImageRef) ([]string, error) {
	if f.replaceErr != nil {
		return nil, f.replaceErr
	}

	var oldKeys []string
	kept := f.refs[ref.DesignID][:0]
	for _, existing := range f.refs[ref.DesignID] {
		if existing.ViewIndex == ref.ViewIndex {
			oldKeys = append(oldKeys, existing.ObjectKey)
			continue
		}
		kept = append(kept, existing)
	}
	f.refs[ref.DesignID] = append(kept, ref)
	return oldKeys, nil
}

func (f *fakeDesignStore) viewRefs(designID string, viewIndex int) []models.ImageRef {
	var out []models.ImageRef
	for _, ref := range f.refs[designID] {
		if ref.ViewIndex == viewIndex {
			out = append(out, ref)
		}
	}
	return out
}

type fakeGenerator struct {
	err      error
	failView string
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string, view string) (string, error) {
	if f.err != nil && view == f.failView {
		return "", f.err
	}
	return "https://generator.example.com/out/" + view + ".png", nil
}

type fakeIngestor struct {
	store     *fakeBlobStore
	failViews map[int]error
}

func (f *fakeIngestor) IngestBatch(ctx context.Context, ownerID, designID string, items []BatchItem) []BatchResult {
	results := make([]BatchResult, len(items))
	for i, item := range items {
		results[i].ViewIndex = item.ViewIndex
		if err, ok := f.failViews[item.ViewIndex]; ok {
			results[i].Err = err
			continue
		}
		key := fmt.Sprintf("u1/%s/view_%d_new.png", designID, item.ViewIndex)
		f.store.objects[key] = []byte("img")
		results[i].ObjectKey = key
		results[i].PublicURL = f.store.PublicURL(key)
	}
	return results
}

type generateFixture struct {
	svc    *DesignService
	store  *fakeDesignStore
	blobs  *fakeBlobStore
	gen    *fakeGenerator
	ingest *fakeIngestor
}

func newGenerateFixture() *generateFixture {
	store := newFakeDesignStore()
	store.designs["d1"] = models.Design{ID: "d1", UserID: "u1", Prompt: "gold ring", PriceCents: 1099}
	store.refs["d1"] = []models.ImageRef{
		{ID: "r-old", DesignID: "d1", ViewIndex: 1, ObjectKey: "u1/d1/view_1_old.png"},
	}

	blobs := newFakeBlobStore()
	blobs.objects["u1/d1/view_1_old.png"] = []byte("old")

	gen := &fakeGenerator{}
	ingest := &fakeIngestor{store: blobs, failViews: map[int]error{}}

	return &generateFixture{
		svc:    NewDesignService(store, gen, ingest, blobs, zerolog.Nop()),
		store:  store,
		blobs:  blobs,
		gen:    gen,
		ingest: ingest,
	}
}

func TestDesignService_GenerateImages_ReplacesAndCleansUp(t *testing.T) {
	fx := newGenerateFixture()

	outcomes, err := fx.svc.GenerateImages(context.Background(), "u1", "d1", []ViewRequest{
		{Index: 1, Label: "front"},
		{Index: 2, Label: "side"},
	})
	require.NoError(t, err)
	require.Len(t, outcomes, 2)
	require.NoError(t, outcomes[0].Err)
	require.NoError(t, outcomes[1].Err)
	require.NotNil(t, outcomes[0].Ref)
	require.Equal(t, "front", outcomes[0].Ref.Label)

	view1 := fx.store.viewRefs("d1", 1)
	require.Len(t, view1, 1, "regeneration must replace, not accumulate")
	require.Equal(t, "u1/d1/view_1_new.png", view1[0].ObjectKey)

	require.NotContains(t, fx.blobs.objects, "u1/d1/view_1_old.png", "displaced blob must be removed")
	require.Contains(t, fx.blobs.objects, "u1/d1/view_1_new.png")
	require.Contains(t, fx.blobs.objects, "u1/d1/view_2_new.png")

	require.Equal(t, models.DesignStatusGenerated, fx.store.statuses["d1"])
}

func TestDesignService_GenerateImages_GeneratorFailureKeepsPreviousImage(t *testing.T) {
	fx := newGenerateFixture()
	fx.gen.err = errors.New("render backend down")
	fx.gen.failView = "front"

	outcomes, err := fx.svc.GenerateImages(context.Background(), "u1", "d1", []ViewRequest{
		{Index: 1, Label: "front"},
		{Index: 2, Label: "side"},
	})
	require.NoError(t, err)
	require.Error(t, outcomes[0].Err)
	require.NoError(t, outcomes[1].Err, "one failing view must not abort the rest")

	view1 := fx.store.viewRefs("d1", 1)
	require.Len(t, view1, 1)
	require.Equal(t, "u1/d1/view_1_old.png", view1[0].ObjectKey, "failed view keeps its previous image")
	require.Contains(t, fx.blobs.objects, "u1/d1/view_1_old.png")
}

func TestDesignService_GenerateImages_IngestFailureKeepsPreviousImage(t *testing.T) {
	fx := newGenerateFixture()
	fx.ingest.failViews[1] = ErrSourceFetch

	outcomes, err := fx.svc.GenerateImages(context.Background(), "u1", "d1", []ViewRequest{
		{Index: 1, Label: "front"},
		{Index: 2, Label: "side"},
	})
	require.NoError(t, err)
	require.ErrorIs(t, outcomes[0].Err, ErrSourceFetch)
	require.NoError(t, outcomes[1].Err)

	view1 := fx.store.viewRefs("d1", 1)
	require.Len(t, view1, 1)
	require.Equal(t, "u1/d1/view_1_old.png", view1[0].ObjectKey)
}

func TestDesignService_GenerateImages_FailedSwapKeepsPreviousImage(t *testing.T) {
	fx := newGenerateFixture()
	fx.store.replaceErr = errors.New("insert failed")

	outcomes, err := fx.svc.GenerateImages(context.Background(), "u1", "d1", []ViewRequest{
		{Index: 1, Label: "front"},
	})
	require.NoError(t, err)
	require.Error(t, outcomes[0].Err)
	require.Nil(t, outcomes[0].Ref)

	view1 := fx.store.viewRefs("d1", 1)
	require.Len(t, view1, 1, "a failed swap must not leave the view without a reference")
	require.Equal(t, "u1/d1/view_1_old.png", view1[0].ObjectKey)
	require.Contains(t, fx.blobs.objects, "u1/d1/view_1_old.png", "previous blob survives")
	require.NotContains(t, fx.blobs.objects, "u1/d1/view_1_new.png", "orphaned replacement blob is discarded")

	require.NotEqual(t, models.DesignStatusGenerated, fx.store.statuses["d1"])
}

func TestDesignService_GenerateImages_NotOwner(t *testing.T) {
	fx := newGenerateFixture()

	_, err := fx.svc.GenerateImages(context.Background(), "u2", "d1", []ViewRequest{{Index: 1, Label: "front"}})
	require.ErrorIs(t, err, ErrNotDesignOwner)
}

func TestDesignService_Create_Validation(t *testing.T) {
	store := newFakeDesignStore()
	svc := NewDesignService(store, &fakeGenerator{}, &fakeIngestor{store: newFakeBlobStore()}, newFakeBlobStore(), zerolog.Nop())

	_, err := svc.Create(context.Background(), CreateDesignInput{OwnerID: "u1", Prompt: "  "})
	require.ErrorIs(t, err, ErrInvalidDesign)

	_, err = svc.Create(context.Background(), CreateDesignInput{OwnerID: "u1", Prompt: "ring", PriceCents: -1})
	require.ErrorIs(t, err, ErrInvalidDesign)

	require.Empty(t, store.designs)
}
