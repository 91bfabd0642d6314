package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/marcuseden/slavajewlery-sub001/internal/config"
)

func newIngestService(store BlobStore) *IngestService {
	return NewIngestService(store, config.GeneratorConfig{
		FetchTimeout: 0,
		MaxImageSize: 1 << 20,
	}, zerolog.Nop())
}

func TestIngest_StoresUnderOwnerDesignViewKey(t *testing.T) {
	source := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("png-bytes"))
	}))
	defer source.Close()

	store := newFakeBlobStore()
	svc := newIngestService(store)

	res, err := svc.Ingest(context.Background(), IngestInput{
		SourceURL: source.URL,
		OwnerID:   "u1",
		DesignID:  "d1",
		ViewIndex: 2,
	})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(res.ObjectKey, "u1/d1/view_2_"), "key %q", res.ObjectKey)
	require.True(t, strings.HasSuffix(res.ObjectKey, ".png"))
	require.Equal(t, []byte("png-bytes"), store.objects[res.ObjectKey])
	require.Equal(t, store.PublicURL(res.ObjectKey), res.PublicURL)
}

func TestIngest_RepeatedCallsNeverCollide(t *testing.T) {
	source := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("x"))
	}))
	defer source.Close()

	store := newFakeBlobStore()
	svc := newIngestService(store)
	input := IngestInput{SourceURL: source.URL, OwnerID: "u1", DesignID: "d1", ViewIndex: 1}

	first, err := svc.Ingest(context.Background(), input)
	require.NoError(t, err)
	second, err := svc.Ingest(context.Background(), input)
	require.NoError(t, err)
	require.NotEqual(t, first.ObjectKey, second.ObjectKey)
	require.Len(t, store.objects, 2)
}

func TestIngest_SourceFailure(t *testing.T) {
	source := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer source.Close()

	svc := newIngestService(newFakeBlobStore())
	_, err := svc.Ingest(context.Background(), IngestInput{
		SourceURL: source.URL,
		OwnerID:   "u1",
		DesignID:  "d1",
		ViewIndex: 1,
	})
	require.ErrorIs(t, err, ErrSourceFetch)
}

func TestIngest_OversizeRejected(t *testing.T) {
	source := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(make([]byte, 2<<20))
	}))
	defer source.Close()

	svc := newIngestService(newFakeBlobStore())
	_, err := svc.Ingest(context.Background(), IngestInput{
		SourceURL: source.URL,
		OwnerID:   "u1",
		DesignID:  "d1",
		ViewIndex: 1,
	})
	require.ErrorIs(t, err, ErrSourceFetch)
}

func TestIngestBatch_PartialFailure(t *testing.T) {
	ok := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("img"))
	}))
	defer ok.Close()
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer broken.Close()

	store := newFakeBlobStore()
	svc := newIngestService(store)

	results := svc.IngestBatch(context.Background(), "u1", "d1", []BatchItem{
		{SourceURL: ok.URL, ViewIndex: 1},
		{SourceURL: broken.URL, ViewIndex: 2},
		{SourceURL: ok.URL, ViewIndex: 3},
	})

	require.Len(t, results, 3, "every item must report an outcome")
	require.Equal(t, []int{1, 2, 3}, []int{results[0].ViewIndex, results[1].ViewIndex, results[2].ViewIndex}, "output order must match input order")

	require.NoError(t, results[0].Err)
	require.NotEmpty(t, results[0].PublicURL)
	require.ErrorIs(t, results[1].Err, ErrSourceFetch)
	require.Empty(t, results[1].ObjectKey)
	require.NoError(t, results[2].Err)
	require.NotEmpty(t, results[2].PublicURL)

	require.Len(t, store.objects, 2)
}
