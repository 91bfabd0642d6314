package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/marcuseden/slavajewlery-sub001/internal/config"
	"github.com/marcuseden/slavajewlery-sub001/internal/models"
	"github.com/marcuseden/slavajewlery-sub001/internal/repository"
)

type fakePrivacyStore struct {
	requests     map[string]models.DeletionRequest
	anonymized   map[string]bool
	anonymizeErr map[string]error
}

func newFakePrivacyStore() *fakePrivacyStore {
	return &fakePrivacyStore{
		requests:     make(map[string]models.DeletionRequest),
		anonymized:   make(map[string]bool),
		anonymizeErr: make(map[string]error),
	}
}

func (f *fakePrivacyStore) Export(ctx context.Context, userID string) (models.ExportDocument, error) {
	return models.ExportDocument{UserID: userID, GeneratedAt: time.Now().UTC()}, nil
}

func (f *fakePrivacyStore) Anonymize(ctx context.Context, userID string) error {
	if err := f.anonymizeErr[userID]; err != nil {
		return err
	}
	f.anonymized[userID] = true
	req := f.requests[userID]
	req.UserID = userID
	now := time.Now()
	req.ExecutedAt = &now
	f.requests[userID] = req
	return nil
}

func (f *fakePrivacyStore) UpsertDeletionRequest(ctx context.Context, req models.DeletionRequest) error {
	if existing, ok := f.requests[req.UserID]; ok && existing.ExecutedAt != nil {
		return nil
	}
	req.RequestedAt = time.Now()
	f.requests[req.UserID] = req
	return nil
}

func (f *fakePrivacyStore) GetDeletionRequest(ctx context.Context, userID string) (models.DeletionRequest, error) {
	req, ok := f.requests[userID]
	if !ok {
		return models.DeletionRequest{}, repository.ErrDeletionRequestNotFound
	}
	return req, nil
}

func (f *fakePrivacyStore) CancelDeletionRequest(ctx context.Context, userID string) error {
	if req, ok := f.requests[userID]; ok && req.ExecutedAt == nil {
		delete(f.requests, userID)
	}
	return nil
}

func (f *fakePrivacyStore) ListDue(ctx context.Context, now time.Time) ([]string, error) {
	var due []string
	for userID, req := range f.requests {
		if req.ExecutedAt == nil && !req.ScheduledFor.After(now) {
			due = append(due, userID)
		}
	}
	return due, nil
}

func newPrivacyService(store PrivacyStore) *PrivacyService {
	return NewPrivacyService(store, config.PrivacyConfig{GracePeriod: 30 * 24 * time.Hour}, zerolog.Nop())
}

func TestPrivacyService_ScheduleThenCancel(t *testing.T) {
	store := newFakePrivacyStore()
	svc := newPrivacyService(store)
	ctx := context.Background()

	outcome, err := svc.RequestDeletion(ctx, "u1", false, "leaving")
	require.NoError(t, err)
	require.Nil(t, outcome.DeletedAt)
	require.NotNil(t, outcome.ScheduledFor)
	require.WithinDuration(t, time.Now().Add(30*24*time.Hour), *outcome.ScheduledFor, time.Minute)

	status, err := svc.Status(ctx, "u1")
	require.NoError(t, err)
	require.True(t, status.Requested)
	require.True(t, status.CanCancel)

	require.NoError(t, svc.CancelDeletion(ctx, "u1"))

	status, err = svc.Status(ctx, "u1")
	require.NoError(t, err)
	require.False(t, status.Requested)
	require.Nil(t, status.ScheduledFor)
}

func TestPrivacyService_CancelTwiceIsNoop(t *testing.T) {
	store := newFakePrivacyStore()
	svc := newPrivacyService(store)
	ctx := context.Background()

	_, err := svc.RequestDeletion(ctx, "u1", false, "")
	require.NoError(t, err)

	require.NoError(t, svc.CancelDeletion(ctx, "u1"))
	require.NoError(t, svc.CancelDeletion(ctx, "u1"))
}

func TestPrivacyService_CancelWithoutRequestIsNoop(t *testing.T) {
	svc := newPrivacyService(newFakePrivacyStore())
	require.NoError(t, svc.CancelDeletion(context.Background(), "u1"))
}

func TestPrivacyService_ImmediateDeletion(t *testing.T) {
	store := newFakePrivacyStore()
	svc := newPrivacyService(store)

	outcome, err := svc.RequestDeletion(context.Background(), "u1", true, "")
	require.NoError(t, err)
	require.NotNil(t, outcome.DeletedAt)
	require.Nil(t, outcome.ScheduledFor)
	require.True(t, store.anonymized["u1"])
}

func TestPrivacyService_StatusAfterExecution(t *testing.T) {
	store := newFakePrivacyStore()
	svc := newPrivacyService(store)
	ctx := context.Background()

	_, err := svc.RequestDeletion(ctx, "u1", true, "")
	require.NoError(t, err)

	status, err := svc.Status(ctx, "u1")
	require.NoError(t, err)
	require.True(t, status.Requested)
	require.False(t, status.CanCancel)
	require.Nil(t, status.ScheduledFor)
}

func TestPrivacyService_ExecuteDueContinuesPastFailures(t *testing.T) {
	store := newFakePrivacyStore()
	svc := newPrivacyService(store)
	ctx := context.Background()

	past := time.Now().Add(-time.Hour)
	store.requests["u1"] = models.DeletionRequest{UserID: "u1", ScheduledFor: past}
	store.requests["u2"] = models.DeletionRequest{UserID: "u2", ScheduledFor: past}
	store.requests["u3"] = models.DeletionRequest{UserID: "u3", ScheduledFor: time.Now().Add(time.Hour)}
	store.anonymizeErr["u1"] = errors.New("db down")

	executed, err := svc.ExecuteDue(ctx)
	require.Error(t, err)
	require.Equal(t, 1, executed)
	require.False(t, store.anonymized["u1"])
	require.True(t, store.anonymized["u2"])
	require.False(t, store.anonymized["u3"], "not yet due")
}

func TestPrivacyService_ExportContainsUserID(t *testing.T) {
	svc := newPrivacyService(newFakePrivacyStore())
	doc, err := svc.Export(context.Background(), "u42")
	require.NoError(t, err)
	require.Equal(t, "u42", doc.UserID)
}
