package models

import "time"

// DeletionRequest records a pending account erasure. A scheduled request can
// be cancelled until the grace period passes and the anonymization runs.
type DeletionRequest struct {
	UserID       string     `json:"userId"`
	Reason       string     `json:"reason"`
	RequestedAt  time.Time  `json:"requestedAt"`
	ScheduledFor time.Time  `json:"scheduledFor"`
	ExecutedAt   *time.Time `json:"executedAt,omitempty"`
}

// ExportDocument is the full data-subject export, serialized as one JSON
// attachment.
type ExportDocument struct {
	UserID      string           `json:"userId"`
	GeneratedAt time.Time        `json:"generatedAt"`
	User        ExportUser       `json:"user"`
	Designs     []Design         `json:"designs"`
	ShareLinks  []ShareLink      `json:"shareLinks"`
	Orders      []Order          `json:"orders"`
	Deletion    *DeletionRequest `json:"deletionRequest,omitempty"`
}

type ExportUser struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}
