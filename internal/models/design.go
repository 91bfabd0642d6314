package models

import "time"

type DesignStatus string

const (
	DesignStatusDraft     DesignStatus = "draft"
	DesignStatusGenerated DesignStatus = "generated"
	DesignStatusListed    DesignStatus = "listed"
)

type Design struct {
	ID         string       `json:"id"`
	UserID     string       `json:"userId"`
	Prompt     string       `json:"prompt"`
	Title      string       `json:"title"`
	Tags       []string     `json:"tags"`
	PriceCents int64        `json:"priceCents"`
	Status     DesignStatus `json:"status"`
	Images     []ImageRef   `json:"images"`
	CreatedAt  time.Time    `json:"createdAt"`
	UpdatedAt  time.Time    `json:"updatedAt"`
}

// ImageRef is one stored rendering of a design. ObjectKey is the blob store
// path; regeneration replaces refs and removes the old keys.
type ImageRef struct {
	ID        string    `json:"id"`
	DesignID  string    `json:"designId"`
	ViewIndex int       `json:"viewIndex"`
	Label     string    `json:"label"`
	ObjectKey string    `json:"objectKey"`
	PublicURL string    `json:"publicUrl"`
	CreatedAt time.Time `json:"createdAt"`
}
