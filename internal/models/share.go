package models

import "time"

// ShareLink maps an unguessable token to a design's image set. Possession of
// the token is the sole credential; rows are read-only after creation.
type ShareLink struct {
	Token      string    `json:"token"`
	DesignID   string    `json:"designId"`
	UserID     string    `json:"userId"`
	ImagePaths []string  `json:"imagePaths"`
	CreatedAt  time.Time `json:"createdAt"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

func (l ShareLink) Expired(now time.Time) bool {
	return !l.ExpiresAt.After(now)
}
