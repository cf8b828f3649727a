package domain

import "time"

// ShareableLink is the audit record of a share link. Whether the link is
// still live is decided by the TTL store, not by this row.
type ShareableLink struct {
	LinkID    string    `json:"linkId"`
	VideoID   int64     `json:"videoId"`
	TTL       int64     `json:"ttl"` // seconds
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ShareLinkResult is returned to the client after a link has been created
type ShareLinkResult struct {
	Link      string         `json:"link"`
	Shareable *ShareableLink `json:"-"`
}
