package entity

import "time"

// ConversationContext is the last resolved filter set for one owner
type ConversationContext struct {
	OwnerKey      string           `json:"owner_key"`
	Filters       ExtractedFilters `json:"filters"`
	OriginalQuery string           `json:"original_query"`
	CreatedAt     time.Time        `json:"created_at"`
	ExpiresAt     time.Time        `json:"expires_at"`
}

// IsLive reports whether the context is still valid at now
func (c *ConversationContext) IsLive(now time.Time) bool {
	return c != nil && now.Before(c.ExpiresAt)
}
