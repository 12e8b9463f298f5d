package models

import (
	"encoding/json"
	"time"
)

type EventType string

const (
	EventTypeView           EventType = "view"
	EventTypeAddToCart      EventType = "add_to_cart"
	EventTypeRemoveFromCart EventType = "remove_from_cart"
	EventTypeOpenChannel    EventType = "open_channel"
)

// ValidEventType reports whether t is in the tracking allow-list.
func ValidEventType(t string) bool {
	switch EventType(t) {
	case EventTypeView, EventTypeAddToCart, EventTypeRemoveFromCart, EventTypeOpenChannel:
		return true
	}
	return false
}

type Event struct {
	ID          int       `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	Type        EventType `json:"type"`
	ProductSlug *string   `json:"product_slug"`
	PagePath    *string   `json:"page_path"`
	SessionID   *string   `json:"session_id"`
	Extra       *string   `json:"extra"`
}

type TrackEventRequest struct {
	Type        string          `json:"type"`
	ProductSlug string          `json:"productSlug"`
	PagePath    string          `json:"pagePath"`
	SessionID   string          `json:"sessionId"`
	Extra       json.RawMessage `json:"extra"`
}
