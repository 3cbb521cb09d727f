package repository

import (
	"context"
)

// ConversationState holds an admin's progress in a multi-step panel flow.
type ConversationState struct {
	Step string            `json:"step"` // e.g. "awaiting_text_value", "awaiting_promo_list"
	Data map[string]string `json:"data"` // collected info like the text key or load mode
}

// StateRepository is the port for managing per-user conversational state.
type StateRepository interface {
	SetState(ctx context.Context, tgID int64, state *ConversationState) error
	GetState(ctx context.Context, tgID int64) (*ConversationState, error)
	ClearState(ctx context.Context, tgID int64) error
}
