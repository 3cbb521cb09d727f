package model

import (
	"time"
)

// PromoCode is a single-use reward code held in the shared pool.
// The used=false -> used=true transition is one-way; at most one
// participant ever consumes a given code.
type PromoCode struct {
	ID                int64
	Kind              RewardKind
	Code              string
	IsUsed            bool
	UsedByParticipant *string    // Pointer to allow for NULL
	UsedAt            *time.Time // Pointer to allow for NULL
}

// PoolStats summarizes the pool for one code kind.
type PoolStats struct {
	Total int
	Used  int
	Free  int
}
