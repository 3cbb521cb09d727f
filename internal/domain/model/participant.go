package model

import (
	"time"
)

// RewardKind is the category of reward a participant may receive.
type RewardKind string

const (
	// RewardCinema is the quota-limited reward backed by single-use codes.
	RewardCinema RewardKind = "cinema"
	// RewardPromo is the reusable fallback code issued once cinema codes run out.
	RewardPromo RewardKind = "promo"
	// RewardGuide is the unlimited guide-link reward; it needs no code.
	RewardGuide RewardKind = "guide"
)

// Participant is a giveaway entrant identified by Telegram ID and email.
// Once RewardKind is set it never changes; repeated submissions re-deliver
// the same reward.
type Participant struct {
	ID         string
	TelegramID int64
	Email      string
	RewardKind *RewardKind
	RewardCode *string
	CreatedAt  time.Time
}

// Rewarded reports whether a reward has already been assigned.
func (p *Participant) Rewarded() bool {
	return p != nil && p.RewardKind != nil
}
