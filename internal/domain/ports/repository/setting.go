package repository

import (
	"context"
)

// SettingRepository stores named operational knobs, currently the scarce
// reward quota. Last write wins; values are read fresh on every decision.
type SettingRepository interface {
	// Get returns domain.ErrNotFound when the key was never written.
	Get(ctx context.Context, tx Tx, key string) (string, error)
	Set(ctx context.Context, tx Tx, key, value string) error
}

// SettingCinemaLimit is the mutable ceiling on cinema rewards.
const SettingCinemaLimit = "cinema_limit"
