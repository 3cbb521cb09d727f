package repository

import (
	"context"
)

// BotTextRepository stores operator overrides for user-facing bot texts.
// Keys without an override fall back to the compiled-in catalog.
type BotTextRepository interface {
	Get(ctx context.Context, tx Tx, key string) (string, error)
	Set(ctx context.Context, tx Tx, key, value string) error
	ListKeys(ctx context.Context, tx Tx) ([]string, error)
}
