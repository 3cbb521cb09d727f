package usecase

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"telegram-giveaway-bot/internal/domain"
	"telegram-giveaway-bot/internal/domain/ports/repository"
)

//go:embed texts/defaults.yaml
var textsFS embed.FS

type textEntry struct {
	Key         string `yaml:"key"`
	Description string `yaml:"description"`
	Value       string `yaml:"value"`
}

// TextsUseCase resolves user-facing bot texts: an operator override stored in
// the database wins over the compiled-in default catalog.
type TextsUseCase struct {
	repo     repository.BotTextRepository
	catalog  []textEntry
	defaults map[string]string
}

func NewTextsUseCase(repo repository.BotTextRepository) (*TextsUseCase, error) {
	data, err := textsFS.ReadFile("texts/defaults.yaml")
	if err != nil {
		return nil, fmt.Errorf("read default texts: %w", err)
	}
	var catalog []textEntry
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("parse default texts: %w", err)
	}
	defaults := make(map[string]string, len(catalog))
	for _, e := range catalog {
		defaults[e.Key] = strings.TrimRight(e.Value, "\n")
	}
	return &TextsUseCase{repo: repo, catalog: catalog, defaults: defaults}, nil
}

// Known reports whether the key exists in the catalog. Only known keys can be
// overridden, so a typo in the admin panel fails loudly instead of creating
// an orphan row.
func (uc *TextsUseCase) Known(key string) bool {
	_, ok := uc.defaults[key]
	return ok
}

// Keys returns catalog keys in declaration order with their descriptions.
func (uc *TextsUseCase) Keys() [][2]string {
	out := make([][2]string, 0, len(uc.catalog))
	for _, e := range uc.catalog {
		out = append(out, [2]string{e.Key, e.Description})
	}
	return out
}

// T renders the text for key, formatting args with the stored template.
func (uc *TextsUseCase) T(ctx context.Context, key string, args ...interface{}) string {
	// Any storage failure falls back to the default so the bot keeps talking.
	format, err := uc.repo.Get(ctx, nil, key)
	if err != nil || format == "" {
		var ok bool
		format, ok = uc.defaults[key]
		if !ok {
			return key
		}
	}
	if len(args) > 0 {
		return fmt.Sprintf(format, args...)
	}
	return format
}

// Current returns the effective text without formatting, for the admin panel.
func (uc *TextsUseCase) Current(ctx context.Context, key string) (string, error) {
	if !uc.Known(key) {
		return "", domain.ErrNotFound
	}
	v, err := uc.repo.Get(ctx, nil, key)
	if err == nil {
		return v, nil
	}
	if errors.Is(err, domain.ErrNotFound) {
		return uc.defaults[key], nil
	}
	return "", err
}

// Override stores a new value for a known key.
func (uc *TextsUseCase) Override(ctx context.Context, key, value string) error {
	if !uc.Known(key) {
		return domain.ErrNotFound
	}
	if strings.TrimSpace(value) == "" {
		return domain.ErrInvalidArgument
	}
	return uc.repo.Set(ctx, nil, key, value)
}
