package telegram

import (
	"testing"

	"telegram-giveaway-bot/internal/domain/ports/adapter"
)

func TestIsAdmin(t *testing.T) {
	r := &RealTelegramBotAdapter{
		adminIDsMap: map[int64]struct{}{1111: {}, 2222: {}},
	}

	if !r.isAdmin(1111) {
		t.Fatalf("expected 1111 to be admin")
	}
	if r.isAdmin(3333) {
		t.Fatalf("expected 3333 to NOT be admin")
	}
}

func TestBuildKeyboard(t *testing.T) {
	kb := buildKeyboard([][]adapter.InlineButton{
		{{Text: "Yes", Data: "cb:yes"}, {Text: "No", Data: "cb:no"}},
		{{Text: "Docs", URL: "https://example.com"}},
	})

	if len(kb.InlineKeyboard) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(kb.InlineKeyboard))
	}
	if len(kb.InlineKeyboard[0]) != 2 {
		t.Fatalf("expected 2 buttons in the first row, got %d", len(kb.InlineKeyboard[0]))
	}
	first := kb.InlineKeyboard[0][0]
	if first.Text != "Yes" || first.CallbackData == nil || *first.CallbackData != "cb:yes" {
		t.Errorf("unexpected first button: %+v", first)
	}
	link := kb.InlineKeyboard[1][0]
	if link.URL == nil || *link.URL != "https://example.com" {
		t.Errorf("expected a URL button, got %+v", link)
	}
}
