package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"telegram-giveaway-bot/internal/domain/ports/adapter"
	"telegram-giveaway-bot/internal/domain/ports/repository"
)

// Conversation steps for the multi-step admin flows. The step and its context
// live in Redis, so any polling worker can pick up the admin's next message.
const (
	stepEditText  = "edit_text" // Data["key"] holds the text key
	stepSetLimit  = "set_limit"
	stepLoadCodes = "load_codes" // Data["mode"] is append|replace
)

func (r *RealTelegramBotAdapter) sendAdminPanel(ctx context.Context, tgID int64) error {
	rows := [][]adapter.InlineButton{
		{
			{Text: "📝 Texts", Data: "admin:texts"},
			{Text: "🎛 Limit", Data: "admin:limit"},
		},
		{
			{Text: "🎟 Codes", Data: "admin:codes"},
			{Text: "📊 Stats", Data: "admin:stats"},
		},
		{
			{Text: "📤 Export", Data: "admin:export"},
			{Text: "🧹 Purge", Data: "admin:purge"},
		},
	}
	return r.SendButtons(ctx, tgID, "Admin panel", rows)
}

func (r *RealTelegramBotAdapter) handleAdminCallback(ctx context.Context, tgID int64, action string) error {
	switch {
	case action == "panel" || action == "cancel":
		if err := r.states.ClearState(ctx, tgID); err != nil {
			r.log.Warn().Err(err).Msg("clear state failed")
		}
		return r.sendAdminPanel(ctx, tgID)

	case action == "texts":
		return r.sendTextsMenu(ctx, tgID)

	case strings.HasPrefix(action, "text:"):
		return r.startTextEdit(ctx, tgID, strings.TrimPrefix(action, "text:"))

	case action == "limit":
		return r.startLimitEdit(ctx, tgID)

	case action == "codes":
		return r.sendCodesMenu(ctx, tgID)

	case action == "codes_add", action == "codes_replace":
		mode := "append"
		if action == "codes_replace" {
			mode = "replace"
		}
		state := &repository.ConversationState{Step: stepLoadCodes, Data: map[string]string{"mode": mode}}
		if err := r.states.SetState(ctx, tgID, state); err != nil {
			return err
		}
		prompt := "Paste the codes, one per line. Spaces inside a line are ignored."
		if mode == "replace" {
			prompt = "Paste the new code list, one per line. ⚠️ All existing codes will be removed first."
		}
		return r.sendWithCancel(ctx, tgID, prompt)

	case action == "stats":
		return r.sendStats(ctx, tgID)

	case action == "export":
		return r.sendExport(ctx, tgID)

	case action == "purge":
		return r.SendButtons(ctx, tgID,
			"Delete ALL participants? This cannot be undone.",
			[][]adapter.InlineButton{
				{{Text: "Yes, delete participants", Data: "admin:purge_yes"}},
				{{Text: "Delete AND free all codes", Data: "admin:purge_reset"}},
				{{Text: "Cancel", Data: "admin:panel"}},
			})

	case action == "purge_yes", action == "purge_reset":
		removed, reset, err := r.facade.AdminUC.PurgeParticipants(ctx, action == "purge_reset")
		if err != nil {
			r.log.Error().Err(err).Msg("purge failed")
			return r.SendMessage(ctx, tgID, "Purge failed, nothing was deleted.")
		}
		msg := fmt.Sprintf("Removed %d participants.", removed)
		if action == "purge_reset" {
			msg += fmt.Sprintf(" Freed %d codes.", reset)
		}
		return r.SendMessage(ctx, tgID, msg)

	default:
		return r.sendAdminPanel(ctx, tgID)
	}
}

func (r *RealTelegramBotAdapter) sendTextsMenu(ctx context.Context, tgID int64) error {
	keys := r.facade.TextsUC.Keys()
	rows := make([][]adapter.InlineButton, 0, len(keys)+1)
	for _, k := range keys {
		rows = append(rows, []adapter.InlineButton{{Text: k[0], Data: "admin:text:" + k[0]}})
	}
	rows = append(rows, []adapter.InlineButton{{Text: "« Back", Data: "admin:panel"}})
	return r.SendButtons(ctx, tgID, "Pick a text to edit:", rows)
}

func (r *RealTelegramBotAdapter) startTextEdit(ctx context.Context, tgID int64, key string) error {
	current, err := r.facade.TextsUC.Current(ctx, key)
	if err != nil {
		return r.SendMessage(ctx, tgID, "Unknown text key.")
	}
	state := &repository.ConversationState{Step: stepEditText, Data: map[string]string{"key": key}}
	if err := r.states.SetState(ctx, tgID, state); err != nil {
		return err
	}
	return r.sendWithCancel(ctx, tgID,
		fmt.Sprintf("Current value of %s:\n\n%s\n\nSend the new text.", key, current))
}

func (r *RealTelegramBotAdapter) startLimitEdit(ctx context.Context, tgID int64) error {
	limit, err := r.facade.AdminUC.CinemaLimit(ctx)
	if err != nil {
		r.log.Error().Err(err).Msg("limit lookup failed")
		return r.SendMessage(ctx, tgID, "Could not read the current limit.")
	}
	state := &repository.ConversationState{Step: stepSetLimit, Data: map[string]string{}}
	if err := r.states.SetState(ctx, tgID, state); err != nil {
		return err
	}
	return r.sendWithCancel(ctx, tgID,
		fmt.Sprintf("Current winner limit: %d.\n\nSend the new limit as a number.", limit))
}

func (r *RealTelegramBotAdapter) sendCodesMenu(ctx context.Context, tgID int64) error {
	return r.SendButtons(ctx, tgID, "Promo code pool:", [][]adapter.InlineButton{
		{{Text: "➕ Add codes", Data: "admin:codes_add"}},
		{{Text: "♻️ Replace all codes", Data: "admin:codes_replace"}},
		{{Text: "« Back", Data: "admin:panel"}},
	})
}

func (r *RealTelegramBotAdapter) sendStats(ctx context.Context, tgID int64) error {
	stats, err := r.facade.AdminUC.PoolStats(ctx)
	if err != nil {
		r.log.Error().Err(err).Msg("stats failed")
		return r.SendMessage(ctx, tgID, "Could not read the pool stats.")
	}
	limit, err := r.facade.AdminUC.CinemaLimit(ctx)
	if err != nil {
		r.log.Error().Err(err).Msg("limit lookup failed")
		return r.SendMessage(ctx, tgID, "Could not read the current limit.")
	}
	msg := fmt.Sprintf("🎟 Codes: %d total, %d used, %d free\n🎛 Winner limit: %d",
		stats.Total, stats.Used, stats.Free, limit)
	return r.SendMessage(ctx, tgID, msg)
}

func (r *RealTelegramBotAdapter) sendExport(ctx context.Context, tgID int64) error {
	data, count, err := r.facade.AdminUC.ExportParticipantsCSV(ctx)
	if err != nil {
		r.log.Error().Err(err).Msg("export failed")
		return r.SendMessage(ctx, tgID, "Export failed.")
	}
	if count == 0 {
		return r.SendMessage(ctx, tgID, "No participants yet.")
	}
	name := fmt.Sprintf("participants_%s.csv", time.Now().Format("2006-01-02"))
	return r.SendDocument(ctx, tgID, name, data, fmt.Sprintf("%d participants", count))
}

// handleAdminInput consumes the admin's next message according to the stored
// conversation step. State is cleared on every outcome except a retryable
// validation error, where the step stays armed.
func (r *RealTelegramBotAdapter) handleAdminInput(ctx context.Context, tgID int64, state *repository.ConversationState, text string) error {
	switch state.Step {
	case stepEditText:
		key := state.Data["key"]
		if err := r.facade.TextsUC.Override(ctx, key, text); err != nil {
			return r.sendWithCancel(ctx, tgID, "That value was rejected. Send a non-empty text.")
		}
		if err := r.states.ClearState(ctx, tgID); err != nil {
			r.log.Warn().Err(err).Msg("clear state failed")
		}
		return r.SendMessage(ctx, tgID, fmt.Sprintf("Text %s updated.", key))

	case stepSetLimit:
		n, err := strconv.Atoi(strings.TrimSpace(text))
		if err != nil || n < 0 {
			return r.sendWithCancel(ctx, tgID, "Send a non-negative number.")
		}
		if err := r.facade.AdminUC.SetCinemaLimit(ctx, n); err != nil {
			r.log.Error().Err(err).Msg("set limit failed")
			return r.SendMessage(ctx, tgID, "Could not save the limit.")
		}
		if err := r.states.ClearState(ctx, tgID); err != nil {
			r.log.Warn().Err(err).Msg("clear state failed")
		}
		return r.SendMessage(ctx, tgID, fmt.Sprintf("Winner limit set to %d.", n))

	case stepLoadCodes:
		replace := state.Data["mode"] == "replace"
		parsed, inserted, err := r.facade.AdminUC.LoadCodes(ctx, text, replace)
		if err != nil {
			r.log.Error().Err(err).Msg("load codes failed")
			return r.SendMessage(ctx, tgID, "Could not save the codes.")
		}
		if parsed == 0 {
			return r.sendWithCancel(ctx, tgID, "No codes found in that message. Paste one code per line.")
		}
		if err := r.states.ClearState(ctx, tgID); err != nil {
			r.log.Warn().Err(err).Msg("clear state failed")
		}
		return r.SendMessage(ctx, tgID,
			fmt.Sprintf("Parsed %d codes, stored %d new.", parsed, inserted))

	default:
		if err := r.states.ClearState(ctx, tgID); err != nil {
			r.log.Warn().Err(err).Msg("clear state failed")
		}
		return r.sendAdminPanel(ctx, tgID)
	}
}

func (r *RealTelegramBotAdapter) sendWithCancel(ctx context.Context, tgID int64, text string) error {
	return r.SendButtons(ctx, tgID, text, [][]adapter.InlineButton{
		{{Text: "Cancel", Data: "admin:cancel"}},
	})
}
