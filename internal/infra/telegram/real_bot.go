package telegram

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"telegram-giveaway-bot/internal/application"
	"telegram-giveaway-bot/internal/config"
	"telegram-giveaway-bot/internal/domain"
	"telegram-giveaway-bot/internal/domain/ports/adapter"
	"telegram-giveaway-bot/internal/domain/ports/repository"
	"telegram-giveaway-bot/internal/infra/logging"
	"telegram-giveaway-bot/internal/infra/redis"
)

const (
	cbCheckAgain = "check_again"

	submitLimit  = 6 // messages per window per user
	submitWindow = time.Minute
)

var _ adapter.TelegramBotAdapter = (*RealTelegramBotAdapter)(nil)

// RealTelegramBotAdapter implements adapter.TelegramBotAdapter using tgbotapi
// with concurrent polling.
type RealTelegramBotAdapter struct {
	bot         *tgbotapi.BotAPI
	cfg         *config.BotConfig
	facade      *application.BotFacade
	states      repository.StateRepository
	limiter     *redis.RateLimiter
	log         *zerolog.Logger
	adminIDsMap map[int64]struct{}

	// updateWorkers is how many goroutines process updates concurrently.
	updateWorkers int
	cancelPolling context.CancelFunc
}

func NewRealTelegramBotAdapter(
	cfg *config.BotConfig,
	facade *application.BotFacade,
	states repository.StateRepository,
	limiter *redis.RateLimiter,
	logger *zerolog.Logger,
) (*RealTelegramBotAdapter, error) {
	if cfg == nil {
		return nil, errors.New("bot config is nil")
	}
	if facade == nil {
		return nil, errors.New("bot facade is nil")
	}
	if states == nil {
		return nil, errors.New("state repository is nil")
	}

	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, err
	}

	adminMap := make(map[int64]struct{}, len(cfg.AdminIDs))
	for _, id := range cfg.AdminIDs {
		adminMap[id] = struct{}{}
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = 5
	}

	return &RealTelegramBotAdapter{
		bot:           bot,
		cfg:           cfg,
		facade:        facade,
		states:        states,
		limiter:       limiter,
		log:           logger,
		adminIDsMap:   adminMap,
		updateWorkers: workers,
	}, nil
}

// StartPolling begins polling Telegram for updates concurrently.
// It runs until ctx is canceled.
func (r *RealTelegramBotAdapter) StartPolling(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := r.bot.GetUpdatesChan(u)

	ctx, cancel := context.WithCancel(ctx)
	r.cancelPolling = cancel

	var wg sync.WaitGroup
	updateChan := make(chan tgbotapi.Update, 100)

	for i := 0; i < r.updateWorkers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for {
				select {
				case update, ok := <-updateChan:
					if !ok {
						return
					}
					if err := r.handleUpdate(ctx, update); err != nil {
						r.log.Error().Err(err).Int("worker", workerID).Msg("update handling failed")
					}
				case <-ctx.Done():
					return
				}
			}
		}(i + 1)
	}

	// Dispatcher goroutine: feed updates into updateChan.
	go func() {
		defer close(updateChan)
		for {
			select {
			case update := <-updates:
				select {
				case updateChan <- update:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	<-ctx.Done()
	r.bot.StopReceivingUpdates()
	wg.Wait()
	return nil
}

// StopPolling stops the polling loop gracefully.
func (r *RealTelegramBotAdapter) StopPolling() {
	if r.cancelPolling != nil {
		r.cancelPolling()
	}
}

func (r *RealTelegramBotAdapter) SendMessage(ctx context.Context, tgID int64, text string) error {
	msg := tgbotapi.NewMessage(tgID, text)
	_, err := r.bot.Send(msg)
	return err
}

func (r *RealTelegramBotAdapter) SendButtons(ctx context.Context, tgID int64, text string, rows [][]adapter.InlineButton) error {
	msg := tgbotapi.NewMessage(tgID, text)
	msg.ReplyMarkup = buildKeyboard(rows)
	_, err := r.bot.Send(msg)
	return err
}

func (r *RealTelegramBotAdapter) SendDocument(ctx context.Context, tgID int64, filename string, data []byte, caption string) error {
	doc := tgbotapi.NewDocument(tgID, tgbotapi.FileBytes{Name: filename, Bytes: data})
	doc.Caption = caption
	_, err := r.bot.Send(doc)
	return err
}

func buildKeyboard(rows [][]adapter.InlineButton) tgbotapi.InlineKeyboardMarkup {
	kb := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		btns := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			if b.URL != "" {
				btns = append(btns, tgbotapi.NewInlineKeyboardButtonURL(b.Text, b.URL))
				continue
			}
			btns = append(btns, tgbotapi.NewInlineKeyboardButtonData(b.Text, b.Data))
		}
		kb = append(kb, btns)
	}
	return tgbotapi.NewInlineKeyboardMarkup(kb...)
}

func (r *RealTelegramBotAdapter) handleUpdate(ctx context.Context, update tgbotapi.Update) error {
	ctx = logging.WithTraceID(ctx, uuid.NewString())

	if update.CallbackQuery != nil {
		return r.handleCallback(ctx, update.CallbackQuery)
	}
	if update.Message == nil || update.Message.From == nil {
		return nil
	}

	tgID := update.Message.From.ID
	ctx = logging.WithTgID(ctx, tgID)
	text := update.Message.Text

	if r.limiter != nil {
		ok, err := r.limiter.Allow(ctx, redis.UserCommandKey(tgID, "message"), submitLimit, submitWindow)
		if err != nil {
			r.log.Warn().Err(err).Msg("rate limiter unavailable, letting message through")
		} else if !ok {
			return nil // silently drop the flood
		}
	}

	if len(text) > 0 && text[0] == '/' {
		return r.handleCommand(ctx, tgID, text)
	}

	// A pending admin conversation step takes the message before the email flow.
	if r.isAdmin(tgID) {
		state, err := r.states.GetState(ctx, tgID)
		if err == nil && state != nil {
			return r.handleAdminInput(ctx, tgID, state, text)
		}
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			r.log.Warn().Err(err).Msg("conversation state lookup failed")
		}
	}

	return r.handleEmailMessage(ctx, tgID, text)
}

func (r *RealTelegramBotAdapter) handleCommand(ctx context.Context, tgID int64, text string) error {
	switch strings.TrimSpace(text) {
	case "/start":
		if err := r.states.ClearState(ctx, tgID); err != nil && !errors.Is(err, domain.ErrNotFound) {
			r.log.Warn().Err(err).Msg("clear state failed")
		}
		return r.SendMessage(ctx, tgID, r.facade.HandleStart(ctx))
	case "/admin":
		if !r.isAdmin(tgID) {
			return r.SendMessage(ctx, tgID, r.facade.HandleStart(ctx))
		}
		return r.sendAdminPanel(ctx, tgID)
	default:
		return r.SendMessage(ctx, tgID, r.facade.HandleStart(ctx))
	}
}

func (r *RealTelegramBotAdapter) handleEmailMessage(ctx context.Context, tgID int64, text string) error {
	reply, retry, err := r.facade.HandleEmail(ctx, tgID, text)
	if err != nil {
		r.log.Error().Err(err).Msg("email submission failed")
		return r.SendMessage(ctx, tgID, r.facade.TextsUC.T(ctx, "try_again_later"))
	}
	if retry {
		return r.SendButtons(ctx, tgID, reply, [][]adapter.InlineButton{
			{{Text: "🔄 Check again", Data: cbCheckAgain}},
		})
	}
	return r.SendMessage(ctx, tgID, reply)
}

func (r *RealTelegramBotAdapter) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb.From == nil {
		return nil
	}
	tgID := cb.From.ID
	ctx = logging.WithTgID(ctx, tgID)

	// Ack first so the client stops the spinner even if handling is slow.
	if _, err := r.bot.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		r.log.Warn().Err(err).Msg("callback ack failed")
	}

	data := cb.Data
	if data == cbCheckAgain {
		return r.SendMessage(ctx, tgID, r.facade.HandleCheckAgain(ctx))
	}
	if strings.HasPrefix(data, "admin:") {
		if !r.isAdmin(tgID) {
			return nil
		}
		return r.handleAdminCallback(ctx, tgID, strings.TrimPrefix(data, "admin:"))
	}
	return nil
}

func (r *RealTelegramBotAdapter) isAdmin(tgID int64) bool {
	_, ok := r.adminIDsMap[tgID]
	return ok
}
