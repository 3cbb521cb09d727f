package unisender

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"telegram-giveaway-bot/internal/config"
	"telegram-giveaway-bot/internal/domain"
	"telegram-giveaway-bot/internal/domain/ports/adapter"
	"telegram-giveaway-bot/internal/infra/metrics"
)

var _ adapter.SubscriptionVerifier = (*Client)(nil)

// Client talks to the Unisender getContact API. The call is slow network
// I/O, so callers must never hold a database transaction open across it.
type Client struct {
	apiKey  string
	baseURL string
	lang    string
	listID  string
	http    *http.Client
	log     *zerolog.Logger
}

func NewClient(cfg *config.UnisenderConfig, logger *zerolog.Logger) *Client {
	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		lang:    cfg.Lang,
		listID:  cfg.ListID,
		http:    &http.Client{Timeout: cfg.Timeout},
		log:     logger,
	}
}

// getContact response shapes. Unisender returns either
// {"result": {...}} or {"error": "...", "code": "..."}.
type apiResponse struct {
	Error  string     `json:"error"`
	Code   string     `json:"code"`
	Result *apiResult `json:"result"`
}

type apiResult struct {
	Email apiEmail  `json:"email"`
	Lists []apiList `json:"lists"`
}

type apiEmail struct {
	Status string `json:"status"` // invited/active/...
}

type apiList struct {
	ID     json.Number `json:"id"`
	Status string      `json:"status"`
}

// CheckConfirmed fetches the contact and reduces it to a ContactStatus for
// the configured list. An unknown contact degrades to the zero status; any
// other API or transport failure maps to domain.ErrVerifierUnavailable.
func (c *Client) CheckConfirmed(ctx context.Context, email string) (adapter.ContactStatus, error) {
	data, err := c.getContact(ctx, email)
	if err != nil {
		metrics.ObserveVerifierCall("error")
		return adapter.ContactStatus{}, err
	}

	if data.Error != "" {
		if data.Code == "object_not_found" {
			c.log.Warn().Str("code", data.Code).Msg("unisender contact not found")
			metrics.ObserveVerifierCall("absent")
			return adapter.ContactStatus{}, nil
		}
		c.log.Error().Str("code", data.Code).Str("error", data.Error).Msg("unisender error response")
		metrics.ObserveVerifierCall("error")
		return adapter.ContactStatus{}, fmt.Errorf("unisender error %s: %s: %w", data.Code, data.Error, domain.ErrVerifierUnavailable)
	}

	status := adapter.ContactStatus{}
	if data.Result != nil {
		status.EmailStatus = data.Result.Email.Status
		for _, l := range data.Result.Lists {
			if l.ID.String() == c.listID {
				status.InList = true
				status.ListStatus = l.Status
				break
			}
		}
	}
	metrics.ObserveVerifierCall("ok")
	return status, nil
}

func (c *Client) getContact(ctx context.Context, email string) (*apiResponse, error) {
	endpoint := fmt.Sprintf("%s/%s/api/getContact", c.baseURL, c.lang)
	params := url.Values{}
	params.Set("format", "json")
	params.Set("api_key", c.apiKey)
	params.Set("email", email)
	params.Set("include_lists", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("getContact: %v: %w", err, domain.ErrVerifierUnavailable)
	}
	defer resp.Body.Close()
	c.log.Debug().Int("status", resp.StatusCode).Dur("elapsed", time.Since(start)).Msg("unisender response")

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("getContact: http %d: %w", resp.StatusCode, domain.ErrVerifierUnavailable)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %v: %w", err, domain.ErrVerifierUnavailable)
	}
	var data apiResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("decode body: %v: %w", err, domain.ErrVerifierUnavailable)
	}
	return &data, nil
}
