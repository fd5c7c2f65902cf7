// Package client calls the leaderboard HTTP API on behalf of a session.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/pnlboard/leaderboard-api/internal/models"
	"github.com/pnlboard/leaderboard-api/internal/store"
)

// ErrTransient marks failures worth retrying later: transport errors and 5xx.
var ErrTransient = errors.New("transient network failure")

// APIError is a non-retryable error response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.SugaredLogger
}

// New builds a client for an API rooted at baseURL, e.g. http://host/api/v1.
func New(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.Sugar(),
	}
}

func (c *Client) RegisterOrFetchUser(ctx context.Context, address string) (models.UserRecord, error) {
	var rec models.UserRecord
	err := c.do(ctx, http.MethodPost, "/users", models.RegisterUserRequest{WalletAddress: address}, &rec)
	return rec, err
}

func (c *Client) FetchUserProfile(ctx context.Context, address string) (models.UserRecord, error) {
	var rec models.UserRecord
	err := c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(address), nil, &rec)
	return rec, err
}

func (c *Client) UpdateUserProfile(ctx context.Context, address string, upd models.ProfileUpdate) (models.UserRecord, error) {
	body := models.UpdateProfileRequest{Nickname: upd.Nickname, Socials: map[string]string{}}
	for name, v := range map[string]*string{
		"telegram": upd.Telegram,
		"discord":  upd.Discord,
		"twitter":  upd.Twitter,
		"twitch":   upd.Twitch,
		"kick":     upd.Kick,
	} {
		if v != nil {
			body.Socials[name] = *v
		}
	}

	var rec models.UserRecord
	err := c.do(ctx, http.MethodPut, "/users/"+url.PathEscape(address)+"/profile", body, &rec)
	return rec, err
}

func (c *Client) SetListingFlag(ctx context.Context, address string, listed bool) error {
	var resp models.SetListingResponse
	if err := c.do(ctx, http.MethodPut, "/users/"+url.PathEscape(address)+"/listing", models.SetListingRequest{Listed: &listed}, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return &APIError{Status: http.StatusOK, Message: "listing update not acknowledged"}
	}
	return nil
}

func (c *Client) FetchListedLeaderboard(ctx context.Context) ([]models.UserRecord, error) {
	var recs []models.UserRecord
	err := c.do(ctx, http.MethodGet, "/leaderboard/listed", nil, &recs)
	return recs, err
}

// FetchLeaderboard returns the server-side derivation for a period tab.
func (c *Client) FetchLeaderboard(ctx context.Context, period models.Period) (models.LeaderboardResponse, error) {
	var resp models.LeaderboardResponse
	err := c.do(ctx, http.MethodGet, "/leaderboard?period="+url.QueryEscape(string(period)), nil, &resp)
	return resp, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w: %v", method, path, ErrTransient, err)
	}
	defer resp.Body.Close()

	c.logger.Debugw("API call", "method", method, "path", path, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode >= 400 {
		return statusError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func statusError(resp *http.Response) error {
	var payload struct {
		Error string `json:"error"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if json.Unmarshal(raw, &payload) != nil || payload.Error == "" {
		payload.Error = http.StatusText(resp.StatusCode)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s: %w", payload.Error, store.ErrNotFound)
	case resp.StatusCode == http.StatusTooManyRequests, resp.StatusCode >= 500:
		return fmt.Errorf("%w: %d %s", ErrTransient, resp.StatusCode, payload.Error)
	default:
		return &APIError{Status: resp.StatusCode, Message: payload.Error}
	}
}
