package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/pnlboard/leaderboard-api/internal/logic"
	"github.com/pnlboard/leaderboard-api/internal/models"
	"github.com/pnlboard/leaderboard-api/internal/ranking"
	"github.com/pnlboard/leaderboard-api/internal/store"
)

const (
	testWallet  = "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin"
	otherWallet = "So11111111111111111111111111111111111111112"
)

func newTestHandler(users UserActions, limiter WriteLimiter) *Handler {
	return New(Config{
		Users:       users,
		Leaderboard: &MockLeaderboard{},
		Limiter:     limiter,
		AdminToken:  "s3cret",
		Logger:      zap.NewNop(),
	})
}

func serve(h *Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.Routes().ServeHTTP(w, req)
	return w
}

func TestRegisterUser_TableDriven(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		register       func(ctx context.Context, address string) (models.UserRecord, bool, error)
		limited        bool
		expectedStatus int
	}{
		{
			name:           "New wallet",
			body:           `{"walletAddress":"` + testWallet + `"}`,
			expectedStatus: http.StatusCreated,
		},
		{
			name: "Existing wallet",
			body: `{"walletAddress":"` + testWallet + `"}`,
			register: func(ctx context.Context, address string) (models.UserRecord, bool, error) {
				return models.UserRecord{ID: 1, WalletAddress: address}, false, nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Invalid address",
			body:           `{"walletAddress":"not-a-key"}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Missing address",
			body:           `{}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Malformed JSON",
			body:           `{"walletAddress":`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Rate limited",
			body:           `{"walletAddress":"` + testWallet + `"}`,
			limited:        true,
			expectedStatus: http.StatusTooManyRequests,
		},
		{
			name: "Store failure",
			body: `{"walletAddress":"` + testWallet + `"}`,
			register: func(ctx context.Context, address string) (models.UserRecord, bool, error) {
				return models.UserRecord{}, false, errors.New("connection refused")
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limiter := &MockLimiter{AllowFunc: func(ctx context.Context, wallet string) (bool, error) {
				return !tt.limited, nil
			}}
			h := newTestHandler(&MockUserActions{RegisterOrFetchFunc: tt.register}, limiter)

			w := serve(h, http.MethodPost, "/users", tt.body)

			if w.Code != tt.expectedStatus {
				t.Errorf("Status = %d, want %d (body %s)", w.Code, tt.expectedStatus, w.Body.String())
			}
		})
	}
}

func TestGetUser(t *testing.T) {
	users := &MockUserActions{GetProfileFunc: func(ctx context.Context, address string) (models.UserRecord, error) {
		if address == testWallet {
			return models.UserRecord{ID: 3, WalletAddress: address, Listed: true}, nil
		}
		return models.UserRecord{}, store.ErrNotFound
	}}
	h := newTestHandler(users, nil)

	tests := []struct {
		path string
		want int
	}{
		{"/users/" + testWallet, http.StatusOK},
		{"/users/" + otherWallet, http.StatusNotFound},
		{"/users/abc", http.StatusBadRequest},
	}
	for _, tt := range tests {
		w := serve(h, http.MethodGet, tt.path, "")
		if w.Code != tt.want {
			t.Errorf("GET %s = %d, want %d", tt.path, w.Code, tt.want)
		}
	}

	w := serve(h, http.MethodGet, "/users/"+testWallet, "")
	var rec models.UserRecord
	if err := json.NewDecoder(w.Body).Decode(&rec); err != nil {
		t.Fatal(err)
	}
	if rec.ID != 3 || !rec.Listed {
		t.Errorf("record = %+v", rec)
	}
}

func TestUpdateProfile(t *testing.T) {
	var got models.ProfileUpdate
	var updates, reads int
	users := &MockUserActions{
		UpdateProfileFunc: func(ctx context.Context, address string, upd models.ProfileUpdate) (models.UserRecord, error) {
			updates++
			got = upd
			rec := models.UserRecord{WalletAddress: address}
			upd.Apply(&rec)
			return rec, nil
		},
		GetProfileFunc: func(ctx context.Context, address string) (models.UserRecord, error) {
			reads++
			return models.UserRecord{WalletAddress: address}, nil
		},
	}
	h := newTestHandler(users, nil)
	path := "/users/" + testWallet + "/profile"

	w := serve(h, http.MethodPut, path, `{"nickname":"  neo  ","socials":{"twitter":"@neo","kick":""}}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Status = %d: %s", w.Code, w.Body.String())
	}
	if got.Nickname == nil || *got.Nickname != "neo" {
		t.Errorf("nickname not trimmed: %v", got.Nickname)
	}
	if got.Twitter == nil || *got.Twitter != "@neo" || got.Kick == nil || *got.Kick != "" {
		t.Errorf("socials = %+v", got)
	}
	if got.Discord != nil {
		t.Error("absent network should be left untouched")
	}

	if w := serve(h, http.MethodPut, path, `{"socials":{"myspace":"x"}}`); w.Code != http.StatusBadRequest {
		t.Errorf("unknown network status = %d", w.Code)
	}
	if w := serve(h, http.MethodPut, path, `{"nickname":"`+strings.Repeat("n", 33)+`"}`); w.Code != http.StatusBadRequest {
		t.Errorf("long nickname status = %d", w.Code)
	}

	if w := serve(h, http.MethodPut, path, `{}`); w.Code != http.StatusOK {
		t.Errorf("empty update status = %d", w.Code)
	}
	if updates != 1 || reads != 1 {
		t.Errorf("updates=%d reads=%d; empty update should read instead of write", updates, reads)
	}
}

func TestSetListing(t *testing.T) {
	var listedArg *bool
	users := &MockUserActions{SetListingFunc: func(ctx context.Context, address string, listed bool) error {
		if address != testWallet {
			return store.ErrNotFound
		}
		listedArg = &listed
		return nil
	}}
	h := newTestHandler(users, nil)

	tests := []struct {
		name string
		path string
		body string
		want int
	}{
		{"list", "/users/" + testWallet + "/listing", `{"listed":true}`, http.StatusOK},
		{"missing flag", "/users/" + testWallet + "/listing", `{}`, http.StatusBadRequest},
		{"unknown wallet", "/users/" + otherWallet + "/listing", `{"listed":false}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := serve(h, http.MethodPut, tt.path, tt.body); w.Code != tt.want {
				t.Errorf("Status = %d, want %d", w.Code, tt.want)
			}
		})
	}

	if listedArg == nil || !*listedArg {
		t.Errorf("listed flag not passed through")
	}

	// An empty string must not decode as an explicit false.
	listedArg = nil
	if w := serve(h, http.MethodPut, "/users/"+testWallet+"/listing", `{"listed":""}`); w.Code != http.StatusBadRequest {
		t.Errorf("empty string status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	if listedArg != nil {
		t.Errorf("SetListing called with %v for an empty string", *listedArg)
	}
}

func TestGetLeaderboard_Period(t *testing.T) {
	var periods []models.Period
	lb := &MockLeaderboard{DeriveFunc: func(ctx context.Context, period models.Period) (models.LeaderboardResponse, error) {
		periods = append(periods, period)
		if period == models.PeriodMonthly {
			return models.LeaderboardResponse{}, errors.New("db down")
		}
		return models.LeaderboardResponse{Period: period}, nil
	}}
	h := &Handler{leaderboard: lb, logger: zap.NewNop().Sugar()}

	r := chi.NewRouter()
	r.Get("/leaderboard", h.GetLeaderboard)

	for _, q := range []string{"", "?period=weekly", "?period=yearly"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/leaderboard"+q, nil))
		if w.Code != http.StatusOK {
			t.Errorf("%q status = %d", q, w.Code)
		}
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/leaderboard?period=monthly", nil))
	if w.Code != http.StatusInternalServerError {
		t.Errorf("derive failure status = %d", w.Code)
	}

	want := []models.Period{models.PeriodDaily, models.PeriodWeekly, models.PeriodDaily, models.PeriodMonthly}
	for i, p := range want {
		if periods[i] != p {
			t.Errorf("call %d period = %q, want %q", i, periods[i], p)
		}
	}
}

func TestReady(t *testing.T) {
	tests := []struct {
		name   string
		checks map[string]func(ctx context.Context) error
		want   int
	}{
		{"no dependencies", map[string]func(ctx context.Context) error{}, http.StatusOK},
		{"all healthy", map[string]func(ctx context.Context) error{
			"postgres": func(context.Context) error { return nil },
			"redis":    func(context.Context) error { return nil },
		}, http.StatusOK},
		{"redis down", map[string]func(ctx context.Context) error{
			"postgres": func(context.Context) error { return nil },
			"redis":    func(context.Context) error { return errors.New("dial tcp: refused") },
		}, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &Handler{checks: tt.checks, snapshots: &MockQueue{depth: 4}, logger: zap.NewNop().Sugar()}
			w := httptest.NewRecorder()
			h.Ready(w, httptest.NewRequest(http.MethodGet, "/ready", nil))

			if w.Code != tt.want {
				t.Errorf("Status = %d, want %d", w.Code, tt.want)
			}
			var body struct {
				Ready      bool            `json:"ready"`
				Checks     map[string]bool `json:"checks"`
				QueueDepth int             `json:"queueDepth"`
			}
			json.NewDecoder(w.Body).Decode(&body)
			if body.Ready != (tt.want == http.StatusOK) || len(body.Checks) != len(tt.checks) || body.QueueDepth != 4 {
				t.Errorf("body = %+v", body)
			}
		})
	}
}

func TestAdminAuthMiddleware(t *testing.T) {
	h := newTestHandler(&MockUserActions{}, nil)

	tests := []struct {
		name   string
		header string
		value  string
		want   int
	}{
		{"missing", "", "", http.StatusUnauthorized},
		{"wrong", "X-Admin-Token", "guess", http.StatusUnauthorized},
		{"header", "X-Admin-Token", "s3cret", http.StatusOK},
		{"bearer", "Authorization", "Bearer s3cret", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/system/install", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			w := httptest.NewRecorder()
			h.Routes().ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Errorf("Status = %d, want %d", w.Code, tt.want)
			}
		})
	}

	// Without a configured token every request is rejected.
	open := New(Config{Users: &MockUserActions{}, Logger: zap.NewNop()})
	req := httptest.NewRequest(http.MethodPost, "/system/install", nil)
	req.Header.Set("X-Admin-Token", "anything")
	w := httptest.NewRecorder()
	open.Routes().ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unset admin token status = %d", w.Code)
	}
}

func TestSplitStatements(t *testing.T) {
	got := splitStatements("CREATE TABLE a (x UInt8);\n\n  CREATE TABLE b (y UInt8) ;\n")
	if len(got) != 2 || got[0] != "CREATE TABLE a (x UInt8)" || got[1] != "CREATE TABLE b (y UInt8)" {
		t.Errorf("splitStatements = %q", got)
	}
}

func TestRoutes_ListingFlowWithMemoryStore(t *testing.T) {
	st := store.NewMemoryStore()
	users := logic.NewUserService(st, nil, zap.NewNop())
	h := New(Config{
		Users:       users,
		Leaderboard: logic.NewLeaderboardService(st, ranking.NewEngine(ranking.NewSeededSource(7)), nil, zap.NewNop()),
		Logger:      zap.NewNop(),
	})

	for _, addr := range []string{testWallet, otherWallet} {
		if w := serve(h, http.MethodPost, "/users", `{"walletAddress":"`+addr+`"}`); w.Code != http.StatusCreated {
			t.Fatalf("register %s = %d", addr, w.Code)
		}
	}
	if w := serve(h, http.MethodPost, "/users", `{"walletAddress":"`+testWallet+`"}`); w.Code != http.StatusOK {
		t.Errorf("second register = %d, want 200", w.Code)
	}
	if w := serve(h, http.MethodPut, "/users/"+testWallet+"/listing", `{"listed":true}`); w.Code != http.StatusOK {
		t.Fatalf("set listing = %d", w.Code)
	}

	w := serve(h, http.MethodGet, "/leaderboard/listed", "")
	var listed []models.UserRecord
	json.NewDecoder(w.Body).Decode(&listed)
	if len(listed) != 1 || listed[0].WalletAddress != testWallet {
		t.Errorf("listed = %+v", listed)
	}

	w = serve(h, http.MethodGet, "/leaderboard?period=weekly", "")
	var board models.LeaderboardResponse
	if err := json.NewDecoder(w.Body).Decode(&board); err != nil {
		t.Fatal(err)
	}
	if board.Period != models.PeriodWeekly || len(board.TopTraders) != 1 || len(board.RankedTraders) != 0 {
		t.Errorf("board = %+v", board)
	}
	top := board.TopTraders[0]
	if top.Rank != 1 || top.Position != models.PositionCenter || top.Name != "Trader 9xQe" {
		t.Errorf("top trader = %+v", top)
	}
}
