package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"rewardledger/core/epoch"
	"rewardledger/core/state"
	"rewardledger/crypto"
	"rewardledger/native/blocklist"
	"rewardledger/native/credits"
	"rewardledger/native/instruments"
	"rewardledger/native/rewards"
	"rewardledger/observability/logging"
	"rewardledger/storage"
)

const (
	testIssuer   = "rewardsd"
	testAudience = "rewardledger"
	day          = uint64(24 * 60 * 60)
	baseEnd      = uint64(1_700_000_000)
)

var (
	testSecret  = []byte("0123456789abcdef0123456789abcdef")
	adminAddr   = [20]byte{0xAD}
	accruerAddr = [20]byte{0xAC}
	userA       = [20]byte{0x0A}
	userB       = [20]byte{0x0B}
)

type fixture struct {
	t      *testing.T
	server *Server
	engine *rewards.Engine
	now    time.Time
}

func newFixture(t *testing.T, limit RateLimit) *fixture {
	t.Helper()
	db := storage.NewMemDB()
	t.Cleanup(db.Close)
	store := state.NewStore(db)

	params := rewards.DefaultParams(adminAddr)
	params.Accruers = [][20]byte{accruerAddr}
	engine, err := rewards.NewEngine(store, params, rewards.Deps{
		Clock:     epoch.NewClock(adminAddr),
		Launch:    epoch.StaticLaunch{At: time.Unix(4_000_000_000, 0)},
		Gate:      blocklist.NewGate(adminAddr),
		PreLaunch: instruments.NewPreLaunch(adminAddr),
		Primary:   instruments.NewLaunch(),
		Escrow:    instruments.NewEscrow(adminAddr),
	})
	require.NoError(t, err)

	f := &fixture{t: t, engine: engine, now: time.Unix(int64(baseEnd), 0)}
	engine.SetNowFunc(func() time.Time { return f.now })

	auth, err := NewAuthenticator(AuthConfig{HMACSecret: testSecret, Issuer: testIssuer, Audience: testAudience}, nil)
	require.NoError(t, err)
	srv, err := New(Config{RateLimit: limit}, engine, store, credits.NewLedger(accruerAddr), auth)
	require.NoError(t, err)
	f.server = srv
	return f
}

func (f *fixture) token(subject [20]byte) string {
	f.t.Helper()
	token, err := IssueToken(testSecret, testIssuer, testAudience, subject, time.Hour, time.Now())
	require.NoError(f.t, err)
	return token
}

func (f *fixture) do(method, path string, caller *[20]byte, body any) *httptest.ResponseRecorder {
	f.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(f.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if caller != nil {
		req.Header.Set("Authorization", "Bearer "+f.token(*caller))
	}
	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func (f *fixture) initialize() {
	f.t.Helper()
	rec := f.do(http.MethodPost, "/v1/admin/initialize", &adminAddr, nil)
	require.Equal(f.t, http.StatusOK, rec.Code, rec.Body.String())
}

func (f *fixture) advanceTo(target uint64) {
	f.t.Helper()
	for {
		summary, err := f.engine.CurrentEpochSummary()
		require.NoError(f.t, err)
		if summary.Epoch >= target {
			return
		}
		rec := f.do(http.MethodPost, "/v1/admin/epochs", &adminAddr, registerEpochRequest{EndTime: baseEnd + summary.Epoch*day})
		require.Equal(f.t, http.StatusOK, rec.Code, rec.Body.String())
	}
}

func (f *fixture) accrue(user [20]byte, amount uint64) {
	f.t.Helper()
	rec := f.do(http.MethodPost, "/v1/accrue", &accruerAddr, amountRequest{User: crypto.Format(user), Amount: amount})
	require.Equal(f.t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestHealthz(t *testing.T) {
	f := newFixture(t, RateLimit{})
	rec := f.do(http.MethodGet, "/healthz", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Header().Get(HeaderRequestID))
}

func TestMutationsRequireBearerToken(t *testing.T) {
	f := newFixture(t, RateLimit{})
	rec := f.do(http.MethodPost, "/v1/claims", nil, claimRequest{Epoch: 16})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "unauthenticated", decode[problem](t, rec).Code)
}

func TestTokenValidation(t *testing.T) {
	f := newFixture(t, RateLimit{})

	expired, err := IssueToken(testSecret, testIssuer, testAudience, userA, time.Minute, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	_, err = f.server.auth.Verify(expired)
	require.Error(t, err)

	wrongAudience, err := IssueToken(testSecret, testIssuer, "someone-else", userA, time.Hour, time.Now())
	require.NoError(t, err)
	_, err = f.server.auth.Verify(wrongAudience)
	require.Error(t, err)

	forged, err := IssueToken([]byte("another-secret-another-secret-00"), testIssuer, testAudience, userA, time.Hour, time.Now())
	require.NoError(t, err)
	_, err = f.server.auth.Verify(forged)
	require.Error(t, err)

	valid, err := IssueToken(testSecret, testIssuer, testAudience, userA, time.Hour, time.Now())
	require.NoError(t, err)
	caller, err := f.server.auth.Verify(valid)
	require.NoError(t, err)
	require.Equal(t, userA, caller)
}

func TestRejectedTokenIsMaskedInLogs(t *testing.T) {
	var buf bytes.Buffer
	auth, err := NewAuthenticator(AuthConfig{HMACSecret: testSecret, Issuer: testIssuer, Audience: testAudience},
		logging.New(&buf, logging.Options{Service: "rewardsd"}))
	require.NoError(t, err)
	forged, err := IssueToken([]byte("another-secret-another-secret-00"), testIssuer, testAudience, userA, time.Hour, time.Now())
	require.NoError(t, err)

	handler := auth.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Fatal("handler must not run for a rejected token")
	}))
	req := httptest.NewRequest(http.MethodPost, "/v1/claims", nil)
	req.Header.Set("Authorization", "Bearer "+forged)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, buf.String(), "token validation failed")
	require.Contains(t, buf.String(), forged[:4]+"..."+logging.RedactedValue)
	require.NotContains(t, buf.String(), forged)
}

func TestAccrueRequiresAccruer(t *testing.T) {
	f := newFixture(t, RateLimit{})
	f.initialize()
	rec := f.do(http.MethodPost, "/v1/accrue", &userA, amountRequest{User: crypto.Format(userA), Amount: 10})
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "unauthorized", decode[problem](t, rec).Code)
}

func TestClaimFlow(t *testing.T) {
	f := newFixture(t, RateLimit{})
	f.initialize()
	f.advanceTo(16)
	f.accrue(userA, 100)
	f.accrue(userB, 300)
	f.advanceTo(17)
	f.now = time.Unix(int64(baseEnd+16*day+1), 0)

	rec := f.do(http.MethodGet, "/v1/epochs/16", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	summary := decode[rewards.EpochSummary](t, rec)
	require.Equal(t, uint64(400), summary.Supply)
	require.Equal(t, uint64(1_000_000_000), summary.RewardPool)
	require.True(t, summary.ClaimsOpen)

	rec = f.do(http.MethodGet, fmt.Sprintf("/v1/epochs/16/users/%s", crypto.Format(userA)), nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	user := decode[userSummaryResponse](t, rec)
	require.Equal(t, uint64(100), user.Balance)
	require.Equal(t, uint64(250_000_000), user.Claimable)

	rec = f.do(http.MethodPost, "/v1/claims", &userA, claimRequest{Epoch: 16})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	receipt := decode[claimResponse](t, rec)
	require.Equal(t, uint64(250_000_000), receipt.Amount)
	require.Equal(t, "prelaunch", receipt.Route)
	require.Equal(t, crypto.Format(userA), receipt.Address)

	rec = f.do(http.MethodPost, "/v1/claims", &userA, claimRequest{Epoch: 16})
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "no_claimable", decode[problem](t, rec).Code)

	rec = f.do(http.MethodGet, "/v1/instruments/"+crypto.Format(userA), nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	holdings := decode[holdingsResponse](t, rec)
	require.Equal(t, uint64(250_000_000), holdings.PreLaunch)

	f.now = time.Unix(int64(baseEnd+16*day+28*day+1), 0)
	rec = f.do(http.MethodPost, "/v1/claims", &userB, claimRequest{Epoch: 16})
	require.Equal(t, http.StatusGone, rec.Code)
}

func TestClaimBeforeInitialize(t *testing.T) {
	f := newFixture(t, RateLimit{})
	rec := f.do(http.MethodPost, "/v1/claims", &userA, claimRequest{Epoch: 16})
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestBlockedCallerCannotClaim(t *testing.T) {
	f := newFixture(t, RateLimit{})
	f.initialize()
	rec := f.do(http.MethodPut, "/v1/admin/blocklist/"+crypto.Format(userA), &adminAddr, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(http.MethodPost, "/v1/claims", &userA, claimRequest{Epoch: 16})
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "blocked", decode[problem](t, rec).Code)

	rec = f.do(http.MethodDelete, "/v1/admin/blocklist/"+crypto.Format(userA), &adminAddr, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = f.do(http.MethodPost, "/v1/claims", &userA, claimRequest{Epoch: 16})
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestAdminRoutesRejectNonAdmin(t *testing.T) {
	f := newFixture(t, RateLimit{})
	rec := f.do(http.MethodPut, "/v1/admin/rewards/3", &userA, rewardRequest{Amount: 5})
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(http.MethodPut, "/v1/admin/rewards/3", &adminAddr, rewardRequest{Amount: 5})
	require.Equal(t, http.StatusOK, rec.Code)
	reward, err := f.engine.RewardFor(3)
	require.NoError(t, err)
	require.Equal(t, uint64(5), reward)

	rec = f.do(http.MethodGet, "/v1/admin/events", &userA, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRegisterEpochRejectsNonIncreasingEnd(t *testing.T) {
	f := newFixture(t, RateLimit{})
	rec := f.do(http.MethodPost, "/v1/admin/epochs", &adminAddr, registerEpochRequest{EndTime: baseEnd})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = f.do(http.MethodPost, "/v1/admin/epochs", &adminAddr, registerEpochRequest{EndTime: baseEnd})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "invalid_argument", decode[problem](t, rec).Code)
}

func TestEventLogListsCommittedEvents(t *testing.T) {
	f := newFixture(t, RateLimit{})
	f.initialize()
	f.accrue(userA, 7)

	rec := f.do(http.MethodGet, "/v1/admin/events?limit=10", &adminAddr, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[struct {
		Events []struct {
			Sequence uint64 `json:"sequence"`
			Type     string `json:"type"`
		} `json:"events"`
	}](t, rec)
	require.Len(t, body.Events, 2)
	require.Equal(t, uint64(1), body.Events[0].Sequence)
	require.Equal(t, uint64(2), body.Events[1].Sequence)

	rec = f.do(http.MethodGet, "/v1/admin/audit", &adminAddr, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreditsEndpoints(t *testing.T) {
	f := newFixture(t, RateLimit{})
	rec := f.do(http.MethodPost, "/v1/credits/mint", &accruerAddr, amountRequest{User: crypto.Format(userA), Amount: 50})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(http.MethodPost, "/v1/credits/burn", &accruerAddr, amountRequest{User: crypto.Format(userA), Amount: 80})
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = f.do(http.MethodPost, "/v1/credits/mint", &userA, amountRequest{User: crypto.Format(userA), Amount: 1})
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(http.MethodGet, "/v1/credits/"+crypto.Format(userA), nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	balance := decode[creditsResponse](t, rec)
	require.Equal(t, uint64(50), balance.Balance)
	require.Equal(t, uint64(50), balance.Supply)
}

func TestBadInputIsRejected(t *testing.T) {
	f := newFixture(t, RateLimit{})
	rec := f.do(http.MethodGet, "/v1/epochs/abc", nil, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodGet, "/v1/instruments/not-an-address", nil, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodPost, "/v1/claims", &userA, map[string]any{"epoch": 1, "extra": true})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRateLimiterRejectsBurst(t *testing.T) {
	f := newFixture(t, RateLimit{RequestsPerSecond: 1, Burst: 1})
	first := f.do(http.MethodGet, "/v1/epochs/current", nil, nil)
	require.Equal(t, http.StatusOK, first.Code)
	second := f.do(http.MethodGet, "/v1/epochs/current", nil, nil)
	require.Equal(t, http.StatusTooManyRequests, second.Code)

	// Authenticated callers get their own bucket.
	rec := f.do(http.MethodPost, "/v1/claims", &userA, claimRequest{Epoch: 16})
	require.NotEqual(t, http.StatusTooManyRequests, rec.Code)
}

func TestRunStopsOnCancel(t *testing.T) {
	f := newFixture(t, RateLimit{})
	f.server.cfg.ListenAddress = "127.0.0.1:0"
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.server.Run(ctx) }()
	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
}
