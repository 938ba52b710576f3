package hosted

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Veraticus/ponder/internal/common"
	"github.com/Veraticus/ponder/internal/model"
	"github.com/Veraticus/ponder/internal/service"
	"github.com/Veraticus/ponder/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedIn() *testutil.Sessions {
	return &testutil.Sessions{Session: service.Session{
		UserID:      "user-1",
		AccessToken: "user-token",
		ExpiresAt:   time.Now().Add(time.Hour),
	}}
}

func newTestStore(t *testing.T, handler http.HandlerFunc, sessions service.SessionProvider) *Store {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	store, err := New(Config{BaseURL: server.URL, AnonKey: "anon-key"}, sessions, nil)
	require.NoError(t, err)
	return store
}

func coffeeInput() model.PurchaseRecordInput {
	return model.PurchaseRecordInput{
		OwnerID:      "user-1",
		Name:         "Coffee Machine",
		Amount:       decimal.NewFromInt(150),
		Category:     "home",
		Emotion:      model.EmotionNegative,
		FinalName:    "Coffee Machine",
		FinalAmount:  decimal.NewFromInt(150),
		DecisionNote: "Approved",
		Advice:       "Wait a week.",
	}
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		wantErr error
		name    string
		cfg     Config
	}{
		{name: "missing url", cfg: Config{AnonKey: "k"}, wantErr: common.ErrMissingConfig},
		{name: "bad url", cfg: Config{BaseURL: "not a url", AnonKey: "k"}, wantErr: common.ErrInvalidConfig},
		{name: "missing key", cfg: Config{BaseURL: "https://example.supabase.co"}, wantErr: common.ErrMissingConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg, signedIn(), nil)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestStore_CreateRecord(t *testing.T) {
	var body map[string]any
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/rest/v1/purchases", r.URL.Path)
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer user-token", r.Header.Get("Authorization"))
		assert.Equal(t, "return=representation", r.Header.Get("Prefer"))

		raw, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.NoError(t, json.Unmarshal(raw, &body))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`[{"id":"rec-1","created_at":"2024-03-10T09:30:00.123456+00:00","name":"Coffee Machine",
			"amount":150,"category":"home","emotion":"negative","final_name":"Coffee Machine","final_amount":150,
			"userId":"user-1","decision_note":"Approved","advice":"Wait a week."}]`))
	}, signedIn())

	record, err := store.CreateRecord(context.Background(), coffeeInput())
	require.NoError(t, err)

	assert.Equal(t, "rec-1", record.ID)
	assert.Equal(t, 2024, record.CreatedAt.Year())
	assert.True(t, decimal.NewFromInt(150).Equal(record.Amount))
	assert.Equal(t, model.EmotionNegative, record.Emotion)

	assert.Equal(t, "user-1", body["userId"])
	assert.Equal(t, "Coffee Machine", body["name"])
	assert.InDelta(t, 150.0, body["amount"], 0.0001)
	assert.Equal(t, "negative", body["emotion"])
	assert.NotContains(t, body, "id")
	assert.NotContains(t, body, "created_at")
}

func TestStore_ListRecords(t *testing.T) {
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		q := r.URL.Query()
		assert.Equal(t, selectColumns, q.Get("select"))
		assert.Equal(t, "eq.user-1", q.Get("userId"))
		assert.Equal(t, "created_at.desc", q.Get("order"))

		_, _ = w.Write([]byte(`[
			{"id":"b","created_at":"2024-03-11T00:00:00Z","name":"Gaming PC","amount":1200,"emotion":"negative","final_name":"Gaming PC","final_amount":1100,"userId":"user-1"},
			{"id":"a","created_at":"2024-03-10T00:00:00Z","name":"Coffee","amount":"4.50","emotion":"positive","final_name":"Coffee","final_amount":4.5,"userId":"user-1"}
		]`))
	}, signedIn())

	records, err := store.ListRecords(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "b", records[0].ID)
	assert.True(t, decimal.NewFromInt(1100).Equal(records[0].FinalAmount))
	assert.True(t, decimal.RequireFromString("4.5").Equal(records[1].Amount))
}

func TestStore_StatusMapping(t *testing.T) {
	tests := []struct {
		want   error
		body   string
		name   string
		status int
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"message":"JWT expired"}`, want: common.ErrAuth},
		{name: "forbidden", status: http.StatusForbidden, body: `{"code":"42501","message":"permission denied"}`, want: common.ErrAuth},
		{name: "conflict", status: http.StatusConflict, body: `{"code":"23505","message":"duplicate key"}`, want: common.ErrPersistence},
		{name: "bad request", status: http.StatusBadRequest, body: `{"message":"invalid input"}`, want: common.ErrPersistence},
		{name: "unprocessable", status: http.StatusUnprocessableEntity, body: `oops`, want: common.ErrPersistence},
		{name: "server error", status: http.StatusBadGateway, body: `bad gateway`, want: common.ErrTransport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestStore(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}, signedIn())

			_, err := store.CreateRecord(context.Background(), coffeeInput())
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestStore_NoSessionMakesNoRequest(t *testing.T) {
	calls := 0
	store := newTestStore(t, func(http.ResponseWriter, *http.Request) { calls++ }, testutil.SignedOut())

	_, err := store.CreateRecord(context.Background(), coffeeInput())
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrAuth)
	assert.Zero(t, calls)
}

func TestStore_NetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	baseURL := server.URL
	server.Close()

	store, err := New(Config{BaseURL: baseURL, AnonKey: "k"}, signedIn(), nil)
	require.NoError(t, err)

	_, err = store.ListRecords(context.Background(), "user-1")
	assert.ErrorIs(t, err, common.ErrTransport)
}
