// Package hosted stores purchase records in a PostgREST-compatible hosted
// row store. Requests carry the project's anon key and the signed-in user's
// bearer token.
package hosted

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Veraticus/ponder/internal/common"
	"github.com/Veraticus/ponder/internal/model"
	"github.com/Veraticus/ponder/internal/service"
	"github.com/go-resty/resty/v2"
	"golang.org/x/oauth2"
)

// DefaultTable is the row collection purchases are written to.
const DefaultTable = "purchases"

const selectColumns = "id,created_at,name,amount,category,emotion,final_name,final_amount,userId,decision_note,advice"

// Config configures the hosted store.
type Config struct {
	BaseURL string
	AnonKey string
	Table   string
	Timeout time.Duration
}

// Store implements service.Storage against the hosted REST API.
type Store struct {
	client *resty.Client
	logger *slog.Logger
	table  string
}

var _ service.Storage = (*Store)(nil)

// New creates a hosted store. The session provider supplies the bearer token
// for every request.
func New(cfg Config, sessions service.SessionProvider, logger *slog.Logger) (*Store, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("%w: store.hosted_url is empty", common.ErrMissingConfig)
	}
	if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("%w: store.hosted_url: %w", common.ErrInvalidConfig, err)
	}
	if cfg.AnonKey == "" {
		return nil, fmt.Errorf("%w: store.hosted_anon_key is empty", common.ErrMissingConfig)
	}
	if sessions == nil {
		return nil, fmt.Errorf("%w: session provider is required", common.ErrMissingConfig)
	}
	if logger == nil {
		logger = slog.Default()
	}
	table := cfg.Table
	if table == "" {
		table = DefaultTable
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	httpClient := oauth2.NewClient(context.Background(), &sessionTokenSource{sessions: sessions})

	client := resty.NewWithClient(httpClient).
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")+"/rest/v1").
		SetHeader("apikey", cfg.AnonKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetTimeout(timeout)

	return &Store{client: client, table: table, logger: logger}, nil
}

// sessionTokenSource adapts the session provider to oauth2 so the transport
// attaches "Authorization: Bearer <token>" to each request.
type sessionTokenSource struct {
	sessions service.SessionProvider
}

func (s *sessionTokenSource) Token() (*oauth2.Token, error) {
	session, err := s.sessions.Current(context.Background())
	if err != nil {
		return nil, err
	}
	if session.AccessToken == "" {
		return nil, fmt.Errorf("%w: session has no access token", common.ErrAuth)
	}
	return &oauth2.Token{
		AccessToken: session.AccessToken,
		TokenType:   "Bearer",
		Expiry:      session.ExpiresAt,
	}, nil
}

// CreateRecord inserts one row and returns the stored representation.
func (s *Store) CreateRecord(ctx context.Context, input model.PurchaseRecordInput) (model.PurchaseRecord, error) {
	var created []model.PurchaseRecord
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Prefer", "return=representation").
		SetBody(input).
		ForceContentType("application/json").
		SetResult(&created).
		Post("/" + s.table)
	if err != nil {
		return model.PurchaseRecord{}, requestError("create record", err)
	}
	if err := statusError("create record", resp); err != nil {
		return model.PurchaseRecord{}, err
	}
	if len(created) != 1 {
		return model.PurchaseRecord{}, fmt.Errorf("%w: create record: expected 1 row, got %d", common.ErrPersistence, len(created))
	}

	s.logger.Debug("hosted record created", "id", created[0].ID, "table", s.table)
	return created[0], nil
}

// ListRecords returns ownerID's rows, newest first.
func (s *Store) ListRecords(ctx context.Context, ownerID string) ([]model.PurchaseRecord, error) {
	var records []model.PurchaseRecord
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"select": selectColumns,
			"userId": "eq." + ownerID,
			"order":  "created_at.desc",
		}).
		ForceContentType("application/json").
		SetResult(&records).
		Get("/" + s.table)
	if err != nil {
		return nil, requestError("list records", err)
	}
	if err := statusError("list records", resp); err != nil {
		return nil, err
	}
	return records, nil
}

// Migrate is a no-op: the hosted table is provisioned by the service.
func (s *Store) Migrate(context.Context) error { return nil }

// Close is a no-op.
func (s *Store) Close() error { return nil }

func requestError(op string, err error) error {
	if errors.Is(err, common.ErrAuth) {
		return fmt.Errorf("%s: %w", op, err)
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%w: %s: %w", common.ErrTransport, op, err)
}

// apiError is the PostgREST error body.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func statusError(op string, resp *resty.Response) error {
	status := resp.StatusCode()
	if status >= 200 && status < 300 {
		return nil
	}

	detail := strings.TrimSpace(resp.String())
	var body apiError
	if json.Unmarshal(resp.Body(), &body) == nil && body.Message != "" {
		detail = body.Message
		if body.Code != "" {
			detail = body.Code + ": " + detail
		}
	}

	var kind error
	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		kind = common.ErrAuth
	case status == http.StatusTooManyRequests, status >= http.StatusInternalServerError:
		kind = common.ErrTransport
	default:
		kind = common.ErrPersistence
	}
	return fmt.Errorf("%w: %s: status %d: %s", kind, op, status, detail)
}
