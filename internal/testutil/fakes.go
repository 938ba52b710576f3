package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Veraticus/ponder/internal/common"
	"github.com/Veraticus/ponder/internal/model"
	"github.com/Veraticus/ponder/internal/service"
	"github.com/google/uuid"
)

// MemoryStore is an in-memory RecordStore that counts writes. Set Err to make
// CreateRecord fail, and Gate to hold CreateRecord until the channel is closed.
type MemoryStore struct {
	Err     error
	Gate    chan struct{}
	Started chan struct{}
	records []model.PurchaseRecord
	creates int
	mu      sync.Mutex
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// CreateRecord stores input and assigns an id and creation time.
func (s *MemoryStore) CreateRecord(ctx context.Context, input model.PurchaseRecordInput) (model.PurchaseRecord, error) {
	s.mu.Lock()
	s.creates++
	gate, started, failure := s.Gate, s.Started, s.Err
	s.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return model.PurchaseRecord{}, fmt.Errorf("%w: %w", common.ErrTransport, ctx.Err())
		}
	}
	if failure != nil {
		return model.PurchaseRecord{}, failure
	}

	record := model.PurchaseRecord{
		ID:           uuid.NewString(),
		CreatedAt:    time.Now().UTC(),
		OwnerID:      input.OwnerID,
		Name:         input.Name,
		Amount:       input.Amount,
		Category:     input.Category,
		Emotion:      input.Emotion,
		FinalName:    input.FinalName,
		FinalAmount:  input.FinalAmount,
		DecisionNote: input.DecisionNote,
		Advice:       input.Advice,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record)
	return record, nil
}

// ListRecords returns ownerID's records, newest first.
func (s *MemoryStore) ListRecords(_ context.Context, ownerID string) ([]model.PurchaseRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Later inserts win ties on CreatedAt.
	var out []model.PurchaseRecord
	for i := len(s.records) - 1; i >= 0; i-- {
		if r := s.records[i]; r.OwnerID == ownerID {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Migrate is a no-op.
func (s *MemoryStore) Migrate(context.Context) error { return nil }

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }

// Creates returns how many times CreateRecord was called.
func (s *MemoryStore) Creates() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creates
}

// SetErr changes the error returned by later CreateRecord calls.
func (s *MemoryStore) SetErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Err = err
}

// StubAdvisor returns a canned response. Gate, when set, holds every call
// until it is closed or the context ends.
type StubAdvisor struct {
	Err      error
	Gate     chan struct{}
	Started  chan struct{}
	Response string
	prompts  []string
	mu       sync.Mutex
}

// Advise records the prompt and returns the canned response.
func (a *StubAdvisor) Advise(ctx context.Context, prompt string) (string, error) {
	a.mu.Lock()
	a.prompts = append(a.prompts, prompt)
	gate, started, response, failure := a.Gate, a.Started, a.Response, a.Err
	a.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return response, failure
}

// Prompts returns every prompt received so far.
func (a *StubAdvisor) Prompts() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.prompts...)
}

// Calls returns how many requests were made.
func (a *StubAdvisor) Calls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.prompts)
}

// SetErr changes the error returned by later calls.
func (a *StubAdvisor) SetErr(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Err = err
}

// Sessions is a fixed SessionProvider.
type Sessions struct {
	Err     error
	Session service.Session
}

// SignedIn returns a provider for an authenticated user.
func SignedIn(userID string) *Sessions {
	return &Sessions{Session: service.Session{UserID: userID, Email: userID + "@example.com"}}
}

// SignedOut returns a provider with no session.
func SignedOut() *Sessions {
	return &Sessions{Err: fmt.Errorf("%w: no session", common.ErrAuth)}
}

// Current returns the configured session or error.
func (s *Sessions) Current(context.Context) (service.Session, error) {
	if s.Err != nil {
		return service.Session{}, s.Err
	}
	return s.Session, nil
}
