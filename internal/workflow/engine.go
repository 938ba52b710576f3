// Package workflow implements the purchase-decision state machine: it collects
// an item and amount, walks the user through the reflection questions, asks
// for advice, and commits the final decision as a purchase record.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/Veraticus/ponder/internal/common"
	"github.com/Veraticus/ponder/internal/model"
	"github.com/Veraticus/ponder/internal/service"
)

// Default timeouts for the two external calls.
const (
	DefaultAdviceTimeout = 20 * time.Second
	DefaultCommitTimeout = 15 * time.Second
)

// Config wires an Engine to its collaborators.
type Config struct {
	// Advisor produces advice. When nil the heuristic advice is used.
	Advisor  service.Advisor
	Store    service.RecordStore
	Sessions service.SessionProvider
	Logger   *slog.Logger
	// FallbackToHeuristic uses the heuristic advice when the advisor fails
	// instead of reporting a transport error.
	FallbackToHeuristic bool
	AdviceTimeout       time.Duration
	CommitTimeout       time.Duration
}

// Engine drives one purchase candidate from entry to a committed record.
// All methods are safe for concurrent use; async steps release the lock while
// the external call is outstanding and re-check the generation before
// applying the result.
type Engine struct {
	advisor       service.Advisor
	store         service.RecordStore
	sessions      service.SessionProvider
	logger        *slog.Logger
	entry         entryForm
	candidate     model.PurchaseCandidate
	adviceTimeout time.Duration
	commitTimeout time.Duration
	generation    uint64
	state         State
	mu            sync.Mutex
	fallback      bool
	adviceBusy    bool
	discarded     bool
}

// New creates an engine in StateEntry with an empty candidate.
func New(cfg Config) (*Engine, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("%w: record store is required", common.ErrMissingConfig)
	}
	if cfg.Sessions == nil {
		return nil, fmt.Errorf("%w: session provider is required", common.ErrMissingConfig)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	adviceTimeout := cfg.AdviceTimeout
	if adviceTimeout <= 0 {
		adviceTimeout = DefaultAdviceTimeout
	}
	commitTimeout := cfg.CommitTimeout
	if commitTimeout <= 0 {
		commitTimeout = DefaultCommitTimeout
	}

	return &Engine{
		advisor:       cfg.Advisor,
		store:         cfg.Store,
		sessions:      cfg.Sessions,
		logger:        logger,
		fallback:      cfg.FallbackToHeuristic,
		adviceTimeout: adviceTimeout,
		commitTimeout: commitTimeout,
		state:         StateEntry,
	}, nil
}

// State returns the current workflow state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Candidate returns a copy of the in-progress candidate.
func (e *Engine) Candidate() model.PurchaseCandidate {
	e.mu.Lock()
	defer e.mu.Unlock()
	c := e.candidate
	if c.FinalAmount != nil {
		amount := *c.FinalAmount
		c.FinalAmount = &amount
	}
	return c
}

// Questions returns the reflection questions in the order they are answered.
func (e *Engine) Questions() [model.QuestionCount]string {
	return model.ReflectionQuestions
}

// AdviceInFlight reports whether an advisory request is outstanding.
func (e *Engine) AdviceInFlight() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.adviceBusy
}

// requireState must be called with the lock held.
func (e *Engine) requireState(want State) error {
	if e.discarded {
		return ErrDiscarded
	}
	if e.state != want {
		return fmt.Errorf("%w: in %s, need %s", ErrWrongState, e.state, want)
	}
	return nil
}

// SetEntry records the raw item, amount and category text.
func (e *Engine) SetEntry(item, amount, category string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireState(StateEntry); err != nil {
		return err
	}
	e.entry = entryForm{item: item, amount: amount, category: category}
	return nil
}

// SubmitEntry validates the entry fields and moves to StateReflection.
func (e *Engine) SubmitEntry() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireState(StateEntry); err != nil {
		return err
	}

	item := strings.TrimSpace(e.entry.item)
	if item == "" {
		return fieldError("itemName", "enter the item you want to buy")
	}
	amount, err := parseAmount("amount", e.entry.amount)
	if err != nil {
		return err
	}
	category, ok := model.ParseCategory(e.entry.category)
	if !ok {
		return fieldError("category", fmt.Sprintf("unknown category %q", e.entry.category))
	}

	e.candidate.ItemName = item
	e.candidate.Amount = amount
	e.candidate.Category = category
	e.state = StateReflection
	e.logger.Debug("Entry accepted", "item", item, "amount", amount.String(), "category", category)
	return nil
}

// SetAnswer stores the answer to reflection question i.
func (e *Engine) SetAnswer(i int, text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireState(StateReflection); err != nil {
		return err
	}
	if i < 0 || i >= model.QuestionCount {
		return fmt.Errorf("question index %d out of range", i)
	}
	e.candidate.ReflectionAnswers[i] = text
	return nil
}

// SubmitReflection requires every answer and moves to StateAdvisoryPending.
func (e *Engine) SubmitReflection() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireState(StateReflection); err != nil {
		return err
	}
	for i, answer := range e.candidate.ReflectionAnswers {
		if strings.TrimSpace(answer) == "" {
			return fieldError(answerField(i), "answer every question")
		}
	}
	e.state = StateAdvisoryPending
	return nil
}

// RequestAdvice asks the advisor for a suggestion and moves to StateDecision
// on success. On failure the workflow stays in StateAdvisoryPending so the
// same step can be retried. Only one request may be outstanding at a time.
func (e *Engine) RequestAdvice(ctx context.Context) (string, error) {
	e.mu.Lock()
	if err := e.requireState(StateAdvisoryPending); err != nil {
		e.mu.Unlock()
		return "", err
	}
	if e.adviceBusy {
		e.mu.Unlock()
		return "", ErrInFlight
	}
	e.adviceBusy = true
	generation := e.generation
	candidate := e.candidate
	e.mu.Unlock()

	text, err := e.advise(ctx, candidate)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.discarded || generation != e.generation {
		e.logger.Debug("Dropping advice for discarded workflow", "item", candidate.ItemName)
		return "", ErrDiscarded
	}
	e.adviceBusy = false

	if err != nil {
		if !e.fallback {
			e.logger.Warn("Advisory request failed", "item", candidate.ItemName, "error", err)
			return "", &StepError{Step: "advice", Kind: common.ErrTransport, Err: err}
		}
		e.logger.Warn("Advisory request failed, using heuristic advice", "item", candidate.ItemName, "error", err)
		text = HeuristicAdvice(candidate.ItemName, candidate.Amount)
	}

	e.candidate.AdvisoryText = text
	e.state = StateDecision
	return text, nil
}

func (e *Engine) advise(ctx context.Context, c model.PurchaseCandidate) (string, error) {
	if e.advisor == nil {
		return HeuristicAdvice(c.ItemName, c.Amount), nil
	}

	ctx, cancel := context.WithTimeout(ctx, e.adviceTimeout)
	defer cancel()

	text, err := e.advisor.Advise(ctx, BuildPrompt(c))
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errors.New("advisor returned an empty suggestion")
	}
	return text, nil
}

// SetDecision records the final decision note and optional final name and
// amount overrides. Empty overrides keep the entry values.
func (e *Engine) SetDecision(note, finalName, finalAmount string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireState(StateDecision); err != nil {
		return err
	}

	if strings.TrimSpace(finalAmount) != "" {
		parsed, err := parseAmount("finalAmount", finalAmount)
		if err != nil {
			return err
		}
		e.candidate.FinalAmount = &parsed
	} else {
		e.candidate.FinalAmount = nil
	}
	e.candidate.FinalDecisionNote = note
	e.candidate.FinalName = finalName
	return nil
}

// Commit writes the decision as a purchase record. It requires a decision
// note and an authenticated session, issues exactly one create call and moves
// to StateDone on success. Any failure returns the workflow to StateDecision
// with the candidate intact.
func (e *Engine) Commit(ctx context.Context) (model.PurchaseRecord, error) {
	e.mu.Lock()
	if e.discarded {
		e.mu.Unlock()
		return model.PurchaseRecord{}, ErrDiscarded
	}
	if e.state == StateCommitting {
		e.mu.Unlock()
		return model.PurchaseRecord{}, ErrInFlight
	}
	if err := e.requireState(StateDecision); err != nil {
		e.mu.Unlock()
		return model.PurchaseRecord{}, err
	}
	if strings.TrimSpace(e.candidate.FinalDecisionNote) == "" {
		e.mu.Unlock()
		return model.PurchaseRecord{}, fieldError("finalDecisionNote", "enter your final decision")
	}
	e.state = StateCommitting
	generation := e.generation
	candidate := e.candidate
	e.mu.Unlock()

	record, err := e.commit(ctx, candidate)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.discarded || generation != e.generation {
		if err == nil {
			e.logger.Info("Record written after workflow was discarded", "id", record.ID)
		}
		return record, ErrDiscarded
	}
	if err != nil {
		e.state = StateDecision
		return model.PurchaseRecord{}, err
	}

	e.state = StateDone
	e.candidate = model.PurchaseCandidate{}
	e.entry = entryForm{}
	e.logger.Info("Purchase decision recorded",
		"id", record.ID,
		"item", record.Name,
		"amount", record.Amount.String(),
		"emotion", record.Emotion)
	return record, nil
}

func (e *Engine) commit(ctx context.Context, c model.PurchaseCandidate) (model.PurchaseRecord, error) {
	session, err := e.sessions.Current(ctx)
	if err != nil {
		return model.PurchaseRecord{}, &StepError{Step: "commit", Kind: common.ErrAuth, Err: err}
	}
	if !session.Authenticated() {
		return model.PurchaseRecord{}, &StepError{Step: "commit", Kind: common.ErrAuth, Err: errors.New("session expired")}
	}

	input, err := AssembleRecord(c, session.UserID)
	if err != nil {
		return model.PurchaseRecord{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, e.commitTimeout)
	defer cancel()

	record, err := e.store.CreateRecord(ctx, input)
	if err != nil {
		kind := classifyStoreError(err)
		e.logger.Warn("Commit failed", "item", input.Name, "kind", kind, "error", err)
		return model.PurchaseRecord{}, &StepError{Step: "commit", Kind: kind, Err: err}
	}
	if record.OwnerID != session.UserID {
		return model.PurchaseRecord{}, &StepError{
			Step: "commit",
			Kind: common.ErrPersistence,
			Err:  fmt.Errorf("store returned record owned by %q", record.OwnerID),
		}
	}
	return record, nil
}

// Discard abandons the workflow. Results of calls still in flight are
// dropped and every later operation returns ErrDiscarded.
func (e *Engine) Discard() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.discarded = true
	e.generation++
	e.adviceBusy = false
}

// Reset clears the candidate and returns to StateEntry. An outstanding
// advisory result is dropped. A workflow that is committing, done or
// discarded cannot be reset.
func (e *Engine) Reset() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.discarded {
		return ErrDiscarded
	}
	if e.state == StateDone {
		return fmt.Errorf("%w: workflow already committed", ErrWrongState)
	}
	if e.state == StateCommitting {
		return ErrInFlight
	}
	e.generation++
	e.adviceBusy = false
	e.candidate = model.PurchaseCandidate{}
	e.entry = entryForm{}
	e.state = StateEntry
	return nil
}
