package poem

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// Candidate is the minimal view of a stored template the selector needs.
type Candidate struct {
	ID   uuid.UUID
	Text string
}

// Store is the storage collaborator consulted during generation. Random*
// methods return (nil, nil) when nothing matches.
type Store interface {
	RandomMatching(ctx context.Context, maxFriendRequired int) (*Candidate, error)
	RandomAny(ctx context.Context) (*Candidate, error)
	IncrementUsage(ctx context.Context, id uuid.UUID) error
}

// Observer receives selection events. All methods must be cheap and safe for
// concurrent use.
type Observer interface {
	Generated(outcome string)
	FellBack()
	UsageIncrementFailed()
}

// Generation outcomes reported to the Observer.
const (
	OutcomeOK           = "ok"
	OutcomeNoTemplates  = "no_templates"
	OutcomeInsufficient = "insufficient_names"
	OutcomeStoreError   = "store_error"
)

type nopObserver struct{}

func (nopObserver) Generated(string)      {}
func (nopObserver) FellBack()             {}
func (nopObserver) UsageIncrementFailed() {}

// Result is the outcome of a successful generation.
type Result struct {
	Text       string    `json:"text"`
	TemplateID uuid.UUID `json:"templateId"`
}

// Selector picks a template whose friend requirement fits the request and
// renders it.
type Selector struct {
	store    Store
	logger   *slog.Logger
	observer Observer
}

// NewSelector creates a Selector. A nil logger uses slog.Default and a nil
// observer discards events.
func NewSelector(store Store, logger *slog.Logger, observer Observer) *Selector {
	if logger == nil {
		logger = slog.Default()
	}
	if observer == nil {
		observer = nopObserver{}
	}
	return &Selector{store: store, logger: logger, observer: observer}
}

// Generate selects a template for the supplied names and renders it.
// Storage errors are returned unchanged apart from wrapping.
func (s *Selector) Generate(ctx context.Context, userName string, friendNames []string) (*Result, error) {
	names := CleanNames(friendNames)
	requested := len(names)

	tmpl, err := s.store.RandomMatching(ctx, requested)
	if err != nil {
		s.observer.Generated(OutcomeStoreError)
		return nil, fmt.Errorf("select matching template: %w", err)
	}
	if tmpl == nil {
		s.observer.FellBack()
		tmpl, err = s.store.RandomAny(ctx)
		if err != nil {
			s.observer.Generated(OutcomeStoreError)
			return nil, fmt.Errorf("select any template: %w", err)
		}
	}
	if tmpl == nil {
		s.observer.Generated(OutcomeNoTemplates)
		return nil, ErrNoTemplates
	}

	// The persisted requirement may be stale; trust only the live text.
	required := MaxFriendIndex(tmpl.Text)
	if requested < required {
		s.observer.Generated(OutcomeInsufficient)
		return nil, &ValidationError{
			Message: fmt.Sprintf("this template needs at least %d friend names", required),
		}
	}

	text := Render(tmpl.Text, userName, names)

	if err := s.store.IncrementUsage(ctx, tmpl.ID); err != nil {
		s.observer.UsageIncrementFailed()
		s.logger.Warn("Failed to increment template usage", "template_id", tmpl.ID, "error", err)
	}

	s.observer.Generated(OutcomeOK)
	return &Result{Text: text, TemplateID: tmpl.ID}, nil
}
