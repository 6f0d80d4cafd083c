// Package wizard implements the multi-step business forms (USP, tunnel,
// email sequence, content calendar, veille...) that feed the AI generators.
//
// A wizard is linear: Next validates the current step only and advances,
// Prev goes back without validation. Completing the last step saves the
// form data as a draft and calls the completion callback once.
package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"dropskills/internal/logger"
)

var (
	ErrUnknownStep = errors.New("unknown step")
	ErrBadInput    = errors.New("invalid form data")
)

// DraftStore persists the last submitted form data under a storage key.
type DraftStore interface {
	SaveDraft(ctx context.Context, key string, data any) error
}

// ValidationError reports the failing fields of one step.
type ValidationError struct {
	Step   int
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("step %d: %d invalid field(s)", e.Step, len(e.Fields))
}

type Rule[T any] struct {
	Field string
	Check func(*T) string
}

type Step[T any] struct {
	Title  string
	Fields []string
	Rules  []Rule[T]
}

type Definition[T any] struct {
	kind       string
	storageKey string
	steps      []Step[T]
	prefill    func(*T, ICPResult)
}

// New starts a wizard on step 1 with the given data.
func (d *Definition[T]) New(data T, store DraftStore, onComplete func(context.Context, T) error) *Wizard[T] {
	return &Wizard[T]{
		def:        d,
		step:       1,
		data:       data,
		errors:     map[string]string{},
		store:      store,
		onComplete: onComplete,
	}
}

func (d *Definition[T]) validate(step int, data *T) map[string]string {
	errs := map[string]string{}
	for _, r := range d.steps[step-1].Rules {
		if msg := r.Check(data); msg != "" {
			errs[r.Field] = msg
		}
	}
	return errs
}

type Wizard[T any] struct {
	def        *Definition[T]
	step       int
	data       T
	errors     map[string]string
	store      DraftStore
	onComplete func(context.Context, T) error
	completed  bool
}

func (w *Wizard[T]) Step() int                 { return w.step }
func (w *Wizard[T]) TotalSteps() int           { return len(w.def.steps) }
func (w *Wizard[T]) Data() *T                  { return &w.data }
func (w *Wizard[T]) Errors() map[string]string { return w.errors }
func (w *Wizard[T]) Completed() bool           { return w.completed }

// Next validates the current step. It reports whether the wizard moved on,
// either to the following step or to completion.
func (w *Wizard[T]) Next(ctx context.Context) (bool, error) {
	if w.completed {
		return false, nil
	}
	w.errors = w.def.validate(w.step, &w.data)
	if len(w.errors) > 0 {
		return false, nil
	}
	if w.step < len(w.def.steps) {
		w.step++
		return true, nil
	}

	w.completed = true
	if w.store != nil && w.def.storageKey != "" {
		if err := w.store.SaveDraft(ctx, w.def.storageKey, w.data); err != nil {
			logger.Warn("wizard.draft.save_failed", "kind", w.def.kind, "err", err)
		}
	}
	if w.onComplete != nil {
		if err := w.onComplete(ctx, w.data); err != nil {
			return true, err
		}
	}
	return true, nil
}

func (w *Wizard[T]) Prev() {
	if w.completed || w.step <= 1 {
		return
	}
	w.step--
	w.errors = map[string]string{}
}

// StepInfo describes one step for clients rendering the form.
type StepInfo struct {
	Number int      `json:"number"`
	Title  string   `json:"title"`
	Fields []string `json:"fields"`
}

// Form is the kind-independent view of a Definition.
type Form interface {
	Kind() string
	StorageKey() string
	Steps() []StepInfo
	ValidateStep(step int, raw json.RawMessage) (map[string]string, error)
	Run(ctx context.Context, raw json.RawMessage, store DraftStore, onComplete func(context.Context, any) error) error
	Prefill(raw json.RawMessage, icp ICPResult) (json.RawMessage, error)
}

func (d *Definition[T]) Kind() string       { return d.kind }
func (d *Definition[T]) StorageKey() string { return d.storageKey }

func (d *Definition[T]) Steps() []StepInfo {
	out := make([]StepInfo, len(d.steps))
	for i, s := range d.steps {
		out[i] = StepInfo{Number: i + 1, Title: s.Title, Fields: s.Fields}
	}
	return out
}

func (d *Definition[T]) decode(raw json.RawMessage) (T, error) {
	var data T
	if len(raw) == 0 || string(raw) == "null" {
		return data, nil
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return data, fmt.Errorf("%w: %v", ErrBadInput, err)
	}
	return data, nil
}

func (d *Definition[T]) ValidateStep(step int, raw json.RawMessage) (map[string]string, error) {
	if step < 1 || step > len(d.steps) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownStep, step)
	}
	data, err := d.decode(raw)
	if err != nil {
		return nil, err
	}
	return d.validate(step, &data), nil
}

// Run walks a wizard through every step with the submitted data.
func (d *Definition[T]) Run(ctx context.Context, raw json.RawMessage, store DraftStore, onComplete func(context.Context, any) error) error {
	data, err := d.decode(raw)
	if err != nil {
		return err
	}
	w := d.New(data, store, func(ctx context.Context, v T) error {
		if onComplete == nil {
			return nil
		}
		return onComplete(ctx, v)
	})
	for !w.Completed() {
		moved, err := w.Next(ctx)
		if err != nil {
			return err
		}
		if !moved {
			return &ValidationError{Step: w.Step(), Fields: w.Errors()}
		}
	}
	return nil
}

func (d *Definition[T]) Prefill(raw json.RawMessage, icp ICPResult) (json.RawMessage, error) {
	data, err := d.decode(raw)
	if err != nil {
		return nil, err
	}
	if d.prefill != nil {
		d.prefill(&data, icp)
	}
	return json.Marshal(data)
}

var registry = map[string]Form{}

func register[T any](d *Definition[T]) *Definition[T] {
	registry[d.kind] = d
	return d
}

func Lookup(kind string) (Form, bool) {
	f, ok := registry[kind]
	return f, ok
}

func Kinds() []string {
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
