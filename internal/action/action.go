// Package action runs backend calls on behalf of an operator, turning their
// outcome into toasts, journal entries and metrics.
package action

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/simp-lee/shopadmin/internal/api"
	"github.com/simp-lee/shopadmin/internal/domain"
	"github.com/simp-lee/shopadmin/internal/journal"
	"github.com/simp-lee/shopadmin/internal/metrics"
	"github.com/simp-lee/shopadmin/internal/notify"
)

// Verbs.
const (
	VerbFetch  = "fetch"
	VerbGet    = "get"
	VerbCreate = "create"
	VerbUpdate = "update"
	VerbDelete = "delete"
)

var pastTense = map[string]string{
	VerbCreate: "created",
	VerbUpdate: "updated",
	VerbDelete: "deleted",
}

// Spec describes one action.
type Spec struct {
	// Resource is the display name used in messages, e.g. "Product".
	Resource string
	// Name is the resource's route name, used for journal and metric labels.
	// Defaults to the lowercased Resource.
	Name     string
	Verb     string
	Key      string
	Operator string
}

func (s Spec) label() string {
	if s.Name != "" {
		return s.Name
	}
	return strings.ToLower(s.Resource)
}

// Mutating reports whether the verb changes backend state.
func (s Spec) Mutating() bool {
	_, ok := pastTense[s.Verb]
	return ok
}

// Error is a failed action. Message is the text shown to the operator.
type Error struct {
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

// Unwrap returns the underlying failure.
func (e *Error) Unwrap() error { return e.Err }

// PublicMessage returns the operator-facing message.
func (e *Error) PublicMessage() string { return e.Message }

// Message derives the operator-facing text for a failed action: the
// backend interceptor's message when it produced one, otherwise
// "Failed to <verb> <resource>".
func Message(err error, spec Spec) string {
	var ae *Error
	if errors.As(err, &ae) && ae.Message != "" {
		return ae.Message
	}
	if msg := api.MessageOf(err); msg != "" {
		return msg
	}
	return "Failed to " + spec.Verb + " " + strings.ToLower(spec.Resource)
}

// SuccessMessage is the toast text for a successful mutating action.
func SuccessMessage(spec Spec) string {
	return spec.Resource + " " + pastTense[spec.Verb] + " successfully"
}

// Options configures a Runner. Zero values are valid.
type Options struct {
	Logger  *slog.Logger
	Journal journal.Recorder
	Metrics *metrics.Metrics
}

// Runner executes actions. It is safe for concurrent use.
type Runner struct {
	logger  *slog.Logger
	journal journal.Recorder
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewRunner creates a Runner.
func NewRunner(opts Options) *Runner {
	r := &Runner{
		logger:  opts.Logger,
		journal: opts.Journal,
		metrics: opts.Metrics,
		now:     time.Now,
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	if r.journal == nil {
		r.journal = journal.Nop{}
	}
	return r
}

// Metrics returns the runner's collectors (may be nil).
func (r *Runner) Metrics() *metrics.Metrics {
	return r.metrics
}

// Run executes fn. On success a mutating action pushes a success toast. On
// failure an error toast with Message(err) is pushed and the error is
// returned as *Error. The outcome is journaled (mutating verbs only) and
// measured either way.
func Run[T any](ctx context.Context, r *Runner, n notify.Notifier, spec Spec, fn func(context.Context) (T, error)) (T, error) {
	if n == nil {
		n = notify.Discard
	}

	start := r.now()
	out, err := fn(ctx)
	elapsed := r.now().Sub(start)

	if err != nil {
		msg := Message(err, spec)
		r.logger.WarnContext(ctx, "action failed",
			slog.String("resource", spec.label()),
			slog.String("verb", spec.Verb),
			slog.String("key", spec.Key),
			slog.Int("backend_status", api.StatusOf(err)),
			slog.Any("error", err),
		)
		n.Notify(notify.Toast{Type: notify.TypeError, Message: msg})
		r.finish(ctx, spec, domain.OutcomeFailure, msg, elapsed)

		var zero T
		return zero, &Error{Message: msg, Err: err}
	}

	if spec.Mutating() {
		n.Notify(notify.Toast{Type: notify.TypeSuccess, Message: SuccessMessage(spec)})
	}
	r.finish(ctx, spec, domain.OutcomeSuccess, "", elapsed)
	return out, nil
}

func (r *Runner) finish(ctx context.Context, spec Spec, outcome, msg string, elapsed time.Duration) {
	r.metrics.ObserveAction(spec.label(), spec.Verb, outcome, elapsed)
	if !spec.Mutating() {
		return
	}
	err := r.journal.Record(ctx, &domain.Activity{
		Operator:  spec.Operator,
		Resource:  spec.label(),
		Verb:      spec.Verb,
		RecordKey: spec.Key,
		Outcome:   outcome,
		Message:   msg,
	})
	if err != nil {
		r.logger.ErrorContext(ctx, "journal write failed",
			slog.String("resource", spec.label()),
			slog.String("verb", spec.Verb),
			slog.Any("error", err),
		)
	}
}
