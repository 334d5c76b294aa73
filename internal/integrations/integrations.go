// Package integrations defines the capability interfaces the redgit core
// calls out through, and the vendor implementations shipped with it.
//
// Each integration category is one interface: Notifier for chat webhooks,
// ErrorTracker for error-report sources. The active implementations are
// held by an explicit Registry built from configuration and passed to
// operations; there is no ambient global state.
package integrations

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/redgit/redgit/internal/logger"
)

// EventKind classifies a notification event for per-notifier filtering.
type EventKind string

const (
	// EventRelease is sent when a version is released.
	EventRelease EventKind = "release"

	// EventChangelog is sent when a changelog is generated.
	EventChangelog EventKind = "changelog"

	// EventError is sent for error-tracking related notices.
	EventError EventKind = "error"
)

// Event is a notification payload, vendor-neutral.
type Event struct {
	Kind  EventKind
	Title string
	Body  string

	// Link is an optional URL attached to the message.
	Link string
}

// Notifier is the notification capability. Implementations post an event
// to one external target. Send failures are reported to the caller, which
// treats them as warnings.
type Notifier interface {
	// Name identifies the notifier in logs and doctor output.
	Name() string

	// Accepts reports whether this notifier wants events of the given kind.
	Accepts(kind EventKind) bool

	// Send posts the event.
	Send(ctx context.Context, event Event) error
}

// ErrorTracker is the error-tracking capability: a source of error reports
// with stacktraces, plus status management.
type ErrorTracker interface {
	// Name identifies the tracker.
	Name() string

	// RecentErrors lists error reports matching the query.
	RecentErrors(ctx context.Context, query ErrorQuery) ([]ErrorReport, error)

	// GetError fetches a single error report by ID or short ID.
	GetError(ctx context.Context, id string) (*ErrorReport, error)

	// ResolveError sets an error's status ("resolved", "ignored",
	// "unresolved"), optionally scoped to a release.
	ResolveError(ctx context.Context, id, status, inRelease string) error

	// LinkCommit attaches a commit reference to an error report.
	LinkCommit(ctx context.Context, id, commitSHA string) error
}

// ErrorQuery filters RecentErrors.
type ErrorQuery struct {
	// Status filters by report status, default "unresolved".
	Status string

	// Environment filters by deployment environment, empty for any.
	Environment string

	// Limit bounds the number of reports returned.
	Limit int
}

// Registry holds the active integration per category. Built once from
// configuration and passed explicitly to the operations that need it.
type Registry struct {
	notifiers []Notifier
	tracker   ErrorTracker
}

// NewRegistry creates a registry with the given active integrations.
// tracker may be nil when no error tracking is configured.
func NewRegistry(notifiers []Notifier, tracker ErrorTracker) *Registry {
	return &Registry{notifiers: notifiers, tracker: tracker}
}

// Notifiers returns the configured notifiers.
func (r *Registry) Notifiers() []Notifier { return r.notifiers }

// Tracker returns the configured error tracker, or nil.
func (r *Registry) Tracker() ErrorTracker { return r.tracker }

// DispatchResult is the outcome of one notifier's delivery attempt.
type DispatchResult struct {
	Notifier string
	Err      error
}

// Dispatch fans an event out to every accepting notifier concurrently.
// Delivery is best-effort: individual failures are collected and logged,
// never escalated, so a dead webhook cannot fail a release.
func (r *Registry) Dispatch(ctx context.Context, event Event) []DispatchResult {
	var (
		mu      sync.Mutex
		results []DispatchResult
	)

	g, ctx := errgroup.WithContext(ctx)
	for _, n := range r.notifiers {
		if !n.Accepts(event.Kind) {
			continue
		}
		g.Go(func() error {
			err := n.Send(ctx, event)
			if err != nil {
				logger.Warn("notification failed", "notifier", n.Name(), "error", err)
			}
			mu.Lock()
			results = append(results, DispatchResult{Notifier: n.Name(), Err: err})
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait() // goroutines never return errors; failures live in results

	return results
}

// acceptsKind is the shared event filter for webhook notifiers: an empty
// list accepts everything.
func acceptsKind(events []string, kind EventKind) bool {
	if len(events) == 0 {
		return true
	}
	for _, e := range events {
		if e == string(kind) {
			return true
		}
	}
	return false
}
