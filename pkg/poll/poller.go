package poll

import (
	"context"
	"fmt"
	"time"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/klog/v2"
	"k8s.io/utils/clock"
)

// Getter fetches the candidates for one target. A named fetch that finds
// nothing returns a NotFound error, a list fetch an empty slice.
type Getter interface {
	Get(ctx context.Context, gvk schema.GroupVersionKind, namespace, name string) ([]*unstructured.Unstructured, error)
}

// Predicate inspects one candidate.
type Predicate func(obj *unstructured.Unstructured) bool

// Outcome classifies how a wait ended.
type Outcome string

const (
	// Selected means a candidate passed the predicates within the budget.
	Selected Outcome = "Selected"
	// Absent means no candidate exists at all. Absence is terminal, it is
	// never retried.
	Absent Outcome = "Absent"
	// Exhausted means the attempt budget ran out, or no remaining candidate
	// could ever be selected. For a named target the Object carries the
	// last observation.
	Exhausted Outcome = "Exhausted"
)

type Result struct {
	Outcome Outcome
	Object  *unstructured.Unstructured
}

// Target names what to wait for. An empty Name polls every object of the
// kind in the namespace.
type Target struct {
	GVK       schema.GroupVersionKind
	Namespace string
	Name      string
}

const (
	DefaultAttempts = 6
	DefaultDelay    = 5 * time.Second
)

// Poller waits for an object to become ready with a bounded number of
// fetches. There is no other bound: callers get an answer after at most
// attempts fetches. The clock is injected so tests run without real delays.
type Poller struct {
	getter   Getter
	clock    clock.Clock
	attempts int
	delay    time.Duration
}

// New returns a poller with the given fetch budget. Non-positive attempts or
// delay select the defaults, a nil clock the real one.
func New(getter Getter, attempts int, delay time.Duration, c clock.Clock) *Poller {
	if attempts <= 0 {
		attempts = DefaultAttempts
	}
	if delay <= 0 {
		delay = DefaultDelay
	}
	if c == nil {
		c = clock.RealClock{}
	}
	return &Poller{
		getter:   getter,
		clock:    c,
		attempts: attempts,
		delay:    delay,
	}
}

// WaitFor polls the target until a candidate is selected, the target turns
// out to be absent, or the budget runs out. A candidate is selected once it
// passes ready and accept; nil predicates pass everything. When accept is
// set and every candidate is ready but none is accepted, waiting longer
// cannot help and the wait ends early. Fetch faults other than NotFound end
// the wait immediately with an error. The context is handed to fetches only,
// the wait itself is not cancelable.
func (p *Poller) WaitFor(ctx context.Context, target Target, ready, accept Predicate) (Result, error) {
	logger := klog.FromContext(ctx)

	var lastObserved *unstructured.Unstructured
	for attempt := 1; attempt <= p.attempts; attempt++ {
		if attempt > 1 {
			p.clock.Sleep(p.delay)
		}
		logger.V(4).Info("Polling", "kind", target.GVK.Kind, "namespace", target.Namespace,
			"name", target.Name, "attempt", attempt, "attempts", p.attempts)

		candidates, err := p.getter.Get(ctx, target.GVK, target.Namespace, target.Name)
		switch {
		case apierrors.IsNotFound(err):
			return Result{Outcome: Absent}, nil
		case err != nil:
			return Result{}, fmt.Errorf("unable to fetch %s: %w", target.GVK.Kind, err)
		case len(candidates) == 0:
			return Result{Outcome: Absent}, nil
		}

		if target.Name != "" {
			lastObserved = candidates[0]
		}

		allReady := true
		for _, candidate := range candidates {
			if ready != nil && !ready(candidate) {
				allReady = false
				continue
			}
			if accept == nil || accept(candidate) {
				return Result{Outcome: Selected, Object: candidate}, nil
			}
		}
		if allReady && accept != nil {
			logger.V(4).Info("Every candidate is ready but none can be selected, giving up",
				"kind", target.GVK.Kind, "namespace", target.Namespace)
			break
		}
	}
	return Result{Outcome: Exhausted, Object: lastObserved}, nil
}
