package poll

import (
	"context"
	"fmt"
	"testing"
	"time"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	clocktesting "k8s.io/utils/clock/testing"

	"github.com/skupperproject/skupper-ansible/pkg/apis/skupper/v2alpha1"
	testinghelpers "github.com/skupperproject/skupper-ansible/pkg/testing"
)

type scriptedGetter struct {
	fetches int
	respond func(attempt int) ([]*unstructured.Unstructured, error)
}

func (g *scriptedGetter) Get(_ context.Context, _ schema.GroupVersionKind, _, _ string) ([]*unstructured.Unstructured, error) {
	g.fetches++
	return g.respond(g.fetches)
}

func TestWaitFor(t *testing.T) {
	notFound := apierrors.NewNotFound(schema.GroupResource{Group: v2alpha1.Group, Resource: "accessgrants"}, "grant1")

	cases := []struct {
		name            string
		target          Target
		respond         func(attempt int) ([]*unstructured.Unstructured, error)
		accept          Predicate
		attempts        int
		expectedOutcome Outcome
		expectedName    string
		expectedErr     string
		expectedFetches int
		expectedElapsed time.Duration
	}{
		{
			name:   "selected on first attempt",
			target: Target{GVK: v2alpha1.SiteGVK, Namespace: "west"},
			respond: func(int) ([]*unstructured.Unstructured, error) {
				return []*unstructured.Unstructured{testinghelpers.NewSite("west", "site1", true)}, nil
			},
			expectedOutcome: Selected,
			expectedName:    "site1",
			expectedFetches: 1,
		},
		{
			name:   "selected once ready",
			target: Target{GVK: v2alpha1.SiteGVK, Namespace: "west"},
			respond: func(attempt int) ([]*unstructured.Unstructured, error) {
				return []*unstructured.Unstructured{testinghelpers.NewSite("west", "site1", attempt >= 3)}, nil
			},
			expectedOutcome: Selected,
			expectedName:    "site1",
			expectedFetches: 3,
			expectedElapsed: 10 * time.Second,
		},
		{
			name:   "budget exhausted keeps the last observation of a named target",
			target: Target{GVK: v2alpha1.AccessGrantGVK, Namespace: "west", Name: "grant1"},
			respond: func(int) ([]*unstructured.Unstructured, error) {
				return []*unstructured.Unstructured{testinghelpers.NewAccessGrant("west", "grant1", false, 1, 0)}, nil
			},
			expectedOutcome: Exhausted,
			expectedName:    "grant1",
			expectedFetches: 6,
			expectedElapsed: 25 * time.Second,
		},
		{
			name:   "named target not found is absent",
			target: Target{GVK: v2alpha1.AccessGrantGVK, Namespace: "west", Name: "grant1"},
			respond: func(int) ([]*unstructured.Unstructured, error) {
				return nil, notFound
			},
			expectedOutcome: Absent,
			expectedFetches: 1,
		},
		{
			name:   "empty list is absent",
			target: Target{GVK: v2alpha1.SiteGVK, Namespace: "west"},
			respond: func(int) ([]*unstructured.Unstructured, error) {
				return nil, nil
			},
			expectedOutcome: Absent,
			expectedFetches: 1,
		},
		{
			name:   "all candidates ready but none accepted stops early",
			target: Target{GVK: v2alpha1.AccessGrantGVK, Namespace: "west"},
			respond: func(int) ([]*unstructured.Unstructured, error) {
				return []*unstructured.Unstructured{
					testinghelpers.NewAccessGrant("west", "grant1", true, 1, 1),
					testinghelpers.NewAccessGrant("west", "grant2", true, 2, 2),
				}, nil
			},
			accept:          v2alpha1.IsGrantRedeemable,
			expectedOutcome: Exhausted,
			expectedFetches: 1,
		},
		{
			name:   "first accepted candidate wins",
			target: Target{GVK: v2alpha1.AccessGrantGVK, Namespace: "west"},
			respond: func(int) ([]*unstructured.Unstructured, error) {
				return []*unstructured.Unstructured{
					testinghelpers.NewAccessGrant("west", "grant1", false, 1, 0),
					testinghelpers.NewAccessGrant("west", "grant2", true, 1, 1),
					testinghelpers.NewAccessGrant("west", "grant3", true, 1, 0),
				}, nil
			},
			accept:          v2alpha1.IsGrantRedeemable,
			expectedOutcome: Selected,
			expectedName:    "grant3",
			expectedFetches: 1,
		},
		{
			name:   "ties break on fetch order",
			target: Target{GVK: v2alpha1.AccessGrantGVK, Namespace: "west"},
			respond: func(int) ([]*unstructured.Unstructured, error) {
				return []*unstructured.Unstructured{
					testinghelpers.NewAccessGrant("west", "grant1", true, 1, 0),
					testinghelpers.NewAccessGrant("west", "grant2", true, 1, 0),
				}, nil
			},
			accept:          v2alpha1.IsGrantRedeemable,
			expectedOutcome: Selected,
			expectedName:    "grant1",
			expectedFetches: 1,
		},
		{
			name:   "fetch fault is fatal",
			target: Target{GVK: v2alpha1.SiteGVK, Namespace: "west"},
			respond: func(int) ([]*unstructured.Unstructured, error) {
				return nil, fmt.Errorf("boom")
			},
			expectedErr:     "unable to fetch Site: boom",
			expectedFetches: 1,
		},
		{
			name:   "custom budget",
			target: Target{GVK: v2alpha1.SiteGVK, Namespace: "west"},
			respond: func(int) ([]*unstructured.Unstructured, error) {
				return []*unstructured.Unstructured{testinghelpers.NewSite("west", "site1", false)}, nil
			},
			attempts:        2,
			expectedOutcome: Exhausted,
			expectedFetches: 2,
			expectedElapsed: 5 * time.Second,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			getter := &scriptedGetter{respond: c.respond}
			fakeClock := clocktesting.NewFakeClock(time.Now())
			start := fakeClock.Now()
			poller := New(getter, c.attempts, 5*time.Second, fakeClock)

			result, err := poller.WaitFor(context.Background(), c.target, v2alpha1.IsReady, c.accept)
			testinghelpers.AssertError(t, err, c.expectedErr)
			if getter.fetches != c.expectedFetches {
				t.Errorf("expected %d fetches, but %d", c.expectedFetches, getter.fetches)
			}
			if elapsed := fakeClock.Now().Sub(start); elapsed != c.expectedElapsed {
				t.Errorf("expected %s between fetches, but %s", c.expectedElapsed, elapsed)
			}
			if c.expectedErr != "" {
				return
			}
			if result.Outcome != c.expectedOutcome {
				t.Errorf("expected outcome %s, but %s", c.expectedOutcome, result.Outcome)
			}
			if c.expectedName == "" && result.Object != nil {
				t.Errorf("expected no object, but %v", result.Object)
			}
			if c.expectedName != "" && (result.Object == nil || result.Object.GetName() != c.expectedName) {
				t.Errorf("expected object %q, but %v", c.expectedName, result.Object)
			}
		})
	}
}
