package token

import (
	"context"
	"fmt"
	"time"

	"github.com/openshift/library-go/pkg/operator/events"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/klog/v2"
	"k8s.io/utils/clock"
	"sigs.k8s.io/yaml"

	"github.com/skupperproject/skupper-ansible/pkg/apis/skupper/v2alpha1"
	"github.com/skupperproject/skupper-ansible/pkg/kube"
	"github.com/skupperproject/skupper-ansible/pkg/poll"
	"github.com/skupperproject/skupper-ansible/pkg/resource"
)

// NotRedeemableError reports a specifically requested grant that exists but
// cannot currently be used, because it is not ready or because its
// redemption budget is spent.
type NotRedeemableError struct {
	Name string
}

func (e *NotRedeemableError) Error() string {
	return fmt.Sprintf("accessgrant %q cannot be redeemed", e.Name)
}

// Request describes one token issuance.
type Request struct {
	Namespace string
	// Name selects a specific AccessGrant. When set, a grant that exists
	// but cannot be used is an error instead of a reason to create one.
	Name               string
	RedemptionsAllowed int
	ExpirationWindow   string
}

// Result carries the minted token document. Token is empty when no site is
// defined yet, or when a freshly created grant was not observed in time.
// Changed reports whether an AccessGrant was created.
type Result struct {
	Token   string
	Changed bool
}

// Issuer drives a token request through site readiness, grant selection and
// token synthesis against the cluster.
type Issuer struct {
	store    resource.Store
	poller   *poll.Poller
	clock    clock.Clock
	recorder events.Recorder

	// RequireSiteReady turns a site readiness timeout into an error instead
	// of proceeding to the grant lookup.
	RequireSiteReady bool
}

// NewIssuer returns an issuer polling through client with the given budget.
// Non-positive attempts or delay select the poll defaults, a nil clock the
// real one.
func NewIssuer(client *kube.Client, store resource.Store, recorder events.Recorder, attempts int, delay time.Duration, c clock.Clock) *Issuer {
	if c == nil {
		c = clock.RealClock{}
	}
	return &Issuer{
		store:    store,
		poller:   poll.New(&clientGetter{client: client}, attempts, delay, c),
		clock:    c,
		recorder: recorder,
	}
}

// Issue waits for a site, selects or creates an AccessGrant and mints the
// AccessToken document redeeming it. An absent site short-circuits with an
// empty result: querying before any site exists is not an error.
func (i *Issuer) Issue(ctx context.Context, req Request) (Result, error) {
	logger := klog.FromContext(ctx)
	recorder := i.recorder.WithContext(ctx)

	siteResult, err := i.poller.WaitFor(ctx, poll.Target{GVK: v2alpha1.SiteGVK, Namespace: req.Namespace}, v2alpha1.IsReady, nil)
	if err != nil {
		return Result{}, err
	}
	switch siteResult.Outcome {
	case poll.Absent:
		logger.V(2).Info("No site defined, nothing to issue", "namespace", req.Namespace)
		return Result{}, nil
	case poll.Exhausted:
		if i.RequireSiteReady {
			return Result{}, fmt.Errorf("no ready site in namespace %q", req.Namespace)
		}
		recorder.Warningf("SiteNotReady", "site in namespace %q is not ready, checking for an existing AccessGrant anyway", req.Namespace)
	}

	grant, err := i.selectGrant(ctx, req.Namespace, req.Name)
	if err != nil {
		return Result{}, err
	}
	if grant != nil {
		token, err := mintToken(grant)
		if err != nil {
			return Result{}, err
		}
		return Result{Token: token}, nil
	}

	name := req.Name
	if name == "" {
		name = fmt.Sprintf("ansible-grant-%d", i.clock.Now().Unix())
	}
	required := v2alpha1.NewAccessGrant(name, req.RedemptionsAllowed, req.ExpirationWindow)
	changed, err := i.store.Apply(ctx, req.Namespace, []*unstructured.Unstructured{required}, false)
	if err != nil {
		return Result{}, err
	}
	if !changed {
		return Result{}, fmt.Errorf("unable to create AccessGrant %q", name)
	}
	recorder.Eventf("AccessGrantCreated", "created AccessGrant %q in namespace %q", name, req.Namespace)

	grant, err = i.selectGrant(ctx, req.Namespace, name)
	if err != nil {
		return Result{}, err
	}
	if grant == nil {
		logger.Info("Warning: created AccessGrant was not observed, no token minted", "namespace", req.Namespace, "name", name)
		return Result{Changed: true}, nil
	}
	token, err := mintToken(grant)
	if err != nil {
		return Result{}, err
	}
	return Result{Token: token, Changed: true}, nil
}

// selectGrant polls for a grant that is ready and redeemable. A nil grant
// with a nil error means nothing usable exists yet and creation may proceed.
func (i *Issuer) selectGrant(ctx context.Context, namespace, name string) (*unstructured.Unstructured, error) {
	target := poll.Target{GVK: v2alpha1.AccessGrantGVK, Namespace: namespace, Name: name}

	if name != "" {
		result, err := i.poller.WaitFor(ctx, target, v2alpha1.IsReady, nil)
		if err != nil {
			return nil, err
		}
		switch result.Outcome {
		case poll.Selected:
			if !v2alpha1.IsGrantRedeemable(result.Object) {
				return nil, &NotRedeemableError{Name: name}
			}
			return result.Object, nil
		case poll.Exhausted:
			if result.Object != nil {
				return nil, &NotRedeemableError{Name: name}
			}
		}
		return nil, nil
	}

	result, err := i.poller.WaitFor(ctx, target, v2alpha1.IsReady, v2alpha1.IsGrantRedeemable)
	if err != nil {
		return nil, err
	}
	if result.Outcome == poll.Selected {
		return result.Object, nil
	}
	return nil, nil
}

// mintToken serializes the AccessToken redeeming grant as a single YAML
// document.
func mintToken(grant *unstructured.Unstructured) (string, error) {
	token := v2alpha1.NewAccessToken(grant)
	data, err := yaml.Marshal(token.Object)
	if err != nil {
		return "", fmt.Errorf("unable to serialize AccessToken %q: %w", token.GetName(), err)
	}
	return string(data), nil
}
