package cmd

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/skupperproject/skupper-ansible/pkg/apis/skupper/v2alpha1"
	"github.com/skupperproject/skupper-ansible/pkg/kube"
	"github.com/skupperproject/skupper-ansible/pkg/platform"
	"github.com/skupperproject/skupper-ansible/pkg/poll"
	"github.com/skupperproject/skupper-ansible/pkg/recorder"
	"github.com/skupperproject/skupper-ansible/pkg/resource"
	"github.com/skupperproject/skupper-ansible/pkg/token"
)

// TokenOptions holds configuration for the token subcommand.
type TokenOptions struct {
	Name               string
	Host               string
	RedemptionsAllowed int
	ExpirationWindow   string
	WaitAttempts       int
	WaitDelay          time.Duration
	RequireSiteReady   bool
}

func NewTokenOptions() *TokenOptions {
	return &TokenOptions{
		RedemptionsAllowed: 1,
		ExpirationWindow:   "15m",
		WaitAttempts:       poll.DefaultAttempts,
		WaitDelay:          poll.DefaultDelay,
	}
}

// AddFlags registers flags for the token subcommand
func (o *TokenOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Name, "name", o.Name,
		"The name of an existing AccessGrant to issue the token from.")
	fs.StringVar(&o.Host, "host", o.Host,
		"The hostname used to select a static link on non-kube platforms.")
	fs.IntVar(&o.RedemptionsAllowed, "redemptions-allowed", o.RedemptionsAllowed,
		"The number of redemptions allowed on a created AccessGrant.")
	fs.StringVar(&o.ExpirationWindow, "expiration-window", o.ExpirationWindow,
		"The period a created AccessGrant can be redeemed within.")
	fs.IntVar(&o.WaitAttempts, "wait-attempts", o.WaitAttempts,
		"The number of times site and grant status are checked before giving up.")
	fs.DurationVar(&o.WaitDelay, "wait-delay", o.WaitDelay,
		"The delay between status checks.")
	fs.BoolVar(&o.RequireSiteReady, "require-site-ready", o.RequireSiteReady,
		"Fail instead of proceeding when no site turns ready in time.")
}

// Validate verifies the inputs.
func (o *TokenOptions) Validate() error {
	if err := v2alpha1.ValidateName(o.Name); err != nil {
		return err
	}
	if err := v2alpha1.ValidateHost(o.Host); err != nil {
		return err
	}
	if o.WaitAttempts < 1 {
		return errors.New("wait attempts must be greater than zero")
	}
	if o.WaitDelay < 0 {
		return errors.New("wait delay must not be negative")
	}
	return nil
}

// Run issues a token for the target namespace. On non-kube platforms that
// means reading a static link generated during setup, on kubernetes it runs
// the grant issuance protocol against the cluster.
func (o *TokenOptions) Run(ctx context.Context, globals *Options) (Result, error) {
	p, err := platform.Parse(globals.Platform)
	if err != nil {
		return Result{}, err
	}
	if !p.IsKube() {
		content, err := token.NewStaticLinkResolver(platform.NewEnv()).Resolve(
			globals.Namespace, o.Name, o.Host)
		if err != nil {
			return Result{}, err
		}
		return Result{Token: content}, nil
	}

	client, err := kube.NewClient(globals.Kubeconfig, globals.Context)
	if err != nil {
		return Result{}, err
	}
	rec := recorder.NewLoggingRecorder("token").WithContext(ctx)
	issuer := token.NewIssuer(client, resource.NewKubeStore(client, rec), rec,
		o.WaitAttempts, o.WaitDelay, nil)
	issuer.RequireSiteReady = o.RequireSiteReady

	issued, err := issuer.Issue(ctx, token.Request{
		Namespace:          globals.Namespace,
		Name:               o.Name,
		RedemptionsAllowed: o.RedemptionsAllowed,
		ExpirationWindow:   o.ExpirationWindow,
	})
	if err != nil {
		return Result{}, err
	}
	return Result{Changed: issued.Changed, Token: issued.Token}, nil
}

// NewTokenCommand issues an access token for the target namespace.
func NewTokenCommand(globals *Options) *cobra.Command {
	o := NewTokenOptions()
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an access token for the target namespace",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := globals.Validate(); err != nil {
				return err
			}
			if err := o.Validate(); err != nil {
				return err
			}
			result, err := o.Run(cmd.Context(), globals)
			if err != nil {
				return err
			}
			return result.Print(cmd.OutOrStdout())
		},
	}
	o.AddFlags(cmd.Flags())
	return cmd
}
