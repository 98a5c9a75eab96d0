package cmd

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/skupperproject/skupper-ansible/pkg/kube"
	"github.com/skupperproject/skupper-ansible/pkg/platform"
	"github.com/skupperproject/skupper-ansible/pkg/recorder"
	"github.com/skupperproject/skupper-ansible/pkg/resource"
)

const (
	StatePresent = "present"
	StateLatest  = "latest"
	StateAbsent  = "absent"
)

// ResourceOptions holds configuration for the resource subcommand.
type ResourceOptions struct {
	Path       string
	Definition string
	State      string
}

func NewResourceOptions() *ResourceOptions {
	return &ResourceOptions{
		State: StatePresent,
	}
}

// AddFlags registers flags for the resource subcommand
func (o *ResourceOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Path, "path", o.Path,
		"A yaml file, a directory of yaml files or an http url with resource definitions.")
	fs.StringVar(&o.Definition, "definition", o.Definition,
		"Inline yaml resource definitions, multiple documents allowed.")
	fs.StringVar(&o.State, "state", o.State,
		"One of present (create missing), latest (create or update) or absent (remove).")
}

// Validate verifies the inputs.
func (o *ResourceOptions) Validate() error {
	if o.Path != "" && o.Definition != "" {
		return errors.New("path and definition are mutually exclusive")
	}
	if o.Path == "" && o.Definition == "" {
		return errors.New("no resource definition or path provided")
	}
	switch o.State {
	case StatePresent, StateLatest, StateAbsent:
		return nil
	}
	return fmt.Errorf("unsupported state %q", o.State)
}

// Run places the definitions into the target namespace: applied to the
// cluster on kubernetes, written into the namespace filesystem layout
// otherwise.
func (o *ResourceOptions) Run(ctx context.Context, globals *Options) (Result, error) {
	p, err := platform.Parse(globals.Platform)
	if err != nil {
		return Result{}, err
	}

	var objects []*unstructured.Unstructured
	if o.Definition != "" {
		objects, err = resource.Parse(o.Definition)
	} else {
		objects, err = resource.LoadPath(ctx, o.Path)
	}
	if err != nil {
		return Result{}, err
	}

	var client *kube.Client
	if p.IsKube() {
		if client, err = kube.NewClient(globals.Kubeconfig, globals.Context); err != nil {
			return Result{}, err
		}
	}
	rec := recorder.NewLoggingRecorder("resource").WithContext(ctx)
	store, err := resource.NewStore(p, client, platform.NewEnv(), rec)
	if err != nil {
		return Result{}, err
	}

	var changed bool
	if o.State == StateAbsent {
		changed, err = store.Remove(ctx, globals.Namespace, objects)
	} else {
		changed, err = store.Apply(ctx, globals.Namespace, objects, o.State == StateLatest)
	}
	if err != nil {
		return Result{}, err
	}
	return Result{Changed: changed}, nil
}

// NewResourceCommand places declarative objects in the target namespace.
func NewResourceCommand(globals *Options) *cobra.Command {
	o := NewResourceOptions()
	cmd := &cobra.Command{
		Use:   "resource",
		Short: "Place skupper resources in the target namespace",
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
