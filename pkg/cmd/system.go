package cmd

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/skupperproject/skupper-ansible/pkg/platform"
	"github.com/skupperproject/skupper-ansible/pkg/recorder"
	"github.com/skupperproject/skupper-ansible/pkg/system"
)

const (
	StateSetup    = "setup"
	StateReload   = "reload"
	StateStart    = "start"
	StateStop     = "stop"
	StateTeardown = "teardown"
	StateBundle   = "bundle"
	StateTarball  = "tarball"
)

// SystemOptions holds configuration for the system subcommand.
type SystemOptions struct {
	State  string
	Image  string
	Engine string
}

func NewSystemOptions() *SystemOptions {
	return &SystemOptions{
		State:  StateSetup,
		Image:  system.DefaultImage,
		Engine: string(platform.EnginePodman),
	}
}

// AddFlags registers flags for the system subcommand
func (o *SystemOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.State, "state", o.State,
		"One of setup, reload, start, stop, teardown, bundle or tarball.")
	fs.StringVar(&o.Image, "image", o.Image,
		"The bootstrap image used to initialize the namespace.")
	fs.StringVar(&o.Engine, "engine", o.Engine,
		"The container engine running the bootstrap: podman or docker.")
}

// Validate verifies the inputs.
func (o *SystemOptions) Validate() error {
	switch o.State {
	case StateSetup, StateReload, StateStart, StateStop, StateTeardown, StateBundle, StateTarball:
	default:
		return fmt.Errorf("unsupported state %q", o.State)
	}
	_, err := platform.ParseEngine(o.Engine)
	return err
}

// engineFor resolves the container engine. The podman and docker platforms
// imply their own engine, the systemd platform runs the bootstrap with
// whichever engine was requested.
func (o *SystemOptions) engineFor(p platform.Platform) (platform.Engine, error) {
	switch p {
	case platform.PlatformPodman:
		return platform.EnginePodman, nil
	case platform.PlatformDocker:
		return platform.EngineDocker, nil
	}
	return platform.ParseEngine(o.Engine)
}

// Run drives the local site lifecycle for the target namespace.
func (o *SystemOptions) Run(ctx context.Context, globals *Options) (Result, error) {
	p, err := platform.Parse(globals.Platform)
	if err != nil {
		return Result{}, err
	}
	engine, err := o.engineFor(p)
	if err != nil {
		return Result{}, err
	}

	env := platform.NewEnv()
	api, err := system.NewEngineClient(env, engine)
	if err != nil {
		return Result{}, err
	}
	rec := recorder.NewLoggingRecorder("system").WithContext(ctx)
	manager, err := system.NewManager(p, engine, o.Image, env, api, system.NewSystemctl(env), rec, nil)
	if err != nil {
		return Result{}, err
	}

	namespace := globals.Namespace
	if o.State == StateBundle || o.State == StateTarball {
		produce := manager.Bundle
		if o.State == StateTarball {
			produce = manager.Tarball
		}
		artifact, changed, err := produce(ctx, namespace)
		if err != nil {
			return Result{}, err
		}
		result := Result{Changed: changed, Path: artifact.Path}
		if len(artifact.Data) > 0 {
			result.Bundle = base64.StdEncoding.EncodeToString(artifact.Data)
		}
		return result, nil
	}

	var changed bool
	switch o.State {
	case StateSetup:
		changed, err = manager.Setup(ctx, namespace)
	case StateReload:
		changed, err = manager.Reload(ctx, namespace)
	case StateStart:
		changed, err = manager.Start(ctx, namespace)
	case StateStop:
		changed, err = manager.Stop(ctx, namespace)
	case StateTeardown:
		changed, err = manager.Teardown(ctx, namespace)
	}
	if err != nil {
		return Result{}, err
	}
	return Result{Changed: changed, Path: env.NamespaceHome(namespace)}, nil
}

// NewSystemCommand manages the local site lifecycle on non-kube platforms.
func NewSystemCommand(globals *Options) *cobra.Command {
	o := NewSystemOptions()
	cmd := &cobra.Command{
		Use:   "system",
		Short: "Manage the local site lifecycle of the target namespace",
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
