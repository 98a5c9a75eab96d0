package cmd

import (
	"github.com/spf13/pflag"

	"github.com/skupperproject/skupper-ansible/pkg/apis/skupper/v2alpha1"
	"github.com/skupperproject/skupper-ansible/pkg/platform"
)

// Options holds the flags every subcommand shares, mirroring the common
// arguments of the collection modules.
type Options struct {
	Platform   string
	Namespace  string
	Kubeconfig string
	Context    string
}

func NewOptions() *Options {
	return &Options{
		Platform: string(platform.PlatformKubernetes),
	}
}

// AddFlags registers the shared flags. They are installed as persistent
// flags on the root command.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Platform, "platform", o.Platform,
		"The site platform: kubernetes, podman, docker or systemd.")
	fs.StringVar(&o.Namespace, "namespace", o.Namespace,
		"The target namespace. Empty selects default on non-kube platforms.")
	fs.StringVar(&o.Kubeconfig, "kubeconfig", o.Kubeconfig,
		"Path to the kubeconfig file. Empty follows the default loading rules.")
	fs.StringVar(&o.Context, "context", o.Context,
		"The kubeconfig context to use instead of the current one.")
}

// Validate verifies the shared inputs.
func (o *Options) Validate() error {
	if _, err := platform.Parse(o.Platform); err != nil {
		return err
	}
	return v2alpha1.ValidateNamespace(o.Namespace)
}
