package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/skupperproject/skupper-ansible/pkg/version"
)

// NewCommand builds the skupper-ansible root command. Every subcommand runs
// one operation to completion and prints a single JSON result on stdout.
func NewCommand() *cobra.Command {
	globals := NewOptions()
	cmd := &cobra.Command{
		Use:   "skupper-ansible",
		Short: "Skupper v2 site management for ansible",
		Run: func(cmd *cobra.Command, args []string) {
			if err := cmd.Help(); err != nil {
				fmt.Fprintf(os.Stderr, "%v\n", err)
			}
			os.Exit(1)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	if v := version.Get().String(); len(v) == 0 {
		cmd.Version = "<unknown>"
	} else {
		cmd.Version = v
	}

	globals.AddFlags(cmd.PersistentFlags())
	// Carry the process-level flags (logging) registered in main.
	cmd.PersistentFlags().AddFlagSet(pflag.CommandLine)

	cmd.AddCommand(NewTokenCommand(globals))
	cmd.AddCommand(NewResourceCommand(globals))
	cmd.AddCommand(NewSystemCommand(globals))
	cmd.AddCommand(NewVersionCommand())

	return cmd
}

// NewVersionCommand prints the build version information.
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			return json.NewEncoder(cmd.OutOrStdout()).Encode(version.Get())
		},
	}
}
