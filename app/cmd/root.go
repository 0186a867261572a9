// Package cmd wires the sslsense command tree.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lexcodex/sslsense/config"
)

var (
	cfgFile      string
	workspaceDir string

	globalCfg *config.Config
)

// Execute is the entry point for the CLI.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// NewRootCmd builds the cobra tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "sslsense",
		Short:         "Language intelligence backend for SSL and TP2 modding scripts",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if workspaceDir == "" {
				wd, err := os.Getwd()
				if err != nil {
					return err
				}
				workspaceDir = wd
			}
			if cfgFile == "" {
				cfgFile = config.DefaultPath(workspaceDir)
			}
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			globalCfg = cfg
			return nil
		},
	}
	root.PersistentFlags().StringVar(&workspaceDir, "workspace", "", "Workspace directory")
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to sslsense config file")

	root.AddCommand(
		newServeCmd(),
		newScanCmd(),
		newCheckCmd(),
		newDoctorCmd(),
	)
	return root
}
