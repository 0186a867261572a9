package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/lexcodex/sslsense/analysis"
	"github.com/lexcodex/sslsense/workspace"
)

// newScanCmd runs the workspace header scan once and prints what the
// dynamic tier would contain.
func newScanCmd() *cobra.Command {
	var langID string
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan workspace headers and print extracted symbols",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := log.New(os.Stderr, "sslsense ", log.LstdFlags)
			loader := workspace.NewLoader(logger, nil)
			for _, lang := range globalCfg.Languages {
				if langID != "" && lang.ID != langID {
					continue
				}
				symbols, err := loader.ScanDynamic(cmd.Context(), workspaceDir, lang.HeaderExtensions)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d symbols\n", lang.ID, len(symbols))
				for _, sym := range symbols {
					fmt.Fprintf(cmd.OutOrStdout(), "  %-10s %-30s %s\n", sym.Kind, sym.Name, analysis.Format(sym))
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&langID, "language", "", "Limit the scan to one language id")
	return cmd
}
