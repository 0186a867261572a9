package cmd

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	headStyle = lipgloss.NewStyle().Bold(true)
)

// newDoctorCmd reports whether each configured language can actually be
// served: compiler on PATH, external header directories present.
func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check compilers and header directories for each language",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, headStyle.Render("sslsense environment"))
			fmt.Fprintf(out, "workspace: %s\n", workspaceDir)
			fmt.Fprintf(out, "config:    %s %s\n", cfgFile, existsMark(cfgFile))

			for _, lang := range globalCfg.Languages {
				fmt.Fprintln(out, headStyle.Render(lang.ID))
				if len(lang.Compiler) == 0 {
					fmt.Fprintf(out, "  compiler: %s\n", failStyle.Render("not configured"))
				} else if _, err := exec.LookPath(lang.Compiler[0]); err != nil {
					fmt.Fprintf(out, "  compiler: %s %s\n", lang.Compiler[0], failStyle.Render("not found"))
				} else {
					fmt.Fprintf(out, "  compiler: %s %s\n", lang.Compiler[0], okStyle.Render("ok"))
				}
				for _, dir := range lang.HeaderDirs {
					fmt.Fprintf(out, "  headers:  %s %s\n", dir, existsMark(dir))
				}
			}
			return nil
		},
	}
}

func existsMark(path string) string {
	if _, err := os.Stat(path); err != nil {
		return failStyle.Render("missing")
	}
	return okStyle.Render("ok")
}
