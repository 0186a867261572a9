package cmd

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/lexcodex/sslsense/diagnostics"
)

// newCheckCmd compiles one file synchronously and prints the parsed
// diagnostics, the same pipeline the server runs on save.
func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check [file]",
		Short: "Compile a script and print structured diagnostics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			lang, ok := globalCfg.LanguageForPath(path)
			if !ok {
				return fmt.Errorf("no language configured for %s", path)
			}
			if len(lang.Compiler) == 0 {
				return fmt.Errorf("no compiler configured for %s", lang.ID)
			}

			argv := append(append([]string{}, lang.Compiler...), path)
			run := exec.CommandContext(cmd.Context(), argv[0], argv[1:]...)
			run.Dir = filepath.Dir(path)
			var stdout, stderr bytes.Buffer
			run.Stdout = &stdout
			run.Stderr = &stderr
			if err := run.Run(); err != nil {
				// The compiler exits non-zero on any error; its stdout
				// still carries the diagnostics we came for.
				if _, isExit := err.(*exec.ExitError); !isExit {
					return err
				}
			}

			text, readErr := os.ReadFile(path)
			if readErr != nil {
				text = nil
			}
			logger := log.New(os.Stderr, "sslsense ", log.LstdFlags)
			parser := diagnostics.NewParser(logger)
			res := parser.Parse(stdout.String(), diagnostics.NewLineIndex(string(text)))

			for _, item := range res.Errors {
				fmt.Fprintf(cmd.OutOrStdout(), "%s:%d:%d-%d error: %s\n", item.File, item.Line, item.ColStart, item.ColEnd, item.Message)
			}
			for _, item := range res.Warnings {
				fmt.Fprintf(cmd.OutOrStdout(), "%s:%d:%d-%d warning: %s\n", item.File, item.Line, item.ColStart, item.ColEnd, item.Message)
			}
			if len(res.Errors) == 0 && len(res.Warnings) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no diagnostics")
			}
			return nil
		},
	}
}
