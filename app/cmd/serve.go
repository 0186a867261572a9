package cmd

import (
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/lexcodex/sslsense/config"
	"github.com/lexcodex/sslsense/persistence"
	"github.com/lexcodex/sslsense/server"
	"github.com/lexcodex/sslsense/workspace"
)

// newServeCmd starts the LSP server on stdio. Stdout belongs to the
// protocol, so logs go to stderr or the configured file.
func newServeCmd() *cobra.Command {
	var noCache bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the language backend over stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := log.New(os.Stderr, "sslsense ", log.LstdFlags)
			if globalCfg.Logging.File != "" {
				f, err := os.OpenFile(globalCfg.Logging.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
				if err == nil {
					defer f.Close()
					logger = log.New(f, "sslsense ", log.LstdFlags)
				}
			}

			var symCache workspace.SymbolCache
			if !noCache {
				cachePath := config.CachePath(workspaceDir)
				if err := os.MkdirAll(filepath.Dir(cachePath), 0o755); err == nil {
					store, err := persistence.OpenSymbolStore(cachePath)
					if err != nil {
						logger.Printf("symbol cache unavailable: %v", err)
					} else {
						defer store.Close()
						symCache = store
					}
				}
			}

			srv, err := server.NewServer(globalCfg, symCache, logger)
			if err != nil {
				return err
			}
			return srv.RunStdio(cmd.Context())
		},
	}
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Disable the persistent symbol cache")
	return cmd
}
