package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"theory-keys/server"
)

var serveAddr string

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, :8080)")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the keyboard drawing and analysis over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		th, err := loadTheme(cfg)
		if err != nil {
			return err
		}
		addr := cfg.Server.Addr
		if serveAddr != "" {
			addr = serveAddr
		}

		srv := server.New(server.Options{
			Style:          th,
			Analyzer:       newAnalyzer(cfg),
			AllowedOrigins: cfg.Server.AllowedOrigins,
			Timeout:        cfg.Analysis.Timeout.Duration,
		})

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		fmt.Fprintf(cmd.ErrOrStderr(), "listening on %s\n", addr)
		return srv.ListenAndServe(ctx, addr)
	},
}
