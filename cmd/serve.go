package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/leadgen-my/leadgen-cli/internal/api"
	"github.com/leadgen-my/leadgen-cli/internal/outreach"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the REST API server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		templates, targeting, err := loadOutreachAssets()
		if err != nil {
			return err
		}

		srv := api.NewServer(api.Options{
			Store:     st,
			Registry:  newMapperRegistry(),
			Generator: outreach.NewGenerator(templates, cfg.Outreach.SenderName),
			Policy: outreach.NewPolicy(cfg.Outreach.MaxGenerations,
				time.Duration(cfg.Outreach.CooldownDays)*24*time.Hour),
			Targeting: targeting,
			Sender:    outreach.NewSender(cfg.SMTP, cfg.Outreach, false),
			ExportDir: cfg.Export.Dir,
			Token:     cfg.Server.Token,
		})

		addr := serveAddr
		if addr == "" {
			addr = fmt.Sprintf(":%d", cfg.Server.Port)
		}
		return srv.ListenAndServe(ctx, addr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config port)")
	rootCmd.AddCommand(serveCmd)
}
