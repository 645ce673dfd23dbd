package main

import (
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/leadgen-my/leadgen-cli/internal/export"
	"github.com/leadgen-my/leadgen-cli/internal/model"
	"github.com/leadgen-my/leadgen-cli/internal/store"
)

var (
	exportFormat   string
	exportOutPath  string
	exportStatus   string
	exportSource   string
	exportMinScore float64
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export leads from the store to a file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		format, err := export.ParseFormat(exportFormat)
		if err != nil {
			return err
		}

		filter := store.LeadFilter{MinScore: exportMinScore}
		if exportStatus != "" {
			status, err := model.ParseLeadStatus(exportStatus)
			if err != nil {
				return err
			}
			filter.Status = status
		}
		if exportSource != "" {
			source, err := model.ParseSourceType(exportSource)
			if err != nil {
				return err
			}
			filter.Source = source
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		leads, err := st.ListLeads(ctx, filter)
		if err != nil {
			return err
		}

		path := exportOutPath
		if path == "" {
			name := "leads-" + time.Now().UTC().Format("20060102-150405") + "." + string(format)
			path = filepath.Join(cfg.Export.Dir, name)
		}
		if err := export.Write(leads, format, path); err != nil {
			return err
		}

		zap.L().Info("export complete", zap.String("path", path), zap.Int("leads", len(leads)))
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "output format: csv, xlsx, or json")
	exportCmd.Flags().StringVar(&exportOutPath, "out", "", "output path (default: export dir with a timestamped name)")
	exportCmd.Flags().StringVar(&exportStatus, "status", "", "only leads with this status")
	exportCmd.Flags().StringVar(&exportSource, "source", "", "only leads from this source")
	exportCmd.Flags().Float64Var(&exportMinScore, "min-score", 0, "only leads at or above this completeness score")
	rootCmd.AddCommand(exportCmd)
}
