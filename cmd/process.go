package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/leadgen-my/leadgen-cli/internal/export"
	"github.com/leadgen-my/leadgen-cli/internal/model"
	"github.com/leadgen-my/leadgen-cli/internal/pipeline"
)

var (
	processIn       string
	processMinScore float64
	processNoDedupe bool
	processOut      string
	processSave     bool
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Re-score, deduplicate, and filter an exported lead file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		leads, err := readLeadFile(processIn)
		if err != nil {
			return err
		}
		zap.L().Info("loaded leads", zap.String("path", processIn), zap.Int("count", len(leads)))

		for i := range leads {
			leads[i].CompletenessScore = pipeline.Score(leads[i])
		}

		minScore := processMinScore
		if !cmd.Flags().Changed("min-score") {
			minScore = cfg.Pipeline.MinScore
		}
		leads = finishLeads(leads, minScore, !processNoDedupe)

		return deliverLeads(ctx, leads, processOut, processSave)
	},
}

// readLeadFile reads a JSON or CSV lead file by extension.
func readLeadFile(path string) ([]model.Lead, error) {
	switch export.FormatForPath(path) {
	case export.FormatCSV:
		return export.ReadCSV(path)
	case export.FormatJSON:
		return export.ReadJSON(path)
	}
	return nil, eris.Errorf("unsupported input file %s; use json or csv", path)
}

func init() {
	processCmd.Flags().StringVar(&processIn, "in", "", "input lead file, .json or .csv (required)")
	_ = processCmd.MarkFlagRequired("in")
	processCmd.Flags().Float64Var(&processMinScore, "min-score", 0, "completeness threshold (default from config)")
	processCmd.Flags().BoolVar(&processNoDedupe, "no-dedupe", false, "skip deduplication")
	processCmd.Flags().StringVar(&processOut, "out", "", "output file (.json, .csv, or .xlsx)")
	processCmd.Flags().BoolVar(&processSave, "save", false, "save leads to the store")
	rootCmd.AddCommand(processCmd)
}
