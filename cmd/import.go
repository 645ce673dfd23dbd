package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/leadgen-my/leadgen-cli/internal/model"
	"github.com/leadgen-my/leadgen-cli/internal/pipeline"
)

var importCmd = &cobra.Command{
	Use:   "import <file>...",
	Short: "Import JSON or CSV lead files into the store",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		total := 0
		for _, path := range args {
			leads, err := readLeadFile(path)
			if err != nil {
				return err
			}
			for i := range leads {
				if leads[i].Source == "" {
					leads[i].Source = model.SourceImported
				}
				if leads[i].Country == "" {
					leads[i].Country = model.DefaultCountry
				}
				leads[i].CompletenessScore = pipeline.Score(leads[i])
			}

			n, err := st.SaveLeads(ctx, leads)
			if err != nil {
				return err
			}
			total += n
			zap.L().Info("imported file", zap.String("path", path), zap.Int("leads", n))
		}

		zap.L().Info("import complete", zap.Int("total", total))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
