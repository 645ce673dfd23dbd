package main

import (
	"encoding/json"
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/leadgen-my/leadgen-cli/internal/pipeline"
)

var statsIn string

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print lead statistics from a file or the store",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		var out any
		if statsIn != "" {
			leads, err := readLeadFile(statsIn)
			if err != nil {
				return err
			}
			out = pipeline.Summarize(leads)
		} else {
			st, err := initStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			stats, err := st.DashboardStats(ctx)
			if err != nil {
				return eris.Wrap(err, "load dashboard stats")
			}
			out = stats
		}

		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return eris.Wrap(err, "marshal stats")
		}
		fmt.Println(string(data))
		return nil
	},
}

func init() {
	statsCmd.Flags().StringVar(&statsIn, "in", "", "lead file to summarize (default: the store)")
	rootCmd.AddCommand(statsCmd)
}
