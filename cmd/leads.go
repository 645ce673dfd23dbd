package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/leadgen-my/leadgen-cli/internal/model"
	"github.com/leadgen-my/leadgen-cli/internal/store"
)

var leadsCmd = &cobra.Command{
	Use:   "leads",
	Short: "Inspect and manage stored leads",
}

var (
	listStatus   string
	listSource   string
	listSearch   string
	listMinScore float64
	listLimit    int
	listOffset   int
)

var leadsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored leads",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		filter := store.LeadFilter{
			Search:   listSearch,
			MinScore: listMinScore,
			Limit:    listLimit,
			Offset:   listOffset,
		}
		if listStatus != "" {
			status, err := model.ParseLeadStatus(listStatus)
			if err != nil {
				return err
			}
			filter.Status = status
		}
		if listSource != "" {
			source, err := model.ParseSourceType(listSource)
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

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tORGANIZATION\tEMAIL\tSOURCE\tSTATUS\tSCORE")
		for _, lead := range leads {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%.2f\n",
				lead.ID, lead.Organization, lead.Email,
				lead.Source, lead.Status, lead.CompletenessScore)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Printf("\n%d leads\n", len(leads))
		return nil
	},
}

var statusNote string

var leadsStatusCmd = &cobra.Command{
	Use:   "status <id> <status>",
	Short: "Update a lead's status",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		status, err := model.ParseLeadStatus(args[1])
		if err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.UpdateLeadStatus(ctx, args[0], status, statusNote); err != nil {
			return err
		}

		zap.L().Info("status updated",
			zap.String("id", args[0]),
			zap.String("status", string(status)),
		)
		return nil
	},
}

func init() {
	leadsListCmd.Flags().StringVar(&listStatus, "status", "", "only leads with this status")
	leadsListCmd.Flags().StringVar(&listSource, "source", "", "only leads from this source")
	leadsListCmd.Flags().StringVar(&listSearch, "search", "", "organization/email substring match")
	leadsListCmd.Flags().Float64Var(&listMinScore, "min-score", 0, "only leads at or above this completeness score")
	leadsListCmd.Flags().IntVar(&listLimit, "limit", 50, "max leads to list")
	leadsListCmd.Flags().IntVar(&listOffset, "offset", 0, "listing offset")

	leadsStatusCmd.Flags().StringVar(&statusNote, "note", "", "note recorded with the status change")

	leadsCmd.AddCommand(leadsListCmd, leadsStatusCmd)
	rootCmd.AddCommand(leadsCmd)
}
