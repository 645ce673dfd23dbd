package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/leadgen-my/leadgen-cli/internal/model"
	"github.com/leadgen-my/leadgen-cli/internal/outreach"
	"github.com/leadgen-my/leadgen-cli/internal/store"
)

var outreachCmd = &cobra.Command{
	Use:   "outreach",
	Short: "Generate and send outreach emails",
}

var (
	generateTemplate  string
	generateStatus    string
	generateMinScore  float64
	generateLimit     int
	generateForce     bool
	generateTierRoute bool
	generateLeadID    string
)

var outreachGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate email drafts for qualifying leads",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		templates, targeting, err := loadOutreachAssets()
		if err != nil {
			return err
		}
		generator := outreach.NewGenerator(templates, cfg.Outreach.SenderName)
		policy := outreach.NewPolicy(cfg.Outreach.MaxGenerations,
			time.Duration(cfg.Outreach.CooldownDays)*24*time.Hour)

		leads, err := generationCandidates(ctx, st)
		if err != nil {
			return err
		}

		generated, skipped := 0, 0
		for _, lead := range leads {
			template := generateTemplate
			if generateTierRoute || template == "" {
				template = targeting.StrategyFor(lead).Template
			}

			if !generateForce {
				allowed, reason, err := policy.Check(ctx, st, lead.ID, template)
				if err != nil {
					return err
				}
				if !allowed {
					zap.L().Debug("skipping lead",
						zap.String("id", lead.ID),
						zap.String("reason", reason))
					skipped++
					continue
				}
			}

			gen, err := generator.Generate(lead, template, nil)
			if err != nil {
				zap.L().Warn("generation failed",
					zap.String("id", lead.ID),
					zap.Error(err))
				skipped++
				continue
			}
			if _, err := st.RecordGeneration(ctx, gen); err != nil {
				return eris.Wrap(err, "record generation")
			}
			generated++
		}

		zap.L().Info("generation complete",
			zap.Int("generated", generated),
			zap.Int("skipped", skipped),
		)
		return nil
	},
}

// generationCandidates lists the leads a generate run should draft emails
// for: a single lead by ID, or a filtered listing.
func generationCandidates(ctx context.Context, st store.Store) ([]model.Lead, error) {
	if generateLeadID != "" {
		lead, err := st.GetLead(ctx, generateLeadID)
		if err != nil {
			return nil, err
		}
		if lead == nil {
			return nil, eris.Errorf("lead %s not found", generateLeadID)
		}
		return []model.Lead{*lead}, nil
	}

	filter := store.LeadFilter{
		MinScore: generateMinScore,
		Limit:    generateLimit,
	}
	if generateStatus != "" {
		status, err := model.ParseLeadStatus(generateStatus)
		if err != nil {
			return nil, err
		}
		filter.Status = status
	}
	leads, err := st.ListLeads(ctx, filter)
	if err != nil {
		return nil, err
	}

	// Only leads with an email address can be drafted for.
	candidates := leads[:0]
	for _, lead := range leads {
		if lead.Email != "" {
			candidates = append(candidates, lead)
		}
	}
	return candidates, nil
}

// loadOutreachAssets loads templates and targeting rules, applying any
// configured overrides on top of the built-in defaults.
func loadOutreachAssets() (*outreach.Templates, *outreach.Targeting, error) {
	templates := outreach.DefaultTemplates()
	if cfg.Outreach.TemplateDir != "" {
		if err := templates.LoadDir(cfg.Outreach.TemplateDir); err != nil {
			return nil, nil, err
		}
	}
	targeting, err := outreach.LoadTargeting(cfg.Outreach.TargetingFile)
	if err != nil {
		return nil, nil, err
	}
	return templates, targeting, nil
}

var (
	sendGenerationIDs []int64
	sendStatus        string
	sendLimit         int
	sendDryRun        bool
	sendAttachments   []string
)

var outreachSendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send generated emails over SMTP",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if !sendDryRun {
			if err := cfg.Validate("outreach"); err != nil {
				return err
			}
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		gens, err := pendingGenerations(ctx, st)
		if err != nil {
			return err
		}
		if len(gens) == 0 {
			zap.L().Info("nothing to send")
			return nil
		}

		sender := outreach.NewSender(cfg.SMTP, cfg.Outreach, sendDryRun)
		res, err := sender.SendBatch(ctx, gens, sendAttachments, st)
		if err != nil {
			return err
		}

		zap.L().Info("send complete",
			zap.Int("sent", res.Sent),
			zap.Int("failed", res.Failed),
			zap.Int("skipped", res.Skipped),
		)
		return nil
	},
}

// pendingGenerations resolves which drafts to send: explicit generation IDs,
// or the unsent drafts of leads matching the status filter.
func pendingGenerations(ctx context.Context, st store.Store) ([]model.EmailGeneration, error) {
	if len(sendGenerationIDs) > 0 {
		gens := make([]model.EmailGeneration, 0, len(sendGenerationIDs))
		for _, id := range sendGenerationIDs {
			gen, err := st.GetGeneration(ctx, id)
			if err != nil {
				return nil, err
			}
			if gen == nil {
				return nil, eris.Errorf("generation %d not found", id)
			}
			if gen.Sent() {
				zap.L().Warn("generation already sent", zap.Int64("id", id))
				continue
			}
			gens = append(gens, *gen)
		}
		return gens, nil
	}

	filter := store.LeadFilter{Limit: sendLimit}
	if sendStatus != "" {
		status, err := model.ParseLeadStatus(sendStatus)
		if err != nil {
			return nil, err
		}
		filter.Status = status
	}
	leads, err := st.ListLeads(ctx, filter)
	if err != nil {
		return nil, err
	}

	var gens []model.EmailGeneration
	for _, lead := range leads {
		drafts, err := st.ListGenerations(ctx, lead.ID, "")
		if err != nil {
			return nil, err
		}
		for _, gen := range drafts {
			if !gen.Sent() {
				gens = append(gens, gen)
			}
		}
	}
	return gens, nil
}

func init() {
	outreachGenerateCmd.Flags().StringVar(&generateLeadID, "lead", "", "generate for a single lead ID")
	outreachGenerateCmd.Flags().StringVar(&generateTemplate, "template", "", "template name (default: tier routing)")
	outreachGenerateCmd.Flags().StringVar(&generateStatus, "status", "new", "only leads with this status")
	outreachGenerateCmd.Flags().Float64Var(&generateMinScore, "min-score", 0, "only leads at or above this completeness score")
	outreachGenerateCmd.Flags().IntVar(&generateLimit, "limit", 100, "max leads to draft for")
	outreachGenerateCmd.Flags().BoolVar(&generateForce, "force", false, "bypass generation limits and cooldowns")
	outreachGenerateCmd.Flags().BoolVar(&generateTierRoute, "tier-routing", false, "pick templates from targeting tiers even when --template is set")

	outreachSendCmd.Flags().Int64SliceVar(&sendGenerationIDs, "generation", nil, "generation ID to send (repeatable)")
	outreachSendCmd.Flags().StringVar(&sendStatus, "status", "", "send unsent drafts for leads with this status")
	outreachSendCmd.Flags().IntVar(&sendLimit, "limit", 100, "max leads to scan for drafts")
	outreachSendCmd.Flags().BoolVar(&sendDryRun, "dry-run", false, "log instead of sending")
	outreachSendCmd.Flags().StringSliceVar(&sendAttachments, "attach", nil, "file to attach (repeatable)")

	outreachCmd.AddCommand(outreachGenerateCmd, outreachSendCmd)
	rootCmd.AddCommand(outreachCmd)
}
