package outreach

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/leadgen-my/leadgen-cli/internal/model"
)

// GenerationLog is the slice of the store the policy consults.
type GenerationLog interface {
	ListGenerations(ctx context.Context, leadID, template string) ([]model.EmailGeneration, error)
}

// Policy limits how often a lead may be emailed with the same template.
type Policy struct {
	// MaxGenerations caps generations per lead and template.
	MaxGenerations int
	// Cooldown is the minimum gap since the last generation for the same
	// lead and template.
	Cooldown time.Duration

	now func() time.Time
}

// NewPolicy builds a Policy with the given limits.
func NewPolicy(maxGenerations int, cooldown time.Duration) Policy {
	return Policy{MaxGenerations: maxGenerations, Cooldown: cooldown, now: time.Now}
}

// Check reports whether a new generation is allowed for the lead and
// template. When not allowed, reason says why.
func (p Policy) Check(ctx context.Context, log GenerationLog, leadID, template string) (allowed bool, reason string, err error) {
	gens, err := log.ListGenerations(ctx, leadID, template)
	if err != nil {
		return false, "", eris.Wrapf(err, "outreach: list generations for lead %s", leadID)
	}

	if p.MaxGenerations > 0 && len(gens) >= p.MaxGenerations {
		return false, "generation limit reached", nil
	}

	if p.Cooldown > 0 {
		nowFn := p.now
		if nowFn == nil {
			nowFn = time.Now
		}
		cutoff := nowFn().Add(-p.Cooldown)
		for _, g := range gens {
			if g.CreatedAt.After(cutoff) {
				return false, "cooldown active", nil
			}
		}
	}
	return true, "", nil
}
