package migration

import (
	"context"
	"fmt"
	"strings"
	"time"

	"drover/internal/api"
)

// Strategy names accepted by NewStrategy.
const (
	StrategyImmediate = "immediate"
	StrategyGradual   = "gradual"
	StrategyCanary    = "canary"
	StrategyBlueGreen = "blue-green"
)

// Strategy is the closed set of ways a migration can be executed. Every
// variant carries its own run handler, so a new variant cannot be added
// without deciding how it executes.
type Strategy interface {
	// Name returns the strategy's name as accepted by NewStrategy.
	Name() string
	String() string

	validate(services []string) error
	run(ctx context.Context, r *runner) error
}

// Immediate migrates every service one after the other. Failures are
// recorded and the remaining services are still migrated.
type Immediate struct{}

// Gradual migrates fixed-size batches in order, pausing between batches.
type Gradual struct {
	BatchSize           int
	DelayBetweenBatches time.Duration
}

// Canary migrates the canary services first and only continues with the
// rest when all of them succeed. A failed canary rolls back the others.
type Canary struct {
	CanaryServices []string
}

// BlueGreen optionally validates the target before switching every service
// over.
type BlueGreen struct {
	ValidateBeforeSwitch bool
}

func (Immediate) Name() string { return StrategyImmediate }
func (Gradual) Name() string   { return StrategyGradual }
func (Canary) Name() string    { return StrategyCanary }
func (BlueGreen) Name() string { return StrategyBlueGreen }

func (Immediate) String() string { return StrategyImmediate }

func (g Gradual) String() string {
	return fmt.Sprintf("%s (batch size %d, delay %s)", StrategyGradual, g.BatchSize, g.DelayBetweenBatches)
}

func (c Canary) String() string {
	return fmt.Sprintf("%s (%s)", StrategyCanary, strings.Join(c.CanaryServices, ", "))
}

func (b BlueGreen) String() string {
	if b.ValidateBeforeSwitch {
		return StrategyBlueGreen + " (validated)"
	}
	return StrategyBlueGreen
}

func (Immediate) validate([]string) error { return nil }

func (g Gradual) validate([]string) error {
	if g.BatchSize < 1 {
		return api.NewValidationError("batchSize", "must be at least 1, got %d", g.BatchSize)
	}
	if g.DelayBetweenBatches < 0 {
		return api.NewValidationError("delayBetweenBatches", "must not be negative")
	}
	return nil
}

func (c Canary) validate(services []string) error {
	canaries, _ := c.split(services)
	if len(canaries) == 0 {
		return api.NewValidationError("canaryServices", "none of %v is part of the migration", c.CanaryServices)
	}
	return nil
}

func (BlueGreen) validate([]string) error { return nil }

// split partitions services into the canaries, in canary order, and the rest
// in service order.
func (c Canary) split(services []string) (canaries, rest []string) {
	inTask := make(map[string]bool, len(services))
	for _, svc := range services {
		inTask[svc] = true
	}

	isCanary := make(map[string]bool, len(c.CanaryServices))
	for _, svc := range c.CanaryServices {
		if inTask[svc] && !isCanary[svc] {
			isCanary[svc] = true
			canaries = append(canaries, svc)
		}
	}
	for _, svc := range services {
		if !isCanary[svc] {
			rest = append(rest, svc)
		}
	}
	return canaries, rest
}

func (Immediate) run(ctx context.Context, r *runner) error {
	return r.migrateEach(ctx, r.services)
}

func (g Gradual) run(ctx context.Context, r *runner) error {
	total := len(r.services)
	for start := 0; start < total; start += g.BatchSize {
		if start > 0 && g.DelayBetweenBatches > 0 {
			timer := time.NewTimer(g.DelayBetweenBatches)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}

		end := start + g.BatchSize
		if end > total {
			end = total
		}
		for _, svc := range r.services[start:end] {
			if err := ctx.Err(); err != nil {
				return err
			}
			r.migrateOne(svc)
		}
		r.setProgress(end, total)
	}
	return nil
}

func (c Canary) run(ctx context.Context, r *runner) error {
	canaries, rest := c.split(r.services)
	total := len(r.services)

	var migrated []string
	for _, svc := range canaries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !r.migrateOne(svc) {
			r.rollBack(migrated)
			return fmt.Errorf("canary %s failed to migrate; rolled back %d canary services", svc, len(migrated))
		}
		migrated = append(migrated, svc)
		r.setProgress(len(migrated), total)
	}

	for i, svc := range rest {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.migrateOne(svc)
		r.setProgress(len(canaries)+i+1, total)
	}
	return nil
}

func (b BlueGreen) run(ctx context.Context, r *runner) error {
	if b.ValidateBeforeSwitch {
		if err := r.validate(ctx); err != nil {
			return fmt.Errorf("pre-switch validation failed: %w", err)
		}
	}
	return r.migrateEach(ctx, r.services)
}

// StrategyOptions carries the parameters of every strategy variant; only the
// ones of the selected strategy are used.
type StrategyOptions struct {
	BatchSize            int
	DelayBetweenBatches  time.Duration
	CanaryServices       []string
	ValidateBeforeSwitch bool
}

// NewStrategy builds the strategy called name.
func NewStrategy(name string, opts StrategyOptions) (Strategy, error) {
	switch strings.ToLower(name) {
	case StrategyImmediate:
		return Immediate{}, nil
	case StrategyGradual:
		return Gradual{BatchSize: opts.BatchSize, DelayBetweenBatches: opts.DelayBetweenBatches}, nil
	case StrategyCanary:
		return Canary{CanaryServices: append([]string(nil), opts.CanaryServices...)}, nil
	case StrategyBlueGreen, "bluegreen":
		return BlueGreen{ValidateBeforeSwitch: opts.ValidateBeforeSwitch}, nil
	default:
		return nil, api.NewValidationError("strategy", "unknown strategy %q (expected %s, %s, %s or %s)",
			name, StrategyImmediate, StrategyGradual, StrategyCanary, StrategyBlueGreen)
	}
}
