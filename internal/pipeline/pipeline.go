package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Step is one stage of the pipeline. Steps run strictly in slice order; a
// failing step aborts the run.
type Step struct {
	Name string
	Run  func(ctx context.Context) error
}

// Pipeline executes its steps sequentially, once or on an interval.
type Pipeline struct {
	steps  []Step
	logger *zap.Logger
}

// New creates a new Pipeline instance.
func New(steps []Step, logger *zap.Logger) *Pipeline {
	return &Pipeline{steps: steps, logger: logger}
}

// Run executes every step once, in order.
func (p *Pipeline) Run(ctx context.Context) error {
	start := time.Now()
	for _, step := range p.steps {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		p.logger.Info("Running pipeline step", zap.String("step", step.Name))
		stepStart := time.Now()
		if err := step.Run(ctx); err != nil {
			return fmt.Errorf("step %s failed: %w", step.Name, err)
		}
		p.logger.Info("Pipeline step finished",
			zap.String("step", step.Name),
			zap.Duration("elapsed", time.Since(stepStart)))
	}
	p.logger.Info("Pipeline run finished", zap.Duration("elapsed", time.Since(start)))
	return nil
}

// Loop runs the pipeline immediately and then on every interval tick until the
// context is cancelled. Failed runs are logged; the loop keeps going.
func (p *Pipeline) Loop(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if err := p.Run(ctx); err != nil {
		p.logger.Error("Pipeline run failed", zap.Error(err))
	}

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Pipeline stopped")
			return ctx.Err()
		case <-ticker.C:
			if err := p.Run(ctx); err != nil {
				p.logger.Error("Pipeline run failed", zap.Error(err))
			}
		}
	}
}

// Select filters steps by the comma-separated names, keeping canonical order.
// An empty selection returns all steps.
func Select(steps []Step, names string) ([]Step, error) {
	names = strings.TrimSpace(names)
	if names == "" {
		return steps, nil
	}

	wanted := make(map[string]bool)
	for _, name := range strings.Split(names, ",") {
		wanted[strings.TrimSpace(name)] = true
	}
	for name := range wanted {
		found := false
		for _, step := range steps {
			if step.Name == name {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("unknown pipeline step %q", name)
		}
	}

	var selected []Step
	for _, step := range steps {
		if _, ok := wanted[step.Name]; ok {
			selected = append(selected, step)
		}
	}
	return selected, nil
}
