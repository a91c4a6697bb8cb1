package transform

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// ErrCheckFailed is returned by Runner.Test when a data-quality check finds
// violating rows.
var ErrCheckFailed = errors.New("data-quality check failed")

// Runner materializes models against the warehouse in dependency order and
// executes data-quality checks. Every run is a full rebuild; surrogate keys
// are recomputed each time.
type Runner struct {
	db     *sqlx.DB
	models []Model
	checks []Check
	logger *zap.Logger
}

// NewRunner creates a Runner over the given models and checks.
func NewRunner(db *sqlx.DB, models []Model, checks []Check, logger *zap.Logger) *Runner {
	return &Runner{db: db, models: models, checks: checks, logger: logger}
}

// Run materializes all models in topological order, then executes the checks.
func (r *Runner) Run(ctx context.Context) error {
	ordered, err := Order(r.models)
	if err != nil {
		return err
	}

	if err := r.ensureSchemas(ctx, ordered); err != nil {
		return err
	}

	for _, m := range ordered {
		if err := r.materialize(ctx, m); err != nil {
			return fmt.Errorf("failed to build model %s: %w", m.Relation(), err)
		}
		r.logger.Info("Model materialized",
			zap.String("relation", m.Relation()),
			zap.String("materialization", string(m.Materialization)))
	}

	return r.Test(ctx)
}

// Test executes the data-quality checks and returns ErrCheckFailed (wrapped,
// one entry per failing check) when violations exist.
func (r *Runner) Test(ctx context.Context) error {
	var errs []error
	for _, c := range r.checks {
		var violations int
		query := fmt.Sprintf("SELECT COUNT(*) FROM (%s) violations", c.SQL)
		if err := r.db.GetContext(ctx, &violations, query); err != nil {
			return fmt.Errorf("check %s errored: %w", c.Name, err)
		}
		if violations > 0 {
			r.logger.Error("Data-quality check failed",
				zap.String("check", c.Name),
				zap.Int("violations", violations))
			errs = append(errs, fmt.Errorf("%w: %s (%d rows)", ErrCheckFailed, c.Name, violations))
			continue
		}
		r.logger.Info("Data-quality check passed", zap.String("check", c.Name))
	}
	return errors.Join(errs...)
}

func (r *Runner) ensureSchemas(ctx context.Context, models []Model) error {
	seen := make(map[string]bool)
	var schemas []string
	for _, m := range models {
		if !seen[m.Schema] {
			seen[m.Schema] = true
			schemas = append(schemas, m.Schema)
		}
	}
	sort.Strings(schemas)

	for _, s := range schemas {
		if _, err := r.db.ExecContext(ctx, fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", s)); err != nil {
			return fmt.Errorf("failed to create schema %s: %w", s, err)
		}
	}
	return nil
}

func (r *Runner) materialize(ctx context.Context, m Model) error {
	var stmts []string
	switch m.Materialization {
	case View:
		stmts = []string{
			fmt.Sprintf("DROP VIEW IF EXISTS %s CASCADE", m.Relation()),
			fmt.Sprintf("CREATE VIEW %s AS %s", m.Relation(), m.SQL),
		}
	case Table:
		stmts = []string{
			fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", m.Relation()),
			fmt.Sprintf("CREATE TABLE %s AS %s", m.Relation(), m.SQL),
		}
	default:
		return fmt.Errorf("unknown materialization %q", m.Materialization)
	}

	for _, stmt := range stmts {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Order returns the models sorted so that every model appears after all of its
// refs. It fails on references to unknown models and on cycles. Ties are
// broken by name so the order is deterministic.
func Order(models []Model) ([]Model, error) {
	byName := make(map[string]Model, len(models))
	indegree := make(map[string]int, len(models))
	dependents := make(map[string][]string)

	for _, m := range models {
		if _, dup := byName[m.Name]; dup {
			return nil, fmt.Errorf("duplicate model name %q", m.Name)
		}
		byName[m.Name] = m
		indegree[m.Name] = 0
	}
	for _, m := range models {
		for _, ref := range m.Refs {
			if _, ok := byName[ref]; !ok {
				return nil, fmt.Errorf("model %q refs unknown model %q", m.Name, ref)
			}
			indegree[m.Name]++
			dependents[ref] = append(dependents[ref], m.Name)
		}
	}

	var ready []string
	for name, deg := range indegree {
		if deg == 0 {
			ready = append(ready, name)
		}
	}
	sort.Strings(ready)

	ordered := make([]Model, 0, len(models))
	for len(ready) > 0 {
		name := ready[0]
		ready = ready[1:]
		ordered = append(ordered, byName[name])

		for _, dep := range dependents[name] {
			indegree[dep]--
			if indegree[dep] == 0 {
				ready = append(ready, dep)
			}
		}
		sort.Strings(ready)
	}

	if len(ordered) != len(models) {
		var stuck []string
		for name, deg := range indegree {
			if deg > 0 {
				stuck = append(stuck, name)
			}
		}
		sort.Strings(stuck)
		return nil, fmt.Errorf("dependency cycle involving models %v", stuck)
	}
	return ordered, nil
}
