package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func step(name string, order *[]string, err error) Step {
	return Step{
		Name: name,
		Run: func(ctx context.Context) error {
			*order = append(*order, name)
			return err
		},
	}
}

func TestPipeline_RunsInOrder(t *testing.T) {
	var order []string
	p := New([]Step{
		step("scrape", &order, nil),
		step("load", &order, nil),
		step("transform", &order, nil),
		step("detect", &order, nil),
	}, zap.NewNop())

	require.NoError(t, p.Run(context.Background()))
	assert.Equal(t, []string{"scrape", "load", "transform", "detect"}, order)
}

func TestPipeline_AbortsOnFailure(t *testing.T) {
	var order []string
	boom := errors.New("boom")
	p := New([]Step{
		step("load", &order, nil),
		step("transform", &order, boom),
		step("detect", &order, nil),
	}, zap.NewNop())

	err := p.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"load", "transform"}, order, "steps after a failure must not run")
}

func TestPipeline_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var order []string
	p := New([]Step{step("load", &order, nil)}, zap.NewNop())

	err := p.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, order)
}

func TestSelect_EmptyReturnsAll(t *testing.T) {
	steps := []Step{{Name: "scrape"}, {Name: "load"}}
	selected, err := Select(steps, "")
	require.NoError(t, err)
	assert.Len(t, selected, 2)
}

func TestSelect_KeepsCanonicalOrder(t *testing.T) {
	steps := []Step{{Name: "scrape"}, {Name: "load"}, {Name: "transform"}}
	selected, err := Select(steps, "transform, scrape")
	require.NoError(t, err)
	require.Len(t, selected, 2)
	assert.Equal(t, "scrape", selected[0].Name)
	assert.Equal(t, "transform", selected[1].Name)
}

func TestSelect_UnknownStep(t *testing.T) {
	steps := []Step{{Name: "scrape"}}
	_, err := Select(steps, "scrape,frobnicate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "frobnicate")
}
