package experiment

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/resilience/internal/config"
	"github.com/san-kum/resilience/internal/dynamo"
	"github.com/san-kum/resilience/internal/ews"
	"github.com/san-kum/resilience/internal/forcing"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

// harvestConfig is K=10, x0=8, uniform noise on [-1, 1], integrated to
// t=600 with the segment t in [100, 600] thinned by 100 and a single window
// spanning the whole segment.
func harvestConfig(c float64) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Model = config.ModelConfig{K: 10, C: c, X0: 8}
	cfg.Dt = 0.01
	cfg.Duration = 600
	cfg.Seed = 42
	cfg.Noise = config.NoiseConfig{Kind: "uniform", Min: -1, Max: 1}
	cfg.Selection = config.SelectionConfig{From: 100, To: 600, Thin: 100}
	cfg.EWS = config.EWSConfig{WindowFraction: 1, Detrend: "none", Indicators: []string{ews.AR1, ews.Variance}}
	return cfg
}

func TestRun_IndicatorsRiseTowardsFold(t *testing.T) {
	far, err := Run(context.Background(), harvestConfig(1), quiet)
	require.NoError(t, err)
	near, err := Run(context.Background(), harvestConfig(2.5), quiet)
	require.NoError(t, err)

	require.Equal(t, 1, far.EWS.Len())
	require.Equal(t, 1, near.EWS.Len())

	farAR1 := far.EWS.Indicators[ews.AR1][0]
	nearAR1 := near.EWS.Indicators[ews.AR1][0]
	assert.Greater(t, nearAR1, farAR1, "ar1 at c=2.5 should exceed c=1")

	farVar := far.EWS.Indicators[ews.Variance][0]
	nearVar := near.EWS.Indicators[ews.Variance][0]
	assert.Greater(t, nearVar, farVar, "variance at c=2.5 should exceed c=1")
}

func TestRun_RampRaisesAR1Trend(t *testing.T) {
	cfg := config.GetPreset("ramp")
	cfg.Seed = 7
	res, err := Run(context.Background(), cfg, quiet)
	require.NoError(t, err)

	require.Positive(t, res.EWS.Len())
	assert.Greater(t, res.EWS.Trends[ews.AR1], 0.0)
	// the ramp stays below the fold, so the stock never collapses
	assert.Zero(t, res.Trajectory.Clamped)
}

func TestRun_NonNegative(t *testing.T) {
	cfg := harvestConfig(3)
	cfg.Model.X0 = 0.5
	cfg.Duration = 50
	cfg.Selection = config.SelectionConfig{Thin: 10}
	cfg.Noise = config.NoiseConfig{Kind: "uniform", Min: -5, Max: 0}

	res, err := Run(context.Background(), cfg, quiet)
	require.NoError(t, err)

	for i, x := range res.Trajectory.States {
		require.GreaterOrEqual(t, x[0], 0.0, "state %d at t=%g", i, res.Trajectory.Times[i])
	}
	assert.Positive(t, res.Trajectory.Clamped)
	assert.Equal(t, 0.0, res.Trajectory.Final()[0])
	assert.Greater(t, res.Trajectory.Metrics["extinct_fraction"], 0.0)
}

func TestRun_SameSeedIsBitIdentical(t *testing.T) {
	cfg := harvestConfig(2.5)
	cfg.Duration = 50
	cfg.Selection = config.SelectionConfig{Thin: 10}

	a, err := Run(context.Background(), cfg, quiet)
	require.NoError(t, err)
	b, err := Run(context.Background(), cfg.Clone(), quiet)
	require.NoError(t, err)
	assert.Equal(t, a.Trajectory.States, b.Trajectory.States)

	other := cfg.Clone()
	other.Seed++
	c, err := Run(context.Background(), other, quiet)
	require.NoError(t, err)
	assert.NotEqual(t, a.Trajectory.States, c.Trajectory.States)
}

func TestRun_ConvergesWithoutNoise(t *testing.T) {
	cfg := harvestConfig(1)
	cfg.Duration = 100
	cfg.Noise = config.NoiseConfig{Kind: "none"}

	res, err := Run(context.Background(), cfg, quiet)
	require.NoError(t, err)
	assert.InDelta(t, 8.889084, res.Trajectory.Final()[0], 1e-4)
	assert.InDelta(t, 1.0, res.Trajectory.Metrics["stability"], 0.05)
}

func TestRun_StrictForcingFailsOutsideTable(t *testing.T) {
	cfg := harvestConfig(1)
	cfg.Duration = 100
	cfg.Forcing = config.ForcingConfig{
		Policy: "strict",
		Points: []forcing.Point{{Time: 0, Value: 1}, {Time: 50, Value: 1.5}},
	}

	_, err := Run(context.Background(), cfg, quiet)
	require.Error(t, err)
	assert.ErrorIs(t, err, forcing.ErrOutOfRange)

	var simErr *dynamo.SimulationError
	require.True(t, errors.As(err, &simErr))
	assert.InDelta(t, 50, simErr.Time, 0.02)

	cfg.Forcing.Policy = "clamp"
	res, err := Run(context.Background(), cfg, quiet)
	require.NoError(t, err)
	assert.Equal(t, 100.0, res.Trajectory.Times[res.Trajectory.Len()-1])
}

func TestRun_InvalidConfig(t *testing.T) {
	cfg := harvestConfig(1)
	cfg.Dt = -0.1
	_, err := Run(context.Background(), cfg, quiet)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)

	cfg = harvestConfig(1)
	cfg.Integrator = "leapfrog"
	_, err = Run(context.Background(), cfg, quiet)
	assert.Error(t, err)

	cfg = harvestConfig(1)
	cfg.EWS.Detrend = "loess"
	_, err = Run(context.Background(), cfg, quiet)
	assert.ErrorIs(t, err, ews.ErrUnknownMethod)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, harvestConfig(1), quiet)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunEnsemble_MatchesSingleRuns(t *testing.T) {
	cfg := harvestConfig(2.5)
	cfg.Duration = 30
	cfg.Selection = config.SelectionConfig{Thin: 10}
	cfg.Seed = 100

	results, err := RunEnsemble(context.Background(), cfg, 4, 2, quiet)
	require.NoError(t, err)
	require.Len(t, results, 4)

	for i, res := range results {
		assert.Equal(t, uint64(100+i), res.Seed)

		single := cfg.Clone()
		single.Seed = res.Seed
		want, err := Run(context.Background(), single, quiet)
		require.NoError(t, err)
		assert.Equal(t, want.Trajectory.States, res.Trajectory.States, "member %d", i)
	}
}

func TestCompare_KeepsInputOrder(t *testing.T) {
	a := harvestConfig(1)
	a.Name = "far"
	a.Duration = 30
	b := harvestConfig(2.5)
	b.Name = "near"
	b.Duration = 30

	results, err := Compare(context.Background(), []*config.Config{a, b}, quiet)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "far", results[0].Name)
	assert.Equal(t, "near", results[1].Name)
}

func TestOptions_WindowResolution(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.EWS = config.EWSConfig{WindowFraction: 0.5, Detrend: "no"}
	opts, err := Options(cfg, 101)
	require.NoError(t, err)
	assert.Equal(t, 50, opts.Window)
	assert.Equal(t, ews.None, opts.Detrend)

	cfg.EWS.Window = 12
	opts, err = Options(cfg, 101)
	require.NoError(t, err)
	assert.Equal(t, 12, opts.Window)
}

func TestUpperEquilibrium(t *testing.T) {
	assert.InDelta(t, 8.889084, upperEquilibrium(harvestConfig(1)), 1e-5)
	assert.InDelta(t, 5.843404, upperEquilibrium(harvestConfig(2.5)), 1e-5)
	// only the low branch remains past the upper fold
	assert.InDelta(t, 0.416523, upperEquilibrium(harvestConfig(2.7)), 1e-5)
}
