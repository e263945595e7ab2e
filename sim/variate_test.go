package sim

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tandem-sim/tandem-sim/sim/internal/testutil"
)

func TestExponential_Sample_InvertsUniform(t *testing.T) {
	// GIVEN a source fixed at u=0.75 (so 1-u = 0.25)
	e := NewExponential(2.0, constSource(0.75))

	// WHEN sampled
	got, err := e.Sample()

	// THEN the value is -ln(0.25)/2
	require.NoError(t, err)
	testutil.AssertFloat64Equal(t, "sample", -math.Log(0.25)/2, got, 1e-12)
}

func TestExponential_Sample_ZeroUniformIsFinite(t *testing.T) {
	// u drawn as 0 maps to 1-u = 1, never to log(0)
	got, err := NewExponential(3.0, constSource(0)).Sample()
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)
}

func TestExponential_Sample_NonPositiveRate(t *testing.T) {
	for _, rate := range []float64{0, -1, math.NaN()} {
		got, err := NewExponential(rate, constSource(0.5)).Sample()
		assert.True(t, math.IsInf(got, 1), "rate %v: want +Inf, got %v", rate, got)
		assert.True(t, errors.Is(err, ErrNonPositiveRate), "rate %v: want ErrNonPositiveRate, got %v", rate, err)
	}
}

func TestExponential_Sample_MeanMatchesRate(t *testing.T) {
	// GIVEN a seeded stream and rate 4
	e := NewExponential(4.0, NewPartitionedRNG(NewSimulationKey(42)).Stream("mean"))

	// WHEN averaging many samples
	const n = 200000
	sum := 0.0
	for i := 0; i < n; i++ {
		v, err := e.Sample()
		require.NoError(t, err)
		sum += v
	}

	// THEN the mean is close to 1/rate
	testutil.AssertFloat64Equal(t, "mean", 0.25, sum/n, 0.02)
}
