package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfidenceDegenerateCases(t *testing.T) {
	tests := []struct {
		name           string
		xC, nC, xV, nV float64
	}{
		{"zero control denominator", 10, 0, 10, 100},
		{"zero variation denominator", 10, 100, 10, 0},
		{"both rates zero", 0, 100, 0, 100},
		{"both rates one", 100, 100, 200, 200},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rate, conf := Confidence(tt.xC, tt.nC, tt.xV, tt.nV)
			assert.Nil(t, rate)
			require.NotNil(t, conf)
			assert.Equal(t, 0.0, *conf)
		})
	}
}

func TestConfidenceNonFinite(t *testing.T) {
	// Revenue above visits gives a negative variance term.
	rate, conf := Confidence(5000, 100, 6000, 100)
	assert.Nil(t, rate)
	assert.Nil(t, conf)
}

func TestConfidenceKnownValue(t *testing.T) {
	rate, conf := Confidence(100, 1000, 130, 1000)
	require.NotNil(t, rate)
	require.NotNil(t, conf)
	assert.InDelta(t, 0.1, *rate, 1e-12)

	se := math.Sqrt(0.1*0.9/1000 + 0.13*0.87/1000)
	z := 0.03 / se
	want := (1 - math.Erfc(z/math.Sqrt2)) * 100
	assert.InDelta(t, want, *conf, 1e-6)
	assert.Greater(t, *conf, 95.0)
}

func TestConfidenceProperties(t *testing.T) {
	for _, n := range []float64{100, 1000, 50000} {
		for _, p := range []float64{0.01, 0.1, 0.5, 0.9} {
			_, conf := Confidence(p*n, n, p*n, n)
			require.NotNil(t, conf)
			assert.Equal(t, 0.0, *conf, "equal proportions give zero confidence")

			_, ab := Confidence(p*n, n, p*n*1.1, n)
			_, ba := Confidence(p*n*1.1, n, p*n, n)
			if ab != nil && ba != nil {
				assert.InDelta(t, *ab, *ba, 1e-9, "symmetric under swapping arms")
				assert.GreaterOrEqual(t, *ab, 0.0)
				assert.LessOrEqual(t, *ab, 100.0)
			}
		}
	}
}

func TestUpliftPercent(t *testing.T) {
	assert.InDelta(t, 10.0, upliftPercent(100, 110), 1e-9)
	assert.InDelta(t, -50.0, upliftPercent(2, 1), 1e-9)
	assert.Equal(t, 0.0, upliftPercent(0, 5))
	assert.Equal(t, 0.0, upliftPercent(-1, 5))
}
