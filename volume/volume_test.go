package volume

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClamp(t *testing.T) {
	assert.Equal(t, Percent(0), Clamp(-20))
	assert.Equal(t, Percent(0), Clamp(0))
	assert.Equal(t, Percent(250), Clamp(250))
	assert.Equal(t, Percent(500), Clamp(500))
	assert.Equal(t, Percent(500), Clamp(750))
}

func TestFraction(t *testing.T) {
	assert.Equal(t, 0.0, Percent(0).Fraction())
	assert.Equal(t, 1.0, Percent(100).Fraction())
	assert.Equal(t, 3.0, Percent(300).Fraction())
	assert.Equal(t, 5.0, Percent(500).Fraction())
	// Out of range input still clamps.
	assert.Equal(t, 5.0, Percent(900).Fraction())
}

func TestNativeFraction_SaturatesAtCeiling(t *testing.T) {
	assert.Equal(t, 0.3, Percent(30).NativeFraction())
	assert.Equal(t, 1.0, Percent(100).NativeFraction())
	assert.Equal(t, 1.0, Percent(300).NativeFraction())
	assert.Equal(t, 1.0, Percent(500).NativeFraction())
}

func TestFromFraction_RoundTrips(t *testing.T) {
	for _, p := range []Percent{0, 1, 50, 100, 101, 250, 499, 500} {
		assert.Equal(t, p, FromFraction(p.Fraction()), "percent %d", p)
	}
}

func TestNeedsAmplification(t *testing.T) {
	assert.False(t, Percent(0).NeedsAmplification())
	assert.False(t, Percent(100).NeedsAmplification())
	assert.True(t, Percent(101).NeedsAmplification())
	assert.True(t, Percent(500).NeedsAmplification())
}

func TestIsDefault(t *testing.T) {
	assert.True(t, Percent(100).IsDefault())
	assert.False(t, Percent(99).IsDefault())
	assert.False(t, Percent(200).IsDefault())
}

func TestString(t *testing.T) {
	assert.Equal(t, "0%", Percent(0).String())
	assert.Equal(t, "350%", Percent(350).String())
}
