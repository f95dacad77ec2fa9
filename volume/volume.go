// Package volume defines the volume unit shared by every extension context.
//
// The UI and the messaging protocol speak integer percent in [0, 500];
// the audio graph speaks gain fractions in [0.0, 5.0]. A media element's
// native volume property can only express [0.0, 1.0], so anything above
// 100% requires the gain pipeline.
package volume

import "strconv"

const (
	// MinPercent and MaxPercent bound every user-settable volume.
	MinPercent Percent = 0
	MaxPercent Percent = 500

	// DefaultPercent is the volume of a tab the user never touched.
	DefaultPercent Percent = 100

	// NativeCeilingPercent is the loudest a media element can go without
	// the amplification pipeline.
	NativeCeilingPercent Percent = 100
)

// Percent is a UI-facing volume in [0, 500].
type Percent int

// Clamp returns p forced into [MinPercent, MaxPercent].
func Clamp(p Percent) Percent {
	if p < MinPercent {
		return MinPercent
	}
	if p > MaxPercent {
		return MaxPercent
	}
	return p
}

// FromFraction converts a gain fraction in [0.0, 5.0] to a clamped Percent.
func FromFraction(f float64) Percent {
	return Clamp(Percent(f*100 + 0.5))
}

// Fraction returns the gain value for the amplification pipeline.
func (p Percent) Fraction() float64 {
	return float64(Clamp(p)) / 100
}

// NativeFraction returns the value to assign to a media element's own
// volume property: the requested volume saturated at the native ceiling.
func (p Percent) NativeFraction() float64 {
	c := Clamp(p)
	if c > NativeCeilingPercent {
		c = NativeCeilingPercent
	}
	return float64(c) / 100
}

// NeedsAmplification reports whether p is beyond what native element
// volume can express.
func (p Percent) NeedsAmplification() bool {
	return Clamp(p) > NativeCeilingPercent
}

// IsDefault reports whether p is the untouched default.
func (p Percent) IsDefault() bool {
	return Clamp(p) == DefaultPercent
}

// String renders p the way the UI shows it.
func (p Percent) String() string {
	return strconv.Itoa(int(p)) + "%"
}
