// Package units provides the volume and energy quantities shared by the
// digestion and armor subsystems.
package units

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Volume is a volume in milliliters.
type Volume int64

// Common volumes.
const (
	Milliliter Volume = 1
	Liter      Volume = 1000
)

// FromMilliliter returns a Volume of ml milliliters.
func FromMilliliter(ml int64) Volume { return Volume(ml) }

// FromLiter returns a Volume of l liters.
func FromLiter(l int64) Volume { return Volume(l) * Liter }

// Milliliters returns v in milliliters.
func (v Volume) Milliliters() int64 { return int64(v) }

// Scale multiplies v by f, truncating toward zero.
func (v Volume) Scale(f float64) Volume { return Volume(float64(v) * f) }

// String encodes v in the persisted "<n>_ml" form.
func (v Volume) String() string {
	return strconv.FormatInt(int64(v), 10) + "_ml"
}

// ParseVolume decodes the "<n>_ml" form produced by Volume.String.
//
// Precondition: s ends with "_ml".
// Postcondition: Returns the decoded Volume or a non-nil error.
func ParseVolume(s string) (Volume, error) {
	num, ok := strings.CutSuffix(s, "_ml")
	if !ok {
		return 0, fmt.Errorf("units: volume %q missing _ml suffix", s)
	}
	n, err := strconv.ParseInt(num, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("units: parsing volume %q: %w", s, err)
	}
	return Volume(n), nil
}

// MinVolume returns the smaller of a and b.
func MinVolume(a, b Volume) Volume {
	if a < b {
		return a
	}
	return b
}

// Energy is an amount of energy in millijoules.
type Energy int64

// Common energies.
const (
	Millijoule Energy = 1
	Joule      Energy = 1000
	Kilojoule  Energy = 1000 * Joule
)

// FromJoule converts j joules to Energy, rounding to the nearest millijoule.
func FromJoule(j float64) Energy { return Energy(math.Round(j * float64(Joule))) }

// FromKilojoule converts kj kilojoules to Energy, rounding to the nearest millijoule.
func FromKilojoule(kj float64) Energy { return Energy(math.Round(kj * float64(Kilojoule))) }

// Millijoules returns e in millijoules.
func (e Energy) Millijoules() int64 { return int64(e) }

// Joules returns e in joules.
func (e Energy) Joules() float64 { return float64(e) / float64(Joule) }

// Kilojoules returns e in kilojoules.
func (e Energy) Kilojoules() float64 { return float64(e) / float64(Kilojoule) }

// String renders e in kilojoules, e.g. "25kJ".
func (e Energy) String() string {
	return strconv.FormatFloat(e.Kilojoules(), 'f', -1, 64) + "kJ"
}
