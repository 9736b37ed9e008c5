package damage

import "math"

// Unit is a single typed quantity of incoming damage.
// The armor pipeline mutates Amount in place.
type Unit struct {
	Type             Type
	Amount           float64
	ResPen           float64
	ResMult          float64
	DamageMultiplier float64
}

// NewUnit returns a Unit with neutral penetration and multipliers.
func NewUnit(t Type, amount float64) Unit {
	return Unit{Type: t, Amount: amount, ResMult: 1, DamageMultiplier: 1}
}

// Clamp raises a negative Amount to zero.
func (u *Unit) Clamp() {
	if u.Amount < 0 {
		u.Amount = 0
	}
}

// Instance is the ordered set of units delivered by one attack.
type Instance struct {
	Units []Unit
}

// NewInstance returns an Instance holding units.
func NewInstance(units ...Unit) *Instance {
	return &Instance{Units: units}
}

// Total returns the sum of every unit's Amount.
func (d *Instance) Total() float64 {
	var sum float64
	for _, u := range d.Units {
		sum += u.Amount
	}
	return sum
}

// TotalInt returns Total rounded to the nearest integer.
func (d *Instance) TotalInt() int {
	return int(math.Round(d.Total()))
}

// Amount returns the summed Amount of every unit of type t.
func (d *Instance) Amount(t Type) float64 {
	var sum float64
	for _, u := range d.Units {
		if u.Type == t {
			sum += u.Amount
		}
	}
	return sum
}

// Clone returns a deep copy of d.
func (d *Instance) Clone() *Instance {
	out := &Instance{Units: make([]Unit, len(d.Units))}
	copy(out.Units, d.Units)
	return out
}
