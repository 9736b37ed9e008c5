package damage

import "math"

// Resistances maps damage types to flat resistance values.
// The zero value is usable; a nil map reads as all zeros.
type Resistances struct {
	values map[Type]float64
}

// NewResistances returns Resistances populated from values.
func NewResistances(values map[Type]float64) Resistances {
	r := Resistances{values: make(map[Type]float64, len(values))}
	for t, v := range values {
		r.values[t] = v
	}
	return r
}

// Set replaces the resistance for t.
func (r *Resistances) Set(t Type, v float64) {
	if r.values == nil {
		r.values = make(map[Type]float64)
	}
	r.values[t] = v
}

// Add accumulates every entry of other into r.
//
// Postcondition: r.TypeResist(t) grows by other.TypeResist(t) for every t.
func (r *Resistances) Add(other Resistances) {
	for t, v := range other.values {
		r.Set(t, r.TypeResist(t)+v)
	}
}

// Scaled returns a copy of r with every entry multiplied by f.
func (r Resistances) Scaled(f float64) Resistances {
	out := Resistances{values: make(map[Type]float64, len(r.values))}
	for t, v := range r.values {
		out.values[t] = v * f
	}
	return out
}

// TypeResist returns the flat resistance against t.
func (r Resistances) TypeResist(t Type) float64 {
	return r.values[t]
}

// Empty reports whether r holds no non-zero entry.
func (r Resistances) Empty() bool {
	for _, v := range r.values {
		if v != 0 {
			return false
		}
	}
	return true
}

// EffectiveResist returns how much of u is stopped by r.
//
// Flat types: max(resist - u.ResPen, 0) * u.ResMult, where a ResMult of 0
// bypasses the armor entirely.
// Percent types: u.Amount * min(resist, 100) / 100.
// Postcondition: result >= 0.
func (r Resistances) EffectiveResist(u Unit) float64 {
	resist := r.TypeResist(u.Type)
	if u.Type.PercentResist() {
		return math.Max(u.Amount*math.Min(resist, 100)/100, 0)
	}
	return math.Max(math.Max(resist-u.ResPen, 0)*u.ResMult, 0)
}

// Mitigate subtracts r's effective resistance from u, clamping at zero.
func (r Resistances) Mitigate(u *Unit) {
	u.Amount -= r.EffectiveResist(*u)
	u.Clamp()
}
