// Package nutrition tracks calories and vitamins moving through the body.
package nutrition

import (
	"maps"
	"sort"
)

// Nutrients is a ledger of calories and vitamins.
// Calories are stored in thousandths of a kilocalorie. A vitamin entry of
// zero is equivalent to no entry.
type Nutrients struct {
	Calories int
	Vitamins map[VitaminID]int
}

// KCal returns the calorie count in whole kilocalories, truncated.
func (n Nutrients) KCal() int { return n.Calories / 1000 }

// Vitamin returns the amount of id, 0 when absent.
func (n Nutrients) Vitamin(id VitaminID) int { return n.Vitamins[id] }

// SetVitamin replaces the amount of id.
func (n *Nutrients) SetVitamin(id VitaminID, v int) {
	if n.Vitamins == nil {
		n.Vitamins = make(map[VitaminID]int)
	}
	n.Vitamins[id] = v
}

// Clone returns a deep copy of n.
func (n Nutrients) Clone() Nutrients {
	return Nutrients{Calories: n.Calories, Vitamins: maps.Clone(n.Vitamins)}
}

// VitaminIDs returns every vitamin with a non-zero entry, sorted.
func (n Nutrients) VitaminIDs() []VitaminID {
	out := make([]VitaminID, 0, len(n.Vitamins))
	for id, v := range n.Vitamins {
		if v != 0 {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Add accumulates other term by term.
func (n *Nutrients) Add(other Nutrients) {
	n.Calories += other.Calories
	for id, v := range other.Vitamins {
		n.SetVitamin(id, n.Vitamin(id)+v)
	}
}

// Sub subtracts other term by term.
func (n *Nutrients) Sub(other Nutrients) {
	n.Calories -= other.Calories
	for id, v := range other.Vitamins {
		n.SetVitamin(id, n.Vitamin(id)-v)
	}
}

// Mul scales every term by factor.
func (n *Nutrients) Mul(factor int) {
	n.Calories *= factor
	for id, v := range n.Vitamins {
		n.Vitamins[id] = v * factor
	}
}

// Div divides every term by divisor, rounding up.
//
// Precondition: divisor != 0.
func (n *Nutrients) Div(divisor int) {
	n.Calories = divideRoundUp(n.Calories, divisor)
	for id, v := range n.Vitamins {
		n.Vitamins[id] = divideRoundUp(v, divisor)
	}
}

func divideRoundUp(a, b int) int {
	q := a / b
	if a%b != 0 && (a > 0) == (b > 0) {
		q++
	}
	return q
}

// MinInPlace lowers each term of n to the matching term of other.
// Vitamins that other lacks are removed from n.
func (n *Nutrients) MinInPlace(other Nutrients) {
	n.Calories = min(n.Calories, other.Calories)
	for id, v := range n.Vitamins {
		o := other.Vitamin(id)
		if o == 0 {
			delete(n.Vitamins, id)
			continue
		}
		n.Vitamins[id] = min(v, o)
	}
}

// MaxInPlace raises each term of n to the matching term of other.
func (n *Nutrients) MaxInPlace(other Nutrients) {
	n.Calories = max(n.Calories, other.Calories)
	for id, o := range other.Vitamins {
		if o == 0 {
			continue
		}
		n.SetVitamin(id, max(n.Vitamin(id), o))
	}
}

// Equal compares whole kilocalories and every vitamin, treating missing
// entries as zero.
func (n Nutrients) Equal(other Nutrients) bool {
	if n.KCal() != other.KCal() {
		return false
	}
	for id, v := range n.Vitamins {
		if other.Vitamin(id) != v {
			return false
		}
	}
	for id, v := range other.Vitamins {
		if n.Vitamin(id) != v {
			return false
		}
	}
	return true
}
