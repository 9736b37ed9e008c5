// Package dice provides the randomness abstraction shared by the armor
// pipeline, item wear and digestion, plus the dice expressions scenarios and
// scripts use to roll damage.
package dice

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Source is the randomness provider for every roll in the simulator.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

var exprPattern = regexp.MustCompile(`^(\d*)d(\d+)(?:([+-])(\d+))?$`)

// Expr is a parsed dice expression of the form [N]dS[+M|-M].
//
// Invariant: Count >= 1 and Sides >= 2.
type Expr struct {
	Raw      string
	Count    int
	Sides    int
	Modifier int
}

// ParseExpr parses s, ignoring case and blanks. "d20", "3d4" and "2d6-1"
// are accepted; a count of zero and one-sided dice are not.
//
// Postcondition: Returns a valid Expr or an error quoting s.
func ParseExpr(s string) (Expr, error) {
	norm := strings.ToLower(strings.Join(strings.Fields(s), ""))
	m := exprPattern.FindStringSubmatch(norm)
	if m == nil {
		return Expr{}, fmt.Errorf("dice: malformed expression %q", s)
	}
	e := Expr{Raw: s, Count: 1}
	var err error
	if m[1] != "" {
		if e.Count, err = strconv.Atoi(m[1]); err != nil || e.Count < 1 {
			return Expr{}, fmt.Errorf("dice: die count in %q must be >= 1", s)
		}
	}
	if e.Sides, err = strconv.Atoi(m[2]); err != nil || e.Sides < 2 {
		return Expr{}, fmt.Errorf("dice: die sides in %q must be >= 2", s)
	}
	if m[4] != "" {
		if e.Modifier, err = strconv.Atoi(m[4]); err != nil {
			return Expr{}, fmt.Errorf("dice: modifier in %q: %w", s, err)
		}
		if m[3] == "-" {
			e.Modifier = -e.Modifier
		}
	}
	return e, nil
}

// Min is the lowest total e can roll.
func (e Expr) Min() int { return e.Count + e.Modifier }

// Max is the highest total e can roll.
func (e Expr) Max() int { return e.Count*e.Sides + e.Modifier }

// Roll throws every die of e against src.
//
// Precondition: src must be non-nil.
// Postcondition: Min() <= result.Total() <= Max().
func (e Expr) Roll(src Source) RollResult {
	res := RollResult{Expression: e.Raw, Dice: make([]int, e.Count), Modifier: e.Modifier}
	for i := range res.Dice {
		res.Dice[i] = src.Intn(e.Sides) + 1
	}
	return res
}

// RollResult is one evaluated expression with its individual dice.
type RollResult struct {
	Expression string
	Dice       []int
	Modifier   int
}

// Total is the sum of the dice plus the modifier.
func (r RollResult) Total() int {
	total := r.Modifier
	for _, d := range r.Dice {
		total += d
	}
	return total
}

// String renders the roll for logs, e.g. "2d6+3: [4 5] +3 = 12".
func (r RollResult) String() string {
	return fmt.Sprintf("%s: %v %+d = %d", r.Expression, r.Dice, r.Modifier, r.Total())
}
