package dice

import "go.uber.org/zap"

// Roller wraps a Source and logger to provide logged dice rolling.
// Expression rolls are logged at debug level with their dice and total.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedRoller creates a Roller that rolls with src and logs each roll to logger.
//
// Precondition: src and logger must be non-nil.
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	return &Roller{src: src, logger: logger}
}

// Roll throws expr and logs the dice at debug level.
func (r *Roller) Roll(expr Expr) RollResult {
	result := expr.Roll(r.src)
	r.logger.Debug("dice roll",
		zap.String("expression", result.Expression),
		zap.Ints("dice", result.Dice),
		zap.Int("modifier", result.Modifier),
		zap.Int("total", result.Total()),
	)
	return result
}

// RollExpr parses expr and rolls it, logging the result.
//
// Postcondition: Returns a RollResult or the parse error.
func (r *Roller) RollExpr(expr string) (RollResult, error) {
	e, err := ParseExpr(expr)
	if err != nil {
		return RollResult{}, err
	}
	return r.Roll(e), nil
}

// Source returns the Source backing r so callers can pass it to the
// chance helpers without losing the shared stream.
func (r *Roller) Source() Source { return r.src }

// Intn satisfies Source by delegating to the wrapped source.
//
// Precondition: n > 0.
func (r *Roller) Intn(n int) int { return r.src.Intn(n) }

// Percent rolls [0, 100) and logs the roll with label.
//
// Postcondition: result in [0, 100).
func (r *Roller) Percent(label string) int {
	v := r.src.Intn(100)
	r.logger.Debug("percent roll", zap.String("label", label), zap.Int("roll", v))
	return v
}
