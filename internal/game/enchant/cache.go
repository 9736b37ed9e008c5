package enchant

import "go.uber.org/zap"

// Evaluator decides whether a conditional enchantment is active for a character.
// *scripting.Manager satisfies it.
type Evaluator interface {
	EvalCondition(scope, hook, characterID string) bool
}

// Cache is the summed effect of every active enchantment on one character.
// The zero value is an empty cache.
type Cache struct {
	add    map[Mod]float64
	mult   map[Mod]float64
	active []string
}

// NewCache creates an empty Cache.
func NewCache() *Cache {
	return &Cache{}
}

// Include adds every value of def to the cache.
func (c *Cache) Include(def *Def) {
	if c.add == nil {
		c.add = make(map[Mod]float64)
		c.mult = make(map[Mod]float64)
	}
	for _, v := range def.Values {
		c.add[v.Mod] += v.Add
		c.mult[v.Mod] += v.Multiply
	}
	c.active = append(c.active, def.ID)
}

// Clear removes every included enchantment.
func (c *Cache) Clear() {
	c.add = nil
	c.mult = nil
	c.active = nil
}

// Rebuild clears the cache and includes each def whose condition holds for
// characterID. Defs without a condition are always included. A nil eval
// treats every conditional def as inactive.
//
// Postcondition: Active() lists the included def ids in input order.
func (c *Cache) Rebuild(characterID string, defs []*Def, eval Evaluator, logger *zap.Logger) {
	c.Clear()
	for _, def := range defs {
		if def.Condition != "" {
			if eval == nil || !eval.EvalCondition(ConditionScope, def.Condition, characterID) {
				logger.Debug("enchantment inactive",
					zap.String("character", characterID),
					zap.String("enchantment", def.ID),
				)
				continue
			}
		}
		c.Include(def)
	}
}

// Active returns the ids of the included enchantments.
func (c *Cache) Active() []string {
	out := make([]string, len(c.active))
	copy(out, c.active)
	return out
}

// ValueAdd returns the summed flat adjustment for mod.
func (c *Cache) ValueAdd(mod Mod) float64 { return c.add[mod] }

// ValueMultiply returns the summed multiplier adjustment for mod.
func (c *Cache) ValueMultiply(mod Mod) float64 { return c.mult[mod] }

// ModifyValue returns (base + add) * (1 + multiply) for mod.
func (c *Cache) ModifyValue(mod Mod, base float64) float64 {
	return (base + c.add[mod]) * (1 + c.mult[mod])
}

// CalculateByEnchantment applies the mod named by mod to value.
// An empty name leaves value unchanged.
func (c *Cache) CalculateByEnchantment(value float64, mod string) float64 {
	if mod == "" {
		return value
	}
	return c.ModifyValue(Mod(mod), value)
}
