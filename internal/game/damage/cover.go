package damage

// Cover selects which coverage figure of an armor portion applies to a hit.
type Cover int

const (
	// CoverDefault uses the portion's general coverage.
	CoverDefault Cover = iota
	// CoverMelee uses the melee coverage when declared.
	CoverMelee
	// CoverRanged uses the ranged coverage when declared.
	CoverRanged
)

var coverNames = map[string]Cover{
	"":       CoverDefault,
	"melee":  CoverMelee,
	"ranged": CoverRanged,
}

// String returns the cover label.
func (c Cover) String() string {
	switch c {
	case CoverMelee:
		return "melee"
	case CoverRanged:
		return "ranged"
	default:
		return "default"
	}
}
