package diag

// Level is a WCAG conformance level. The ordinal order (A < AA < AAA) is
// relied on for level-based severity defaulting.
type Level uint8

const (
	// LevelA is the minimum conformance level.
	LevelA Level = iota
	// LevelAA is the mid conformance level.
	LevelAA
	// LevelAAA is the strictest conformance level.
	LevelAAA
)

func (l Level) String() string {
	switch l {
	case LevelA:
		return "A"
	case LevelAA:
		return "AA"
	case LevelAAA:
		return "AAA"
	}
	return "?"
}
