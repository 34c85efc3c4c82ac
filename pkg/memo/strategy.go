package memo

import "fmt"

// Strategy selects how a memoized method decides whether the current
// arguments match the previous call. It is fixed per method at registration
// time.
type Strategy int

const (
	// StrategyReference compares arguments pairwise by identity or primitive
	// equality, without deep traversal. This is the default.
	StrategyReference Strategy = iota

	// StrategySerialized compares the canonical string encoding of the
	// argument list against the previous call's encoding.
	StrategySerialized
)

// String returns the configuration name of the strategy.
func (s Strategy) String() string {
	switch s {
	case StrategyReference:
		return "reference"
	case StrategySerialized:
		return "serialized"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// ParseStrategy converts a configuration value into a Strategy.
func ParseStrategy(name string) (Strategy, error) {
	switch name {
	case "reference":
		return StrategyReference, nil
	case "serialized":
		return StrategySerialized, nil
	default:
		return 0, fmt.Errorf("unknown strategy %q", name)
	}
}
