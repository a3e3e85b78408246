package layout

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
)

// Solution is the memory of a previous placement run: bounds keyed by word
// text. A word found in the solution is not searched for again.
type Solution map[string]Rect

// Texts returns the words of the solution in sorted order.
func (s Solution) Texts() []string {
	return slices.Sorted(maps.Keys(s))
}

// MarshalSolution serializes a Solution to JSON bytes.
func MarshalSolution(s Solution) ([]byte, error) {
	return json.Marshal(s)
}

// UnmarshalSolution deserializes JSON bytes into a Solution.
// Entries with empty bounds are dropped.
func UnmarshalSolution(data []byte) (Solution, error) {
	var s Solution
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("unmarshal solution: %w", err)
	}
	for k, r := range s {
		if r.Empty() {
			delete(s, k)
		}
	}
	return s, nil
}
