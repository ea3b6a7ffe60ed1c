package body

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	rng "stellarator/pkg/core"
)

// HomeName is reserved for the home body and never generated.
const HomeName = "Kerbin"

// Names holds the syllable lists names are assembled from.
type Names struct {
	Prefix []string `json:"prefix"`
	Middle []string `json:"middle"`
	Suffix []string `json:"suffix"`
}

// LoadNames reads a names.json file.
func LoadNames(path string) (*Names, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var n Names
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if len(n.Prefix) == 0 || len(n.Suffix) == 0 {
		return nil, errors.New("names need at least one prefix and one suffix")
	}
	return &n, nil
}

// Generate assembles a name: a prefix, a middle part half of the time, and a
// suffix half of the time or always when no middle part was added.
func (n *Names) Generate(r rng.Random) string {
	for {
		name := n.Prefix[r.IntN(len(n.Prefix))]
		hasMiddle := false
		if rng.Chance(r, 50) && len(n.Middle) > 0 {
			name += n.Middle[r.IntN(len(n.Middle))]
			hasMiddle = true
		}
		if rng.Chance(r, 50) || !hasMiddle {
			name += n.Suffix[r.IntN(len(n.Suffix))]
		}
		if name != HomeName {
			return name
		}
	}
}
