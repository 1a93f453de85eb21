package analysis

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"finfinance/internal/core"
)

type targetOverride struct {
	Ideal *float64 `toml:"ideal"`
	Max   *float64 `toml:"max"`
}

// LoadTargets reads budget target overrides from a TOML file keyed by
// category name:
//
//	[Food]
//	ideal = 12
//	max = 18
//
// A missing file yields no overrides. Keys that are left out keep the
// default value.
func LoadTargets(path string) (map[core.Category]core.BudgetTarget, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read budget targets: %w", err)
	}
	return ParseTargets(string(data))
}

// ParseTargets decodes TOML overrides and validates them.
func ParseTargets(doc string) (map[core.Category]core.BudgetTarget, error) {
	var raw map[string]targetOverride
	if _, err := toml.Decode(doc, &raw); err != nil {
		return nil, fmt.Errorf("%w: budget targets: %v", core.ErrInvalid, err)
	}
	defaults := core.DefaultTargets()
	out := make(map[core.Category]core.BudgetTarget, len(raw))
	for name, o := range raw {
		c, err := core.ParseCategory(name)
		if err != nil {
			return nil, err
		}
		t := defaults[c]
		if o.Ideal != nil {
			t.IdealPct = *o.Ideal
		}
		if o.Max != nil {
			t.MaxPct = *o.Max
		}
		if t.IdealPct < 0 || t.MaxPct < t.IdealPct {
			return nil, fmt.Errorf("%w: %s target needs 0 <= ideal <= max", core.ErrInvalid, c)
		}
		out[c] = t
	}
	return out, nil
}
