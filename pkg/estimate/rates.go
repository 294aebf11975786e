package estimate

import (
	"maps"
	"math"
	"slices"
	"strings"

	"github.com/matzehuels/costgraph/pkg/errors"
	"github.com/matzehuels/costgraph/pkg/graph"
)

// Discipline is the kind of work a classification prices.
type Discipline string

const (
	Design Discipline = "Design"
	Coding Discipline = "Coding"
)

// WorkKey identifies one rate table entry, e.g. "Design-simple".
type WorkKey string

// The six fixed rate keys, in table order.
const (
	DesignSimple  WorkKey = "Design-simple"
	DesignMedium  WorkKey = "Design-medium"
	DesignComplex WorkKey = "Design-complex"
	CodingSimple  WorkKey = "Coding-simple"
	CodingMedium  WorkKey = "Coding-medium"
	CodingComplex WorkKey = "Coding-complex"
)

// Keys lists every rate key in the order summary rows are produced.
var Keys = []WorkKey{DesignSimple, DesignMedium, DesignComplex, CodingSimple, CodingMedium, CodingComplex}

var defaults = map[WorkKey]float64{
	DesignSimple:  100,
	DesignMedium:  200,
	DesignComplex: 300,
	CodingSimple:  150,
	CodingMedium:  250,
	CodingComplex: 350,
}

// KeyFor returns the rate key for a discipline and difficulty.
func KeyFor(d Discipline, diff graph.Difficulty) WorkKey {
	return WorkKey(string(d) + "-" + string(diff))
}

// Valid reports whether k is one of the six fixed keys.
func (k WorkKey) Valid() bool {
	_, ok := defaults[k]
	return ok
}

// ParseKey accepts a rate key case-insensitively ("design-simple" works).
func ParseKey(s string) (WorkKey, error) {
	for _, k := range Keys {
		if strings.EqualFold(string(k), s) {
			return k, nil
		}
	}
	return "", errors.New(errors.ErrCodeInvalidRateKey, "unknown rate key %q", s)
}

// DefaultRate returns the built-in rate for k, or 0 for unknown keys.
func DefaultRate(k WorkKey) float64 { return defaults[k] }

// Rates maps work keys to a price per unit of work.
// A nil or partial Rates is valid: missing keys resolve to the defaults.
type Rates map[WorkKey]float64

// DefaultRates returns a fresh table holding the built-in rates.
func DefaultRates() Rates {
	return maps.Clone(Rates(defaults))
}

// Rate returns the rate for k, falling back to the default when absent.
func (r Rates) Rate(k WorkKey) float64 {
	if v, ok := r[k]; ok {
		return v
	}
	return defaults[k]
}

// ValidRate reports whether v can be used as a rate: finite and not
// negative.
func ValidRate(v float64) bool {
	return v >= 0 && !math.IsInf(v, 1)
}

// Set assigns a rate. Unknown keys and values rejected by [ValidRate] are
// errors.
func (r Rates) Set(k WorkKey, v float64) error {
	if !k.Valid() {
		return errors.New(errors.ErrCodeInvalidRateKey, "unknown rate key %q", k)
	}
	if !ValidRate(v) {
		return errors.New(errors.ErrCodeInvalidInput, "rate %s must be a finite, non-negative number: %v", k, v)
	}
	r[k] = v
	return nil
}

// Clone returns a copy of r with every key present.
func (r Rates) Clone() Rates {
	out := make(Rates, len(Keys))
	for _, k := range Keys {
		out[k] = r.Rate(k)
	}
	return out
}

// Missing returns the fixed keys absent from r, in table order.
func (r Rates) Missing() []WorkKey {
	return slices.DeleteFunc(slices.Clone(Keys), func(k WorkKey) bool {
		_, ok := r[k]
		return ok
	})
}
