// Package intent applies deterministic keyword evidence on top of model intent
// predictions. The classifier and the LLM extractor both confuse ready-to-eat
// food orders with parcel/courier requests on short code-mixed messages; the
// rules in this package flip those obvious cases and leave everything
// ambiguous untouched for the downstream clarification flow.
package intent

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Rules holds the keyword evidence tables. The tables are immutable after
// load: they are read once at process start and shared by reference across
// requests.
//
// The making-food table is deliberately kept separate from the two override
// sets. "cooking ke liye" / "banana hai" phrasing signals a raw-ingredient
// (grocery) order rather than a ready-to-eat one, and that axis is ruled on
// its own rather than being folded into the food/parcel override.
type Rules struct {
	// FoodKeywords is the ready-to-eat evidence set: dish names,
	// restaurant words, meal-time words.
	FoodKeywords []string `yaml:"food_keywords"`

	// ParcelKeywords is the parcel/courier evidence set: package,
	// courier, and document words.
	ParcelKeywords []string `yaml:"parcel_keywords"`

	// MakingFoodPhrases mark "making food" phrasing that turns a
	// ready-to-eat prediction into a raw-ingredient (grocery) one.
	MakingFoodPhrases []string `yaml:"making_food_phrases"`
}

// DefaultRules returns the built-in rule tables. Deployments can override
// them with a YAML file via LoadRules.
func DefaultRules() Rules {
	return Rules{
		FoodKeywords: []string{
			// dishes and drinks
			"chai", "coffee", "biryani", "misal", "samosa", "vada pav",
			"pav bhaji", "dosa", "idli", "paneer", "thali", "pizza",
			"burger", "momos", "roll", "chicken", "dal", "rice", "roti",
			"naan", "bread", "lassi", "juice",
			// restaurant / ordering words
			"order", "hotel", "restaurant", "dhaba", "mess", "tiffin",
			// meal-time words
			"nashta", "breakfast", "lunch", "dinner", "khana", "bhookh",
		},
		ParcelKeywords: []string{
			"parcel", "courier", "package", "packet", "samaan", "saman",
			"documents", "document", "envelope", "lifafa", "box",
			"bhejna", "bhejo", "pickup", "drop", "deliver karna",
		},
		MakingFoodPhrases: []string{
			"banana hai", "banane ke liye", "cooking ke liye", "banau",
			"banaungi", "banaunga", "recipe", "pakana", "pakane ke liye",
		},
	}
}

// LoadRules reads rule tables from a YAML file. The file replaces the
// built-in tables wholesale; partial overrides are not merged.
func LoadRules(path string) (Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, fmt.Errorf("read rules file: %w", err)
	}

	var r Rules
	if err := yaml.Unmarshal(data, &r); err != nil {
		return Rules{}, fmt.Errorf("parse rules file %s: %w", path, err)
	}

	if err := r.Validate(); err != nil {
		return Rules{}, fmt.Errorf("invalid rules file %s: %w", path, err)
	}

	return r, nil
}

// Validate checks that the override sets are usable. The making-food table
// may be empty (the rule is then inert), but an empty override set would turn
// the disambiguator into a no-op silently, which is a config mistake.
func (r Rules) Validate() error {
	if len(r.FoodKeywords) == 0 {
		return fmt.Errorf("food_keywords cannot be empty")
	}
	if len(r.ParcelKeywords) == 0 {
		return fmt.Errorf("parcel_keywords cannot be empty")
	}
	return nil
}
