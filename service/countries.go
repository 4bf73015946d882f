package service

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"guildkeeper/models"
)

//go:embed data/countries.json
var defaultCountries []byte

// Countries maps a continent key to its trivia questions
type Countries map[string][]models.Country

// LoadCountries reads a country dataset; an empty path loads the built-in one
func LoadCountries(path string) (Countries, error) {
	data := defaultCountries
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read countries file: %w", err)
		}
	}
	return ParseCountries(data)
}

// ParseCountries decodes a dataset of the form {"continent": [{country, capital, flag}]}
func ParseCountries(data []byte) (Countries, error) {
	var raw map[string][]models.Country
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode countries: %w", err)
	}

	countries := make(Countries, len(raw))
	for continent, list := range raw {
		if len(list) == 0 {
			continue
		}
		countries[continentKey(continent)] = list
	}
	if len(countries) == 0 {
		return nil, fmt.Errorf("countries dataset is empty")
	}
	return countries, nil
}

// continentKey normalises "North America", "north_america" and "north-america" alike
func continentKey(name string) string {
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(strings.ToLower(strings.TrimSpace(name)))
}

// Lookup resolves a user-typed continent to its key
func (c Countries) Lookup(name string) (string, bool) {
	key := continentKey(name)
	_, ok := c[key]
	return key, ok
}

// Continents returns the continent keys in alphabetical order
func (c Countries) Continents() []string {
	keys := make([]string, 0, len(c))
	for key := range c {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
