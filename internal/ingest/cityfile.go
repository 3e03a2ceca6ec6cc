package ingest

import (
	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// CityFile is a YAML city definition: the municipality itself plus the
// facility layers it publishes.
type CityFile struct {
	City struct {
		Slug   string    `yaml:"slug"`
		Name   string    `yaml:"name"`
		State  string    `yaml:"state"`
		Center []float64 `yaml:"center"` // [lat, lng]
		Zoom   int       `yaml:"zoom"`
	} `yaml:"city"`
	Theme struct {
		PrimaryColor string `yaml:"primary_color"`
	} `yaml:"theme"`
	Layers []CityFileLayer `yaml:"layers"`
}

// CityFileLayer is one layer entry in a city definition.
type CityFileLayer struct {
	Slug    string `yaml:"slug"`
	Name    string `yaml:"name"`
	Icon    string `yaml:"icon"`
	Color   string `yaml:"color"`
	Visible *bool  `yaml:"visible"`
}

// ParseCityFile parses and validates a YAML city definition.
func ParseCityFile(data []byte) (*CityFile, error) {
	var cf CityFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, eris.Wrap(err, "ingest: parse city file")
	}
	if cf.City.Slug == "" {
		return nil, eris.New("ingest: city file must set city.slug")
	}
	if len(cf.City.Center) != 0 && len(cf.City.Center) != 2 {
		return nil, eris.New("ingest: city.center must be [lat, lng]")
	}
	for _, l := range cf.Layers {
		if l.Slug == "" {
			return nil, eris.New("ingest: every layer needs a slug")
		}
	}
	return &cf, nil
}

// CenterLatLng returns the configured map center, defaulting to a neutral
// mid-latitude center when unset.
func (cf *CityFile) CenterLatLng() (lat, lng float64) {
	if len(cf.City.Center) == 2 {
		return cf.City.Center[0], cf.City.Center[1]
	}
	return 49.4875, 8.4660
}
