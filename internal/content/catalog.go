// Package content holds the institution's editorial texts and reference data
// (mission, vision, city time zones). The same catalog feeds the rendered
// pages and the chat assistant so both always say the same thing.
package content

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	yaml "gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var embeddedCatalog []byte

// Institution identifies the organization on every page.
type Institution struct {
	Name      string `yaml:"name"`
	ShortName string `yaml:"short_name"`
	Tagline   string `yaml:"tagline"`
}

// City maps user-typed keywords to an IANA time zone.
type City struct {
	Name     string   `yaml:"name"`
	Zone     string   `yaml:"zone"`
	Keywords []string `yaml:"keywords"`
}

// Catalog is the parsed content file.
type Catalog struct {
	Institution Institution `yaml:"institution"`
	Mission     string      `yaml:"mission"`
	Vision      string      `yaml:"vision"`
	Cities      []City      `yaml:"cities"`
}

var (
	defaultCatalog *Catalog
	defaultErr     error
	defaultOnce    sync.Once
)

// Default returns the embedded catalog, parsed once.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = Parse(embeddedCatalog)
	})
	return defaultCatalog, defaultErr
}

// MustDefault is Default for program start-up; it panics on a broken embed.
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}

// Parse decodes and validates a catalog document.
func Parse(data []byte) (*Catalog, error) {
	if len(data) == 0 {
		return nil, errors.New("content catalog is empty")
	}
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse content catalog: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) validate() error {
	var errs []error
	if strings.TrimSpace(c.Institution.Name) == "" {
		errs = append(errs, errors.New("institution.name is required"))
	}
	if strings.TrimSpace(c.Mission) == "" {
		errs = append(errs, errors.New("mission is required"))
	}
	if strings.TrimSpace(c.Vision) == "" {
		errs = append(errs, errors.New("vision is required"))
	}
	for i, city := range c.Cities {
		if city.Name == "" || city.Zone == "" || len(city.Keywords) == 0 {
			errs = append(errs, fmt.Errorf("cities[%d]: name, zone and keywords are required", i))
		}
	}
	return errors.Join(errs...)
}
