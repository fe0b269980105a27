package catalog

import (
	"errors"
	"fmt"
	"os"

	"github.com/Bekzat04/sportsfest-system/models"
	"gopkg.in/yaml.v3"
)

var ErrSportNotFound = errors.New("sport not found in catalog")

// SportCatalog supplies the sport definitions for one fest edition.
// It is loaded once at startup and read-only afterwards.
type SportCatalog interface {
	EventYear() int
	Get(name string) (*models.Sport, error)
	List() []models.Sport
}

type fileCatalog struct {
	eventYear int
	sports    map[string]models.Sport
	order     []string
}

type catalogFile struct {
	EventYear int            `yaml:"event_year"`
	Sports    []models.Sport `yaml:"sports"`
}

// LoadFile reads the sport catalog from a YAML file.
func LoadFile(path string) (SportCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sport catalog %s: %w", path, err)
	}
	return Parse(data)
}

// Parse builds a catalog from raw YAML.
func Parse(data []byte) (SportCatalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse sport catalog: %w", err)
	}
	if file.EventYear <= 0 {
		return nil, errors.New("sport catalog: event_year is required")
	}
	if len(file.Sports) == 0 {
		return nil, errors.New("sport catalog: at least one sport is required")
	}

	c := &fileCatalog{
		eventYear: file.EventYear,
		sports:    make(map[string]models.Sport, len(file.Sports)),
	}
	for _, s := range file.Sports {
		if s.Name == "" {
			return nil, errors.New("sport catalog: sport with empty name")
		}
		if err := validateType(s); err != nil {
			return nil, err
		}
		if _, exists := c.sports[s.Name]; exists {
			return nil, fmt.Errorf("sport catalog: duplicate sport %q", s.Name)
		}
		c.sports[s.Name] = s
		c.order = append(c.order, s.Name)
	}
	return c, nil
}

func validateType(s models.Sport) error {
	switch s.Type {
	case models.SportDualTeam, models.SportMultiTeam:
		if s.TeamSize < 2 {
			return fmt.Errorf("sport catalog: %q needs team_size >= 2, got %d", s.Name, s.TeamSize)
		}
	case models.SportDualPlayer, models.SportMultiPlayer, models.SportIndividual, models.SportCultural:
		if s.TeamSize != 0 {
			return fmt.Errorf("sport catalog: %q is not a team sport but has team_size %d", s.Name, s.TeamSize)
		}
	default:
		return fmt.Errorf("sport catalog: %q has unknown type %q", s.Name, s.Type)
	}
	return nil
}

func (c *fileCatalog) EventYear() int {
	return c.eventYear
}

func (c *fileCatalog) Get(name string) (*models.Sport, error) {
	s, ok := c.sports[name]
	if !ok {
		return nil, ErrSportNotFound
	}
	return &s, nil
}

func (c *fileCatalog) List() []models.Sport {
	out := make([]models.Sport, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.sports[name])
	}
	return out
}
