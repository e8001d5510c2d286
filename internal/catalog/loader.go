package catalog

import (
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var defaultContent embed.FS

// Default loads the catalog content embedded in the binary.
func Default() (*Catalog, error) {
	sub, err := fs.Sub(defaultContent, "data")
	if err != nil {
		return nil, err
	}
	return loadFS(sub)
}

// LoadDir loads catalog content from an on-disk directory, allowing content
// overrides without rebuilding.
func LoadDir(dir string) (*Catalog, error) {
	return loadFS(os.DirFS(dir))
}

func loadFS(fsys fs.FS) (*Catalog, error) {
	cat := &Catalog{}

	var facilityFile struct {
		Facilities []Facility `yaml:"facilities"`
	}
	if err := decodeFile(fsys, "facilities.yaml", &facilityFile); err != nil {
		return nil, err
	}
	cat.Facilities = facilityFile.Facilities

	var speciesFile struct {
		Species []Species `yaml:"species"`
	}
	if err := decodeFile(fsys, "species.yaml", &speciesFile); err != nil {
		return nil, err
	}
	cat.Species = speciesFile.Species

	var researchFile struct {
		Nodes []ResearchNode `yaml:"nodes"`
	}
	if err := decodeFile(fsys, "research.yaml", &researchFile); err != nil {
		return nil, err
	}
	cat.Research = researchFile.Nodes

	var scenarioFile struct {
		Scenarios []Scenario `yaml:"scenarios"`
	}
	if err := decodeFile(fsys, "scenarios.yaml", &scenarioFile); err != nil {
		return nil, err
	}
	cat.Scenarios = scenarioFile.Scenarios

	var eventFile struct {
		Events []Event `yaml:"events"`
	}
	if err := decodeFile(fsys, "events.yaml", &eventFile); err != nil {
		return nil, err
	}
	cat.Events = eventFile.Events

	var achievementFile struct {
		Achievements []Achievement `yaml:"achievements"`
	}
	if err := decodeFile(fsys, "achievements.yaml", &achievementFile); err != nil {
		return nil, err
	}
	cat.Achievements = achievementFile.Achievements

	if err := cat.Validate(); err != nil {
		return nil, fmt.Errorf("catalog validation: %w", err)
	}
	cat.BuildIndexes()

	slog.Info("catalog loaded",
		"facilities", len(cat.Facilities),
		"species", len(cat.Species),
		"research_nodes", len(cat.Research),
		"scenarios", len(cat.Scenarios),
		"events", len(cat.Events),
		"achievements", len(cat.Achievements),
	)
	return cat, nil
}

func decodeFile(fsys fs.FS, name string, out any) error {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}
