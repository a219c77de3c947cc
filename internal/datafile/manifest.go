// ABOUTME: YAML dataset manifest mapping tool-visible names to data files
// ABOUTME: Built-in defaults via go:embed, overridable by datasets.yaml in the data dir

package datafile

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed datasets.yaml
var defaultManifest []byte

// Dataset describes one flat data table.
type Dataset struct {
	File        string `yaml:"file"`
	Description string `yaml:"description,omitempty"`
	RefreshURL  string `yaml:"refresh_url,omitempty"`
}

// Manifest maps dataset names to their table descriptions.
type Manifest struct {
	Datasets map[string]Dataset `yaml:"datasets"`
}

// LoadManifest returns the built-in manifest, with entries overridden by a
// datasets.yaml in dir when one exists.
func LoadManifest(dir string) (*Manifest, error) {
	m, err := parseManifest(defaultManifest)
	if err != nil {
		return nil, fmt.Errorf("parsing built-in manifest: %w", err)
	}

	override := filepath.Join(dir, "datasets.yaml")
	data, err := os.ReadFile(override)
	if os.IsNotExist(err) {
		return m, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", override, err)
	}

	o, err := parseManifest(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", override, err)
	}
	for name, ds := range o.Datasets {
		m.Datasets[name] = ds
	}
	return m, nil
}

func parseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	if m.Datasets == nil {
		m.Datasets = make(map[string]Dataset)
	}
	for name, ds := range m.Datasets {
		if ds.File == "" {
			return nil, fmt.Errorf("dataset %q has no file", name)
		}
	}
	return &m, nil
}

// Dataset looks up a dataset by name.
func (m *Manifest) Dataset(name string) (Dataset, bool) {
	ds, ok := m.Datasets[name]
	return ds, ok
}

// Names returns all dataset names in sorted order.
func (m *Manifest) Names() []string {
	names := make([]string, 0, len(m.Datasets))
	for name := range m.Datasets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
