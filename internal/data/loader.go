package data

import (
	"embed"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/suderio/warband/internal/engine"
)

//go:embed defaults
var defaults embed.FS

// Loader handles reading unit types and squads from the data directories,
// falling back to the embedded defaults.
type Loader struct {
	dataDirs []string
	types    map[string]*engine.UnitType
}

// NewLoader initializes a new Data Loader with the given data directory fallback hierarchy
func NewLoader(dataDirs []string) *Loader {
	return &Loader{
		dataDirs: dataDirs,
		types:    make(map[string]*engine.UnitType),
	}
}

func refName(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "-")
}

// LoadUnitType reads and validates a unit type. Types are cached so that
// every unit of a type shares one template.
func (l *Loader) LoadUnitType(id string) (*engine.UnitType, error) {
	id = refName(id)
	if t, ok := l.types[id]; ok {
		return t, nil
	}
	var t engine.UnitType
	if err := l.load(path.Join("units", id+".yaml"), &t); err != nil {
		return nil, err
	}
	if t.ID == "" {
		t.ID = id
	}
	if t.Name == "" {
		t.Name = t.ID
	}
	if t.AttackCount == 0 {
		t.AttackCount = 1
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	l.types[id] = &t
	return &t, nil
}

// LoadSquad reads and validates a squad, checking that its unit types exist.
func (l *Loader) LoadSquad(name string) (*Squad, error) {
	id := refName(name)
	var s Squad
	if err := l.load(path.Join("squads", id+".yaml"), &s); err != nil {
		return nil, err
	}
	if s.ID == "" {
		s.ID = id
	}
	if s.Name == "" {
		s.Name = s.ID
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	for _, m := range s.Members {
		if _, err := l.LoadUnitType(m.Type); err != nil {
			return nil, fmt.Errorf("squad %s: %w", s.ID, err)
		}
	}
	return &s, nil
}

// ListSquads returns the ids of every squad available, sorted.
func (l *Loader) ListSquads() ([]string, error) {
	seen := make(map[string]bool)
	collect := func(names []string) {
		for _, n := range names {
			if strings.HasSuffix(n, ".yaml") {
				seen[strings.TrimSuffix(n, ".yaml")] = true
			}
		}
	}
	for _, dir := range l.dataDirs {
		entries, err := os.ReadDir(filepath.Join(dir, "squads"))
		if err != nil {
			continue
		}
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		collect(names)
	}
	entries, err := fs.ReadDir(defaults, "defaults/squads")
	if err != nil {
		return nil, fmt.Errorf("failed to list embedded squads: %w", err)
	}
	for _, e := range entries {
		collect([]string{e.Name()})
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (l *Loader) load(ref string, target any) error {
	for _, dir := range l.dataDirs {
		f, err := os.Open(filepath.Join(dir, filepath.FromSlash(ref)))
		if err == nil {
			defer f.Close()
			return decode(ref, f, target)
		}
	}
	f, err := defaults.Open(path.Join("defaults", ref))
	if err != nil {
		return fmt.Errorf("could not find or open reference %s in any available data directory", ref)
	}
	defer f.Close()
	return decode(ref, f, target)
}

func decode(ref string, r io.Reader, target any) error {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(target); err != nil {
		return fmt.Errorf("failed to decode yaml reference %s: %w", ref, err)
	}
	return nil
}
