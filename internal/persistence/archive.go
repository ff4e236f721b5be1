package persistence

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const journalExt = ".jsonl"

// Archive keeps named battle journals in one directory.
type Archive struct {
	Dir string
}

// NewArchive returns an archive rooted at dir.
func NewArchive(dir string) *Archive {
	return &Archive{Dir: dir}
}

// Path is the journal file of a named battle.
func (a *Archive) Path(name string) string {
	return filepath.Join(a.Dir, name+journalExt)
}

// Create starts a fresh journal, truncating any previous battle of the
// same name.
func (a *Archive) Create(name string) (*Store, error) {
	if err := os.MkdirAll(a.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", a.Dir, err)
	}
	path := a.Path(name)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to reset journal %s: %w", path, err)
	}
	return NewStore(path)
}

// Resolve maps a battle name or a journal path to a file path.
func (a *Archive) Resolve(ref string) (string, error) {
	if strings.HasSuffix(ref, journalExt) {
		return ref, nil
	}
	path := a.Path(ref)
	if stat, err := os.Stat(path); err != nil || stat.IsDir() {
		return "", fmt.Errorf("battle journal not found: %s", path)
	}
	return path, nil
}

// List returns the names of the archived battles, sorted.
func (a *Archive) List() ([]string, error) {
	entries, err := os.ReadDir(a.Dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), journalExt) {
			names = append(names, strings.TrimSuffix(e.Name(), journalExt))
		}
	}
	sort.Strings(names)
	return names, nil
}
