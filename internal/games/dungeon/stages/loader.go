package stages

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vovakirdan/tui-dungeon/internal/games/dungeon/stages/formats"
)

//go:embed defaults/*.yaml
var defaultStagesFS embed.FS

// Catalog resolves stage ids to stage data. The embedded campaign is
// always available; an optional directory overrides or extends it
// (a directory stage with the same id wins).
type Catalog struct {
	Dir string
}

// NewCatalog creates a catalog backed by the embedded campaign plus an
// optional stage directory. An empty dir means embedded stages only.
func NewCatalog(dir string) *Catalog {
	return &Catalog{Dir: dir}
}

// LoadAll loads every stage the catalog can see, sorted by ID for
// deterministic ordering. Unparsable files are skipped; ValidateCatalog
// surfaces per-stage problems.
func (c *Catalog) LoadAll() ([]Stage, error) {
	byID := make(map[string]Stage)

	if err := c.loadEmbedded(byID); err != nil {
		return nil, err
	}
	if c.Dir != "" {
		if err := c.loadDir(byID); err != nil {
			return nil, err
		}
	}

	all := make([]Stage, 0, len(byID))
	for _, s := range byID {
		all = append(all, s)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].ID < all[j].ID
	})
	return all, nil
}

// loadEmbedded loads the shipped campaign stages.
func (c *Catalog) loadEmbedded(byID map[string]Stage) error {
	return fs.WalkDir(defaultStagesFS, "defaults", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		data, err := defaultStagesFS.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading embedded stage %s: %w", path, err)
		}
		stage, err := parseStage(data, path)
		if err != nil {
			// Skip invalid files
			return nil
		}
		byID[stage.ID] = stage
		return nil
	})
}

// loadDir loads stages from the override directory.
func (c *Catalog) loadDir(byID map[string]Stage) error {
	err := filepath.WalkDir(c.Dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if !isSupportedExtension(ext) {
			return nil
		}
		stage, err := c.LoadFile(path)
		if err != nil {
			// Skip invalid files
			return nil
		}
		byID[stage.ID] = stage
		return nil
	})
	if err != nil {
		return fmt.Errorf("walking directory %s: %w", c.Dir, err)
	}
	return nil
}

// LoadFile loads a single stage file from disk.
func (c *Catalog) LoadFile(path string) (Stage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Stage{}, fmt.Errorf("reading file %s: %w", path, err)
	}
	return parseStage(data, path)
}

// parseStage routes to the correct parser and decodes the result.
func parseStage(data []byte, path string) (Stage, error) {
	ext := strings.ToLower(filepath.Ext(path))
	var raw formats.Stage
	var err error
	switch ext {
	case ".yaml", ".yml":
		raw, err = formats.ParseYAML(data)
	case ".json":
		raw, err = formats.ParseJSON(data)
	default:
		return Stage{}, fmt.Errorf("unsupported extension: %s", ext)
	}
	if err != nil {
		return Stage{}, fmt.Errorf("parsing file %s: %w", path, err)
	}
	return FromRaw(raw, path)
}

// LoadByID loads a specific stage by ID.
func (c *Catalog) LoadByID(id string) (Stage, error) {
	all, err := c.LoadAll()
	if err != nil {
		return Stage{}, err
	}
	for _, s := range all {
		if s.ID == id {
			return s, nil
		}
	}
	return Stage{}, fmt.Errorf("stage not found: %s", id)
}

// ListIDs returns all stage IDs in sorted order.
func (c *Catalog) ListIDs() ([]string, error) {
	all, err := c.LoadAll()
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(all))
	for i, s := range all {
		ids[i] = s.ID
	}
	return ids, nil
}

// Exists reports whether a stage with the given id is resolvable.
func (c *Catalog) Exists(id string) bool {
	_, err := c.LoadByID(id)
	return err == nil
}

// isSupportedExtension checks if extension is supported.
func isSupportedExtension(ext string) bool {
	for _, supported := range formats.FormatExtensions() {
		if ext == supported {
			return true
		}
	}
	return false
}
