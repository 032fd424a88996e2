package curriculum

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// ManifestFile is the name of the manifest inside a curriculum directory.
const ManifestFile = "curriculum.toml"

// Definition is the raw, unvalidated content of a curriculum directory.
type Definition struct {
	Dir      string
	Manifest Manifest
	Files    []Item // items parsed from *.md files, in file name order
}

// Load reads a curriculum directory and builds the immutable Curriculum.
func Load(dir string) (*Curriculum, error) {
	def, err := ReadDir(dir)
	if err != nil {
		return nil, err
	}
	return def.Build()
}

// ReadDir parses curriculum.toml and all *.md item files in dir.
func ReadDir(dir string) (*Definition, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoManifest
		}
		return nil, fmt.Errorf("reading %s: %w", ManifestFile, err)
	}

	var manifest Manifest
	if err := toml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", ManifestFile, err)
	}
	for si := range manifest.Stages {
		for ii := range manifest.Stages[si].Items {
			manifest.Stages[si].Items[ii].SourceFile = ManifestFile
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading curriculum directory: %w", err)
	}

	var files []Item
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		item, err := parseItemFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", e.Name(), err)
		}
		item.SourceFile = e.Name()
		files = append(files, item)
	}

	return &Definition{Dir: dir, Manifest: manifest, Files: files}, nil
}

// Stages places inline and file items into their stages. Inline items keep
// manifest order; file items follow, sorted by (order, id).
func (d *Definition) Stages() ([]Stage, error) {
	stages := make([]Stage, len(d.Manifest.Stages))
	byID := make(map[string]int, len(stages))
	for i, s := range d.Manifest.Stages {
		stages[i] = Stage{ID: s.ID, Title: s.Title, Items: append([]Item(nil), s.Items...)}
		byID[s.ID] = i
	}

	files := append([]Item(nil), d.Files...)
	sort.SliceStable(files, func(i, j int) bool {
		if files[i].Order != files[j].Order {
			return files[i].Order < files[j].Order
		}
		return files[i].ID < files[j].ID
	})
	for _, it := range files {
		si, ok := byID[it.Stage]
		if !ok {
			return nil, fmt.Errorf("%s: %w: %q", it.SourceFile, ErrUnknownStage, it.Stage)
		}
		stages[si].Items = append(stages[si].Items, it)
	}
	return stages, nil
}

// Build assembles the definition into an immutable Curriculum.
func (d *Definition) Build() (*Curriculum, error) {
	stages, err := d.Stages()
	if err != nil {
		return nil, err
	}
	info := d.Manifest.Curriculum
	return New(stages,
		WithName(info.Name),
		WithDefaultEstimate(info.DefaultEstimate),
		WithBlockerRules(d.Manifest.Blockers),
	)
}

// parseItemFile reads a markdown file with +++ TOML frontmatter. The body
// becomes the item's purpose when the frontmatter does not set one.
func parseItemFile(path string) (Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Item{}, err
	}

	frontmatter, body, err := splitFrontmatter(string(data))
	if err != nil {
		return Item{}, err
	}

	var item Item
	if err := toml.Unmarshal([]byte(frontmatter), &item); err != nil {
		return Item{}, fmt.Errorf("parsing TOML frontmatter: %w", err)
	}
	if item.Purpose == "" {
		item.Purpose = strings.TrimSpace(body)
	}
	return item, nil
}

// splitFrontmatter splits content on +++ delimiters.
// Expected format:
//
//	+++
//	<TOML>
//	+++
//	<body>
func splitFrontmatter(content string) (string, string, error) {
	const delim = "+++"

	content = strings.TrimLeft(content, " \t\r\n")
	if !strings.HasPrefix(content, delim) {
		return "", "", fmt.Errorf("file does not start with +++ frontmatter delimiter")
	}

	rest := content[len(delim):]
	idx := strings.Index(rest, delim)
	if idx < 0 {
		return "", "", fmt.Errorf("missing closing +++ frontmatter delimiter")
	}
	return rest[:idx], rest[idx+len(delim):], nil
}
