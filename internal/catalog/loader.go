package catalog

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/handiism/memefetch/internal/model"
)

// ErrEmpty is returned when a catalog document contains no entries.
var ErrEmpty = errors.New("catalog has no entries")

// Load returns the catalog at path, or the built-in catalog when path is empty.
func Load(path string) (*model.Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile reads and parses a YAML catalog file.
func LoadFile(path string) (*model.Catalog, error) {
	data, err := os.ReadFile(path) //nolint:gosec // catalog path is user supplied on purpose
	if err != nil {
		return nil, errors.Wrap(err, "read catalog")
	}
	c, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "parse catalog %s", path)
	}
	return c, nil
}

// Parse decodes a YAML catalog document, keeping entry order.
func Parse(data []byte) (*model.Catalog, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, ErrEmpty
	}

	root := doc.Content[0]
	var entries []model.Entry
	var err error
	switch {
	case root.Kind == yaml.MappingNode && isEntryList(root):
		var list struct {
			Entries []model.Entry `yaml:"entries"`
		}
		err = root.Decode(&list)
		entries = list.Entries
	case root.Kind == yaml.MappingNode:
		entries, err = decodePairs(root)
	default:
		return nil, errors.Errorf("line %d: expected a mapping", root.Line)
	}
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, ErrEmpty
	}
	return model.NewCatalog(entries)
}

// isEntryList reports whether the mapping is the {entries: [...]} form.
func isEntryList(n *yaml.Node) bool {
	return len(n.Content) == 2 &&
		n.Content[0].Value == "entries" &&
		n.Content[1].Kind == yaml.SequenceNode
}

func decodePairs(n *yaml.Node) ([]model.Entry, error) {
	entries := make([]model.Entry, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i], n.Content[i+1]
		if key.Kind != yaml.ScalarNode || val.Kind != yaml.ScalarNode {
			return nil, errors.Errorf("line %d: expected \"name: url\"", key.Line)
		}
		entries = append(entries, model.Entry{Name: key.Value, URL: val.Value})
	}
	return entries, nil
}
