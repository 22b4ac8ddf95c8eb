package model

import (
	"strings"

	"github.com/pkg/errors"
)

// Entry is a single named remote asset in a Catalog.
//
// Name is used verbatim as the destination file name, so it must be a plain
// file name: no path separators and never "." or "..".
type Entry struct {
	// Name is the local file name the asset is saved under.
	Name string `yaml:"name" json:"name"`

	// URL is the HTTP(S) location the asset is fetched from.
	URL string `yaml:"url" json:"url"`
}

// Validate reports whether the entry can be materialized as a flat file.
func (e Entry) Validate() error {
	switch {
	case strings.TrimSpace(e.Name) == "":
		return errors.New("entry name is empty")
	case e.Name == "." || e.Name == "..":
		return errors.Errorf("entry name %q is not a file name", e.Name)
	case strings.ContainsAny(e.Name, `/\`) || strings.ContainsRune(e.Name, 0):
		return errors.Errorf("entry name %q must not contain path separators", e.Name)
	case strings.TrimSpace(e.URL) == "":
		return errors.Errorf("entry %q has no URL", e.Name)
	}
	return nil
}

// Catalog is an immutable, ordered set of entries keyed by name.
//
// The zero value is an empty catalog. Use NewCatalog to build one; entries
// keep the order they were given in, which is also the processing and
// reporting order of a run.
type Catalog struct {
	entries []Entry
	index   map[string]int
}

// NewCatalog validates entries and returns a Catalog holding a private copy.
//
// It fails on the first invalid entry or on a duplicate name.
func NewCatalog(entries []Entry) (*Catalog, error) {
	c := &Catalog{
		entries: make([]Entry, 0, len(entries)),
		index:   make(map[string]int, len(entries)),
	}
	for i, e := range entries {
		if err := e.Validate(); err != nil {
			return nil, errors.Wrapf(err, "catalog entry %d", i+1)
		}
		if _, dup := c.index[e.Name]; dup {
			return nil, errors.Errorf("catalog entry %d: duplicate name %q", i+1, e.Name)
		}
		c.index[e.Name] = len(c.entries)
		c.entries = append(c.entries, e)
	}
	return c, nil
}

// Entries returns a copy of the entries in catalog order.
func (c *Catalog) Entries() []Entry {
	if c == nil {
		return nil
	}
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// Lookup returns the entry with the given name.
func (c *Catalog) Lookup(name string) (Entry, bool) {
	if c == nil {
		return Entry{}, false
	}
	i, ok := c.index[name]
	if !ok {
		return Entry{}, false
	}
	return c.entries[i], true
}

// Names returns entry names in catalog order.
func (c *Catalog) Names() []string {
	if c == nil {
		return nil
	}
	names := make([]string, len(c.entries))
	for i, e := range c.entries {
		names[i] = e.Name
	}
	return names
}
