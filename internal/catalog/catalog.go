// Package catalog holds the static palette of assets users can place and
// re-attaches prompt metadata to items loaded from stored drafts.
package catalog

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"bouquet-studio-backend/internal/canvas"
)

//go:embed catalog.json
var defaultCatalog []byte

var (
	ErrNoMatch   = errors.New("no catalog entry matches")
	ErrAmbiguous = errors.New("more than one catalog entry matches")
)

// Entry is one placeable asset.
type Entry struct {
	Label          string      `json:"label"`
	Src            string      `json:"src"`
	Kind           canvas.Kind `json:"type"`
	PromptAddition string      `json:"promptAddition,omitempty"`
	Stackable      *bool       `json:"stackable,omitempty"`
}

// Asset converts the entry into a placement request.
func (e Entry) Asset() canvas.Asset {
	return canvas.Asset{
		Src:            e.Src,
		Label:          e.Label,
		Kind:           e.Kind,
		PromptAddition: e.PromptAddition,
		Stackable:      copyBool(e.Stackable),
	}
}

type Category struct {
	Name    string  `json:"name"`
	Entries []Entry `json:"entries"`
}

type key struct {
	src  string
	kind canvas.Kind
}

// Catalog is the grouped asset table, indexed by (src, kind).
type Catalog struct {
	Categories []Category `json:"categories"`

	index map[key][]Entry
	kinds map[string][]canvas.Kind
}

// Default returns the catalog compiled into the binary.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Parse decodes a catalog document.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	c.buildIndex()
	return &c, nil
}

// New builds a catalog from categories.
func New(categories []Category) *Catalog {
	c := &Catalog{Categories: categories}
	c.buildIndex()
	return c
}

func (c *Catalog) buildIndex() {
	c.index = make(map[key][]Entry)
	c.kinds = make(map[string][]canvas.Kind)
	for _, cat := range c.Categories {
		for _, e := range cat.Entries {
			k := key{src: e.Src, kind: e.Kind}
			if len(c.index[k]) == 0 {
				c.kinds[e.Src] = append(c.kinds[e.Src], e.Kind)
			}
			c.index[k] = append(c.index[k], e)
		}
	}
}

// Known reports whether any entry uses src.
func (c *Catalog) Known(src string) bool {
	return len(c.kinds[src]) > 0
}

// KindOf returns the kind of src when every entry using it agrees.
func (c *Catalog) KindOf(src string) (canvas.Kind, bool) {
	kinds := c.kinds[src]
	if len(kinds) != 1 {
		return "", false
	}
	return kinds[0], true
}

// Validate reports every malformed or ambiguous entry.
func (c *Catalog) Validate() error {
	var errs []error
	for _, cat := range c.Categories {
		if strings.TrimSpace(cat.Name) == "" {
			errs = append(errs, errors.New("category without a name"))
		}
		for _, e := range cat.Entries {
			if e.Src == "" {
				errs = append(errs, fmt.Errorf("%s: entry %q has no src", cat.Name, e.Label))
			}
			if !e.Kind.Valid() {
				errs = append(errs, fmt.Errorf("%s: entry %q has invalid type %q", cat.Name, e.Label, e.Kind))
			}
		}
	}
	for k, entries := range c.index {
		if len(entries) > 1 {
			errs = append(errs, fmt.Errorf("%w: src %q type %q (%d entries)", ErrAmbiguous, k.src, k.kind, len(entries)))
		}
	}
	return errors.Join(errs...)
}

// Lookup finds the single entry for src and kind.
func (c *Catalog) Lookup(src string, kind canvas.Kind) (Entry, error) {
	entries := c.index[key{src: src, kind: kind}]
	switch len(entries) {
	case 0:
		return Entry{}, fmt.Errorf("%w: %s (%s)", ErrNoMatch, src, kind)
	case 1:
		return entries[0], nil
	default:
		return Entry{}, fmt.Errorf("%w: %s (%s)", ErrAmbiguous, src, kind)
	}
}

// Entries returns every entry of kind k in catalog order.
func (c *Catalog) Entries(k canvas.Kind) []Entry {
	var out []Entry
	for _, cat := range c.Categories {
		for _, e := range cat.Entries {
			if e.Kind == k {
				out = append(out, e)
			}
		}
	}
	return out
}

// Ambiguity records an item whose (src, kind) matched several entries.
type Ambiguity struct {
	ItemID     string      `json:"item_id"`
	Src        string      `json:"src"`
	Kind       canvas.Kind `json:"type"`
	Candidates int         `json:"candidates"`
}

// Rehydrate returns a copy of items with promptAddition and stackable
// restored from the catalog, matched by (src, kind). Missing labels are
// filled in too. Items that match no entry keep their stored values;
// items that match several entries are left untouched and reported.
func (c *Catalog) Rehydrate(items []canvas.Item) ([]canvas.Item, []Ambiguity) {
	out := make([]canvas.Item, len(items))
	var ambiguous []Ambiguity
	for i, it := range items {
		out[i] = it
		out[i].Stackable = copyBool(it.Stackable)

		entries := c.index[key{src: it.Src, kind: it.Kind}]
		switch len(entries) {
		case 0:
			continue
		case 1:
		default:
			ambiguous = append(ambiguous, Ambiguity{
				ItemID:     it.ID,
				Src:        it.Src,
				Kind:       it.Kind,
				Candidates: len(entries),
			})
			continue
		}

		e := entries[0]
		out[i].PromptAddition = e.PromptAddition
		out[i].Stackable = copyBool(e.Stackable)
		if out[i].Label == "" {
			out[i].Label = e.Label
		}
	}
	return out, ambiguous
}

func copyBool(b *bool) *bool {
	if b == nil {
		return nil
	}
	v := *b
	return &v
}
