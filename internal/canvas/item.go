// Package canvas holds the editor's item model, the ordered item registry,
// the viewport transform and the interaction controller.
package canvas

import (
	"encoding/json"
	"fmt"
	"path"
	"strings"
)

// Design surface size in logical units.
const (
	DesignWidth  = 800.0
	DesignHeight = 800.0
)

// Kind is the role/category tag of a placed asset.
type Kind string

const (
	KindSleeve        Kind = "sleeve"
	KindBackground    Kind = "background"
	KindFlower        Kind = "flower"
	KindSprayRose     Kind = "sprayrose"
	KindGypsophilla   Kind = "gypsophilla"
	KindFoliage       Kind = "foliage"
	KindPlug          Kind = "plug"
	KindChrysanthemum Kind = "chrysanthemum"
	KindFiller        Kind = "filler"
)

var kinds = map[Kind]bool{
	KindSleeve:        true,
	KindBackground:    true,
	KindFlower:        true,
	KindSprayRose:     true,
	KindGypsophilla:   true,
	KindFoliage:       true,
	KindPlug:          true,
	KindChrysanthemum: true,
	KindFiller:        true,
}

// tags written by older front-end builds
var legacyKinds = map[string]Kind{
	"roses":     KindFlower,
	"Sri Lanka": KindFoliage,
}

// ParseKind maps a stored tag to a Kind.
func ParseKind(s string) (Kind, error) {
	if k := Kind(s); kinds[k] {
		return k, nil
	}
	if k, ok := legacyKinds[s]; ok {
		return k, nil
	}
	return "", fmt.Errorf("unknown item kind %q", s)
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	return kinds[k]
}

// Structural reports whether k is the sleeve or the background. Structural
// items are never part of the orderable layer list.
func (k Kind) Structural() bool {
	return k == KindSleeve || k == KindBackground
}

// UnmarshalJSON maps legacy tags and keeps unknown ones verbatim; such
// kinds report !Valid. A missing or non-string tag decodes to "".
func (k *Kind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*k = ""
		return nil
	}
	if parsed, err := ParseKind(s); err == nil {
		*k = parsed
		return nil
	}
	*k = Kind(s)
	return nil
}

// Item is a single placed asset instance.
type Item struct {
	ID             string  `json:"id"`
	Src            string  `json:"src"`
	Label          string  `json:"label,omitempty"`
	Kind           Kind    `json:"type"`
	X              float64 `json:"x"`
	Y              float64 `json:"y"`
	Rotation       float64 `json:"rotation"`
	Scale          float64 `json:"scale"`
	MaxWidth       float64 `json:"maxWidth"`
	MaxHeight      float64 `json:"maxHeight"`
	PromptAddition string  `json:"promptAddition,omitempty"`
	Stackable      *bool   `json:"stackable,omitempty"`
}

// IsStackable reports the prompt merge mode. Absent means stackable.
func (it Item) IsStackable() bool {
	return it.Stackable == nil || *it.Stackable
}

// DisplayLabel returns the label, or the file name of Src without its
// extension when no label is set.
func (it Item) DisplayLabel() string {
	if it.Label != "" {
		return it.Label
	}
	return LabelFromSrc(it.Src)
}

// LabelFromSrc derives a display name from an asset reference.
func LabelFromSrc(src string) string {
	if i := strings.IndexAny(src, "?#"); i >= 0 {
		src = src[:i]
	}
	base := path.Base(src)
	if base == "." || base == "/" {
		return ""
	}
	return strings.TrimSuffix(base, path.Ext(base))
}

// Patch is a partial attribute update. Nil fields are left untouched.
type Patch struct {
	X              *float64 `json:"x,omitempty"`
	Y              *float64 `json:"y,omitempty"`
	Rotation       *float64 `json:"rotation,omitempty"`
	Scale          *float64 `json:"scale,omitempty"`
	MaxWidth       *float64 `json:"maxWidth,omitempty"`
	MaxHeight      *float64 `json:"maxHeight,omitempty"`
	Label          *string  `json:"label,omitempty"`
	Src            *string  `json:"src,omitempty"`
	PromptAddition *string  `json:"promptAddition,omitempty"`
	Stackable      *bool    `json:"stackable,omitempty"`
}

func (p Patch) apply(it Item) Item {
	if p.X != nil {
		it.X = *p.X
	}
	if p.Y != nil {
		it.Y = *p.Y
	}
	if p.Rotation != nil {
		it.Rotation = *p.Rotation
	}
	if p.Scale != nil {
		it.Scale = *p.Scale
	}
	if p.MaxWidth != nil {
		it.MaxWidth = *p.MaxWidth
	}
	if p.MaxHeight != nil {
		it.MaxHeight = *p.MaxHeight
	}
	if p.Label != nil {
		it.Label = *p.Label
	}
	if p.Src != nil {
		it.Src = *p.Src
	}
	if p.PromptAddition != nil {
		it.PromptAddition = *p.PromptAddition
	}
	if p.Stackable != nil {
		v := *p.Stackable
		it.Stackable = &v
	}
	return it
}

// clone copies it, including the Stackable pointer target.
func (it Item) clone() Item {
	if it.Stackable != nil {
		v := *it.Stackable
		it.Stackable = &v
	}
	return it
}
