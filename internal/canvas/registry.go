package canvas

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// DuplicateOffset is how far a duplicate is moved from its original, in
// logical units on both axes.
const DuplicateOffset = 20.0

var (
	ErrItemNotFound     = errors.New("item not found")
	ErrSleeveProtected  = errors.New("the sleeve cannot be removed")
	ErrDuplicateSleeve  = errors.New("canvas already has a sleeve")
	ErrDuplicateID      = errors.New("item id already in use")
	ErrImmutableSource  = errors.New("asset source can only be replaced on sleeve or background items")
	ErrStructuralItem   = errors.New("operation not allowed on sleeve or background items")
	ErrInvalidKind      = errors.New("invalid item kind")
	ErrLayerOrderChange = errors.New("layer order must contain exactly the current layer ids")
)

// ChangeFunc is called after every committed mutation with the new version
// and a copy of the ordered items.
type ChangeFunc func(version uint64, items []Item)

// Registry is the ordered collection of placed items. Order of the
// non-structural items is the z-order, later entries draw on top. The
// sleeve and the background always sit in front of the slice.
//
// A Registry is not safe for concurrent use; editor.Session serializes
// access to it.
type Registry struct {
	items    []Item
	retired  map[string]struct{}
	version  uint64
	onChange ChangeFunc
	newID    func() string
}

func NewRegistry() *Registry {
	return &Registry{
		retired: make(map[string]struct{}),
		newID:   uuid.NewString,
	}
}

// OnChange installs the change observer.
func (r *Registry) OnChange(fn ChangeFunc) {
	r.onChange = fn
}

func (r *Registry) Version() uint64 {
	return r.version
}

func (r *Registry) Len() int {
	return len(r.items)
}

// Items returns a copy of the ordered items.
func (r *Registry) Items() []Item {
	return cloneItems(r.items)
}

func (r *Registry) Get(id string) (Item, bool) {
	i := r.index(id)
	if i < 0 {
		return Item{}, false
	}
	return r.items[i].clone(), true
}

// Sleeve returns the structural base item, if any.
func (r *Registry) Sleeve() (Item, bool) {
	return r.firstOfKind(KindSleeve)
}

// Background returns the background item, if any.
func (r *Registry) Background() (Item, bool) {
	return r.firstOfKind(KindBackground)
}

// Add registers a new item. An empty ID is replaced by a fresh one. Adding
// a background replaces the current background.
func (r *Registry) Add(it Item) (Item, error) {
	if !it.Kind.Valid() {
		return Item{}, fmt.Errorf("%w: %q", ErrInvalidKind, it.Kind)
	}
	if it.ID == "" {
		it.ID = r.newID()
	}
	if r.index(it.ID) >= 0 {
		return Item{}, fmt.Errorf("%w: %s", ErrDuplicateID, it.ID)
	}
	if _, ok := r.retired[it.ID]; ok {
		return Item{}, fmt.Errorf("%w: %s", ErrDuplicateID, it.ID)
	}
	it = it.clone()

	next := make([]Item, 0, len(r.items)+1)
	switch it.Kind {
	case KindSleeve:
		if _, ok := r.Sleeve(); ok {
			return Item{}, ErrDuplicateSleeve
		}
		next = append(next, it)
		next = append(next, r.items...)
	case KindBackground:
		for _, existing := range r.items {
			if existing.Kind == KindBackground {
				r.retired[existing.ID] = struct{}{}
				continue
			}
			next = append(next, existing)
		}
		pos := 0
		if len(next) > 0 && next[0].Kind == KindSleeve {
			pos = 1
		}
		next = append(next[:pos], append([]Item{it}, next[pos:]...)...)
	default:
		next = append(next, r.items...)
		next = append(next, it)
	}

	r.commit(next)
	return it.clone(), nil
}

// Update applies a partial update to one item. Source replacement is only
// allowed on the sleeve and the background.
func (r *Registry) Update(id string, p Patch) (Item, error) {
	i := r.index(id)
	if i < 0 {
		return Item{}, fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	current := r.items[i]
	if p.Src != nil && *p.Src != current.Src && !current.Kind.Structural() {
		return Item{}, ErrImmutableSource
	}

	next := cloneItems(r.items)
	next[i] = p.apply(next[i])
	r.commit(next)
	return next[i].clone(), nil
}

// Remove deletes an item. The sleeve is never removed.
func (r *Registry) Remove(id string) error {
	i := r.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	if r.items[i].Kind == KindSleeve {
		return ErrSleeveProtected
	}

	next := make([]Item, 0, len(r.items)-1)
	next = append(next, r.items[:i]...)
	next = append(next, r.items[i+1:]...)
	r.retired[id] = struct{}{}
	r.commit(next)
	return nil
}

// Reorder sets the storage order of the non-structural items. ids must be
// a permutation of the current non-structural ids.
func (r *Registry) Reorder(ids []string) error {
	var structural []Item
	byID := make(map[string]Item, len(r.items))
	for _, it := range r.items {
		if it.Kind.Structural() {
			structural = append(structural, it)
			continue
		}
		byID[it.ID] = it
	}
	if len(ids) != len(byID) {
		return ErrLayerOrderChange
	}

	next := make([]Item, 0, len(r.items))
	next = append(next, structural...)
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		it, ok := byID[id]
		if !ok {
			return fmt.Errorf("%w: unknown id %s", ErrLayerOrderChange, id)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: repeated id %s", ErrLayerOrderChange, id)
		}
		seen[id] = struct{}{}
		next = append(next, it)
	}

	r.commit(cloneItems(next))
	return nil
}

// Duplicate copies an item under a fresh id, moved by DuplicateOffset, and
// places the copy on top.
func (r *Registry) Duplicate(id string) (Item, error) {
	i := r.index(id)
	if i < 0 {
		return Item{}, fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	if r.items[i].Kind.Structural() {
		return Item{}, ErrStructuralItem
	}

	dup := r.items[i].clone()
	dup.ID = r.newID()
	dup.X += DuplicateOffset
	dup.Y += DuplicateOffset

	next := cloneItems(r.items)
	next = append(next, dup)
	r.commit(next)
	return dup.clone(), nil
}

// Reset drops every item whose kind is not kept. The sleeve and the
// background are always kept.
func (r *Registry) Reset(keep ...Kind) {
	keepSet := map[Kind]bool{KindSleeve: true, KindBackground: true}
	for _, k := range keep {
		keepSet[k] = true
	}

	next := make([]Item, 0, len(r.items))
	for _, it := range r.items {
		if keepSet[it.Kind] {
			next = append(next, it)
			continue
		}
		r.retired[it.ID] = struct{}{}
	}
	r.commit(cloneItems(next))
}

// Replace swaps in a whole collection, e.g. a loaded draft. The list is
// validated and normalized so that structural items come first. Items
// carrying an id that was deleted earlier get a fresh id.
func (r *Registry) Replace(items []Item) error {
	var sleeve, background *Item
	rest := make([]Item, 0, len(items))
	seen := make(map[string]struct{}, len(items))

	for i := range items {
		it := items[i].clone()
		if !it.Kind.Valid() {
			return fmt.Errorf("%w: %q", ErrInvalidKind, it.Kind)
		}
		if _, retired := r.retired[it.ID]; retired || it.ID == "" {
			it.ID = r.newID()
		}
		if _, dup := seen[it.ID]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateID, it.ID)
		}
		seen[it.ID] = struct{}{}

		switch it.Kind {
		case KindSleeve:
			if sleeve != nil {
				return ErrDuplicateSleeve
			}
			sleeve = &it
		case KindBackground:
			background = &it
		default:
			rest = append(rest, it)
		}
	}

	next := make([]Item, 0, len(items))
	if sleeve != nil {
		next = append(next, *sleeve)
	}
	if background != nil {
		next = append(next, *background)
	}
	next = append(next, rest...)

	// the sleeve is swapped, never deleted
	for _, old := range r.items {
		if old.Kind == KindSleeve {
			continue
		}
		if _, kept := seen[old.ID]; !kept {
			r.retired[old.ID] = struct{}{}
		}
	}
	r.commit(next)
	return nil
}

func (r *Registry) commit(next []Item) {
	r.items = next
	r.version++
	if r.onChange != nil {
		r.onChange(r.version, cloneItems(next))
	}
}

func (r *Registry) index(id string) int {
	for i, it := range r.items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

func (r *Registry) firstOfKind(k Kind) (Item, bool) {
	for _, it := range r.items {
		if it.Kind == k {
			return it.clone(), true
		}
	}
	return Item{}, false
}

func cloneItems(items []Item) []Item {
	out := make([]Item, len(items))
	for i, it := range items {
		out[i] = it.clone()
	}
	return out
}
