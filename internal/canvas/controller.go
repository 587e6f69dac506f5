package canvas

import (
	"errors"
	"fmt"
)

// Auto-fit caps for a freshly placed asset, in logical units.
const (
	DefaultMaxFootprint = 150.0
	SleeveMaxFootprint  = 800.0
)

var (
	ErrEmptyImage  = errors.New("image has no size")
	ErrNotSelected = errors.New("item is not selected")
	ErrBadScale    = errors.New("scale must be positive")
)

// ItemState is the interaction state of one item.
type ItemState string

const (
	StateIdle         ItemState = "idle"
	StateHovered      ItemState = "hovered"
	StateSelected     ItemState = "selected"
	StateDragging     ItemState = "dragging"
	StateTransforming ItemState = "transforming"
)

type gestureKind int

const (
	gestureNone gestureKind = iota
	gestureDrag
	gestureTransform
)

// Asset describes a palette entry that is being placed on the canvas.
type Asset struct {
	Src            string
	Label          string
	Kind           Kind
	PromptAddition string
	Stackable      *bool
}

// MaxFootprint returns the auto-fit cap for an asset kind.
func MaxFootprint(k Kind) float64 {
	if k == KindSleeve {
		return SleeveMaxFootprint
	}
	return DefaultMaxFootprint
}

// FitScale returns the initial scale that keeps an asset's rendered size
// within limit. Assets smaller than the limit keep their native size.
func FitScale(native, limit float64) float64 {
	if native <= 0 || limit <= 0 {
		return 1
	}
	return min(1, limit/native)
}

// Controller owns selection, hover and gesture state and routes every
// user interaction to the registry.
type Controller struct {
	reg      *Registry
	viewport Viewport

	selected  string
	hovered   string
	gesture   gestureKind
	gestureID string
	closed    bool
}

func NewController(reg *Registry) *Controller {
	return &Controller{
		reg:      reg,
		viewport: NewViewport(),
	}
}

func (c *Controller) Registry() *Registry {
	return c.reg
}

func (c *Controller) Viewport() Viewport {
	return c.viewport
}

// Resize records a viewport measurement.
func (c *Controller) Resize(w, h float64) Transform {
	return c.viewport.Resize(w, h)
}

// PlaceDropped registers an asset dropped at viewport pointer (px, py).
// width and height are the natural pixel size of the loaded image; callers
// must not call PlaceDropped when the image failed to load.
func (c *Controller) PlaceDropped(a Asset, px, py float64, width, height int) (Item, error) {
	if width <= 0 || height <= 0 {
		return Item{}, ErrEmptyImage
	}
	if a.Kind.Structural() {
		return Item{}, ErrStructuralItem
	}

	x, y := c.viewport.Transform.ToLogical(px, py)
	limit := MaxFootprint(a.Kind)
	scale := FitScale(float64(height), limit)
	x -= float64(width) * scale / 2
	y -= float64(height) * scale / 2

	return c.reg.Add(Item{
		Src:            a.Src,
		Label:          a.Label,
		Kind:           a.Kind,
		X:              x,
		Y:              y,
		Scale:          scale,
		MaxWidth:       limit,
		MaxHeight:      limit,
		PromptAddition: a.PromptAddition,
		Stackable:      a.Stackable,
	})
}

// Select makes id the selected item. An empty id, or the sleeve, clears
// the selection.
func (c *Controller) Select(id string) error {
	if id == "" {
		c.ClearSelection()
		return nil
	}
	it, ok := c.reg.Get(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	if it.Kind.Structural() {
		c.ClearSelection()
		return nil
	}
	if c.gesture != gestureNone && c.gestureID != id {
		c.endGesture()
	}
	c.selected = id
	return nil
}

func (c *Controller) ClearSelection() {
	c.selected = ""
	c.endGesture()
}

func (c *Controller) Selected() string {
	return c.selected
}

// Hover marks id as hovered.
func (c *Controller) Hover(id string) error {
	it, ok := c.reg.Get(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	if it.Kind.Structural() {
		c.hovered = ""
		return nil
	}
	c.hovered = id
	return nil
}

func (c *Controller) Unhover() {
	c.hovered = ""
}

// Hovered returns the visible hover target. Hover is suppressed while an
// item is selected.
func (c *Controller) Hovered() string {
	if c.selected != "" {
		return ""
	}
	return c.hovered
}

// State returns the interaction state of one item.
func (c *Controller) State(id string) ItemState {
	switch {
	case c.gesture == gestureDrag && c.gestureID == id:
		return StateDragging
	case c.gesture == gestureTransform && c.gestureID == id:
		return StateTransforming
	case c.selected == id:
		return StateSelected
	case c.Hovered() == id && id != "":
		return StateHovered
	default:
		return StateIdle
	}
}

// BeginDrag starts moving an item.
func (c *Controller) BeginDrag(id string) error {
	it, ok := c.reg.Get(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	if it.Kind.Structural() {
		return ErrStructuralItem
	}
	c.gesture = gestureDrag
	c.gestureID = id
	return nil
}

// EndDrag commits the final position of a drag.
func (c *Controller) EndDrag(id string, x, y float64) (Item, error) {
	if c.gestureID == id {
		c.endGesture()
	}
	it, ok := c.reg.Get(id)
	if !ok {
		return Item{}, fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	if it.Kind.Structural() {
		return Item{}, ErrStructuralItem
	}
	return c.reg.Update(id, Patch{X: &x, Y: &y})
}

// BeginTransform starts a rotate/scale session on the item that currently
// shows transform handles.
func (c *Controller) BeginTransform(id string) error {
	if _, ok := c.reg.Get(id); !ok {
		return fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	if c.selected != id && c.Hovered() != id {
		return ErrNotSelected
	}
	c.gesture = gestureTransform
	c.gestureID = id
	return nil
}

// EndTransform commits rotation and uniform scale. Intermediate frames of
// the transform are never written to the registry.
func (c *Controller) EndTransform(id string, rotation, scale float64) (Item, error) {
	if scale <= 0 {
		return Item{}, ErrBadScale
	}
	if c.gestureID == id {
		c.endGesture()
	}
	it, ok := c.reg.Get(id)
	if !ok {
		return Item{}, fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	if it.Kind.Structural() {
		return Item{}, ErrStructuralItem
	}
	return c.reg.Update(id, Patch{Rotation: &rotation, Scale: &scale})
}

// KeyDown handles the delete shortcut. It returns the id of the removed
// item, or "" when the key was a no-op.
func (c *Controller) KeyDown(key string) string {
	if c.closed || (key != "Delete" && key != "Backspace") || c.selected == "" {
		return ""
	}
	id := c.selected
	it, ok := c.reg.Get(id)
	if !ok {
		c.ClearSelection()
		return ""
	}
	if it.Kind == KindSleeve {
		return ""
	}
	if err := c.reg.Remove(id); err != nil {
		return ""
	}
	c.ClearSelection()
	c.sync()
	return id
}

// Remove deletes one item, e.g. from the layer list.
func (c *Controller) Remove(id string) error {
	if err := c.reg.Remove(id); err != nil {
		return err
	}
	c.sync()
	return nil
}

// Duplicate copies an item and selects the copy.
func (c *Controller) Duplicate(id string) (Item, error) {
	dup, err := c.reg.Duplicate(id)
	if err != nil {
		return Item{}, err
	}
	c.endGesture()
	c.selected = dup.ID
	return dup, nil
}

// Reset clears the canvas down to the sleeve and background.
func (c *Controller) Reset() {
	c.reg.Reset()
	c.selected = ""
	c.hovered = ""
	c.endGesture()
}

// Replace loads a whole collection and drops all interaction state.
func (c *Controller) Replace(items []Item) error {
	if err := c.reg.Replace(items); err != nil {
		return err
	}
	c.selected = ""
	c.hovered = ""
	c.endGesture()
	return nil
}

// Close unbinds the keyboard shortcut for the rest of the session.
func (c *Controller) Close() {
	c.closed = true
}

func (c *Controller) endGesture() {
	c.gesture = gestureNone
	c.gestureID = ""
}

// sync drops selection, hover and gesture targets that no longer exist.
func (c *Controller) sync() {
	if _, ok := c.reg.Get(c.selected); c.selected != "" && !ok {
		c.selected = ""
	}
	if _, ok := c.reg.Get(c.hovered); c.hovered != "" && !ok {
		c.hovered = ""
	}
	if _, ok := c.reg.Get(c.gestureID); c.gestureID != "" && !ok {
		c.endGesture()
	}
}
