package canvas

import "fmt"

// Layer is one row of the layer list.
type Layer struct {
	Item
	State ItemState `json:"state"`
}

// LayerList returns the orderable items top-most first. The sleeve and the
// background are never part of it.
func LayerList(items []Item) []Item {
	out := make([]Item, 0, len(items))
	for i := len(items) - 1; i >= 0; i-- {
		if items[i].Kind.Structural() {
			continue
		}
		out = append(out, items[i].clone())
	}
	return out
}

// Layers returns the layer list with interaction state attached.
func (c *Controller) Layers() []Layer {
	list := LayerList(c.reg.items)
	out := make([]Layer, len(list))
	for i, it := range list {
		out[i] = Layer{Item: it, State: c.State(it.ID)}
	}
	return out
}

// MoveLayer moves activeID to the position of overID in the top-first
// layer list and writes the result back in storage order.
func (c *Controller) MoveLayer(activeID, overID string) error {
	if activeID == overID {
		return nil
	}
	list := LayerList(c.reg.items)
	from, to := -1, -1
	ids := make([]string, len(list))
	for i, it := range list {
		ids[i] = it.ID
		switch it.ID {
		case activeID:
			from = i
		case overID:
			to = i
		}
	}
	if from < 0 {
		return fmt.Errorf("%w: %s", ErrItemNotFound, activeID)
	}
	if to < 0 {
		return fmt.Errorf("%w: %s", ErrItemNotFound, overID)
	}
	return c.ApplyLayerOrder(arrayMove(ids, from, to))
}

// ApplyLayerOrder sets the z-order from a top-first id list.
func (c *Controller) ApplyLayerOrder(topFirst []string) error {
	storage := make([]string, len(topFirst))
	for i, id := range topFirst {
		storage[len(topFirst)-1-i] = id
	}
	return c.reg.Reorder(storage)
}

func arrayMove(ids []string, from, to int) []string {
	out := make([]string, 0, len(ids))
	moved := ids[from]
	for i, id := range ids {
		if i != from {
			out = append(out, id)
		}
	}
	out = append(out[:to], append([]string{moved}, out[to:]...)...)
	return out
}
