package editor

import (
	"context"

	"bouquet-studio-backend/internal/canvas"
	"bouquet-studio-backend/internal/catalog"
	"bouquet-studio-backend/internal/models"
	"bouquet-studio-backend/internal/render"
)

// Reasons a stored element is left out of a restored canvas.
const (
	DropUnknownType  = "unknown_type"
	DropUnknownAsset = "unknown_asset"
)

// Sizer reports the natural pixel size of an asset.
type Sizer interface {
	Size(ctx context.Context, src string) (width, height int, err error)
}

// Dropped records a stored element that could not be restored.
type Dropped struct {
	ItemID string      `json:"item_id,omitempty"`
	Src    string      `json:"src"`
	Kind   canvas.Kind `json:"type,omitempty"`
	Reason string      `json:"reason"`
}

// Restored is a draft converted back into canvas items.
type Restored struct {
	Items             []canvas.Item
	BackgroundRef     string
	BackgroundSnippet string
	Ambiguities       []catalog.Ambiguity
	Dropped           []Dropped
}

// Restore prepares a stored draft for loading into a session. Only assets
// from the catalog are restored; anything else is reported in Dropped.
// Elements without a known type take the type of their catalog entry.
// Background items written by older clients are lifted into the background
// reference, prompt data is re-attached from the catalog, the draft's
// sleeve src is applied, drafts without a sleeve get the default one, and
// items that were never fitted get their auto-fit scale. Assets that cannot
// be measured keep their stored scale.
func Restore(ctx context.Context, d *models.Draft, cat *catalog.Catalog, sizer Sizer) Restored {
	var r Restored
	drop := func(it canvas.Item, reason string) {
		r.Dropped = append(r.Dropped, Dropped{ItemID: it.ID, Src: it.Src, Kind: it.Kind, Reason: reason})
	}

	sleeveSrc := d.Sleeve
	if sleeveSrc != "" && !cat.Known(sleeveSrc) {
		drop(canvas.Item{Src: sleeveSrc, Kind: canvas.KindSleeve}, DropUnknownAsset)
		sleeveSrc = ""
	}
	if d.Background != "" {
		if cat.Known(d.Background) {
			r.BackgroundRef = d.Background
		} else {
			drop(canvas.Item{Src: d.Background, Kind: canvas.KindBackground}, DropUnknownAsset)
		}
	}

	items := make([]canvas.Item, 0, len(d.Elements)+1)
	hasSleeve := false
	for _, it := range d.Elements {
		if !it.Kind.Valid() {
			k, ok := cat.KindOf(it.Src)
			if !ok {
				drop(it, DropUnknownType)
				continue
			}
			it.Kind = k
		}

		switch it.Kind {
		case canvas.KindBackground:
			if !cat.Known(it.Src) {
				drop(it, DropUnknownAsset)
			} else if r.BackgroundRef == "" {
				r.BackgroundRef = it.Src
			}
			continue
		case canvas.KindSleeve:
			if hasSleeve {
				continue
			}
			switch {
			case sleeveSrc != "" && sleeveSrc != it.Src:
				it.Src = sleeveSrc
				it.Label = ""
			case !cat.Known(it.Src):
				drop(it, DropUnknownAsset)
				it.Src = DefaultSleeveSrc
				it.Label = ""
			}
			hasSleeve = true
		default:
			if !cat.Known(it.Src) {
				drop(it, DropUnknownAsset)
				continue
			}
		}
		items = append(items, it)
	}
	if !hasSleeve {
		sleeve := DefaultSleeve()
		if sleeveSrc != "" {
			sleeve.Src = sleeveSrc
			sleeve.Label = ""
		}
		items = append([]canvas.Item{sleeve}, items...)
	}

	r.Items, r.Ambiguities = cat.Rehydrate(items)

	if r.BackgroundRef != "" {
		if e, err := cat.Lookup(r.BackgroundRef, canvas.KindBackground); err == nil {
			r.BackgroundSnippet = e.PromptAddition
		}
	}

	if sizer == nil {
		return r
	}
	for i, it := range r.Items {
		if it.Kind.Structural() || it.Scale != 1 {
			continue
		}
		w, _, err := sizer.Size(ctx, it.Src)
		if err != nil {
			continue
		}
		r.Items[i].Scale = render.FitScale(it, w)
	}
	return r
}
