// Package prompt assembles the instruction text sent to the image
// generation API and the materials summary stored with a design.
package prompt

import (
	"fmt"
	"strings"

	"bouquet-studio-backend/internal/canvas"
)

// Base is always the start of a generated prompt.
const Base = "Update the image, make it more realistic. Do not change the existing colors of flowers or assets in any way. You may add shading, leaves or stems behind the heads to make it more realistic. Goal is a photorealistic looking bouquet without changing the original flowers."

// Build returns the prompt for items. Items with stackable == false
// override each other per kind (last one wins, first position kept);
// stackable items contribute the first snippet seen for their kind. The
// background snippet, when set, goes first.
func Build(items []canvas.Item, backgroundSnippet string) string {
	var overrideKinds []canvas.Kind
	overrides := make(map[canvas.Kind]string)
	var stackers []string
	seen := make(map[canvas.Kind]bool)

	for _, it := range items {
		if it.PromptAddition == "" {
			continue
		}
		if !it.IsStackable() {
			if _, ok := overrides[it.Kind]; !ok {
				overrideKinds = append(overrideKinds, it.Kind)
			}
			overrides[it.Kind] = it.PromptAddition
			continue
		}
		if seen[it.Kind] {
			continue
		}
		seen[it.Kind] = true
		stackers = append(stackers, it.PromptAddition)
	}

	snippets := make([]string, 0, 1+len(overrideKinds)+len(stackers))
	if backgroundSnippet != "" {
		snippets = append(snippets, backgroundSnippet)
	}
	for _, k := range overrideKinds {
		snippets = append(snippets, overrides[k])
	}
	snippets = append(snippets, stackers...)

	joined := strings.TrimSpace(strings.Join(dedupe(snippets), " "))
	if joined == "" {
		return Base
	}
	return Base + " " + joined
}

func dedupe(in []string) []string {
	out := in[:0:0]
	seen := make(map[string]bool, len(in))
	for _, s := range in {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// Materials summarises the labels of items in first-seen order, e.g.
// "Braun, 3 x Rose rot, Monstera".
func Materials(items []canvas.Item) string {
	var order []string
	counts := make(map[string]int)
	for _, it := range items {
		if it.Kind == canvas.KindBackground {
			continue
		}
		label := it.DisplayLabel()
		if label == "" {
			continue
		}
		if counts[label] == 0 {
			order = append(order, label)
		}
		counts[label]++
	}

	parts := make([]string, len(order))
	for i, label := range order {
		if n := counts[label]; n > 1 {
			parts[i] = fmt.Sprintf("%d x %s", n, label)
			continue
		}
		parts[i] = label
	}
	return strings.Join(parts, ", ")
}
