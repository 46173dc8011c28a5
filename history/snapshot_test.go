package history

import (
	"testing"

	"github.com/halfpix/pentimento"
	"github.com/halfpix/pentimento/delta"
	"github.com/halfpix/pentimento/doc"
)

// Exported snapshots must not share mutable state with the store, or a
// caller editing an exported state would corrupt live history.
func TestSnapshotCloneDeepCopiesPatch(t *testing.T) {
	sel := &doc.Selection{Kind: doc.SelectionRect, Bounds: pentimento.Rect{X: 1, Y: 2, W: 3, H: 4}}
	snap := &Snapshot{
		ID:   "s1",
		Type: SnapshotDelta,
		Patch: &delta.ContentPatch{
			Selection:    sel,
			SelectionSet: true,
			Guides:       []doc.Guide{{Horizontal: true, Position: 10}},
			GuidesSet:    true,
			Paths:        []*doc.Path{{ID: "p1", Name: "outline"}},
			PathsSet:     true,
		},
	}

	clone := snap.Clone()
	clone.Patch.Selection.Bounds.X = 99
	clone.Patch.Guides[0].Position = 99
	clone.Patch.Paths[0].Name = "edited"

	if snap.Patch.Selection.Bounds.X != 1 {
		t.Error("clone shares the selection with the original")
	}
	if snap.Patch.Guides[0].Position != 10 {
		t.Error("clone shares the guides slice with the original")
	}
	if snap.Patch.Paths[0].Name != "outline" {
		t.Error("clone shares the paths with the original")
	}
}

func TestSnapshotCloneDeepCopiesProps(t *testing.T) {
	name := "before"
	snap := &Snapshot{
		ID:   "s1",
		Type: SnapshotDelta,
		Deltas: []delta.LayerDelta{{
			LayerID: "l1",
			Change:  delta.ChangeProperties,
			Props: &delta.PropertyChanges{
				Name:       &name,
				Filters:    []doc.Filter{{Type: doc.FilterBlur, Enabled: true}},
				FiltersSet: true,
			},
		}},
	}

	clone := snap.Clone()
	*clone.Deltas[0].Props.Name = "after"
	clone.Deltas[0].Props.Filters[0].Enabled = false

	if *snap.Deltas[0].Props.Name != "before" {
		t.Error("clone shares the name pointer with the original")
	}
	if !snap.Deltas[0].Props.Filters[0].Enabled {
		t.Error("clone shares the filters slice with the original")
	}
}
