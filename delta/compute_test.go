package delta

import (
	"context"
	"testing"

	pentimento "github.com/halfpix/pentimento"
	"github.com/halfpix/pentimento/codec"
	"github.com/halfpix/pentimento/doc"
)

func testEncoder() *codec.Encoder {
	return codec.NewEncoder(codec.FormatZstdRaw, 0)
}

func baseContent() (*doc.EditorContent, *doc.Layer) {
	bg := doc.NewPixelLayer("Background", pentimento.NewPixmap(100, 100))
	bg.Data.Fill(pentimento.Color{R: 255, A: 255})
	c := doc.NewContent(100, 100)
	c.Layers = []*doc.Layer{bg}
	c.ActiveLayerID = bg.ID
	return c, bg
}

func TestComputeNoChange(t *testing.T) {
	before, _ := baseContent()
	after := before.Clone()

	res, err := Compute(context.Background(), before, after, testEncoder())
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if !res.Empty() {
		t.Errorf("diff of identical contents = %d deltas, want empty", len(res.Deltas))
	}
}

func TestComputePropertyDelta(t *testing.T) {
	before, bg := baseContent()
	after := before.Clone()
	after.Layers[0].Opacity = 40
	after.Layers[0].Name = "Backdrop"

	res, err := Compute(context.Background(), before, after, testEncoder())
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if len(res.Deltas) != 1 {
		t.Fatalf("got %d deltas, want 1", len(res.Deltas))
	}

	d := res.Deltas[0]
	if d.Change != ChangeProperties || d.LayerID != bg.ID {
		t.Fatalf("delta = %+v, want properties change on %q", d, bg.ID)
	}
	// Only the changed fields are present.
	if d.Props.Opacity == nil || *d.Props.Opacity != 40 {
		t.Error("opacity change missing")
	}
	if d.Props.Name == nil || *d.Props.Name != "Backdrop" {
		t.Error("name change missing")
	}
	if d.Props.Visible != nil || d.Props.X != nil || d.Props.Blend != nil {
		t.Error("unchanged fields must stay nil")
	}
}

func TestComputeDataDelta(t *testing.T) {
	before, bg := baseContent()
	after := before.Clone()
	after.Layers[0].Data.FillRect(pentimento.Rect{X: 50, Y: 50, W: 10, H: 10},
		pentimento.Color{B: 255, A: 255})

	res, err := Compute(context.Background(), before, after, testEncoder())
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if len(res.Deltas) != 1 {
		t.Fatalf("got %d deltas, want 1", len(res.Deltas))
	}

	d := res.Deltas[0]
	if d.Change != ChangeData || d.LayerID != bg.ID {
		t.Fatalf("delta = %+v, want data change on %q", d, bg.ID)
	}
	if d.DataDiff.Type != codec.DiffBBox {
		t.Errorf("diff type = %v, want BBox", d.DataDiff.Type)
	}
	// Bounds cover the paint and stay within padding.
	painted := pentimento.Rect{X: 50, Y: 50, W: 10, H: 10}
	if d.DataDiff.Rect.Intersect(painted) != painted {
		t.Errorf("diff rect %+v does not cover %+v", d.DataDiff.Rect, painted)
	}
}

func TestComputeCreatedDelta(t *testing.T) {
	before, _ := baseContent()
	after := before.Clone()
	newLayer := doc.NewPixelLayer("New Layer", pentimento.NewPixmap(100, 100))
	after.Layers = doc.WithLayerInserted(after.Layers, "", 0, newLayer)

	res, err := Compute(context.Background(), before, after, testEncoder())
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	var created *LayerDelta
	for i := range res.Deltas {
		if res.Deltas[i].Change == ChangeCreated {
			created = &res.Deltas[i]
		}
	}
	if created == nil {
		t.Fatal("no created delta emitted")
	}
	if created.LayerID != newLayer.ID || created.Index != 0 || created.ParentID != "" {
		t.Errorf("created = %+v, want top-level index 0 for %q", created, newLayer.ID)
	}
	if created.FullLayer == nil || created.FullLayer.Data != nil {
		t.Error("created delta should carry a pixel-free full layer")
	}
	if created.DataDiff == nil {
		t.Error("created pixel layer should carry its pixels as a diff")
	}
}

func TestComputeDeletedDelta(t *testing.T) {
	before, bg := baseContent()
	after := before.Clone()
	after.Layers = doc.WithLayerRemoved(after.Layers, bg.ID)

	res, err := Compute(context.Background(), before, after, testEncoder())
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	var deleted *LayerDelta
	for i := range res.Deltas {
		if res.Deltas[i].Change == ChangeDeleted {
			deleted = &res.Deltas[i]
		}
	}
	if deleted == nil {
		t.Fatal("no deleted delta emitted")
	}
	if deleted.LayerID != bg.ID {
		t.Errorf("deleted id = %q, want %q", deleted.LayerID, bg.ID)
	}
	if deleted.FullLayer == nil {
		t.Error("deleted delta should carry the full before layer")
	}
	// No replay path reads a deleted layer's pixels; encoding them would
	// pay a full-frame compress for nothing.
	if deleted.DataDiff != nil {
		t.Error("deleted delta should not carry pixels")
	}
}

func TestComputeMovesChildOutOfDissolvedGroup(t *testing.T) {
	before, _ := baseContent()
	child := doc.NewPixelLayer("child", pentimento.NewPixmap(20, 20))
	child.Data.Fill(pentimento.Color{G: 255, A: 255})
	group := doc.NewGroup("group")
	group.Children = []*doc.Layer{child}
	before.Layers = doc.WithLayerInserted(before.Layers, "", 0, group)

	// Dissolve the group: the child survives at the top level.
	after := before.Clone()
	rest, moved := doc.WithLayerDetached(after.Layers, child.ID)
	after.Layers = doc.WithLayerInserted(rest, "", 0, moved)
	after.Layers = doc.WithLayerRemoved(after.Layers, group.ID)

	res, err := Compute(context.Background(), before, after, testEncoder())
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	var deleted, move *LayerDelta
	for i := range res.Deltas {
		switch res.Deltas[i].Change {
		case ChangeDeleted:
			deleted = &res.Deltas[i]
		case ChangeMoved:
			move = &res.Deltas[i]
		}
	}
	if deleted == nil || deleted.LayerID != group.ID {
		t.Fatal("no deleted delta for the dissolved group")
	}
	if move == nil {
		t.Fatal("no move delta for the surviving child")
	}
	if move.LayerID != child.ID || move.ParentID != "" || move.Index != 0 {
		t.Errorf("move = %+v, want %q re-homed to top level index 0", move, child.ID)
	}
}

func TestComputeMovesOnNestedReorder(t *testing.T) {
	before, _ := baseContent()
	a := doc.NewTextLayer("a", "a")
	b := doc.NewTextLayer("b", "b")
	group := doc.NewGroup("group")
	group.Children = []*doc.Layer{a, b}
	before.Layers = doc.WithLayerInserted(before.Layers, "", 0, group)

	after := before.Clone()
	children := after.Layers[0].Children
	after.Layers = doc.WithLayerUpdated(after.Layers, group.ID, func(l *doc.Layer) *doc.Layer {
		l.Children = []*doc.Layer{children[1], children[0]}
		return l
	})

	res, err := Compute(context.Background(), before, after, testEncoder())
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	moves := map[string]int{}
	for _, d := range res.Deltas {
		if d.Change != ChangeMoved {
			t.Errorf("delta = %+v, want only moves", d)
			continue
		}
		if d.ParentID != group.ID {
			t.Errorf("move parent = %q, want %q", d.ParentID, group.ID)
		}
		moves[d.LayerID] = d.Index
	}
	if moves[b.ID] != 0 || moves[a.ID] != 1 {
		t.Errorf("moves = %v, want %q at 0 and %q at 1", moves, b.ID, a.ID)
	}
}

func TestComputeNoMoveOnPureTopLevelReorder(t *testing.T) {
	a := doc.NewPixelLayer("a", nil)
	b := doc.NewPixelLayer("b", nil)
	before := doc.NewContent(50, 50)
	before.Layers = []*doc.Layer{a, b}
	after := before.Clone()
	after.Layers = []*doc.Layer{after.Layers[1], after.Layers[0]}

	res, err := Compute(context.Background(), before, after, testEncoder())
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	for _, d := range res.Deltas {
		if d.Change == ChangeMoved {
			t.Errorf("move emitted for %q; top-level shuffles belong to the reorder pass", d.LayerID)
		}
	}
}

func TestComputeNestedCreation(t *testing.T) {
	before, _ := baseContent()
	after := before.Clone()

	group := doc.NewGroup("Group")
	inner := doc.NewTextLayer("Label", "hi")
	group.Children = []*doc.Layer{inner}
	after.Layers = doc.WithLayerInserted(after.Layers, "", 0, group)

	res, err := Compute(context.Background(), before, after, testEncoder())
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	// Group before child, child placed inside group.
	var order []string
	var innerDelta *LayerDelta
	for i := range res.Deltas {
		if res.Deltas[i].Change == ChangeCreated {
			order = append(order, res.Deltas[i].LayerID)
			if res.Deltas[i].LayerID == inner.ID {
				innerDelta = &res.Deltas[i]
			}
		}
	}
	if len(order) != 2 || order[0] != group.ID || order[1] != inner.ID {
		t.Fatalf("created order = %v, want [group, inner]", order)
	}
	if innerDelta.ParentID != group.ID || innerDelta.Index != 0 {
		t.Errorf("inner placement = %+v, want inside group at 0", innerDelta)
	}
	// Created groups must not duplicate their children inline.
	for i := range res.Deltas {
		if res.Deltas[i].LayerID == group.ID && len(res.Deltas[i].FullLayer.Children) != 0 {
			t.Error("created group delta should not embed children")
		}
	}
}

func TestComputeTopLevelReorder(t *testing.T) {
	a := doc.NewPixelLayer("a", nil)
	b := doc.NewPixelLayer("b", nil)
	before := doc.NewContent(50, 50)
	before.Layers = []*doc.Layer{a, b}
	after := before.Clone()
	after.Layers = []*doc.Layer{after.Layers[1], after.Layers[0]}

	res, err := Compute(context.Background(), before, after, testEncoder())
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if len(res.Deltas) != 2 {
		t.Fatalf("got %d deltas, want 2 reorders", len(res.Deltas))
	}
	for _, d := range res.Deltas {
		if d.Change != ChangeReordered || d.Reorder == nil {
			t.Errorf("delta = %+v, want reorder", d)
		}
	}
}

func TestComputeContentPatch(t *testing.T) {
	before, _ := baseContent()
	after := before.Clone()
	after.Guides = append(after.Guides, doc.Guide{Horizontal: true, Position: 42})
	after.Selection = &doc.Selection{Kind: doc.SelectionRect, Bounds: pentimento.Rect{X: 1, Y: 2, W: 3, H: 4}}

	res, err := Compute(context.Background(), before, after, testEncoder())
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if len(res.Deltas) != 0 {
		t.Errorf("layer deltas = %d, want 0", len(res.Deltas))
	}
	if !res.Patch.GuidesSet || len(res.Patch.Guides) != 1 {
		t.Error("guide change missing from patch")
	}
	if !res.Patch.SelectionSet || res.Patch.Selection == nil {
		t.Error("selection change missing from patch")
	}

	// Applying the patch to the before content reproduces the change.
	target := before.Clone()
	res.Patch.ApplyTo(target)
	if !target.Equal(after) {
		t.Error("patch application did not reproduce after")
	}
}

func TestEstimateSizeCountsBlobs(t *testing.T) {
	before, _ := baseContent()
	after := before.Clone()
	after.Layers[0].Data.Fill(pentimento.Color{G: 255, A: 255})

	res, err := Compute(context.Background(), before, after, testEncoder())
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	size := EstimateSize(res.Deltas)
	if size < res.Deltas[0].DataDiff.Size() {
		t.Errorf("EstimateSize = %d, smaller than blob payload %d", size, res.Deltas[0].DataDiff.Size())
	}
}
