package storage

import (
	"bytes"
	"context"
	"testing"

	"github.com/halfpix/pentimento"
	"github.com/halfpix/pentimento/config"
	"github.com/halfpix/pentimento/doc"
	"github.com/halfpix/pentimento/history"
)

// buildHistory creates a store with a couple of real entries, including
// one carrying pixel data.
func buildHistory(t *testing.T) (*history.Store, *doc.EditorContent) {
	t.Helper()
	ctx := context.Background()

	bg := pentimento.NewPixmap(64, 64)
	bg.Fill(pentimento.Color{R: 255, A: 255})
	layer := doc.NewPixelLayer("Background", bg)
	c0 := doc.NewContent(64, 64)
	c0.Layers = []*doc.Layer{layer}
	c0.ActiveLayerID = layer.ID

	s, err := history.NewStore(config.DefaultOptions(), c0)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	c1 := c0.Clone()
	c1.Layers[0].Data.FillRect(pentimento.Rect{X: 8, Y: 8, W: 12, H: 12}, pentimento.Color{G: 255, A: 255})
	if _, err := s.AddEntry(ctx, c1, "Paint stroke", false); err != nil {
		t.Fatalf("AddEntry: %v", err)
	}
	return s, c1
}

func firstBlob(t *testing.T, st *history.State) []byte {
	t.Helper()
	for _, e := range st.Entries {
		for _, diff := range e.PixelData {
			if diff.Blob != nil {
				return diff.Blob.Data
			}
		}
	}
	t.Fatal("state carries no pixel blob")
	return nil
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	p := NewPersister(openTestKV(t), 3)

	s, latest := buildHistory(t)
	exported := s.ExportState()
	if err := p.Save(ctx, "doc1", exported); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := p.Load(ctx, "doc1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded == nil {
		t.Fatal("Load returned no state")
	}
	if len(loaded.Entries) != len(exported.Entries) || loaded.CurrentIndex != exported.CurrentIndex {
		t.Fatalf("loaded %d entries at %d, want %d at %d",
			len(loaded.Entries), loaded.CurrentIndex, len(exported.Entries), exported.CurrentIndex)
	}
	if !bytes.Equal(firstBlob(t, loaded), firstBlob(t, exported)) {
		t.Error("pixel blob changed across the round trip")
	}

	// The loaded state rebuilds a working history.
	restored, err := history.NewStore(config.DefaultOptions(), doc.NewContent(64, 64))
	if err != nil {
		t.Fatal(err)
	}
	if err := restored.ImportState(ctx, loaded); err != nil {
		t.Fatalf("ImportState: %v", err)
	}
	got, err := restored.RestoreToIndex(ctx, restored.CurrentIndex())
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(latest) {
		t.Error("restored history does not reconstruct the saved content")
	}
}

func TestLoadMissingIsNotAnError(t *testing.T) {
	ctx := context.Background()
	p := NewPersister(openTestKV(t), 3)

	state, err := p.Load(ctx, "never-saved")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if state != nil {
		t.Error("expected nil state for a document never saved")
	}
}

func TestLoadFallsBackToTempCopy(t *testing.T) {
	ctx := context.Background()
	kv := openTestKV(t)
	p := NewPersister(kv, 3)

	s, _ := buildHistory(t)
	if err := p.Save(ctx, "doc1", s.ExportState()); err != nil {
		t.Fatal(err)
	}

	// Simulate a crash between the temp and primary writes: the temp
	// copy exists, the primary does not.
	payload, err := kv.Get(ctx, primaryKey("doc1"))
	if err != nil {
		t.Fatal(err)
	}
	if err := kv.Set(ctx, tempKey("doc1"), payload); err != nil {
		t.Fatal(err)
	}
	if err := kv.Delete(ctx, primaryKey("doc1")); err != nil {
		t.Fatal(err)
	}

	state, err := p.Load(ctx, "doc1")
	if err != nil || state == nil {
		t.Fatalf("Load = (%v, %v), want recovery from temp copy", state, err)
	}
}

func TestLoadFallsBackToBackup(t *testing.T) {
	ctx := context.Background()
	kv := openTestKV(t)
	p := NewPersister(kv, 2)

	s, _ := buildHistory(t)

	// Two saves: the second rotates the first into backup slot zero.
	if err := p.Save(ctx, "doc1", s.ExportState()); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddEntry(ctx, doc.NewContent(64, 64), "Crop", true); err != nil {
		t.Fatal(err)
	}
	second := s.ExportState()
	if err := p.Save(ctx, "doc1", second); err != nil {
		t.Fatal(err)
	}

	// Corrupt the primary; the temp key is already gone after a clean
	// save, so the load must reach the backup tier.
	if err := kv.Set(ctx, primaryKey("doc1"), []byte("not zstd")); err != nil {
		t.Fatal(err)
	}

	state, err := p.Load(ctx, "doc1")
	if err != nil || state == nil {
		t.Fatalf("Load = (%v, %v), want recovery from backup", state, err)
	}
	// The backup holds the first save, one entry shorter.
	if len(state.Entries) != len(second.Entries)-1 {
		t.Errorf("backup entries = %d, want %d", len(state.Entries), len(second.Entries)-1)
	}
}

func TestBackupRotationOrder(t *testing.T) {
	ctx := context.Background()
	kv := openTestKV(t)
	p := NewPersister(kv, 2)

	s, _ := buildHistory(t)
	for i := 0; i < 4; i++ {
		if err := p.Save(ctx, "doc1", s.ExportState()); err != nil {
			t.Fatal(err)
		}
	}

	keys, err := kv.Keys(ctx, "history:doc1:bak:")
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 2 {
		t.Errorf("backup keys = %v, want exactly 2 slots", keys)
	}
}

func TestPersisterDelete(t *testing.T) {
	ctx := context.Background()
	kv := openTestKV(t)
	p := NewPersister(kv, 2)

	s, _ := buildHistory(t)
	if err := p.Save(ctx, "doc1", s.ExportState()); err != nil {
		t.Fatal(err)
	}
	if err := p.Save(ctx, "doc1", s.ExportState()); err != nil {
		t.Fatal(err)
	}
	if err := p.Delete(ctx, "doc1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	state, err := p.Load(ctx, "doc1")
	if err != nil || state != nil {
		t.Errorf("Load after delete = (%v, %v), want (nil, nil)", state, err)
	}

	// All tiers are gone, not just the primary.
	keys, err := kv.Keys(ctx, "history:doc1")
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 0 {
		t.Errorf("keys left behind = %v, want none", keys)
	}
}

func TestPersisterDeleteSparesPrefixSiblings(t *testing.T) {
	ctx := context.Background()
	kv := openTestKV(t)
	p := NewPersister(kv, 2)

	s, _ := buildHistory(t)
	if err := p.Save(ctx, "doc", s.ExportState()); err != nil {
		t.Fatal(err)
	}
	if err := p.Save(ctx, "doc2", s.ExportState()); err != nil {
		t.Fatal(err)
	}

	// Deleting "doc" must not touch "doc2", whose id extends it.
	if err := p.Delete(ctx, "doc"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	state, err := p.Load(ctx, "doc2")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if state == nil {
		t.Fatal("deleting one document wiped its prefix sibling")
	}
}
