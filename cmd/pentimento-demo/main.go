// Command pentimento-demo drives the history engine end to end: it
// builds a small document, runs a few edits through a store, walks the
// undo/redo chain, persists the history to SQLite and loads it back.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/halfpix/pentimento"
	"github.com/halfpix/pentimento/cache"
	"github.com/halfpix/pentimento/codec"
	"github.com/halfpix/pentimento/config"
	"github.com/halfpix/pentimento/doc"
	"github.com/halfpix/pentimento/history"
	"github.com/halfpix/pentimento/storage"
)

func main() {
	var (
		width   = flag.Int("width", 800, "canvas width")
		height  = flag.Int("height", 600, "canvas height")
		cfgPath = flag.String("config", "", "YAML options file (defaults apply when empty)")
		dbPath  = flag.String("db", "pentimento-demo.db", "SQLite history database")
		output  = flag.String("output", "", "optional PNG of the painted layer")
		verbose = flag.Bool("v", false, "log engine internals")
	)
	flag.Parse()

	if *verbose {
		pentimento.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	opts := config.DefaultOptions()
	if *cfgPath != "" {
		loaded, err := config.Load(*cfgPath)
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
		opts = loaded
	}

	ctx := context.Background()

	// Document: a solid dark background.
	bg := pentimento.NewPixmap(*width, *height)
	bg.Fill(pentimento.Color{R: 24, G: 26, B: 32, A: 255})
	bgLayer := doc.NewPixelLayer("Background", bg)
	content := doc.NewContent(*width, *height)
	content.Layers = []*doc.Layer{bgLayer}
	content.ActiveLayerID = bgLayer.ID

	blobs := cache.NewBlobCache(opts.CacheBudgetMB)
	store, err := history.NewStore(opts, content, history.WithCache(blobs))
	if err != nil {
		log.Fatalf("create store: %v", err)
	}
	store.Subscribe(history.EventMemoryWarning, func(ev history.Event) {
		log.Printf("memory warning: %d bytes retained across %d entries",
			ev.Stats.MemoryBytes, ev.Stats.EntryCount)
	})

	// Edit 1: add a paint layer.
	content = content.Clone()
	paintLayer := doc.NewPixelLayer("Paint", pentimento.NewPixmap(*width, *height))
	content.Layers = doc.WithLayerInserted(content.Layers, "", 0, paintLayer)
	content.ActiveLayerID = paintLayer.ID
	mustAdd(ctx, store, content, "Layer added (Paint)")

	// Edit 2: paint some strokes, compressing on a worker pool so the
	// interactive loop would never block on the codec.
	content = paintStrokes(ctx, store, content, paintLayer.ID)

	// Edit 3: tweak layer properties.
	content = content.Clone()
	content.Layers = doc.WithLayerUpdated(content.Layers, paintLayer.ID, func(l *doc.Layer) *doc.Layer {
		l.Opacity = 80
		l.Blend = doc.BlendScreen
		return l
	})
	mustAdd(ctx, store, content, "Layer opacity")

	report(store)

	// Walk back and forward again.
	for store.GetStats().CanUndo {
		if _, err := store.Undo(ctx); err != nil {
			log.Fatalf("undo: %v", err)
		}
	}
	for store.GetStats().CanRedo {
		if _, err := store.Redo(ctx); err != nil {
			log.Fatalf("redo: %v", err)
		}
	}
	log.Printf("undo/redo walk complete, back at entry %d", store.CurrentIndex())

	// Persist and reload through SQLite.
	kv, err := storage.OpenSQLite(*dbPath)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer kv.Close()

	persister := storage.NewPersister(kv, opts.BackupCount)
	if err := persister.Save(ctx, "demo", store.ExportState()); err != nil {
		log.Fatalf("save history: %v", err)
	}
	state, err := persister.Load(ctx, "demo")
	if err != nil {
		log.Fatalf("load history: %v", err)
	}
	restored, err := history.NewStore(opts, doc.NewContent(*width, *height))
	if err != nil {
		log.Fatalf("create store: %v", err)
	}
	if err := restored.ImportState(ctx, state); err != nil {
		log.Fatalf("import history: %v", err)
	}
	log.Printf("history round-tripped through %s: %d entries at index %d",
		*dbPath, len(restored.Entries()), restored.CurrentIndex())

	if *output != "" {
		final, err := restored.RestoreToIndex(ctx, restored.CurrentIndex())
		if err != nil {
			log.Fatalf("restore: %v", err)
		}
		layer := final.FindLayer(paintLayer.ID)
		if layer == nil || layer.Data == nil {
			log.Fatal("paint layer missing after restore")
		}
		if err := layer.Data.SavePNG(*output); err != nil {
			log.Fatalf("save png: %v", err)
		}
		log.Printf("painted layer saved to %s", *output)
	}
}

// paintStrokes paints onto the given layer and records the edit. The
// pixel encode for the stroke region runs as a pool job with progress
// reporting, the way a UI thread would offload it.
func paintStrokes(ctx context.Context, store *history.Store, content *doc.EditorContent, layerID string) *doc.EditorContent {
	next := content.Clone()
	next.Layers = doc.WithLayerUpdated(next.Layers, layerID, func(l *doc.Layer) *doc.Layer {
		px := l.Data.Clone()
		px.FillRect(pentimento.Rect{X: 80, Y: 90, W: 220, H: 40}, pentimento.Color{R: 255, G: 96, B: 64, A: 255})
		px.FillRect(pentimento.Rect{X: 140, Y: 200, W: 60, H: 180}, pentimento.Color{R: 64, G: 160, B: 255, A: 255})
		l.Data = px
		return l
	})

	pool := codec.NewPool(0)
	defer pool.Close()

	task := pool.Submit(ctx, func(ctx context.Context, progress func(float64)) error {
		progress(0)
		_, err := store.AddEntry(ctx, next, "Paint stroke", false)
		progress(1)
		return err
	}, func(p float64) {
		log.Printf("paint stroke commit: %3.0f%%", p*100)
	})
	if err := task.Wait(ctx); err != nil {
		log.Fatalf("paint stroke: %v", err)
	}
	return next
}

func mustAdd(ctx context.Context, store *history.Store, content *doc.EditorContent, label string) {
	snap, err := store.AddEntry(ctx, content, label, false)
	if err != nil {
		log.Fatalf("%s: %v", label, err)
	}
	log.Printf("recorded %q as %s entry (%d bytes estimated)", label, snap.Type, snap.EstimatedSize)
}

func report(store *history.Store) {
	stats := store.GetStats()
	log.Printf("history: %d entries (%d full, %d delta), %d bytes, index %d",
		stats.EntryCount, stats.FullCount, stats.DeltaCount, stats.MemoryBytes, stats.CurrentIndex)
	for i, e := range store.Entries() {
		log.Printf("  [%d] %-5s %-24s %s", i, e.Type, e.Label, e.Change)
	}
}
