// Package pentimento is the editable-document history engine behind a
// layer-based raster/vector image editor.
//
// # Overview
//
// pentimento holds the in-memory document model of one open image (layers,
// groups, text, vector shapes, paths, guides, selection) and the undo/redo
// machinery on top of it. History is kept memory-bounded by recording most
// edits as compressed per-layer deltas against periodic full snapshots, and
// arbitrary historical states are rebuilt by replaying deltas forward from
// the nearest snapshot.
//
// # Quick Start
//
//	import (
//	    "github.com/halfpix/pentimento/config"
//	    "github.com/halfpix/pentimento/doc"
//	    "github.com/halfpix/pentimento/history"
//	)
//
//	content := doc.NewContent(800, 600)
//	store, err := history.NewStore(config.DefaultOptions(), content)
//	if err != nil {
//	    // handle err
//	}
//
//	// Commit an edit (the surrounding app mutated content into next).
//	store.AddEntry(ctx, next, "Paint stroke", false)
//
//	// Step back and forward.
//	prev, _ := store.Undo(ctx)
//	next2, _ := store.Redo(ctx)
//
// # Architecture
//
// The module is organized into:
//   - Root: Pixmap (RGBA pixel buffer), Rect, logging plumbing
//   - doc: the document model (pure data, copy-on-write updates)
//   - codec: pixel-buffer compression and bounded region diffing
//   - delta: per-layer change computation between two document states
//   - history: the snapshot/delta store, reconstruction, events, stats
//   - cache: shared byte-budgeted LRU for encoded pixel blobs
//   - storage: persistence of history state to a key-value store
//   - text: text run shaping and rasterization for text layers
//
// # Coordinate System
//
// Canvas coordinates have the origin (0,0) at the top-left corner, X
// increasing right and Y increasing down. Pixel buffers are interleaved
// non-premultiplied RGBA, one byte per channel.
//
// # Logging
//
// By default the engine is silent. Call [SetLogger] with a *slog.Logger to
// enable structured logging across all sub-packages.
package pentimento
