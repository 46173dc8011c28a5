package history

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/halfpix/pentimento"
	"github.com/halfpix/pentimento/cache"
	"github.com/halfpix/pentimento/codec"
	"github.com/halfpix/pentimento/config"
	"github.com/halfpix/pentimento/delta"
	"github.com/halfpix/pentimento/doc"
)

// Sentinel errors.
var (
	ErrNilContent = errors.New("history: nil content")
	ErrIndexRange = errors.New("history: index out of range")
	ErrImport     = errors.New("history: invalid imported state")
)

// memoryPressureRatio is the fill fraction of the memory budget that
// triggers pruning and a memory-warning event.
const memoryPressureRatio = 0.9

// patchEstimate is the flat size estimate for a document-level patch.
const patchEstimate = 1024

// initialLabel names the baseline entry seeded at construction.
const initialLabel = "Initial state"

// Store is the history engine for one open document. There is one Store
// per document, constructed with explicit options; no global state.
//
// A mutex serializes AddEntry, Undo, Redo, RestoreToIndex, Clear and
// ImportState: each one read-modify-writes the entry list and current
// index, and must not interleave with another.
type Store struct {
	mu   sync.Mutex
	opts config.Options
	enc  *codec.Encoder
	bus  *eventBus

	// blobs, when set, memoizes full-frame encodes across snapshots.
	blobs *cache.BlobCache

	entries []*Snapshot
	current int

	// prev is the deep copy of the content behind the current index,
	// compared against incoming content to compute deltas.
	prev *doc.EditorContent

	// lastSnapshotID names the most recent retained full snapshot;
	// deltaRun counts the delta entries recorded since it.
	lastSnapshotID string
	deltaRun       int

	memoryBytes int

	// firstEdit forces the first AddEntry after construction or Clear
	// to record a full snapshot.
	firstEdit bool
}

// Option configures a Store at construction.
type Option func(*Store)

// WithCache shares an encoded-blob cache across stores, so identical
// pixel buffers are compressed once.
func WithCache(c *cache.BlobCache) Option {
	return func(s *Store) { s.blobs = c }
}

// NewStore creates a history store seeded with a baseline full snapshot
// of the initial content, so undo always has an anchor to return to.
func NewStore(cfg config.Options, initial *doc.EditorContent, opts ...Option) (*Store, error) {
	if initial == nil {
		return nil, ErrNilContent
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Store{
		opts:      cfg,
		enc:       codec.NewEncoder(formatFromName(cfg.DeltaFormat), cfg.DeltaQuality),
		bus:       newEventBus(),
		firstEdit: true,
	}
	for _, opt := range opts {
		opt(s)
	}

	baseline, err := s.buildFull(context.Background(), initial, initialLabel)
	if err != nil {
		return nil, fmt.Errorf("history: seed baseline: %w", err)
	}
	s.entries = []*Snapshot{baseline}
	s.current = 0
	s.memoryBytes = baseline.EstimatedSize
	s.lastSnapshotID = baseline.ID
	s.prev = initial.Clone()
	return s, nil
}

func formatFromName(name string) codec.Format {
	switch name {
	case "png":
		return codec.FormatPNG
	case "jpeg":
		return codec.FormatJPEG
	case "bmp":
		return codec.FormatBMP
	default:
		return codec.FormatZstdRaw
	}
}

// Subscribe registers a handler for one event kind and returns the
// function that removes it.
func (s *Store) Subscribe(kind EventKind, h Handler) func() {
	return s.bus.subscribe(kind, h)
}

// AddEntry records a committed edit. Any redo branch beyond the current
// index is discarded first. The entry is a full snapshot when this is the
// first edit, force is set, no full snapshot is tracked, the delta run
// since the last full snapshot has reached the snapshot interval, the
// computed delta set is empty, or delta computation fails (logged, never
// fatal). Otherwise it is a delta entry against the previous content.
func (s *Store) AddEntry(ctx context.Context, content *doc.EditorContent, label string, force bool) (*Snapshot, error) {
	if content == nil {
		return nil, ErrNilContent
	}
	s.mu.Lock()

	if s.current < len(s.entries)-1 {
		for _, e := range s.entries[s.current+1:] {
			s.memoryBytes -= e.EstimatedSize
		}
		s.entries = s.entries[:s.current+1]
		s.recountLocked()
	}

	needFull := s.firstEdit || force || s.lastSnapshotID == "" ||
		s.deltaRun >= s.opts.SnapshotInterval

	// A delta entry whose anchoring full snapshot is about to be evicted
	// could never be reconstructed; record a full snapshot instead.
	if !needFull && len(s.entries)+1 > s.opts.MaxEntries {
		evict := len(s.entries) + 1 - s.opts.MaxEntries
		if s.anchorLocked() < evict {
			needFull = true
		}
	}

	var snap *Snapshot
	if !needFull {
		res, err := delta.Compute(ctx, s.prev, content, s.enc)
		switch {
		case err != nil:
			pentimento.Logger().Warn("delta computation failed, recording full snapshot",
				"label", label, "error", err)
			needFull = true
		case res.Empty():
			// An empty delta would anchor nothing; record a full
			// snapshot instead.
			needFull = true
		default:
			snap = s.buildDelta(res, label)
		}
	}
	if needFull {
		full, err := s.buildFull(ctx, content, label)
		if err != nil {
			s.mu.Unlock()
			return nil, err
		}
		snap = full
	}

	s.entries = append(s.entries, snap)
	s.current = len(s.entries) - 1
	s.memoryBytes += snap.EstimatedSize
	if snap.Type == SnapshotFull {
		s.lastSnapshotID = snap.ID
		s.deltaRun = 0
	} else {
		s.deltaRun++
	}
	s.prev = content.Clone()
	s.firstEdit = false

	s.enforceMaxEntriesLocked()
	warned := s.enforceMemoryLocked()

	stats := s.statsLocked()
	s.mu.Unlock()

	if warned {
		s.bus.emit(Event{Kind: EventMemoryWarning, Stats: stats})
	}
	s.bus.emit(Event{Kind: EventEntryAdded, Stats: stats})
	return snap, nil
}

// buildFull assembles a full snapshot: a pixel-free content copy plus the
// encoded buffer of every pixel-carrying layer.
func (s *Store) buildFull(ctx context.Context, content *doc.EditorContent, label string) (*Snapshot, error) {
	light := content.CloneLight()

	byID, order := doc.Flatten(content.Layers)
	var pixels map[string]*codec.ImageDiff
	for _, id := range order {
		l := byID[id]
		if l.Data == nil {
			continue
		}
		diff, err := s.encodeFull(ctx, id, l.Data)
		if err != nil {
			return nil, fmt.Errorf("history: encode layer %q: %w", id, err)
		}
		if pixels == nil {
			pixels = make(map[string]*codec.ImageDiff)
		}
		pixels[id] = diff
	}

	size := light.EstimateSize()
	for _, diff := range pixels {
		size += diff.Size()
	}
	return &Snapshot{
		ID:            doc.NewID(),
		Type:          SnapshotFull,
		Timestamp:     time.Now(),
		Label:         label,
		Change:        ClassifyLabel(label),
		EstimatedSize: size,
		Content:       light,
		PixelData:     pixels,
	}, nil
}

func (s *Store) buildDelta(res *delta.Result, label string) *Snapshot {
	size := delta.EstimateSize(res.Deltas)
	patch := res.Patch
	if patch.Empty() {
		patch = nil
	} else {
		size += patchEstimate
	}
	return &Snapshot{
		ID:             doc.NewID(),
		Type:           SnapshotDelta,
		Timestamp:      time.Now(),
		Label:          label,
		Change:         ClassifyLabel(label),
		EstimatedSize:  size,
		Deltas:         res.Deltas,
		Patch:          patch,
		BaseSnapshotID: s.lastSnapshotID,
	}
}

// encodeFull compresses one layer's whole buffer, consulting the shared
// blob cache when one is attached.
func (s *Store) encodeFull(ctx context.Context, layerID string, px *pentimento.Pixmap) (*codec.ImageDiff, error) {
	if s.blobs == nil {
		return s.enc.ComputeImageDiff(ctx, nil, px)
	}
	key := blobKey(layerID, px)
	if blob, ok := s.blobs.Get(key); ok {
		return &codec.ImageDiff{
			Type: codec.DiffFull,
			Rect: pentimento.Rect{W: px.Width(), H: px.Height()},
			Blob: blob,
		}, nil
	}
	diff, err := s.enc.ComputeImageDiff(ctx, nil, px)
	if err != nil {
		return nil, err
	}
	if diff.Blob != nil {
		s.blobs.Set(key, diff.Blob)
	}
	return diff, nil
}

// blobKey identifies one layer buffer's content. The pixel hash keeps a
// stale cache entry from ever being served for changed pixels.
func blobKey(layerID string, px *pentimento.Pixmap) string {
	h := fnv.New64a()
	h.Write(px.Data())
	return fmt.Sprintf("%s@%dx%d:%016x", layerID, px.Width(), px.Height(), h.Sum64())
}

// Undo steps to the previous entry and returns its reconstructed
// content, or (nil, nil) when already at the oldest entry.
func (s *Store) Undo(ctx context.Context) (*doc.EditorContent, error) {
	s.mu.Lock()
	if s.current <= 0 {
		s.mu.Unlock()
		return nil, nil
	}
	content, err := s.restoreLocked(ctx, s.current-1)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.current--
	s.prev = content.Clone()
	stats := s.statsLocked()
	s.mu.Unlock()

	s.bus.emit(Event{Kind: EventUndo, Stats: stats})
	return content, nil
}

// Redo steps to the next entry and returns its reconstructed content, or
// (nil, nil) when already at the newest entry.
func (s *Store) Redo(ctx context.Context) (*doc.EditorContent, error) {
	s.mu.Lock()
	if s.current >= len(s.entries)-1 {
		s.mu.Unlock()
		return nil, nil
	}
	content, err := s.restoreLocked(ctx, s.current+1)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.current++
	s.prev = content.Clone()
	stats := s.statsLocked()
	s.mu.Unlock()

	s.bus.emit(Event{Kind: EventRedo, Stats: stats})
	return content, nil
}

// RestoreToIndex reconstructs the content at an arbitrary history index
// and moves the current index there.
func (s *Store) RestoreToIndex(ctx context.Context, index int) (*doc.EditorContent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.entries) {
		return nil, fmt.Errorf("%w: index %d with %d entries", ErrIndexRange, index, len(s.entries))
	}
	content, err := s.restoreLocked(ctx, index)
	if err != nil {
		return nil, err
	}
	s.current = index
	s.prev = content.Clone()
	return content, nil
}

// Clear resets the history to a fresh baseline snapshot of the current
// content.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	baseline, err := s.buildFull(ctx, s.prev, initialLabel)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.entries = []*Snapshot{baseline}
	s.current = 0
	s.memoryBytes = baseline.EstimatedSize
	s.lastSnapshotID = baseline.ID
	s.deltaRun = 0
	s.firstEdit = true
	stats := s.statsLocked()
	s.mu.Unlock()

	s.bus.emit(Event{Kind: EventClear, Stats: stats})
	return nil
}

// Entries returns a copy of the entry list. The snapshots themselves are
// shared and must be treated as read-only.
func (s *Store) Entries() []*Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Snapshot, len(s.entries))
	copy(out, s.entries)
	return out
}

// CurrentIndex returns the index of the entry the document currently
// reflects.
func (s *Store) CurrentIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// recountLocked rebuilds lastSnapshotID and deltaRun from the entry list.
func (s *Store) recountLocked() {
	s.lastSnapshotID = ""
	s.deltaRun = 0
	for i := len(s.entries) - 1; i >= 0; i-- {
		if s.entries[i].Type == SnapshotFull {
			s.lastSnapshotID = s.entries[i].ID
			s.deltaRun = len(s.entries) - 1 - i
			return
		}
	}
	s.deltaRun = len(s.entries)
}

// anchorLocked returns the index of the nearest full snapshot at or
// before the current index, or -1.
func (s *Store) anchorLocked() int {
	for i := s.current; i >= 0; i-- {
		if s.entries[i].Type == SnapshotFull {
			return i
		}
	}
	return -1
}

// dropFrontLocked evicts the oldest entry. Callers guarantee the current
// index is not at the front and at least one entry remains.
func (s *Store) dropFrontLocked() {
	s.memoryBytes -= s.entries[0].EstimatedSize
	s.entries = s.entries[1:]
	s.current--
}

// dropUnreachableLocked evicts leading delta entries. A delta entry with
// no full snapshot before it cannot be reconstructed, so keeping it would
// only turn a later undo into a loud failure.
func (s *Store) dropUnreachableLocked() {
	for len(s.entries) > 1 && s.current > 0 && s.entries[0].Type == SnapshotDelta {
		s.dropFrontLocked()
	}
}

// enforceMaxEntriesLocked evicts from the front. Eviction stops before
// the full snapshot the current entry replays from; AddEntry already
// guarantees that anchor is never in the eviction range.
func (s *Store) enforceMaxEntriesLocked() {
	for len(s.entries) > s.opts.MaxEntries && s.anchorLocked() > 0 {
		s.dropFrontLocked()
	}
	s.dropUnreachableLocked()
	s.recountLocked()
}

// enforceMemoryLocked prunes oldest entries once usage crosses the
// pressure threshold. Being over budget is not an error: when even
// pruning cannot get under the limit it is logged and tolerated.
func (s *Store) enforceMemoryLocked() bool {
	limit := s.opts.MaxMemoryBytes()
	if s.memoryBytes <= int(float64(limit)*memoryPressureRatio) {
		return false
	}
	for s.memoryBytes > limit && len(s.entries) > 1 && s.anchorLocked() > 0 {
		s.dropFrontLocked()
	}
	s.dropUnreachableLocked()
	s.recountLocked()
	if s.memoryBytes > limit {
		pentimento.Logger().Warn("history still over memory budget after pruning",
			"memoryBytes", s.memoryBytes, "limitBytes", limit, "entries", len(s.entries))
	}
	return true
}

// State is the serializable form of a store, round-tripped through the
// persistence boundary.
type State struct {
	Entries      []*Snapshot `json:"entries"`
	CurrentIndex int         `json:"currentIndex"`
}

// ExportState returns a deep copy of the entry list and current index.
func (s *Store) ExportState() *State {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := make([]*Snapshot, len(s.entries))
	for i, e := range s.entries {
		entries[i] = e.Clone()
	}
	return &State{Entries: entries, CurrentIndex: s.current}
}

// ImportState replaces the store's contents with a previously exported
// state. The state is validated by reconstructing the current index
// before it is committed; on failure the store is left untouched.
func (s *Store) ImportState(ctx context.Context, st *State) error {
	if st == nil || len(st.Entries) == 0 {
		return fmt.Errorf("%w: no entries", ErrImport)
	}
	if st.CurrentIndex < 0 || st.CurrentIndex >= len(st.Entries) {
		return fmt.Errorf("%w: currentIndex %d with %d entries", ErrImport, st.CurrentIndex, len(st.Entries))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prevEntries, prevCurrent := s.entries, s.current

	s.entries = make([]*Snapshot, len(st.Entries))
	for i, e := range st.Entries {
		s.entries[i] = e.Clone()
	}
	s.current = st.CurrentIndex

	content, err := s.restoreLocked(ctx, s.current)
	if err != nil {
		s.entries, s.current = prevEntries, prevCurrent
		return fmt.Errorf("%w: reconstruct index %d: %w", ErrImport, st.CurrentIndex, err)
	}

	s.prev = content
	s.memoryBytes = 0
	for _, e := range s.entries {
		s.memoryBytes += e.EstimatedSize
	}
	s.recountLocked()
	s.firstEdit = false
	return nil
}
