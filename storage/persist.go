package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/klauspost/compress/zstd"

	"github.com/halfpix/pentimento"
	"github.com/halfpix/pentimento/history"
)

// Shared zstd codec for persisted payloads, safe for concurrent use
// through EncodeAll/DecodeAll.
var (
	payloadEncoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	payloadDecoder, _ = zstd.NewReader(nil)
)

// Persister saves and loads history state for documents through a KV
// store. Payloads are zstd-compressed JSON; encoded pixel blobs survive
// the round trip byte for byte.
type Persister struct {
	kv      KV
	backups int
}

// NewPersister wraps a KV store. backupCount rotating backups are kept
// per document; zero disables backups.
func NewPersister(kv KV, backupCount int) *Persister {
	if backupCount < 0 {
		backupCount = 0
	}
	return &Persister{kv: kv, backups: backupCount}
}

func primaryKey(docID string) string { return "history:" + docID }
func tempKey(docID string) string    { return "history:" + docID + ":tmp" }
func backupKey(docID string, i int) string {
	return fmt.Sprintf("history:%s:bak:%02d", docID, i)
}

// Save persists a history state. The payload lands on a temp key first,
// so a crash between the temp and primary writes still leaves a
// loadable copy; the previous primary is rotated into the backups.
func (p *Persister) Save(ctx context.Context, docID string, state *history.State) error {
	payload, err := encodeState(state)
	if err != nil {
		return err
	}

	if err := p.kv.Set(ctx, tempKey(docID), payload); err != nil {
		return fmt.Errorf("storage: save temp copy: %w", err)
	}
	p.rotateBackups(ctx, docID)
	if err := p.kv.Set(ctx, primaryKey(docID), payload); err != nil {
		return fmt.Errorf("storage: save: %w", err)
	}
	if err := p.kv.Delete(ctx, tempKey(docID)); err != nil {
		pentimento.Logger().Warn("leaving stale temp save behind", "doc", docID, "error", err)
	}
	return nil
}

// rotateBackups shifts the existing backups down one slot and moves the
// current primary into slot zero. Rotation failures are logged, never
// fatal: backups are best-effort.
func (p *Persister) rotateBackups(ctx context.Context, docID string) {
	if p.backups == 0 {
		return
	}
	current, err := p.kv.Get(ctx, primaryKey(docID))
	if err != nil {
		return
	}
	for i := p.backups - 2; i >= 0; i-- {
		v, err := p.kv.Get(ctx, backupKey(docID, i))
		if err != nil {
			continue
		}
		if err := p.kv.Set(ctx, backupKey(docID, i+1), v); err != nil {
			pentimento.Logger().Warn("backup rotation failed", "doc", docID, "slot", i+1, "error", err)
		}
	}
	if err := p.kv.Set(ctx, backupKey(docID, 0), current); err != nil {
		pentimento.Logger().Warn("backup rotation failed", "doc", docID, "slot", 0, "error", err)
	}
}

// Load restores a document's history state, falling back from the
// primary key to the temp copy to the backups, newest first. A tier
// that is missing or fails to decode is skipped. When every tier
// misses, Load returns (nil, nil): no saved state is not an error.
func (p *Persister) Load(ctx context.Context, docID string) (*history.State, error) {
	keys := []string{primaryKey(docID), tempKey(docID)}
	for i := 0; i < p.backups; i++ {
		keys = append(keys, backupKey(docID, i))
	}

	for _, key := range keys {
		payload, err := p.kv.Get(ctx, key)
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				pentimento.Logger().Warn("load tier failed", "doc", docID, "key", key, "error", err)
			}
			continue
		}
		state, err := decodeState(payload)
		if err != nil {
			pentimento.Logger().Warn("corrupt saved state, trying next tier",
				"doc", docID, "key", key, "error", err)
			continue
		}
		return state, nil
	}
	return nil, nil
}

// Delete removes every tier the Persister writes for a document: the
// primary key, the temp copy and the backup slots. Only exact keys are
// touched, so a document whose id extends docID keeps its state.
func (p *Persister) Delete(ctx context.Context, docID string) error {
	keys := []string{primaryKey(docID), tempKey(docID)}
	for i := 0; i < p.backups; i++ {
		keys = append(keys, backupKey(docID, i))
	}
	for _, key := range keys {
		if err := p.kv.Delete(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

func encodeState(state *history.State) ([]byte, error) {
	if state == nil {
		return nil, errors.New("storage: nil state")
	}
	raw, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("storage: encode state: %w", err)
	}
	return payloadEncoder.EncodeAll(raw, make([]byte, 0, len(raw)/2)), nil
}

func decodeState(payload []byte) (*history.State, error) {
	raw, err := payloadDecoder.DecodeAll(payload, nil)
	if err != nil {
		return nil, fmt.Errorf("storage: decompress state: %w", err)
	}
	var state history.State
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("storage: decode state: %w", err)
	}
	if len(state.Entries) == 0 {
		return nil, errors.New("storage: decoded state has no entries")
	}
	return &state, nil
}
