package storage

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func openTestKV(t *testing.T) *SQLiteKV {
	t.Helper()
	kv, err := OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { kv.Close() })
	return kv
}

func TestSQLiteKVGetSet(t *testing.T) {
	ctx := context.Background()
	kv := openTestKV(t)

	if _, err := kv.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) = %v, want ErrNotFound", err)
	}

	value := []byte{0x00, 0x01, 0xff, 0xfe}
	if err := kv.Set(ctx, "a", value); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := kv.Get(ctx, "a")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !bytes.Equal(got, value) {
		t.Errorf("Get = %x, want %x", got, value)
	}

	// Overwrite.
	if err := kv.Set(ctx, "a", []byte("second")); err != nil {
		t.Fatal(err)
	}
	if got, _ := kv.Get(ctx, "a"); string(got) != "second" {
		t.Errorf("Get after overwrite = %q", got)
	}
}

func TestSQLiteKVDelete(t *testing.T) {
	ctx := context.Background()
	kv := openTestKV(t)

	if err := kv.Set(ctx, "a", []byte("x")); err != nil {
		t.Fatal(err)
	}
	if err := kv.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := kv.Get(ctx, "a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete = %v, want ErrNotFound", err)
	}
	// Deleting an absent key is fine.
	if err := kv.Delete(ctx, "a"); err != nil {
		t.Errorf("Delete absent key: %v", err)
	}
}

func TestSQLiteKVKeys(t *testing.T) {
	ctx := context.Background()
	kv := openTestKV(t)

	for _, key := range []string{"history:doc1", "history:doc1:tmp", "history:doc2", "other"} {
		if err := kv.Set(ctx, key, []byte("v")); err != nil {
			t.Fatal(err)
		}
	}

	keys, err := kv.Keys(ctx, "history:doc1")
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	want := []string{"history:doc1", "history:doc1:tmp"}
	if len(keys) != len(want) {
		t.Fatalf("Keys = %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("Keys[%d] = %q, want %q", i, keys[i], want[i])
		}
	}
}

func TestSQLiteKVKeysLiteralPrefix(t *testing.T) {
	ctx := context.Background()
	kv := openTestKV(t)

	// '%' and '_' in keys must match literally, not as LIKE wildcards.
	for _, key := range []string{"history:a%b", "history:axb", "history:a_b", "history:aXb"} {
		if err := kv.Set(ctx, key, []byte("v")); err != nil {
			t.Fatal(err)
		}
	}

	keys, err := kv.Keys(ctx, "history:a%")
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	if len(keys) != 1 || keys[0] != "history:a%b" {
		t.Errorf("Keys(%%-prefix) = %v, want only the literal match", keys)
	}

	keys, err = kv.Keys(ctx, "history:a_")
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	if len(keys) != 1 || keys[0] != "history:a_b" {
		t.Errorf("Keys(_-prefix) = %v, want only the literal match", keys)
	}
}

func TestSQLiteKVInMemory(t *testing.T) {
	kv, err := OpenSQLite("")
	if err != nil {
		t.Fatalf("OpenSQLite(in-memory): %v", err)
	}
	defer kv.Close()

	ctx := context.Background()
	if err := kv.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatal(err)
	}
	if got, err := kv.Get(ctx, "k"); err != nil || string(got) != "v" {
		t.Errorf("Get = (%q, %v)", got, err)
	}
}
