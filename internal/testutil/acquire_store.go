package testutil

import (
	"context"
	"crypto/rand"
	"os"
	"path/filepath"

	"github.com/andrebq/postgate/credentials"
)

type (
	TestLog interface {
		Fatal(...interface{})
		Log(...interface{})
	}
)

var (
	// FastParams keeps argon2 cheap enough for tests, never use it outside them.
	FastParams = credentials.Params{
		Memory:      1024,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	}
)

func AcquireWritableStore(ctx context.Context, t TestLog) (*credentials.Store, func()) {
	dir, err := os.MkdirTemp("", "postgate-tests")
	if err != nil {
		t.Fatal(err)
	}
	store, err := credentials.OpenStore(ctx, filepath.Join(dir, "credentials.db"), true)
	if err != nil {
		t.Fatal(err)
	}
	return store, func() {
		err := store.Close()
		if err != nil {
			t.Log("unable to close credential store", err)
		}
		err = os.RemoveAll(dir)
		if err != nil {
			t.Log("unable to cleanup temp dir", dir)
		}
	}
}

// AcquireStore returns a read-only store holding a hash for every entry in
// passwords (slug -> plaintext).
func AcquireStore(ctx context.Context, t TestLog, passwords map[string]string) (*credentials.Store, func()) {
	dir, err := os.MkdirTemp("", "postgate-tests")
	if err != nil {
		t.Fatal(err)
	}
	file := filepath.Join(dir, "credentials.db")
	store, err := credentials.OpenStore(ctx, file, true)
	if err != nil {
		t.Fatal(err)
	}
	for slug, plaintext := range passwords {
		hash, err := credentials.HashWith(FastParams, plaintext, rand.Reader)
		if err != nil {
			t.Fatal(err)
		}
		err = store.Upsert(ctx, slug, hash)
		if err != nil {
			t.Fatal(err)
		}
	}
	store.Close()
	// re-open as read-only, like the verifier does
	store, err = credentials.OpenStore(ctx, file, false)
	if err != nil {
		t.Fatal(err)
	}
	return store, func() {
		err := store.Close()
		if err != nil {
			t.Log("unable to close credential store", err)
		}
		err = os.RemoveAll(dir)
		if err != nil {
			t.Log("unable to cleanup temp dir", dir)
		}
	}
}
