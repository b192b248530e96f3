package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"filippo.io/age"

	"github.com/iliyamo/pdfsum/internal/config"
)

// storeContract runs the behaviour every Store must share.
func storeContract(t *testing.T, newStore func(t *testing.T) Store) {
	ctx := context.Background()

	t.Run("round trip", func(t *testing.T) {
		s := newStore(t)
		data := []byte("%PDF-1.4 hello world")

		n, err := s.Put(ctx, "a.pdf", bytes.NewReader(data))
		if err != nil {
			t.Fatalf("Put() error = %v", err)
		}
		if n != int64(len(data)) {
			t.Errorf("Put() n = %d, want %d", n, len(data))
		}

		rc, err := s.Open(ctx, "a.pdf")
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		defer rc.Close()
		got, err := io.ReadAll(rc)
		if err != nil {
			t.Fatalf("ReadAll() error = %v", err)
		}
		if !bytes.Equal(got, data) {
			t.Errorf("content = %q, want %q", got, data)
		}
	})

	t.Run("empty blob", func(t *testing.T) {
		s := newStore(t)

		n, err := s.Put(ctx, "empty.pdf", strings.NewReader(""))
		if err != nil {
			t.Fatalf("Put() error = %v", err)
		}
		if n != 0 {
			t.Errorf("Put() n = %d, want 0", n)
		}
	})

	t.Run("missing key", func(t *testing.T) {
		s := newStore(t)

		if _, err := s.Open(ctx, "nope.pdf"); !errors.Is(err, ErrNotFound) {
			t.Errorf("Open() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		s := newStore(t)
		if _, err := s.Put(ctx, "d.pdf", strings.NewReader("x")); err != nil {
			t.Fatalf("Put() error = %v", err)
		}

		if err := s.Delete(ctx, "d.pdf"); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if err := s.Delete(ctx, "d.pdf"); err != nil {
			t.Errorf("second Delete() error = %v", err)
		}
		if _, err := s.Open(ctx, "d.pdf"); !errors.Is(err, ErrNotFound) {
			t.Errorf("Open() after delete error = %v, want ErrNotFound", err)
		}
	})

	t.Run("rejects path keys", func(t *testing.T) {
		s := newStore(t)

		for _, key := range []string{"", "..", "../x.pdf", "a/b.pdf"} {
			if _, err := s.Put(ctx, key, strings.NewReader("x")); err == nil {
				t.Errorf("Put(%q) succeeded, want error", key)
			}
		}
	})
}

func TestMemoryStore(t *testing.T) {
	storeContract(t, func(t *testing.T) Store { return NewMemoryStore() })
}

func TestFileSystemStore(t *testing.T) {
	storeContract(t, func(t *testing.T) Store {
		s, err := NewFileSystemStore(filepath.Join(t.TempDir(), "blobs"))
		if err != nil {
			t.Fatalf("NewFileSystemStore() error = %v", err)
		}
		return s
	})

	t.Run("leaves no temp files", func(t *testing.T) {
		root := t.TempDir()
		s, err := NewFileSystemStore(root)
		if err != nil {
			t.Fatalf("NewFileSystemStore() error = %v", err)
		}
		if _, err := s.Put(context.Background(), "k.pdf", strings.NewReader("data")); err != nil {
			t.Fatalf("Put() error = %v", err)
		}

		entries, err := os.ReadDir(root)
		if err != nil {
			t.Fatalf("ReadDir() error = %v", err)
		}
		if len(entries) != 1 || entries[0].Name() != "k.pdf" {
			t.Errorf("directory entries = %v, want only k.pdf", entries)
		}
	})

	t.Run("cancelled context aborts write", func(t *testing.T) {
		s, err := NewFileSystemStore(t.TempDir())
		if err != nil {
			t.Fatalf("NewFileSystemStore() error = %v", err)
		}
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if _, err := s.Put(ctx, "c.pdf", strings.NewReader("data")); err == nil {
			t.Error("Put() with cancelled context succeeded")
		}
		if _, err := s.Open(context.Background(), "c.pdf"); !errors.Is(err, ErrNotFound) {
			t.Errorf("Open() error = %v, want ErrNotFound", err)
		}
	})
}

func TestAgeStore(t *testing.T) {
	newIdentity := func(t *testing.T) *age.X25519Identity {
		t.Helper()
		id, err := age.GenerateX25519Identity()
		if err != nil {
			t.Fatalf("GenerateX25519Identity() error = %v", err)
		}
		return id
	}

	storeContract(t, func(t *testing.T) Store {
		return NewAgeStoreWithIdentity(NewMemoryStore(), newIdentity(t))
	})

	t.Run("ciphertext at rest", func(t *testing.T) {
		ctx := context.Background()
		inner := NewMemoryStore()
		s := NewAgeStoreWithIdentity(inner, newIdentity(t))

		if _, err := s.Put(ctx, "secret.pdf", strings.NewReader("plain text body")); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
		rc, err := inner.Open(ctx, "secret.pdf")
		if err != nil {
			t.Fatalf("inner Open() error = %v", err)
		}
		defer rc.Close()
		raw, _ := io.ReadAll(rc)
		if bytes.Contains(raw, []byte("plain text body")) {
			t.Error("inner store holds plaintext")
		}
	})

	t.Run("loads identity file", func(t *testing.T) {
		id := newIdentity(t)
		path := filepath.Join(t.TempDir(), "key.txt")
		if err := os.WriteFile(path, []byte(id.String()+"\n"), 0600); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}

		if _, err := NewAgeStore(NewMemoryStore(), path); err != nil {
			t.Errorf("NewAgeStore() error = %v", err)
		}
		if _, err := NewAgeStore(NewMemoryStore(), filepath.Join(t.TempDir(), "missing")); err == nil {
			t.Error("NewAgeStore() with missing file succeeded")
		}
	})
}

func TestNewStoreFromConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.BlobConfig
		wantErr bool
	}{
		{
			name: "memory store",
			cfg:  config.BlobConfig{Backend: "memory"},
		},
		{
			name: "filesystem store",
			cfg:  config.BlobConfig{Backend: "filesystem", Dir: t.TempDir()},
		},
		{
			name:    "filesystem without dir",
			cfg:     config.BlobConfig{Backend: "filesystem"},
			wantErr: true,
		},
		{
			name:    "s3 without bucket",
			cfg:     config.BlobConfig{Backend: "s3"},
			wantErr: true,
		},
		{
			name:    "unknown backend",
			cfg:     config.BlobConfig{Backend: "tape"},
			wantErr: true,
		},
		{
			name:    "missing age identity",
			cfg:     config.BlobConfig{Backend: "memory", AgeIdentity: "/nonexistent/key.txt"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewStoreFromConfig(context.Background(), tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewStoreFromConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got == nil {
				t.Error("NewStoreFromConfig() returned nil store")
			}
		})
	}
}
