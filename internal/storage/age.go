package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"filippo.io/age"
)

// AgeStore encrypts blobs with an X25519 age identity before handing them to
// the wrapped store, and decrypts them on the way out. Sizes reported by Put
// are plaintext sizes.
type AgeStore struct {
	inner    Store
	identity *age.X25519Identity
}

// NewAgeStore wraps inner with the identity stored at identityPath, as
// written by `pdfsum keygen`.
func NewAgeStore(inner Store, identityPath string) (*AgeStore, error) {
	data, err := os.ReadFile(identityPath)
	if err != nil {
		return nil, fmt.Errorf("reading age identity: %w", err)
	}
	identities, err := age.ParseIdentities(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing age identity: %w", err)
	}
	if len(identities) == 0 {
		return nil, fmt.Errorf("no identities found in %s", identityPath)
	}
	id, ok := identities[0].(*age.X25519Identity)
	if !ok {
		return nil, fmt.Errorf("age identity in %s is not an X25519 key", identityPath)
	}
	return NewAgeStoreWithIdentity(inner, id), nil
}

func NewAgeStoreWithIdentity(inner Store, id *age.X25519Identity) *AgeStore {
	return &AgeStore{inner: inner, identity: id}
}

func (s *AgeStore) Put(ctx context.Context, key string, r io.Reader) (int64, error) {
	pr, pw := io.Pipe()
	defer pr.Close()
	cr := &countingReader{r: r}

	go func() {
		encWriter, err := age.Encrypt(pw, s.identity.Recipient())
		if err != nil {
			pw.CloseWithError(fmt.Errorf("creating encrypted writer: %w", err))
			return
		}
		if _, err := io.Copy(encWriter, cr); err != nil {
			pw.CloseWithError(fmt.Errorf("encrypting data: %w", err))
			return
		}
		pw.CloseWithError(encWriter.Close())
	}()

	if _, err := s.inner.Put(ctx, key, pr); err != nil {
		return 0, err
	}
	return cr.n, nil
}

func (s *AgeStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	rc, err := s.inner.Open(ctx, key)
	if err != nil {
		return nil, err
	}
	decReader, err := age.Decrypt(rc, s.identity)
	if err != nil {
		rc.Close()
		return nil, fmt.Errorf("creating decrypted reader: %w", err)
	}
	return struct {
		io.Reader
		io.Closer
	}{decReader, rc}, nil
}

func (s *AgeStore) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, key)
}

var _ Store = (*AgeStore)(nil)
