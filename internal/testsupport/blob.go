package testsupport

import (
	"context"
	"fmt"
	"io"
	"path"
	"sync"

	"onboardbot/internal/blob"
)

// FakeBlobStore keeps uploaded objects in memory.
type FakeBlobStore struct {
	mu        sync.Mutex
	objects   map[string][]byte
	uploads   int
	UploadErr error
	MoveErr   error
	DeleteErr error
}

func NewFakeBlobStore() *FakeBlobStore {
	return &FakeBlobStore{objects: make(map[string][]byte)}
}

func (f *FakeBlobStore) Upload(_ context.Context, ownerID, name, _ string, content io.Reader) (string, error) {
	if f.UploadErr != nil {
		return "", f.UploadErr
	}
	data, err := io.ReadAll(content)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads++
	ref := path.Join("inbox", ownerID, name)
	f.objects[ref] = data
	return ref, nil
}

func (f *FakeBlobStore) Move(_ context.Context, ref, folder string) (string, error) {
	if f.MoveErr != nil {
		return "", f.MoveErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[ref]
	if !ok {
		return "", fmt.Errorf("object %s not found", ref)
	}
	target := path.Join(folder, path.Base(ref))
	delete(f.objects, ref)
	f.objects[target] = data
	return target, nil
}

func (f *FakeBlobStore) Delete(_ context.Context, ref string) error {
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, ref)
	return nil
}

// Has reports whether an object exists at ref.
func (f *FakeBlobStore) Has(ref string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[ref]
	return ok
}

// Uploads returns how many uploads succeeded.
func (f *FakeBlobStore) Uploads() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.uploads
}

var _ blob.Store = (*FakeBlobStore)(nil)
