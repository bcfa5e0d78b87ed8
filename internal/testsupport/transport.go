package testsupport

import (
	"bytes"
	"context"
	"io"
	"sync"

	"onboardbot/internal/transport"
)

// FakeResponder records outbound responses for assertions.
type FakeResponder struct {
	mu      sync.Mutex
	sent    []transport.Outbound
	acked   []string
	SendErr error
}

func (f *FakeResponder) Send(_ context.Context, out transport.Outbound) error {
	if f.SendErr != nil {
		return f.SendErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, out)
	return nil
}

func (f *FakeResponder) AckCallback(_ context.Context, queryID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.acked = append(f.acked, queryID)
	return nil
}

// Sent returns a copy of everything sent so far.
func (f *FakeResponder) Sent() []transport.Outbound {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := make([]transport.Outbound, len(f.sent))
	copy(cp, f.sent)
	return cp
}

// Acked returns acknowledged callback query ids.
func (f *FakeResponder) Acked() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := make([]string, len(f.acked))
	copy(cp, f.acked)
	return cp
}

// Reset clears recorded traffic.
func (f *FakeResponder) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = nil
	f.acked = nil
}

// FakeFetcher serves file content by file id.
type FakeFetcher struct {
	Files    map[string][]byte
	FetchErr error
}

func (f *FakeFetcher) FetchFile(_ context.Context, fileID string) (io.ReadCloser, error) {
	if f.FetchErr != nil {
		return nil, f.FetchErr
	}
	content, ok := f.Files[fileID]
	if !ok {
		content = []byte("stub content for " + fileID)
	}
	return io.NopCloser(bytes.NewReader(content)), nil
}

var _ transport.Responder = (*FakeResponder)(nil)

var _ transport.FileFetcher = (*FakeFetcher)(nil)
