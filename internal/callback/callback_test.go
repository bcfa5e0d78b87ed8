package callback_test

import (
	"context"
	"errors"
	"testing"

	"onboardbot/internal/callback"
	"onboardbot/internal/flow"
)

type recordingPersister struct {
	batches [][]callback.Entry
	err     error
}

func (r *recordingPersister) SaveCallbackTokens(_ context.Context, entries []callback.Entry) error {
	if r.err != nil {
		return r.err
	}
	r.batches = append(r.batches, entries)
	return nil
}

func TestIssueForDocument(t *testing.T) {
	persister := &recordingPersister{}
	issuer := callback.NewIssuer(persister)

	buttons, err := issuer.IssueForDocument(context.Background(), "doc-1", "s3/doc-1")
	if err != nil {
		t.Fatalf("IssueForDocument: %v", err)
	}

	wantCount := len(flow.RealClasses()) + 1
	if len(buttons) != wantCount {
		t.Fatalf("got %d buttons, want %d", len(buttons), wantCount)
	}
	if len(persister.batches) != 1 || len(persister.batches[0]) != wantCount {
		t.Fatalf("expected one persisted batch of %d entries", wantCount)
	}

	seen := make(map[string]struct{})
	for _, entry := range persister.batches[0] {
		if entry.Token == "" {
			t.Fatal("empty token issued")
		}
		if _, dup := seen[entry.Token]; dup {
			t.Fatalf("duplicate token %s", entry.Token)
		}
		seen[entry.Token] = struct{}{}
		if entry.DocumentID != "doc-1" || entry.StorageRef != "s3/doc-1" {
			t.Fatalf("entry does not reference document: %+v", entry)
		}
	}

	last := persister.batches[0][wantCount-1]
	if last.Action != callback.ActionDelete || last.Class != "" {
		t.Fatalf("last entry should be the delete action, got %+v", last)
	}
	for _, entry := range persister.batches[0][:wantCount-1] {
		if entry.Action != callback.ActionClassify || !entry.Class.IsReal() {
			t.Fatalf("expected classify entry with real class, got %+v", entry)
		}
	}
}

func TestIssueForDocumentPersistFailure(t *testing.T) {
	persister := &recordingPersister{err: errors.New("disk full")}
	issuer := callback.NewIssuer(persister)

	if _, err := issuer.IssueForDocument(context.Background(), "doc-1", "ref"); err == nil {
		t.Fatal("expected persist error to propagate")
	}
}
