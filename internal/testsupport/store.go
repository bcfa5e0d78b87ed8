package testsupport

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"onboardbot/internal/config"
	"onboardbot/internal/flow"
	"onboardbot/internal/store"
)

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// SeedUser inserts a user in the given state for tests.
func SeedUser(t testing.TB, st *store.Store, username string, chatID int64, state flow.FlowState) *flow.UserRecord {
	t.Helper()

	user := &flow.UserRecord{
		Username:  username,
		FirstName: "Test",
		ChatID:    chatID,
		State:     state,
	}
	if err := st.InsertUser(context.Background(), user); err != nil {
		t.Fatalf("store.InsertUser: %v", err)
	}
	return user
}

// SeedDocument appends a document with the given class for tests and
// returns its generated id.
func SeedDocument(t testing.TB, st *store.Store, username string, class flow.DocumentClass) string {
	t.Helper()

	doc := &flow.DocumentRecord{
		ID:               uuid.NewString(),
		Class:            class,
		StorageRef:       "blob/" + username + "/" + uuid.NewString(),
		OriginalFilename: "scan.jpg",
		StoredFilename:   username + "_scan.jpg",
		TransportFileID:  "file-" + uuid.NewString(),
	}
	if err := st.AppendDocument(context.Background(), username, doc); err != nil {
		t.Fatalf("store.AppendDocument: %v", err)
	}
	return doc.ID
}
