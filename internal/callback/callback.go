package callback

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"onboardbot/internal/flow"
)

// Action distinguishes what answering a prompt button does.
type Action string

const (
	// ActionClassify assigns the entry's class to the referenced document.
	ActionClassify Action = "classify"
	// ActionDelete removes the referenced document entirely.
	ActionDelete Action = "delete"
)

// Entry is one durable token record. Tokens are issued in batches before
// the prompt referencing them is sent and are never reused for a
// different document.
type Entry struct {
	Token      string
	Action     Action
	Class      flow.DocumentClass
	DocumentID string
	StorageRef string
	Label      string
}

// Button pairs a display label with the token the transport sends back.
type Button struct {
	Label string
	Token string
}

// Persister stores token batches durably.
type Persister interface {
	SaveCallbackTokens(ctx context.Context, entries []Entry) error
}

// Issuer creates token batches for classification prompts.
type Issuer struct {
	persister Persister
}

// NewIssuer constructs an Issuer backed by the given persister.
func NewIssuer(persister Persister) *Issuer {
	return &Issuer{persister: persister}
}

// IssueForDocument creates one token per real document class plus a
// delete token, persists the batch, and returns the prompt buttons in
// presentation order. The batch is durable before this returns; a sent
// prompt whose tokens are not yet stored would be a correctness bug.
func (i *Issuer) IssueForDocument(ctx context.Context, documentID, storageRef string) ([]Button, error) {
	classes := flow.RealClasses()
	entries := make([]Entry, 0, len(classes)+1)
	for _, class := range classes {
		entries = append(entries, Entry{
			Token:      uuid.NewString(),
			Action:     ActionClassify,
			Class:      class,
			DocumentID: documentID,
			StorageRef: storageRef,
			Label:      class.Label(),
		})
	}
	entries = append(entries, Entry{
		Token:      uuid.NewString(),
		Action:     ActionDelete,
		DocumentID: documentID,
		StorageRef: storageRef,
		Label:      "None of them, delete it",
	})

	if err := i.persister.SaveCallbackTokens(ctx, entries); err != nil {
		return nil, fmt.Errorf("persist callback tokens: %w", err)
	}

	buttons := make([]Button, len(entries))
	for idx, entry := range entries {
		buttons[idx] = Button{Label: entry.Label, Token: entry.Token}
	}
	return buttons, nil
}
