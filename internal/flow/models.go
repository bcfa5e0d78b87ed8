package flow

import "time"

// UserRecord is the durable per-user intake record. It is owned by the
// store and only ever mutated from the user's own execution lane.
type UserRecord struct {
	Username  string
	FirstName string
	LastName  string
	ChatID    int64
	State     FlowState
	Documents []DocumentRecord
}

// DocumentRecord describes one submitted file.
type DocumentRecord struct {
	ID               string
	Class            DocumentClass
	StorageRef       string
	OriginalFilename string
	StoredFilename   string
	TransportFileID  string
	ThumbnailFileID  string
	CreatedAt        time.Time
}

// DocumentByID returns the document with the given id, or nil.
func (u *UserRecord) DocumentByID(id string) *DocumentRecord {
	for i := range u.Documents {
		if u.Documents[i].ID == id {
			return &u.Documents[i]
		}
	}
	return nil
}

// PendingDocuments returns the documents still awaiting a classification
// answer, in submission order.
func (u *UserRecord) PendingDocuments() []DocumentRecord {
	var out []DocumentRecord
	for _, doc := range u.Documents {
		if doc.Class.IsPending() {
			out = append(out, doc)
		}
	}
	return out
}

// UnclassifiedDocuments returns documents the user has not yet been
// prompted about.
func (u *UserRecord) UnclassifiedDocuments() []DocumentRecord {
	var out []DocumentRecord
	for _, doc := range u.Documents {
		if doc.Class == ClassUnclassified {
			out = append(out, doc)
		}
	}
	return out
}

// DisplayName returns a human-readable name for logs and CLI output.
func (u *UserRecord) DisplayName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return u.Username
	}
}
