package engine_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"onboardbot/internal/callback"
	"onboardbot/internal/engine"
	"onboardbot/internal/flow"
	"onboardbot/internal/logging"
	"onboardbot/internal/store"
	"onboardbot/internal/testsupport"
	"onboardbot/internal/transport"
)

type recordingLanes struct {
	mu       sync.Mutex
	released []string
}

func (l *recordingLanes) Do(_ string, task func()) error {
	task()
	return nil
}

func (l *recordingLanes) Release(username string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.released = append(l.released, username)
}

func (l *recordingLanes) Released() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	cp := make([]string, len(l.released))
	copy(cp, l.released)
	return cp
}

type recordingWaker struct {
	mu    sync.Mutex
	wakes int
}

func (w *recordingWaker) Wake() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.wakes++
}

func (w *recordingWaker) Wakes() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.wakes
}

type harness struct {
	engine    *engine.Engine
	store     *store.Store
	blobs     *testsupport.FakeBlobStore
	responder *testsupport.FakeResponder
	fetcher   *testsupport.FakeFetcher
	lanes     *recordingLanes
	waker     *recordingWaker
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	h := &harness{
		store:     testsupport.MustOpenStore(t, cfg),
		blobs:     testsupport.NewFakeBlobStore(),
		responder: &testsupport.FakeResponder{},
		fetcher:   &testsupport.FakeFetcher{},
		lanes:     &recordingLanes{},
		waker:     &recordingWaker{},
	}
	h.engine = engine.New(engine.Options{
		Store:     h.store,
		Blobs:     h.blobs,
		Fetcher:   h.fetcher,
		Responder: h.responder,
		Lanes:     h.lanes,
		Waker:     h.waker,
		Logger:    logging.NewNop(),
	})
	return h
}

var sender = transport.Sender{Username: "avpod", FirstName: "Andrei"}

func textMessage(text string) transport.Message {
	return transport.Message{From: sender, ChatID: 100, MessageID: 1, Text: text}
}

func documentMessage(fileName string) transport.Message {
	return transport.Message{
		From:   sender,
		ChatID: 100,
		Document: &transport.Document{
			FileID:   "file-" + fileName,
			FileName: fileName,
			MimeType: "application/pdf",
		},
	}
}

func (h *harness) handle(t *testing.T, event transport.Event) {
	t.Helper()
	if err := h.engine.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
}

func (h *harness) loadUser(t *testing.T) *flow.UserRecord {
	t.Helper()
	user, err := h.store.LoadUser(context.Background(), sender.Username)
	if err != nil {
		t.Fatalf("LoadUser: %v", err)
	}
	if user == nil {
		t.Fatal("user not found")
	}
	return user
}

// classifyViaCallback uploads a document and answers its classification
// prompt with the given class, returning all traffic sent during the
// callback processing.
func (h *harness) classifyViaCallback(t *testing.T, fileName string, class flow.DocumentClass) []transport.Outbound {
	t.Helper()
	ctx := context.Background()

	h.handle(t, documentMessage(fileName))
	user := h.loadUser(t)
	var doc *flow.DocumentRecord
	for i := range user.Documents {
		if user.Documents[i].OriginalFilename == fileName {
			doc = &user.Documents[i]
		}
	}
	if doc == nil {
		t.Fatalf("uploaded document %s not stored", fileName)
	}

	buttons, err := callback.NewIssuer(h.store).IssueForDocument(ctx, doc.ID, doc.StorageRef)
	if err != nil {
		t.Fatalf("IssueForDocument: %v", err)
	}
	var token string
	for _, b := range buttons {
		if b.Label == class.Label() {
			token = b.Token
		}
	}
	if token == "" {
		t.Fatalf("no button for class %s", class)
	}

	h.responder.Reset()
	h.handle(t, transport.CallbackQuery{From: sender, ChatID: 100, MessageID: 42, QueryID: "q1", Data: token})
	return h.responder.Sent()
}

func TestFirstContactGreetsAndAdvances(t *testing.T) {
	h := newHarness(t)

	h.handle(t, textMessage("hi there"))

	sent := h.responder.Sent()
	if len(sent) != 1 {
		t.Fatalf("sent %d messages, want 1 greeting", len(sent))
	}
	greeting, ok := sent[0].(transport.TextMessage)
	if !ok || !strings.Contains(greeting.Text, "Onboarding Bot") {
		t.Fatalf("unexpected first reply: %+v", sent[0])
	}
	user := h.loadUser(t)
	if user.State != flow.StateAwaitingSubmissions {
		t.Fatalf("state = %s, want %s", user.State, flow.StateAwaitingSubmissions)
	}
	if user.FirstName != "Andrei" || user.ChatID != 100 {
		t.Fatalf("user record not filled from sender: %+v", user)
	}
}

func TestDocumentUploadStoresAndWakesScheduler(t *testing.T) {
	h := newHarness(t)
	testsupport.SeedUser(t, h.store, sender.Username, 100, flow.StateAwaitingSubmissions)

	h.handle(t, documentMessage("contract.pdf"))

	sent := h.responder.Sent()
	if len(sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(sent))
	}
	if reply, ok := sent[0].(transport.TextMessage); !ok || !strings.Contains(reply.Text, "successfully uploaded") {
		t.Fatalf("unexpected reply: %+v", sent[0])
	}

	user := h.loadUser(t)
	if len(user.Documents) != 1 {
		t.Fatalf("stored %d documents, want 1", len(user.Documents))
	}
	doc := user.Documents[0]
	if doc.Class != flow.ClassUnclassified {
		t.Errorf("class = %s, want %s", doc.Class, flow.ClassUnclassified)
	}
	if doc.OriginalFilename != "contract.pdf" || doc.StoredFilename != "avpod_contract.pdf" {
		t.Errorf("unexpected filenames: %+v", doc)
	}
	if !h.blobs.Has(doc.StorageRef) {
		t.Errorf("no blob stored at %s", doc.StorageRef)
	}
	if user.State != flow.StateAwaitingClassification {
		t.Errorf("state = %s, want %s", user.State, flow.StateAwaitingClassification)
	}
	if h.waker.Wakes() != 1 {
		t.Errorf("scheduler woken %d times, want 1", h.waker.Wakes())
	}
}

func TestPhotoUploadKeepsLargestAndThumbnail(t *testing.T) {
	h := newHarness(t)
	testsupport.SeedUser(t, h.store, sender.Username, 100, flow.StateAwaitingSubmissions)

	h.handle(t, transport.Message{
		From:   sender,
		ChatID: 100,
		Photos: []transport.PhotoSize{
			{FileID: "photo-small", Width: 90, Height: 90},
			{FileID: "photo-large", Width: 1280, Height: 960},
			{FileID: "photo-medium", Width: 320, Height: 240},
		},
	})

	user := h.loadUser(t)
	if len(user.Documents) != 1 {
		t.Fatalf("stored %d documents, want 1", len(user.Documents))
	}
	doc := user.Documents[0]
	if doc.TransportFileID != "photo-large" {
		t.Errorf("stored file id = %s, want photo-large", doc.TransportFileID)
	}
	if doc.ThumbnailFileID != "photo-small" {
		t.Errorf("thumbnail file id = %s, want photo-small", doc.ThumbnailFileID)
	}
	if !strings.Contains(doc.StoredFilename, "avpod_photo_") {
		t.Errorf("unexpected stored name %s", doc.StoredFilename)
	}
}

func TestUploadFailureRepliesWithError(t *testing.T) {
	h := newHarness(t)
	testsupport.SeedUser(t, h.store, sender.Username, 100, flow.StateAwaitingSubmissions)
	h.blobs.UploadErr = errors.New("bucket unavailable")

	h.handle(t, documentMessage("contract.pdf"))

	sent := h.responder.Sent()
	if len(sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(sent))
	}
	if reply, ok := sent[0].(transport.TextMessage); !ok || !strings.Contains(reply.Text, "error during upload") {
		t.Fatalf("unexpected reply: %+v", sent[0])
	}
	if len(h.loadUser(t).Documents) != 0 {
		t.Error("failed upload left a document record")
	}
	if h.waker.Wakes() != 0 {
		t.Error("failed upload woke the scheduler")
	}
}

func TestCallbackClassifyMovesBlobAndRecords(t *testing.T) {
	h := newHarness(t)
	testsupport.SeedUser(t, h.store, sender.Username, 100, flow.StateAwaitingSubmissions)

	sent := h.classifyViaCallback(t, "passport.pdf", flow.ClassPassport)

	if len(h.responder.Acked()) != 1 {
		t.Errorf("callback acked %d times, want 1", len(h.responder.Acked()))
	}
	if len(sent) != 1 {
		t.Fatalf("sent %d messages, want 1 prompt deletion", len(sent))
	}
	del, ok := sent[0].(transport.DeleteMessage)
	if !ok || del.MessageID != 42 {
		t.Fatalf("unexpected reply: %+v", sent[0])
	}

	user := h.loadUser(t)
	doc := user.Documents[0]
	if doc.Class != flow.ClassPassport {
		t.Errorf("class = %s, want %s", doc.Class, flow.ClassPassport)
	}
	if !strings.HasPrefix(doc.StorageRef, "passport/") {
		t.Errorf("storage ref %s not moved into the passport folder", doc.StorageRef)
	}
	if !h.blobs.Has(doc.StorageRef) {
		t.Errorf("no blob at moved ref %s", doc.StorageRef)
	}
	// One real class present, mandatory set incomplete.
	if user.State != flow.StateAwaitingSubmissions {
		t.Errorf("state = %s, want %s", user.State, flow.StateAwaitingSubmissions)
	}
}

func TestCallbackDeleteRemovesDocumentAndBlob(t *testing.T) {
	h := newHarness(t)
	testsupport.SeedUser(t, h.store, sender.Username, 100, flow.StateAwaitingSubmissions)

	h.handle(t, documentMessage("blurry.jpg"))
	user := h.loadUser(t)
	doc := user.Documents[0]

	buttons, err := callback.NewIssuer(h.store).IssueForDocument(context.Background(), doc.ID, doc.StorageRef)
	if err != nil {
		t.Fatalf("IssueForDocument: %v", err)
	}
	deleteToken := buttons[len(buttons)-1].Token

	h.responder.Reset()
	h.handle(t, transport.CallbackQuery{From: sender, ChatID: 100, MessageID: 7, QueryID: "q2", Data: deleteToken})

	if len(h.loadUser(t).Documents) != 0 {
		t.Error("document record survived deletion")
	}
	if h.blobs.Has(doc.StorageRef) {
		t.Error("blob survived deletion")
	}
	sent := h.responder.Sent()
	if len(sent) != 1 {
		t.Fatalf("sent %d messages, want 1 prompt deletion", len(sent))
	}
	if _, ok := sent[0].(transport.DeleteMessage); !ok {
		t.Fatalf("unexpected reply: %+v", sent[0])
	}
}

func TestStaleCallbackIsSilentNoOp(t *testing.T) {
	h := newHarness(t)
	testsupport.SeedUser(t, h.store, sender.Username, 100, flow.StateAwaitingClassification)

	h.handle(t, transport.CallbackQuery{From: sender, ChatID: 100, MessageID: 9, QueryID: "q3", Data: "long-gone-token"})

	if len(h.responder.Sent()) != 0 {
		t.Fatalf("stale callback produced replies: %+v", h.responder.Sent())
	}
	if len(h.responder.Acked()) != 1 {
		t.Error("stale callback was not acked")
	}
}

func TestMandatoryCoverageAsksFinishQuestion(t *testing.T) {
	h := newHarness(t)
	testsupport.SeedUser(t, h.store, sender.Username, 100, flow.StateAwaitingSubmissions)

	h.classifyViaCallback(t, "passport.pdf", flow.ClassPassport)
	h.classifyViaCallback(t, "inn.pdf", flow.ClassINN)
	sent := h.classifyViaCallback(t, "snils.pdf", flow.ClassSNILS)

	if h.loadUser(t).State != flow.StateMandatorySatisfied {
		t.Fatalf("state = %s, want %s", h.loadUser(t).State, flow.StateMandatorySatisfied)
	}
	if len(sent) != 2 {
		t.Fatalf("sent %d messages, want prompt deletion plus question", len(sent))
	}
	question, ok := sent[1].(transport.TextMessage)
	if !ok || !strings.Contains(question.Text, "remaining ones") {
		t.Fatalf("unexpected follow-up: %+v", sent[1])
	}
	if len(question.ReplyKeyboard) != 2 {
		t.Fatalf("unexpected keyboard: %+v", question.ReplyKeyboard)
	}
}

func TestForcedCompletion(t *testing.T) {
	h := newHarness(t)
	testsupport.SeedUser(t, h.store, sender.Username, 100, flow.StateMandatorySatisfied)

	h.handle(t, textMessage("No, it was it, I don't have anything else"))

	user := h.loadUser(t)
	if user.State != flow.StateCompleted {
		t.Fatalf("state = %s, want %s", user.State, flow.StateCompleted)
	}
	sent := h.responder.Sent()
	if len(sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(sent))
	}
	reply, ok := sent[0].(transport.TextMessage)
	if !ok || !strings.Contains(reply.Text, "HR will connect") || !reply.RemoveKeyboard {
		t.Fatalf("unexpected completion reply: %+v", sent[0])
	}
	if released := h.lanes.Released(); len(released) != 1 || released[0] != sender.Username {
		t.Fatalf("lane not released: %v", released)
	}
}

func TestForcedCompletionIgnoresMissingMandatory(t *testing.T) {
	h := newHarness(t)
	testsupport.SeedUser(t, h.store, sender.Username, 100, flow.StateAwaitingSubmissions)
	testsupport.SeedDocument(t, h.store, sender.Username, flow.ClassPassport)

	h.handle(t, textMessage("No, it was it, I don't have anything else"))

	if h.loadUser(t).State != flow.StateCompleted {
		t.Fatal("forced completion must not depend on mandatory coverage")
	}
}

func TestYesAnswerKeepsWaiting(t *testing.T) {
	h := newHarness(t)
	testsupport.SeedUser(t, h.store, sender.Username, 100, flow.StateMandatorySatisfied)

	h.handle(t, textMessage("Yes, I have some other too."))

	if len(h.responder.Sent()) != 0 {
		t.Fatalf("yes answer produced replies: %+v", h.responder.Sent())
	}
	if h.loadUser(t).State != flow.StateMandatorySatisfied {
		t.Fatal("yes answer changed the state")
	}
}

func TestCompletedUserIsAbsorbed(t *testing.T) {
	h := newHarness(t)
	testsupport.SeedUser(t, h.store, sender.Username, 100, flow.StateCompleted)

	h.handle(t, documentMessage("late.pdf"))

	if len(h.responder.Sent()) != 0 {
		t.Fatalf("completed user got replies: %+v", h.responder.Sent())
	}
	if len(h.loadUser(t).Documents) != 0 {
		t.Error("completed user's submission was stored")
	}
	if released := h.lanes.Released(); len(released) != 1 {
		t.Fatalf("lane not released for completed user: %v", released)
	}
}
