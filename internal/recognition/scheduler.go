package recognition

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"onboardbot/internal/callback"
	"onboardbot/internal/flow"
	"onboardbot/internal/logging"
	"onboardbot/internal/transport"
)

const promptCaption = "Our recognition crew could not identify this document. Which type is it?"

// Storage is the durable-store slice the scheduler needs.
type Storage interface {
	ScanUsersNeedingClassification(ctx context.Context) ([]*flow.UserRecord, error)
	UpdateDocumentClass(ctx context.Context, username, documentID string, class flow.DocumentClass) (bool, error)
}

// TokenIssuer creates durable token batches for a prompt.
type TokenIssuer interface {
	IssueForDocument(ctx context.Context, documentID, storageRef string) ([]callback.Button, error)
}

// Lanes serializes per-user work. Satisfied by dispatch.Pool.
type Lanes interface {
	Do(username string, task func()) error
}

// Scheduler periodically prompts users to classify pending submissions.
type Scheduler struct {
	store     Storage
	issuer    TokenIssuer
	responder transport.Responder
	lanes     Lanes
	logger    *slog.Logger

	interval     time.Duration
	initialDelay time.Duration

	active atomic.Bool
	wake   chan struct{}
}

// New constructs a scheduler. It starts active so a restart with pending
// documents resumes prompting without an external trigger.
func New(store Storage, issuer TokenIssuer, responder transport.Responder, lanes Lanes, logger *slog.Logger, interval, initialDelay time.Duration) *Scheduler {
	s := &Scheduler{
		store:        store,
		issuer:       issuer,
		responder:    responder,
		lanes:        lanes,
		logger:       logging.NewComponentLogger(logger, "recognition"),
		interval:     interval,
		initialDelay: initialDelay,
		wake:         make(chan struct{}, 1),
	}
	s.active.Store(true)
	return s
}

// Wake reactivates the scheduler so the next tick scans immediately
// instead of idling. Called after every accepted submission.
func (s *Scheduler) Wake() {
	s.active.Store(true)
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Active reports whether the scheduler will scan on its next tick.
func (s *Scheduler) Active() bool {
	return s.active.Load()
}

// Run drives the fixed-delay loop until ctx is canceled. The next tick
// is scheduled only after the previous one finishes.
func (s *Scheduler) Run(ctx context.Context) {
	delay := s.initialDelay
	for {
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		case <-s.wake:
			timer.Stop()
		}
		s.Tick(ctx)
		delay = s.interval
	}
}

// Tick performs one scan-and-prompt pass. Exported so tests can drive
// the loop deterministically.
func (s *Scheduler) Tick(ctx context.Context) {
	if !s.active.Load() {
		return
	}

	users, err := s.store.ScanUsersNeedingClassification(ctx)
	if err != nil {
		s.logger.Error("scan for unclassified documents failed", logging.Error(err))
		return
	}
	if len(users) == 0 {
		s.active.Store(false)
		s.logger.Debug("no unclassified documents, scheduler going idle")
		return
	}

	s.logger.Info("prompting users with unclassified documents", logging.Int("users", len(users)))

	var wg sync.WaitGroup
	for _, user := range users {
		user := user
		wg.Add(1)
		err := s.lanes.Do(user.Username, func() {
			defer wg.Done()
			if err := s.promptUser(ctx, user); err != nil {
				s.logger.Error("prompting user failed",
					logging.String(logging.FieldUser, user.Username),
					logging.Error(err),
				)
			}
		})
		if err != nil {
			wg.Done()
			s.logger.Error("enqueue prompt work failed",
				logging.String(logging.FieldUser, user.Username),
				logging.Error(err),
			)
		}
	}
	wg.Wait()
}

func (s *Scheduler) promptUser(ctx context.Context, user *flow.UserRecord) error {
	docs := user.UnclassifiedDocuments()
	s.logger.Debug("unclassified documents for user",
		logging.String(logging.FieldUser, user.Username),
		logging.Int("documents", len(docs)),
	)
	for _, doc := range docs {
		// Tokens must be durable before the prompt referencing them is sent.
		buttons, err := s.issuer.IssueForDocument(ctx, doc.ID, doc.StorageRef)
		if err != nil {
			return fmt.Errorf("issue tokens for document %s: %w", doc.ID, err)
		}
		if err := s.responder.Send(ctx, buildPrompt(user.ChatID, doc, buttons)); err != nil {
			return fmt.Errorf("send prompt for document %s: %w", doc.ID, err)
		}
		// Requested marker keeps the next tick from re-prompting before
		// the user answers.
		if _, err := s.store.UpdateDocumentClass(ctx, user.Username, doc.ID, flow.ClassRequested); err != nil {
			return fmt.Errorf("mark document %s requested: %w", doc.ID, err)
		}
	}
	return nil
}

func buildPrompt(chatID int64, doc flow.DocumentRecord, buttons []callback.Button) transport.Outbound {
	outButtons := make([]transport.Button, len(buttons))
	for i, b := range buttons {
		outButtons[i] = transport.Button{Label: b.Label, Data: b.Token}
	}

	if doc.ThumbnailFileID != "" {
		return transport.PhotoPrompt{
			ChatID:  chatID,
			FileID:  doc.ThumbnailFileID,
			Caption: promptCaption,
			Buttons: outButtons,
		}
	}
	caption := promptCaption
	if doc.OriginalFilename != "" {
		caption += " File: " + doc.OriginalFilename
	}
	return transport.DocumentPrompt{
		ChatID:  chatID,
		FileID:  doc.TransportFileID,
		Caption: caption,
		Buttons: outButtons,
	}
}
