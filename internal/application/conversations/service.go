package conversations

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	aidom "github.com/bryanwahyu/docintel/internal/domain/ai"
	analysisdom "github.com/bryanwahyu/docintel/internal/domain/analysis"
	domain "github.com/bryanwahyu/docintel/internal/domain/conversations"
	docdom "github.com/bryanwahyu/docintel/internal/domain/documents"
	"github.com/bryanwahyu/docintel/internal/domain/tokens"
)

// DefaultFreeQuestions pertanyaan gratis per dokumen sebelum debit token
const DefaultFreeQuestions = 3

// DefaultAnswerTimeout batas waktu satu panggilan AnswerQuestion
const DefaultAnswerTimeout = 45 * time.Second

// Failure messages written into an entry in place of an answer. An
// entry is never left pending once its attempt has finished.
const (
	FailedAnswerMessage        = "Sorry, something went wrong while answering this question. Please try again."
	InsufficientBalanceMessage = "Not enough tokens to ask another question about this document."
)

// Service mediates question/answer turns for analyzed documents.
// Quota and status are re-read from the store on every call; nothing
// is cached across operations.
type Service struct {
	Documents     docdom.Repository
	Analyses      analysisdom.Repository
	Entries       domain.Repository
	Tokens        tokens.Debitor
	AI            aidom.Client
	Clock         Clock
	FreeQuestions int
	AnswerTimeout time.Duration
}

// Clock abstraction supaya gampang ditest
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// AskQuestion creates a pending entry, enforces the free-question
// quota, calls the AI and resolves the entry exactly once. The entry
// is persisted before the AI call so concurrent readers see it as
// pending at the right position.
func (s *Service) AskQuestion(ctx context.Context, ownerID string, documentID string, question string) (*domain.Entry, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("question must not be empty")
	}

	doc, err := s.Documents.Get(ctx, ownerID, docdom.DocumentID(documentID))
	if err != nil {
		return nil, err
	}
	if doc.Status != docdom.StatusAnalyzed {
		return nil, docdom.ErrNotReady
	}

	entry := &domain.Entry{
		ID:         domain.EntryID(uuid.New().String()),
		DocumentID: documentID,
		Question:   question,
		CreatedAt:  s.Clock.Now(),
	}
	if err := s.Entries.Save(ctx, entry); err != nil {
		return nil, fmt.Errorf("save entry: %w", err)
	}

	// kuota: hitung jawaban yang sudah ada, selalu dari store
	answered, err := s.Entries.CountAnswered(ctx, documentID)
	if err != nil {
		_ = s.resolve(ctx, entry, FailedAnswerMessage, "")
		return entry, fmt.Errorf("count answered: %w", err)
	}
	if answered >= s.freeQuestions() {
		if err := s.Tokens.Debit(ctx, ownerID, 1); err != nil {
			msg := FailedAnswerMessage
			if errors.Is(err, tokens.ErrInsufficientBalance) {
				msg = InsufficientBalanceMessage
			}
			_ = s.resolve(ctx, entry, msg, "")
			return entry, err
		}
	}

	contextText := ""
	if res, rerr := s.Analyses.LatestByDocument(ctx, ownerID, documentID); rerr == nil && res != nil {
		contextText = res.Text()
	}

	actx := ctx
	if timeout := s.answerTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		actx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	ans, err := s.AI.AnswerQuestion(actx, question, contextText)
	if err == nil && strings.TrimSpace(ans.Text) == "" {
		err = aidom.ErrEmptyResponse
	}
	if err != nil {
		// jangan biarkan entry menggantung: tulis pesan gagal yang terlihat
		_ = s.resolve(ctx, entry, FailedAnswerMessage, ans.Model)
		return entry, fmt.Errorf("answer question: %w", err)
	}

	if err := s.resolve(ctx, entry, ans.Text, ans.Model); err != nil {
		return entry, fmt.Errorf("resolve entry: %w", err)
	}
	return entry, nil
}

// History returns all entries for the document oldest first, pending
// included.
func (s *Service) History(ctx context.Context, ownerID string, documentID string) ([]*domain.Entry, error) {
	if _, err := s.Documents.Get(ctx, ownerID, docdom.DocumentID(documentID)); err != nil {
		return nil, err
	}
	return s.Entries.ListByDocument(ctx, documentID)
}

func (s *Service) resolve(ctx context.Context, e *domain.Entry, answer, model string) error {
	if err := s.Entries.Resolve(ctx, e.ID, answer, model); err != nil {
		return err
	}
	e.Answer = &answer
	e.Model = model
	return nil
}

func (s *Service) freeQuestions() int {
	if s.FreeQuestions > 0 {
		return s.FreeQuestions
	}
	return DefaultFreeQuestions
}

func (s *Service) answerTimeout() time.Duration {
	if s.AnswerTimeout > 0 {
		return s.AnswerTimeout
	}
	return DefaultAnswerTimeout
}
