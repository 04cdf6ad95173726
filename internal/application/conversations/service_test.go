package conversations

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	aidom "github.com/bryanwahyu/docintel/internal/domain/ai"
	analysisdom "github.com/bryanwahyu/docintel/internal/domain/analysis"
	domain "github.com/bryanwahyu/docintel/internal/domain/conversations"
	docdom "github.com/bryanwahyu/docintel/internal/domain/documents"
	"github.com/bryanwahyu/docintel/internal/domain/tokens"
)

//
// ==== fakes ====
//

type fakeDocGetter struct {
	docs map[docdom.DocumentID]*docdom.Document
}

func (f *fakeDocGetter) Save(_ context.Context, d *docdom.Document) error { return nil }

func (f *fakeDocGetter) Get(_ context.Context, owner string, id docdom.DocumentID) (*docdom.Document, error) {
	d, ok := f.docs[id]
	if !ok || d.OwnerID != owner {
		return nil, docdom.ErrNotFound
	}
	return d, nil
}

func (f *fakeDocGetter) Latest(_ context.Context, owner string, limit int) ([]*docdom.Document, error) {
	return nil, nil
}

func (f *fakeDocGetter) Paginate(_ context.Context, owner string, page, pageSize int) (docdom.PaginatedResult, error) {
	return docdom.PaginatedResult{}, nil
}

func (f *fakeDocGetter) UpdateStatus(_ context.Context, owner string, id docdom.DocumentID, status docdom.Status) error {
	return nil
}

func (f *fakeDocGetter) Delete(_ context.Context, owner string, id docdom.DocumentID) error {
	return nil
}

type fakeEntryRepo struct {
	entries  []*domain.Entry
	saveErr  error
	countErr error
}

func (r *fakeEntryRepo) Save(_ context.Context, e *domain.Entry) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	cp := *e
	r.entries = append(r.entries, &cp)
	return nil
}

func (r *fakeEntryRepo) Resolve(_ context.Context, id domain.EntryID, answer, model string) error {
	for _, e := range r.entries {
		if e.ID == id {
			a := answer
			e.Answer = &a
			e.Model = model
			return nil
		}
	}
	return errors.New("entry not found")
}

func (r *fakeEntryRepo) ListByDocument(_ context.Context, documentID string) ([]*domain.Entry, error) {
	out := []*domain.Entry{}
	for _, e := range r.entries {
		if e.DocumentID == documentID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeEntryRepo) CountAnswered(_ context.Context, documentID string) (int, error) {
	if r.countErr != nil {
		return 0, r.countErr
	}
	n := 0
	for _, e := range r.entries {
		if e.DocumentID == documentID && e.Answered() {
			n++
		}
	}
	return n, nil
}

type fakeAnalysisStore struct {
	result *analysisdom.Result
}

func (f *fakeAnalysisStore) Save(_ context.Context, r *analysisdom.Result) error { return nil }

func (f *fakeAnalysisStore) LatestByDocument(_ context.Context, owner, documentID string) (*analysisdom.Result, error) {
	return f.result, nil
}

func (f *fakeAnalysisStore) Paginate(_ context.Context, owner string, page, pageSize int) ([]*analysisdom.Result, error) {
	return nil, nil
}

type fakeDebitor struct {
	err     error
	debits  []int
	balance map[string]int
}

func (d *fakeDebitor) Debit(_ context.Context, ownerID string, amount int) error {
	if d.err != nil {
		return d.err
	}
	d.debits = append(d.debits, amount)
	if d.balance != nil {
		if d.balance[ownerID] < amount {
			return tokens.ErrInsufficientBalance
		}
		d.balance[ownerID] -= amount
	}
	return nil
}

type fakeAnswerer struct {
	answer     aidom.Answer
	err        error
	calls      int
	contexts   []string
	onQuestion func()
}

func (a *fakeAnswerer) AnalyzeDocument(_ context.Context, fileURL, mimeType string) (*aidom.Analysis, error) {
	return nil, errors.New("not used")
}

func (a *fakeAnswerer) AnswerQuestion(_ context.Context, question, contextText string) (aidom.Answer, error) {
	a.calls++
	a.contexts = append(a.contexts, contextText)
	if a.onQuestion != nil {
		a.onQuestion()
	}
	if a.err != nil {
		return aidom.Answer{}, a.err
	}
	return a.answer, nil
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

//
// ==== setup ====
//

const (
	testOwner = "acme"
	testDocID = "doc-1"
)

func analyzedDoc() *fakeDocGetter {
	return &fakeDocGetter{docs: map[docdom.DocumentID]*docdom.Document{
		testDocID: {ID: testDocID, OwnerID: testOwner, Status: docdom.StatusAnalyzed},
	}}
}

func newService(docs *fakeDocGetter, entries *fakeEntryRepo, debitor *fakeDebitor, ai *fakeAnswerer) *Service {
	return &Service{
		Documents: docs,
		Analyses: &fakeAnalysisStore{result: &analysisdom.Result{
			Blocks: []analysisdom.ContentBlock{{Type: analysisdom.BlockText, Text: "Summary: quarterly report"}},
		}},
		Entries: entries,
		Tokens:  debitor,
		AI:      ai,
		Clock:   fixedClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)},
	}
}

func answeredEntry(question, answer string) *domain.Entry {
	return &domain.Entry{
		ID:         domain.EntryID("seed-" + question),
		DocumentID: testDocID,
		Question:   question,
		Answer:     &answer,
	}
}

//
// ==== tests ====
//

func TestAskQuestion_HappyPath(t *testing.T) {
	entries := &fakeEntryRepo{}
	debitor := &fakeDebitor{}
	ai := &fakeAnswerer{answer: aidom.Answer{Text: "Revenue grew 20%.", Model: "gpt-4o-mini"}}
	svc := newService(analyzedDoc(), entries, debitor, ai)

	entry, err := svc.AskQuestion(context.Background(), testOwner, testDocID, "  How did revenue do?  ")

	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "How did revenue do?", entry.Question)
	require.True(t, entry.Answered())
	assert.Equal(t, "Revenue grew 20%.", *entry.Answer)
	assert.Equal(t, "gpt-4o-mini", entry.Model)

	// analysis text dipakai sebagai konteks pertanyaan
	require.Len(t, ai.contexts, 1)
	assert.Equal(t, "Summary: quarterly report", ai.contexts[0])

	// di bawah kuota gratis, tidak ada debit
	assert.Empty(t, debitor.debits)
}

func TestAskQuestion_PendingEntryVisibleDuringCall(t *testing.T) {
	entries := &fakeEntryRepo{}
	ai := &fakeAnswerer{answer: aidom.Answer{Text: "ok"}}
	var pendingSeen bool
	ai.onQuestion = func() {
		// saat AI masih berjalan, entry sudah tersimpan dan belum terjawab
		require.Len(t, entries.entries, 1)
		pendingSeen = !entries.entries[0].Answered()
	}
	svc := newService(analyzedDoc(), entries, &fakeDebitor{}, ai)

	_, err := svc.AskQuestion(context.Background(), testOwner, testDocID, "q")

	require.NoError(t, err)
	assert.True(t, pendingSeen)
}

func TestAskQuestion_QuotaBoundary(t *testing.T) {
	t.Run("below quota no debit", func(t *testing.T) {
		entries := &fakeEntryRepo{entries: []*domain.Entry{
			answeredEntry("q1", "a1"),
			answeredEntry("q2", "a2"),
		}}
		debitor := &fakeDebitor{}
		svc := newService(analyzedDoc(), entries, debitor, &fakeAnswerer{answer: aidom.Answer{Text: "a3"}})

		_, err := svc.AskQuestion(context.Background(), testOwner, testDocID, "q3")
		require.NoError(t, err)
		assert.Empty(t, debitor.debits)
	})

	t.Run("at quota debits one token", func(t *testing.T) {
		entries := &fakeEntryRepo{entries: []*domain.Entry{
			answeredEntry("q1", "a1"),
			answeredEntry("q2", "a2"),
			answeredEntry("q3", "a3"),
		}}
		debitor := &fakeDebitor{}
		svc := newService(analyzedDoc(), entries, debitor, &fakeAnswerer{answer: aidom.Answer{Text: "a4"}})

		_, err := svc.AskQuestion(context.Background(), testOwner, testDocID, "q4")
		require.NoError(t, err)
		assert.Equal(t, []int{1}, debitor.debits)
	})

	t.Run("pending entries do not count", func(t *testing.T) {
		pending := &domain.Entry{ID: "p1", DocumentID: testDocID, Question: "stuck"}
		entries := &fakeEntryRepo{entries: []*domain.Entry{
			answeredEntry("q1", "a1"),
			answeredEntry("q2", "a2"),
			pending,
		}}
		debitor := &fakeDebitor{}
		svc := newService(analyzedDoc(), entries, debitor, &fakeAnswerer{answer: aidom.Answer{Text: "a"}})

		_, err := svc.AskQuestion(context.Background(), testOwner, testDocID, "q")
		require.NoError(t, err)
		assert.Empty(t, debitor.debits)
	})
}

func TestAskQuestion_InsufficientBalance(t *testing.T) {
	entries := &fakeEntryRepo{entries: []*domain.Entry{
		answeredEntry("q1", "a1"),
		answeredEntry("q2", "a2"),
		answeredEntry("q3", "a3"),
	}}
	debitor := &fakeDebitor{err: tokens.ErrInsufficientBalance}
	ai := &fakeAnswerer{answer: aidom.Answer{Text: "never"}}
	svc := newService(analyzedDoc(), entries, debitor, ai)

	entry, err := svc.AskQuestion(context.Background(), testOwner, testDocID, "q4")

	require.ErrorIs(t, err, tokens.ErrInsufficientBalance)
	assert.Zero(t, ai.calls)

	// entry tetap terselesaikan dengan pesan kehabisan token
	require.NotNil(t, entry)
	require.True(t, entry.Answered())
	assert.Equal(t, InsufficientBalanceMessage, *entry.Answer)
}

func TestAskQuestion_AIFailureResolvesEntry(t *testing.T) {
	entries := &fakeEntryRepo{}
	svc := newService(analyzedDoc(), entries, &fakeDebitor{}, &fakeAnswerer{err: errors.New("model down")})

	entry, err := svc.AskQuestion(context.Background(), testOwner, testDocID, "q")

	require.Error(t, err)
	require.NotNil(t, entry)
	require.True(t, entry.Answered())
	assert.Equal(t, FailedAnswerMessage, *entry.Answer)

	// stored copy resolves too, never left pending
	stored, lerr := entries.ListByDocument(context.Background(), testDocID)
	require.NoError(t, lerr)
	require.Len(t, stored, 1)
	assert.True(t, stored[0].Answered())
}

func TestAskQuestion_EmptyAnswerIsFailure(t *testing.T) {
	entries := &fakeEntryRepo{}
	svc := newService(analyzedDoc(), entries, &fakeDebitor{}, &fakeAnswerer{answer: aidom.Answer{Text: "   "}})

	entry, err := svc.AskQuestion(context.Background(), testOwner, testDocID, "q")

	require.ErrorIs(t, err, aidom.ErrEmptyResponse)
	require.True(t, entry.Answered())
	assert.Equal(t, FailedAnswerMessage, *entry.Answer)
}

func TestAskQuestion_DocumentNotReady(t *testing.T) {
	for _, status := range []docdom.Status{docdom.StatusUploaded, docdom.StatusAnalyzing, docdom.StatusAnalysisFailed} {
		docs := &fakeDocGetter{docs: map[docdom.DocumentID]*docdom.Document{
			testDocID: {ID: testDocID, OwnerID: testOwner, Status: status},
		}}
		entries := &fakeEntryRepo{}
		svc := newService(docs, entries, &fakeDebitor{}, &fakeAnswerer{})

		_, err := svc.AskQuestion(context.Background(), testOwner, testDocID, "q")
		assert.ErrorIs(t, err, docdom.ErrNotReady, "status %s", status)
		assert.Empty(t, entries.entries)
	}
}

func TestAskQuestion_DocumentNotFound(t *testing.T) {
	svc := newService(analyzedDoc(), &fakeEntryRepo{}, &fakeDebitor{}, &fakeAnswerer{})

	_, err := svc.AskQuestion(context.Background(), testOwner, "missing", "q")
	assert.ErrorIs(t, err, docdom.ErrNotFound)
}

func TestAskQuestion_EmptyQuestion(t *testing.T) {
	entries := &fakeEntryRepo{}
	svc := newService(analyzedDoc(), entries, &fakeDebitor{}, &fakeAnswerer{})

	_, err := svc.AskQuestion(context.Background(), testOwner, testDocID, "   ")
	assert.Error(t, err)
	assert.Empty(t, entries.entries)
}

func TestAskQuestion_CustomFreeQuestions(t *testing.T) {
	entries := &fakeEntryRepo{entries: []*domain.Entry{answeredEntry("q1", "a1")}}
	debitor := &fakeDebitor{}
	svc := newService(analyzedDoc(), entries, debitor, &fakeAnswerer{answer: aidom.Answer{Text: "a"}})
	svc.FreeQuestions = 1

	_, err := svc.AskQuestion(context.Background(), testOwner, testDocID, "q2")
	require.NoError(t, err)
	assert.Equal(t, []int{1}, debitor.debits)
}

func TestHistory_ReturnsPendingAndAnswered(t *testing.T) {
	pending := &domain.Entry{ID: "p1", DocumentID: testDocID, Question: "pending"}
	entries := &fakeEntryRepo{entries: []*domain.Entry{answeredEntry("q1", "a1"), pending}}
	svc := newService(analyzedDoc(), entries, &fakeDebitor{}, &fakeAnswerer{})

	got, err := svc.History(context.Background(), testOwner, testDocID)

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].Answered())
	assert.False(t, got[1].Answered())
}

func TestHistory_UnknownDocument(t *testing.T) {
	svc := newService(analyzedDoc(), &fakeEntryRepo{}, &fakeDebitor{}, &fakeAnswerer{})

	_, err := svc.History(context.Background(), testOwner, "missing")
	assert.ErrorIs(t, err, docdom.ErrNotFound)
}
