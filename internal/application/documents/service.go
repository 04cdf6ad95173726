package documents

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	aidom "github.com/bryanwahyu/docintel/internal/domain/ai"
	analysisdom "github.com/bryanwahyu/docintel/internal/domain/analysis"
	domain "github.com/bryanwahyu/docintel/internal/domain/documents"
)

// Service implements use-cases untuk Document
// Service is designed to be used concurrently and is thread-safe
type Service struct {
	Repo     domain.Repository
	Analyses analysisdom.Repository
	Blobs    domain.BlobStore
	AI       aidom.Client
	Clock    Clock
}

// Clock abstraction supaya gampang ditest
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

//
// ==== USE CASES ====
//

// ProgressFunc reports pipeline progress as a percent plus a
// human-readable stage label. Percent never goes backwards.
type ProgressFunc func(percent int, stage string)

// Command untuk proses upload
type ProcessCommand struct {
	OwnerID      string
	LocalPath    string
	OriginalName string
	MimeType     string
	SizeBytes    int64
}

// ProcessResult is the pipeline outcome. AnalysisErr is set when the
// upload succeeded but the analysis attempt did not; the document is
// kept in analysis_failed status so the caller can retry analysis only.
type ProcessResult struct {
	Document    *domain.Document    `json:"document"`
	Analysis    *analysisdom.Result `json:"analysis,omitempty"`
	AnalysisErr error               `json:"-"`
}

// ProcessDocument upload file -> simpan metadata -> jalankan analisis.
// Upload yang sudah berhasil tidak pernah di-rollback oleh kegagalan
// analisis; hanya kegagalan penyimpanan metadata yang memicu kompensasi
// (hapus blob yang baru diupload).
func (s *Service) ProcessDocument(ctx context.Context, cmd ProcessCommand, onProgress ProgressFunc) (ProcessResult, error) {
	if err := validateCommand(cmd); err != nil {
		return ProcessResult{}, err
	}
	report := monotonic(onProgress)

	report(0, "Preparing")
	now := s.Clock.Now()
	key := storageKey(cmd.OwnerID, cmd.OriginalName, now)

	// upload: progress 0..1 dari blob store diskalakan ke band 10-40%
	report(10, "Uploading")
	url, err := s.Blobs.Upload(ctx, cmd.LocalPath, key, cmd.MimeType, func(f float64) {
		report(10+int(30*f), "Uploading")
	})
	if err != nil {
		return ProcessResult{}, fmt.Errorf("upload blob: %w", err)
	}
	report(40, "Uploaded")

	doc := &domain.Document{
		ID:           domain.DocumentID(uuid.New().String()),
		OwnerID:      cmd.OwnerID,
		Name:         displayName(cmd.OriginalName),
		OriginalName: cmd.OriginalName,
		MimeType:     cmd.MimeType,
		SizeBytes:    cmd.SizeBytes,
		BlobKey:      key,
		URL:          url,
		Status:       domain.StatusUploaded,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Repo.Save(ctx, doc); err != nil {
		// kompensasi: blob tanpa record metadata tidak boleh tertinggal
		_ = s.Blobs.Delete(ctx, key)
		return ProcessResult{}, fmt.Errorf("save document: %w", err)
	}
	report(45, "Document saved")

	res, aerr := s.runAnalysis(ctx, doc, report)
	return ProcessResult{Document: doc, Analysis: res, AnalysisErr: aerr}, nil
}

// RetryAnalysis re-runs the analysis step only, against an existing
// document (typically one in analysis_failed status). A new attempt
// produces a new historical result; status never rolls back.
func (s *Service) RetryAnalysis(ctx context.Context, owner string, id domain.DocumentID) (ProcessResult, error) {
	doc, err := s.Repo.Get(ctx, owner, id)
	if err != nil {
		return ProcessResult{}, err
	}
	res, aerr := s.runAnalysis(ctx, doc, monotonic(nil))
	return ProcessResult{Document: doc, Analysis: res, AnalysisErr: aerr}, nil
}

// runAnalysis drives analyzing -> analyzed | analysis_failed. The
// returned error is the analysis failure, already reflected in the
// document status; it is not a pipeline error.
func (s *Service) runAnalysis(ctx context.Context, doc *domain.Document, report ProgressFunc) (*analysisdom.Result, error) {
	report(50, "Analyzing")
	if err := s.Repo.UpdateStatus(ctx, doc.OwnerID, doc.ID, domain.StatusAnalyzing); err != nil {
		return nil, fmt.Errorf("mark analyzing: %w", err)
	}
	doc.Status = domain.StatusAnalyzing

	fail := func(err error) (*analysisdom.Result, error) {
		_ = s.Repo.UpdateStatus(ctx, doc.OwnerID, doc.ID, domain.StatusAnalysisFailed)
		doc.Status = domain.StatusAnalysisFailed
		doc.UpdatedAt = s.Clock.Now()
		report(100, "Complete")
		return nil, err
	}

	out, err := s.AI.AnalyzeDocument(ctx, doc.URL, doc.MimeType)
	if err != nil {
		return fail(err)
	}
	if out == nil || len(out.Blocks) == 0 {
		return fail(aidom.ErrEmptyResponse)
	}

	report(85, "Saving analysis")
	res := &analysisdom.Result{
		ID:         analysisdom.AnalysisID(uuid.New().String()),
		DocumentID: string(doc.ID),
		OwnerID:    doc.OwnerID,
		Blocks:     out.Blocks,
		Model:      out.Model,
		Prompt:     out.Prompt,
		CreatedAt:  s.Clock.Now(),
	}
	if err := s.Analyses.Save(ctx, res); err != nil {
		return fail(fmt.Errorf("save analysis: %w", err))
	}
	if err := s.Repo.UpdateStatus(ctx, doc.OwnerID, doc.ID, domain.StatusAnalyzed); err != nil {
		return fail(fmt.Errorf("mark analyzed: %w", err))
	}
	doc.Status = domain.StatusAnalyzed
	doc.UpdatedAt = s.Clock.Now()

	// 100% hanya setelah transisi status tersimpan
	report(100, "Complete")
	return res, nil
}

// Latest ambil N dokumen terakhir
func (s *Service) Latest(ctx context.Context, owner string, limit int) ([]*domain.Document, error) {
	return s.Repo.Latest(ctx, owner, limit)
}

// Get ambil 1 dokumen by id
func (s *Service) Get(ctx context.Context, owner string, id domain.DocumentID) (*domain.Document, error) {
	return s.Repo.Get(ctx, owner, id)
}

// Paginate dokumen per owner
func (s *Service) Paginate(ctx context.Context, owner string, page, pageSize int) (domain.PaginatedResult, error) {
	return s.Repo.Paginate(ctx, owner, page, pageSize)
}

// LatestAnalysis ambil hasil analisis terkini untuk dokumen
func (s *Service) LatestAnalysis(ctx context.Context, owner string, id domain.DocumentID) (*analysisdom.Result, error) {
	return s.Analyses.LatestByDocument(ctx, owner, string(id))
}

// Delete removes metadata (cascading to analyses and conversation
// entries) and then the blob, best effort.
func (s *Service) Delete(ctx context.Context, owner string, id domain.DocumentID) error {
	doc, err := s.Repo.Get(ctx, owner, id)
	if err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, owner, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if doc.BlobKey != "" {
		_ = s.Blobs.Delete(ctx, doc.BlobKey)
	}
	return nil
}

//
// ==== helpers ====
//

func validateCommand(cmd ProcessCommand) error {
	switch {
	case strings.TrimSpace(cmd.OwnerID) == "":
		return fmt.Errorf("owner id is required")
	case strings.TrimSpace(cmd.LocalPath) == "":
		return fmt.Errorf("local path is required")
	case strings.TrimSpace(cmd.OriginalName) == "":
		return fmt.Errorf("file name is required")
	case strings.TrimSpace(cmd.MimeType) == "":
		return fmt.Errorf("mime type is required")
	case cmd.SizeBytes <= 0:
		return fmt.Errorf("file size must be positive")
	}
	return nil
}

// storageKey: owner/timestamp + ekstensi asli, tahan tabrakan
func storageKey(owner, originalName string, now time.Time) string {
	return fmt.Sprintf("%s/%d%s", owner, now.UnixNano(), filepath.Ext(originalName))
}

func displayName(originalName string) string {
	base := filepath.Base(originalName)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// monotonic wraps a progress callback so percent never regresses.
func monotonic(fn ProgressFunc) ProgressFunc {
	last := -1
	return func(percent int, stage string) {
		if percent < last {
			return
		}
		last = percent
		if fn != nil {
			fn(percent, stage)
		}
	}
}
