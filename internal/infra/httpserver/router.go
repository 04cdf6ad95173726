package httpserver

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"

	appconv "github.com/bryanwahyu/docintel/internal/application/conversations"
	appdocs "github.com/bryanwahyu/docintel/internal/application/documents"
	aidom "github.com/bryanwahyu/docintel/internal/domain/ai"
	analysisdom "github.com/bryanwahyu/docintel/internal/domain/analysis"
	domain "github.com/bryanwahyu/docintel/internal/domain/documents"
	"github.com/bryanwahyu/docintel/internal/domain/tokens"
	"github.com/bryanwahyu/docintel/internal/middleware"
)

type Router struct {
	docsSvc        *appdocs.Service
	convSvc        *appconv.Service
	ledger         tokens.Ledger
	maxUploadBytes int64
}

func NewRouter(docsSvc *appdocs.Service, convSvc *appconv.Service, ledger tokens.Ledger, maxUploadBytes int64) http.Handler {
	r := &Router{docsSvc: docsSvc, convSvc: convSvc, ledger: ledger, maxUploadBytes: maxUploadBytes}
	mux := chi.NewRouter()

	mux.Get("/health", middleware.LivenessHandler)

	mux.Route("/v1/{owner}", func(rt chi.Router) {
		rt.Post("/documents", r.wrap(r.handleUpload))
		rt.Get("/documents", r.wrap(r.handleLatest))
		rt.Get("/documents/paginate", r.wrap(r.handlePaginate))
		rt.Get("/documents/{id}", r.wrap(r.handleGet))
		rt.Post("/documents/{id}/analyze", r.wrap(r.handleRetryAnalysis))
		rt.Delete("/documents/{id}", r.wrap(r.handleDelete))
		rt.Post("/documents/{id}/questions", r.wrap(r.handleAsk))
		rt.Get("/documents/{id}/questions", r.wrap(r.handleHistory))
		rt.Get("/tokens", r.wrap(r.handleBalance))
		rt.Post("/tokens/credit", r.wrap(r.handleCredit))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows), errors.Is(err, domain.ErrNotFound):
				http.Error(w, "not found", http.StatusNotFound)
			case errors.Is(err, domain.ErrNotReady):
				http.Error(w, "document analysis has not completed", http.StatusConflict)
			case errors.Is(err, tokens.ErrInsufficientBalance):
				http.Error(w, "insufficient token balance", http.StatusPaymentRequired)
			case errors.Is(err, aidom.ErrQuotaExceeded):
				http.Error(w, "ai quota exceeded", http.StatusTooManyRequests)
			default:
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}
		}
	}
}

type documentResponse struct {
	Document      *domain.Document            `json:"document"`
	Analysis      *analysisdom.Result         `json:"analysis,omitempty"`
	Parsed        *analysisdom.ParsedAnalysis `json:"parsed_analysis,omitempty"`
	AnalysisError string                      `json:"analysis_error,omitempty"`
}

func toResponse(res appdocs.ProcessResult) documentResponse {
	out := documentResponse{Document: res.Document, Analysis: res.Analysis}
	if res.Analysis != nil {
		parsed := analysisdom.Parse(res.Analysis.Blocks)
		out.Parsed = &parsed
	}
	if res.AnalysisErr != nil {
		out.AnalysisError = res.AnalysisErr.Error()
	}
	return out
}

// POST /v1/{owner}/documents
// Multipart upload, field "file". Runs the full pipeline: blob upload,
// metadata record, AI analysis. Progress goes to the log; the response
// carries the terminal document state.
func (r *Router) handleUpload(w http.ResponseWriter, req *http.Request) error {
	owner := chi.URLParam(req, "owner")
	if err := middleware.ValidateOwnerID(owner); err != nil {
		return err
	}

	if err := req.ParseMultipartForm(r.maxUploadBytes); err != nil {
		return fmt.Errorf("parse multipart form: %w", err)
	}
	file, hdr, err := req.FormFile("file")
	if err != nil {
		return fmt.Errorf("file field is required: %w", err)
	}
	defer file.Close()

	if err := middleware.ValidateFileName(hdr.Filename); err != nil {
		return err
	}
	mimeType := hdr.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = mime.TypeByExtension(filepath.Ext(hdr.Filename))
	}
	if err := middleware.ValidateMimeType(mimeType); err != nil {
		return err
	}

	// tulis dulu ke file temp, pipeline butuh path lokal
	tmp, err := os.CreateTemp("", "docintel-*"+filepath.Ext(hdr.Filename))
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	size, err := io.Copy(tmp, file)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("spool upload: %w", err)
	}

	middleware.IncrementUploads()
	cmd := appdocs.ProcessCommand{
		OwnerID:      owner,
		LocalPath:    tmp.Name(),
		OriginalName: hdr.Filename,
		MimeType:     mimeType,
		SizeBytes:    size,
	}
	res, err := r.docsSvc.ProcessDocument(req.Context(), cmd, func(pct int, stage string) {
		log.Printf("upload progress owner=%s file=%s pct=%d stage=%q", owner, hdr.Filename, pct, stage)
	})
	if err != nil {
		middleware.IncrementUploadsFailed()
		return err
	}
	if res.AnalysisErr != nil {
		middleware.IncrementAnalysesFailed()
		log.Printf("analysis failed owner=%s document=%s: %v", owner, res.Document.ID, res.AnalysisErr)
	} else {
		middleware.IncrementAnalyses()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	return json.NewEncoder(w).Encode(toResponse(res))
}

// GET /v1/{owner}/documents?limit=20
func (r *Router) handleLatest(w http.ResponseWriter, req *http.Request) error {
	owner := chi.URLParam(req, "owner")
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))

	list, err := r.docsSvc.Latest(req.Context(), owner, middleware.ValidateLimit(limit))
	if err != nil {
		return err
	}
	if list == nil {
		list = []*domain.Document{}
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(list)
}

// GET /v1/{owner}/documents/paginate?page=&page_size=
func (r *Router) handlePaginate(w http.ResponseWriter, req *http.Request) error {
	owner := chi.URLParam(req, "owner")
	page, _ := strconv.Atoi(req.URL.Query().Get("page"))
	size, _ := strconv.Atoi(req.URL.Query().Get("page_size"))

	result, err := r.docsSvc.Paginate(req.Context(), owner, page, size)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(result)
}

// GET /v1/{owner}/documents/{id}?parsed=1
func (r *Router) handleGet(w http.ResponseWriter, req *http.Request) error {
	owner := chi.URLParam(req, "owner")
	id := chi.URLParam(req, "id")

	doc, err := r.docsSvc.Get(req.Context(), owner, domain.DocumentID(id))
	if err != nil {
		return err
	}

	out := documentResponse{Document: doc}
	if req.URL.Query().Get("parsed") == "1" && doc.Status == domain.StatusAnalyzed {
		res, err := r.docsSvc.LatestAnalysis(req.Context(), owner, doc.ID)
		if err != nil {
			return err
		}
		if res != nil {
			out.Analysis = res
			parsed := analysisdom.Parse(res.Blocks)
			out.Parsed = &parsed
		}
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(out)
}

// POST /v1/{owner}/documents/{id}/analyze
// Re-runs the analysis step only; the upload never rolls back.
func (r *Router) handleRetryAnalysis(w http.ResponseWriter, req *http.Request) error {
	owner := chi.URLParam(req, "owner")
	id := chi.URLParam(req, "id")

	res, err := r.docsSvc.RetryAnalysis(req.Context(), owner, domain.DocumentID(id))
	if err != nil {
		return err
	}
	if res.AnalysisErr != nil {
		middleware.IncrementAnalysesFailed()
		log.Printf("analysis retry failed owner=%s document=%s: %v", owner, id, res.AnalysisErr)
	} else {
		middleware.IncrementAnalyses()
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(toResponse(res))
}

// DELETE /v1/{owner}/documents/{id}
func (r *Router) handleDelete(w http.ResponseWriter, req *http.Request) error {
	owner := chi.URLParam(req, "owner")
	id := chi.URLParam(req, "id")

	if err := r.docsSvc.Delete(req.Context(), owner, domain.DocumentID(id)); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// POST /v1/{owner}/documents/{id}/questions
// Body: {"question": "..."}
func (r *Router) handleAsk(w http.ResponseWriter, req *http.Request) error {
	owner := chi.URLParam(req, "owner")
	id := chi.URLParam(req, "id")

	var body struct {
		Question string `json:"question"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return err
	}
	if err := middleware.ValidateQuestion(body.Question); err != nil {
		return err
	}

	middleware.IncrementQuestions()
	entry, err := r.convSvc.AskQuestion(req.Context(), owner, id, body.Question)
	if err != nil {
		middleware.IncrementQuestionsFailed()
		// entry (kalau ada) sudah diresolve dengan pesan gagal yang
		// terlihat; error tetap diteruskan supaya UI bisa kasih toast
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(entry)
}

// GET /v1/{owner}/documents/{id}/questions
func (r *Router) handleHistory(w http.ResponseWriter, req *http.Request) error {
	owner := chi.URLParam(req, "owner")
	id := chi.URLParam(req, "id")

	list, err := r.convSvc.History(req.Context(), owner, id)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(list)
}

// GET /v1/{owner}/tokens
func (r *Router) handleBalance(w http.ResponseWriter, req *http.Request) error {
	owner := chi.URLParam(req, "owner")

	balance, err := r.ledger.Balance(req.Context(), owner)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(map[string]any{"owner_id": owner, "balance": balance})
}

// POST /v1/{owner}/tokens/credit
// Body: {"amount": N}
func (r *Router) handleCredit(w http.ResponseWriter, req *http.Request) error {
	owner := chi.URLParam(req, "owner")

	var body struct {
		Amount int `json:"amount"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return err
	}
	if body.Amount <= 0 {
		return fmt.Errorf("amount must be positive")
	}
	if err := r.ledger.Credit(req.Context(), owner, body.Amount); err != nil {
		return err
	}
	balance, err := r.ledger.Balance(req.Context(), owner)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(map[string]any{"owner_id": owner, "balance": balance})
}
