package handlers

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mrcgomez/safetyagent/internal/api"
	"github.com/mrcgomez/safetyagent/internal/domain"
	"github.com/mrcgomez/safetyagent/internal/extract"
	"github.com/mrcgomez/safetyagent/internal/kb"
	"github.com/mrcgomez/safetyagent/internal/service"
	"github.com/mrcgomez/safetyagent/internal/storage"
)

// DefaultCategory is assigned to uploads that do not name one.
const DefaultCategory = "general"

type DocumentService interface {
	IngestText(ctx context.Context, input service.IngestTextInput) (*domain.Document, error)
	GetDocument(ctx context.Context, id string) (*kb.Entry, error)
	ListDocuments(ctx context.Context) []domain.Document
	RemoveDocument(ctx context.Context, id string) bool
}

// Archiver stores original uploads in object storage. Optional: a nil
// archiver disables archival and presigned downloads.
type Archiver interface {
	PutObject(ctx context.Context, key string, contentType string, body io.Reader) error
	HeadObject(ctx context.Context, key string) (*storage.ObjectMetadata, error)
	GenerateDownloadURL(ctx context.Context, key string) (string, error)
	DeleteObject(ctx context.Context, key string) error
}

type DocumentHandler struct {
	svc       DocumentService
	archiver  Archiver
	uploadDir string
}

func NewDocumentHandler(svc DocumentService, archiver Archiver) *DocumentHandler {
	return &DocumentHandler{svc: svc, archiver: archiver}
}

// NewDocumentHandlerWithUploadDir keeps a copy of each upload in dir instead
// of a discarded temp file.
func NewDocumentHandlerWithUploadDir(svc DocumentService, archiver Archiver, dir string) *DocumentHandler {
	return &DocumentHandler{svc: svc, archiver: archiver, uploadDir: dir}
}

type UploadResponse struct {
	Message       string `json:"message"`
	DocumentID    string `json:"document_id"`
	Filename      string `json:"filename"`
	Category      string `json:"category"`
	ChunksCreated int    `json:"chunks_created"`
	TextLength    int    `json:"text_length"`
}

type DocumentResponse struct {
	ID         string `json:"id"`
	Filename   string `json:"filename"`
	Category   string `json:"category"`
	SizeBytes  int64  `json:"size_bytes"`
	TextLength int    `json:"text_length"`
	IngestedAt string `json:"ingested_at"`
}

func documentToResponse(d domain.Document) DocumentResponse {
	return DocumentResponse{
		ID:         d.ID,
		Filename:   d.Filename,
		Category:   d.Category,
		SizeBytes:  d.SizeBytes,
		TextLength: d.TextLength,
		IngestedAt: d.IngestedAt.Format(time.RFC3339),
	}
}

func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		api.Error(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	if !extract.IsSupported(header.Filename) {
		api.Error(w, http.StatusBadRequest, "unsupported file type, allowed: .pdf .txt .md .docx .doc")
		return
	}

	category := r.FormValue("category")
	if category == "" {
		category = DefaultCategory
	}

	content, err := io.ReadAll(file)
	if err != nil {
		api.Error(w, http.StatusBadRequest, "failed to read uploaded file")
		return
	}

	// The extractor works on files, so stage the upload on disk. With an
	// upload directory configured the copy is kept; otherwise it is a temp
	// file that keeps the original extension and is removed afterwards.
	var stagedPath string
	if h.uploadDir != "" {
		if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
			api.Error(w, http.StatusInternalServerError, "failed to stage uploaded file")
			return
		}
		stagedPath = filepath.Join(h.uploadDir, filepath.Base(header.Filename))
		if err := os.WriteFile(stagedPath, content, 0o644); err != nil {
			api.Error(w, http.StatusInternalServerError, "failed to stage uploaded file")
			return
		}
	} else {
		tmp, err := os.CreateTemp("", "upload-*"+filepath.Ext(header.Filename))
		if err != nil {
			api.Error(w, http.StatusInternalServerError, "failed to stage uploaded file")
			return
		}
		defer os.Remove(tmp.Name())

		if _, err := tmp.Write(content); err != nil {
			tmp.Close()
			api.Error(w, http.StatusInternalServerError, "failed to stage uploaded file")
			return
		}
		tmp.Close()
		stagedPath = tmp.Name()
	}

	text, err := extract.Extract(stagedPath)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	doc, err := h.svc.IngestText(r.Context(), service.IngestTextInput{
		Text:      text,
		Filename:  header.Filename,
		Category:  category,
		SizeBytes: int64(len(content)),
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	if h.archiver != nil {
		key := storage.ObjectKey(doc.ID, doc.Filename)
		contentType := header.Header.Get("Content-Type")
		if err := h.archiver.PutObject(r.Context(), key, contentType, bytes.NewReader(content)); err != nil {
			// Archival is best effort; the document is already searchable.
			api.Success(w, http.StatusCreated, h.uploadResponse(r.Context(), doc))
			return
		}
	}

	api.Success(w, http.StatusCreated, h.uploadResponse(r.Context(), doc))
}

func (h *DocumentHandler) uploadResponse(ctx context.Context, doc *domain.Document) UploadResponse {
	chunks := 0
	if entry, err := h.svc.GetDocument(ctx, doc.ID); err == nil {
		chunks = len(entry.Chunks)
	}
	return UploadResponse{
		Message:       "Document uploaded and processed successfully",
		DocumentID:    doc.ID,
		Filename:      doc.Filename,
		Category:      doc.Category,
		ChunksCreated: chunks,
		TextLength:    doc.TextLength,
	}
}

func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	docs := h.svc.ListDocuments(r.Context())

	responses := make([]DocumentResponse, 0, len(docs))
	for _, d := range docs {
		responses = append(responses, documentToResponse(d))
	}

	api.Success(w, http.StatusOK, map[string]interface{}{
		"documents": responses,
		"count":     len(responses),
	})
}

func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	entry, err := h.svc.GetDocument(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	if !h.svc.RemoveDocument(r.Context(), id) {
		api.Error(w, http.StatusNotFound, "document not found")
		return
	}

	if h.archiver != nil {
		// Best effort: a stale archive object is harmless.
		_ = h.archiver.DeleteObject(r.Context(), storage.ObjectKey(id, entry.Document.Filename))
	}

	api.JSON(w, http.StatusNoContent, nil)
}

func (h *DocumentHandler) Download(w http.ResponseWriter, r *http.Request) {
	if h.archiver == nil {
		api.Error(w, http.StatusServiceUnavailable, "object storage not configured")
		return
	}

	id := chi.URLParam(r, "id")

	entry, err := h.svc.GetDocument(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	key := storage.ObjectKey(id, entry.Document.Filename)
	if _, err := h.archiver.HeadObject(r.Context(), key); err != nil {
		api.Error(w, http.StatusNotFound, "archived file not found")
		return
	}

	url, err := h.archiver.GenerateDownloadURL(r.Context(), key)
	if err != nil {
		api.Error(w, http.StatusInternalServerError, "failed to generate download URL")
		return
	}

	api.Success(w, http.StatusOK, map[string]string{
		"download_url": url,
		"filename":     entry.Document.Filename,
	})
}
