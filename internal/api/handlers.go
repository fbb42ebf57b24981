package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/shekelsync/shekelsync/internal/accountmap"
	"github.com/shekelsync/shekelsync/internal/analyzer"
	"github.com/shekelsync/shekelsync/internal/importer"
	"github.com/shekelsync/shekelsync/internal/ledger"
	"github.com/shekelsync/shekelsync/internal/logger"
	"github.com/shekelsync/shekelsync/internal/model"
	"github.com/shekelsync/shekelsync/internal/reconcile"
)

// maxUploadBytes bounds the multipart form kept in memory.
const maxUploadBytes = 32 << 20

// AccountLister returns the ledger accounts to reconcile against.
type AccountLister interface {
	Accounts(ctx context.Context) ([]model.LedgerAccount, error)
}

// StaticAccounts serves a fixed account list, such as a local snapshot.
type StaticAccounts []model.LedgerAccount

func (s StaticAccounts) Accounts(context.Context) ([]model.LedgerAccount, error) {
	return s, nil
}

// Handlers groups all HTTP handler methods and their dependencies.
type Handlers struct {
	analyzer *analyzer.Analyzer
	registry *importer.Registry
	mappings accountmap.Store
	accounts AccountLister
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Msg("encoding response")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}

// --- Analyze ---

// Analyze accepts statement files in the multipart field "files" and returns
// one analysis per file, in upload order.
func (h *Handlers) Analyze(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		writeError(w, r, http.StatusBadRequest, "files field is required")
		return
	}

	files := make([]analyzer.File, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "open upload: "+err.Error())
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "read upload: "+err.Error())
			return
		}
		files = append(files, analyzer.File{Name: fh.Filename, Data: data})
	}

	results := h.analyzer.AnalyzeFiles(r.Context(), files)
	writeJSON(w, r, http.StatusOK, map[string]any{
		"results": results,
	})
}

// --- Reconcile ---

type reconcileRequest struct {
	AccountID string             `json:"accountId"`
	Analysis  model.FileAnalysis `json:"analysis"`
}

// Reconcile compares an analyzed statement with the cleared balance of a
// ledger account.
func (h *Handlers) Reconcile(w http.ResponseWriter, r *http.Request) {
	var req reconcileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if req.AccountID == "" {
		writeError(w, r, http.StatusBadRequest, "accountId is required")
		return
	}
	if h.accounts == nil {
		writeError(w, r, http.StatusServiceUnavailable, "no ledger accounts available")
		return
	}

	accts, err := h.accounts.Accounts(r.Context())
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, ledger.ErrReconnectRequired) {
			status = http.StatusUnauthorized
		}
		writeError(w, r, status, err.Error())
		return
	}

	for _, a := range accts {
		if a.ID == req.AccountID {
			writeJSON(w, r, http.StatusOK, reconcile.BuildRecord(a, req.Analysis))
			return
		}
	}
	writeError(w, r, http.StatusNotFound, "account not found")
}

// --- Mappings ---

func (h *Handlers) ListMappings(w http.ResponseWriter, r *http.Request) {
	mappings, err := h.mappings.All(r.Context())
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	if mappings == nil {
		mappings = []accountmap.Mapping{}
	}
	writeJSON(w, r, http.StatusOK, map[string]any{
		"mappings": mappings,
		"total":    len(mappings),
	})
}

type mappingRequest struct {
	AccountID string `json:"accountId"`
}

func (h *Handlers) PutMapping(w http.ResponseWriter, r *http.Request) {
	identifier := strings.TrimSpace(chi.URLParam(r, "identifier"))
	if identifier == "" {
		writeError(w, r, http.StatusBadRequest, "identifier is required")
		return
	}

	var req mappingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if req.AccountID == "" {
		writeError(w, r, http.StatusBadRequest, "accountId is required")
		return
	}

	if err := h.mappings.Set(r.Context(), identifier, req.AccountID); err != nil {
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{
		"identifier": identifier,
		"accountId":  req.AccountID,
	})
}

func (h *Handlers) DeleteMapping(w http.ResponseWriter, r *http.Request) {
	identifier := chi.URLParam(r, "identifier")
	if err := h.mappings.Delete(r.Context(), identifier); err != nil {
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Vendors ---

func (h *Handlers) ListVendors(w http.ResponseWriter, r *http.Request) {
	vendors := h.registry.All()
	infos := make([]model.VendorInfo, 0, len(vendors))
	for _, v := range vendors {
		infos = append(infos, v.Info())
	}
	writeJSON(w, r, http.StatusOK, map[string]any{
		"vendors": infos,
	})
}
