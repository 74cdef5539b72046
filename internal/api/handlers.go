package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/fredcicles/sas/internal/httputil"
	"github.com/fredcicles/sas/internal/logger"
	"github.com/fredcicles/sas/pkg/catalog"
	"github.com/fredcicles/sas/pkg/store"
)

// Handler serves the folder catalog API over a catalog instance.
type Handler struct {
	catalog *catalog.Catalog
}

// NewHandler creates the API handler.
func NewHandler(c *catalog.Catalog) *Handler {
	return &Handler{catalog: c}
}

type createFolderRequest struct {
	Name string `json:"name"`
}

// singleSegment rejects names that would escape the tenant's top level.
var singleSegment = validation.NewStringRule(func(s string) bool {
	return !strings.Contains(s, "/")
}, "must not contain '/'")

func (r createFolderRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 255), singleSegment),
	)
}

type assignOwnerRequest struct {
	Owner string `json:"owner"`
}

func (r assignOwnerRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Owner, validation.Required, validation.Length(1, 255)),
	)
}

type tagMetadataRequest struct {
	FundCode string `json:"fundCode"`
	Owner    string `json:"owner"`
}

func (r tagMetadataRequest) Validate() error {
	if r.FundCode == "" && r.Owner == "" {
		return errors.New("at least one of fundCode or owner must be provided")
	}
	return validation.ValidateStruct(&r,
		validation.Field(&r.FundCode, validation.Length(0, 255)),
		validation.Field(&r.Owner, validation.Length(0, 255)),
	)
}

// CreateFolder handles POST /v1/folders.
func (h *Handler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	var req createFolderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.catalog.CreateFolder(r.Context(), req.Name); err != nil {
		respondCatalogError(w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, map[string]string{"name": req.Name})
}

// ListFolders handles GET /v1/folders?user=<principal>&limit=N.
//
// limit caps how many accessible folders are returned; once reached, the
// remaining folders are not examined at all.
func (h *Handler) ListFolders(w http.ResponseWriter, r *http.Request) {
	principal := r.URL.Query().Get("user")
	if principal == "" {
		httputil.RespondError(w, http.StatusBadRequest, "query parameter 'user' is required")
		return
	}

	limit := 0
	if rawLimit := r.URL.Query().Get("limit"); rawLimit != "" {
		parsed, err := strconv.Atoi(rawLimit)
		if err != nil || parsed <= 0 {
			httputil.RespondError(w, http.StatusBadRequest, "query parameter 'limit' must be a positive integer")
			return
		}
		limit = parsed
	}

	details := []catalog.FolderDetail{}
	err := h.catalog.ListAccessible(r.Context(), principal, func(detail catalog.FolderDetail) error {
		details = append(details, detail)
		if limit > 0 && len(details) >= limit {
			return catalog.ErrStopIteration
		}
		return nil
	})
	if err != nil {
		respondCatalogError(w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, details)
}

// GetFolder handles GET /v1/folders/{name}.
func (h *Handler) GetFolder(w http.ResponseWriter, r *http.Request) {
	detail, err := h.catalog.GetFolderDetail(r.Context(), r.PathValue("name"))
	if err != nil {
		respondCatalogError(w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, detail)
}

// AssignOwner handles POST /v1/folders/{name}/owner.
func (h *Handler) AssignOwner(w http.ResponseWriter, r *http.Request) {
	var req assignOwnerRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.catalog.AssignOwnerFullAccess(r.Context(), r.PathValue("name"), req.Owner); err != nil {
		respondCatalogError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// TagMetadata handles PUT /v1/folders/{name}/metadata.
func (h *Handler) TagMetadata(w http.ResponseWriter, r *http.Request) {
	var req tagMetadataRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.catalog.TagMetadata(r.Context(), r.PathValue("name"), req.FundCode, req.Owner); err != nil {
		respondCatalogError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RefreshSize handles POST /v1/folders/{name}/size. It returns the current
// size, recomputing it first if the cached value has expired.
func (h *Handler) RefreshSize(w http.ResponseWriter, r *http.Request) {
	size, err := h.catalog.GetOrRefreshSize(r.Context(), r.PathValue("name"))
	if err != nil {
		respondCatalogError(w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]string{
		"size": strconv.FormatInt(size, 10),
	})
}

// Healthz handles GET /healthz.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// respondCatalogError maps catalog/store errors onto HTTP statuses.
func respondCatalogError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError

	switch {
	case store.IsCode(err, store.ErrNotFound):
		status = http.StatusNotFound
	case store.IsCode(err, store.ErrAlreadyExists):
		status = http.StatusConflict
	case store.IsCode(err, store.ErrInvalidArgument):
		status = http.StatusBadRequest
	case store.IsCode(err, store.ErrAccessDenied):
		status = http.StatusForbidden
	case store.IsRetriable(err):
		// Transport failures and unexpected backend statuses surface as a
		// bad gateway; the backing store is unhealthy, not this service.
		status = http.StatusBadGateway
	}

	if status == http.StatusInternalServerError || status == http.StatusBadGateway {
		logger.Error("request failed: method=%s path=%s request_id=%s: %v",
			r.Method, r.URL.Path, RequestID(r.Context()), err)
	}

	httputil.RespondError(w, status, err.Error())
}
