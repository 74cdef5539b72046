package api

import "net/http"

// Routes builds the API route table.
func Routes(h *Handler) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", h.Healthz)

	mux.HandleFunc("POST /v1/folders", h.CreateFolder)
	mux.HandleFunc("GET /v1/folders", h.ListFolders)
	mux.HandleFunc("GET /v1/folders/{name}", h.GetFolder)
	mux.HandleFunc("POST /v1/folders/{name}/owner", h.AssignOwner)
	mux.HandleFunc("PUT /v1/folders/{name}/metadata", h.TagMetadata)
	mux.HandleFunc("POST /v1/folders/{name}/size", h.RefreshSize)

	return mux
}
