package extract

import "net/http"

// Register registers the extraction endpoint with the given mux.
func Register(mux *http.ServeMux, svc Service) {
	mux.Handle("POST /v1/extract", Handler{Svc: svc})
}
