package api

import (
	"database/sql"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, uploadsDir string) http.Handler {
	mux := http.NewServeMux()

	products := &ProductsHandler{DB: db, UploadsDir: uploadsDir}

	mux.HandleFunc("GET /api/products", products.List)
	mux.HandleFunc("POST /api/products", products.Create)
	mux.HandleFunc("GET /api/products/{id}", products.Get)
	mux.HandleFunc("PUT /api/products/{id}", products.Update)
	mux.HandleFunc("DELETE /api/products/{id}", products.Delete)
	mux.HandleFunc("GET /api/products/{id}/history", products.GetHistory)
	mux.HandleFunc("GET /api/products/meta/filters", products.MetaFilters)

	// Bulk CSV.
	mux.HandleFunc("POST /api/products/import/csv", products.ImportCSV)
	mux.HandleFunc("GET /api/products/export/csv", products.ExportCSV)

	// Images.
	mux.HandleFunc("PUT /api/products/{id}/image", products.UploadImage)
	mux.HandleFunc("GET /api/products/{id}/image", products.GetImage)

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	return mux
}
