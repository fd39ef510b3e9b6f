package api

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/dkovac/stockroom/internal/imaging"
	"github.com/dkovac/stockroom/internal/store"
)

// UploadImage handles PUT /api/products/{id}/image. The image is validated,
// downscaled, stored as JPEG in the uploads directory, and its path recorded
// on the product.
func (h *ProductsHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, err := productID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	if _, err := store.GetProduct(r.Context(), h.DB, id); err != nil {
		storeError(w, err, "failed to get product")
		return
	}

	// Limit to 5 MB.
	r.Body = http.MaxBytesReader(w, r.Body, 5<<20)

	if err := r.ParseMultipartForm(5 << 20); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "image file required")
		return
	}
	defer file.Close()

	data, err := imaging.Normalize(file)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	filename := fmt.Sprintf("product_%d.jpg", id)
	if err := os.WriteFile(filepath.Join(h.UploadsDir, filename), data, 0644); err != nil {
		storeError(w, err, "failed to save image")
		return
	}

	if err := store.SetProductImage(r.Context(), h.DB, id, "/uploads/"+filename); err != nil {
		storeError(w, err, "failed to save image")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "image uploaded"})
}

// GetImage handles GET /api/products/{id}/image, serving the stored file.
func (h *ProductsHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	id, err := productID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	product, err := store.GetProduct(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err, "failed to get product")
		return
	}
	if product.Image == "" {
		jsonError(w, http.StatusNotFound, "no image")
		return
	}

	path := filepath.Join(h.UploadsDir, filepath.Base(product.Image))
	if _, err := os.Stat(path); err != nil {
		jsonError(w, http.StatusNotFound, "no image")
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=3600")
	http.ServeFile(w, r, path)
}
