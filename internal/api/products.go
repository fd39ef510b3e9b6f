package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dkovac/stockroom/internal/model"
	"github.com/dkovac/stockroom/internal/store"
)

// ProductsHandler handles product CRUD, history, and bulk endpoints.
type ProductsHandler struct {
	DB         *sql.DB
	UploadsDir string
}

type createProductRequest struct {
	Name     string `json:"name"`
	Unit     string `json:"unit"`
	Category string `json:"category"`
	Brand    string `json:"brand"`
	Stock    int    `json:"stock"`
	Image    string `json:"image"`
}

// updateProductRequest is a merge-patch body. Stock is a pointer so that an
// explicit 0 is distinguishable from the field being omitted.
type updateProductRequest struct {
	Name     string `json:"name"`
	Unit     string `json:"unit"`
	Category string `json:"category"`
	Brand    string `json:"brand"`
	Stock    *int   `json:"stock"`
	Image    string `json:"image"`
}

// storeError maps store errors onto HTTP responses. Validation and conflict
// errors carry their message to the caller; anything else is logged and
// reported generically.
func storeError(w http.ResponseWriter, err error, logMessage string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		jsonError(w, http.StatusNotFound, "product not found")
	case errors.Is(err, store.ErrDuplicateName):
		jsonError(w, http.StatusBadRequest, "product name already exists")
	case errors.Is(err, store.ErrNameRequired):
		jsonError(w, http.StatusBadRequest, "product name is required")
	case errors.Is(err, store.ErrNegativeStock):
		jsonError(w, http.StatusBadRequest, "stock cannot be negative")
	default:
		slog.Error(logMessage, "error", err)
		jsonError(w, http.StatusInternalServerError, logMessage)
	}
}

func productID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

// List handles GET /api/products.
func (h *ProductsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.ProductFilter{
		Search:   q.Get("search"),
		Category: q.Get("category"),
		Brand:    q.Get("brand"),
		Status:   q.Get("status"),
		Sort:     q.Get("sort"),
		Order:    q.Get("order"),
	}

	products, err := store.ListProducts(r.Context(), h.DB, filter)
	if err != nil {
		storeError(w, err, "failed to list products")
		return
	}
	if products == nil {
		products = []model.Product{}
	}
	jsonResponse(w, http.StatusOK, products)
}

// Get handles GET /api/products/{id}.
func (h *ProductsHandler) Get(w http.ResponseWriter, r *http.Request) {
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
	jsonResponse(w, http.StatusOK, product)
}

// Create handles POST /api/products.
func (h *ProductsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	product, err := store.CreateProduct(r.Context(), h.DB, store.CreateProductParams{
		Name:     req.Name,
		Unit:     req.Unit,
		Category: req.Category,
		Brand:    req.Brand,
		Stock:    req.Stock,
		Image:    req.Image,
	})
	if err != nil {
		storeError(w, err, "failed to create product")
		return
	}

	jsonResponse(w, http.StatusCreated, map[string]any{
		"id":      product.ID,
		"message": "product created successfully",
	})
}

// Update handles PUT /api/products/{id}.
func (h *ProductsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := productID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var req updateProductRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	product, err := store.UpdateProduct(r.Context(), h.DB, id, store.UpdateProductParams{
		Name:     req.Name,
		Unit:     req.Unit,
		Category: req.Category,
		Brand:    req.Brand,
		Stock:    req.Stock,
		Image:    req.Image,
	})
	if err != nil {
		storeError(w, err, "failed to update product")
		return
	}
	jsonResponse(w, http.StatusOK, product)
}

// Delete handles DELETE /api/products/{id}. History entries for the product
// are kept as an audit record.
func (h *ProductsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := productID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	if err := store.DeleteProduct(r.Context(), h.DB, id); err != nil {
		storeError(w, err, "failed to delete product")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "product deleted successfully"})
}

// GetHistory handles GET /api/products/{id}/history.
func (h *ProductsHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	id, err := productID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	entries, err := store.ListHistory(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err, "failed to get product history")
		return
	}
	if entries == nil {
		entries = []model.HistoryEntry{}
	}
	jsonResponse(w, http.StatusOK, entries)
}

// MetaFilters handles GET /api/products/meta/filters.
func (h *ProductsHandler) MetaFilters(w http.ResponseWriter, r *http.Request) {
	categories, err := store.DistinctCategories(r.Context(), h.DB)
	if err != nil {
		storeError(w, err, "failed to get filter data")
		return
	}
	brands, err := store.DistinctBrands(r.Context(), h.DB)
	if err != nil {
		storeError(w, err, "failed to get filter data")
		return
	}

	if categories == nil {
		categories = []string{}
	}
	if brands == nil {
		brands = []string{}
	}
	jsonResponse(w, http.StatusOK, map[string][]string{
		"categories": categories,
		"brands":     brands,
	})
}
