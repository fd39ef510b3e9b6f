package api

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/dkovac/stockroom/internal/store"
)

// ImportCSV handles POST /api/products/import/csv. Rows are applied one at a
// time with create-or-skip semantics: duplicate names are skipped, bad rows
// are collected as errors, and neither aborts the batch.
func (h *ProductsHandler) ImportCSV(w http.ResponseWriter, r *http.Request) {
	// Limit to 10 MB.
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, _, err := r.FormFile("csvFile")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "csvFile field required")
		return
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		jsonError(w, http.StatusBadRequest, "empty or unreadable CSV file")
		return
	}

	columns := columnIndex(header)
	if _, ok := columns["name"]; !ok {
		jsonError(w, http.StatusBadRequest, "CSV file must have a name column")
		return
	}

	var added, skipped int
	importErrors := []string{}

	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			importErrors = append(importErrors, fmt.Sprintf("row %d: %v", line, err))
			continue
		}

		params, err := rowToParams(record, columns)
		if err != nil {
			importErrors = append(importErrors, fmt.Sprintf("row %d: %v", line, err))
			continue
		}

		_, err = store.CreateProduct(r.Context(), h.DB, params)
		switch {
		case err == nil:
			added++
		case errors.Is(err, store.ErrDuplicateName):
			skipped++
		default:
			importErrors = append(importErrors, fmt.Sprintf("row %d: %v", line, err))
		}
	}

	jsonResponse(w, http.StatusOK, map[string]any{
		"added":   added,
		"skipped": skipped,
		"errors":  importErrors,
	})
}

// ExportCSV handles GET /api/products/export/csv, streaming the full catalog
// as a downloadable file with the computed status column included.
func (h *ProductsHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	products, err := store.ListProducts(r.Context(), h.DB, store.ProductFilter{})
	if err != nil {
		storeError(w, err, "failed to export products")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="products.csv"`)

	writer := csv.NewWriter(w)
	writer.Write([]string{"id", "name", "unit", "category", "brand", "stock", "status", "created_at", "updated_at"})
	for _, p := range products {
		writer.Write([]string{
			strconv.FormatInt(p.ID, 10),
			p.Name,
			p.Unit,
			p.Category,
			p.Brand,
			strconv.Itoa(p.Stock),
			p.Status,
			p.CreatedAt.Format("2006-01-02 15:04:05"),
			p.UpdatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	writer.Flush()
}

// columnIndex maps lowercased, trimmed header names to their positions.
func columnIndex(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return columns
}

func rowToParams(record []string, columns map[string]int) (store.CreateProductParams, error) {
	field := func(name string) string {
		i, ok := columns[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	params := store.CreateProductParams{
		Name:     field("name"),
		Unit:     field("unit"),
		Category: field("category"),
		Brand:    field("brand"),
	}
	if params.Name == "" {
		return params, errors.New("name is required")
	}

	if raw := field("stock"); raw != "" {
		stock, err := strconv.Atoi(raw)
		if err != nil {
			return params, fmt.Errorf("invalid stock value %q", raw)
		}
		params.Stock = stock
	}
	return params, nil
}
