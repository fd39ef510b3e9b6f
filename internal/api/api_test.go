package api

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/dkovac/stockroom/internal/db"
	"github.com/dkovac/stockroom/internal/model"
)

func setupTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	database := db.NewTestDB(t)
	router := NewRouter(database, t.TempDir())
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func jsonRequest(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshaling request body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decoding response body: %v", err)
	}
	return out
}

func createProduct(t *testing.T, server *httptest.Server, body map[string]any) int64 {
	t.Helper()
	resp := jsonRequest(t, "POST", server.URL+"/api/products", body)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201 creating product, got %d", resp.StatusCode)
	}
	created := decodeBody[struct {
		ID int64 `json:"id"`
	}](t, resp)
	if created.ID == 0 {
		t.Fatal("expected assigned product id")
	}
	return created.ID
}

func TestProductCRUDFlow(t *testing.T) {
	server := setupTestServer(t)

	id := createProduct(t, server, map[string]any{"name": "Widget", "stock": 5, "brand": "Acme"})

	// Read it back with computed status.
	resp := jsonRequest(t, "GET", server.URL+"/api/products/"+itoa(id), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	product := decodeBody[model.Product](t, resp)
	if product.Status != model.StatusLowStock {
		t.Errorf("expected status %q, got %q", model.StatusLowStock, product.Status)
	}

	// Restock: status flips, history grows.
	resp = jsonRequest(t, "PUT", server.URL+"/api/products/"+itoa(id), map[string]any{"stock": 12})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 updating, got %d", resp.StatusCode)
	}
	product = decodeBody[model.Product](t, resp)
	if product.Status != model.StatusInStock {
		t.Errorf("expected status %q after restock, got %q", model.StatusInStock, product.Status)
	}

	resp = jsonRequest(t, "GET", server.URL+"/api/products/"+itoa(id)+"/history", nil)
	entries := decodeBody[[]model.HistoryEntry](t, resp)
	if len(entries) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(entries))
	}
	if entries[0].OldQuantity != 5 || entries[0].NewQuantity != 12 {
		t.Errorf("expected newest entry 5 -> 12, got %d -> %d", entries[0].OldQuantity, entries[0].NewQuantity)
	}

	// Delete, then the product is gone but its history is not.
	resp = jsonRequest(t, "DELETE", server.URL+"/api/products/"+itoa(id), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 deleting, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = jsonRequest(t, "GET", server.URL+"/api/products/"+itoa(id), nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = jsonRequest(t, "GET", server.URL+"/api/products/"+itoa(id)+"/history", nil)
	entries = decodeBody[[]model.HistoryEntry](t, resp)
	if len(entries) != 2 {
		t.Errorf("expected history to survive deletion, got %d entries", len(entries))
	}
}

func TestCreateProductValidation(t *testing.T) {
	server := setupTestServer(t)

	resp := jsonRequest(t, "POST", server.URL+"/api/products", map[string]any{"stock": 5})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for missing name, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	createProduct(t, server, map[string]any{"name": "Widget"})

	resp = jsonRequest(t, "POST", server.URL+"/api/products", map[string]any{"name": "Widget"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for duplicate name, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestUpdateAndDeleteMissingProduct(t *testing.T) {
	server := setupTestServer(t)

	resp := jsonRequest(t, "PUT", server.URL+"/api/products/999", map[string]any{"name": "Ghost"})
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 updating missing product, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = jsonRequest(t, "DELETE", server.URL+"/api/products/999", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 deleting missing product, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestListWithFilters(t *testing.T) {
	server := setupTestServer(t)

	createProduct(t, server, map[string]any{"name": "Widget", "category": "Hardware", "brand": "Acme", "stock": 5})
	createProduct(t, server, map[string]any{"name": "Sprocket", "category": "Machinery", "brand": "Acme", "stock": 30})

	resp := jsonRequest(t, "GET", server.URL+"/api/products?search=wid", nil)
	products := decodeBody[[]model.Product](t, resp)
	if len(products) != 1 || products[0].Name != "Widget" {
		t.Errorf("expected search to match Widget, got %+v", products)
	}

	resp = jsonRequest(t, "GET", server.URL+"/api/products?status=In+Stock", nil)
	products = decodeBody[[]model.Product](t, resp)
	if len(products) != 1 || products[0].Name != "Sprocket" {
		t.Errorf("expected In Stock bucket to hold Sprocket, got %+v", products)
	}

	resp = jsonRequest(t, "GET", server.URL+"/api/products?sort=stock&order=desc", nil)
	products = decodeBody[[]model.Product](t, resp)
	if len(products) != 2 || products[0].Name != "Sprocket" {
		t.Errorf("expected stock-descending order, got %+v", products)
	}
}

func TestMetaFilters(t *testing.T) {
	server := setupTestServer(t)

	createProduct(t, server, map[string]any{"name": "Widget", "category": "Hardware", "brand": "Acme"})
	createProduct(t, server, map[string]any{"name": "Sprocket", "category": "Machinery", "brand": "Acme"})

	resp := jsonRequest(t, "GET", server.URL+"/api/products/meta/filters", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	meta := decodeBody[map[string][]string](t, resp)
	if len(meta["categories"]) != 2 {
		t.Errorf("expected 2 categories, got %v", meta["categories"])
	}
	if len(meta["brands"]) != 1 || meta["brands"][0] != "Acme" {
		t.Errorf("expected brands [Acme], got %v", meta["brands"])
	}
}

func multipartUpload(t *testing.T, method, url, field, filename string, data []byte) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("creating form file: %v", err)
	}
	part.Write(data)
	writer.Close()

	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("building upload request: %v", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("upload request: %v", err)
	}
	return resp
}

func TestCSVImport(t *testing.T) {
	server := setupTestServer(t)

	// An existing product makes one import row a duplicate.
	createProduct(t, server, map[string]any{"name": "Widget", "stock": 5})

	csvData := strings.Join([]string{
		"name,unit,category,brand,stock",
		"Widget,piece,Hardware,Acme,9",
		"Sprocket,box,Machinery,Acme,30",
		"Doohickey,piece,Machinery,Initech,12",
		",piece,Mystery,,1",
		"Gizmo,piece,Hardware,Acme,notanumber",
	}, "\n")

	resp := multipartUpload(t, "POST", server.URL+"/api/products/import/csv", "csvFile", "products.csv", []byte(csvData))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	result := decodeBody[struct {
		Added   int      `json:"added"`
		Skipped int      `json:"skipped"`
		Errors  []string `json:"errors"`
	}](t, resp)

	if result.Added != 2 {
		t.Errorf("expected 2 added, got %d", result.Added)
	}
	if result.Skipped != 1 {
		t.Errorf("expected 1 skipped, got %d", result.Skipped)
	}
	if len(result.Errors) != 2 {
		t.Errorf("expected 2 row errors, got %v", result.Errors)
	}

	// The duplicate row did not overwrite the existing product.
	resp = jsonRequest(t, "GET", server.URL+"/api/products?search=Widget", nil)
	products := decodeBody[[]model.Product](t, resp)
	if len(products) != 1 || products[0].Stock != 5 {
		t.Errorf("expected Widget untouched with stock 5, got %+v", products)
	}
}

func TestCSVImportRequiresNameColumn(t *testing.T) {
	server := setupTestServer(t)

	resp := multipartUpload(t, "POST", server.URL+"/api/products/import/csv", "csvFile", "bad.csv",
		[]byte("unit,stock\npiece,5\n"))
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for missing name column, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestCSVExport(t *testing.T) {
	server := setupTestServer(t)

	createProduct(t, server, map[string]any{"name": "Widget", "unit": "piece", "stock": 5})
	createProduct(t, server, map[string]any{"name": "Sprocket", "unit": "box", "stock": 30})

	resp, err := http.Get(server.URL + "/api/products/export/csv")
	if err != nil {
		t.Fatalf("export request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/csv" {
		t.Errorf("expected text/csv, got %q", ct)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "products.csv") {
		t.Errorf("expected attachment filename, got %q", cd)
	}

	records, err := csv.NewReader(resp.Body).ReadAll()
	if err != nil {
		t.Fatalf("parsing exported CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header + 2 rows, got %d records", len(records))
	}
	if records[0][1] != "name" || records[0][6] != "status" {
		t.Errorf("unexpected header: %v", records[0])
	}
	// Sorted by name: Sprocket first.
	if records[1][1] != "Sprocket" || records[1][6] != model.StatusInStock {
		t.Errorf("unexpected first row: %v", records[1])
	}
}

func TestImageUploadAndServe(t *testing.T) {
	server := setupTestServer(t)
	id := createProduct(t, server, map[string]any{"name": "Widget"})

	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for x := 0; x < 64; x++ {
		for y := 0; y < 64; y++ {
			img.Set(x, y, color.RGBA{200, 30, 30, 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding test PNG: %v", err)
	}

	resp := multipartUpload(t, "PUT", server.URL+"/api/products/"+itoa(id)+"/image", "image", "widget.png", buf.Bytes())
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 uploading image, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp, err := http.Get(server.URL + "/api/products/" + itoa(id) + "/image")
	if err != nil {
		t.Fatalf("image request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 serving image, got %d", resp.StatusCode)
	}

	// Rejects things that aren't images.
	resp = multipartUpload(t, "PUT", server.URL+"/api/products/"+itoa(id)+"/image", "image", "notes.txt", []byte("not an image"))
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for non-image upload, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestHealthEndpoint(t *testing.T) {
	server := setupTestServer(t)

	resp, err := http.Get(server.URL + "/health")
	if err != nil {
		t.Fatalf("health request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
