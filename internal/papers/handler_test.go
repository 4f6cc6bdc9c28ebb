package papers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"scholarscan-backend/internal/bootstrap"
	"scholarscan-backend/internal/extract"
	"scholarscan-backend/internal/papers"
	"scholarscan-backend/internal/shared/config"
)

type stubExtractor struct {
	res extract.Result
	err error
}

func (s stubExtractor) Extract(ctx context.Context, data []byte) (extract.Result, error) {
	_ = ctx
	_ = data
	return s.res, s.err
}

type stubLLM struct {
	out string
	err error
}

func (s stubLLM) Analyze(ctx context.Context, prompt string) (string, error) {
	_ = ctx
	_ = prompt
	return s.out, s.err
}

const analysisResponse = `{
	"title": "CRISPR Off-Target Effects",
	"authors": "Okafor, Lindqvist",
	"summary": "Quantifies off-target edits across cell lines.",
	"keywords": ["crispr", "gene editing"],
	"category": "Biology",
	"publicationYear": 2023,
	"keyFindings": [
		{"finding": "Off-target rate under 0.1%", "section": "Results", "pageNumber": 5, "confidence": "high"}
	]
}`

func newTestApp(t *testing.T, ext extract.Extractor, model stubLLM) *bootstrap.App {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Config{
		Port:            "0",
		Env:             "dev",
		CORSAllowOrigin: []string{"http://localhost:5173"},
		ObjectStoreType: "local",
		LocalStoreDir:   t.TempDir(),
		MaxUploadBytes:  10 << 20,
	}
	app, err := bootstrap.Build(cfg)
	if err != nil {
		t.Fatalf("bootstrap build: %v", err)
	}
	app.PapersService.Extractor = ext
	app.PapersService.LLM = model
	return app
}

func uploadPDF(t *testing.T, router *gin.Engine, guestID, fileName string, payload []byte) *httptest.ResponseRecorder {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	fileWriter, err := writer.CreateFormFile("pdf", fileName)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fileWriter.Write(payload); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/papers", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("X-Guest-Id", guestID)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestUploadAndFetchPaper(t *testing.T) {
	extractor := stubExtractor{res: extract.Result{Text: strings.Repeat("gene editing ", 30), PageCount: 9}}
	app := newTestApp(t, extractor, stubLLM{out: analysisResponse})

	resp := uploadPDF(t, app.Router, "guest-a", "crispr_study.pdf", []byte("%PDF-fake"))
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var created struct {
		Paper struct {
			PaperID  string `json:"paperId"`
			Title    string `json:"title"`
			Category string `json:"category"`
		} `json:"paper"`
		Degraded bool `json:"degraded"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if created.Paper.PaperID == "" {
		t.Fatalf("expected paperId")
	}
	if created.Paper.Title != "CRISPR Off-Target Effects" {
		t.Fatalf("title = %q", created.Paper.Title)
	}
	if created.Degraded {
		t.Fatalf("expected non-degraded upload")
	}

	reqGet := httptest.NewRequest(http.MethodGet, "/api/v1/papers/"+created.Paper.PaperID, nil)
	reqGet.Header.Set("X-Guest-Id", "guest-a")
	respGet := httptest.NewRecorder()
	app.Router.ServeHTTP(respGet, reqGet)
	if respGet.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", respGet.Code)
	}

	var fetched papers.PaperResponse
	if err := json.NewDecoder(respGet.Body).Decode(&fetched); err != nil {
		t.Fatalf("decode get response: %v", err)
	}
	if fetched.Category != "Biology" {
		t.Fatalf("category = %q", fetched.Category)
	}
	if len(fetched.KeyFindings) != 1 {
		t.Fatalf("keyFindings = %d", len(fetched.KeyFindings))
	}
}

func TestUploadRejectsNonPDF(t *testing.T) {
	extractor := stubExtractor{res: extract.Result{Text: "text", PageCount: 1}}
	app := newTestApp(t, extractor, stubLLM{out: analysisResponse})

	resp := uploadPDF(t, app.Router, "guest-a", "notes.txt", []byte("plain text"))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
}

func TestUploadMapsExtractionErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"encrypted", extract.ErrEncrypted, http.StatusBadRequest},
		{"corrupt", extract.ErrCorrupt, http.StatusBadRequest},
		{"no text", extract.ErrEmptyOrImageOnly, http.StatusBadRequest},
		{"parser failure", fmt.Errorf("%w: render stream broken", extract.ErrExtractionFailed), http.StatusBadRequest},
		{"unavailable", extract.ErrUnavailable, http.StatusNotImplemented},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newTestApp(t, stubExtractor{err: tc.err}, stubLLM{out: analysisResponse})
			resp := uploadPDF(t, app.Router, "guest-a", "bad.pdf", []byte("%PDF-fake"))
			if resp.Code != tc.want {
				t.Fatalf("expected status %d, got %d", tc.want, resp.Code)
			}
		})
	}
}

func TestUploadDegradedStillCreates(t *testing.T) {
	extractor := stubExtractor{res: extract.Result{Text: strings.Repeat("body ", 30), PageCount: 3}}
	app := newTestApp(t, extractor, stubLLM{err: errors.New("model overloaded")})

	resp := uploadPDF(t, app.Router, "guest-a", "graph_neural_nets.pdf", []byte("%PDF-fake"))
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var created struct {
		Paper struct {
			Title string `json:"title"`
		} `json:"paper"`
		Degraded bool `json:"degraded"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !created.Degraded {
		t.Fatalf("expected degraded response")
	}
	if created.Paper.Title != "graph neural nets" {
		t.Fatalf("title = %q", created.Paper.Title)
	}
}

func TestPapersAreUserScoped(t *testing.T) {
	extractor := stubExtractor{res: extract.Result{Text: strings.Repeat("secret ", 30), PageCount: 2}}
	app := newTestApp(t, extractor, stubLLM{out: analysisResponse})

	resp := uploadPDF(t, app.Router, "guest-a", "private.pdf", []byte("%PDF-fake"))
	if resp.Code != http.StatusCreated {
		t.Fatalf("upload: %d", resp.Code)
	}
	var created struct {
		Paper struct {
			PaperID string `json:"paperId"`
		} `json:"paper"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/papers/"+created.Paper.PaperID, nil)
	req.Header.Set("X-Guest-Id", "guest-b")
	other := httptest.NewRecorder()
	app.Router.ServeHTTP(other, req)
	if other.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for other user, got %d", other.Code)
	}

	reqList := httptest.NewRequest(http.MethodGet, "/api/v1/papers", nil)
	reqList.Header.Set("X-Guest-Id", "guest-b")
	listResp := httptest.NewRecorder()
	app.Router.ServeHTTP(listResp, reqList)
	var list []json.RawMessage
	if err := json.NewDecoder(listResp.Body).Decode(&list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected empty list for stranger, got %d", len(list))
	}
}

func TestUpdateRejectsUnknownCategory(t *testing.T) {
	extractor := stubExtractor{res: extract.Result{Text: strings.Repeat("body ", 30), PageCount: 2}}
	app := newTestApp(t, extractor, stubLLM{out: analysisResponse})

	resp := uploadPDF(t, app.Router, "guest-a", "edit_me.pdf", []byte("%PDF-fake"))
	var created struct {
		Paper struct {
			PaperID string `json:"paperId"`
		} `json:"paper"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	payload := bytes.NewBufferString(`{"category": "Numerology"}`)
	req := httptest.NewRequest(http.MethodPut, "/api/v1/papers/"+created.Paper.PaperID, payload)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Guest-Id", "guest-a")
	update := httptest.NewRecorder()
	app.Router.ServeHTTP(update, req)
	if update.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", update.Code)
	}
}

func TestHealthRequiresNoAuth(t *testing.T) {
	app := newTestApp(t, stubExtractor{}, stubLLM{out: analysisResponse})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	resp := httptest.NewRecorder()
	app.Router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
}

func TestRequestsWithoutIdentityAreRejected(t *testing.T) {
	app := newTestApp(t, stubExtractor{}, stubLLM{out: analysisResponse})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/papers", nil)
	resp := httptest.NewRecorder()
	app.Router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}
