package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/docsift/internal/config"
	"github.com/dgallion1/docsift/internal/embed"
	"github.com/dgallion1/docsift/internal/pipeline"
	"github.com/dgallion1/docsift/internal/rank"
	"github.com/dgallion1/docsift/internal/recommend"
)

const testAPIKey = "test-key"

type keywordEmbedder struct {
	keywords []string
}

func (e keywordEmbedder) ModelID() string { return "keyword-test" }

func (e keywordEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		lt := strings.ToLower(t)
		v := make([]float32, len(e.keywords))
		for j, k := range e.keywords {
			if strings.Contains(lt, k) {
				v[j] = 1
			}
		}
		embed.Normalize(v)
		out[i] = v
	}
	return out, nil
}

func newTestServer(t *testing.T) (*Server, *pipeline.Orchestrator) {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.Config{
		APIKey:         testAPIKey,
		WorkerCount:    1,
		MaxQueueSize:   4,
		MaxUploadBytes: 1 << 20,
		JobTTL:         time.Hour,
	}

	embedder := keywordEmbedder{keywords: []string{"beach", "history"}}
	ranker := rank.NewRanker(embedder, nil, log)
	processor := pipeline.NewProcessor(embedder, ranker, recommend.NewLibrary(), 0, log)
	orch := pipeline.NewOrchestrator(cfg, processor, log)
	orch.Start(context.Background())
	t.Cleanup(orch.Stop)

	return NewServer(orch, log, cfg), orch
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestAuthRequired(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/collections", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/collections/x/status", nil)
	req.Header.Set("Authorization", "Bearer wrong-key")
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 with bad token, got %d", rec.Code)
	}
}

func collectionRequest(t *testing.T, persona, job string, files map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	w.WriteField("persona", persona)
	w.WriteField("job_to_be_done", job)
	w.WriteField("collection", "test-collection")
	for name, content := range files {
		part, err := w.CreateFormFile("files", name)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		part.Write([]byte(content))
	}
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/collections", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+testAPIKey)
	return req
}

func TestSubmitCollection_EndToEnd(t *testing.T) {
	srv, _ := newTestServer(t)

	md := "# Guide\n\nIntro.\n\n## Beach Life\n\nThe beach is warm and sandy.\n\n## Old History\n\nFounded long ago.\n"
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, collectionRequest(t, "Student", "relax at the beach", map[string]string{"guide.md": md}))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}

	var accepted struct {
		JobID string `json:"job_id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &accepted); err != nil {
		t.Fatalf("decode accept response: %v", err)
	}
	if accepted.JobID == "" {
		t.Fatalf("expected a job id")
	}

	// Poll until the worker finishes.
	deadline := time.Now().Add(5 * time.Second)
	var status pipeline.JobSnapshot
	for {
		rec = httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/collections/"+accepted.JobID+"/status", nil)
		req.Header.Set("Authorization", "Bearer "+testAPIKey)
		srv.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status endpoint returned %d", rec.Code)
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
			t.Fatalf("decode status: %v", err)
		}
		if status.Status == pipeline.StatusCompleted || status.Status == pipeline.StatusFailed {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("job did not finish, last status %s", status.Status)
		}
		time.Sleep(10 * time.Millisecond)
	}
	if status.Status != pipeline.StatusCompleted {
		t.Fatalf("expected completed job, got %s: %v", status.Status, status.Progress.Errors)
	}

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/collections/"+accepted.JobID+"/result", nil)
	req.Header.Set("Authorization", "Bearer "+testAPIKey)
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("result endpoint returned %d: %s", rec.Code, rec.Body.String())
	}

	var result pipeline.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if len(result.ExtractedSections) == 0 {
		t.Fatalf("expected extracted sections")
	}
	if result.ExtractedSections[0].SectionTitle != "Beach Life" {
		t.Errorf("expected the beach section first, got %q", result.ExtractedSections[0].SectionTitle)
	}
}

func TestSubmitCollection_Validation(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, collectionRequest(t, "", "job", map[string]string{"a.md": "text"}))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without persona, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, collectionRequest(t, "p", "j", map[string]string{"a.exe": "binary"}))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 when no usable files remain, got %d", rec.Code)
	}
}

func TestCollectionStatus_UnknownJob(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/collections/nope/status", nil)
	req.Header.Set("Authorization", "Bearer "+testAPIKey)
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestOutlineEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, _ := w.CreateFormFile("file", "doc.md")
	part.Write([]byte("# Top Level\n\ntext\n\n## Nested Part\n\nmore\n"))
	w.Close()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/outline", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+testAPIKey)
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var o struct {
		Headings []struct {
			Title string `json:"title"`
			Level string `json:"level"`
		} `json:"headings"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &o); err != nil {
		t.Fatalf("decode outline: %v", err)
	}
	if len(o.Headings) != 2 {
		t.Fatalf("expected 2 headings, got %d", len(o.Headings))
	}
	if o.Headings[0].Level != "H1" || o.Headings[1].Level != "H2" {
		t.Errorf("unexpected levels: %+v", o.Headings)
	}
}
