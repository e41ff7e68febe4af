package web

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"meeting-brief-service/internal/config"
	"meeting-brief-service/internal/domain"
	"meeting-brief-service/internal/domain/model"
	"meeting-brief-service/internal/infra/worker"
	"meeting-brief-service/internal/usecase"
)

// ---- fakes ----

type fakeSubmissionUC struct {
	job  *model.BriefJob
	err  error
	meta model.MeetingMetadata
	n    int
}

func (f *fakeSubmissionUC) Submit(ctx context.Context, meta model.MeetingMetadata, files []usecase.UploadedFile) (*model.BriefJob, error) {
	f.n++
	f.meta = meta
	if f.err != nil {
		return nil, f.err
	}
	return f.job, nil
}

type fakeQueryUC struct {
	status *usecase.JobStatusView
	brief  *model.BriefWithMeeting
	err    error
}

func (f *fakeQueryUC) JobStatus(ctx context.Context, jobID string) (*usecase.JobStatusView, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.status, nil
}

func (f *fakeQueryUC) GetBrief(ctx context.Context, id string) (*model.BriefWithMeeting, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.brief, nil
}

func (f *fakeQueryUC) ListBriefs(ctx context.Context, offset, limit int) ([]*model.BriefWithMeeting, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.brief == nil {
		return nil, nil
	}
	return []*model.BriefWithMeeting{f.brief}, nil
}

func newTestServer(submit *fakeSubmissionUC, query *fakeQueryUC) *Server {
	logger := zerolog.Nop()
	// The pool is never started: submissions queue up and are not executed,
	// which keeps handler tests synchronous.
	pool := worker.NewPool(1, &logger)
	processor := worker.NewBriefJobProcessor(nil, nil, nil, nil, nil, nil, nil, &logger)
	return NewServer(submit, query, pool, processor, config.BriefConfig{MaxFiles: 10, MaxFileBytes: 10 << 20}, &logger)
}

func multipartBody(t *testing.T, metadata string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if metadata != "" {
		if err := w.WriteField("metadata", metadata); err != nil {
			t.Fatal(err)
		}
	}
	for name, content := range files {
		fw, err := w.CreateFormFile("files", name)
		if err != nil {
			t.Fatal(err)
		}
		fmt.Fprint(fw, content)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, w.FormDataContentType()
}

const validMetadata = `{"title": "Q3 Launch", "attendees": "Ana, Li", "meeting_type": "decision", "audience_level": "exec"}`

// ---- tests ----

func TestSubmitAccepted(t *testing.T) {
	submit := &fakeSubmissionUC{job: &model.BriefJob{ID: "01J5TESTJOB", Status: model.JobStatusPending}}
	srv := newTestServer(submit, &fakeQueryUC{})

	body, contentType := multipartBody(t, validMetadata, map[string]string{"notes.txt": "agenda"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/briefs", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["job_id"] != "01J5TESTJOB" {
		t.Errorf("job_id = %q", resp["job_id"])
	}
	if submit.meta.Title != "Q3 Launch" || submit.meta.AudienceLevel != model.AudienceExec {
		t.Errorf("metadata not forwarded: %+v", submit.meta)
	}
}

func TestSubmitMissingMetadata(t *testing.T) {
	srv := newTestServer(&fakeSubmissionUC{}, &fakeQueryUC{})

	body, contentType := multipartBody(t, "", map[string]string{"notes.txt": "agenda"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/briefs", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestSubmitNotMultipart(t *testing.T) {
	srv := newTestServer(&fakeSubmissionUC{}, &fakeQueryUC{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/briefs", bytes.NewBufferString("{}"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestSubmitNoParsableDocuments(t *testing.T) {
	submit := &fakeSubmissionUC{err: fmt.Errorf("%w: failed to parse any documents", domain.ErrParseFailure)}
	srv := newTestServer(submit, &fakeQueryUC{})

	body, contentType := multipartBody(t, validMetadata, map[string]string{"budget.xlsx": "not a zip"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/briefs", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
}

func TestSubmitInvalidMetadataEnums(t *testing.T) {
	submit := &fakeSubmissionUC{err: domain.ErrInvalidArgument}
	srv := newTestServer(submit, &fakeQueryUC{})

	body, contentType := multipartBody(t, `{"title": "x", "attendees": "y", "meeting_type": "party", "audience_level": "exec"}`, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/briefs", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestJobStatusFound(t *testing.T) {
	query := &fakeQueryUC{status: &usecase.JobStatusView{
		Status:    model.JobStatusProcessing,
		Progress:  30,
		CreatedAt: time.Now(),
	}}
	srv := newTestServer(&fakeSubmissionUC{}, query)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs/01J5TESTJOB", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Status   string `json:"status"`
		Progress int    `json:"progress"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "processing" || resp.Progress != 30 {
		t.Errorf("payload = %+v", resp)
	}
}

func TestJobStatusNotFound(t *testing.T) {
	srv := newTestServer(&fakeSubmissionUC{}, &fakeQueryUC{err: domain.ErrNotFound})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs/missing", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestGetBriefSurfacesGeneratedAt(t *testing.T) {
	created := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	query := &fakeQueryUC{brief: &model.BriefWithMeeting{
		Brief:   &model.Brief{ID: "b1", Goal: "g", CreatedAt: created},
		Meeting: &model.Meeting{ID: "m1", Title: "Q3"},
	}}
	srv := newTestServer(&fakeSubmissionUC{}, query)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/briefs/b1", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Brief struct {
			GeneratedAt time.Time `json:"generated_at"`
		} `json:"brief"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Brief.GeneratedAt.Equal(created) {
		t.Errorf("generated_at = %v, want %v", resp.Brief.GeneratedAt, created)
	}
}

func TestListBriefs(t *testing.T) {
	query := &fakeQueryUC{brief: &model.BriefWithMeeting{
		Brief:   &model.Brief{ID: "b1", Goal: "g"},
		Meeting: &model.Meeting{ID: "m1", Title: "Q3"},
	}}
	srv := newTestServer(&fakeSubmissionUC{}, query)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/briefs?limit=5", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Briefs []json.RawMessage `json:"briefs"`
		Limit  int               `json:"limit"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Briefs) != 1 || resp.Limit != 5 {
		t.Errorf("briefs=%d limit=%d", len(resp.Briefs), resp.Limit)
	}
}

func TestHealth(t *testing.T) {
	srv := newTestServer(&fakeSubmissionUC{}, &fakeQueryUC{})
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
}
