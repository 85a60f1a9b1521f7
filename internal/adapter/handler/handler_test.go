package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	apperrors "github.com/clipforge/clipforge/errors"
	"github.com/clipforge/clipforge/internal/domain/entities"
	"github.com/clipforge/clipforge/pkg/validator"
)

type stubJobService struct {
	submit func(episodeID string, cfg entities.JobConfig) (*entities.ClipJob, error)
	status func(jobID uuid.UUID) (*entities.ClipJob, []entities.ClipCandidate, error)
	cancel func(jobID uuid.UUID) error
}

func (s *stubJobService) Submit(ctx context.Context, episodeID string, cfg entities.JobConfig) (*entities.ClipJob, error) {
	return s.submit(episodeID, cfg)
}

func (s *stubJobService) Status(ctx context.Context, jobID uuid.UUID) (*entities.ClipJob, []entities.ClipCandidate, error) {
	return s.status(jobID)
}

func (s *stubJobService) Cancel(ctx context.Context, jobID uuid.UUID) error {
	return s.cancel(jobID)
}

type stubEpisodes struct {
	byID map[string]*entities.Episode
}

func (s *stubEpisodes) Upsert(ctx context.Context, episode *entities.Episode) error { return nil }

func (s *stubEpisodes) GetByID(ctx context.Context, id string) (*entities.Episode, error) {
	return s.byID[id], nil
}

func (s *stubEpisodes) List(ctx context.Context) ([]entities.Episode, error) {
	var out []entities.Episode
	for _, e := range s.byID {
		out = append(out, *e)
	}
	return out, nil
}

func (s *stubEpisodes) UpdateStatus(ctx context.Context, id string, status entities.EpisodeStatus) error {
	return nil
}

func (s *stubEpisodes) SetFlags(ctx context.Context, id string, hasVideo, hasTranscript bool) error {
	return nil
}

type stubUploader struct {
	uploads int
	lastLen int
	err     error
}

func (s *stubUploader) Upload(ctx context.Context, episode *entities.Episode, raw []entities.Utterance) error {
	s.uploads++
	s.lastLen = len(raw)
	return s.err
}

func newContext(t *testing.T, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = validator.New()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decodeDetail(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not a detail object: %s", rec.Body.String())
	}
	if body.Detail == "" {
		t.Fatalf("detail field missing or empty: %s", rec.Body.String())
	}
	return body.Detail
}

func TestSubmitAccepted(t *testing.T) {
	job := entities.NewClipJob("EP001", entities.JobConfig{})
	svc := &stubJobService{submit: func(episodeID string, cfg entities.JobConfig) (*entities.ClipJob, error) {
		if episodeID != "EP001" {
			t.Fatalf("unexpected episode id %s", episodeID)
		}
		if cfg.MinScore != 80 {
			t.Fatalf("min_score not forwarded, got %v", cfg.MinScore)
		}
		return job, nil
	}}

	c, rec := newContext(t, http.MethodPost, "/v1/episodes/EP001/process", `{"min_score": 80}`)
	c.SetParamNames("id")
	c.SetParamValues("EP001")

	if err := NewJob(svc, nil, nil).Submit(c); err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		JobID  string `json:"job_id"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if resp.JobID != job.ID.String() || resp.Status != "queued" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestSubmitMinScoreZeroIsNotDefaulted(t *testing.T) {
	job := entities.NewClipJob("EP001", entities.JobConfig{})
	var got float64
	svc := &stubJobService{submit: func(episodeID string, cfg entities.JobConfig) (*entities.ClipJob, error) {
		got = cfg.MinScore
		return job, nil
	}}

	// Explicit zero means "select every ranked clip"
	c, rec := newContext(t, http.MethodPost, "/v1/episodes/EP001/process", `{"min_score": 0}`)
	c.SetParamNames("id")
	c.SetParamValues("EP001")
	if err := NewJob(svc, nil, nil).Submit(c); err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	if got != 0 {
		t.Fatalf("explicit zero floor must reach the service as 0, got %v", got)
	}

	// An absent field takes the default floor
	c, _ = newContext(t, http.MethodPost, "/v1/episodes/EP001/process", `{}`)
	c.SetParamNames("id")
	c.SetParamValues("EP001")
	if err := NewJob(svc, nil, nil).Submit(c); err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if got != entities.DefaultMinScore {
		t.Fatalf("absent min_score must default to %d, got %v", entities.DefaultMinScore, got)
	}
}

func TestSubmitConflictWhenJobActive(t *testing.T) {
	svc := &stubJobService{submit: func(episodeID string, cfg entities.JobConfig) (*entities.ClipJob, error) {
		return nil, apperrors.ErrJobAlreadyRunning(episodeID)
	}}

	c, rec := newContext(t, http.MethodPost, "/v1/episodes/EP001/process", `{}`)
	c.SetParamNames("id")
	c.SetParamValues("EP001")

	if err := NewJob(svc, nil, nil).Submit(c); err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	decodeDetail(t, rec)
}

func TestSubmitValidationFailure(t *testing.T) {
	called := false
	svc := &stubJobService{submit: func(episodeID string, cfg entities.JobConfig) (*entities.ClipJob, error) {
		called = true
		return nil, nil
	}}

	// subtitle_style outside the allowed set fails request validation
	c, rec := newContext(t, http.MethodPost, "/v1/episodes/EP001/process", `{"subtitle_style": "comic_sans"}`)
	c.SetParamNames("id")
	c.SetParamValues("EP001")

	if err := NewJob(svc, nil, nil).Submit(c); err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	decodeDetail(t, rec)
	if called {
		t.Fatal("service must not be reached on validation failure")
	}
}

func TestStatusNotFound(t *testing.T) {
	svc := &stubJobService{status: func(jobID uuid.UUID) (*entities.ClipJob, []entities.ClipCandidate, error) {
		return nil, nil, apperrors.ErrNotFound("job")
	}}

	id := uuid.New()
	c, rec := newContext(t, http.MethodGet, "/v1/jobs/"+id.String(), "")
	c.SetParamNames("id")
	c.SetParamValues(id.String())

	if err := NewJob(svc, nil, nil).Status(c); err != nil {
		t.Fatalf("Status returned error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	decodeDetail(t, rec)
}

func TestStatusReturnsClips(t *testing.T) {
	job := entities.NewClipJob("EP001", entities.JobConfig{})
	job.MarkCompleted("2 clips rendered")
	clip := entities.NewClipCandidate(job.ID, "EP001", 10, 55)
	clip.Finalize(entities.ViralityScore{HookStrength: 9, Storytelling: 8})

	svc := &stubJobService{status: func(jobID uuid.UUID) (*entities.ClipJob, []entities.ClipCandidate, error) {
		return job, []entities.ClipCandidate{*clip}, nil
	}}

	c, rec := newContext(t, http.MethodGet, "/v1/jobs/"+job.ID.String(), "")
	c.SetParamNames("id")
	c.SetParamValues(job.ID.String())

	if err := NewJob(svc, nil, nil).Status(c); err != nil {
		t.Fatalf("Status returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Status string `json:"status"`
		Clips  []struct {
			Score  float64 `json:"score"`
			Status string  `json:"status"`
		} `json:"clips"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if resp.Status != "completed" || len(resp.Clips) != 1 || resp.Clips[0].Score != 17 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestCancelRejectsBadID(t *testing.T) {
	svc := &stubJobService{cancel: func(jobID uuid.UUID) error { return nil }}

	c, rec := newContext(t, http.MethodDelete, "/v1/jobs/not-a-uuid", "")
	c.SetParamNames("id")
	c.SetParamValues("not-a-uuid")

	if err := NewJob(svc, nil, nil).Cancel(c); err != nil {
		t.Fatalf("Cancel returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	decodeDetail(t, rec)
}

type stubFileStore struct {
	objects []string
}

func (s *stubFileStore) ListJobFiles(ctx context.Context, jobID string) ([]string, error) {
	return s.objects, nil
}

func (s *stubFileStore) GetFileURL(ctx context.Context, objectName string, expiry time.Duration) (string, error) {
	return "https://files.local/" + objectName, nil
}

func TestFilesListsArtifactsWithSignedURLs(t *testing.T) {
	job := entities.NewClipJob("EP001", entities.JobConfig{})
	svc := &stubJobService{status: func(jobID uuid.UUID) (*entities.ClipJob, []entities.ClipCandidate, error) {
		return job, nil, nil
	}}
	files := &stubFileStore{objects: []string{"jobs/" + job.ID.String() + "/clip.mp4"}}

	c, rec := newContext(t, http.MethodGet, "/v1/jobs/"+job.ID.String()+"/files", "")
	c.SetParamNames("id")
	c.SetParamValues(job.ID.String())

	if err := NewJob(svc, files, nil).Files(c); err != nil {
		t.Fatalf("Files returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp []struct {
		Object string `json:"object"`
		URL    string `json:"url"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if len(resp) != 1 || !strings.HasSuffix(resp[0].Object, "clip.mp4") || !strings.HasPrefix(resp[0].URL, "https://files.local/") {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestFilesWithoutStorageReturnsEmptyList(t *testing.T) {
	job := entities.NewClipJob("EP001", entities.JobConfig{})
	svc := &stubJobService{status: func(jobID uuid.UUID) (*entities.ClipJob, []entities.ClipCandidate, error) {
		return job, nil, nil
	}}

	c, rec := newContext(t, http.MethodGet, "/v1/jobs/"+job.ID.String()+"/files", "")
	c.SetParamNames("id")
	c.SetParamValues(job.ID.String())

	if err := NewJob(svc, nil, nil).Files(c); err != nil {
		t.Fatalf("Files returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Fatalf("expected empty list, got %s", body)
	}
}

func TestUploadTranscriptStoresUtterances(t *testing.T) {
	uploader := &stubUploader{}
	h := NewEpisode(&stubEpisodes{byID: map[string]*entities.Episode{}}, uploader, nil)

	body := `{"title": "Episode One", "utterances": [
		{"speaker": "A", "text": "hello there", "start_time": 0, "end_time": 2},
		{"speaker": "B", "text": "welcome back", "start_time": 2, "end_time": 4}
	]}`
	c, rec := newContext(t, http.MethodPost, "/v1/episodes/EP001/upload-transcript", body)
	c.SetParamNames("id")
	c.SetParamValues("EP001")

	if err := h.UploadTranscript(c); err != nil {
		t.Fatalf("UploadTranscript returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if uploader.uploads != 1 || uploader.lastLen != 2 {
		t.Fatalf("uploader not invoked as expected: %+v", uploader)
	}

	var resp struct {
		EpisodeID  string `json:"episode_id"`
		Utterances int    `json:"utterances"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if resp.EpisodeID != "EP001" || resp.Utterances != 2 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestUploadTranscriptRejectsEmptyPayload(t *testing.T) {
	uploader := &stubUploader{}
	h := NewEpisode(&stubEpisodes{byID: map[string]*entities.Episode{}}, uploader, nil)

	c, rec := newContext(t, http.MethodPost, "/v1/episodes/EP001/upload-transcript", `{"utterances": []}`)
	c.SetParamNames("id")
	c.SetParamValues("EP001")

	if err := h.UploadTranscript(c); err != nil {
		t.Fatalf("UploadTranscript returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	decodeDetail(t, rec)
	if uploader.uploads != 0 {
		t.Fatal("uploader must not run on invalid payload")
	}
}

func TestUploadTranscriptMalformedTimesReturn422(t *testing.T) {
	uploader := &stubUploader{err: apperrors.ErrMalformedTranscript("EP001", "end_time before start_time")}
	h := NewEpisode(&stubEpisodes{byID: map[string]*entities.Episode{}}, uploader, nil)

	body := `{"utterances": [{"speaker": "A", "text": "x", "start_time": 5, "end_time": 1}]}`
	c, rec := newContext(t, http.MethodPost, "/v1/episodes/EP001/upload-transcript", body)
	c.SetParamNames("id")
	c.SetParamValues("EP001")

	if err := h.UploadTranscript(c); err != nil {
		t.Fatalf("UploadTranscript returned error: %v", err)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	decodeDetail(t, rec)
}

func TestRouterWiresHealth(t *testing.T) {
	e := echo.New()
	e.Validator = validator.New()

	svc := &stubJobService{
		submit: func(string, entities.JobConfig) (*entities.ClipJob, error) { return nil, nil },
		status: func(uuid.UUID) (*entities.ClipJob, []entities.ClipCandidate, error) {
			return nil, nil, apperrors.ErrNotFound("job")
		},
		cancel: func(uuid.UUID) error { return nil },
	}
	rt := NewRouter(nil, NewJob(svc, nil, nil), NewEpisode(&stubEpisodes{byID: map[string]*entities.Episode{}}, &stubUploader{}, nil))
	rt.Setup(e)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("health check failed: %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/jobs/"+uuid.NewString(), nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 from job status route, got %d", rec.Code)
	}
}
