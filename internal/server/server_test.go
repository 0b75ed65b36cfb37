package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bcmimarlik/site/internal/config"
	"github.com/bcmimarlik/site/internal/llm"
	"github.com/bcmimarlik/site/internal/model"
	"github.com/bcmimarlik/site/internal/render"
	"github.com/bcmimarlik/site/internal/service"
	"github.com/bcmimarlik/site/internal/session"
	"github.com/bcmimarlik/site/internal/store"
	"github.com/bcmimarlik/site/internal/tester"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const adminPassword = "kapı"

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	logrus.SetLevel(logrus.WarnLevel)
	os.Exit(m.Run())
}

type testServer struct {
	handler http.Handler
	store   *store.FileStore
	token   string
}

type options struct {
	path      string
	generator service.Generator
	auth      Authenticator
}

func newTestServer(t *testing.T, opts options) *testServer {
	t.Helper()

	if opts.path == "" {
		opts.path = tester.ContentPath(t)
	}
	if opts.auth == nil {
		opts.auth = NewNullTokenService()
	}

	fileStore := store.NewFileStore(opts.path)
	content := service.NewContentService(fileStore, nil)

	renderer, err := render.NewRenderer()
	require.NoError(t, err)

	handler := NewRouter(Deps{
		Content:      content,
		Analysis:     service.NewAnalysisService(opts.generator),
		Appointments: service.NewAppointmentService(),
		Auth:         opts.auth,
		Sessions:     session.NewRegistry(session.NewLocalClient(content)),
		Renderer:     renderer,
	})

	return &testServer{handler: handler, store: fileStore}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type generatorFunc func(ctx context.Context, prompt string) (*llm.Response, error)

func (f generatorFunc) Generate(ctx context.Context, prompt string) (*llm.Response, error) {
	return f(ctx, prompt)
}

func TestContent_GetDefault(t *testing.T) {
	s := newTestServer(t, options{})

	rec := s.do(t, http.MethodGet, "/api/site-data", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.Default(), decode[*model.SiteDocument](t, rec))
}

func TestContent_GetCorruptFile(t *testing.T) {
	path := tester.ContentPath(t)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	s := newTestServer(t, options{path: path})

	rec := s.do(t, http.MethodGet, "/api/site-data", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.Default(), decode[*model.SiteDocument](t, rec))
}

func TestContent_Save(t *testing.T) {
	s := newTestServer(t, options{})

	rec := s.do(t, http.MethodPost, "/api/site-data", tester.Document())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"success": true}, decode[map[string]any](t, rec))

	rec = s.do(t, http.MethodGet, "/api/site-data", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, tester.Document(), decode[*model.SiteDocument](t, rec))
}

func TestContent_SaveRejected(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "projects object", body: `{"projects": {}, "contact": {}, "links": {}}`},
		{name: "projects null", body: `{"projects": null, "contact": {}, "links": {}}`},
		{name: "projects missing", body: `{"contact": {}, "links": {}}`},
		{name: "malformed json", body: `{"projects": [`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, options{})
			require.NoError(t, s.store.Save(context.TODO(), tester.Document()))

			rec := s.do(t, http.MethodPost, "/api/site-data", tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.NotEmpty(t, decode[errorResponse](t, rec).Error)

			stored, err := s.store.Load(context.TODO())
			require.NoError(t, err)
			assert.Equal(t, tester.Document(), stored)
		})
	}
}

func TestContent_SaveWriteFailure(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
	s := newTestServer(t, options{path: filepath.Join(blocker, "site-data.json")})

	rec := s.do(t, http.MethodPost, "/api/site-data", tester.Document())
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, service.ErrWriteFailed.Error(), decode[errorResponse](t, rec).Error)
}

func TestPage(t *testing.T) {
	s := newTestServer(t, options{})
	require.NoError(t, s.store.Save(context.TODO(), tester.Document()))

	rec := s.do(t, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "Gökova Evi")
	assert.Contains(t, rec.Body.String(), "https://wa.me/905321234567")
}

func TestAnalyze(t *testing.T) {
	failing := generatorFunc(func(ctx context.Context, prompt string) (*llm.Response, error) {
		return nil, llm.ErrNoModels
	})
	working := generatorFunc(func(ctx context.Context, prompt string) (*llm.Response, error) {
		return &llm.Response{Content: "Taş ve ahşap bir araya geliyor."}, nil
	})

	tests := []struct {
		name      string
		generator service.Generator
		body      string
		code      int
		source    string
	}{
		{name: "provider", generator: working, body: `{"emotion":"huzur","material":"taş","nature":"orman"}`, code: http.StatusOK, source: service.SourceProvider},
		{name: "provider failure", generator: failing, body: `{"emotion":"huzur","material":"taş","nature":"orman"}`, code: http.StatusOK, source: service.SourceFallback},
		{name: "no provider", body: `{"emotion":"huzur","material":"taş","nature":"orman"}`, code: http.StatusOK, source: service.SourceFallback},
		{name: "missing field", generator: working, body: `{"emotion":"huzur","material":"taş"}`, code: http.StatusBadRequest},
		{name: "blank field", generator: working, body: `{"emotion":"huzur","material":"  ","nature":"orman"}`, code: http.StatusBadRequest},
		{name: "unparsable body", generator: working, body: `{"emotion":`, code: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, options{generator: tt.generator})

			rec := s.do(t, http.MethodPost, "/api/analyze", tt.body)
			require.Equal(t, tt.code, rec.Code, rec.Body.String())

			if tt.code != http.StatusOK {
				assert.NotEmpty(t, decode[errorResponse](t, rec).Error)
				return
			}

			res := decode[service.Analysis](t, rec)
			assert.Equal(t, tt.source, res.Source)
			assert.NotEmpty(t, res.Analysis)
		})
	}
}

func TestAppointments(t *testing.T) {
	s := newTestServer(t, options{})

	rec := s.do(t, http.MethodPost, "/api/appointments", service.Appointment{Name: "Ayşe", Phone: "0532 000 00 00"})
	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.NotEmpty(t, decode[map[string]string](t, rec)["reference"])

	rec = s.do(t, http.MethodPost, "/api/appointments", service.Appointment{Name: "Ayşe"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuth(t *testing.T) {
	auth := service.NewAuthService(config.AuthConfig{Password: adminPassword})
	s := newTestServer(t, options{auth: auth})

	rec := s.do(t, http.MethodPost, "/api/site-data", tester.Document())
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/admin/sessions", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/admin/login", loginRequest{Password: "yanlış"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/admin/login", loginRequest{Password: adminPassword})
	require.Equal(t, http.StatusOK, rec.Code)
	login := decode[loginResponse](t, rec)
	require.NotEmpty(t, login.Token)

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "site_token" {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.Equal(t, login.Token, cookie.Value)

	s.token = login.Token
	rec = s.do(t, http.MethodPost, "/api/site-data", tester.Document())
	assert.Equal(t, http.StatusOK, rec.Code)

	// the public read stays open
	s.token = ""
	rec = s.do(t, http.MethodGet, "/api/site-data", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuth_Cookie(t *testing.T) {
	auth := service.NewAuthService(config.AuthConfig{Password: adminPassword})
	s := newTestServer(t, options{auth: auth})

	token, _, err := auth.Login(context.TODO(), adminPassword)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/sessions", nil)
	req.AddCookie(&http.Cookie{Name: "site_token", Value: token})
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestAdminSession_Flow(t *testing.T) {
	s := newTestServer(t, options{})
	require.NoError(t, s.store.Save(context.TODO(), tester.Document()))

	rec := s.do(t, http.MethodPost, "/api/admin/sessions", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[sessionResponse](t, rec)
	require.NotEmpty(t, created.ID)
	assert.Empty(t, created.Notice)
	assert.False(t, created.Dirty)
	assert.Equal(t, tester.Document(), created.Document)

	base := "/api/admin/sessions/" + created.ID

	rec = s.do(t, http.MethodPatch, base+"/fields", updateFieldRequest{Path: "contact.phoneText", Value: "0252 111 22 33"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, decode[sessionResponse](t, rec).Dirty)

	rec = s.do(t, http.MethodPatch, base+"/fields", updateFieldRequest{Path: "contact.fax", Value: "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPut, base+"/address-lines", addressLinesRequest{Text: "Akyaka\n\nMuğla"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"Akyaka", "", "Muğla"}, decode[sessionResponse](t, rec).Document.Contact.AddressLines)

	rec = s.do(t, http.MethodPost, base+"/projects", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	added := decode[struct {
		Project model.ProjectEntry `json:"project"`
	}](t, rec)
	assert.Equal(t, 10, added.Project.ID)

	rec = s.do(t, http.MethodDelete, base+"/projects/0", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodDelete, base+"/projects/7", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, base+"/preview", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	view := decode[render.View](t, rec)
	require.Len(t, view.Projects, 2)
	assert.Equal(t, "tel:+902521112233", view.Phone.Href)

	rec = s.do(t, http.MethodGet, base+"/preview?format=html", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Akyaka")

	// nothing is persisted before the commit
	stored, err := s.store.Load(context.TODO())
	require.NoError(t, err)
	assert.Equal(t, tester.Document(), stored)

	rec = s.do(t, http.MethodPost, base+"/commit", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	committed := decode[commitResponse](t, rec)
	assert.Equal(t, session.StatusSaved, committed.Status)
	assert.False(t, committed.Dirty)

	rec = s.do(t, http.MethodGet, "/api/site-data", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	doc := decode[*model.SiteDocument](t, rec)
	assert.Equal(t, "0252 111 22 33", doc.Contact.PhoneText)
	assert.Equal(t, []int{9, 10}, []int{doc.Projects[0].ID, doc.Projects[1].ID})

	rec = s.do(t, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminSession_CommitWriteFailure(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
	s := newTestServer(t, options{path: filepath.Join(blocker, "site-data.json")})

	rec := s.do(t, http.MethodPost, "/api/admin/sessions", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decode[sessionResponse](t, rec).ID

	rec = s.do(t, http.MethodPost, "/api/admin/sessions/"+id+"/projects", nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/admin/sessions/"+id+"/commit", nil)
	require.Equal(t, http.StatusBadGateway, rec.Code)
	res := decode[commitResponse](t, rec)
	assert.Equal(t, session.StatusIOError, res.Status)
	assert.Equal(t, service.ErrWriteFailed.Error(), res.Error)
	assert.True(t, res.Dirty)
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t, options{})

	rec := s.do(t, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode[map[string]string](t, rec)["status"])

	s.do(t, http.MethodGet, "/api/site-data", nil)

	rec = s.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "site_http_request_duration_seconds")
}

func TestCORS(t *testing.T) {
	s := newTestServer(t, options{})

	req := httptest.NewRequest(http.MethodOptions, "/api/site-data", nil)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Authorization, Content-Type")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/api/site-data", nil)
	req.Header.Set("Origin", "https://example.com")
	rec = httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestStatic(t *testing.T) {
	s := newTestServer(t, options{})

	rec := s.do(t, http.MethodGet, "/static/site.css", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
