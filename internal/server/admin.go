package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/bcmimarlik/site/internal/model"
	"github.com/bcmimarlik/site/internal/module"
	"github.com/bcmimarlik/site/internal/render"
	"github.com/bcmimarlik/site/internal/service"
	"github.com/bcmimarlik/site/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// AdminHandler serves login and the editing session API.
type AdminHandler struct {
	auth     Authenticator
	sessions *session.Registry
	renderer *render.Renderer
}

func NewAdminHandler(auth Authenticator, sessions *session.Registry, renderer *render.Renderer) *AdminHandler {
	return &AdminHandler{
		auth:     auth,
		sessions: sessions,
		renderer: renderer,
	}
}

func (h *AdminHandler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.POST("/admin/login", h.Login)
}

func (h *AdminHandler) RegisterRoutes(rg *gin.RouterGroup) {
	sessions := rg.Group("/admin/sessions")
	{
		sessions.POST("", h.Create)
		sessions.GET("/:id", h.withSession(h.Get))
		sessions.DELETE("/:id", h.Delete)
		sessions.PATCH("/:id/fields", h.withSession(h.UpdateField))
		sessions.PUT("/:id/address-lines", h.withSession(h.UpdateAddressLines))
		sessions.POST("/:id/projects", h.withSession(h.AddProject))
		sessions.DELETE("/:id/projects/:index", h.withSession(h.RemoveProject))
		sessions.GET("/:id/preview", h.withSession(h.Preview))
		sessions.POST("/:id/commit", h.withSession(h.Commit))
	}
}

type loginRequest struct {
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt,omitempty"`
}

func (h *AdminHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}

	token, expiresAt, err := h.auth.Login(c.Request.Context(), req.Password)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, err)
		return
	}

	if token != "" {
		maxAge := int(time.Until(expiresAt).Seconds())
		c.SetSameSite(http.SameSiteStrictMode)
		c.SetCookie(module.TokenCookie, token, maxAge, "/", "", c.Request.TLS != nil, true)
	}

	c.JSON(http.StatusOK, loginResponse{Token: token, ExpiresAt: expiresAt})
}

type sessionResponse struct {
	ID       string              `json:"id"`
	Notice   string              `json:"notice,omitempty"`
	Dirty    bool                `json:"dirty"`
	Document *model.SiteDocument `json:"document"`
}

func newSessionResponse(s *session.Session) sessionResponse {
	return sessionResponse{
		ID:       s.ID(),
		Dirty:    s.Dirty(),
		Document: s.Snapshot(),
	}
}

func (h *AdminHandler) withSession(f func(c *gin.Context, s *session.Session)) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := h.sessions.Get(c.Param("id"))
		if err != nil {
			abortWithError(c, http.StatusNotFound, err)
			return
		}
		f(c, s)
	}
}

func (h *AdminHandler) Create(c *gin.Context) {
	s, notice := h.sessions.Create(c.Request.Context())

	res := newSessionResponse(s)
	res.Notice = notice
	c.JSON(http.StatusCreated, res)
}

func (h *AdminHandler) Get(c *gin.Context, s *session.Session) {
	c.JSON(http.StatusOK, newSessionResponse(s))
}

func (h *AdminHandler) Delete(c *gin.Context) {
	if err := h.sessions.Remove(c.Param("id")); err != nil {
		abortWithError(c, http.StatusNotFound, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type updateFieldRequest struct {
	Path  string `json:"path"`
	Value any    `json:"value"`
}

func (h *AdminHandler) UpdateField(c *gin.Context, s *session.Session) {
	var req updateFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}

	if err := s.UpdateField(req.Path, req.Value); err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}

	c.JSON(http.StatusOK, newSessionResponse(s))
}

type addressLinesRequest struct {
	Text string `json:"text"`
}

func (h *AdminHandler) UpdateAddressLines(c *gin.Context, s *session.Session) {
	var req addressLinesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}

	s.UpdateAddressLines(req.Text)
	c.JSON(http.StatusOK, newSessionResponse(s))
}

func (h *AdminHandler) AddProject(c *gin.Context, s *session.Session) {
	project := s.AddProject()
	c.JSON(http.StatusCreated, gin.H{
		"project": project,
		"session": newSessionResponse(s),
	})
}

func (h *AdminHandler) RemoveProject(c *gin.Context, s *session.Session) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, session.ErrIndexOutOfRange)
		return
	}

	if err := s.RemoveProject(index); err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}

	c.JSON(http.StatusOK, newSessionResponse(s))
}

// Preview projects the draft. With ?format=html the page itself is returned.
func (h *AdminHandler) Preview(c *gin.Context, s *session.Session) {
	view := render.Project(s.Snapshot())

	if c.Query("format") != "html" {
		c.JSON(http.StatusOK, view)
		return
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := h.renderer.Render(c.Writer, view, true); err != nil {
		logrus.Errorf("failed to render preview: %v", err)
		c.AbortWithStatus(http.StatusInternalServerError)
	}
}

type commitResponse struct {
	Status session.Status `json:"status"`
	Error  string         `json:"error,omitempty"`
	sessionResponse
}

func (h *AdminHandler) Commit(c *gin.Context, s *session.Session) {
	result := s.Commit(c.Request.Context())

	res := commitResponse{Status: result.Status, sessionResponse: newSessionResponse(s)}
	if result.Err != nil {
		res.Error = result.Err.Error()
		if errors.Is(result.Err, service.ErrWriteFailed) {
			res.Error = service.ErrWriteFailed.Error()
		}
	}

	c.JSON(commitStatusCode(result.Status), res)
}

func commitStatusCode(status session.Status) int {
	switch status {
	case session.StatusSaved:
		return http.StatusOK
	case session.StatusValidationError:
		return http.StatusBadRequest
	case session.StatusBusy:
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}
