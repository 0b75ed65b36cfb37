package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/bcmimarlik/site/internal/model"
	"github.com/bcmimarlik/site/internal/render"
	"github.com/bcmimarlik/site/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ContentHandler serves the site document and the public page.
type ContentHandler struct {
	content  *service.ContentService
	renderer *render.Renderer
}

func NewContentHandler(content *service.ContentService, renderer *render.Renderer) *ContentHandler {
	return &ContentHandler{
		content:  content,
		renderer: renderer,
	}
}

func (h *ContentHandler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/site-data", h.Get)
}

func (h *ContentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/site-data", h.Save)
}

// Get always answers 200 with some valid document.
func (h *ContentHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, h.content.Get(c.Request.Context()))
}

// Save replaces the stored document with the request body. A body that is not
// JSON answers 400 like any other body that is not a document, never 500, so
// clients can tell a bad request from a failed write.
func (h *ContentHandler) Save(c *gin.Context) {
	var doc model.SiteDocument
	if err := c.ShouldBindJSON(&doc); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Errorf("%w: %v", service.ErrInvalidDocument, err))
		return
	}

	if err := h.content.Save(c.Request.Context(), &doc); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidDocument):
			abortWithError(c, http.StatusBadRequest, err)
		default:
			abortWithError(c, http.StatusInternalServerError, service.ErrWriteFailed)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Page renders the public landing page.
func (h *ContentHandler) Page(c *gin.Context) {
	view := render.Project(h.content.Get(c.Request.Context()))

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := h.renderer.Render(c.Writer, view, false); err != nil {
		logrus.Errorf("failed to render page: %v", err)
		c.AbortWithStatus(http.StatusInternalServerError)
	}
}

// AnalysisHandler serves the text generation endpoint.
type AnalysisHandler struct {
	analysis *service.AnalysisService
}

func NewAnalysisHandler(analysis *service.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{analysis: analysis}
}

func (h *AnalysisHandler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.POST("/analyze", h.Analyze)
}

func (h *AnalysisHandler) Analyze(c *gin.Context) {
	var req service.AnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusInternalServerError, err)
		return
	}

	res, err := h.analysis.Analyze(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

// AppointmentHandler accepts appointment requests.
type AppointmentHandler struct {
	appointments *service.AppointmentService
}

func NewAppointmentHandler(appointments *service.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{appointments: appointments}
}

func (h *AppointmentHandler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.POST("/appointments", h.Submit)
}

func (h *AppointmentHandler) Submit(c *gin.Context) {
	var req service.Appointment
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}

	reference, err := h.appointments.Submit(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"reference": reference})
}
