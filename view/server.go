// Package view exposes the console state and commands over HTTP for the
// rendering layer.
package view

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/AlexG695/geo-engine-console/engine"
	"github.com/AlexG695/geo-engine-console/geo"
	"github.com/AlexG695/geo-engine-console/internal/metrics"
)

// Server is the gin front for one Session.
type Server struct {
	session *engine.Session
	log     *zap.SugaredLogger
}

func NewServer(session *engine.Session, log *zap.SugaredLogger) *Server {
	return &Server{session: session, log: log}
}

// Router builds the route table.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", s.handleHealth)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/state", s.handleState)
		apiGroup.GET("/drivers", s.handleDrivers)
		apiGroup.GET("/geofences", s.handleGeofences)
		apiGroup.GET("/alerts", s.handleAlerts)

		apiGroup.POST("/drivers/:device_id/select", s.handleSelect)
		apiGroup.POST("/selection/clear", s.handleClearSelection)

		apiGroup.POST("/edit/start", s.handleEditStart)
		apiGroup.POST("/geofences/:id/edit", s.handleEditZone)
		apiGroup.POST("/edit/vertices", s.handleAddVertex)
		apiGroup.PUT("/edit/vertices/:index", s.handleMoveVertex)
		apiGroup.DELETE("/edit/vertices/:index", s.handleRemoveVertex)
		apiGroup.POST("/edit/commit", s.handleCommit)
		apiGroup.POST("/edit/cancel", s.handleEditCancel)

		apiGroup.PUT("/geofences/:id", s.handleRenameZone)
		apiGroup.DELETE("/geofences/:id", s.handleDeleteZone)

		apiGroup.DELETE("/alerts/:id", s.handleDismissAlert)
	}
	return r
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"drivers": s.session.Registry.Len(),
		"zones":   s.session.Geofences.Len(),
	})
}

func (s *Server) handleState(c *gin.Context) {
	c.JSON(http.StatusOK, s.session.Snapshot())
}

func (s *Server) handleDrivers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": s.session.Registry.Drivers()})
}

func (s *Server) handleGeofences(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": s.session.Geofences.Zones()})
}

func (s *Server) handleAlerts(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": s.session.Alerts.Alerts()})
}

func (s *Server) handleSelect(c *gin.Context) {
	if err := s.session.SelectDriver(c.Request.Context(), c.Param("device_id")); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"route": s.session.Route()})
}

func (s *Server) handleClearSelection(c *gin.Context) {
	s.session.ClearSelection()
	c.Status(http.StatusNoContent)
}

func (s *Server) handleEditStart(c *gin.Context) {
	s.session.StartDrawing()
	c.Status(http.StatusNoContent)
}

func (s *Server) handleEditZone(c *gin.Context) {
	if err := s.session.BeginEdit(c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"vertices": s.session.Editor.Vertices()})
}

func (s *Server) handleAddVertex(c *gin.Context) {
	var p geo.LatLng
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid vertex payload"})
		return
	}
	if err := s.session.AddVertex(p); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleMoveVertex(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid vertex index"})
		return
	}
	var p geo.LatLng
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid vertex payload"})
		return
	}
	if err := s.session.MoveVertex(index, p); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleRemoveVertex(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid vertex index"})
		return
	}
	if err := s.session.RemoveVertex(index); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleCommit(c *gin.Context) {
	var body struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid commit payload"})
		return
	}
	if err := s.session.SaveZone(c.Request.Context(), body.Name); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleEditCancel(c *gin.Context) {
	s.session.CancelEdit()
	c.Status(http.StatusNoContent)
}

func (s *Server) handleRenameZone(c *gin.Context) {
	var body struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid rename payload"})
		return
	}
	if err := s.session.RenameZone(c.Request.Context(), c.Param("id"), body.Name); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleDeleteZone(c *gin.Context) {
	if err := s.session.DeleteZone(c.Request.Context(), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleDismissAlert(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid alert id"})
		return
	}
	if !s.session.DismissAlert(id) {
		c.JSON(http.StatusNotFound, gin.H{"error": "alert not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

// fail maps engine errors to status codes. Validation problems are the
// caller's fault; transport problems are the backend's.
func (s *Server) fail(c *gin.Context, err error) {
	var verr *engine.ValidationError
	var terr *engine.TransportError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Msg})
	case errors.As(err, &terr):
		s.log.Warnw("upstream call failed", "op", terr.Op, "error", terr.Err)
		c.JSON(http.StatusBadGateway, gin.H{"error": terr.Error()})
	default:
		s.log.Errorw("request failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
