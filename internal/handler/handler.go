// Package handler wires the HTTP surface onto the attendance service.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"checkin/internal/checkin"
	"checkin/internal/export"
	"checkin/internal/insight"
	"checkin/internal/metrics"
	"checkin/internal/notify"
	"checkin/internal/roster"
)

type Handler struct {
	svc     *checkin.Service
	roster  *roster.Store
	hub     *notify.Hub
	insight *insight.Client
	logger  *logrus.Logger
}

func New(svc *checkin.Service, r *roster.Store, hub *notify.Hub, ins *insight.Client, logger *logrus.Logger) *Handler {
	return &Handler{svc: svc, roster: r, hub: hub, insight: ins, logger: logger}
}

// Register mounts every route on the engine.
func (h *Handler) Register(r *gin.Engine) {
	api := r.Group("/api")
	{
		api.POST("/checkin", h.CheckIn)
		api.POST("/attendance/scan", h.Scan)
		api.GET("/records", h.Records)
		api.DELETE("/records", h.ClearRecords)
		api.DELETE("/records/:index", h.DeleteRecord)
		api.POST("/events", h.CreateEvent)
		api.GET("/events/current", h.CurrentEvent)
		api.DELETE("/events/clear-all", h.ClearAll)
		api.GET("/report", h.Report)
		api.GET("/members", h.Members)
		api.GET("/guests", h.Guests)
		api.GET("/attendance/member", h.MemberHistory)
		api.GET("/attendance/event", h.EventHistory)
		api.GET("/export", h.Export)
		api.POST("/matching/members", h.MatchMembers)
		api.GET("/matching/health", h.MatchingHealth)
		api.POST("/insights/generate", h.GenerateInsights)
		api.GET("/insights/:eventId", h.EventInsights)
		api.GET("/insights/data-export/:eventId", h.AnalysisExport)
	}
	r.GET("/ws/records", h.WebSocket)
	r.GET("/ws/report", h.WebSocket)
}

// ---------- Check-in ----------

func (h *Handler) CheckIn(c *gin.Context) {
	var req checkin.CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.CheckinsRejected.WithLabelValues("malformed").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	if _, err := h.svc.RecordCheckIn(req); err != nil {
		switch {
		case errors.Is(err, checkin.ErrDuplicate):
			metrics.CheckinsRejected.WithLabelValues("duplicate").Inc()
		case errors.Is(err, checkin.ErrInvalidType):
			metrics.CheckinsRejected.WithLabelValues("invalid_type").Inc()
		default:
			metrics.CheckinsRejected.WithLabelValues("other").Inc()
		}
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}
	metrics.CheckinsAccepted.Inc()
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Check-in successful"})
}

type scanRequest struct {
	QRPayload string `json:"qrPayload" binding:"required"`
}

func (h *Handler) Scan(c *gin.Context) {
	var req scanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	message, err := h.svc.RecordScan(req.QRPayload)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": message})
}

// ---------- Check-in log ----------

func (h *Handler) Records(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"records": h.svc.Records()})
}

func (h *Handler) ClearRecords(c *gin.Context) {
	h.svc.ClearRecords()
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "All records cleared"})
}

func (h *Handler) DeleteRecord(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "index must be an integer"})
		return
	}
	if _, err := h.svc.DeleteRecord(index); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"status": "error", "message": "Record not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Record deleted"})
}

// ---------- Events & report ----------

func (h *Handler) CreateEvent(c *gin.Context) {
	var spec checkin.EventSpec
	if err := c.ShouldBindJSON(&spec); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}
	event := h.svc.CreateEvent(spec)
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Event created with all members set to absent",
		"event":   event,
	})
}

func (h *Handler) CurrentEvent(c *gin.Context) {
	event, ok := h.svc.CurrentEvent()
	if !ok {
		c.Status(http.StatusNotFound)
		return
	}
	c.JSON(http.StatusOK, event)
}

func (h *Handler) ClearAll(c *gin.Context) {
	h.svc.ClearAll()
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "All events and attendance records cleared"})
}

func (h *Handler) Report(c *gin.Context) {
	report, err := h.svc.Report()
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}
	c.JSON(http.StatusOK, report)
}

// ---------- Roster ----------

func (h *Handler) Members(c *gin.Context) {
	profiles := h.roster.AllProfiles()
	members := make([]gin.H, 0, len(profiles))
	for _, p := range profiles {
		members = append(members, gin.H{"name": p.Name, "domain": p.Domain})
	}
	c.JSON(http.StatusOK, gin.H{"members": members})
}

func (h *Handler) Guests(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"guests": h.roster.AllGuests()})
}

// ---------- History ----------

func (h *Handler) MemberHistory(c *gin.Context) {
	name := c.Query("name")
	rows := h.svc.SearchMemberHistory(name)
	if rows == nil {
		rows = []checkin.MemberAttendance{}
	}
	c.JSON(http.StatusOK, rows)
}

func (h *Handler) EventHistory(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.HistoryByDate(c.Query("date")))
}

// ---------- Export ----------

func (h *Handler) Export(c *gin.Context) {
	var report *checkin.ReportData
	if r, err := h.svc.Report(); err == nil {
		report = &r
	}
	domainFor := func(name string) string {
		if p, ok := h.roster.Lookup(name); ok {
			return p.Domain
		}
		return ""
	}

	c.Header("Content-Disposition", "attachment; filename=attendance.csv")
	c.Header("Content-Type", "text/csv; charset=utf-8")
	if err := export.WriteAttendance(c.Writer, report, h.svc.Records(), domainFor); err != nil {
		h.logger.WithError(err).Error("csv export failed")
	}
}

// ---------- Local insights ----------

func (h *Handler) GenerateInsights(c *gin.Context) {
	var req checkin.InsightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.svc.GenerateInsights(req))
}

func (h *Handler) EventInsights(c *gin.Context) {
	eventID, err := strconv.Atoi(c.Param("eventId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "eventId must be an integer"})
		return
	}
	c.JSON(http.StatusOK, h.svc.EventInsights(eventID))
}

func (h *Handler) AnalysisExport(c *gin.Context) {
	eventID, err := strconv.Atoi(c.Param("eventId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "eventId must be an integer"})
		return
	}
	data, ok := h.svc.ExportAnalysisData(eventID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		return
	}
	c.JSON(http.StatusOK, data)
}

// ---------- Matching delegate ----------

func (h *Handler) MatchMembers(c *gin.Context) {
	var req insight.MatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}
	result := h.insight.MatchMembers(c.Request.Context(), req)
	status := http.StatusOK
	if result.Provider == "error" {
		status = http.StatusInternalServerError
	}
	c.JSON(status, result)
}

func (h *Handler) MatchingHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "matching"})
}

// ---------- Push channel ----------

func (h *Handler) WebSocket(c *gin.Context) {
	h.hub.ServeWS(c.Writer, c.Request)
}
