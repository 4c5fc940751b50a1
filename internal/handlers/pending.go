package handlers

import (
	"net/http"
	"strings"
	"time"

	"djp.chapter42.de/beeper/internal/data"
	"djp.chapter42.de/beeper/internal/dispatcher"
	"djp.chapter42.de/beeper/internal/logger"
	"djp.chapter42.de/beeper/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type submitRequest struct {
	Msg   string `json:"msg"`
	Time  string `json:"time"`
	Email string `json:"email"`
}

type removeRequest struct {
	ID string `json:"id"`
}

func newPendingJob(req submitRequest) data.PendingJob {
	return data.PendingJob{
		ID:          uuid.NewString(),
		Email:       req.Email,
		Msg:         req.Msg,
		ScheduledAt: data.NormalizeLocalMinute(req.Time),
		CreatedAt:   data.FormatLocalMinute(time.Now()),
	}
}

// NewScheduleHandler nimmt eine Erinnerung entgegen, validiert sie und
// plant die Zustellung ein.
func NewScheduleHandler(st *store.Store, disp *dispatcher.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req submitRequest
		if err := c.BindJSON(&req); err != nil {
			logger.Log.Warn("Fehler beim Parsen der Anfrage:", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Ungültiges JSON-Format"})
			return
		}

		if !strings.Contains(req.Email, "@") {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Ungültiges E-Mail-Format"})
			return
		}

		at, err := data.ParseLocalMinute(data.NormalizeLocalMinute(req.Time))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "status": "invalid_time"})
			return
		}
		if !at.After(time.Now()) {
			c.JSON(http.StatusOK, gin.H{"success": false, "status": "expired"})
			return
		}

		job := newPendingJob(req)
		st.Add(job)
		disp.Schedule(job)

		logger.Log.Info("Erinnerung angenommen:", zap.String("id", job.ID), zap.String("scheduledAt", job.ScheduledAt))
		c.JSON(http.StatusOK, gin.H{"success": true, "status": "scheduled", "pendingId": job.ID})
	}
}

// NewSaveHandler persistiert eine Erinnerung bedingungslos; liegt der
// Zielzeitpunkt lesbar in der Zukunft, wird sie auch gleich eingeplant.
func NewSaveHandler(st *store.Store, disp *dispatcher.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req submitRequest
		if err := c.BindJSON(&req); err != nil {
			logger.Log.Warn("Fehler beim Parsen der Anfrage:", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Ungültiges JSON-Format"})
			return
		}

		job := newPendingJob(req)
		st.Add(job)

		if at, err := data.ParseLocalMinute(job.ScheduledAt); err == nil && at.After(time.Now()) {
			disp.Schedule(job)
		}

		logger.Log.Info("Erinnerung gespeichert:", zap.String("id", job.ID))
		c.JSON(http.StatusOK, gin.H{"success": true, "id": job.ID})
	}
}

// NewListHandler liefert die aktuelle Pending-Liste.
func NewListHandler(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, st.List())
	}
}

// NewRemoveHandler storniert den Timer und entfernt den Job. Eine
// unbekannte ID gilt als Erfolg.
func NewRemoveHandler(st *store.Store, disp *dispatcher.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req removeRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.ID == "" {
			c.JSON(http.StatusOK, gin.H{"success": false})
			return
		}

		disp.Cancel(req.ID)
		st.Remove(req.ID)

		logger.Log.Info("Erinnerung entfernt:", zap.String("id", req.ID))
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}
