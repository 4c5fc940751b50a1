package handlers

import (
	"net/http"

	"djp.chapter42.de/beeper/internal/data"
	"github.com/gin-gonic/gin"
)

// Verifier prüft die Erreichbarkeit des Zustellkanals.
type Verifier interface {
	Verify() error
}

// NewSMTPInfoHandler zeigt die aufgelöste SMTP-Konfiguration, ohne
// Zugangsdaten preiszugeben.
func NewSMTPInfoHandler(cfg *data.BeeperConfig) gin.HandlerFunc {
	host, port, secure := cfg.SMTP.Resolve()
	user := "missing"
	if cfg.SMTP.User != "" {
		user = "configured"
	}
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"host": host, "port": port, "secure": secure, "user": user})
	}
}

// NewSMTPVerifyHandler baut live eine SMTP-Verbindung auf.
func NewSMTPVerifyHandler(v Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := v.Verify(); err != nil {
			c.JSON(http.StatusOK, gin.H{"success": false, "message": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}
