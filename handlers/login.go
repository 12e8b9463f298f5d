package handlers

import (
	"net/http"
	"strings"

	"github.com/rdioscaio/pane-a-tavola/config"
	"github.com/rdioscaio/pane-a-tavola/middleware"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

// sessionMaxAge is the session cookie lifetime: 7 days.
const sessionMaxAge = 7 * 24 * 60 * 60

type LoginHandler struct {
	cfg    config.Config
	logger *zap.Logger
}

func NewLoginHandler(cfg config.Config, logger *zap.Logger) *LoginHandler {
	return &LoginHandler{
		cfg:    cfg,
		logger: logger,
	}
}

type loginRequest struct {
	Password string `json:"password"`
}

// Login verifies the submitted admin password and issues the session cookie.
// Configuration is checked before the body is read so a missing secret is
// reported as a server error rather than a rejected login.
func (h *LoginHandler) Login(c *gin.Context) {
	_, span := otel.Tracer("pane-admin-api").Start(c.Request.Context(), "AdminLogin")
	defer span.End()

	if h.cfg.AdminPassword == "" || h.cfg.AdminSessionToken == "" {
		h.logger.Error("Admin login not configured: set ADMIN_PASSWORD and ADMIN_SESSION_TOKEN")
		c.JSON(http.StatusInternalServerError, gin.H{
			"ok":    false,
			"error": "Admin login not configured",
		})
		return
	}

	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"ok":    false,
			"error": `Invalid JSON. Send {"password": "..."}.`,
		})
		return
	}

	password := strings.TrimSpace(req.Password)
	if password == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"ok":    false,
			"error": "Empty password",
		})
		return
	}

	if password != h.cfg.AdminPassword {
		c.JSON(http.StatusUnauthorized, gin.H{
			"ok":    false,
			"error": "Incorrect password",
		})
		return
	}

	secure := c.Request.TLS != nil
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookieName, h.cfg.AdminSessionToken, sessionMaxAge, "/", "", secure, true)

	h.logger.Info("Admin logged in", zap.String("ip", c.ClientIP()))
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Preflight answers the CORS preflight some browsers send before the login POST.
func (h *LoginHandler) Preflight(c *gin.Context) {
	origin := c.GetHeader("Origin")
	if origin == "" {
		scheme := "http"
		if c.Request.TLS != nil {
			scheme = "https"
		}
		origin = scheme + "://" + c.Request.Host
	}

	c.Header("Access-Control-Allow-Origin", origin)
	c.Header("Access-Control-Allow-Methods", "POST, OPTIONS")
	c.Header("Access-Control-Allow-Headers", "Content-Type")
	c.Header("Access-Control-Max-Age", "86400")
	c.Status(http.StatusNoContent)
}
