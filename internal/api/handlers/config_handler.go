package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Adham-ELshahed/Memar/internal/config"
	"github.com/Adham-ELshahed/Memar/internal/services"
)

// ConfigHandler serves the public runtime configuration.
type ConfigHandler struct {
	cfg             *config.Config
	settingsService services.ISettingsService
}

// NewConfigHandler creates a new ConfigHandler.
func NewConfigHandler(cfg *config.Config, settingsService services.ISettingsService) *ConfigHandler {
	return &ConfigHandler{cfg: cfg, settingsService: settingsService}
}

// GetConfig handles GET /api/config. Static defaults are merged with the
// public settings stored in the database, the latter winning.
func (h *ConfigHandler) GetConfig(c *gin.Context) {
	out := map[string]interface{}{
		"appName":         h.cfg.AppName,
		"defaultCurrency": h.cfg.DefaultCurrency,
		"languages":       []string{"en", "ar"},
	}

	settings, err := h.settingsService.GetPublic(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "")
		return
	}
	for key, value := range settings {
		out[key] = value
	}

	c.JSON(http.StatusOK, out)
}
