package controller

import (
	"net/http"

	"github.com/cerodriguez46/devbyte/internal/config"
	"github.com/gin-gonic/gin"
)

// ConfigurationResponse represents the configuration response structure for the API.
type ConfigurationResponse struct {
	StoreType          string `json:"storeType"`
	WriteMode          string `json:"writeMode"`
	SourceType         string `json:"sourceType"`
	SourceURL          string `json:"sourceUrl,omitempty"`
	PlaylistID         string `json:"playlistId,omitempty"`
	RefreshIntervalSec int    `json:"refreshIntervalSec"`
	RefreshOnStart     bool   `json:"refreshOnStart"`
}

// ConfigurationController handles configuration-related API endpoints.
type ConfigurationController struct {
	config *config.Config
}

// NewConfigurationController creates a new ConfigurationController.
func NewConfigurationController(cfg *config.Config) *ConfigurationController {
	return &ConfigurationController{
		config: cfg,
	}
}

// GetConfiguration returns the public part of the runtime configuration.
// Connection strings and API keys are never exposed.
func (cc *ConfigurationController) GetConfiguration(c *gin.Context) {
	response := ConfigurationResponse{
		StoreType:          cc.config.Data.StoreType,
		WriteMode:          cc.config.Data.WriteMode,
		SourceType:         cc.config.Remote.SourceType,
		PlaylistID:         cc.config.Remote.PlaylistID,
		RefreshIntervalSec: int(cc.config.Remote.RefreshInterval.Seconds()),
		RefreshOnStart:     cc.config.Remote.RefreshOnStart,
	}
	if cc.config.Remote.SourceType != "youtube" {
		response.SourceURL = cc.config.Remote.BaseURL
	}
	c.JSON(http.StatusOK, response)
}
