// internal/handlers/weather.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/agrilink/agrilink-backend/internal/services"
	"github.com/agrilink/agrilink-backend/internal/utils"
)

type WeatherHandler struct {
	weatherService *services.WeatherService
}

func NewWeatherHandler(weatherService *services.WeatherService) *WeatherHandler {
	return &WeatherHandler{weatherService: weatherService}
}

// GET /weather?location=...
func (h *WeatherHandler) GetWeather(c *gin.Context) {
	if _, ok := currentActor(c); !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	location := c.Query("location")
	if location == "" {
		utils.BadRequestResponse(c, "location query parameter is required", nil)
		return
	}

	report, err := h.weatherService.GetWeather(c.Request.Context(), location)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"weather": report})
}
