package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"futures-backtest/internal/api/models"
	"futures-backtest/internal/strategy"
)

// StrategyHandler serves strategy metadata.
type StrategyHandler struct{}

// NewStrategyHandler creates a strategy handler.
func NewStrategyHandler() *StrategyHandler {
	return &StrategyHandler{}
}

// ListStrategies handles GET /api/v1/strategies.
func (h *StrategyHandler) ListStrategies(c *gin.Context) {
	c.JSON(http.StatusOK, models.StrategiesResponse{Strategies: strategy.Names()})
}
