package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mehrbod2002/coinboard/internal/middleware"
	"github.com/mehrbod2002/coinboard/internal/models"
	"github.com/mehrbod2002/coinboard/internal/service"
	"github.com/rs/zerolog/log"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 2000
)

type AssetHandler struct {
	assetService service.AssetService
	logService   service.LogService
}

func NewAssetHandler(assetService service.AssetService, logService service.LogService) *AssetHandler {
	return &AssetHandler{assetService: assetService, logService: logService}
}

// @Summary Get a cryptocurrency
// @Description Returns the current market snapshot of one asset
// @Tags Assets
// @Produce json
// @Param id path string true "Asset ID"
// @Success 200 {object} models.Asset
// @Failure 404 {object} models.ErrorResponse "Asset not found"
// @Failure 500 {object} models.ErrorResponse "Failed to fetch cryptocurrency data"
// @Router /api/assets/{id} [get]
func (h *AssetHandler) GetAsset(c *gin.Context) {
	id := c.Param("id")
	asset, err := h.assetService.GetAsset(c.Request.Context(), id)
	if err != nil {
		h.fail(c, id, err, "Failed to fetch cryptocurrency data")
		return
	}

	h.record(c, "asset_lookup", fmt.Sprintf("Fetched asset %s", id), map[string]interface{}{"id": id})
	c.JSON(http.StatusOK, asset)
}

// @Summary Get price history
// @Description Returns the last hour of minute prices, each with a display label
// @Tags Assets
// @Produce json
// @Param id path string true "Asset ID"
// @Success 200 {array} models.PricePoint
// @Failure 404 {object} models.ErrorResponse "Asset not found"
// @Failure 500 {object} models.ErrorResponse "Failed to fetch price history data"
// @Router /api/history/{id} [get]
func (h *AssetHandler) GetHistory(c *gin.Context) {
	id := c.Param("id")
	points, err := h.assetService.GetHistory(c.Request.Context(), id)
	if err != nil {
		h.fail(c, id, err, "Failed to fetch price history data")
		return
	}

	h.record(c, "history_lookup", fmt.Sprintf("Fetched price history for %s", id), map[string]interface{}{
		"id":     id,
		"points": len(points),
	})
	c.JSON(http.StatusOK, points)
}

// @Summary List cryptocurrencies
// @Description Returns the top assets ordered by rank, price or 24h change
// @Tags Assets
// @Produce json
// @Param limit query int false "Number of assets (1-2000)" default(20)
// @Param sortBy query string false "rank, price or change" default(rank)
// @Param sortOrder query string false "asc or desc" default(asc)
// @Success 200 {array} models.Asset
// @Failure 400 {object} models.ErrorResponse "Invalid query"
// @Failure 500 {object} models.ErrorResponse "Failed to fetch cryptocurrencies"
// @Router /api/assets [get]
func (h *AssetHandler) ListAssets(c *gin.Context) {
	limit := DefaultListLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > MaxListLimit {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: fmt.Sprintf("limit must be between 1 and %d", MaxListLimit)})
			return
		}
		limit = n
	}

	sortCfg, err := service.ParseSortConfig(c.Query("sortBy"), c.Query("sortOrder"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	assets, err := h.assetService.ListAssets(c.Request.Context(), limit, sortCfg)
	if err != nil {
		log.Error().Err(err).Int("limit", limit).Msg("asset list failed")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to fetch cryptocurrencies"})
		return
	}

	h.record(c, "asset_list", fmt.Sprintf("Listed %d assets", len(assets)), map[string]interface{}{
		"limit":     limit,
		"sortBy":    sortCfg.SortBy,
		"sortOrder": sortCfg.SortOrder,
	})
	c.JSON(http.StatusOK, assets)
}

func (h *AssetHandler) fail(c *gin.Context, id string, err error, message string) {
	if models.IsNotFound(err) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: fmt.Sprintf("Cryptocurrency with ID '%s' not found", id)})
		return
	}
	log.Error().Err(err).Str("id", id).Str("request_id", middleware.RequestID(c)).Msg(message)
	c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: message})
}

// record stores a request-log entry. A failing log store never fails the request.
func (h *AssetHandler) record(c *gin.Context, action, description string, metadata map[string]interface{}) {
	if h.logService == nil {
		return
	}
	if err := h.logService.LogAction(action, description, c.ClientIP(), middleware.RequestID(c), metadata); err != nil {
		log.Warn().Err(err).Str("action", action).Msg("failed to record request log")
	}
}
