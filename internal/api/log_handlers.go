package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mehrbod2002/coinboard/internal/models"
	"github.com/mehrbod2002/coinboard/internal/service"
)

const (
	DefaultLogLimit = 50
	MaxLogLimit     = 500
)

type LogHandler struct {
	logService service.LogService
}

func NewLogHandler(logService service.LogService) *LogHandler {
	return &LogHandler{logService: logService}
}

// @Summary Get request logs
// @Description Lists recorded proxy lookups, newest first (admin only)
// @Tags Logs
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size, at most 500" default(50)
// @Success 200 {array} models.LogEntry
// @Failure 400 {object} models.ErrorResponse "Invalid page or limit"
// @Failure 401 {object} models.ErrorResponse "Unauthorized"
// @Failure 500 {object} models.ErrorResponse "Failed to retrieve logs"
// @Router /api/admin/logs [get]
func (h *LogHandler) GetAllLogs(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "page must be a positive integer"})
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(DefaultLogLimit)))
	if err != nil || limit < 1 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "limit must be a positive integer"})
		return
	}
	if limit > MaxLogLimit {
		limit = MaxLogLimit
	}

	logs, err := h.logService.GetAllLogs(page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to retrieve logs"})
		return
	}
	if logs == nil {
		logs = []*models.LogEntry{}
	}
	c.JSON(http.StatusOK, logs)
}
