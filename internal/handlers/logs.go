package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"clinic-app-server/internal/models"
	"clinic-app-server/internal/store"
	"clinic-app-server/internal/utils"
)

// LogHandler serves the activity log.
type LogHandler struct {
	Logs *store.LogStore
	Log  *logrus.Entry
}

// NewLogHandler creates a new LogHandler.
func NewLogHandler(logs *store.LogStore, log *logrus.Entry) *LogHandler {
	return &LogHandler{Logs: logs, Log: log}
}

// LogsResponse is one page of the activity log.
type LogsResponse struct {
	Logs       []models.LogEntry `json:"logs"`
	Pagination store.Page        `json:"pagination"`
}

// GetLogs lists entries newest first. Admin only.
func (h *LogHandler) GetLogs(c *gin.Context) {
	// Unparseable values fall back to the defaults, like missing ones.
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))

	logs, pagination, err := h.Logs.List(c.Request.Context(), page, limit)
	if err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}
	utils.Success(c, "Logs fetched successfully", LogsResponse{Logs: logs, Pagination: pagination})
}
