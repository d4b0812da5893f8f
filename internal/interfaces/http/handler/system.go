package handler

import (
	"net/http"
	"runtime"
	"time"

	"github.com/bettstax/backend/internal/infrastructure/scheduler"
	"github.com/bettstax/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// SystemHandler handles system-related API endpoints
type SystemHandler struct {
	BaseHandler
	startTime time.Time
	scheduler *scheduler.Scheduler
}

// NewSystemHandler creates a new SystemHandler. The scheduler may be nil
// when background maintenance is disabled.
func NewSystemHandler(sched *scheduler.Scheduler) *SystemHandler {
	return &SystemHandler{
		startTime: time.Now(),
		scheduler: sched,
	}
}

// SystemInfoResponse represents the system information response
// @name HandlerSystemInfoResponse
type SystemInfoResponse struct {
	Name      string `json:"name" example:"BettsTax Backend API"`
	Version   string `json:"version" example:"1.0.0"`
	GoVersion string `json:"go_version" example:"go1.25.5"`
	Uptime    string `json:"uptime" example:"1h30m45s"`
}

// GetSystemInfo godoc
// @ID           getSystemSystemInfo
// @Summary      Get system information
// @Description  Returns basic system information including version and uptime
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[SystemInfoResponse]
// @Router       /system/info [get]
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	info := SystemInfoResponse{
		Name:      "BettsTax Backend API",
		Version:   "1.0.0",
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(info))
}

// PingResponse represents the ping response
// @name HandlerPingResponse
type PingResponse struct {
	Message   string `json:"message" example:"pong"`
	Timestamp string `json:"timestamp" example:"2026-01-23T12:00:00Z"`
}

// Ping godoc
// @ID           pingSystem
// @Summary      Ping the API
// @Description  Simple ping endpoint to check if the API is responsive
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[PingResponse]
// @Router       /system/ping [get]
func (h *SystemHandler) Ping(c *gin.Context) {
	response := PingResponse{
		Message:   "pong",
		Timestamp: time.Now().Format(time.RFC3339),
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(response))
}

// SchedulerStatus godoc
// @ID           schedulerStatus
// @Summary      Scheduler status
// @Description  Whether the maintenance scheduler is running and the job types it knows
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[SchedulerStatusData]
// @Security     BearerAuth
// @Router       /system/scheduler [get]
func (h *SystemHandler) SchedulerStatus(c *gin.Context) {
	status := SchedulerStatusData{}
	if h.scheduler != nil {
		status.Enabled = h.scheduler.IsRunning()
	}
	for _, jt := range scheduler.DailyJobTypes() {
		status.AvailableTypes = append(status.AvailableTypes, string(jt))
	}

	h.Success(c, status)
}

// TriggerMaintenanceRequest represents a request to run a maintenance job now
// @Description Request body for triggering a maintenance job
type TriggerMaintenanceRequest struct {
	JobType string `json:"job_type" binding:"required,oneof=DEADLINE_SCAN SCHEDULED_REPORTS DOCUMENT_CLEANUP AUDIT_PURGE"`
}

// TriggerMaintenance godoc
// @ID           triggerMaintenanceJob
// @Summary      Run a maintenance job now
// @Description  Submit a maintenance job immediately instead of waiting for the nightly run
// @Tags         system
// @Accept       json
// @Produce      json
// @Param        request body TriggerMaintenanceRequest true "Job to run"
// @Success      202 {object} SuccessResponse
// @Failure      422 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /system/scheduler/trigger [post]
func (h *SystemHandler) TriggerMaintenance(c *gin.Context) {
	if h.scheduler == nil {
		h.UnprocessableEntity(c, "SCHEDULER_DISABLED", "The maintenance scheduler is not enabled")
		return
	}

	var req TriggerMaintenanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if err := h.scheduler.ScheduleJob(scheduler.JobType(req.JobType), time.Now().UTC()); err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, dto.NewSuccessResponse(gin.H{"message": "Job submitted"}))
}
