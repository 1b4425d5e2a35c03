package handlers

import (
	"net/http"
	"time"

	"orchard-bridge/models"
	"orchard-bridge/repositories/base"
	"orchard-bridge/services"
	"orchard-bridge/utils"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Headers filled in by the auth gateway in front of this service.
const (
	headerUserID       = "X-User-Id"
	headerOrganization = "X-Organization-Id"
	headerSuperuser    = "X-Superuser"
)

// APIHandler handles all API requests of the orchard bridge.
type APIHandler struct {
	statusService   *services.StatusService
	snapshotService *services.SnapshotService
	farmService     *services.FarmService
}

// NewAPIHandler creates a new instance of APIHandler.
func NewAPIHandler(statusService *services.StatusService, snapshotService *services.SnapshotService, farmService *services.FarmService) *APIHandler {
	return &APIHandler{
		statusService:   statusService,
		snapshotService: snapshotService,
		farmService:     farmService,
	}
}

// RegisterRoutes attaches every route to the Echo instance.
func (h *APIHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.HealthCheck)

	api := e.Group("/api/v1")
	api.GET("/plots/:plotId/status", h.GetPlotStatus)
	api.GET("/plots/:plotId/snapshots", h.ListPlotSnapshots)
	api.POST("/snapshots/generate", h.GenerateSnapshots)
	api.POST("/snapshots", h.CreateSnapshot)
	api.GET("/snapshots/latest", h.GetLatestSnapshots)
	api.GET("/farms/:farmId/summary", h.GetFarmSummary)
	api.GET("/farms/:farmId/forecast", h.GetFarmForecast)
	api.GET("/farms/:farmId/history", h.GetFarmHistory)
}

// ===================================================================
// HEALTH CHECK
// ===================================================================

// HealthCheck provides a simple health status of the service.
func (h *APIHandler) HealthCheck(c echo.Context) error {
	data := map[string]interface{}{
		"service":   "orchard-bridge",
		"timestamp": time.Now().Unix(),
	}
	return c.JSON(http.StatusOK, utils.SuccessResponse("Service is healthy", data))
}

// ===================================================================
// PLOT STATUS
// ===================================================================

// GetPlotStatus returns the live, reading-driven status of one plot.
func (h *APIHandler) GetPlotStatus(c echo.Context) error {
	caller, err := callerFromContext(c)
	if err != nil {
		return err
	}
	plotID, err := uuid.Parse(c.Param("plotId"))
	if err != nil {
		return utils.NewBadRequestError("Invalid plot ID", err)
	}

	status, err := h.statusService.CurrentStatus(caller, plotID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, utils.SuccessResponse("Plot status retrieved", status))
}

// ===================================================================
// SNAPSHOTS
// ===================================================================

// ListPlotSnapshots returns a plot's snapshots, newest first.
func (h *APIHandler) ListPlotSnapshots(c echo.Context) error {
	caller, err := callerFromContext(c)
	if err != nil {
		return err
	}
	plotID, err := uuid.Parse(c.Param("plotId"))
	if err != nil {
		return utils.NewBadRequestError("Invalid plot ID", err)
	}
	pagination := utils.GetPaginationParams(c.QueryParam("limit"), c.QueryParam("offset"), 30)

	snapshots, err := h.snapshotService.ListPlotSnapshots(caller, plotID, pagination)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, utils.CreateListResponse(snapshots, len(snapshots), &pagination))
}

type generateSnapshotsRequest struct {
	FarmID *uuid.UUID `json:"farmId"`
	Date   string     `json:"date"`
}

// GenerateSnapshots computes today's (or the requested date's) production
// snapshot for every visible plot.
func (h *APIHandler) GenerateSnapshots(c echo.Context) error {
	caller, err := callerFromContext(c)
	if err != nil {
		return err
	}

	var req generateSnapshotsRequest
	if err := c.Bind(&req); err != nil {
		return utils.NewBadRequestError("Invalid request body", err)
	}
	date, err := utils.ParseDateParam(req.Date)
	if err != nil {
		return utils.NewBadRequestError("Invalid date, expected YYYY-MM-DD", err)
	}
	if date.IsZero() {
		date = time.Now()
	}

	snapshots, err := h.snapshotService.GenerateSnapshots(caller, req.FarmID, date)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, utils.SuccessResponse("Snapshots generated", map[string]interface{}{
		"count":     len(snapshots),
		"snapshots": snapshots,
	}))
}

// CreateSnapshot records a manually entered production snapshot.
func (h *APIHandler) CreateSnapshot(c echo.Context) error {
	caller, err := callerFromContext(c)
	if err != nil {
		return err
	}

	var snapshot models.PlotProductionSnapshot
	if err := c.Bind(&snapshot); err != nil {
		return utils.NewBadRequestError("Invalid request body", err)
	}
	if snapshot.PlotID == uuid.Nil {
		return utils.NewBadRequestError("plotId is required")
	}
	if snapshot.SnapshotDate.IsZero() {
		return utils.NewBadRequestError("snapshotDate is required")
	}

	if err := h.snapshotService.CreateManualSnapshot(caller, &snapshot); err != nil {
		if base.IsDuplicateEntity(err) {
			return utils.NewConflictError("A snapshot already exists for this plot and date")
		}
		return err
	}
	return c.JSON(http.StatusCreated, utils.SuccessResponse("Snapshot created", snapshot))
}

// GetLatestSnapshots returns the most recent snapshot of every visible plot.
func (h *APIHandler) GetLatestSnapshots(c echo.Context) error {
	caller, err := callerFromContext(c)
	if err != nil {
		return err
	}

	var farmID *uuid.UUID
	if raw := c.QueryParam("farmId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return utils.NewBadRequestError("Invalid farm ID", err)
		}
		farmID = &id
	}

	snapshots, err := h.snapshotService.LatestSnapshots(caller, farmID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, utils.CreateListResponse(snapshots, len(snapshots), nil))
}

// ===================================================================
// FARM VIEWS
// ===================================================================

// GetFarmSummary returns the aggregated current state of a farm.
func (h *APIHandler) GetFarmSummary(c echo.Context) error {
	caller, err := callerFromContext(c)
	if err != nil {
		return err
	}
	farmID, err := uuid.Parse(c.Param("farmId"))
	if err != nil {
		return utils.NewBadRequestError("Invalid farm ID", err)
	}

	summary, err := h.farmService.Summary(caller, farmID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, utils.SuccessResponse("Farm summary retrieved", summary))
}

// GetFarmForecast returns the production outlook of a farm.
func (h *APIHandler) GetFarmForecast(c echo.Context) error {
	caller, err := callerFromContext(c)
	if err != nil {
		return err
	}
	farmID, err := uuid.Parse(c.Param("farmId"))
	if err != nil {
		return utils.NewBadRequestError("Invalid farm ID", err)
	}

	forecast, err := h.farmService.Forecast(caller, farmID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, utils.SuccessResponse("Farm forecast retrieved", forecast))
}

// GetFarmHistory returns a daily series of one metric over a lookback window.
func (h *APIHandler) GetFarmHistory(c echo.Context) error {
	caller, err := callerFromContext(c)
	if err != nil {
		return err
	}
	farmID, err := uuid.Parse(c.Param("farmId"))
	if err != nil {
		return utils.NewBadRequestError("Invalid farm ID", err)
	}

	metric := utils.GetValueOrDefault(c.QueryParam("metric"), services.MetricHealthScore)
	switch metric {
	case services.MetricHealthScore, services.MetricYield, services.MetricMoisture, services.MetricTemperature:
	default:
		return utils.NewBadRequestError("Invalid metric. Available: health_score, yield, moisture, temperature")
	}
	period := utils.GetValueOrDefault(c.QueryParam("period"), "30d")

	history, err := h.farmService.History(caller, farmID, metric, period)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, utils.SuccessResponse("Farm history retrieved", history))
}

// ===================================================================
// CALLER PARSING
// ===================================================================

func callerFromContext(c echo.Context) (models.Caller, error) {
	caller := models.Caller{
		IsSuperuser: c.Request().Header.Get(headerSuperuser) == "true",
	}

	if raw := c.Request().Header.Get(headerUserID); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return caller, utils.NewBadRequestError("Invalid user ID header", err)
		}
		caller.UserID = id
	}

	raw := c.Request().Header.Get(headerOrganization)
	if raw == "" {
		if caller.IsSuperuser {
			return caller, nil
		}
		return caller, utils.NewForbiddenError("Organization header is required")
	}
	orgID, err := uuid.Parse(raw)
	if err != nil {
		return caller, utils.NewBadRequestError("Invalid organization ID header", err)
	}
	caller.OrganizationID = orgID
	return caller, nil
}
