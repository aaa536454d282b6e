package handlers

import (
	"net/http"

	portssvc "github.com/d5b5m54hpz-beep/motolibre-sub004/internal/core/ports/services"
	"github.com/d5b5m54hpz-beep/motolibre-sub004/internal/dto"
	"github.com/gin-gonic/gin"
)

type periodHandler struct {
	periodService portssvc.PeriodSvcFacade
}

// registerPeriodRoutes registers routes related to accounting periods.
func registerPeriodRoutes(rg *gin.RouterGroup, ps portssvc.PeriodSvcFacade) {
	h := &periodHandler{periodService: ps}

	periods := rg.Group("/periods")
	{
		periods.GET("", h.listPeriods)
		periods.GET("/:id", h.getPeriod)
		periods.POST("/:id/close", h.closePeriod)
		periods.POST("/:id/reopen", h.reopenPeriod)
	}
}

// listPeriods godoc
// @Summary List accounting periods
// @Description Periods are created on first posting. Newest first.
// @Tags periods
// @Produce  json
// @Param   year query int false "Calendar year"
// @Success 200 {array} domain.AccountingPeriod
// @Failure 400 {object} map[string]string "Invalid year"
// @Failure 500 {object} map[string]string "Failed to list periods"
// @Security BearerAuth
// @Router /periods [get]
func (h *periodHandler) listPeriods(c *gin.Context) {
	var params dto.ListPeriodsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindError(c, err, "ListPeriods query")
		return
	}
	periods, err := h.periodService.ListPeriods(c.Request.Context(), params.Year)
	if err != nil {
		respondError(c, err, "Failed to list periods")
		return
	}
	c.JSON(http.StatusOK, periods)
}

// getPeriod godoc
// @Summary Get an accounting period
// @Tags periods
// @Produce  json
// @Param   id path string true "Period ID"
// @Success 200 {object} domain.AccountingPeriod
// @Failure 404 {object} map[string]string "Period not found"
// @Security BearerAuth
// @Router /periods/{id} [get]
func (h *periodHandler) getPeriod(c *gin.Context) {
	period, err := h.periodService.GetPeriod(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to retrieve period")
		return
	}
	c.JSON(http.StatusOK, period)
}

// closePeriod godoc
// @Summary Close an accounting period
// @Description Closed periods reject new postings.
// @Tags periods
// @Produce  json
// @Param   id path string true "Period ID"
// @Success 200 {object} domain.AccountingPeriod
// @Failure 404 {object} map[string]string "Period not found"
// @Failure 409 {object} map[string]string "Period already closed"
// @Security BearerAuth
// @Router /periods/{id}/close [post]
func (h *periodHandler) closePeriod(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	period, err := h.periodService.ClosePeriod(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondError(c, err, "Failed to close period")
		return
	}
	c.JSON(http.StatusOK, period)
}

// reopenPeriod godoc
// @Summary Reopen the latest closed period
// @Tags periods
// @Produce  json
// @Param   id path string true "Period ID"
// @Success 200 {object} domain.AccountingPeriod
// @Failure 404 {object} map[string]string "Period not found"
// @Failure 409 {object} map[string]string "Period is open or a later period is closed"
// @Security BearerAuth
// @Router /periods/{id}/reopen [post]
func (h *periodHandler) reopenPeriod(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	period, err := h.periodService.ReopenPeriod(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondError(c, err, "Failed to reopen period")
		return
	}
	c.JSON(http.StatusOK, period)
}
