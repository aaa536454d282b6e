package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/d5b5m54hpz-beep/motolibre-sub004/internal/core/ports/services"
	"github.com/d5b5m54hpz-beep/motolibre-sub004/internal/dto"
	"github.com/d5b5m54hpz-beep/motolibre-sub004/internal/middleware"
	"github.com/gin-gonic/gin"
)

// reconciliationHandler drives reconciliation runs over HTTP.
type reconciliationHandler struct {
	reconService portssvc.ReconciliationSvcFacade
}

func registerReconciliationRoutes(rg *gin.RouterGroup, rs portssvc.ReconciliationSvcFacade) {
	h := &reconciliationHandler{reconService: rs}

	runs := rg.Group("/reconciliations")
	{
		runs.POST("", h.startRun)
		runs.GET("", h.listRuns)
		runs.POST("/preview", h.previewMatches)
		runs.GET("/:id", h.getRun)
		runs.GET("/:id/summary", h.runSummary)
		runs.POST("/:id/matches", h.createManualMatch)
		runs.POST("/:id/matches/:matchID/approve", h.approveMatch)
		runs.POST("/:id/matches/:matchID/reject", h.rejectMatch)
		runs.POST("/:id/close", h.closeRun)
	}
}

// startRun godoc
// @Summary Start a reconciliation run
// @Description Matches the unreconciled statement lines of the range and stores every proposal as PROPOSED.
// @Tags reconciliation
// @Accept  json
// @Produce  json
// @Param   run body dto.StartRunRequest true "Bank account and date range"
// @Success 201 {object} domain.ReconciliationRun
// @Failure 400 {object} map[string]string "Invalid input or range"
// @Failure 404 {object} map[string]string "Bank account not found"
// @Security BearerAuth
// @Router /reconciliations [post]
func (h *reconciliationHandler) startRun(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.StartRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "StartRun")
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	logger.Info("Starting reconciliation run", slog.String("bank_account_id", req.BankAccountID),
		slog.String("from", req.PeriodFrom), slog.String("to", req.PeriodTo))
	run, err := h.reconService.StartRun(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, err, "Failed to start reconciliation run")
		return
	}
	c.JSON(http.StatusCreated, run)
}

// previewMatches godoc
// @Summary Preview match proposals
// @Description Runs the matching engine without creating a run.
// @Tags reconciliation
// @Accept  json
// @Produce  json
// @Param   range body dto.StartRunRequest true "Bank account and date range"
// @Success 200 {object} dto.MatchPreviewResponse
// @Failure 400 {object} map[string]string "Invalid input or range"
// @Failure 404 {object} map[string]string "Bank account not found"
// @Security BearerAuth
// @Router /reconciliations/preview [post]
func (h *reconciliationHandler) previewMatches(c *gin.Context) {
	var req dto.StartRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "PreviewMatches")
		return
	}
	from, err := dto.ParseDate(req.PeriodFrom)
	if err != nil {
		respondError(c, err, "Failed to preview matches")
		return
	}
	to, err := dto.ParseDate(req.PeriodTo)
	if err != nil {
		respondError(c, err, "Failed to preview matches")
		return
	}
	matches, err := h.reconService.RunMatching(c.Request.Context(), req.BankAccountID, from, to)
	if err != nil {
		respondError(c, err, "Failed to preview matches")
		return
	}
	c.JSON(http.StatusOK, dto.MatchPreviewResponse{Matches: matches})
}

// listRuns godoc
// @Summary List reconciliation runs
// @Tags reconciliation
// @Produce  json
// @Param   bankAccountID query string false "Only runs of this bank account"
// @Success 200 {array} domain.ReconciliationRun
// @Security BearerAuth
// @Router /reconciliations [get]
func (h *reconciliationHandler) listRuns(c *gin.Context) {
	var params dto.ListRunsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindError(c, err, "ListRuns query")
		return
	}
	runs, err := h.reconService.ListRuns(c.Request.Context(), params.BankAccountID)
	if err != nil {
		respondError(c, err, "Failed to list reconciliation runs")
		return
	}
	c.JSON(http.StatusOK, runs)
}

// getRun godoc
// @Summary Get a reconciliation run with its matches
// @Tags reconciliation
// @Produce  json
// @Param   id path string true "Run ID"
// @Success 200 {object} domain.ReconciliationRun
// @Failure 404 {object} map[string]string "Run not found"
// @Security BearerAuth
// @Router /reconciliations/{id} [get]
func (h *reconciliationHandler) getRun(c *gin.Context) {
	run, err := h.reconService.GetRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to retrieve reconciliation run")
		return
	}
	c.JSON(http.StatusOK, run)
}

// runSummary godoc
// @Summary Reconciliation summary
// @Description Match counts, the statement closing balance and the ledger balance of the linked account
// @Tags reconciliation
// @Produce  json
// @Param   id path string true "Run ID"
// @Success 200 {object} domain.RunSummary
// @Failure 404 {object} map[string]string "Run not found"
// @Security BearerAuth
// @Router /reconciliations/{id}/summary [get]
func (h *reconciliationHandler) runSummary(c *gin.Context) {
	summary, err := h.reconService.RunSummary(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to build reconciliation summary")
		return
	}
	c.JSON(http.StatusOK, summary)
}

// createManualMatch godoc
// @Summary Match a statement line by hand
// @Description Creates an approved MANUAL match and reconciles the line. Pending proposals for the line are rejected.
// @Tags reconciliation
// @Accept  json
// @Produce  json
// @Param   id path string true "Run ID"
// @Param   match body dto.ManualMatchRequest true "Line and movement"
// @Success 201 {object} domain.ReconciliationMatch
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Run, line or movement not found"
// @Failure 409 {object} map[string]string "Run closed or line already reconciled"
// @Security BearerAuth
// @Router /reconciliations/{id}/matches [post]
func (h *reconciliationHandler) createManualMatch(c *gin.Context) {
	var req dto.ManualMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "ManualMatch")
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	match, err := h.reconService.CreateManualMatch(c.Request.Context(), c.Param("id"), req, userID)
	if err != nil {
		respondError(c, err, "Failed to create manual match")
		return
	}
	c.JSON(http.StatusCreated, match)
}

// approveMatch godoc
// @Summary Approve a proposed match
// @Tags reconciliation
// @Produce  json
// @Param   id path string true "Run ID"
// @Param   matchID path string true "Match ID"
// @Success 200 {object} domain.ReconciliationMatch
// @Failure 404 {object} map[string]string "Run or match not found"
// @Failure 409 {object} map[string]string "Run closed, match decided or line already reconciled"
// @Security BearerAuth
// @Router /reconciliations/{id}/matches/{matchID}/approve [post]
func (h *reconciliationHandler) approveMatch(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	match, err := h.reconService.ApproveMatch(c.Request.Context(), c.Param("id"), c.Param("matchID"), userID)
	if err != nil {
		respondError(c, err, "Failed to approve match")
		return
	}
	c.JSON(http.StatusOK, match)
}

// rejectMatch godoc
// @Summary Reject a proposed match
// @Tags reconciliation
// @Produce  json
// @Param   id path string true "Run ID"
// @Param   matchID path string true "Match ID"
// @Success 200 {object} domain.ReconciliationMatch
// @Failure 404 {object} map[string]string "Run or match not found"
// @Failure 409 {object} map[string]string "Run closed or match decided"
// @Security BearerAuth
// @Router /reconciliations/{id}/matches/{matchID}/reject [post]
func (h *reconciliationHandler) rejectMatch(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	match, err := h.reconService.RejectMatch(c.Request.Context(), c.Param("id"), c.Param("matchID"), userID)
	if err != nil {
		respondError(c, err, "Failed to reject match")
		return
	}
	c.JSON(http.StatusOK, match)
}

// closeRun godoc
// @Summary Close a reconciliation run
// @Description Every match must be approved or rejected first.
// @Tags reconciliation
// @Produce  json
// @Param   id path string true "Run ID"
// @Success 200 {object} domain.ReconciliationRun
// @Failure 404 {object} map[string]string "Run not found"
// @Failure 409 {object} map[string]string "Run closed or matches pending"
// @Security BearerAuth
// @Router /reconciliations/{id}/close [post]
func (h *reconciliationHandler) closeRun(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	run, err := h.reconService.CloseRun(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondError(c, err, "Failed to close reconciliation run")
		return
	}
	c.JSON(http.StatusOK, run)
}
