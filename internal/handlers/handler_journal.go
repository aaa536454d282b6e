package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/d5b5m54hpz-beep/motolibre-sub004/internal/core/ports/services"
	"github.com/d5b5m54hpz-beep/motolibre-sub004/internal/dto"
	"github.com/d5b5m54hpz-beep/motolibre-sub004/internal/middleware"
	"github.com/gin-gonic/gin"
)

// journalHandler handles posting and reading journal entries.
type journalHandler struct {
	ledgerService portssvc.LedgerSvcFacade
}

func registerJournalRoutes(rg *gin.RouterGroup, ls portssvc.LedgerSvcFacade) {
	h := &journalHandler{ledgerService: ls}

	entries := rg.Group("/journal-entries")
	{
		entries.POST("", h.postEntry)
		entries.GET("", h.listEntries)
		entries.GET("/:id", h.getEntry)
	}
	rg.GET("/trial-balance", h.trialBalance)
}

// postEntry godoc
// @Summary Post a journal entry
// @Description Posts a balanced double-entry journal entry. Replaying a sourceEventID returns the entry already posted for it.
// @Tags journal
// @Accept  json
// @Produce  json
// @Param   entry body dto.PostEntryRequest true "Entry with at least two lines"
// @Success 201 {object} dto.JournalEntryResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 409 {object} map[string]string "Account not postable or period closed"
// @Failure 422 {object} map[string]interface{} "Debits and credits differ"
// @Failure 500 {object} map[string]string "Failed to post entry"
// @Security BearerAuth
// @Router /journal-entries [post]
func (h *journalHandler) postEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.PostEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "PostEntry")
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	logger.Info("Received request to post journal entry", slog.String("kind", string(req.Kind)), slog.Int("lines", len(req.Lines)))
	entry, err := h.ledgerService.PostEntry(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, err, "Failed to post entry")
		return
	}
	c.JSON(http.StatusCreated, dto.ToJournalEntryResponse(entry))
}

// listEntries godoc
// @Summary List journal entries
// @Description Entries newest first, paginated with an opaque nextToken
// @Tags journal
// @Produce  json
// @Param   from query string false "YYYY-MM-DD"
// @Param   to query string false "YYYY-MM-DD"
// @Param   kind query string false "Entry kind"
// @Param   limit query int false "Page size" default(20)
// @Param   nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.ListEntriesResponse
// @Failure 400 {object} map[string]string "Invalid query"
// @Failure 500 {object} map[string]string "Failed to list entries"
// @Security BearerAuth
// @Router /journal-entries [get]
func (h *journalHandler) listEntries(c *gin.Context) {
	var params dto.ListEntriesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindError(c, err, "ListEntries query")
		return
	}
	resp, err := h.ledgerService.ListEntries(c.Request.Context(), params)
	if err != nil {
		respondError(c, err, "Failed to list entries")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// getEntry godoc
// @Summary Get a journal entry with its lines
// @Tags journal
// @Produce  json
// @Param   id path string true "Entry ID"
// @Success 200 {object} dto.JournalEntryResponse
// @Failure 404 {object} map[string]string "Entry not found"
// @Failure 500 {object} map[string]string "Failed to retrieve entry"
// @Security BearerAuth
// @Router /journal-entries/{id} [get]
func (h *journalHandler) getEntry(c *gin.Context) {
	entry, err := h.ledgerService.GetEntry(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to retrieve entry")
		return
	}
	c.JSON(http.StatusOK, dto.ToJournalEntryResponse(entry))
}

// trialBalance godoc
// @Summary Trial balance
// @Description Debit and credit totals per account with activity, optionally as of a date inclusive
// @Tags journal
// @Produce  json
// @Param   asOf query string false "YYYY-MM-DD"
// @Success 200 {object} dto.TrialBalanceResponse
// @Failure 400 {object} map[string]string "Invalid date"
// @Failure 500 {object} map[string]string "Failed to compute trial balance"
// @Security BearerAuth
// @Router /trial-balance [get]
func (h *journalHandler) trialBalance(c *gin.Context) {
	var params dto.TrialBalanceParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindError(c, err, "TrialBalance query")
		return
	}
	asOf, err := dto.ParseOptionalDate(params.AsOf)
	if err != nil {
		respondError(c, err, "Failed to compute trial balance")
		return
	}
	tb, err := h.ledgerService.TrialBalance(c.Request.Context(), asOf)
	if err != nil {
		respondError(c, err, "Failed to compute trial balance")
		return
	}
	c.JSON(http.StatusOK, tb)
}
