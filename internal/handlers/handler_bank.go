package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	portssvc "github.com/d5b5m54hpz-beep/motolibre-sub004/internal/core/ports/services"
	"github.com/d5b5m54hpz-beep/motolibre-sub004/internal/dto"
	"github.com/d5b5m54hpz-beep/motolibre-sub004/internal/middleware"
	"github.com/gin-gonic/gin"
)

const maxStatementBytes = 5 << 20

type bankHandler struct {
	statementService portssvc.StatementSvcFacade
}

// registerBankRoutes registers bank account and statement routes.
func registerBankRoutes(rg *gin.RouterGroup, ss portssvc.StatementSvcFacade) {
	h := &bankHandler{statementService: ss}

	banks := rg.Group("/bank-accounts")
	{
		banks.POST("", h.createBankAccount)
		banks.GET("", h.listBankAccounts)
		banks.GET("/:id", h.getBankAccount)
		banks.POST("/:id/statements", h.importStatement)
		banks.GET("/:id/statement-lines", h.listStatementLines)
	}
}

// createBankAccount godoc
// @Summary Register a bank account
// @Description The ledger account must be one of the configured cash accounts.
// @Tags bank
// @Accept  json
// @Produce  json
// @Param   bankAccount body dto.CreateBankAccountRequest true "Bank account"
// @Success 201 {object} domain.BankAccount
// @Failure 400 {object} map[string]string "Invalid input or not a cash account"
// @Failure 404 {object} map[string]string "Ledger account not found"
// @Security BearerAuth
// @Router /bank-accounts [post]
func (h *bankHandler) createBankAccount(c *gin.Context) {
	var req dto.CreateBankAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "CreateBankAccount")
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	bank, err := h.statementService.CreateBankAccount(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, err, "Failed to create bank account")
		return
	}
	c.JSON(http.StatusCreated, bank)
}

// listBankAccounts godoc
// @Summary List bank accounts
// @Tags bank
// @Produce  json
// @Success 200 {array} domain.BankAccount
// @Security BearerAuth
// @Router /bank-accounts [get]
func (h *bankHandler) listBankAccounts(c *gin.Context) {
	banks, err := h.statementService.ListBankAccounts(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to list bank accounts")
		return
	}
	c.JSON(http.StatusOK, banks)
}

// getBankAccount godoc
// @Summary Get a bank account
// @Tags bank
// @Produce  json
// @Param   id path string true "Bank account ID"
// @Success 200 {object} domain.BankAccount
// @Failure 404 {object} map[string]string "Bank account not found"
// @Security BearerAuth
// @Router /bank-accounts/{id} [get]
func (h *bankHandler) getBankAccount(c *gin.Context) {
	bank, err := h.statementService.GetBankAccount(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to retrieve bank account")
		return
	}
	c.JSON(http.StatusOK, bank)
}

// importStatement godoc
// @Summary Import a bank statement
// @Description Accepts delimited text (comma, semicolon or tab) as the raw body or as a multipart "file" field. Header names are matched in Spanish or English.
// @Tags bank
// @Accept  plain
// @Accept  mpfd
// @Produce  json
// @Param   id path string true "Bank account ID"
// @Success 201 {object} dto.ImportResult
// @Failure 400 {object} map[string]string "Unreadable or malformed statement"
// @Failure 404 {object} map[string]string "Bank account not found"
// @Failure 413 {object} map[string]string "Statement too large"
// @Security BearerAuth
// @Router /bank-accounts/{id}/statements [post]
func (h *bankHandler) importStatement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	raw, err := readStatementBody(c)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Statement exceeds the upload limit"})
			return
		}
		bindError(c, err, "statement body")
		return
	}
	if strings.TrimSpace(raw) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Statement body is empty"})
		return
	}

	bankAccountID := c.Param("id")
	logger.Info("Importing bank statement", slog.String("bank_account_id", bankAccountID), slog.Int("bytes", len(raw)))
	res, err := h.statementService.ImportStatement(c.Request.Context(), bankAccountID, raw, userID)
	if err != nil {
		respondError(c, err, "Failed to import statement")
		return
	}
	c.JSON(http.StatusCreated, res)
}

func readStatementBody(c *gin.Context) (string, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxStatementBytes)
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fh, err := c.FormFile("file")
		if err != nil {
			return "", err
		}
		f, err := fh.Open()
		if err != nil {
			return "", err
		}
		defer f.Close()
		b, err := io.ReadAll(f)
		return string(b), err
	}
	b, err := c.GetRawData()
	return string(b), err
}

// listStatementLines godoc
// @Summary List imported statement lines
// @Tags bank
// @Produce  json
// @Param   id path string true "Bank account ID"
// @Param   from query string false "YYYY-MM-DD"
// @Param   to query string false "YYYY-MM-DD"
// @Param   unreconciledOnly query bool false "Skip reconciled lines"
// @Success 200 {object} dto.StatementLinesResponse
// @Failure 400 {object} map[string]string "Invalid query"
// @Failure 404 {object} map[string]string "Bank account not found"
// @Security BearerAuth
// @Router /bank-accounts/{id}/statement-lines [get]
func (h *bankHandler) listStatementLines(c *gin.Context) {
	var params dto.StatementLinesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindError(c, err, "StatementLines query")
		return
	}
	lines, err := h.statementService.ListStatementLines(c.Request.Context(), c.Param("id"), params)
	if err != nil {
		respondError(c, err, "Failed to list statement lines")
		return
	}
	c.JSON(http.StatusOK, dto.StatementLinesResponse{Lines: lines})
}
