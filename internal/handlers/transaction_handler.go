package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/ArowuTest/orgfees-backend/internal/middleware"
	"github.com/ArowuTest/orgfees-backend/internal/models"
	"github.com/ArowuTest/orgfees-backend/internal/pkg/apperrors"
	"github.com/ArowuTest/orgfees-backend/internal/services"
	"github.com/ArowuTest/orgfees-backend/internal/utils"
	"github.com/gin-gonic/gin"
)

// TransactionHandler handles payment requests
type TransactionHandler struct {
	transactionService *services.TransactionService
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(transactionService *services.TransactionService) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService}
}

func (h *TransactionHandler) GetTransactions(c *gin.Context) {
	q, err := parseListQuery(c)
	if err != nil {
		fail(c, err)
		return
	}
	page, err := h.transactionService.GetTransactions(c.Request.Context(), middleware.GetTerm(c), middleware.GetActor(c), q)
	if err != nil {
		fail(c, err)
		return
	}
	respondPage(c, page, "")
}

func (h *TransactionHandler) GetTransactionByID(c *gin.Context) {
	tx, err := h.transactionService.GetTransactionByID(c.Request.Context(), middleware.GetTerm(c), middleware.GetActor(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, tx, "")
}

func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	var req models.TransactionRequest
	if !bindJSON(c, &req) {
		return
	}
	tx, err := h.transactionService.CreateTransaction(c.Request.Context(), middleware.GetTerm(c), middleware.GetActor(c), &req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, tx, "transaction recorded")
}

func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	var req models.TransactionRequest
	if !bindJSON(c, &req) {
		return
	}
	tx, err := h.transactionService.UpdateTransaction(c.Request.Context(), middleware.GetTerm(c), middleware.GetActor(c), c.Param("id"), &req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, tx, "transaction updated")
}

func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	if err := h.transactionService.DeleteTransaction(c.Request.Context(), middleware.GetTerm(c), middleware.GetActor(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, nil, "transaction deleted")
}

// Summary handles GET /transaction/summary
func (h *TransactionHandler) Summary(c *gin.Context) {
	summary, err := h.transactionService.Summary(c.Request.Context(), middleware.GetTerm(c), middleware.GetActor(c))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, summary, "")
}

// Export handles GET /transaction/export?format=csv|xlsx|pdf with the list filters
func (h *TransactionHandler) Export(c *gin.Context) {
	format := strings.ToLower(c.DefaultQuery("format", "csv"))
	write, contentType, ok := exportWriter(format)
	if !ok {
		fail(c, apperrors.BadRequest("format must be csv, xlsx or pdf"))
		return
	}
	q, err := parseListQuery(c)
	if err != nil {
		fail(c, err)
		return
	}

	term := middleware.GetTerm(c)
	table, err := h.transactionService.ExportTransactions(c.Request.Context(), term, middleware.GetActor(c), q)
	if err != nil {
		fail(c, err)
		return
	}
	var buf bytes.Buffer
	if err := write(&buf, table); err != nil {
		fail(c, apperrors.Internal(err))
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="transactions-%s.%s"`, term.Key(), format))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

// Receipt handles GET /transaction/:id/receipt
func (h *TransactionHandler) Receipt(c *gin.Context) {
	receipt, err := h.transactionService.Receipt(c.Request.Context(), middleware.GetTerm(c), middleware.GetActor(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	var buf bytes.Buffer
	if err := utils.WriteReceiptPDF(&buf, receipt); err != nil {
		fail(c, apperrors.Internal(err))
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="%s.pdf"`, receipt.Number))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// PreviewImport handles POST /transaction/import/preview (multipart "file")
func (h *TransactionHandler) PreviewImport(c *gin.Context) {
	rows, err := readUpload(c)
	if err != nil {
		fail(c, err)
		return
	}
	preview, err := h.transactionService.PreviewTransactionImport(c.Request.Context(), middleware.GetTerm(c), middleware.GetActor(c), rows)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, preview, "")
}

// CommitImport handles POST /transaction/import
func (h *TransactionHandler) CommitImport(c *gin.Context) {
	var req models.ImportCommitRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.transactionService.CommitTransactionImport(c.Request.Context(), middleware.GetTerm(c), middleware.GetActor(c), req.Rows)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, result, "import finished")
}

func exportWriter(format string) (func(w *bytes.Buffer, t utils.Table) error, string, bool) {
	switch format {
	case "csv":
		return func(w *bytes.Buffer, t utils.Table) error { return utils.WriteCSV(w, t) }, "text/csv; charset=utf-8", true
	case "xlsx":
		return func(w *bytes.Buffer, t utils.Table) error { return utils.WriteXLSX(w, t) },
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", true
	case "pdf":
		return func(w *bytes.Buffer, t utils.Table) error { return utils.WriteTablePDF(w, t) }, "application/pdf", true
	default:
		return nil, "", false
	}
}
