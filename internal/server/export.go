package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/faktura/internal/export"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// @Summary      Export Invoice Register
// @Description  Download the invoice register as an XLSX workbook
// @Tags         invoices
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security     ApiKeyAuth
// @Param        status  query     string  false  "Status"
// @Param        from    query     string  false  "From date (YYYY-MM-DD)"
// @Param        to      query     string  false  "To date (YYYY-MM-DD)"
// @Success      200  {file}    binary
// @Router       /invoices/export [get]
func (s *Server) ExportInvoices(c *gin.Context) {
	if s.exportSvc == nil {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}

	from, err := parseOptionalTime(c.Query("from"), false)
	if err != nil {
		AbortWithError(c, newValidationError("from", "invalid_from", "invalid from date"))
		return
	}
	to, err := parseOptionalTime(c.Query("to"), true)
	if err != nil {
		AbortWithError(c, newValidationError("to", "invalid_to", "invalid to date"))
		return
	}

	workbook, err := s.exportSvc.InvoiceRegisterXLSX(c.Request.Context(), export.Request{
		Status: strings.ToUpper(strings.TrimSpace(c.Query("status"))),
		From:   from,
		To:     to,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	filename := fmt.Sprintf("invoices-%s.xlsx", time.Now().UTC().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, workbook)
}
