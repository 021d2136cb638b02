package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	invoicedomain "github.com/smallbiznis/faktura/internal/invoice/domain"
	"github.com/smallbiznis/faktura/pkg/db/pagination"
)

type lineItemRequest struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   int64   `json:"unit_price"`
	TaxRate     float64 `json:"tax_rate"`
}

type createInvoiceRequest struct {
	ContactID   string            `json:"contact_id"`
	InvoiceType string            `json:"invoice_type"`
	Currency    string            `json:"currency"`
	DueAt       *time.Time        `json:"due_at"`
	Reference   string            `json:"reference"`
	PaymentLink string            `json:"payment_link"`
	Items       []lineItemRequest `json:"items"`
}

// @Summary      Create Invoice
// @Description  Create a draft invoice with its line items
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Security     ApiKeyAuth
// @Param        request body createInvoiceRequest true "Create Invoice Request"
// @Success      200  {object}  invoicedomain.Invoice
// @Router       /invoices [post]
func (s *Server) CreateInvoice(c *gin.Context) {
	var req createInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if strings.TrimSpace(req.ContactID) == "" {
		AbortWithError(c, newValidationError("contact_id", "required", "contact_id is required"))
		return
	}
	if len(req.Items) == 0 {
		AbortWithError(c, newValidationError("items", "required", "at least one line item is required"))
		return
	}

	items := make([]invoicedomain.LineItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, invoicedomain.LineItemInput{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TaxRate:     item.TaxRate,
		})
	}

	resp, err := s.invoiceSvc.Create(c.Request.Context(), invoicedomain.CreateInvoiceRequest{
		ContactID:   strings.TrimSpace(req.ContactID),
		InvoiceType: req.InvoiceType,
		Currency:    req.Currency,
		DueAt:       req.DueAt,
		Reference:   req.Reference,
		PaymentLink: req.PaymentLink,
		Items:       items,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      List Invoices
// @Description  List invoices with optional status filter
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Security     ApiKeyAuth
// @Param        status      query     string  false  "Status"
// @Param        page_token  query     string  false  "Page Token"
// @Param        page_size   query     int     false  "Page Size"
// @Success      200  {object}  invoicedomain.ListInvoiceResponse
// @Router       /invoices [get]
func (s *Server) ListInvoices(c *gin.Context) {
	var query struct {
		pagination.Pagination
		Status string `form:"status"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.invoiceSvc.List(c.Request.Context(), invoicedomain.ListInvoiceRequest{
		Pagination: query.Pagination,
		Status:     strings.TrimSpace(query.Status),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Get Invoice
// @Description  Get invoice by ID including line items
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Security     ApiKeyAuth
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {object}  invoicedomain.Invoice
// @Router       /invoices/{id} [get]
func (s *Server) GetInvoiceByID(c *gin.Context) {
	resp, err := s.invoiceSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Send Invoice
// @Description  Finalize a draft invoice and mark it sent
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Security     ApiKeyAuth
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {object}  invoicedomain.Invoice
// @Router       /invoices/{id}/send [post]
func (s *Server) SendInvoice(c *gin.Context) {
	resp, err := s.invoiceSvc.Send(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type recordPaymentRequest struct {
	Amount   int64      `json:"amount"`
	Currency string     `json:"currency"`
	PaidAt   *time.Time `json:"paid_at"`
	Note     string     `json:"note"`
}

// @Summary      Record Payment
// @Description  Record a payment against a sent or overdue invoice
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Security     ApiKeyAuth
// @Param        id      path  string                true  "Invoice ID"
// @Param        request body  recordPaymentRequest  true  "Record Payment Request"
// @Success      200  {object}  invoicedomain.Invoice
// @Router       /invoices/{id}/payments [post]
func (s *Server) RecordPayment(c *gin.Context) {
	var req recordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if req.Amount <= 0 {
		AbortWithError(c, newValidationError("amount", "invalid_amount", "amount must be positive"))
		return
	}

	resp, err := s.invoiceSvc.RecordPayment(c.Request.Context(), invoicedomain.RecordPaymentRequest{
		InvoiceID: c.Param("id"),
		Amount:    req.Amount,
		Currency:  req.Currency,
		PaidAt:    req.PaidAt,
		Note:      req.Note,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type cancelInvoiceRequest struct {
	Reason string `json:"reason"`
}

// @Summary      Cancel Invoice
// @Description  Cancel a draft, sent, or overdue invoice
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Security     ApiKeyAuth
// @Param        id      path  string                true   "Invoice ID"
// @Param        request body  cancelInvoiceRequest  false  "Cancel Invoice Request"
// @Success      200  {object}  invoicedomain.Invoice
// @Router       /invoices/{id}/cancel [post]
func (s *Server) CancelInvoice(c *gin.Context) {
	var req cancelInvoiceRequest
	if c.Request.Body != nil && c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}
	}

	resp, err := s.invoiceSvc.Cancel(c.Request.Context(), c.Param("id"), req.Reason)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Download Invoice PDF
// @Description  Render the invoice document and stream it as a download
// @Tags         invoices
// @Produce      application/pdf
// @Security     ApiKeyAuth
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {file}    binary
// @Router       /invoices/{id}/pdf [get]
func (s *Server) DownloadInvoicePDF(c *gin.Context) {
	document, filename, err := s.invoiceSvc.RenderPDF(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", document)
}
