package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	settingsdomain "github.com/smallbiznis/faktura/internal/billingsettings/domain"
	"github.com/smallbiznis/faktura/internal/observability/logger"
	"go.uber.org/zap"
)

// @Summary      Get Billing Settings
// @Description  Get the organization's billing settings
// @Tags         settings
// @Accept       json
// @Produce      json
// @Security     ApiKeyAuth
// @Success      200  {object}  settingsdomain.BillingSettings
// @Router       /settings [get]
func (s *Server) GetSettings(c *gin.Context) {
	resp, err := s.settingsSvc.Get(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updateSettingsRequest struct {
	CompanyName     *string  `json:"company_name"`
	Street          *string  `json:"street"`
	PostalCode      *string  `json:"postal_code"`
	City            *string  `json:"city"`
	Country         *string  `json:"country"`
	IBAN            *string  `json:"iban"`
	BIC             *string  `json:"bic"`
	DefaultCurrency *string  `json:"default_currency"`
	DefaultTaxRate  *float64 `json:"default_tax_rate"`
	InvoicePrefix   *string  `json:"invoice_prefix"`
}

// @Summary      Update Billing Settings
// @Description  Update the organization's billing settings
// @Tags         settings
// @Accept       json
// @Produce      json
// @Security     ApiKeyAuth
// @Param        request body updateSettingsRequest true "Update Settings Request"
// @Success      200  {object}  settingsdomain.BillingSettings
// @Router       /settings [patch]
func (s *Server) UpdateSettings(c *gin.Context) {
	var req updateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.settingsSvc.Update(c.Request.Context(), settingsdomain.UpdateRequest{
		CompanyName:     req.CompanyName,
		Street:          req.Street,
		PostalCode:      req.PostalCode,
		City:            req.City,
		Country:         req.Country,
		IBAN:            req.IBAN,
		BIC:             req.BIC,
		DefaultCurrency: req.DefaultCurrency,
		DefaultTaxRate:  req.DefaultTaxRate,
		InvoicePrefix:   req.InvoicePrefix,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if req.IBAN != nil {
		logger.FromContext(c.Request.Context()).Info("billing iban updated",
			zap.String("iban", logger.MaskIBAN(*req.IBAN)),
		)
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
