package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/faktura/internal/tax"
)

// @Summary      Get Tax Rates
// @Description  List the VAT bands for a jurisdiction
// @Tags         tax
// @Accept       json
// @Produce      json
// @Security     ApiKeyAuth
// @Param        country  query     string  true  "ISO 3166-1 alpha-2 country code"
// @Success      200  {object}  []tax.Rate
// @Router       /tax-rates [get]
func (s *Server) GetTaxRates(c *gin.Context) {
	country := strings.TrimSpace(c.Query("country"))
	if country == "" {
		AbortWithError(c, newValidationError("country", "required", "country is required"))
		return
	}

	rates := s.taxResolver.RatesFor(country)
	if rates == nil {
		rates = []tax.Rate{}
	}

	c.JSON(http.StatusOK, gin.H{"data": rates})
}
