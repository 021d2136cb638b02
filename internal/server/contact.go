package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	contactdomain "github.com/smallbiznis/faktura/internal/contact/domain"
)

type createContactRequest struct {
	Kind        string `json:"kind"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	CompanyName string `json:"company_name"`
	Email       string `json:"email"`
	Street      string `json:"street"`
	PostalCode  string `json:"postal_code"`
	City        string `json:"city"`
	Country     string `json:"country"`
}

// @Summary      Create Contact
// @Description  Create a new contact
// @Tags         contacts
// @Accept       json
// @Produce      json
// @Security     ApiKeyAuth
// @Param        request body createContactRequest true "Create Contact Request"
// @Success      200  {object}  contactdomain.Contact
// @Router       /contacts [post]
func (s *Server) CreateContact(c *gin.Context) {
	var req createContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.contactSvc.Create(c.Request.Context(), contactdomain.CreateContactRequest{
		Kind:        req.Kind,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		CompanyName: req.CompanyName,
		Email:       req.Email,
		Street:      req.Street,
		PostalCode:  req.PostalCode,
		City:        req.City,
		Country:     req.Country,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      List Contacts
// @Description  List contacts with optional name and email filters
// @Tags         contacts
// @Accept       json
// @Produce      json
// @Security     ApiKeyAuth
// @Param        name   query     string  false  "Name"
// @Param        email  query     string  false  "Email"
// @Success      200  {object}  []contactdomain.Contact
// @Router       /contacts [get]
func (s *Server) ListContacts(c *gin.Context) {
	var query struct {
		Name  string `form:"name"`
		Email string `form:"email"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.contactSvc.List(c.Request.Context(), contactdomain.ListContactRequest{
		Name:  strings.TrimSpace(query.Name),
		Email: strings.TrimSpace(query.Email),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Get Contact
// @Description  Get contact by ID
// @Tags         contacts
// @Accept       json
// @Produce      json
// @Security     ApiKeyAuth
// @Param        id   path      string  true  "Contact ID"
// @Success      200  {object}  contactdomain.Contact
// @Router       /contacts/{id} [get]
func (s *Server) GetContactByID(c *gin.Context) {
	resp, err := s.contactSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updateContactRequest struct {
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	CompanyName *string `json:"company_name"`
	Email       *string `json:"email"`
	Street      *string `json:"street"`
	PostalCode  *string `json:"postal_code"`
	City        *string `json:"city"`
	Country     *string `json:"country"`
}

// @Summary      Update Contact
// @Description  Update contact fields
// @Tags         contacts
// @Accept       json
// @Produce      json
// @Security     ApiKeyAuth
// @Param        id      path  string                true  "Contact ID"
// @Param        request body  updateContactRequest  true  "Update Contact Request"
// @Success      200  {object}  contactdomain.Contact
// @Router       /contacts/{id} [patch]
func (s *Server) UpdateContact(c *gin.Context) {
	var req updateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.contactSvc.Update(c.Request.Context(), contactdomain.UpdateContactRequest{
		ID:          c.Param("id"),
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		CompanyName: req.CompanyName,
		Email:       req.Email,
		Street:      req.Street,
		PostalCode:  req.PostalCode,
		City:        req.City,
		Country:     req.Country,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Delete Contact
// @Description  Delete a contact without invoices
// @Tags         contacts
// @Accept       json
// @Produce      json
// @Security     ApiKeyAuth
// @Param        id   path      string  true  "Contact ID"
// @Success      200  {object}  map[string]string
// @Router       /contacts/{id} [delete]
func (s *Server) DeleteContact(c *gin.Context) {
	if err := s.contactSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
