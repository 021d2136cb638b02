package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	contactdomain "github.com/smallbiznis/faktura/internal/contact/domain"
	"github.com/smallbiznis/faktura/internal/orgcontext"
	"github.com/smallbiznis/faktura/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID       *snowflake.Node
	contactrepo repository.Repository[contactdomain.Contact]
}

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
}

func NewService(p ServiceParam) contactdomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("contact.service"),

		genID:       p.GenID,
		contactrepo: repository.ProvideStore[contactdomain.Contact](p.DB),
	}
}

func (s *Service) Create(ctx context.Context, req contactdomain.CreateContactRequest) (*contactdomain.Contact, error) {
	orgID, ok := orgcontext.OrgID(ctx)
	if !ok {
		return nil, contactdomain.ErrInvalidOrganization
	}

	kind := contactdomain.ContactKind(strings.ToUpper(strings.TrimSpace(req.Kind)))
	if kind == "" {
		kind = contactdomain.ContactKindPerson
	}
	switch kind {
	case contactdomain.ContactKindPerson, contactdomain.ContactKindOrganization:
	default:
		return nil, contactdomain.ErrInvalidKind
	}

	contact := contactdomain.Contact{
		ID:          s.genID.Generate(),
		OrgID:       snowflake.ID(orgID),
		Kind:        kind,
		FirstName:   strings.TrimSpace(req.FirstName),
		LastName:    strings.TrimSpace(req.LastName),
		CompanyName: strings.TrimSpace(req.CompanyName),
		Email:       strings.TrimSpace(req.Email),
		Street:      strings.TrimSpace(req.Street),
		PostalCode:  strings.TrimSpace(req.PostalCode),
		City:        strings.TrimSpace(req.City),
		Country:     strings.ToUpper(strings.TrimSpace(req.Country)),
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
	if contact.DisplayName() == "" {
		return nil, contactdomain.ErrInvalidName
	}

	if err := s.contactrepo.Create(ctx, &contact); err != nil {
		return nil, err
	}
	return &contact, nil
}

func (s *Service) Update(ctx context.Context, req contactdomain.UpdateContactRequest) (*contactdomain.Contact, error) {
	orgID, ok := orgcontext.OrgID(ctx)
	if !ok {
		return nil, contactdomain.ErrInvalidOrganization
	}
	id, err := contactdomain.ParseID(req.ID)
	if err != nil {
		return nil, contactdomain.ErrInvalidID
	}

	contact, err := s.contactrepo.First(ctx, "org_id = ? AND id = ?", orgID, id)
	if err != nil {
		return nil, err
	}
	if contact == nil {
		return nil, contactdomain.ErrNotFound
	}

	assign := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	assign(&contact.FirstName, req.FirstName)
	assign(&contact.LastName, req.LastName)
	assign(&contact.CompanyName, req.CompanyName)
	assign(&contact.Email, req.Email)
	assign(&contact.Street, req.Street)
	assign(&contact.PostalCode, req.PostalCode)
	assign(&contact.City, req.City)
	if req.Country != nil {
		contact.Country = strings.ToUpper(strings.TrimSpace(*req.Country))
	}
	if contact.DisplayName() == "" {
		return nil, contactdomain.ErrInvalidName
	}
	contact.UpdatedAt = time.Now().UTC()

	if err := s.contactrepo.Save(ctx, contact); err != nil {
		return nil, err
	}
	return contact, nil
}

func (s *Service) List(ctx context.Context, req contactdomain.ListContactRequest) ([]contactdomain.Contact, error) {
	orgID, ok := orgcontext.OrgID(ctx)
	if !ok {
		return nil, contactdomain.ErrInvalidOrganization
	}

	query := s.db.WithContext(ctx).Where("org_id = ?", orgID)
	if name := strings.TrimSpace(req.Name); name != "" {
		like := "%" + name + "%"
		query = query.Where(
			"first_name LIKE ? OR last_name LIKE ? OR company_name LIKE ?",
			like, like, like,
		)
	}
	if email := strings.TrimSpace(req.Email); email != "" {
		query = query.Where("email = ?", email)
	}

	var contacts []contactdomain.Contact
	if err := query.Order("created_at DESC").Find(&contacts).Error; err != nil {
		return nil, err
	}
	return contacts, nil
}

func (s *Service) GetByID(ctx context.Context, rawID string) (*contactdomain.Contact, error) {
	orgID, ok := orgcontext.OrgID(ctx)
	if !ok {
		return nil, contactdomain.ErrInvalidOrganization
	}
	id, err := contactdomain.ParseID(rawID)
	if err != nil {
		return nil, contactdomain.ErrInvalidID
	}

	contact, err := s.contactrepo.First(ctx, "org_id = ? AND id = ?", orgID, id)
	if err != nil {
		return nil, err
	}
	if contact == nil {
		return nil, contactdomain.ErrNotFound
	}
	return contact, nil
}

func (s *Service) Delete(ctx context.Context, rawID string) error {
	orgID, ok := orgcontext.OrgID(ctx)
	if !ok {
		return contactdomain.ErrInvalidOrganization
	}
	id, err := contactdomain.ParseID(rawID)
	if err != nil {
		return contactdomain.ErrInvalidID
	}

	var invoiceCount int64
	if err := s.db.WithContext(ctx).
		Table("invoices").
		Where("org_id = ? AND contact_id = ?", orgID, id).
		Count(&invoiceCount).Error; err != nil {
		return err
	}
	if invoiceCount > 0 {
		return contactdomain.ErrHasInvoices
	}

	return s.contactrepo.Delete(ctx, "org_id = ? AND id = ?", orgID, id)
}
