package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	settingsdomain "github.com/smallbiznis/faktura/internal/billingsettings/domain"
	"github.com/smallbiznis/faktura/internal/cache"
	"github.com/smallbiznis/faktura/internal/invoice/qrbill"
	"github.com/smallbiznis/faktura/internal/orgcontext"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const settingsCacheTTL = 30 * time.Second

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	settingsCache *cache.TTLCache[int64, settingsdomain.BillingSettings]
}

type ServiceParam struct {
	fx.In

	DB  *gorm.DB
	Log *zap.Logger
}

func NewService(p ServiceParam) settingsdomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("billingsettings.service"),

		settingsCache: cache.NewTTLCache[int64, settingsdomain.BillingSettings](),
	}
}

func (s *Service) Get(ctx context.Context) (*settingsdomain.BillingSettings, error) {
	orgID, ok := orgcontext.OrgID(ctx)
	if !ok {
		return nil, settingsdomain.ErrInvalidOrganization
	}

	if cached, ok := s.settingsCache.Get(orgID); ok {
		return &cached, nil
	}

	settings, err := s.load(ctx, orgID)
	if err != nil {
		return nil, err
	}
	s.settingsCache.Set(orgID, *settings, settingsCacheTTL)
	return settings, nil
}

func (s *Service) Update(ctx context.Context, req settingsdomain.UpdateRequest) (*settingsdomain.BillingSettings, error) {
	orgID, ok := orgcontext.OrgID(ctx)
	if !ok {
		return nil, settingsdomain.ErrInvalidOrganization
	}

	settings, err := s.load(ctx, orgID)
	if err != nil {
		return nil, err
	}

	assign := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	assign(&settings.CompanyName, req.CompanyName)
	assign(&settings.Street, req.Street)
	assign(&settings.PostalCode, req.PostalCode)
	assign(&settings.City, req.City)
	assign(&settings.BIC, req.BIC)
	assign(&settings.InvoicePrefix, req.InvoicePrefix)
	if req.Country != nil {
		settings.Country = strings.ToUpper(strings.TrimSpace(*req.Country))
	}
	if req.IBAN != nil {
		iban := qrbill.NormalizeIBAN(*req.IBAN)
		if iban != "" {
			if err := qrbill.ValidateIBAN(iban); err != nil {
				return nil, settingsdomain.ErrInvalidIBAN
			}
		}
		settings.IBAN = iban
	}
	if req.DefaultCurrency != nil {
		currency := strings.ToUpper(strings.TrimSpace(*req.DefaultCurrency))
		if len(currency) != 3 {
			return nil, settingsdomain.ErrInvalidCurrency
		}
		settings.DefaultCurrency = currency
	}
	if req.DefaultTaxRate != nil {
		if *req.DefaultTaxRate < 0 || *req.DefaultTaxRate > 100 {
			return nil, settingsdomain.ErrInvalidTaxRate
		}
		settings.DefaultTaxRate = *req.DefaultTaxRate
	}
	settings.UpdatedAt = time.Now().UTC()

	if err := s.db.WithContext(ctx).Save(settings).Error; err != nil {
		return nil, err
	}
	s.settingsCache.Delete(orgID)
	return settings, nil
}

// load fetches the typed row, creating defaults on first access, and resolves
// legacy JSON fields exactly once.
func (s *Service) load(ctx context.Context, orgID int64) (*settingsdomain.BillingSettings, error) {
	var settings settingsdomain.BillingSettings
	err := s.db.WithContext(ctx).
		Where("org_id = ?", orgID).
		First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		settings = settingsdomain.BillingSettings{
			OrgID:           snowflake.ID(orgID),
			Country:         "CH",
			DefaultCurrency: "CHF",
			DefaultTaxRate:  8.1,
			InvoicePrefix:   "INV-",
			CreatedAt:       time.Now().UTC(),
			UpdatedAt:       time.Now().UTC(),
		}
		if err := s.db.WithContext(ctx).Create(&settings).Error; err != nil {
			return nil, err
		}
		return &settings, nil
	}
	if err != nil {
		return nil, err
	}

	settings.ApplyLegacy()
	return &settings, nil
}
