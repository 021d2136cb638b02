package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	settingsdomain "github.com/smallbiznis/faktura/internal/billingsettings/domain"
	"github.com/smallbiznis/faktura/internal/clock"
	contactdomain "github.com/smallbiznis/faktura/internal/contact/domain"
	"github.com/smallbiznis/faktura/internal/events"
	invoicedomain "github.com/smallbiznis/faktura/internal/invoice/domain"
	"github.com/smallbiznis/faktura/internal/invoice/qrbill"
	"github.com/smallbiznis/faktura/internal/invoice/render"
	"github.com/smallbiznis/faktura/internal/observability/metrics"
	"github.com/smallbiznis/faktura/internal/orgcontext"
	"github.com/smallbiznis/faktura/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultPaymentTermDays = 30

var supportedCurrencies = map[string]struct{}{
	"CHF": {},
	"EUR": {},
	"USD": {},
	"GBP": {},
}

// qrBillCurrencies are the only currencies a domestic payment slip accepts.
var qrBillCurrencies = map[string]struct{}{
	"CHF": {},
	"EUR": {},
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID       *snowflake.Node
	clk         clock.Clock
	renderer    render.Renderer
	outbox      *events.Outbox
	settingsSvc settingsdomain.Service
	contactSvc  contactdomain.Service
}

type ServiceParam struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Renderer    render.Renderer
	Outbox      *events.Outbox
	SettingsSvc settingsdomain.Service
	ContactSvc  contactdomain.Service
}

func NewService(p ServiceParam) invoicedomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("invoice.service"),

		genID:       p.GenID,
		clk:         p.Clock,
		renderer:    p.Renderer,
		outbox:      p.Outbox,
		settingsSvc: p.SettingsSvc,
		contactSvc:  p.ContactSvc,
	}
}

func (s *Service) Create(ctx context.Context, req invoicedomain.CreateInvoiceRequest) (*invoicedomain.Invoice, error) {
	orgID, ok := orgcontext.OrgID(ctx)
	if !ok {
		return nil, invoicedomain.ErrInvalidOrganization
	}

	contact, err := s.contactSvc.GetByID(ctx, req.ContactID)
	if err != nil {
		return nil, invoicedomain.ErrInvalidContact
	}

	settings, err := s.settingsSvc.Get(ctx)
	if err != nil {
		return nil, err
	}

	invoiceType := invoicedomain.InvoiceType(strings.ToUpper(strings.TrimSpace(req.InvoiceType)))
	if invoiceType == "" {
		invoiceType = invoicedomain.InvoiceTypeQRBill
	}
	switch invoiceType {
	case invoicedomain.InvoiceTypeQRBill, invoicedomain.InvoiceTypeCrossBorder:
	default:
		return nil, invoicedomain.ErrInvalidType
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = settings.DefaultCurrency
	}
	if _, ok := supportedCurrencies[currency]; !ok {
		return nil, invoicedomain.ErrInvalidCurrency
	}
	if invoiceType == invoicedomain.InvoiceTypeQRBill {
		if _, ok := qrBillCurrencies[currency]; !ok {
			return nil, invoicedomain.ErrInvalidCurrency
		}
	}

	reference := strings.TrimSpace(req.Reference)
	if reference != "" {
		if invoiceType != invoicedomain.InvoiceTypeQRBill {
			return nil, qrbill.ErrInvalidReference
		}
		reference, err = qrbill.ResolveQRReference(reference)
		if err != nil {
			return nil, err
		}
		// A structured reference is only bookable against a QR-IID account.
		if iban := qrbill.NormalizeIBAN(settings.IBAN); iban != "" && !qrbill.IsQRIBAN(iban) {
			return nil, qrbill.ErrReferenceIBAN
		}
	}

	if len(req.Items) == 0 {
		return nil, invoicedomain.ErrInvalidLineItem
	}
	items := make([]invoicedomain.LineItem, 0, len(req.Items))
	for position, input := range req.Items {
		if strings.TrimSpace(input.Description) == "" {
			return nil, invoicedomain.ErrInvalidLineItem
		}
		if input.Quantity <= 0 || input.UnitPrice < 0 {
			return nil, invoicedomain.ErrInvalidLineItem
		}
		if input.TaxRate < 0 || input.TaxRate > 100 {
			return nil, invoicedomain.ErrInvalidLineItem
		}
		items = append(items, invoicedomain.LineItem{
			ID:          s.genID.Generate(),
			OrgID:       snowflake.ID(orgID),
			Description: strings.TrimSpace(input.Description),
			Quantity:    input.Quantity,
			UnitPrice:   input.UnitPrice,
			TaxRate:     input.TaxRate,
			Position:    position,
			CreatedAt:   s.clk.Now(),
		})
	}
	totals := invoicedomain.CalculateTotals(items)

	now := s.clk.Now()
	invoice := invoicedomain.Invoice{
		ID:             s.genID.Generate(),
		OrgID:          snowflake.ID(orgID),
		ContactID:      contact.ID,
		InvoiceType:    invoiceType,
		Status:         invoicedomain.InvoiceStatusDraft,
		Currency:       currency,
		SubtotalAmount: totals.Subtotal,
		TaxAmount:      totals.Tax,
		TotalAmount:    totals.Total,
		Reference:      reference,
		PaymentLink:    strings.TrimSpace(req.PaymentLink),
		DueAt:          req.DueAt,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := s.nextInvoiceNumber(ctx, tx, snowflake.ID(orgID), settings.InvoicePrefix)
		if err != nil {
			return err
		}
		invoice.InvoiceNumber = number

		if err := tx.Create(&invoice).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].InvoiceID = invoice.ID
		}
		return tx.Create(&items).Error
	})
	if err != nil {
		return nil, err
	}

	invoice.Items = items
	return &invoice, nil
}

func (s *Service) List(ctx context.Context, req invoicedomain.ListInvoiceRequest) (invoicedomain.ListInvoiceResponse, error) {
	orgID, ok := orgcontext.OrgID(ctx)
	if !ok {
		return invoicedomain.ListInvoiceResponse{}, invoicedomain.ErrInvalidOrganization
	}

	query := s.db.WithContext(ctx).
		Model(&invoicedomain.Invoice{}).
		Where("org_id = ?", orgID)
	if status := strings.ToUpper(strings.TrimSpace(req.Status)); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return invoicedomain.ListInvoiceResponse{}, err
	}

	offset := pagination.DecodeToken(req.PageToken)
	size := pagination.Normalize(int32(req.PageSize))

	var invoices []invoicedomain.Invoice
	if err := query.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Order("created_at DESC").
		Offset(offset).
		Limit(size).
		Find(&invoices).Error; err != nil {
		return invoicedomain.ListInvoiceResponse{}, err
	}

	resp := invoicedomain.ListInvoiceResponse{Invoices: invoices}
	resp.TotalCount = total
	if offset+len(invoices) < int(total) {
		resp.NextPageToken = pagination.EncodeToken(offset + len(invoices))
	}
	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, rawID string) (*invoicedomain.Invoice, error) {
	orgID, ok := orgcontext.OrgID(ctx)
	if !ok {
		return nil, invoicedomain.ErrInvalidOrganization
	}
	id, err := snowflake.ParseString(strings.TrimSpace(rawID))
	if err != nil {
		return nil, invoicedomain.ErrInvalidID
	}

	var invoice invoicedomain.Invoice
	err = s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("org_id = ? AND id = ?", orgID, id).
		First(&invoice).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, invoicedomain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// Send finalizes a draft invoice. The issued timestamp is stamped, a due
// date is defaulted when absent, and the line items become immutable.
func (s *Service) Send(ctx context.Context, invoiceID string) (*invoicedomain.Invoice, error) {
	invoice, err := s.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if !invoice.CanTransition(invoicedomain.InvoiceStatusSent) {
		if invoice.Status != invoicedomain.InvoiceStatusDraft {
			return nil, invoicedomain.ErrNotDraft
		}
		return nil, invoicedomain.ErrInvalidTransition
	}

	// A QR-bill invoice must be renderable at send time; building the full
	// slip here surfaces a missing or invalid IBAN before the customer does.
	if invoice.InvoiceType == invoicedomain.InvoiceTypeQRBill {
		settings, err := s.settingsSvc.Get(ctx)
		if err != nil {
			return nil, err
		}
		iban := qrbill.NormalizeIBAN(settings.IBAN)
		if iban == "" {
			return nil, invoicedomain.ErrMissingIBAN
		}
		// QR-IID accounts mandate a structured reference; derive one from
		// the invoice identity when the caller supplied none.
		if qrbill.IsQRIBAN(iban) && invoice.Reference == "" {
			reference, err := qrbill.ResolveQRReference(invoice.ID.String())
			if err != nil {
				return nil, err
			}
			invoice.Reference = reference
		}
		contact, err := s.contactSvc.GetByID(ctx, invoice.ContactID.String())
		if err != nil {
			return nil, err
		}
		if _, err := render.Prepare(*invoice, *settings, *contact, s.clk.Now()); err != nil {
			return nil, err
		}
	}

	now := s.clk.Now()
	invoice.Status = invoicedomain.InvoiceStatusSent
	invoice.IssuedAt = &now
	if invoice.DueAt == nil {
		due := now.AddDate(0, 0, defaultPaymentTermDays)
		invoice.DueAt = &due
	}
	invoice.UpdatedAt = now

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Save(invoice).Error; err != nil {
			return err
		}
		return s.outbox.PublishTx(ctx, tx, events.Event{
			OrgID:     invoice.OrgID,
			Type:      events.EventInvoiceSent,
			Payload:   s.invoicePayload(invoice).ToMap(),
			DedupeKey: fmt.Sprintf("invoice.sent:%s", invoice.ID),
		})
	})
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

func (s *Service) RecordPayment(ctx context.Context, req invoicedomain.RecordPaymentRequest) (*invoicedomain.Invoice, error) {
	invoice, err := s.GetByID(ctx, req.InvoiceID)
	if err != nil {
		return nil, err
	}
	switch invoice.Status {
	case invoicedomain.InvoiceStatusSent, invoicedomain.InvoiceStatusOverdue:
	default:
		return nil, invoicedomain.ErrNotPayable
	}
	if req.Amount <= 0 {
		return nil, invoicedomain.ErrInvalidAmount
	}
	if currency := strings.ToUpper(strings.TrimSpace(req.Currency)); currency != "" && currency != invoice.Currency {
		return nil, invoicedomain.ErrCurrencyMismatch
	}

	now := s.clk.Now()
	paidAt := now
	if req.PaidAt != nil {
		paidAt = req.PaidAt.UTC()
	}
	payment := invoicedomain.Payment{
		ID:        s.genID.Generate(),
		OrgID:     invoice.OrgID,
		InvoiceID: invoice.ID,
		Amount:    req.Amount,
		Currency:  invoice.Currency,
		PaidAt:    paidAt,
		Note:      strings.TrimSpace(req.Note),
		CreatedAt: now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}

		var totalPaid int64
		if err := tx.Model(&invoicedomain.Payment{}).
			Where("org_id = ? AND invoice_id = ?", invoice.OrgID, invoice.ID).
			Select("COALESCE(SUM(amount), 0)").
			Scan(&totalPaid).Error; err != nil {
			return err
		}

		previous := invoice.Status
		invoice.RecalculateState(now, totalPaid)
		invoice.UpdatedAt = now
		if err := tx.Omit("Items").Save(invoice).Error; err != nil {
			return err
		}

		if err := s.outbox.PublishTx(ctx, tx, events.Event{
			OrgID:     invoice.OrgID,
			Type:      events.EventPaymentRecorded,
			Payload:   events.PaymentPayload{PaymentID: payment.ID.String(), InvoiceID: invoice.ID.String(), Amount: payment.Amount, Currency: payment.Currency}.ToMap(),
			DedupeKey: fmt.Sprintf("payment.recorded:%s", payment.ID),
		}); err != nil {
			return err
		}
		if previous != invoicedomain.InvoiceStatusPaid && invoice.Status == invoicedomain.InvoiceStatusPaid {
			return s.outbox.PublishTx(ctx, tx, events.Event{
				OrgID:     invoice.OrgID,
				Type:      events.EventInvoicePaid,
				Payload:   s.invoicePayload(invoice).ToMap(),
				DedupeKey: fmt.Sprintf("invoice.paid:%s", invoice.ID),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

func (s *Service) Cancel(ctx context.Context, invoiceID string, reason string) (*invoicedomain.Invoice, error) {
	invoice, err := s.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if !invoice.CanTransition(invoicedomain.InvoiceStatusCancelled) {
		return nil, invoicedomain.ErrInvalidTransition
	}

	now := s.clk.Now()
	invoice.Status = invoicedomain.InvoiceStatusCancelled
	invoice.CancelledAt = &now
	invoice.UpdatedAt = now

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Save(invoice).Error; err != nil {
			return err
		}
		payload := s.invoicePayload(invoice).ToMap()
		if reason = strings.TrimSpace(reason); reason != "" {
			payload["reason"] = reason
		}
		return s.outbox.PublishTx(ctx, tx, events.Event{
			OrgID:     invoice.OrgID,
			Type:      events.EventInvoiceCancelled,
			Payload:   payload,
			DedupeKey: fmt.Sprintf("invoice.cancelled:%s", invoice.ID),
		})
	})
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

// RenderPDF prepares the resolved view model and lays it out. The renderer
// performs no I/O; persisting or streaming the bytes is the caller's job.
func (s *Service) RenderPDF(ctx context.Context, invoiceID string) ([]byte, string, error) {
	start := time.Now()

	invoice, err := s.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, "", err
	}
	settings, err := s.settingsSvc.Get(ctx)
	if err != nil {
		return nil, "", err
	}
	contact, err := s.contactSvc.GetByID(ctx, invoice.ContactID.String())
	if err != nil {
		return nil, "", err
	}

	input, err := render.Prepare(*invoice, *settings, *contact, s.clk.Now())
	if err != nil {
		metrics.Render().ObserveRender(string(invoice.InvoiceType), "error", time.Since(start), 0)
		return nil, "", err
	}

	result, err := s.renderer.Render(input)
	if err != nil {
		metrics.Render().ObserveRender(string(invoice.InvoiceType), "error", time.Since(start), 0)
		return nil, "", err
	}
	if result.QRDegraded {
		metrics.Render().ObserveQRFallback()
		s.log.Warn("payment slip rendered with QR placeholder",
			zap.String("invoice_id", invoice.ID.String()),
			zap.String("invoice_number", invoice.InvoiceNumber),
		)
	}
	metrics.Render().ObserveRender(string(invoice.InvoiceType), "ok", time.Since(start), len(result.Bytes))

	return result.Bytes, qrbill.DownloadFilename(invoice.InvoiceNumber), nil
}

// SweepOverdue flips SENT invoices past their due date to OVERDUE.
func (s *Service) SweepOverdue(ctx context.Context) (int, error) {
	now := s.clk.Now()

	var due []invoicedomain.Invoice
	if err := s.db.WithContext(ctx).
		Where("status = ? AND due_at IS NOT NULL AND due_at < ?", invoicedomain.InvoiceStatusSent, now).
		Find(&due).Error; err != nil {
		return 0, err
	}

	updated := 0
	for i := range due {
		invoice := &due[i]
		invoice.Status = invoicedomain.InvoiceStatusOverdue
		invoice.UpdatedAt = now
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Omit("Items").Save(invoice).Error; err != nil {
				return err
			}
			return s.outbox.PublishTx(ctx, tx, events.Event{
				OrgID:     invoice.OrgID,
				Type:      events.EventInvoiceOverdue,
				Payload:   s.invoicePayload(invoice).ToMap(),
				DedupeKey: fmt.Sprintf("invoice.overdue:%s", invoice.ID),
			})
		})
		if err != nil {
			s.log.Warn("overdue sweep failed for invoice",
				zap.String("invoice_id", invoice.ID.String()),
				zap.Error(err),
			)
			continue
		}
		updated++
	}
	return updated, nil
}

// nextInvoiceNumber increments the per-organization sequence inside the
// surrounding transaction and formats the prefixed number.
func (s *Service) nextInvoiceNumber(ctx context.Context, tx *gorm.DB, orgID snowflake.ID, prefix string) (string, error) {
	now := s.clk.Now()
	if err := tx.WithContext(ctx).Exec(
		`INSERT INTO invoice_sequences (org_id, next_value, updated_at)
		 VALUES (?, 2, ?)
		 ON CONFLICT (org_id) DO UPDATE SET next_value = invoice_sequences.next_value + 1, updated_at = ?`,
		orgID, now, now,
	).Error; err != nil {
		return "", err
	}

	var next int64
	if err := tx.WithContext(ctx).Raw(
		`SELECT next_value FROM invoice_sequences WHERE org_id = ?`, orgID,
	).Scan(&next).Error; err != nil {
		return "", err
	}

	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "INV-"
	}
	return fmt.Sprintf("%s%04d", prefix, next-1), nil
}

func (s *Service) invoicePayload(invoice *invoicedomain.Invoice) events.InvoicePayload {
	return events.InvoicePayload{
		InvoiceID:     invoice.ID.String(),
		InvoiceNumber: invoice.InvoiceNumber,
		ContactID:     invoice.ContactID.String(),
		Currency:      invoice.Currency,
		TotalAmount:   invoice.TotalAmount,
	}
}
