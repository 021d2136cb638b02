package export

import (
	"context"
	"fmt"
	"time"

	"github.com/smallbiznis/faktura/internal/orgcontext"
	"github.com/xuri/excelize/v2"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const sheetName = "Invoices"

// registerRow is the flattened projection written to the workbook. Contact
// names are joined in so the register reads without a second lookup.
type registerRow struct {
	InvoiceNumber  string
	ContactName    string
	Status         string
	Currency       string
	SubtotalAmount int64
	TaxAmount      int64
	TotalAmount    int64
	IssuedAt       *time.Time
	DueAt          *time.Time
}

type Request struct {
	Status string
	From   *time.Time
	To     *time.Time
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger
}

type ServiceParam struct {
	fx.In

	DB  *gorm.DB
	Log *zap.Logger
}

func NewService(p ServiceParam) *Service {
	return &Service{db: p.DB, log: p.Log.Named("export.service")}
}

// InvoiceRegisterXLSX builds an XLSX workbook listing the organization's
// invoices. Amounts are written as decimal values in major units so the
// sheet sums correctly without post-processing.
func (s *Service) InvoiceRegisterXLSX(ctx context.Context, req Request) ([]byte, error) {
	orgID, ok := orgcontext.OrgID(ctx)
	if !ok {
		return nil, fmt.Errorf("missing organization scope")
	}
	start := time.Now()

	query := s.db.WithContext(ctx).
		Table("invoices").
		Select(`invoices.invoice_number,
			COALESCE(NULLIF(TRIM(contacts.company_name), ''), TRIM(contacts.first_name || ' ' || contacts.last_name)) AS contact_name,
			invoices.status,
			invoices.currency,
			invoices.subtotal_amount,
			invoices.tax_amount,
			invoices.total_amount,
			invoices.issued_at,
			invoices.due_at`).
		Joins("LEFT JOIN contacts ON contacts.id = invoices.contact_id").
		Where("invoices.org_id = ?", orgID).
		Order("invoices.created_at ASC")
	if req.Status != "" {
		query = query.Where("invoices.status = ?", req.Status)
	}
	if req.From != nil {
		query = query.Where("invoices.created_at >= ?", req.From.UTC())
	}
	// To is an instant: bare dates resolve to end of day at the HTTP layer.
	if req.To != nil {
		query = query.Where("invoices.created_at <= ?", req.To.UTC())
	}

	var rows []registerRow
	if err := query.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("query invoices: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	headers := []string{"Number", "Contact", "Status", "Currency", "Subtotal", "VAT", "Total", "Issued", "Due"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheetName, cell, h)
	}

	for i, row := range rows {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, i+2)
			_ = f.SetCellValue(sheetName, cell, v)
		}
		write(1, row.InvoiceNumber)
		write(2, row.ContactName)
		write(3, row.Status)
		write(4, row.Currency)
		write(5, float64(row.SubtotalAmount)/100)
		write(6, float64(row.TaxAmount)/100)
		write(7, float64(row.TotalAmount)/100)
		write(8, formatDate(row.IssuedAt))
		write(9, formatDate(row.DueAt))
	}

	_ = f.SetColWidth(sheetName, "A", "A", 14)
	_ = f.SetColWidth(sheetName, "B", "B", 32)
	_ = f.SetColWidth(sheetName, "C", "D", 12)
	_ = f.SetColWidth(sheetName, "E", "G", 14)
	_ = f.SetColWidth(sheetName, "H", "I", 12)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.log.Info("invoice register exported",
		zap.Int("rows", len(rows)),
		zap.Int64("elapsed_ms", time.Since(start).Milliseconds()),
	)
	return buf.Bytes(), nil
}

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format("02.01.2006")
}
