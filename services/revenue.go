package services

import (
	"context"
	"time"

	"vetclinic-backend/models"

	"github.com/shopspring/decimal"
)

type MonthlyRevenue struct {
	Month   int             `json:"month"`
	Revenue decimal.Decimal `json:"revenue"`
}

// monthOf extracts the calendar month of a timestamp column for the current dialect.
func (s *InvoiceService) monthOf(column string) string {
	if s.db.Dialector.Name() == "sqlite" {
		return "CAST(strftime('%m', " + column + ") AS INTEGER)"
	}
	return "CAST(EXTRACT(MONTH FROM " + column + ") AS INTEGER)"
}

// RevenueByMonth sums the totals of active paid invoices by month of their
// invoice date. All twelve months are returned, empty ones as zero.
func (s *InvoiceService) RevenueByMonth(ctx context.Context, year int) ([]MonthlyRevenue, error) {
	if year < 1 || year > 9999 {
		return nil, Invalid("year must be between 1 and 9999")
	}
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)

	var rows []MonthlyRevenue
	err := s.db.WithContext(ctx).
		Model(&models.Invoice{}).
		Scopes(models.ActiveOnly).
		Select(s.monthOf("invoice_date")+" AS month, SUM(total) AS revenue").
		Where("payment_status = ?", models.PaymentPaid).
		Where("invoice_date >= ? AND invoice_date < ?", start, end).
		Group("month").
		Order("month").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]MonthlyRevenue, 12)
	for i := range out {
		out[i] = MonthlyRevenue{Month: i + 1, Revenue: decimal.Zero}
	}
	for _, r := range rows {
		if r.Month >= 1 && r.Month <= 12 {
			out[r.Month-1].Revenue = r.Revenue.Round(2)
		}
	}
	return out, nil
}
