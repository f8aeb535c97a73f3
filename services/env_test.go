package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"vetclinic-backend/clock"
	"vetclinic-backend/database"
	"vetclinic-backend/metrics"
	"vetclinic-backend/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type testEnv struct {
	ctx   context.Context
	db    *gorm.DB
	clock *clock.FakeClock
	svc   *Services
	admin models.Actor
	vet   models.Actor
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.Open(sqlite.Open(":memory:"), zap.NewNop(), gormlogger.Silent)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.Migrate(db))

	clk := clock.NewFakeClock(time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC))
	return &testEnv{
		ctx:   context.Background(),
		db:    db,
		clock: clk,
		svc:   New(db, clk, zap.NewNop(), metrics.New("test")),
		admin: models.Actor{ID: "7b1c6a52-8f55-4c1e-9a8e-0d7e2d7b9a10", Email: "admin@vetclinic.test", Role: models.RoleAdmin},
		vet:   models.Actor{ID: "0f0a8a4e-2a8b-4bb0-8f0e-31a2b3c4d5e6", Email: "vet@vetclinic.test", Role: models.RoleVet},
	}
}

func (e *testEnv) tick() {
	e.clock.Advance(time.Minute)
}

func (e *testEnv) client(t *testing.T, phone string) *models.Client {
	t.Helper()
	c := &models.Client{Name: "Jane Doe", Gender: models.GenderFemale, PhoneNumber: phone, OtherContactInfo: "jane@example.com"}
	c.CreatedAt = e.clock.Now()
	c.UpdatedAt = e.clock.Now()
	require.NoError(t, e.db.Create(c).Error)
	return c
}

func (e *testEnv) product(t *testing.T, name string, price string, stock int) *models.Product {
	t.Helper()
	p := &models.Product{Name: name, Price: decimal.RequireFromString(price), StockQuantity: stock}
	require.NoError(t, e.db.Create(p).Error)
	return p
}

func (e *testEnv) service(t *testing.T, name string, price string) *models.Service {
	t.Helper()
	s := &models.Service{Name: name, Price: decimal.RequireFromString(price), DurationMinutes: 30}
	require.NoError(t, e.db.Create(s).Error)
	return s
}

func (e *testEnv) invoice(t *testing.T, clientID string, status models.PaymentStatus) *models.Invoice {
	t.Helper()
	e.tick()
	inv, err := e.svc.Invoices.Create(e.ctx, CreateInvoiceInput{ClientID: clientID, PaymentStatus: &status})
	require.NoError(t, err)
	return inv
}

func (e *testEnv) stock(t *testing.T, productID string) int {
	t.Helper()
	var p models.Product
	require.NoError(t, e.db.Where("id = ?", productID).Take(&p).Error)
	return p.StockQuantity
}

func (e *testEnv) reloadInvoice(t *testing.T, id string) models.Invoice {
	t.Helper()
	var inv models.Invoice
	require.NoError(t, e.db.Where("id = ?", id).Take(&inv).Error)
	return inv
}

func ptr[T any](v T) *T {
	return &v
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func phone(n int) string {
	return fmt.Sprintf("+4366000%04d", n)
}
