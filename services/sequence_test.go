package services

import (
	"testing"
	"time"

	"vetclinic-backend/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvoicePrefix(t *testing.T) {
	assert.Equal(t, "INV250314NO", InvoicePrefix(time.Date(2025, 3, 14, 23, 59, 0, 0, time.UTC)))
	assert.Equal(t, "INV260101NO", InvoicePrefix(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestSequenceStartsAtOne(t *testing.T) {
	env := newTestEnv(t)

	assert.Equal(t, "INV250314NO001", env.svc.Sequence.Next(env.ctx, env.clock.Now()))
}

func TestSequenceIncrementsWithinDay(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t, phone(1))

	var numbers []string
	for i := 0; i < 3; i++ {
		inv := env.invoice(t, c.ID, models.PaymentPending)
		numbers = append(numbers, inv.InvoiceNumber)
	}

	assert.Equal(t, []string{"INV250314NO001", "INV250314NO002", "INV250314NO003"}, numbers)
}

func TestSequenceCountsSoftDeletedInvoices(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t, phone(1))

	first := env.invoice(t, c.ID, models.PaymentPending)
	require.NoError(t, env.svc.Invoices.SoftDelete(env.ctx, first.ID))

	second := env.invoice(t, c.ID, models.PaymentPending)
	assert.Equal(t, "INV250314NO002", second.InvoiceNumber)
}

func TestSequenceRestartsEachDay(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t, phone(1))

	env.invoice(t, c.ID, models.PaymentPending)
	env.invoice(t, c.ID, models.PaymentPending)

	env.clock.Advance(24 * time.Hour)
	next := env.invoice(t, c.ID, models.PaymentPending)
	assert.Equal(t, "INV250315NO001", next.InvoiceNumber)
}

func TestSequenceResetsOnUnparseableNumber(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t, phone(1))

	for _, number := range []string{"INV250314NOabc", "LEGACY-17"} {
		env.tick()
		legacy := models.Invoice{
			Base:          models.Base{CreatedAt: env.clock.Now(), UpdatedAt: env.clock.Now()},
			InvoiceNumber: number,
			ClientID:      c.ID,
			InvoiceDate:   env.clock.Now(),
			PaymentStatus: models.PaymentPending,
		}
		require.NoError(t, env.db.Create(&legacy).Error)

		assert.Equal(t, "INV250314NO001", env.svc.Sequence.Next(env.ctx, env.clock.Now()), number)
	}
}

func TestCreateGivesUpWhenNumberStaysTaken(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t, phone(1))

	// Created yesterday, so the generator never sees it and keeps offering 001.
	stale := models.Invoice{
		Base:          models.Base{CreatedAt: env.clock.Now().Add(-24 * time.Hour)},
		InvoiceNumber: "INV250314NO001",
		ClientID:      c.ID,
		PaymentStatus: models.PaymentPending,
	}
	require.NoError(t, env.db.Create(&stale).Error)

	_, err := env.svc.Invoices.Create(env.ctx, CreateInvoiceInput{ClientID: c.ID})
	require.Error(t, err)
	assert.True(t, isDuplicateKey(err))

	var n int64
	require.NoError(t, env.db.Model(&models.Invoice{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestCreateInvoiceDefaults(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t, phone(1))

	inv, err := env.svc.Invoices.Create(env.ctx, CreateInvoiceInput{ClientID: c.ID, Notes: "  annual check  "})
	require.NoError(t, err)

	assert.Equal(t, models.PaymentPending, inv.PaymentStatus)
	assert.Equal(t, models.StatusActive, inv.Status)
	assert.True(t, inv.Subtotal.IsZero())
	assert.True(t, inv.Total.IsZero())
	assert.Equal(t, "annual check", inv.Notes)
	assert.Equal(t, env.clock.Now(), inv.InvoiceDate)
}

func TestCreateInvoiceRejectsBadInput(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t, phone(1))

	_, err := env.svc.Invoices.Create(env.ctx, CreateInvoiceInput{ClientID: "3f1e1c52-0000-4000-8000-000000000000"})
	assert.ErrorIs(t, err, ErrNotFound)

	d := decimal.NewFromInt(101)
	_, err = env.svc.Invoices.Create(env.ctx, CreateInvoiceInput{ClientID: c.ID, DiscountPercent: &d})
	assert.ErrorIs(t, err, ErrValidation)
}
