package services

import (
	"testing"

	"vetclinic-backend/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvoiceTotalsScenario(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t, phone(1))
	consult := env.service(t, "Consultation", "100")

	inv := env.invoice(t, c.ID, models.PaymentPending)
	assert.Equal(t, "0.00", inv.Subtotal.StringFixed(2))
	assert.Equal(t, "0.00", inv.Total.StringFixed(2))

	item, err := env.svc.Items.Create(env.ctx, CreateItemInput{
		InvoiceID:       inv.ID,
		ItemType:        models.ItemService,
		ServiceID:       &consult.ID,
		UnitPrice:       dec("100"),
		Quantity:        ptr(2),
		DiscountPercent: dec("10"),
	})
	require.NoError(t, err)
	assert.Equal(t, "180.00", item.NetPrice.StringFixed(2))
	assert.Equal(t, "Consultation", item.ItemName)

	got := env.reloadInvoice(t, inv.ID)
	assert.Equal(t, "180.00", got.Subtotal.StringFixed(2))
	assert.Equal(t, "180.00", got.Total.StringFixed(2))

	updated, err := env.svc.Invoices.Update(env.ctx, inv.ID, UpdateInvoiceInput{DiscountPercent: dec("5")})
	require.NoError(t, err)
	assert.Equal(t, "180.00", updated.Subtotal.StringFixed(2))
	assert.Equal(t, "171.00", updated.Total.StringFixed(2))
	require.Len(t, updated.Items, 1)
}

func TestRecomputeIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t, phone(1))
	svc := env.service(t, "Vaccination", "45.50")
	inv := env.invoice(t, c.ID, models.PaymentPending)

	_, err := env.svc.Items.Create(env.ctx, CreateItemInput{InvoiceID: inv.ID, ItemType: models.ItemService, ServiceID: &svc.ID, Quantity: ptr(3), DiscountPercent: dec("7.5")})
	require.NoError(t, err)

	first, err := env.svc.Aggregator.Recompute(env.ctx, inv.ID)
	require.NoError(t, err)
	second, err := env.svc.Aggregator.Recompute(env.ctx, inv.ID)
	require.NoError(t, err)

	assert.True(t, first.Subtotal.Equal(second.Subtotal))
	assert.True(t, first.Total.Equal(second.Total))
	assert.Equal(t, "126.26", second.Subtotal.StringFixed(2))
}

func TestRecomputeMissingInvoiceIsNoop(t *testing.T) {
	env := newTestEnv(t)

	inv, err := env.svc.Aggregator.Recompute(env.ctx, "5a0c3c1e-0000-4000-8000-000000000000")
	assert.NoError(t, err)
	assert.Nil(t, inv)
}

func TestInactiveItemsAreExcluded(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t, phone(1))
	svc := env.service(t, "Grooming", "30")
	inv := env.invoice(t, c.ID, models.PaymentPending)

	keep, err := env.svc.Items.Create(env.ctx, CreateItemInput{InvoiceID: inv.ID, ItemType: models.ItemService, ServiceID: &svc.ID})
	require.NoError(t, err)
	env.tick()
	drop, err := env.svc.Items.Create(env.ctx, CreateItemInput{InvoiceID: inv.ID, ItemType: models.ItemService, ServiceID: &svc.ID, UnitPrice: dec("70")})
	require.NoError(t, err)
	assert.Equal(t, "100.00", env.reloadInvoice(t, inv.ID).Subtotal.StringFixed(2))

	require.NoError(t, env.svc.Items.Delete(env.ctx, drop.ID))

	got := env.reloadInvoice(t, inv.ID)
	assert.Equal(t, "30.00", got.Subtotal.StringFixed(2))
	assert.Equal(t, "30.00", got.Total.StringFixed(2))

	items, err := env.svc.Items.List(env.ctx, inv.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, keep.ID, items[0].ID)

	_, err = env.svc.Items.Get(env.ctx, drop.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestItemUpdateRepricesAndRecomputes(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t, phone(1))
	svc := env.service(t, "X-Ray", "80")
	inv := env.invoice(t, c.ID, models.PaymentPending)
	_, err := env.svc.Invoices.Update(env.ctx, inv.ID, UpdateInvoiceInput{DiscountPercent: dec("10")})
	require.NoError(t, err)

	item, err := env.svc.Items.Create(env.ctx, CreateItemInput{InvoiceID: inv.ID, ItemType: models.ItemService, ServiceID: &svc.ID})
	require.NoError(t, err)

	updated, err := env.svc.Items.Update(env.ctx, item.ID, UpdateItemInput{Quantity: ptr(3), DiscountPercent: dec("50")})
	require.NoError(t, err)
	assert.Equal(t, 3, updated.Quantity)
	assert.Equal(t, "120.00", updated.NetPrice.StringFixed(2))

	got := env.reloadInvoice(t, inv.ID)
	assert.Equal(t, "120.00", got.Subtotal.StringFixed(2))
	assert.Equal(t, "108.00", got.Total.StringFixed(2))
}

func TestClientSuppliedNetPriceIsIgnored(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t, phone(1))
	svc := env.service(t, "Dental", "60")
	inv := env.invoice(t, c.ID, models.PaymentPending)

	item, err := env.svc.Items.Create(env.ctx, CreateItemInput{InvoiceID: inv.ID, ItemType: models.ItemService, ServiceID: &svc.ID, NetPrice: dec("1")})
	require.NoError(t, err)
	assert.Equal(t, "60.00", item.NetPrice.StringFixed(2))

	updated, err := env.svc.Items.Update(env.ctx, item.ID, UpdateItemInput{NetPrice: dec("999")})
	require.NoError(t, err)
	assert.Equal(t, "60.00", updated.NetPrice.StringFixed(2))
	assert.Equal(t, "60.00", env.reloadInvoice(t, inv.ID).Subtotal.StringFixed(2))
}

func TestItemCreateValidation(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t, phone(1))
	svc := env.service(t, "Consultation", "50")
	product := env.product(t, "Dewormer", "12.00", 10)
	inv := env.invoice(t, c.ID, models.PaymentPending)

	tests := []struct {
		name string
		in   CreateItemInput
		want error
	}{
		{"missing invoice", CreateItemInput{InvoiceID: "5a0c3c1e-0000-4000-8000-000000000000", ItemType: models.ItemService, ServiceID: &svc.ID}, ErrNotFound},
		{"service without reference", CreateItemInput{InvoiceID: inv.ID, ItemType: models.ItemService}, ErrValidation},
		{"both references", CreateItemInput{InvoiceID: inv.ID, ItemType: models.ItemProduct, ProductID: &product.ID, ServiceID: &svc.ID}, ErrValidation},
		{"unknown product", CreateItemInput{InvoiceID: inv.ID, ItemType: models.ItemProduct, ProductID: ptr("5a0c3c1e-0000-4000-8000-000000000001")}, ErrValidation},
		{"negative price", CreateItemInput{InvoiceID: inv.ID, ItemType: models.ItemService, ServiceID: &svc.ID, UnitPrice: dec("-1")}, ErrValidation},
		{"zero quantity", CreateItemInput{InvoiceID: inv.ID, ItemType: models.ItemService, ServiceID: &svc.ID, Quantity: ptr(0)}, ErrValidation},
		{"discount over 100", CreateItemInput{InvoiceID: inv.ID, ItemType: models.ItemService, ServiceID: &svc.ID, DiscountPercent: dec("100.01")}, ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.Items.Create(env.ctx, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	items, err := env.svc.Items.List(env.ctx, inv.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.True(t, env.reloadInvoice(t, inv.ID).Subtotal.Equal(decimal.Zero))
}
