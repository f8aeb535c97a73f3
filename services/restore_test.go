package services

import (
	"testing"

	"vetclinic-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// withoutRestoreFields drops the columns a restore is allowed to change.
func withoutRestoreFields(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		switch k {
		case "updated_at", "restored_at", "restored_by":
			continue
		}
		out[k] = v
	}
	return out
}

func TestRestoreRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	product := env.product(t, "Ear drops", "12.5", 7)
	product.SKU = ptr("EAR-001")
	require.NoError(t, env.db.Save(product).Error)

	var before models.Product
	require.NoError(t, env.db.Where("id = ?", product.ID).Take(&before).Error)
	beforeSnap, err := Snapshot(env.ctx, env.db, &before)
	require.NoError(t, err)

	res, err := env.svc.Audit.HardDelete(env.ctx, env.admin, RequestMeta{}, "products", product.ID, "")
	require.NoError(t, err)

	ok, reason, err := env.svc.Restore.CanRestore(env.ctx, res.AuditLogID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, reason)

	env.tick()
	out, err := env.svc.Restore.Restore(env.ctx, res.AuditLogID, env.admin, RequestMeta{IP: "10.0.0.9"})
	require.NoError(t, err)
	assert.Equal(t, product.ID, out.DocumentID)

	var after models.Product
	require.NoError(t, env.db.Where("id = ?", product.ID).Take(&after).Error)
	afterSnap, err := Snapshot(env.ctx, env.db, &after)
	require.NoError(t, err)

	assert.Equal(t, withoutRestoreFields(beforeSnap), withoutRestoreFields(afterSnap))
	require.NotNil(t, after.RestoredAt)
	assert.True(t, after.RestoredAt.Equal(env.clock.Now()))
	require.NotNil(t, after.RestoredBy)
	assert.Equal(t, env.admin.ID, *after.RestoredBy)

	var restoration models.AuditLog
	require.NoError(t, env.db.Where("id = ?", out.RestorationLogID).Take(&restoration).Error)
	assert.Equal(t, models.ActionDocumentRestoration, restoration.Action)
	assert.Equal(t, "products", restoration.CollectionName)
	assert.Equal(t, product.ID, restoration.DocumentID)
	assert.Equal(t, res.AuditLogID, restoration.Metadata["audit_log_id"])
	assert.Equal(t, env.admin.Email, restoration.Metadata["original_deleted_by"])
	assert.NotEmpty(t, restoration.Metadata["original_deletion_date"])

	// The original entry is untouched and the document now exists again.
	ok, reason, err = env.svc.Restore.CanRestore(env.ctx, res.AuditLogID)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "A document with this ID already exists", reason)
}

func TestRestoredUserKeepsPassword(t *testing.T) {
	env := newTestEnv(t)
	user := models.User{FirstName: "Ana", LastName: "Vet", Email: "ana@vetclinic.test", Role: models.RoleVet}
	require.NoError(t, user.SetPassword("s3cret-pass"))
	require.NoError(t, env.db.Create(&user).Error)

	res, err := env.svc.Audit.HardDelete(env.ctx, env.admin, RequestMeta{}, "users", user.ID, "")
	require.NoError(t, err)

	// The hash is stored for restore but never shown.
	entry, err := env.svc.Audit.GetEntry(env.ctx, res.AuditLogID)
	require.NoError(t, err)
	shown := Masked(*entry)
	assert.Equal(t, "****", shown.DocumentSnapshot["password"])
	assert.Equal(t, "ana@vetclinic.test", shown.DocumentSnapshot["email"])
	assert.Equal(t, string(user.Password), entry.DocumentSnapshot["password"])

	_, err = env.svc.Restore.Restore(env.ctx, res.AuditLogID, env.admin, RequestMeta{})
	require.NoError(t, err)

	var restored models.User
	require.NoError(t, env.db.Where("id = ?", user.ID).Take(&restored).Error)
	assert.NoError(t, restored.ComparePassword("s3cret-pass"))
	assert.Equal(t, models.RoleVet, restored.Role)
}

func TestRestoreBlockedByInvoiceNumber(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t, phone(1))
	original := env.invoice(t, c.ID, models.PaymentPending)
	require.Equal(t, "INV250314NO001", original.InvoiceNumber)

	res, err := env.svc.Audit.HardDelete(env.ctx, env.admin, RequestMeta{}, "invoices", original.ID, "")
	require.NoError(t, err)

	// With the original gone the day restarts and the number is handed out again.
	replacement := env.invoice(t, c.ID, models.PaymentPending)
	require.Equal(t, original.InvoiceNumber, replacement.InvoiceNumber)

	ok, reason, err := env.svc.Restore.CanRestore(env.ctx, res.AuditLogID)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "Invoice number INV250314NO001 is already in use", reason)

	_, err = env.svc.Restore.Restore(env.ctx, res.AuditLogID, env.admin, RequestMeta{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConflict)
	assert.EqualError(t, err, reason)

	var invoices, restorations int64
	require.NoError(t, env.db.Model(&models.Invoice{}).Count(&invoices).Error)
	require.NoError(t, env.db.Model(&models.AuditLog{}).Where("action = ?", models.ActionDocumentRestoration).Count(&restorations).Error)
	assert.EqualValues(t, 1, invoices)
	assert.Zero(t, restorations)
}

func TestRestoreBlockedByPhoneAndEmail(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t, phone(1))
	user := models.User{FirstName: "Max", LastName: "Admin", Email: "max@vetclinic.test", Role: models.RoleAdmin, Password: []byte("x")}
	require.NoError(t, env.db.Create(&user).Error)

	clientEntry, err := env.svc.Audit.HardDelete(env.ctx, env.admin, RequestMeta{}, "clients", c.ID, "")
	require.NoError(t, err)
	userEntry, err := env.svc.Audit.HardDelete(env.ctx, env.admin, RequestMeta{}, "users", user.ID, "")
	require.NoError(t, err)

	env.client(t, phone(1))
	require.NoError(t, env.db.Create(&models.User{FirstName: "Max", LastName: "Other", Email: "max@vetclinic.test", Role: models.RoleVet, Password: []byte("y")}).Error)

	ok, reason, err := env.svc.Restore.CanRestore(env.ctx, clientEntry.AuditLogID)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "Phone number "+phone(1)+" is already in use", reason)

	ok, reason, err = env.svc.Restore.CanRestore(env.ctx, userEntry.AuditLogID)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "Email max@vetclinic.test is already in use", reason)
}

func TestRestoreReportsUniqueFieldTakenDuringInsert(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t, phone(1))
	res, err := env.svc.Audit.HardDelete(env.ctx, env.admin, RequestMeta{}, "clients", c.ID, "")
	require.NoError(t, err)

	// Another client takes the phone number after the check passed but before
	// the restored row is inserted.
	taken := false
	require.NoError(t, env.db.Callback().Create().Before("gorm:begin_transaction").Register("test:take_phone", func(tx *gorm.DB) {
		restored, ok := tx.Statement.Dest.(*models.Client)
		if !ok || restored.ID != c.ID || taken {
			return
		}
		taken = true
		env.client(t, phone(1))
	}))

	_, err = env.svc.Restore.Restore(env.ctx, res.AuditLogID, env.admin, RequestMeta{})
	require.True(t, taken)
	assert.ErrorIs(t, err, ErrConflict)
	assert.EqualError(t, err, "Phone number "+phone(1)+" is already in use")

	var restorations int64
	require.NoError(t, env.db.Model(&models.AuditLog{}).Where("action = ?", models.ActionDocumentRestoration).Count(&restorations).Error)
	assert.Zero(t, restorations)
}

func TestRestoreUnknownEntries(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t, phone(1))

	ok, reason, err := env.svc.Restore.CanRestore(env.ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "Audit log entry not found", reason)

	_, err = env.svc.Restore.Restore(env.ctx, "missing", env.admin, RequestMeta{})
	assert.ErrorIs(t, err, ErrConflict)

	// A restoration entry is not itself restorable.
	res, err := env.svc.Audit.HardDelete(env.ctx, env.admin, RequestMeta{}, "clients", c.ID, "")
	require.NoError(t, err)
	out, err := env.svc.Restore.Restore(env.ctx, res.AuditLogID, env.admin, RequestMeta{})
	require.NoError(t, err)
	ok, reason, err = env.svc.Restore.CanRestore(env.ctx, out.RestorationLogID)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "Audit log entry not found", reason)

	_, err = env.svc.Restore.Restore(env.ctx, res.AuditLogID, env.vet, RequestMeta{})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestRestoreItemRecomputesInvoice(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t, phone(1))
	svc := env.service(t, "Surgery", "450")
	inv := env.invoice(t, c.ID, models.PaymentPending)
	item, err := env.svc.Items.Create(env.ctx, CreateItemInput{InvoiceID: inv.ID, ItemType: models.ItemService, ServiceID: &svc.ID, DiscountPercent: dec("10")})
	require.NoError(t, err)

	res, err := env.svc.Audit.HardDelete(env.ctx, env.admin, RequestMeta{}, "invoice_items", item.ID, "")
	require.NoError(t, err)
	require.Equal(t, "0.00", env.reloadInvoice(t, inv.ID).Subtotal.StringFixed(2))

	_, err = env.svc.Restore.Restore(env.ctx, res.AuditLogID, env.admin, RequestMeta{})
	require.NoError(t, err)

	got := env.reloadInvoice(t, inv.ID)
	assert.Equal(t, "405.00", got.Subtotal.StringFixed(2))
	assert.Equal(t, "405.00", got.Total.StringFixed(2))
}
