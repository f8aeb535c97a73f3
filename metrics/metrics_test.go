package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	m := New("test")

	m.InvoiceCreated()
	m.InvoiceCreated()
	m.StockDecremented("invoice_paid", 3)
	m.HardDeleted("clients")
	m.Restore("clients", "restored")
	m.AuditWriteFailed()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.invoicesCreated))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.stockDecrements.WithLabelValues("invoice_paid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.hardDeletes.WithLabelValues("clients")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.restores.WithLabelValues("clients", "restored")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.auditWriteFailures))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.InvoiceCreated()
		m.ItemWritten("create")
		m.StockDecremented("invoice_paid", 1)
		m.HardDeleted("users")
		m.Restore("users", "rejected")
		m.AuditWriteFailed()
	})
}
