package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics exposes the billing and audit counters scraped from /metrics.
type Metrics struct {
	Registry *prometheus.Registry

	invoicesCreated    prometheus.Counter
	itemWrites         *prometheus.CounterVec
	stockDecrements    *prometheus.CounterVec
	hardDeletes        *prometheus.CounterVec
	restores           *prometheus.CounterVec
	auditWriteFailures prometheus.Counter
}

// New registers the collectors on a fresh registry, so tests can build as many
// instances as they like.
func New(namespace string) *Metrics {
	if namespace == "" {
		namespace = "vetclinic"
	}
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		invoicesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invoices_created_total",
			Help:      "Invoices created with a generated invoice number.",
		}),
		itemWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invoice_item_writes_total",
			Help:      "Invoice item writes by operation.",
		}, []string{"op"}),
		stockDecrements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_decrements_total",
			Help:      "Product stock decrements by trigger.",
		}, []string{"reason"}),
		hardDeletes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hard_deletes_total",
			Help:      "Hard deletions by collection.",
		}, []string{"collection"}),
		restores: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "restores_total",
			Help:      "Restore attempts by collection and outcome.",
		}, []string{"collection", "outcome"}),
		auditWriteFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audit_write_failures_total",
			Help:      "Audit log writes that failed and aborted a deletion.",
		}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.invoicesCreated,
		m.itemWrites,
		m.stockDecrements,
		m.hardDeletes,
		m.restores,
		m.auditWriteFailures,
	)
	return m
}

// The recorders are nil-safe so services can run without metrics.

func (m *Metrics) InvoiceCreated() {
	if m != nil {
		m.invoicesCreated.Inc()
	}
}

func (m *Metrics) ItemWritten(op string) {
	if m != nil {
		m.itemWrites.WithLabelValues(op).Inc()
	}
}

func (m *Metrics) StockDecremented(reason string, qty int) {
	if m != nil {
		m.stockDecrements.WithLabelValues(reason).Add(float64(qty))
	}
}

func (m *Metrics) HardDeleted(collection string) {
	if m != nil {
		m.hardDeletes.WithLabelValues(collection).Inc()
	}
}

func (m *Metrics) Restore(collection, outcome string) {
	if m != nil {
		m.restores.WithLabelValues(collection, outcome).Inc()
	}
}

func (m *Metrics) AuditWriteFailed() {
	if m != nil {
		m.auditWriteFailures.Inc()
	}
}
