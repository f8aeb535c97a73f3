package models

import (
	"sort"
	"time"
)

// Document is a model that can be hard-deleted into the audit log and
// re-inserted from its snapshot.
type Document interface {
	GetID() string
	GetStatus() RecordStatus
	MarkRestored(at time.Time, by string)
}

// Collection describes a hard-deletable table.
type Collection struct {
	Name string
	New  func() Document
	// UniqueField is the column that must be free before a snapshot can be
	// re-inserted; empty when the table has no business-unique column.
	UniqueField string
	UniqueLabel string
	// HasRelationships marks tables that other documents reference by id.
	HasRelationships bool
	// SecretFields are snapshot columns kept for restore but masked whenever an
	// audit entry is shown.
	SecretFields []string
}

var Collections = map[string]Collection{
	"users": {
		Name:             "users",
		New:              func() Document { return &User{} },
		UniqueField:      "email",
		UniqueLabel:      "Email",
		HasRelationships: true,
		SecretFields:     []string{"password"},
	},
	"clients": {
		Name:             "clients",
		New:              func() Document { return &Client{} },
		UniqueField:      "phone_number",
		UniqueLabel:      "Phone number",
		HasRelationships: true,
	},
	"pets": {
		Name:             "pets",
		New:              func() Document { return &Pet{} },
		HasRelationships: true,
	},
	"services": {
		Name: "services",
		New:  func() Document { return &Service{} },
	},
	"products": {
		Name: "products",
		New:  func() Document { return &Product{} },
	},
	"invoices": {
		Name:        "invoices",
		New:         func() Document { return &Invoice{} },
		UniqueField: "invoice_number",
		UniqueLabel: "Invoice number",
	},
	"invoice_items": {
		Name: "invoice_items",
		New:  func() Document { return &InvoiceItem{} },
	},
}

func LookupCollection(name string) (Collection, bool) {
	c, ok := Collections[name]
	return c, ok
}

// CollectionNames returns the hard-deletable table names in sorted order.
func CollectionNames() []string {
	names := make([]string, 0, len(Collections))
	for n := range Collections {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
