package domain

import (
	"fmt"
	"time"
)

// SnapshotSchema marks the persisted layout. Bump it when the record shapes
// change incompatibly.
const SnapshotSchema = "stockledger/v1"

// Snapshot is the full ledger state as plain arrays of entity records.
type Snapshot struct {
	Schema         string          `json:"schema"`
	TakenAt        time.Time       `json:"taken_at"`
	Products       []Product       `json:"products"`
	Locations      []Location      `json:"locations"`
	LocationStocks []LocationStock `json:"location_stocks"`
	Orders         []Order         `json:"orders"`
	PurchaseOrders []PurchaseOrder `json:"purchase_orders"`
	Returns        []Return        `json:"returns"`
	Suppliers      []Supplier      `json:"suppliers"`
	Activities     []Activity      `json:"activities"`
	Notifications  []Notification  `json:"notifications"`
	Tasks          []Task          `json:"tasks"`

	DismissedInsights []string `json:"dismissed_insights,omitempty"`
}

// CheckSchema rejects snapshots written by an incompatible version.
func (s *Snapshot) CheckSchema() error {
	if s.Schema != SnapshotSchema {
		return fmt.Errorf("unsupported snapshot schema %q (want %q)", s.Schema, SnapshotSchema)
	}
	return nil
}

// ProductByID is a linear lookup helper for read-only consumers.
func (s *Snapshot) ProductByID(id string) (Product, bool) {
	for _, p := range s.Products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

// PartitionSum returns the total quantity recorded across locations for a
// product.
func (s *Snapshot) PartitionSum(productID string) int {
	sum := 0
	for _, ls := range s.LocationStocks {
		if ls.ProductID == productID {
			sum += ls.Quantity
		}
	}
	return sum
}
