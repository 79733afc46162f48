package ledger

import (
	"fmt"
	"strings"

	"github.com/andresuchdata/stockledger/internal/domain"
	"github.com/rs/zerolog/log"
)

func validateProduct(op string, p domain.Product) error {
	switch {
	case strings.TrimSpace(p.Name) == "":
		return domain.NewLedgerError(op, "product", p.ID, domain.ErrInvalidInput, "name is required")
	case p.Stock < 0:
		return domain.NewLedgerError(op, "product", p.ID, domain.ErrInvalidQuantity, "stock must not be negative")
	case p.ReorderLevel < 0:
		return domain.NewLedgerError(op, "product", p.ID, domain.ErrInvalidQuantity, "reorder level must not be negative")
	case p.Price.IsNegative() || p.Cost.IsNegative():
		return domain.NewLedgerError(op, "product", p.ID, domain.ErrInvalidInput, "price and cost must not be negative")
	}
	return nil
}

func (l *Ledger) skuTaken(sku, exceptID string) bool {
	if sku == "" {
		return false
	}
	for _, p := range l.products {
		if p.ID != exceptID && strings.EqualFold(p.SKU, sku) {
			return true
		}
	}
	return false
}

// AddProduct registers a product. Initial stock is credited to the first
// location; an empty cost defaults to 60% of the price.
func (l *Ledger) AddProduct(p domain.Product) (domain.Product, error) {
	const op = "add_product"
	var out domain.Product

	err := l.mutate(op, func(tx *txn) error {
		if p.ID == "" {
			p.ID = shortID()
		}
		if err := validateProduct(op, p); err != nil {
			return err
		}
		if l.productIndex(p.ID) >= 0 {
			return domain.NewLedgerError(op, "product", p.ID, domain.ErrDuplicateOperation, "id already exists")
		}
		if l.skuTaken(p.SKU, p.ID) {
			return domain.NewLedgerError(op, "product", p.ID, domain.ErrDuplicateOperation, "sku "+p.SKU+" already exists")
		}

		if p.Cost.IsZero() {
			p.Cost = p.Price.Mul(domain.DefaultCostRatio).Round(2)
		}
		if p.LastRestockDate == nil {
			today := tx.today()
			p.LastRestockDate = &today
		}
		p.Status = domain.DeriveStatus(p.Stock, p.ReorderLevel)

		l.products = append(l.products, p)
		if p.Stock > 0 {
			l.credit(p.ID, l.firstLocation(), p.Stock)
		}

		tx.activity(domain.ActivityStock, fmt.Sprintf("Product added: %s", p.Name))
		tx.notify("New Product", fmt.Sprintf("%s added to inventory.", p.Name), domain.NotificationSuccess, domain.LinkProducts)
		out = p
		return nil
	})
	return out, err
}

// UpdateProduct replaces a product's attributes. When the new stock is below
// the partition total, the partition is trimmed largest location first so it
// never exceeds the aggregate.
func (l *Ledger) UpdateProduct(p domain.Product) (domain.Product, error) {
	const op = "update_product"
	var out domain.Product

	err := l.mutate(op, func(tx *txn) error {
		idx := l.productIndex(p.ID)
		if idx < 0 {
			return domain.Unknown(op, "product", p.ID)
		}
		if err := validateProduct(op, p); err != nil {
			return err
		}
		if l.skuTaken(p.SKU, p.ID) {
			return domain.NewLedgerError(op, "product", p.ID, domain.ErrDuplicateOperation, "sku "+p.SKU+" already exists")
		}

		current := l.products[idx]
		if p.Cost.IsZero() {
			p.Cost = current.Cost
		}
		if p.LastRestockDate == nil {
			p.LastRestockDate = current.LastRestockDate
		}
		p.Status = current.Status
		l.products[idx] = p
		prev := l.setStock(idx, p.Stock)

		if excess := l.partitionSum(p.ID) - p.Stock; excess > 0 {
			l.deductLargestFirst(p.ID, excess)
		}

		tx.activity(domain.ActivityStock, fmt.Sprintf("Product updated: %s", p.Name))
		tx.alertOnWorsening(l.products[idx], prev)
		out = l.products[idx]
		return nil
	})
	return out, err
}

// DeleteProduct removes the product and its partition entries. Historical
// orders keep their lines.
func (l *Ledger) DeleteProduct(id string) error {
	const op = "delete_product"
	return l.mutate(op, func(tx *txn) error {
		idx := l.productIndex(id)
		if idx < 0 {
			return domain.Unknown(op, "product", id)
		}
		name := l.products[idx].Name
		l.products = append(l.products[:idx], l.products[idx+1:]...)

		kept := l.stocks[:0]
		for _, ls := range l.stocks {
			if ls.ProductID != id {
				kept = append(kept, ls)
			}
		}
		l.stocks = kept

		tx.activity(domain.ActivitySystem, fmt.Sprintf("Product removed: %s", name))
		return nil
	})
}

func validateLocation(op string, loc domain.Location) error {
	switch {
	case strings.TrimSpace(loc.Name) == "":
		return domain.NewLedgerError(op, "location", loc.ID, domain.ErrInvalidInput, "name is required")
	case !loc.Type.Valid():
		return domain.NewLedgerError(op, "location", loc.ID, domain.ErrInvalidInput, fmt.Sprintf("unknown location type %q", loc.Type))
	case loc.Capacity != nil && *loc.Capacity < 0:
		return domain.NewLedgerError(op, "location", loc.ID, domain.ErrInvalidQuantity, "capacity must not be negative")
	}
	return nil
}

func (l *Ledger) AddLocation(loc domain.Location) (domain.Location, error) {
	const op = "add_location"
	var out domain.Location

	err := l.mutate(op, func(tx *txn) error {
		if loc.ID == "" {
			loc.ID = shortID()
		}
		if loc.Type == "" {
			loc.Type = domain.LocationWarehouse
		}
		if err := validateLocation(op, loc); err != nil {
			return err
		}
		if l.locationIndex(loc.ID) >= 0 {
			return domain.NewLedgerError(op, "location", loc.ID, domain.ErrDuplicateOperation, "id already exists")
		}
		l.locations = append(l.locations, loc)
		tx.activity(domain.ActivitySystem, fmt.Sprintf("New Location added: %s", loc.Name))
		out = loc
		return nil
	})
	return out, err
}

func (l *Ledger) UpdateLocation(loc domain.Location) (domain.Location, error) {
	const op = "update_location"
	var out domain.Location

	err := l.mutate(op, func(tx *txn) error {
		idx := l.locationIndex(loc.ID)
		if idx < 0 {
			return domain.Unknown(op, "location", loc.ID)
		}
		if loc.Type == "" {
			loc.Type = l.locations[idx].Type
		}
		if err := validateLocation(op, loc); err != nil {
			return err
		}
		l.locations[idx] = loc
		tx.activity(domain.ActivitySystem, fmt.Sprintf("Location updated: %s", loc.Name))
		out = loc
		return nil
	})
	return out, err
}

// DeleteLocation removes a location and drops its partition entries. The
// aggregate stock is untouched, so dropped units become unassigned.
func (l *Ledger) DeleteLocation(id string) error {
	const op = "delete_location"
	return l.mutate(op, func(tx *txn) error {
		idx := l.locationIndex(id)
		if idx < 0 {
			return domain.Unknown(op, "location", id)
		}
		name := l.locations[idx].Name
		l.locations = append(l.locations[:idx], l.locations[idx+1:]...)

		dropped := 0
		kept := l.stocks[:0]
		for _, ls := range l.stocks {
			if ls.LocationID == id {
				dropped += ls.Quantity
				continue
			}
			kept = append(kept, ls)
		}
		l.stocks = kept

		tx.activity(domain.ActivitySystem, fmt.Sprintf("Location removed: %s", name))
		if dropped > 0 {
			log.Warn().Str("location_id", id).Int("units", dropped).Msg("location removed with stock still assigned")
			tx.notify("Location Removed",
				fmt.Sprintf("%d units held at %s are no longer assigned to a location.", dropped, name),
				domain.NotificationWarning, domain.LinkWarehouses)
		}
		return nil
	})
}

func (l *Ledger) AddSupplier(s domain.Supplier) (domain.Supplier, error) {
	const op = "add_supplier"
	var out domain.Supplier

	err := l.mutate(op, func(tx *txn) error {
		if s.ID == "" {
			s.ID = shortID()
		}
		if strings.TrimSpace(s.Name) == "" {
			return domain.NewLedgerError(op, "supplier", s.ID, domain.ErrInvalidInput, "name is required")
		}
		if l.supplierIndex(s.ID) >= 0 {
			return domain.NewLedgerError(op, "supplier", s.ID, domain.ErrDuplicateOperation, "id already exists")
		}
		l.suppliers = append(l.suppliers, s)
		tx.activity(domain.ActivitySystem, fmt.Sprintf("New Supplier added: %s", s.Name))
		out = s
		return nil
	})
	return out, err
}

func (l *Ledger) UpdateSupplier(s domain.Supplier) (domain.Supplier, error) {
	const op = "update_supplier"
	var out domain.Supplier

	err := l.mutate(op, func(tx *txn) error {
		idx := l.supplierIndex(s.ID)
		if idx < 0 {
			return domain.Unknown(op, "supplier", s.ID)
		}
		if strings.TrimSpace(s.Name) == "" {
			return domain.NewLedgerError(op, "supplier", s.ID, domain.ErrInvalidInput, "name is required")
		}
		l.suppliers[idx] = s
		tx.activity(domain.ActivitySystem, fmt.Sprintf("Supplier updated: %s", s.Name))
		out = s
		return nil
	})
	return out, err
}

// DeleteSupplier removes the contact record. Purchase orders keep the
// supplier name they were raised with.
func (l *Ledger) DeleteSupplier(id string) error {
	const op = "delete_supplier"
	return l.mutate(op, func(tx *txn) error {
		idx := l.supplierIndex(id)
		if idx < 0 {
			return domain.Unknown(op, "supplier", id)
		}
		name := l.suppliers[idx].Name
		l.suppliers = append(l.suppliers[:idx], l.suppliers[idx+1:]...)
		tx.activity(domain.ActivitySystem, fmt.Sprintf("Supplier removed: %s", name))
		return nil
	})
}
