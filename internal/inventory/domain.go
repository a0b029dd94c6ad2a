package inventory

import (
	"time"
)

// MovementType classifies a stock movement.
type MovementType string

const (
	MovementIn     MovementType = "in"
	MovementOut    MovementType = "out"
	MovementAdjust MovementType = "adjust"
)

// StockItem is one doll or accessory line Clowee keeps in stock. On-hand is
// never stored; it is the sum of the item's movements.
type StockItem struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	SKU       string    `json:"sku" db:"sku"`
	UnitCost  float64   `json:"unit_cost" db:"unit_cost"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// StockItemView decorates an item with its derived on-hand quantity.
type StockItemView struct {
	StockItem
	OnHand float64 `json:"on_hand"`
}

// Movement is one stock movement. Out and adjust-down movements carry
// negative quantities; the on-hand balance is the plain sum.
type Movement struct {
	ID           int64        `json:"id" db:"id"`
	ItemID       int64        `json:"item_id" db:"item_id"`
	MovementType MovementType `json:"movement_type" db:"movement_type"`
	Quantity     float64      `json:"quantity" db:"quantity"`
	Reference    string       `json:"reference" db:"reference"`
	MovementDate time.Time    `json:"movement_date" db:"movement_date"`
	CreatedBy    int64        `json:"created_by" db:"created_by"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
}

// StockOutEntry records prizes vended by a machine against a sale, so prize
// consumption is traceable back to stock.
type StockOutEntry struct {
	ID        int64     `json:"id" db:"id"`
	ItemID    int64     `json:"item_id" db:"item_id"`
	MachineID int64     `json:"machine_id" db:"machine_id"`
	SaleID    int64     `json:"sale_id" db:"sale_id"`
	Quantity  float64   `json:"quantity" db:"quantity"`
	OutDate   time.Time `json:"out_date" db:"out_date"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// CreateItemRequest registers a stock item.
type CreateItemRequest struct {
	Name     string  `json:"name" validate:"required,max=200"`
	SKU      string  `json:"sku" validate:"required,max=50"`
	UnitCost float64 `json:"unit_cost" validate:"gte=0"`
}

// UpdateItemRequest carries partial updates.
type UpdateItemRequest struct {
	Name     *string  `json:"name,omitempty" validate:"omitempty,max=200"`
	UnitCost *float64 `json:"unit_cost,omitempty" validate:"omitempty,gte=0"`
	IsActive *bool    `json:"is_active,omitempty"`
}

// AddMovementRequest posts a manual stock movement.
type AddMovementRequest struct {
	MovementType MovementType `json:"movement_type" validate:"required,oneof=in out adjust"`
	Quantity     float64      `json:"quantity" validate:"required"`
	Reference    string       `json:"reference" validate:"required,max=200"`
	MovementDate string       `json:"movement_date" validate:"required,datetime=2006-01-02"`
}

// RecordStockOutRequest links a sale's prize-out to a stock item.
type RecordStockOutRequest struct {
	ItemID    int64   `json:"item_id" validate:"required,gt=0"`
	MachineID int64   `json:"machine_id" validate:"required,gt=0"`
	SaleID    int64   `json:"sale_id" validate:"required,gt=0"`
	Quantity  float64 `json:"quantity" validate:"required,gt=0"`
	OutDate   string  `json:"out_date" validate:"required,datetime=2006-01-02"`
}
