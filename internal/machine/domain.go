package machine

import (
	"time"

	"github.com/clowee-erp/clowee-erp/internal/settlement"
)

// Machine is one claw machine installed at a franchise location. The initial
// counters are the meter values at installation time and act as the baseline
// for the first reading delta.
type Machine struct {
	ID                  int64     `json:"id" db:"id"`
	FranchiseID         int64     `json:"franchise_id" db:"franchise_id"`
	Name                string    `json:"name" db:"name"`
	Number              string    `json:"number" db:"number"`
	InstallationDate    time.Time `json:"installation_date" db:"installation_date"`
	InitialCoinCounter  float64   `json:"initial_coin_counter" db:"initial_coin_counter"`
	InitialPrizeCounter float64   `json:"initial_prize_counter" db:"initial_prize_counter"`
	IsActive            bool      `json:"is_active" db:"is_active"`
	CreatedAt           time.Time `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time `json:"updated_at" db:"updated_at"`
}

// CounterReading is one cumulative meter reading. Synthetic marks the
// virtual first reading derived from the machine's initial counters; it is
// never stored.
type CounterReading struct {
	ID           int64     `json:"id" db:"id"`
	MachineID    int64     `json:"machine_id" db:"machine_id"`
	ReadingDate  time.Time `json:"reading_date" db:"reading_date"`
	CoinCounter  float64   `json:"coin_counter" db:"coin_counter"`
	PrizeCounter float64   `json:"prize_counter" db:"prize_counter"`
	Notes        *string   `json:"notes,omitempty" db:"notes"`
	CreatedBy    int64     `json:"created_by" db:"created_by"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	Synthetic    bool      `json:"synthetic,omitempty" db:"-"`
}

// ReadingDelta is the difference between two consecutive readings plus the
// settlement preview it would produce.
type ReadingDelta struct {
	Machine    MachineRefView            `json:"machine"`
	Previous   CounterReading            `json:"previous"`
	Current    CounterReading            `json:"current"`
	CoinSales  float64                   `json:"coin_sales"`
	PrizeOut   float64                   `json:"prize_out"`
	Settlement settlement.Settlement     `json:"settlement"`
	Terms      settlement.AgreementTerms `json:"terms"`
}

// MachineRefView is the minimal machine identity embedded in delta views.
type MachineRefView struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Number string `json:"number"`
}

// CreateMachineRequest registers a machine under a franchise.
type CreateMachineRequest struct {
	FranchiseID         int64   `json:"franchise_id" validate:"required,gt=0"`
	Name                string  `json:"name" validate:"required,max=200"`
	Number              string  `json:"number" validate:"required,max=50"`
	InstallationDate    string  `json:"installation_date" validate:"required,datetime=2006-01-02"`
	InitialCoinCounter  float64 `json:"initial_coin_counter" validate:"gte=0"`
	InitialPrizeCounter float64 `json:"initial_prize_counter" validate:"gte=0"`
}

// UpdateMachineRequest carries partial updates.
type UpdateMachineRequest struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,max=200"`
	Number   *string `json:"number,omitempty" validate:"omitempty,max=50"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// AddReadingRequest appends a counter reading.
type AddReadingRequest struct {
	ReadingDate  string  `json:"reading_date" validate:"required,datetime=2006-01-02"`
	CoinCounter  float64 `json:"coin_counter" validate:"gte=0"`
	PrizeCounter float64 `json:"prize_counter" validate:"gte=0"`
	Notes        *string `json:"notes,omitempty"`
}
