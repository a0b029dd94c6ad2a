package franchise

import (
	"time"

	"github.com/clowee-erp/clowee-erp/internal/settlement"
)

// PaymentDuration is the settlement cadence agreed with a franchise.
type PaymentDuration string

const (
	PaymentMonthly     PaymentDuration = "Monthly"
	PaymentHalfMonthly PaymentDuration = "Half Monthly"
)

// Franchise is one franchise partner operating Clowee machines. The pricing
// fields are the base terms; agreements supersede them from their effective
// date onward.
type Franchise struct {
	ID                    int64           `json:"id" db:"id"`
	Name                  string          `json:"name" db:"name"`
	ContactPerson         *string         `json:"contact_person,omitempty" db:"contact_person"`
	Phone                 *string         `json:"phone,omitempty" db:"phone"`
	Address               *string         `json:"address,omitempty" db:"address"`
	CoinPrice             float64         `json:"coin_price" db:"coin_price"`
	DollPrice             float64         `json:"doll_price" db:"doll_price"`
	ElectricityCost       float64         `json:"electricity_cost" db:"electricity_cost"`
	VATPercentage         float64         `json:"vat_percentage" db:"vat_percentage"`
	FranchiseShare        float64         `json:"franchise_share" db:"franchise_share"`
	CloweeShare           float64         `json:"clowee_share" db:"clowee_share"`
	MaintenancePercentage float64         `json:"maintenance_percentage" db:"maintenance_percentage"`
	PaymentDuration       PaymentDuration `json:"payment_duration" db:"payment_duration"`
	SecurityDeposit       float64         `json:"security_deposit" db:"security_deposit"`
	SecurityDepositNotes  *string         `json:"security_deposit_notes,omitempty" db:"security_deposit_notes"`
	BankID                *int64          `json:"bank_id,omitempty" db:"bank_id"`
	DocumentRef           *string         `json:"document_ref,omitempty" db:"document_ref"`
	IsActive              bool            `json:"is_active" db:"is_active"`
	CreatedAt             time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at" db:"updated_at"`
}

// BaseTerms maps the franchise base record onto settlement terms.
func (f Franchise) BaseTerms() settlement.AgreementTerms {
	return settlement.AgreementTerms{
		CoinPrice:             f.CoinPrice,
		DollPrice:             f.DollPrice,
		VATPercentage:         f.VATPercentage,
		FranchiseShare:        f.FranchiseShare,
		CloweeShare:           f.CloweeShare,
		ElectricityCost:       f.ElectricityCost,
		MaintenancePercentage: f.MaintenancePercentage,
	}
}

// AgreementRow is one immutable entry of the append-only agreement log.
// Corrections are recorded as new rows, never as in-place edits, so that
// historical settlements keep resolving against the terms that applied.
type AgreementRow struct {
	ID                    int64     `json:"id" db:"id"`
	FranchiseID           int64     `json:"franchise_id" db:"franchise_id"`
	EffectiveDate         time.Time `json:"effective_date" db:"effective_date"`
	CoinPrice             float64   `json:"coin_price" db:"coin_price"`
	DollPrice             float64   `json:"doll_price" db:"doll_price"`
	ElectricityCost       float64   `json:"electricity_cost" db:"electricity_cost"`
	VATPercentage         float64   `json:"vat_percentage" db:"vat_percentage"`
	FranchiseShare        float64   `json:"franchise_share" db:"franchise_share"`
	CloweeShare           float64   `json:"clowee_share" db:"clowee_share"`
	MaintenancePercentage float64   `json:"maintenance_percentage" db:"maintenance_percentage"`
	Notes                 *string   `json:"notes,omitempty" db:"notes"`
	CreatedBy             int64     `json:"created_by" db:"created_by"`
	CreatedAt             time.Time `json:"created_at" db:"created_at"`
}

// Agreement converts the row to the settlement core's representation.
func (a AgreementRow) Agreement() settlement.Agreement {
	return settlement.Agreement{
		ID:            a.ID,
		FranchiseID:   a.FranchiseID,
		EffectiveDate: a.EffectiveDate,
		Terms: settlement.AgreementTerms{
			CoinPrice:             a.CoinPrice,
			DollPrice:             a.DollPrice,
			VATPercentage:         a.VATPercentage,
			FranchiseShare:        a.FranchiseShare,
			CloweeShare:           a.CloweeShare,
			ElectricityCost:       a.ElectricityCost,
			MaintenancePercentage: a.MaintenancePercentage,
		},
	}
}

// CreateFranchiseRequest is the payload for registering a franchise.
type CreateFranchiseRequest struct {
	Name                  string          `json:"name" validate:"required,max=200"`
	ContactPerson         *string         `json:"contact_person,omitempty" validate:"omitempty,max=200"`
	Phone                 *string         `json:"phone,omitempty" validate:"omitempty,max=50"`
	Address               *string         `json:"address,omitempty" validate:"omitempty,max=500"`
	CoinPrice             float64         `json:"coin_price" validate:"gte=0"`
	DollPrice             float64         `json:"doll_price" validate:"gte=0"`
	ElectricityCost       float64         `json:"electricity_cost" validate:"gte=0"`
	VATPercentage         float64         `json:"vat_percentage" validate:"gte=0,lte=100"`
	FranchiseShare        float64         `json:"franchise_share" validate:"gte=0,lte=100"`
	CloweeShare           float64         `json:"clowee_share" validate:"gte=0,lte=100"`
	MaintenancePercentage float64         `json:"maintenance_percentage" validate:"gte=0,lte=100"`
	PaymentDuration       PaymentDuration `json:"payment_duration" validate:"required,oneof='Monthly' 'Half Monthly'"`
	SecurityDeposit       float64         `json:"security_deposit" validate:"gte=0"`
	SecurityDepositNotes  *string         `json:"security_deposit_notes,omitempty"`
	BankID                *int64          `json:"bank_id,omitempty" validate:"omitempty,gt=0"`
	DocumentRef           *string         `json:"document_ref,omitempty"`
}

// UpdateFranchiseRequest carries partial updates to the base record.
type UpdateFranchiseRequest struct {
	Name                  *string          `json:"name,omitempty" validate:"omitempty,max=200"`
	ContactPerson         *string          `json:"contact_person,omitempty"`
	Phone                 *string          `json:"phone,omitempty"`
	Address               *string          `json:"address,omitempty"`
	CoinPrice             *float64         `json:"coin_price,omitempty" validate:"omitempty,gte=0"`
	DollPrice             *float64         `json:"doll_price,omitempty" validate:"omitempty,gte=0"`
	ElectricityCost       *float64         `json:"electricity_cost,omitempty" validate:"omitempty,gte=0"`
	VATPercentage         *float64         `json:"vat_percentage,omitempty" validate:"omitempty,gte=0,lte=100"`
	FranchiseShare        *float64         `json:"franchise_share,omitempty" validate:"omitempty,gte=0,lte=100"`
	CloweeShare           *float64         `json:"clowee_share,omitempty" validate:"omitempty,gte=0,lte=100"`
	MaintenancePercentage *float64         `json:"maintenance_percentage,omitempty" validate:"omitempty,gte=0,lte=100"`
	PaymentDuration       *PaymentDuration `json:"payment_duration,omitempty" validate:"omitempty,oneof='Monthly' 'Half Monthly'"`
	SecurityDeposit       *float64         `json:"security_deposit,omitempty" validate:"omitempty,gte=0"`
	SecurityDepositNotes  *string          `json:"security_deposit_notes,omitempty"`
	BankID                *int64           `json:"bank_id,omitempty" validate:"omitempty,gt=0"`
	DocumentRef           *string          `json:"document_ref,omitempty"`
	IsActive              *bool            `json:"is_active,omitempty"`
}

// AppendAgreementRequest records a new agreement version.
type AppendAgreementRequest struct {
	EffectiveDate         string  `json:"effective_date" validate:"required,datetime=2006-01-02"`
	CoinPrice             float64 `json:"coin_price" validate:"gte=0"`
	DollPrice             float64 `json:"doll_price" validate:"gte=0"`
	ElectricityCost       float64 `json:"electricity_cost" validate:"gte=0"`
	VATPercentage         float64 `json:"vat_percentage" validate:"gte=0,lte=100"`
	FranchiseShare        float64 `json:"franchise_share" validate:"gte=0,lte=100"`
	CloweeShare           float64 `json:"clowee_share" validate:"gte=0,lte=100"`
	MaintenancePercentage float64 `json:"maintenance_percentage" validate:"gte=0,lte=100"`
	Notes                 *string `json:"notes,omitempty"`
}

// ListFranchisesRequest filters the franchise listing.
type ListFranchisesRequest struct {
	Search     string
	ActiveOnly bool
	Page       int
	PerPage    int
}
