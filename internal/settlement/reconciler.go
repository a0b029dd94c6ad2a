package settlement

// PaymentStatus classifies how far a settlement has been paid down.
type PaymentStatus string

const (
	StatusDue      PaymentStatus = "Due"
	StatusPartial  PaymentStatus = "Partial"
	StatusPaid     PaymentStatus = "Paid"
	StatusOverpaid PaymentStatus = "Overpaid"
)

// Payment is one recorded payment against a sale invoice. Filtering
// payments down to the relevant invoice is the caller's job.
type Payment struct {
	Amount float64 `json:"amount"`
}

// Reconciliation reports the payment state of one settlement. Balance never
// goes negative; an overpayment is reported separately so views can show it
// without re-deriving.
type Reconciliation struct {
	Status      PaymentStatus `json:"status"`
	TotalPaid   float64       `json:"total_paid"`
	Balance     float64       `json:"balance"`
	Overpayment float64       `json:"overpayment,omitempty"`
}

// Reconcile compares the pay-to-Clowee figure against the payments recorded
// for it.
func Reconcile(payToClowee float64, payments []Payment) Reconciliation {
	payToClowee = num(payToClowee)

	var totalPaid float64
	for _, p := range payments {
		totalPaid += num(p.Amount)
	}

	switch {
	case totalPaid == 0:
		return Reconciliation{Status: StatusDue, Balance: payToClowee}
	case totalPaid < payToClowee:
		return Reconciliation{Status: StatusPartial, TotalPaid: totalPaid, Balance: payToClowee - totalPaid}
	case totalPaid == payToClowee:
		return Reconciliation{Status: StatusPaid, TotalPaid: totalPaid}
	default:
		return Reconciliation{Status: StatusOverpaid, TotalPaid: totalPaid, Overpayment: totalPaid - payToClowee}
	}
}
