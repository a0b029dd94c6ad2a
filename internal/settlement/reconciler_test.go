package settlement

import "testing"

func TestReconcileBoundaries(t *testing.T) {
	cases := []struct {
		name        string
		payToClowee float64
		payments    []Payment
		status      PaymentStatus
		totalPaid   float64
		balance     float64
		overpayment float64
	}{
		{"due", 1700, nil, StatusDue, 0, 1700, 0},
		{"due zero amounts", 1700, []Payment{{Amount: 0}, {Amount: 0}}, StatusDue, 0, 1700, 0},
		{"partial", 1700, []Payment{{Amount: 600}, {Amount: 400}}, StatusPartial, 1000, 700, 0},
		{"paid exact", 1700, []Payment{{Amount: 1000}, {Amount: 700}}, StatusPaid, 1700, 0, 0},
		{"overpaid", 1700, []Payment{{Amount: 2000}}, StatusOverpaid, 2000, 0, 300},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			got := Reconcile(tt.payToClowee, tt.payments)
			if got.Status != tt.status {
				t.Fatalf("status = %s, want %s", got.Status, tt.status)
			}
			if got.TotalPaid != tt.totalPaid {
				t.Fatalf("total_paid = %v, want %v", got.TotalPaid, tt.totalPaid)
			}
			if got.Balance != tt.balance {
				t.Fatalf("balance = %v, want %v", got.Balance, tt.balance)
			}
			if got.Overpayment != tt.overpayment {
				t.Fatalf("overpayment = %v, want %v", got.Overpayment, tt.overpayment)
			}
		})
	}
}

func TestReconcileNegativeSettlement(t *testing.T) {
	// Negative settlements stay visible: nothing paid means the full
	// negative figure is the balance.
	got := Reconcile(-300, nil)
	if got.Status != StatusDue {
		t.Fatalf("status = %s, want Due", got.Status)
	}
	if got.Balance != -300 {
		t.Fatalf("balance = %v, want -300", got.Balance)
	}
}
