package pricing

import "testing"

func TestSubtotal(t *testing.T) {
	if got := Subtotal(12999, 3); got != 38997 {
		t.Fatalf("subtotal = %d, want 38997", got)
	}
}

func TestCommissionRounding(t *testing.T) {
	tests := []struct {
		name     string
		subtotal int64
		bps      int64
		want     int64
	}{
		{"exact", 10000, 1500, 1500},
		{"fraction below half", 3, 1500, 0},  // 0.45 cents -> 0
		{"half rounds up", 10, 1500, 2},      // 1.5 cents -> 2
		{"fraction above cent", 9, 1500, 1},  // 1.35 cents -> 1
		{"zero rate", 99999, 0, 0},
		{"zero subtotal", 0, 1500, 0},
		{"large subtotal no drift", 123456789, 250, 3086420},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Commission(tt.subtotal, tt.bps); got != tt.want {
				t.Fatalf("Commission(%d, %d) = %d, want %d", tt.subtotal, tt.bps, got, tt.want)
			}
		})
	}
}

func TestTotal(t *testing.T) {
	if got := Total(38997, 5850); got != 44847 {
		t.Fatalf("total = %d, want 44847", got)
	}
}
