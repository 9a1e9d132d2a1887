package order

import (
	"math"
	"testing"
)

func TestEffectiveTarget(t *testing.T) {
	tests := []struct {
		name     string
		billed   int64
		quantity int64
		want     int64
	}{
		{name: "billed sum wins", billed: 80, quantity: 100, want: 80},
		{name: "falls back to raw quantity", billed: 0, quantity: 100, want: 100},
		{name: "both zero", billed: 0, quantity: 0, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EffectiveTarget(tt.billed, tt.quantity); got != tt.want {
				t.Errorf("EffectiveTarget() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCanAddPacked(t *testing.T) {
	tests := []struct {
		name        string
		ctx         PackContext
		wantAllowed bool
		wantReason  string
	}{
		{
			name:        "can pack up to target",
			ctx:         PackContext{OrderID: 1, Packed: 90, Delta: 10, Target: 100},
			wantAllowed: true,
		},
		{
			name:        "cannot exceed target",
			ctx:         PackContext{OrderID: 1, Packed: 90, Delta: 15, Target: 100},
			wantAllowed: false,
			wantReason:  "order 1: packing 15 would exceed target (90 of 100 packed)",
		},
		{
			name:        "zero target has no cap",
			ctx:         PackContext{OrderID: 1, Packed: 500, Delta: 15, Target: 0},
			wantAllowed: true,
		},
		{
			name:        "huge delta cannot wrap past target",
			ctx:         PackContext{OrderID: 1, Packed: 90, Delta: math.MaxInt64, Target: 100},
			wantAllowed: false,
			wantReason:  "order 1: packing 9223372036854775807 would exceed target (90 of 100 packed)",
		},
		{
			name:        "huge delta cannot overflow without target",
			ctx:         PackContext{OrderID: 1, Packed: 500, Delta: math.MaxInt64, Target: 0},
			wantAllowed: false,
			wantReason:  "order 1: packing 9223372036854775807 would overflow the packed quantity 500",
		},
		{
			name:        "zero delta rejected",
			ctx:         PackContext{OrderID: 1, Packed: 0, Delta: 0, Target: 100},
			wantAllowed: false,
			wantReason:  "packed delta must be positive, got 0",
		},
		{
			name:        "negative delta rejected",
			ctx:         PackContext{OrderID: 1, Packed: 10, Delta: -5, Target: 100},
			wantAllowed: false,
			wantReason:  "packed delta must be positive, got -5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CanAddPacked(tt.ctx)
			if result.Allowed != tt.wantAllowed {
				t.Errorf("Allowed = %v, want %v", result.Allowed, tt.wantAllowed)
			}
			if !tt.wantAllowed && result.Reason != tt.wantReason {
				t.Errorf("Reason = %q, want %q", result.Reason, tt.wantReason)
			}
		})
	}
}

func TestShouldTerminate(t *testing.T) {
	tests := []struct {
		name   string
		status string
		packed int64
		target int64
		want   bool
	}{
		{name: "reaching target terminates", status: StatusOpen, packed: 100, target: 100, want: true},
		{name: "below target stays open", status: StatusOpen, packed: 99, target: 100, want: false},
		{name: "already terminated", status: StatusTerminated, packed: 100, target: 100, want: false},
		{name: "zero target never terminates", status: StatusOpen, packed: 10, target: 0, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldTerminate(tt.status, tt.packed, tt.target); got != tt.want {
				t.Errorf("ShouldTerminate() = %v, want %v", got, tt.want)
			}
		})
	}
}
