package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/example/atelier/internal/ports/primary"
)

func TestOrderAdapter_Create(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewOrderAdapter(&mockOrderService{}, &buf)

	if err := adapter.Create(context.Background(), "OF-2031", 500); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(buf.String(), "Created order 1: OF-2031 (quantity 500)") {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestOrderAdapter_Pack_NotTerminated(t *testing.T) {
	mock := &mockOrderService{}
	var buf bytes.Buffer
	adapter := NewOrderAdapter(mock, &buf)

	if err := adapter.Pack(context.Background(), 4, 30); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if mock.lastPackReq.Delta != 30 {
		t.Errorf("expected delta 30, got %d", mock.lastPackReq.Delta)
	}
	output := buf.String()
	if !strings.Contains(output, "Order 4: 30 of 100 packed") {
		t.Errorf("unexpected output %q", output)
	}
	if strings.Contains(output, "terminated") {
		t.Errorf("did not expect termination line, got %q", output)
	}
}

func TestOrderAdapter_Pack_Terminated(t *testing.T) {
	mock := &mockOrderService{
		packFn: func(ctx context.Context, req primary.AddPackedQuantityRequest) (*primary.AddPackedQuantityResponse, error) {
			return &primary.AddPackedQuantityResponse{
				Order:               &primary.Order{ID: 4, PackedQuantity: 100, EffectiveTarget: 100, Status: "terminated"},
				Terminated:          true,
				ClosedAssignmentIDs: []int64{11, 12},
			}, nil
		},
	}
	var buf bytes.Buffer
	adapter := NewOrderAdapter(mock, &buf)

	if err := adapter.Pack(context.Background(), 4, 10); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	want := "Order terminated, closed 2 open assignment(s): [11 12]"
	if !strings.Contains(buf.String(), want) {
		t.Errorf("expected output to contain %q, got %q", want, buf.String())
	}
}

func TestOrderAdapter_Pack_Error(t *testing.T) {
	mock := &mockOrderService{
		packFn: func(ctx context.Context, req primary.AddPackedQuantityRequest) (*primary.AddPackedQuantityResponse, error) {
			return nil, errors.New("order 4: packing 200 would exceed target (0 of 100 packed)")
		},
	}
	var buf bytes.Buffer
	adapter := NewOrderAdapter(mock, &buf)

	err := adapter.Pack(context.Background(), 4, 200)
	if err == nil || !strings.Contains(err.Error(), "would exceed target") {
		t.Fatalf("expected guard error, got %v", err)
	}
}

func TestOrderAdapter_SetBilled(t *testing.T) {
	mock := &mockOrderService{}
	var buf bytes.Buffer
	adapter := NewOrderAdapter(mock, &buf)

	if err := adapter.SetBilled(context.Background(), 4, 202611, 80); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if mock.lastBilledReq.WeekID != 202611 || mock.lastBilledReq.BilledQuantity != 80 {
		t.Errorf("unexpected request %+v", mock.lastBilledReq)
	}
}

func TestOrderAdapter_Show(t *testing.T) {
	completed := at("2026-03-04 15:00")
	mock := &mockOrderService{
		getFn: func(ctx context.Context, id int64) (*primary.Order, error) {
			return &primary.Order{ID: id, Reference: "OF-9", Quantity: 100, EffectiveTarget: 80,
				PackedQuantity: 80, Status: "terminated", CompletedAt: &completed}, nil
		},
	}
	var buf bytes.Buffer
	adapter := NewOrderAdapter(mock, &buf)

	if _, err := adapter.Show(context.Background(), 9); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	output := buf.String()
	for _, want := range []string{"Reference: OF-9", "Target:    80", "Completed: 2026-03-04 15:00"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected output to contain %q, got %q", want, output)
		}
	}
}
