package memory_test

import (
	"errors"
	"testing"

	"github.com/vladislavdragonenkov/shiptrack/internal/domain"
	"github.com/vladislavdragonenkov/shiptrack/internal/storage/memory"
)

func newShipment() domain.Shipment {
	return domain.Shipment{
		Item:            "box",
		Description:     "d",
		Status:          "pending",
		TrackingNumber:  "TN1",
		CurrentLocation: "LA",
		Source:          "LA",
		Destination:     "NY",
		Arrival:         "2024-01-01",
	}
}

func strptr(s string) *string { return &s }

func TestShipmentRepository_CreateGet(t *testing.T) {
	repo := memory.NewShipmentRepository()

	created, err := repo.Create(newShipment())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.ID != 1 {
		t.Fatalf("expected id 1 for first shipment, got %d", created.ID)
	}

	stored, err := repo.Get(created.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if stored != created {
		t.Fatalf("stored shipment differs: %+v vs %+v", stored, created)
	}
}

func TestShipmentRepository_GetNotFound(t *testing.T) {
	repo := memory.NewShipmentRepository()

	if _, err := repo.Get(42); !errors.Is(err, domain.ErrShipmentNotFound) {
		t.Fatalf("expected ErrShipmentNotFound, got %v", err)
	}
}

func TestShipmentRepository_ListOrderedByID(t *testing.T) {
	repo := memory.NewShipmentRepository()

	for i := 0; i < 3; i++ {
		if _, err := repo.Create(newShipment()); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}

	shipments, err := repo.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(shipments) != 3 {
		t.Fatalf("expected 3 shipments, got %d", len(shipments))
	}
	for i, s := range shipments {
		if s.ID != int64(i+1) {
			t.Fatalf("expected ascending ids, got %v", shipments)
		}
	}
}

func TestShipmentRepository_UpdatePartial(t *testing.T) {
	repo := memory.NewShipmentRepository()

	created, err := repo.Create(newShipment())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	updated, err := repo.Update(created.ID, domain.ShipmentPatch{Status: strptr("delivered")})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Status != "delivered" {
		t.Fatalf("expected status delivered, got %s", updated.Status)
	}

	// Остальные поля не должны измениться.
	updated.Status = created.Status
	if updated != created {
		t.Fatalf("update touched unrelated fields: %+v", updated)
	}
}

func TestShipmentRepository_UpdateNotFound(t *testing.T) {
	repo := memory.NewShipmentRepository()

	_, err := repo.Update(42, domain.ShipmentPatch{Status: strptr("delivered")})
	if !errors.Is(err, domain.ErrShipmentNotFound) {
		t.Fatalf("expected ErrShipmentNotFound, got %v", err)
	}
}
