package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vladislavdragonenkov/shiptrack/internal/domain"
)

const opTimeout = 5 * time.Second

type shipmentRepository struct {
	db *sql.DB
}

// NewShipmentRepository создаёт PostgreSQL-реализацию ShipmentRepository.
func NewShipmentRepository(store *Store) domain.ShipmentRepository {
	return &shipmentRepository{db: store.DB()}
}

func (r *shipmentRepository) Create(shipment domain.Shipment) (domain.Shipment, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Shipment{}, domain.WrapStorage("begin tx", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO shipments (
			item, description, status, tracking_number, current_location, source, destination, arrival
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING id
	`,
		shipment.Item, shipment.Description, shipment.Status, nullIfEmpty(shipment.TrackingNumber),
		shipment.CurrentLocation, shipment.Source, shipment.Destination, shipment.Arrival,
	).Scan(&shipment.ID)
	if err != nil {
		return domain.Shipment{}, domain.WrapStorage("insert shipment", err)
	}

	if err = tx.Commit(); err != nil {
		return domain.Shipment{}, domain.WrapStorage("commit create shipment", err)
	}

	return shipment, nil
}

func (r *shipmentRepository) Get(id int64) (domain.Shipment, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	shipment, err := scanShipment(r.db.QueryRowContext(ctx, `
		SELECT id, item, description, status, tracking_number, current_location, source, destination, arrival
		FROM shipments
		WHERE id = $1
	`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Shipment{}, domain.ErrShipmentNotFound
		}
		return domain.Shipment{}, domain.WrapStorage("select shipment", err)
	}

	return shipment, nil
}

func (r *shipmentRepository) List() ([]domain.Shipment, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, item, description, status, tracking_number, current_location, source, destination, arrival
		FROM shipments
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, domain.WrapStorage("list shipments", err)
	}
	defer rows.Close()

	shipments := make([]domain.Shipment, 0)
	for rows.Next() {
		shipment, err := scanShipment(rows)
		if err != nil {
			return nil, domain.WrapStorage("scan shipment row", err)
		}
		shipments = append(shipments, shipment)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.WrapStorage("iterate shipment rows", err)
	}

	return shipments, nil
}

func (r *shipmentRepository) Update(id int64, patch domain.ShipmentPatch) (domain.Shipment, error) {
	if patch.IsEmpty() {
		// Нечего применять — возвращаем текущее состояние.
		return r.Get(id)
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	sets := make([]string, 0, 8)
	args := make([]any, 0, 9)
	appendSet := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Item != nil {
		appendSet("item", *patch.Item)
	}
	if patch.Description != nil {
		appendSet("description", *patch.Description)
	}
	if patch.Status != nil {
		appendSet("status", *patch.Status)
	}
	if patch.TrackingNumber != nil {
		appendSet("tracking_number", nullIfEmpty(*patch.TrackingNumber))
	}
	if patch.CurrentLocation != nil {
		appendSet("current_location", *patch.CurrentLocation)
	}
	if patch.Source != nil {
		appendSet("source", *patch.Source)
	}
	if patch.Destination != nil {
		appendSet("destination", *patch.Destination)
	}
	if patch.Arrival != nil {
		appendSet("arrival", *patch.Arrival)
	}

	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE shipments
		SET %s
		WHERE id = $%d
		RETURNING id, item, description, status, tracking_number, current_location, source, destination, arrival
	`, strings.Join(sets, ", "), len(args))

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Shipment{}, domain.WrapStorage("begin tx", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	shipment, err := scanShipment(tx.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = domain.ErrShipmentNotFound
			return domain.Shipment{}, err
		}
		return domain.Shipment{}, domain.WrapStorage("update shipment", err)
	}

	if err = tx.Commit(); err != nil {
		return domain.Shipment{}, domain.WrapStorage("commit update shipment", err)
	}

	return shipment, nil
}

// rowScanner покрывает и *sql.Row, и *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanShipment(row rowScanner) (domain.Shipment, error) {
	var shipment domain.Shipment
	var tracking sql.NullString

	if err := row.Scan(
		&shipment.ID, &shipment.Item, &shipment.Description, &shipment.Status,
		&tracking, &shipment.CurrentLocation, &shipment.Source,
		&shipment.Destination, &shipment.Arrival,
	); err != nil {
		return domain.Shipment{}, err
	}
	shipment.TrackingNumber = tracking.String

	return shipment, nil
}

func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

var _ domain.ShipmentRepository = (*shipmentRepository)(nil)
