package slot

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	"github.com/m04kA/SMC-ParkingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-ParkingService/pkg/psqlbuilder"
)

var slotColumns = []string{
	"id",
	"location_id",
	"slot_number",
	"floor",
	"slot_type",
	"status",
	"price_per_hour",
	"current_reservation_id",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с парковочными слотами
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория слотов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByID получает слот по ID.
// Внутри транзакции добавляет FOR UPDATE для блокировки строки.
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.ParkingSlot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(slotColumns...).
		From("parking_slots").
		Where(squirrel.Eq{"id": id})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	slot, err := scanSlot(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan slot: %v", ErrScanRow, err)
	}

	return slot, nil
}

// ListByLocation получает все слоты локации, отсортированные по номеру
func (r *Repository) ListByLocation(ctx context.Context, locationID int64) ([]*domain.ParkingSlot, error) {
	return r.list(ctx, squirrel.Eq{"location_id": locationID})
}

// ListAvailableByLocation получает только свободные слоты локации
func (r *Repository) ListAvailableByLocation(ctx context.Context, locationID int64) ([]*domain.ParkingSlot, error) {
	return r.list(ctx, squirrel.Eq{
		"location_id": locationID,
		"status":      domain.SlotAvailable,
	})
}

func (r *Repository) list(ctx context.Context, where squirrel.Eq) ([]*domain.ParkingSlot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(slotColumns...).
		From("parking_slots").
		Where(where).
		OrderBy("slot_number ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: list - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: list - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	slots := make([]*domain.ParkingSlot, 0)
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: list - scan row: %v", ErrScanRow, err)
		}
		slots = append(slots, slot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list - rows error: %v", ErrScanRow, err)
	}

	return slots, nil
}

// Reserve переводит слот available -> reserved и привязывает бронирование.
// Условный UPDATE: если конкурентный запрос успел занять слот первым,
// условие по статусу не сработает и вернется ErrSlotNotAvailable.
func (r *Repository) Reserve(ctx context.Context, slotID, reservationID int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("parking_slots").
		Set("status", domain.SlotReserved).
		Set("current_reservation_id", reservationID).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{
			"id":     slotID,
			"status": domain.SlotAvailable,
		}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Reserve - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Reserve - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Reserve - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrSlotNotAvailable
	}

	return nil
}

// Release возвращает слот reserved -> available и очищает привязку.
// Возвращает false без ошибки, если слот уже не в статусе reserved
// (например переведен в maintenance вручную).
func (r *Repository) Release(ctx context.Context, slotID int64) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("parking_slots").
		Set("status", domain.SlotAvailable).
		Set("current_reservation_id", nil).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{
			"id":     slotID,
			"status": domain.SlotReserved,
		}).
		ToSql()

	if err != nil {
		return false, fmt.Errorf("%w: Release - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("%w: Release - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: Release - get rows affected: %v", ErrExecQuery, err)
	}

	return rowsAffected > 0, nil
}

// rowScanner общий интерфейс *sql.Row и *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSlot(row rowScanner) (*domain.ParkingSlot, error) {
	var slot domain.ParkingSlot
	var currentReservationID sql.NullInt64
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&slot.ID,
		&slot.LocationID,
		&slot.SlotNumber,
		&slot.Floor,
		&slot.Type,
		&slot.Status,
		&slot.PricePerHour,
		&currentReservationID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if currentReservationID.Valid {
		slot.CurrentReservationID = &currentReservationID.Int64
	}
	slot.CreatedAt = createdAt.Time
	slot.UpdatedAt = updatedAt.Time

	return &slot, nil
}
