package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/labtrack/labtrack/internal/domain"
	"github.com/labtrack/labtrack/internal/ports"
)

var reservationColumns = []string{
	"id", "equipment_id", "user_id", "start_at", "end_at", "purpose", "status", "requested_at",
}

// ReservationRepository implements ports.ReservationRepository
type ReservationRepository struct {
	g *Gateway
}

func NewReservationRepository(g *Gateway) *ReservationRepository {
	return &ReservationRepository{g: g}
}

var _ ports.ReservationRepository = (*ReservationRepository)(nil)

func (r *ReservationRepository) Create(ctx context.Context, res *domain.Reservation) error {
	id, err := r.g.insertReturningID(ctx, "create reservation", r.g.builder().
		Insert("reservations").
		Columns("equipment_id", "user_id", "start_at", "end_at", "purpose", "status", "requested_at").
		Values(res.EquipmentID, res.UserID, domain.FormatTimestamp(res.Start), domain.FormatTimestamp(res.End),
			res.Purpose, string(res.Status), domain.FormatTimestamp(res.RequestedAt)))
	if err != nil {
		return err
	}
	res.ID = id
	return nil
}

func (r *ReservationRepository) FindByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	row, err := r.g.queryRowBuilder(ctx, "find reservation", r.g.builder().
		Select(reservationColumns...).From("reservations").Where(sq.Eq{"id": id}))
	if err != nil {
		return nil, err
	}

	res, err := scanReservation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &domain.NotFoundError{Entity: "reservation", ID: id}
		}
		return nil, err
	}
	return res, nil
}

// Update writes the status; the booked interval never changes
func (r *ReservationRepository) Update(ctx context.Context, res *domain.Reservation) error {
	n, err := r.g.execBuilder(ctx, "update reservation", r.g.builder().
		Update("reservations").
		Set("status", string(res.Status)).
		Set("purpose", res.Purpose).
		Where(sq.Eq{"id": res.ID}))
	if err != nil {
		return err
	}
	if n == 0 {
		return &domain.NotFoundError{Entity: "reservation", ID: res.ID}
	}
	return nil
}

// List orders reservations by start
func (r *ReservationRepository) List(ctx context.Context, filter domain.ReservationFilter) ([]*domain.Reservation, error) {
	q := r.g.builder().Select(reservationColumns...).From("reservations").OrderBy("start_at", "id")
	if filter.Status != nil {
		q = q.Where(sq.Eq{"status": string(*filter.Status)})
	}
	if filter.EquipmentID != nil {
		q = q.Where(sq.Eq{"equipment_id": *filter.EquipmentID})
	}
	if filter.From != nil {
		q = q.Where(sq.GtOrEq{"start_at": domain.FormatDate(*filter.From)})
	}
	if filter.To != nil {
		q = q.Where(sq.Lt{"end_at": nextDay(*filter.To)})
	}
	return r.list(ctx, "list reservations", q)
}

// ListConfirmedEndingAfter narrows the overlap candidates; the overlap rule
// itself is applied by the caller.
func (r *ReservationRepository) ListConfirmedEndingAfter(ctx context.Context, equipmentID int64, notBefore time.Time) ([]*domain.Reservation, error) {
	q := r.g.builder().Select(reservationColumns...).From("reservations").
		Where(sq.Eq{"equipment_id": equipmentID, "status": string(domain.ReservationStatusConfirmed)}).
		Where(sq.GtOrEq{"end_at": domain.FormatTimestamp(notBefore)}).
		OrderBy("start_at", "id")
	return r.list(ctx, "list confirmed reservations", q)
}

func (r *ReservationRepository) CountByEquipment(ctx context.Context, equipmentID int64) (int, error) {
	return countWhere(ctx, r.g, "count reservations", "reservations", sq.Eq{"equipment_id": equipmentID})
}

func (r *ReservationRepository) DeleteByEquipment(ctx context.Context, equipmentID int64) (int64, error) {
	return r.g.execBuilder(ctx, "delete reservations", r.g.builder().
		Delete("reservations").Where(sq.Eq{"equipment_id": equipmentID}))
}

func (r *ReservationRepository) list(ctx context.Context, op string, q sq.SelectBuilder) ([]*domain.Reservation, error) {
	rows, err := r.g.queryBuilder(ctx, op, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(op, err)
	}
	return out, nil
}

func scanReservation(s scanner) (*domain.Reservation, error) {
	var (
		res         domain.Reservation
		start       string
		end         string
		requestedAt string
	)
	if err := s.Scan(&res.ID, &res.EquipmentID, &res.UserID, &start, &end, &res.Purpose, &res.Status, &requestedAt); err != nil {
		return nil, translateError("scan reservation", err)
	}

	var err error
	if res.Start, err = parseTimestamp(start); err != nil {
		return nil, err
	}
	if res.End, err = parseTimestamp(end); err != nil {
		return nil, err
	}
	if res.RequestedAt, err = parseTimestamp(requestedAt); err != nil {
		return nil, err
	}
	return &res, nil
}
