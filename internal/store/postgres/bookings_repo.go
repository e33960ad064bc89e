package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"khidma/backend/internal/domain"
)

// BookingRepo reads bookings written by the external booking flow; the
// availability engine never inserts or mutates them.
type BookingRepo struct {
	db *bun.DB
}

func NewBookingRepo(db *bun.DB) *BookingRepo {
	return &BookingRepo{db: db}
}

func (r *BookingRepo) ListForProviderDate(ctx context.Context, providerID uuid.UUID, date domain.CalendarDate) ([]domain.Booking, error) {
	var rows []domain.Booking
	err := r.db.NewSelect().
		Model(&rows).
		Where("provider_id = ?", providerID).
		Where("date = ?", date).
		OrderExpr("start_time ASC").
		Scan(ctx)
	if err != nil {
		return nil, fetchFailure(err)
	}
	return rows, nil
}
