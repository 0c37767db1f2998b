package persistence

import (
	"context"
	"database/sql"

	"github.com/labtrack/labtrack/internal/domain"
	"github.com/labtrack/labtrack/internal/ports"
)

// AccessLogRepository implements ports.AccessLogRepository
type AccessLogRepository struct {
	g *Gateway
}

func NewAccessLogRepository(g *Gateway) *AccessLogRepository {
	return &AccessLogRepository{g: g}
}

var _ ports.AccessLogRepository = (*AccessLogRepository)(nil)

func (r *AccessLogRepository) Append(ctx context.Context, entry *domain.AccessLogEntry) error {
	id, err := r.g.insertReturningID(ctx, "append access log", r.g.builder().
		Insert("access_log").
		Columns("user_id", "at", "action", "detail").
		Values(entry.UserID, domain.FormatTimestamp(entry.At), entry.Action, entry.Detail))
	if err != nil {
		return err
	}
	entry.ID = id
	return nil
}

// Recent left-joins users so entries of deleted users are still listed
func (r *AccessLogRepository) Recent(ctx context.Context, limit int) ([]*domain.AccessLogEntry, error) {
	q := r.g.builder().
		Select("a.id", "a.user_id", "u.first_name", "u.last_name", "a.at", "a.action", "a.detail").
		From("access_log a").
		LeftJoin("users u ON u.id = a.user_id").
		OrderBy("a.at DESC", "a.id DESC").
		Limit(uint64(limit))

	rows, err := r.g.queryBuilder(ctx, "list access log", q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.AccessLogEntry
	for rows.Next() {
		var (
			e         domain.AccessLogEntry
			firstName sql.NullString
			lastName  sql.NullString
			at        string
		)
		if err := rows.Scan(&e.ID, &e.UserID, &firstName, &lastName, &at, &e.Action, &e.Detail); err != nil {
			return nil, translateError("scan access log", err)
		}
		if firstName.Valid {
			u := domain.User{FirstName: firstName.String, LastName: lastName.String}
			e.UserName = u.FullName()
		}
		t, err := parseTimestamp(at)
		if err != nil {
			return nil, err
		}
		e.At = t
		out = append(out, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError("list access log", err)
	}
	return out, nil
}
