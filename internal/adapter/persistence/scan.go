package persistence

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/labtrack/labtrack/internal/domain"
)

type scanner interface {
	Scan(dest ...interface{}) error
}

func textOrNil(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

func int64OrNil(v *int64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func float64OrNil(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func dateOrNil(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return domain.FormatDate(*t)
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func datePtr(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	t, err := domain.ParseDate(ns.String)
	if err != nil {
		return nil, fmt.Errorf("invalid stored date %q: %w", ns.String, err)
	}
	return &t, nil
}

func parseTimestamp(s string) (time.Time, error) {
	t, err := domain.ParseTimestamp(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid stored timestamp %q: %w", s, err)
	}
	return t, nil
}

// nextDay renders the exclusive upper bound for an inclusive date filter.
func nextDay(t time.Time) string {
	return domain.FormatDate(domain.StartOfDay(t).AddDate(0, 0, 1))
}

func collectStrings(rows *sql.Rows) ([]string, error) {
	defer rows.Close()
	out := []string{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, translateError("scan", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError("iterate", err)
	}
	return out, nil
}
