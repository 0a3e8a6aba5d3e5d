package postgres

import (
	"database/sql"

	"github.com/noirclub/noird/internal/model"
)

// scannable is the interface satisfied by both *sql.Row and *sql.Rows.
type scannable interface {
	Scan(dest ...any) error
}

// scanEvent scans a single row into a model.Event.
// The row must contain columns in the order defined by eventColumns.
func scanEvent(row scannable) (*model.Event, error) {
	var e model.Event
	var (
		subject    sql.NullInt64
		amount     sql.NullInt64
		annotation sql.NullString
	)

	err := row.Scan(
		&e.ID,
		&subject,
		&e.Kind,
		&amount,
		&annotation,
		&e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if subject.Valid {
		v := subject.Int64
		e.Subject = &v
	}
	if amount.Valid {
		v := amount.Int64
		e.Amount = &v
	}
	e.Annotation = annotation.String

	return &e, nil
}

// scanEvents scans multiple rows into a slice of model.Event pointers.
func scanEvents(rows *sql.Rows) ([]*model.Event, error) {
	var events []*model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

// nullInt64Ptr converts a *int64 to a sql.NullInt64.
func nullInt64Ptr(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

// nullString converts a string to sql.NullString; empty string is null.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
