package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/noirclub/noird/internal/model"
	"github.com/noirclub/noird/internal/store"
)

// eventColumns is the column list used for SELECT statements on the events table.
const eventColumns = `id, subject, kind, amount, annotation, created_at`

// executor is the interface satisfied by both *sql.DB and *sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func queryAppendEvent(ctx context.Context, db executor, ev *model.Event) error {
	return db.QueryRowContext(ctx, `
		INSERT INTO events (subject, kind, amount, annotation)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		nullInt64Ptr(ev.Subject),
		string(ev.Kind),
		nullInt64Ptr(ev.Amount),
		nullString(ev.Annotation),
	).Scan(&ev.ID, &ev.CreatedAt)
}

// buildFilter renders an EventFilter into a WHERE clause and argument list.
func buildFilter(f model.EventFilter) (string, []any) {
	var (
		whereClauses []string
		args         []any
		argIdx       int
	)

	nextArg := func() string {
		argIdx++
		return fmt.Sprintf("$%d", argIdx)
	}

	if len(f.Kinds) > 0 {
		placeholders := make([]string, len(f.Kinds))
		for i, k := range f.Kinds {
			placeholders[i] = nextArg()
			args = append(args, string(k))
		}
		whereClauses = append(whereClauses, "kind IN ("+strings.Join(placeholders, ", ")+")")
	}

	if f.SystemSubject {
		whereClauses = append(whereClauses, "subject IS NULL")
	} else if f.Subject != nil {
		whereClauses = append(whereClauses, "subject = "+nextArg())
		args = append(args, *f.Subject)
	}

	if f.AfterID > 0 {
		whereClauses = append(whereClauses, "id > "+nextArg())
		args = append(args, f.AfterID)
	}

	if f.Annotation != "" {
		whereClauses = append(whereClauses, "annotation = "+nextArg())
		args = append(args, f.Annotation)
	}

	if f.AnnotationPrefix != "" {
		p := nextArg()
		whereClauses = append(whereClauses, "annotation LIKE "+p+" || '%'")
		args = append(args, f.AnnotationPrefix)
	}

	whereSQL := ""
	if len(whereClauses) > 0 {
		whereSQL = " WHERE " + strings.Join(whereClauses, " AND ")
	}
	return whereSQL, args
}

func queryEvents(ctx context.Context, db executor, f model.EventFilter) ([]*model.Event, error) {
	whereSQL, args := buildFilter(f)

	order := " ORDER BY id ASC"
	if f.Order == model.OrderDesc {
		order = " ORDER BY id DESC"
	}

	q := "SELECT " + eventColumns + " FROM events" + whereSQL + order
	if f.Limit > 0 {
		q += fmt.Sprintf(" LIMIT $%d", len(args)+1)
		args = append(args, f.Limit)
	}

	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func queryLastEvent(ctx context.Context, db executor, f model.EventFilter) (*model.Event, error) {
	f.Order = model.OrderDesc
	f.Limit = 1
	events, err := queryEvents(ctx, db, f)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, nil
	}
	return events[0], nil
}

func querySumAmounts(ctx context.Context, db executor, f model.EventFilter) (int64, error) {
	whereSQL, args := buildFilter(f)

	var sum int64
	err := db.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(amount), 0) FROM events"+whereSQL, args...,
	).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("sum amounts: %w", err)
	}
	return sum, nil
}

func querySubjectSums(ctx context.Context, db executor, kind model.Kind) ([]store.SubjectSum, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT subject, COALESCE(SUM(amount), 0) AS total
		FROM events
		WHERE kind = $1 AND subject IS NOT NULL
		GROUP BY subject
		ORDER BY total DESC, subject ASC`,
		string(kind),
	)
	if err != nil {
		return nil, fmt.Errorf("subject sums: %w", err)
	}
	defer rows.Close()

	var sums []store.SubjectSum
	for rows.Next() {
		var s store.SubjectSum
		if err := rows.Scan(&s.Subject, &s.Sum); err != nil {
			return nil, fmt.Errorf("scan subject sum: %w", err)
		}
		sums = append(sums, s)
	}
	return sums, rows.Err()
}

func querySubjects(ctx context.Context, db executor, kinds []model.Kind) ([]int64, error) {
	if len(kinds) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(kinds))
	args := make([]any, len(kinds))
	for i, k := range kinds {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = string(k)
	}

	rows, err := db.QueryContext(ctx, `
		SELECT DISTINCT subject FROM events
		WHERE kind IN (`+strings.Join(placeholders, ", ")+`) AND subject IS NOT NULL
		ORDER BY subject ASC`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("query subjects: %w", err)
	}
	defer rows.Close()

	var subjects []int64
	for rows.Next() {
		var s int64
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scan subject: %w", err)
		}
		subjects = append(subjects, s)
	}
	return subjects, rows.Err()
}
