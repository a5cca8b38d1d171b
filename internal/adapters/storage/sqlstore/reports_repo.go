package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"animal-rescue/internal/domain/reports"
)

type ReportsRepo struct {
	db *DB
}

func NewReportsRepo(db *DB) *ReportsRepo {
	return &ReportsRepo{db: db}
}

const reportColumns = `
	id, animal_type, condition, location, gmaps_link,
	description, contact_name, contact_phone, photo_url,
	status, created_at, updated_at`

func (r *ReportsRepo) Create(ctx context.Context, rep reports.Report) error {
	_, err := r.db.exec(ctx, `
		INSERT INTO reported_animals (`+reportColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`,
		rep.ID,
		string(rep.AnimalType),
		string(rep.Condition),
		rep.Location,
		rep.GmapsLink,
		rep.Description,
		rep.ContactName,
		rep.ContactPhone,
		nullString(rep.PhotoURL),
		string(rep.Status),
		rep.CreatedAt.UTC(),
		rep.UpdatedAt.UTC(),
	)
	return err
}

func (r *ReportsRepo) GetByID(ctx context.Context, id string) (reports.Report, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return reports.Report{}, ErrNotFound
	}

	row := r.db.queryRow(ctx, `SELECT `+reportColumns+` FROM reported_animals WHERE id = $1`, id)
	rep, err := scanReport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return reports.Report{}, ErrNotFound
	}
	return rep, err
}

func (r *ReportsRepo) List(ctx context.Context, f reports.ListFilter) ([]reports.Report, error) {
	var (
		where []string
		args  []any
	)
	if len(f.Statuses) > 0 {
		vals := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			vals[i] = string(s)
		}
		clause, a := inClause("status", false, vals, len(args)+1)
		where = append(where, clause)
		args = append(args, a...)
	}
	if len(f.ExcludeConditions) > 0 {
		vals := make([]string, len(f.ExcludeConditions))
		for i, c := range f.ExcludeConditions {
			vals[i] = string(c)
		}
		clause, a := inClause("condition", true, vals, len(args)+1)
		where = append(where, clause)
		args = append(args, a...)
	}

	q := `SELECT ` + reportColumns + ` FROM reported_animals`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.db.query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]reports.Report, 0)
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rep)
	}
	return out, rows.Err()
}

func (r *ReportsRepo) UpdateStatus(ctx context.Context, id string, from, to reports.Status, at time.Time) error {
	return r.db.updateStatus(ctx, "reported_animals", id, string(from), string(to), at)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(s rowScanner) (reports.Report, error) {
	var (
		rep                          reports.Report
		animalType, condition, state string
		photo                        sql.NullString
	)
	err := s.Scan(
		&rep.ID,
		&animalType,
		&condition,
		&rep.Location,
		&rep.GmapsLink,
		&rep.Description,
		&rep.ContactName,
		&rep.ContactPhone,
		&photo,
		&state,
		&rep.CreatedAt,
		&rep.UpdatedAt,
	)
	if err != nil {
		return reports.Report{}, err
	}
	rep.AnimalType = reports.AnimalType(animalType)
	rep.Condition = reports.Condition(condition)
	rep.Status = reports.Status(state)
	rep.PhotoURL = fromNullString(photo)
	return rep, nil
}
