package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"animal-rescue/internal/domain/hospitals"
)

type HospitalsRepo struct {
	db *DB
}

func NewHospitalsRepo(db *DB) *HospitalsRepo {
	return &HospitalsRepo{db: db}
}

const hospitalColumns = `
	id, hospital_name, address, contact_phone, email,
	services, status, created_at, updated_at`

func (r *HospitalsRepo) Create(ctx context.Context, h hospitals.Registration) error {
	_, err := r.db.exec(ctx, `
		INSERT INTO hospital_registrations (`+hospitalColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		h.ID,
		h.HospitalName,
		h.Address,
		h.ContactPhone,
		h.Email,
		h.Services,
		string(h.Status),
		h.CreatedAt.UTC(),
		h.UpdatedAt.UTC(),
	)
	return err
}

func (r *HospitalsRepo) GetByID(ctx context.Context, id string) (hospitals.Registration, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return hospitals.Registration{}, ErrNotFound
	}
	h, err := scanHospital(r.db.queryRow(ctx, `SELECT `+hospitalColumns+` FROM hospital_registrations WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return hospitals.Registration{}, ErrNotFound
	}
	return h, err
}

func (r *HospitalsRepo) List(ctx context.Context, f hospitals.ListFilter) ([]hospitals.Registration, error) {
	q := `SELECT ` + hospitalColumns + ` FROM hospital_registrations`
	var args []any
	if len(f.Statuses) > 0 {
		vals := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			vals[i] = string(s)
		}
		clause, a := inClause("status", false, vals, 1)
		q += ` WHERE ` + clause
		args = a
	}
	q += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.db.query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]hospitals.Registration, 0)
	for rows.Next() {
		h, err := scanHospital(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (r *HospitalsRepo) UpdateStatus(ctx context.Context, id string, from, to hospitals.Status, at time.Time) error {
	return r.db.updateStatus(ctx, "hospital_registrations", id, string(from), string(to), at)
}

func scanHospital(s rowScanner) (hospitals.Registration, error) {
	var (
		h     hospitals.Registration
		state string
	)
	err := s.Scan(&h.ID, &h.HospitalName, &h.Address, &h.ContactPhone, &h.Email,
		&h.Services, &state, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		return hospitals.Registration{}, err
	}
	h.Status = hospitals.Status(state)
	return h, nil
}
