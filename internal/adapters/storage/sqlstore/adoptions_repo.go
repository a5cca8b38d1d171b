package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"animal-rescue/internal/domain/adoptions"
)

type AdoptionsRepo struct {
	db *DB
}

func NewAdoptionsRepo(db *DB) *AdoptionsRepo {
	return &AdoptionsRepo{db: db}
}

const adoptionColumns = `
	id, animal_name, contact_name, contact_phone, contact_email,
	message, status, created_at, updated_at`

func (r *AdoptionsRepo) Create(ctx context.Context, a adoptions.Request) error {
	_, err := r.db.exec(ctx, `
		INSERT INTO adoption_requests (`+adoptionColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		a.ID,
		a.AnimalName,
		a.ContactName,
		a.ContactPhone,
		a.ContactEmail,
		a.Message,
		string(a.Status),
		a.CreatedAt.UTC(),
		a.UpdatedAt.UTC(),
	)
	return err
}

func (r *AdoptionsRepo) GetByID(ctx context.Context, id string) (adoptions.Request, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return adoptions.Request{}, ErrNotFound
	}
	a, err := scanAdoption(r.db.queryRow(ctx, `SELECT `+adoptionColumns+` FROM adoption_requests WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return adoptions.Request{}, ErrNotFound
	}
	return a, err
}

func (r *AdoptionsRepo) List(ctx context.Context) ([]adoptions.Request, error) {
	rows, err := r.db.query(ctx, `SELECT `+adoptionColumns+` FROM adoption_requests ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]adoptions.Request, 0)
	for rows.Next() {
		a, err := scanAdoption(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *AdoptionsRepo) UpdateStatus(ctx context.Context, id string, from, to adoptions.Status, at time.Time) error {
	return r.db.updateStatus(ctx, "adoption_requests", id, string(from), string(to), at)
}

func scanAdoption(s rowScanner) (adoptions.Request, error) {
	var (
		a     adoptions.Request
		state string
	)
	err := s.Scan(&a.ID, &a.AnimalName, &a.ContactName, &a.ContactPhone, &a.ContactEmail,
		&a.Message, &state, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return adoptions.Request{}, err
	}
	a.Status = adoptions.Status(state)
	return a, nil
}
