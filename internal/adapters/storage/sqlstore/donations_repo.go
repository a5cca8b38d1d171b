package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"animal-rescue/internal/domain/donations"
)

type DonationsRepo struct {
	db *DB
}

func NewDonationsRepo(db *DB) *DonationsRepo {
	return &DonationsRepo{db: db}
}

const donationColumns = `
	id, amount, contact_name, contact_phone, contact_email,
	message, status, created_at, updated_at`

func (r *DonationsRepo) Create(ctx context.Context, d donations.Request) error {
	_, err := r.db.exec(ctx, `
		INSERT INTO donation_requests (`+donationColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		d.ID,
		d.Amount,
		d.ContactName,
		d.ContactPhone,
		d.ContactEmail,
		d.Message,
		string(d.Status),
		d.CreatedAt.UTC(),
		d.UpdatedAt.UTC(),
	)
	return err
}

func (r *DonationsRepo) GetByID(ctx context.Context, id string) (donations.Request, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return donations.Request{}, ErrNotFound
	}
	d, err := scanDonation(r.db.queryRow(ctx, `SELECT `+donationColumns+` FROM donation_requests WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return donations.Request{}, ErrNotFound
	}
	return d, err
}

func (r *DonationsRepo) List(ctx context.Context) ([]donations.Request, error) {
	rows, err := r.db.query(ctx, `SELECT `+donationColumns+` FROM donation_requests ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]donations.Request, 0)
	for rows.Next() {
		d, err := scanDonation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *DonationsRepo) UpdateStatus(ctx context.Context, id string, from, to donations.Status, at time.Time) error {
	return r.db.updateStatus(ctx, "donation_requests", id, string(from), string(to), at)
}

func scanDonation(s rowScanner) (donations.Request, error) {
	var (
		d     donations.Request
		state string
	)
	err := s.Scan(&d.ID, &d.Amount, &d.ContactName, &d.ContactPhone, &d.ContactEmail,
		&d.Message, &state, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return donations.Request{}, err
	}
	d.Status = donations.Status(state)
	return d, nil
}
