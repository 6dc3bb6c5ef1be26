package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"acolhimento/internal/domain"
	"acolhimento/internal/ports"
)

const contactColumns = `id, name, phone, email, reason, contact_date, sync_status, synced_at, sync_error, extra_data, created_at, updated_at`

func scanContact(row pgx.Row) (domain.Contact, error) {
	var c domain.Contact
	err := row.Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.Reason, &c.ContactDate,
		&c.SyncStatus, &c.SyncedAt, &c.SyncError, &c.ExtraData, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// ContactRepository

func (db *DB) Create(ctx context.Context, c domain.Contact) (domain.Contact, error) {
	row := db.Pool.QueryRow(ctx, `
        INSERT INTO contacts (name, phone, email, reason, contact_date, sync_status, extra_data)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING `+contactColumns+`
    `, c.Name, c.Phone, c.Email, c.Reason, c.ContactDate, c.SyncStatus, c.ExtraData)
	return scanContact(row)
}

func (db *DB) Get(ctx context.Context, id int64) (domain.Contact, bool, error) {
	c, err := scanContact(db.Pool.QueryRow(ctx, `SELECT `+contactColumns+` FROM contacts WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return c, false, nil
	}
	return c, err == nil, err
}

func (db *DB) GetByPhone(ctx context.Context, phone string) (domain.Contact, bool, error) {
	c, err := scanContact(db.Pool.QueryRow(ctx, `SELECT `+contactColumns+` FROM contacts WHERE phone = $1`, phone))
	if errors.Is(err, pgx.ErrNoRows) {
		return c, false, nil
	}
	return c, err == nil, err
}

func (db *DB) List(ctx context.Context, f ports.ContactFilter) ([]domain.Contact, error) {
	var (
		where []string
		args  []any
	)
	if f.Reason != "" {
		args = append(args, "%"+f.Reason+"%")
		where = append(where, fmt.Sprintf("reason ILIKE $%d", len(args)))
	}
	if f.SyncStatus != "" {
		args = append(args, f.SyncStatus)
		where = append(where, fmt.Sprintf("sync_status = $%d", len(args)))
	}

	q := `SELECT ` + contactColumns + ` FROM contacts`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	args = append(args, f.Limit, f.Offset)
	q += fmt.Sprintf(` ORDER BY id LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := db.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (db *DB) Update(ctx context.Context, c domain.Contact) (domain.Contact, bool, error) {
	row := db.Pool.QueryRow(ctx, `
        UPDATE contacts
        SET name = $2, phone = $3, email = $4, reason = $5, contact_date = $6, updated_at = now()
        WHERE id = $1
        RETURNING `+contactColumns+`
    `, c.ID, c.Name, c.Phone, c.Email, c.Reason, c.ContactDate)
	updated, err := scanContact(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return updated, false, nil
	}
	return updated, err == nil, err
}

func (db *DB) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM contacts WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (db *DB) Count(ctx context.Context) (int64, error) {
	var n int64
	err := db.Pool.QueryRow(ctx, `SELECT count(*) FROM contacts`).Scan(&n)
	return n, err
}
