package notes

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Create(ctx context.Context, note Note) error {
	const query = `
INSERT INTO notes (id, paper_id, user_id, content, page_number, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.DB.ExecContext(ctx, query,
		note.ID,
		note.PaperID,
		note.UserID,
		note.Content,
		nullableInt(note.PageNumber),
		note.CreatedAt,
		note.UpdatedAt,
	)
	return err
}

func (r *PGRepo) ListByPaper(ctx context.Context, userID, paperID string) ([]Note, error) {
	const query = `
SELECT id, paper_id, user_id, content, page_number, created_at, updated_at
FROM notes
WHERE user_id = $1 AND paper_id = $2
ORDER BY created_at ASC`
	rows, err := r.DB.QueryContext(ctx, query, userID, paperID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]Note, 0)
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, note)
	}
	return result, rows.Err()
}

func (r *PGRepo) GetByID(ctx context.Context, userID, noteID string) (Note, error) {
	const query = `
SELECT id, paper_id, user_id, content, page_number, created_at, updated_at
FROM notes
WHERE user_id = $1 AND id = $2
LIMIT 1`
	note, err := scanNote(r.DB.QueryRowContext(ctx, query, userID, noteID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Note{}, ErrNotFound
		}
		return Note{}, err
	}
	return note, nil
}

func (r *PGRepo) Update(ctx context.Context, note Note) error {
	const query = `
UPDATE notes
SET content = $1, page_number = $2, updated_at = $3
WHERE user_id = $4 AND id = $5`
	res, err := r.DB.ExecContext(ctx, query,
		note.Content,
		nullableInt(note.PageNumber),
		note.UpdatedAt,
		note.UserID,
		note.ID,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) Delete(ctx context.Context, userID, noteID string) error {
	const query = `DELETE FROM notes WHERE user_id = $1 AND id = $2`
	res, err := r.DB.ExecContext(ctx, query, userID, noteID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountByUser returns how many notes a user owns.
func (r *PGRepo) CountByUser(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM notes WHERE user_id = $1`, userID).Scan(&count)
	return count, err
}

// ClaimGuest reassigns all of a guest's notes to the authenticated user.
func (r *PGRepo) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error) {
	const query = `UPDATE notes SET user_id = $1 WHERE user_id = $2`
	res, err := r.DB.ExecContext(ctx, query, authedUserID, guestUserID)
	if err != nil {
		return 0, err
	}
	affected, _ := res.RowsAffected()
	return int(affected), nil
}

// DeleteAllByUser removes every note the user owns.
func (r *PGRepo) DeleteAllByUser(ctx context.Context, userID string) (int, error) {
	const query = `DELETE FROM notes WHERE user_id = $1`
	res, err := r.DB.ExecContext(ctx, query, userID)
	if err != nil {
		return 0, err
	}
	affected, _ := res.RowsAffected()
	return int(affected), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNote(row rowScanner) (Note, error) {
	var note Note
	var page sql.NullInt64
	if err := row.Scan(
		&note.ID,
		&note.PaperID,
		&note.UserID,
		&note.Content,
		&page,
		&note.CreatedAt,
		&note.UpdatedAt,
	); err != nil {
		return Note{}, err
	}
	if page.Valid {
		v := int(page.Int64)
		note.PageNumber = &v
	}
	return note, nil
}

func nullableInt(value *int) any {
	if value == nil {
		return nil
	}
	return *value
}
