package papers

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const paperColumns = `id, user_id, title, authors, analysis, keywords, category, publication_year, journal, doi, page_count, file_name, storage_provider, storage_key, size_bytes, uploaded_at, updated_at`

func (r *PGRepo) Create(ctx context.Context, paper Paper) error {
	const query = `
INSERT INTO papers (` + paperColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`

	analysis, err := EncodeAnalysisBlob(paper.Summary, paper.KeyFindings)
	if err != nil {
		return fmt.Errorf("encode analysis: %w", err)
	}
	keywords, err := encodeKeywords(paper.Keywords)
	if err != nil {
		return fmt.Errorf("encode keywords: %w", err)
	}

	_, err = r.DB.ExecContext(
		ctx,
		query,
		paper.ID,
		paper.UserID,
		paper.Title,
		nullString(paper.Authors),
		analysis,
		keywords,
		paper.Category,
		nullInt(paper.PublicationYear),
		nullString(paper.Journal),
		nullString(paper.DOI),
		paper.PageCount,
		paper.FileName,
		paper.StorageProvider,
		paper.StorageKey,
		paper.SizeBytes,
		paper.UploadedAt,
		paper.UpdatedAt,
	)
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, userID, paperID string) (Paper, error) {
	const query = `
SELECT ` + paperColumns + `
FROM papers
WHERE id = $1 AND user_id = $2`

	row := r.DB.QueryRowContext(ctx, query, paperID, userID)
	paper, err := scanPaper(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Paper{}, ErrNotFound
		}
		return Paper{}, err
	}
	return paper, nil
}

func (r *PGRepo) List(ctx context.Context, userID string, filter ListFilter) ([]Paper, error) {
	query := `
SELECT ` + paperColumns + `
FROM papers
WHERE user_id = $1`
	args := []any{userID}

	if filter.Category != "" {
		args = append(args, filter.Category)
		query += fmt.Sprintf(" AND category = $%d", len(args))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+search+"%")
		n := len(args)
		query += fmt.Sprintf(" AND (title ILIKE $%d OR authors ILIKE $%d OR analysis ILIKE $%d OR keywords ILIKE $%d)", n, n, n, n)
	}

	query += " ORDER BY " + sortColumn(filter.SortBy) + " " + sortDirection(filter.SortOrder)

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	papers := []Paper{}
	for rows.Next() {
		paper, err := scanPaper(rows)
		if err != nil {
			return nil, err
		}
		papers = append(papers, paper)
	}
	return papers, rows.Err()
}

func (r *PGRepo) Update(ctx context.Context, paper Paper) error {
	const query = `
UPDATE papers
SET title = $1, authors = $2, analysis = $3, keywords = $4, category = $5,
    publication_year = $6, journal = $7, doi = $8, updated_at = $9
WHERE id = $10 AND user_id = $11`

	analysis, err := EncodeAnalysisBlob(paper.Summary, paper.KeyFindings)
	if err != nil {
		return fmt.Errorf("encode analysis: %w", err)
	}
	keywords, err := encodeKeywords(paper.Keywords)
	if err != nil {
		return fmt.Errorf("encode keywords: %w", err)
	}

	res, err := r.DB.ExecContext(
		ctx,
		query,
		paper.Title,
		nullString(paper.Authors),
		analysis,
		keywords,
		paper.Category,
		nullInt(paper.PublicationYear),
		nullString(paper.Journal),
		nullString(paper.DOI),
		paper.UpdatedAt,
		paper.ID,
		paper.UserID,
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

func (r *PGRepo) Delete(ctx context.Context, userID, paperID string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM papers WHERE id = $1 AND user_id = $2`, paperID, userID)
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

func (r *PGRepo) DeleteAllByUser(ctx context.Context, userID string) ([]Paper, error) {
	const query = `
DELETE FROM papers
WHERE user_id = $1
RETURNING ` + paperColumns

	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	removed := []Paper{}
	for rows.Next() {
		paper, err := scanPaper(rows)
		if err != nil {
			return nil, err
		}
		removed = append(removed, paper)
	}
	return removed, rows.Err()
}

// CountByUser returns how many papers a user owns.
func (r *PGRepo) CountByUser(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM papers WHERE user_id = $1`, userID).Scan(&count)
	return count, err
}

// ClaimGuest reassigns all of a guest's papers to the authenticated user.
func (r *PGRepo) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error) {
	const query = `UPDATE papers SET user_id = $1 WHERE user_id = $2`
	res, err := r.DB.ExecContext(ctx, query, authedUserID, guestUserID)
	if err != nil {
		return 0, err
	}
	affected, _ := res.RowsAffected()
	return int(affected), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPaper(row rowScanner) (Paper, error) {
	var (
		paper    Paper
		authors  sql.NullString
		analysis string
		keywords string
		year     sql.NullInt64
		journal  sql.NullString
		doi      sql.NullString
	)
	err := row.Scan(
		&paper.ID,
		&paper.UserID,
		&paper.Title,
		&authors,
		&analysis,
		&keywords,
		&paper.Category,
		&year,
		&journal,
		&doi,
		&paper.PageCount,
		&paper.FileName,
		&paper.StorageProvider,
		&paper.StorageKey,
		&paper.SizeBytes,
		&paper.UploadedAt,
		&paper.UpdatedAt,
	)
	if err != nil {
		return Paper{}, err
	}
	paper.Authors = authors.String
	paper.Journal = journal.String
	paper.DOI = doi.String
	if year.Valid {
		y := int(year.Int64)
		paper.PublicationYear = &y
	}
	paper.Summary, paper.KeyFindings = DecodeAnalysisBlob(analysis)
	paper.Keywords = decodeKeywords(keywords)
	return paper, nil
}

func encodeKeywords(keywords []string) (string, error) {
	if keywords == nil {
		keywords = []string{}
	}
	data, err := json.Marshal(keywords)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeKeywords(raw string) []string {
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil || out == nil {
		return []string{}
	}
	return out
}

func nullString(s string) sql.NullString {
	if strings.TrimSpace(s) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullInt(n *int) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*n), Valid: true}
}

func sortColumn(sortBy string) string {
	switch sortBy {
	case "title":
		return "title"
	case "category":
		return "category"
	default:
		return "uploaded_at"
	}
}

func sortDirection(order string) string {
	if strings.EqualFold(order, "asc") {
		return "ASC"
	}
	return "DESC"
}

var _ Repo = (*PGRepo)(nil)
