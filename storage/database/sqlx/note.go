package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/revisehub/revisehub/core/note"
)

type noteRepository struct {
	db *sqlx.DB
}

var _ note.Repository = (*noteRepository)(nil) // interface compliance check

func NewNoteRepository(db *sqlx.DB) *noteRepository {
	return &noteRepository{db: db}
}

func (repo noteRepository) CreateNote(ctx context.Context, n note.Note) (note.Note, error) {
	query := `
		INSERT INTO notes (user_id, title, description, category, file_key, favorite, is_deleted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`
	err := repo.db.QueryRowContext(
		ctx, query,
		n.UserID, n.Title, n.Description, n.Category, n.FileKey, n.Favorite, n.IsDeleted, n.CreatedAt, n.UpdatedAt,
	).Scan(&n.ID)
	if err != nil {
		return note.Note{}, errors.Wrap(err, "creating note")
	}
	return n, nil
}

func (repo noteRepository) QueryNotes(ctx context.Context, userID int64, includeDeleted bool) ([]note.Note, error) {
	query := `
		SELECT * FROM notes
		WHERE user_id = $1 AND (is_deleted = FALSE OR $2)
		ORDER BY updated_at DESC`
	notes := make([]note.Note, 0)
	if err := repo.db.SelectContext(ctx, &notes, query, userID, includeDeleted); err != nil {
		return nil, errors.Wrap(err, "querying notes")
	}
	return notes, nil
}

func (repo noteRepository) GetNote(ctx context.Context, id, userID int64) (note.Note, error) {
	var n note.Note
	err := repo.db.GetContext(ctx, &n, `SELECT * FROM notes WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return note.Note{}, note.ErrNotFound
		}
		return note.Note{}, errors.Wrap(err, "finding note")
	}
	return n, nil
}

func (repo noteRepository) UpdateNote(ctx context.Context, n note.Note) (note.Note, error) {
	query := `
		UPDATE notes
		SET title = $2, description = $3, category = $4, favorite = $5, is_deleted = $6, updated_at = $7
		WHERE id = $1`
	res, err := repo.db.ExecContext(
		ctx, query,
		n.ID, n.Title, n.Description, n.Category, n.Favorite, n.IsDeleted, n.UpdatedAt,
	)
	if err != nil {
		return note.Note{}, errors.Wrap(err, "updating note")
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return note.Note{}, note.ErrNotFound
	}
	return n, nil
}
