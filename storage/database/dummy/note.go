package dummydb

import (
	"context"
	"sort"

	"github.com/revisehub/revisehub/core/note"
)

var notePKCount int64

type noteRepository struct {
	db *noteTable
}

var _ note.Repository = (*noteRepository)(nil) // interface compliance check

func NewNoteRepository(db *DB) note.Repository {
	return &noteRepository{db: db.note}
}

func (repo *noteRepository) CreateNote(_ context.Context, n note.Note) (note.Note, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	notePKCount++
	n.ID = notePKCount
	repo.db.table[n.ID] = &n
	return n, nil
}

func (repo *noteRepository) QueryNotes(_ context.Context, userID int64, includeDeleted bool) ([]note.Note, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	notes := make([]note.Note, 0)
	for _, n := range repo.db.table {
		if n.UserID != userID {
			continue
		}
		if n.IsDeleted && !includeDeleted {
			continue
		}
		notes = append(notes, *n)
	}
	sort.Slice(notes, func(i, j int) bool { return notes[i].UpdatedAt.After(notes[j].UpdatedAt) })
	return notes, nil
}

func (repo *noteRepository) GetNote(_ context.Context, id, userID int64) (note.Note, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if n, ok := repo.db.table[id]; ok && n.UserID == userID {
		return *n, nil
	}
	return note.Note{}, note.ErrNotFound
}

func (repo *noteRepository) UpdateNote(_ context.Context, n note.Note) (note.Note, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[n.ID]; !ok {
		return note.Note{}, note.ErrNotFound
	}
	repo.db.table[n.ID] = &n
	return n, nil
}
