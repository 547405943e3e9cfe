package note

import (
	"io"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/revisehub/revisehub/core"
)

type Note struct {
	ID          int64     `json:"id" db:"id"`
	UserID      int64     `json:"user_id" db:"user_id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Category    string    `json:"category" db:"category"`
	FileKey     string    `json:"-" db:"file_key"`
	FileURL     string    `json:"file_url" db:"-"` // resolved from FileKey at read time
	Favorite    bool      `json:"favorite" db:"favorite"`
	IsDeleted   bool      `json:"is_deleted" db:"is_deleted"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"` // UTC
}

// NewNote contains information needed to upload a new Note.
// File and FileName come from the multipart form, not the JSON body.
type NewNote struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Category    string `json:"category"`

	FileName    string    `json:"-" validate:"required"`
	ContentType string    `json:"-"`
	File        io.Reader `json:"-"`
}

func (nn *NewNote) Validate(validate *validator.Validate) error {
	nn.Title = core.CleanString(nn.Title)
	nn.Category = core.CleanString(nn.Category)
	if nn.Title == "" || nn.File == nil {
		return core.NewValidationError(ErrTitleAndFileRequired)
	}
	return validate.Struct(nn)
}

// UpdateNote defines what information may be provided to modify an existing
// Note. Absent fields are left untouched.
type UpdateNote struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	Favorite    *bool   `json:"favorite"`
}

func (un *UpdateNote) Validate(validate *validator.Validate) error {
	if un.Title != nil {
		title := core.CleanString(*un.Title)
		if title == "" {
			return core.NewValidationError(nil, core.FieldError{Field: "title", Error: "this field is required"})
		}
		un.Title = &title
	}
	return validate.Struct(un)
}

// MonthlyStats reports note-upload counts for the current and previous
// calendar months. Soft-deleted notes count so historical totals stay stable.
type MonthlyStats struct {
	ThisMonth int `json:"thisMonth"`
	PrevMonth int `json:"prevMonth"`
}
