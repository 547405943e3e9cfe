package plan

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/revisehub/revisehub/core"
)

// Topic statuses
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
)

// Topic priorities
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

type StudyPlan struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	Subject   string    `json:"subject" db:"subject"`
	Topics    []Topic   `json:"topics" db:"-"`
	CreatedAt time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"` // UTC
}

// Topic is a single revision item inside a StudyPlan. Its identity is the
// surrogate ID; reordering only ever changes Position.
type Topic struct {
	ID          int64     `json:"id" db:"id"`
	PlanID      int64     `json:"plan_id" db:"plan_id"`
	Name        string    `json:"name" db:"name"`
	Status      string    `json:"status" db:"status"`
	DueDate     null.Time `json:"due_date" db:"due_date"`
	Priority    string    `json:"priority" db:"priority"`
	Description string    `json:"description" db:"description"`
	Position    int       `json:"position" db:"position"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"` // UTC
}

func (t Topic) Completed() bool { return t.Status == StatusCompleted }

// NewStudyPlan contains information needed to create a new StudyPlan.
type NewStudyPlan struct {
	Subject string     `json:"subject" validate:"required"`
	Topics  []NewTopic `json:"topics" validate:"omitempty,dive"`
}

func (np *NewStudyPlan) Validate(validate *validator.Validate) error {
	np.Subject = core.CleanString(np.Subject)
	for i := range np.Topics {
		np.Topics[i].clean()
	}
	return validate.Struct(np)
}

// NewTopic contains information needed to add a Topic to a StudyPlan.
// Omitted fields take the topic defaults: status pending, no due date,
// medium priority, empty description.
type NewTopic struct {
	Name        string    `json:"name" validate:"required"`
	Status      string    `json:"status" validate:"omitempty,oneof=pending completed"`
	DueDate     null.Time `json:"due_date"`
	Priority    string    `json:"priority" validate:"omitempty,oneof=low medium high"`
	Description string    `json:"description"`
}

func (nt *NewTopic) clean() {
	nt.Name = core.CleanString(nt.Name)
	if nt.Status == "" {
		nt.Status = StatusPending
	}
	if nt.Priority == "" {
		nt.Priority = PriorityMedium
	}
}

func (nt *NewTopic) Validate(validate *validator.Validate) error {
	nt.clean()
	return validate.Struct(nt)
}

// UpdateTopic defines what information may be provided to modify an existing
// Topic. Absent fields are left untouched, not reset to defaults.
type UpdateTopic struct {
	Name        *string    `json:"name"`
	Status      *string    `json:"status" validate:"omitempty,oneof=pending completed"`
	DueDate     *null.Time `json:"due_date"`
	Priority    *string    `json:"priority" validate:"omitempty,oneof=low medium high"`
	Description *string    `json:"description"`
}

func (ut *UpdateTopic) Validate(validate *validator.Validate) error {
	if ut.Name != nil {
		name := core.CleanString(*ut.Name)
		if name == "" {
			return core.NewValidationError(nil, core.FieldError{Field: "name", Error: "this field is required"})
		}
		ut.Name = &name
	}
	return validate.Struct(ut)
}

// ReorderTopics carries the full, reordered topic id list for a plan.
// It must be a permutation of the plan's current topic ids.
type ReorderTopics struct {
	TopicIDs []int64 `json:"topic_ids" validate:"required,min=1"`
}

func (rt ReorderTopics) Validate(validate *validator.Validate) error {
	return validate.Struct(rt)
}
