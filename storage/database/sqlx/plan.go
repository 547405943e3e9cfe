package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/revisehub/revisehub/core/plan"
)

type planRepository struct {
	db *sqlx.DB
}

var _ plan.Repository = (*planRepository)(nil) // interface compliance check

func NewPlanRepository(db *sqlx.DB) *planRepository {
	return &planRepository{db: db}
}

func (repo planRepository) CreatePlan(ctx context.Context, p plan.StudyPlan) (plan.StudyPlan, error) {
	query := `
		INSERT INTO study_plans (user_id, subject, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	err := repo.db.QueryRowContext(ctx, query, p.UserID, p.Subject, p.CreatedAt, p.UpdatedAt).Scan(&p.ID)
	if err != nil {
		return plan.StudyPlan{}, errors.Wrap(err, "creating study plan")
	}
	return p, nil
}

func (repo planRepository) QueryPlans(ctx context.Context, userID int64) ([]plan.StudyPlan, error) {
	plans := make([]plan.StudyPlan, 0)
	query := `SELECT * FROM study_plans WHERE user_id = $1 ORDER BY created_at`
	if err := repo.db.SelectContext(ctx, &plans, query, userID); err != nil {
		return nil, errors.Wrap(err, "querying study plans")
	}
	if len(plans) == 0 {
		return plans, nil
	}

	planIDs := make([]int64, 0, len(plans))
	byID := make(map[int64]*plan.StudyPlan, len(plans))
	for i := range plans {
		plans[i].Topics = make([]plan.Topic, 0)
		planIDs = append(planIDs, plans[i].ID)
		byID[plans[i].ID] = &plans[i]
	}

	var topics []plan.Topic
	query = `SELECT * FROM topics WHERE plan_id = ANY($1) ORDER BY plan_id, position`
	if err := repo.db.SelectContext(ctx, &topics, query, int64Array(planIDs)); err != nil {
		return nil, errors.Wrap(err, "querying topics")
	}
	for _, t := range topics {
		p := byID[t.PlanID]
		p.Topics = append(p.Topics, t)
	}
	return plans, nil
}

func (repo planRepository) GetPlan(ctx context.Context, id, userID int64) (plan.StudyPlan, error) {
	var p plan.StudyPlan
	err := repo.db.GetContext(ctx, &p, `SELECT * FROM study_plans WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return plan.StudyPlan{}, plan.ErrPlanNotFound
		}
		return plan.StudyPlan{}, errors.Wrap(err, "finding study plan")
	}

	p.Topics = make([]plan.Topic, 0)
	query := `SELECT * FROM topics WHERE plan_id = $1 ORDER BY position`
	if err = repo.db.SelectContext(ctx, &p.Topics, query, p.ID); err != nil {
		return plan.StudyPlan{}, errors.Wrap(err, "querying topics")
	}
	return p, nil
}

func (repo planRepository) TouchPlan(ctx context.Context, id int64, updatedAt time.Time) error {
	_, err := repo.db.ExecContext(ctx, `UPDATE study_plans SET updated_at = $2 WHERE id = $1`, id, updatedAt)
	return errors.Wrap(err, "touching study plan")
}

func (repo planRepository) CreateTopic(ctx context.Context, t plan.Topic) (plan.Topic, error) {
	query := `
		INSERT INTO topics (plan_id, name, status, due_date, priority, description, position, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`
	err := repo.db.QueryRowContext(
		ctx, query,
		t.PlanID, t.Name, t.Status, t.DueDate, t.Priority, t.Description, t.Position, t.CreatedAt, t.UpdatedAt,
	).Scan(&t.ID)
	if err != nil {
		return plan.Topic{}, errors.Wrap(err, "creating topic")
	}
	return t, nil
}

func (repo planRepository) UpdateTopic(ctx context.Context, t plan.Topic) (plan.Topic, error) {
	query := `
		UPDATE topics
		SET name = $2, status = $3, due_date = $4, priority = $5, description = $6, position = $7, updated_at = $8
		WHERE id = $1`
	res, err := repo.db.ExecContext(
		ctx, query,
		t.ID, t.Name, t.Status, t.DueDate, t.Priority, t.Description, t.Position, t.UpdatedAt,
	)
	if err != nil {
		return plan.Topic{}, errors.Wrap(err, "updating topic")
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return plan.Topic{}, plan.ErrTopicNotFound
	}
	return t, nil
}

func (repo planRepository) DeleteTopic(ctx context.Context, id int64) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM topics WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting topic")
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return plan.ErrTopicNotFound
	}
	return nil
}

func (repo planRepository) UpdateTopicPositions(ctx context.Context, planID int64, positions map[int64]int) error {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning reorder")
	}
	defer func() { _ = tx.Rollback() }()

	for id, pos := range positions {
		if _, err = tx.ExecContext(
			ctx, `UPDATE topics SET position = $3 WHERE id = $1 AND plan_id = $2`, id, planID, pos,
		); err != nil {
			return errors.Wrap(err, "updating topic position")
		}
	}
	return errors.Wrap(tx.Commit(), "committing reorder")
}
