package plan

import (
	"context"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/revisehub/revisehub/core"
)

var (
	// errors
	ErrPlanNotFound    = errors.New("study plan not found")
	ErrTopicNotFound   = errors.New("topic not found")
	errNotAPermutation = errors.New("topic ids must be a permutation of the plan's topics")
)

type (
	Repository interface {
		CreatePlan(ctx context.Context, p StudyPlan) (StudyPlan, error)
		// QueryPlans returns the owner's plans with topics ordered by position.
		QueryPlans(ctx context.Context, userID int64) ([]StudyPlan, error)
		// GetPlan filters by id AND owner in one lookup.
		GetPlan(ctx context.Context, id, userID int64) (StudyPlan, error)
		TouchPlan(ctx context.Context, id int64, updatedAt time.Time) error
		CreateTopic(ctx context.Context, t Topic) (Topic, error)
		UpdateTopic(ctx context.Context, t Topic) (Topic, error)
		DeleteTopic(ctx context.Context, id int64) error
		// UpdateTopicPositions rewrites only the position of each given topic.
		UpdateTopicPositions(ctx context.Context, planID int64, positions map[int64]int) error
	}

	Service interface {
		Create(ctx context.Context, userID int64, np NewStudyPlan) (StudyPlan, error)
		Query(ctx context.Context, userID int64) ([]StudyPlan, error)
		Get(ctx context.Context, id, userID int64) (StudyPlan, error)
		AddTopic(ctx context.Context, planID, userID int64, nt NewTopic) (StudyPlan, error)
		UpdateTopic(ctx context.Context, planID, topicID, userID int64, ut UpdateTopic) (StudyPlan, error)
		DeleteTopic(ctx context.Context, planID, topicID, userID int64) (StudyPlan, error)
		// Reorder applies a pure permutation of the plan's topics: identifiers
		// and all other fields are preserved, only positions change.
		Reorder(ctx context.Context, planID, userID int64, rt ReorderTopics) (StudyPlan, error)
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) Create(ctx context.Context, userID int64, np NewStudyPlan) (StudyPlan, error) {
	now := time.Now().UTC()
	p := StudyPlan{
		UserID:    userID,
		Subject:   np.Subject,
		CreatedAt: now,
		UpdatedAt: now,
	}
	p, err := svc.repo.CreatePlan(ctx, p)
	if err != nil {
		return StudyPlan{}, err
	}

	for i, nt := range np.Topics {
		t, err := svc.repo.CreateTopic(ctx, newTopic(p.ID, i, nt, now))
		if err != nil {
			return StudyPlan{}, errors.Wrap(err, "creating plan topic")
		}
		p.Topics = append(p.Topics, t)
	}
	return p, nil
}

func (svc *service) Query(ctx context.Context, userID int64) ([]StudyPlan, error) {
	return svc.repo.QueryPlans(ctx, userID)
}

func (svc *service) Get(ctx context.Context, id, userID int64) (StudyPlan, error) {
	return svc.repo.GetPlan(ctx, id, userID)
}

func (svc *service) AddTopic(ctx context.Context, planID, userID int64, nt NewTopic) (StudyPlan, error) {
	p, err := svc.repo.GetPlan(ctx, planID, userID)
	if err != nil {
		return StudyPlan{}, err
	}

	now := time.Now().UTC()
	t, err := svc.repo.CreateTopic(ctx, newTopic(p.ID, len(p.Topics), nt, now))
	if err != nil {
		return StudyPlan{}, err
	}
	p.Topics = append(p.Topics, t)

	p.UpdatedAt = now
	if err = svc.repo.TouchPlan(ctx, p.ID, now); err != nil {
		return StudyPlan{}, err
	}
	return p, nil
}

func (svc *service) UpdateTopic(ctx context.Context, planID, topicID, userID int64, ut UpdateTopic) (StudyPlan, error) {
	p, err := svc.repo.GetPlan(ctx, planID, userID)
	if err != nil {
		return StudyPlan{}, err
	}
	i, ok := findTopic(p.Topics, topicID)
	if !ok {
		return StudyPlan{}, ErrTopicNotFound
	}

	t := p.Topics[i]
	if ut.Name != nil {
		t.Name = *ut.Name
	}
	if ut.Status != nil {
		t.Status = *ut.Status
	}
	if ut.DueDate != nil {
		t.DueDate = *ut.DueDate
	}
	if ut.Priority != nil {
		t.Priority = *ut.Priority
	}
	if ut.Description != nil {
		t.Description = *ut.Description
	}
	now := time.Now().UTC()
	t.UpdatedAt = now

	if t, err = svc.repo.UpdateTopic(ctx, t); err != nil {
		return StudyPlan{}, err
	}
	p.Topics[i] = t

	p.UpdatedAt = now
	if err = svc.repo.TouchPlan(ctx, p.ID, now); err != nil {
		return StudyPlan{}, err
	}
	return p, nil
}

func (svc *service) DeleteTopic(ctx context.Context, planID, topicID, userID int64) (StudyPlan, error) {
	p, err := svc.repo.GetPlan(ctx, planID, userID)
	if err != nil {
		return StudyPlan{}, err
	}
	i, ok := findTopic(p.Topics, topicID)
	if !ok {
		return StudyPlan{}, ErrTopicNotFound
	}

	if err = svc.repo.DeleteTopic(ctx, topicID); err != nil {
		return StudyPlan{}, err
	}
	p.Topics = append(p.Topics[:i], p.Topics[i+1:]...)

	now := time.Now().UTC()
	p.UpdatedAt = now
	if err = svc.repo.TouchPlan(ctx, p.ID, now); err != nil {
		return StudyPlan{}, err
	}
	return p, nil
}

func (svc *service) Reorder(ctx context.Context, planID, userID int64, rt ReorderTopics) (StudyPlan, error) {
	p, err := svc.repo.GetPlan(ctx, planID, userID)
	if err != nil {
		return StudyPlan{}, err
	}
	if !isPermutation(p.Topics, rt.TopicIDs) {
		return StudyPlan{}, core.NewValidationError(errNotAPermutation, core.FieldError{
			Field: "topic_ids", Error: errNotAPermutation.Error(),
		})
	}

	positions := make(map[int64]int, len(rt.TopicIDs))
	for pos, id := range rt.TopicIDs {
		positions[id] = pos
	}
	if err = svc.repo.UpdateTopicPositions(ctx, p.ID, positions); err != nil {
		return StudyPlan{}, err
	}

	for i := range p.Topics {
		p.Topics[i].Position = positions[p.Topics[i].ID]
	}
	sort.SliceStable(p.Topics, func(i, j int) bool { return p.Topics[i].Position < p.Topics[j].Position })

	now := time.Now().UTC()
	p.UpdatedAt = now
	if err = svc.repo.TouchPlan(ctx, p.ID, now); err != nil {
		return StudyPlan{}, err
	}
	return p, nil
}

func newTopic(planID int64, pos int, nt NewTopic, now time.Time) Topic {
	return Topic{
		PlanID:      planID,
		Name:        nt.Name,
		Status:      nt.Status,
		DueDate:     nt.DueDate,
		Priority:    nt.Priority,
		Description: nt.Description,
		Position:    pos,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func findTopic(topics []Topic, id int64) (int, bool) {
	for i, t := range topics {
		if t.ID == id {
			return i, true
		}
	}
	return 0, false
}

// isPermutation checks that the id multiset matches the plan's topics exactly.
func isPermutation(topics []Topic, ids []int64) bool {
	if len(topics) != len(ids) {
		return false
	}
	seen := make(map[int64]int, len(topics))
	for _, t := range topics {
		seen[t.ID]++
	}
	for _, id := range ids {
		seen[id]--
		if seen[id] < 0 {
			return false
		}
	}
	return true
}
