package dummydb

import (
	"context"
	"sort"
	"time"

	"github.com/revisehub/revisehub/core/plan"
)

var (
	planPKCount  int64
	topicPKCount int64
)

type planRepository struct {
	db     *planTable
	topics *topicTable
}

var _ plan.Repository = (*planRepository)(nil) // interface compliance check

func NewPlanRepository(db *DB) plan.Repository {
	return &planRepository{db: db.plan, topics: db.topic}
}

func (repo *planRepository) planTopics(planID int64) []plan.Topic {
	topics := make([]plan.Topic, 0)
	for _, t := range repo.topics.table {
		if t.PlanID == planID {
			topics = append(topics, *t)
		}
	}
	sort.Slice(topics, func(i, j int) bool { return topics[i].Position < topics[j].Position })
	return topics
}

func (repo *planRepository) CreatePlan(_ context.Context, p plan.StudyPlan) (plan.StudyPlan, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	planPKCount++
	p.ID = planPKCount
	stored := p
	stored.Topics = nil
	repo.db.table[p.ID] = &stored
	return p, nil
}

func (repo *planRepository) QueryPlans(_ context.Context, userID int64) ([]plan.StudyPlan, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	repo.topics.RLock()
	defer repo.topics.RUnlock()

	plans := make([]plan.StudyPlan, 0)
	for _, p := range repo.db.table {
		if p.UserID != userID {
			continue
		}
		cp := *p
		cp.Topics = repo.planTopics(cp.ID)
		plans = append(plans, cp)
	}
	sort.Slice(plans, func(i, j int) bool { return plans[i].ID < plans[j].ID })
	return plans, nil
}

func (repo *planRepository) GetPlan(_ context.Context, id, userID int64) (plan.StudyPlan, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	repo.topics.RLock()
	defer repo.topics.RUnlock()

	if p, ok := repo.db.table[id]; ok && p.UserID == userID {
		cp := *p
		cp.Topics = repo.planTopics(cp.ID)
		return cp, nil
	}
	return plan.StudyPlan{}, plan.ErrPlanNotFound
}

func (repo *planRepository) TouchPlan(_ context.Context, id int64, updatedAt time.Time) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	p, ok := repo.db.table[id]
	if !ok {
		return plan.ErrPlanNotFound
	}
	p.UpdatedAt = updatedAt
	return nil
}

func (repo *planRepository) CreateTopic(_ context.Context, t plan.Topic) (plan.Topic, error) {
	repo.topics.Lock()
	defer repo.topics.Unlock()

	topicPKCount++
	t.ID = topicPKCount
	repo.topics.table[t.ID] = &t
	return t, nil
}

func (repo *planRepository) UpdateTopic(_ context.Context, t plan.Topic) (plan.Topic, error) {
	repo.topics.Lock()
	defer repo.topics.Unlock()

	if _, ok := repo.topics.table[t.ID]; !ok {
		return plan.Topic{}, plan.ErrTopicNotFound
	}
	repo.topics.table[t.ID] = &t
	return t, nil
}

func (repo *planRepository) DeleteTopic(_ context.Context, id int64) error {
	repo.topics.Lock()
	defer repo.topics.Unlock()

	if _, ok := repo.topics.table[id]; !ok {
		return plan.ErrTopicNotFound
	}
	delete(repo.topics.table, id)
	return nil
}

func (repo *planRepository) UpdateTopicPositions(_ context.Context, planID int64, positions map[int64]int) error {
	repo.topics.Lock()
	defer repo.topics.Unlock()

	for id, pos := range positions {
		if t, ok := repo.topics.table[id]; ok && t.PlanID == planID {
			t.Position = pos
		}
	}
	return nil
}
