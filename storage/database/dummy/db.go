package dummydb

import (
	"sync"

	"github.com/revisehub/revisehub/core/note"
	"github.com/revisehub/revisehub/core/plan"
	"github.com/revisehub/revisehub/core/user"
)

type (
	DB struct {
		user  *userTable
		note  *noteTable
		plan  *planTable
		topic *topicTable
	}

	userTable struct {
		sync.RWMutex
		table map[int64]*user.User
	}

	noteTable struct {
		sync.RWMutex
		table map[int64]*note.Note
	}

	planTable struct {
		sync.RWMutex
		table map[int64]*plan.StudyPlan
	}

	topicTable struct {
		sync.RWMutex
		table map[int64]*plan.Topic
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:  &userTable{table: make(map[int64]*user.User)},
		note:  &noteTable{table: make(map[int64]*note.Note)},
		plan:  &planTable{table: make(map[int64]*plan.StudyPlan)},
		topic: &topicTable{table: make(map[int64]*plan.Topic)},
	}
	return db, nil
}
