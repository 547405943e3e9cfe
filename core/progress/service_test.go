package progress

import (
	"testing"
	"time"

	"github.com/revisehub/revisehub/core/note"
	"github.com/revisehub/revisehub/core/plan"
)

func done(id int64, updatedAt time.Time) plan.Topic {
	return plan.Topic{ID: id, Status: plan.StatusCompleted, UpdatedAt: updatedAt}
}

func pending(id int64) plan.Topic {
	return plan.Topic{ID: id, Status: plan.StatusPending}
}

func TestCompletionPercent(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name   string
		topics []plan.Topic
		want   int
	}{
		{name: "no topics", topics: nil, want: 0},
		{name: "none done", topics: []plan.Topic{pending(1), pending(2)}, want: 0},
		{name: "half done", topics: []plan.Topic{done(1, now), pending(2)}, want: 50},
		{name: "all done", topics: []plan.Topic{done(1, now), done(2, now)}, want: 100},
		{name: "one third rounds down", topics: []plan.Topic{done(1, now), pending(2), pending(3)}, want: 33},
		{name: "two thirds rounds up", topics: []plan.Topic{done(1, now), done(2, now), pending(3)}, want: 67},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CompletionPercent(tt.topics); got != tt.want {
				t.Errorf("CompletionPercent() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestOverallPercent(t *testing.T) {
	now := time.Now()
	plans := []plan.StudyPlan{
		{ID: 1, Topics: []plan.Topic{done(1, now), done(2, now), done(3, now)}},
		{ID: 2, Topics: []plan.Topic{pending(4)}},
	}
	if got := OverallPercent(plans); got != 75 {
		t.Errorf("OverallPercent() = %d, want 75", got)
	}
	if got := OverallPercent(nil); got != 0 {
		t.Errorf("OverallPercent(nil) = %d, want 0", got)
	}
}

func TestSubjectProgress(t *testing.T) {
	now := time.Now()
	plans := []plan.StudyPlan{
		{ID: 1, Subject: "Maths", Topics: []plan.Topic{done(1, now), pending(2), pending(3)}},
		{ID: 2, Subject: "Physics", Topics: []plan.Topic{done(4, now), done(5, now)}},
		{ID: 3, Subject: "Chemistry"},
	}

	subjects, weak := subjectProgress(plans)
	if len(subjects) != 3 {
		t.Fatalf("got %d subjects, want 3", len(subjects))
	}
	if s := subjects[0]; !s.Weak || s.Percent != 33 || s.Completed != 1 || s.Total != 3 {
		t.Errorf("Maths = %+v; want weak, 33%%, 1/3", s)
	}
	if s := subjects[1]; s.Weak || s.Percent != 100 {
		t.Errorf("Physics = %+v; want strong, 100%%", s)
	}
	// a plan with no topics is never weak
	if s := subjects[2]; s.Weak || s.Percent != 0 {
		t.Errorf("Chemistry = %+v; want strong, 0%%", s)
	}
	if len(weak) != 1 || weak[0].Subject != "Maths" {
		t.Errorf("weak = %+v; want only Maths", weak)
	}
}

func TestDailyStats(t *testing.T) {
	// a Monday at noon
	now := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	day := 24 * time.Hour

	plans := []plan.StudyPlan{{ID: 1, Topics: []plan.Topic{
		done(1, now.Add(-time.Hour)),    // Monday
		done(2, now.Add(-2*day)),        // Saturday
		done(3, now.Add(-2*day)),        // Saturday
		done(4, now.Add(-8*day)),        // outside the window
		done(5, now.Add(day)),           // in the future, ignored
		pending(6),                      // not completed
	}}}

	stats := dailyStats(now, plans)
	if len(stats) != 7 {
		t.Fatalf("got %d daily stats, want 7", len(stats))
	}
	if stats[0].Day != "Mon" || stats[6].Day != "Sun" {
		t.Errorf("day labels = %q..%q; want Mon..Sun", stats[0].Day, stats[6].Day)
	}
	want := []int{1, 0, 0, 0, 0, 2, 0}
	for i := range want {
		if stats[i].Completed != want[i] {
			t.Errorf("stats[%d] (%s) = %d, want %d", i, stats[i].Day, stats[i].Completed, want[i])
		}
	}
}

func TestWeeklyStats(t *testing.T) {
	now := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	day := 24 * time.Hour

	notes := []note.Note{
		{ID: 1, CreatedAt: now.Add(-day)},
		{ID: 2, CreatedAt: now.Add(-7 * day)}, // exactly 7 days old is last week
	}
	plans := []plan.StudyPlan{{ID: 1, Topics: []plan.Topic{
		done(1, now.Add(-2*day)),
		done(2, now.Add(-15*day)),
		done(3, now.Add(-60*day)), // clamped to the oldest bucket
	}}}

	stats := weeklyStats(now, notes, plans)
	if len(stats) != 4 {
		t.Fatalf("got %d weekly stats, want 4", len(stats))
	}
	if stats[0].Week != "this week" || stats[3].Week != "3 weeks ago" {
		t.Errorf("week labels = %q..%q", stats[0].Week, stats[3].Week)
	}
	wantNotes := []int{1, 1, 0, 0}
	wantTopics := []int{1, 0, 1, 1}
	for i := range stats {
		if stats[i].Notes != wantNotes[i] || stats[i].Topics != wantTopics[i] {
			t.Errorf("stats[%d] = {Notes:%d Topics:%d}, want {Notes:%d Topics:%d}",
				i, stats[i].Notes, stats[i].Topics, wantNotes[i], wantTopics[i])
		}
	}
}

func TestRecentActivity(t *testing.T) {
	now := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	day := 24 * time.Hour

	notes := []note.Note{
		{ID: 1, Title: "Algebra", Category: "Maths", CreatedAt: now.Add(-3 * day)},
		{ID: 2, Title: "Optics", Category: "Physics", CreatedAt: now.Add(-5 * day),
			IsDeleted: true, UpdatedAt: now.Add(-day)},
	}
	plans := []plan.StudyPlan{{ID: 1, Subject: "Maths", Topics: []plan.Topic{
		{ID: 1, Name: "Integrals", Status: plan.StatusCompleted, UpdatedAt: now.Add(-2 * day)},
		{ID: 2, Name: "Vectors", Status: plan.StatusPending, CreatedAt: now.Add(-4 * day)},
	}}}

	activities := recentActivity(now, notes, plans, DefaultActivityLimit)
	wantTypes := []string{
		ActivityNoteDeleted,    // -1d
		ActivityTopicCompleted, // -2d
		ActivityNoteUploaded,   // -3d Algebra
		ActivityTopicAdded,     // -4d
		ActivityNoteUploaded,   // -5d Optics
	}
	if len(activities) != len(wantTypes) {
		t.Fatalf("got %d activities, want %d: %+v", len(activities), len(wantTypes), activities)
	}
	for i, want := range wantTypes {
		if activities[i].Type != want {
			t.Errorf("activities[%d].Type = %q, want %q", i, activities[i].Type, want)
		}
	}
	if activities[1].Category != "Maths" {
		t.Errorf("completed topic category = %q, want the plan subject", activities[1].Category)
	}

	truncated := recentActivity(now, notes, plans, 2)
	if len(truncated) != 2 {
		t.Fatalf("got %d activities with limit 2", len(truncated))
	}
	if truncated[0].Type != ActivityNoteDeleted || truncated[1].Type != ActivityTopicCompleted {
		t.Errorf("truncated = %+v; want the two most recent", truncated)
	}
}

func TestRecentActivityFallbackTimestamps(t *testing.T) {
	now := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

	// no timestamps anywhere: everything falls back to now
	notes := []note.Note{{ID: 1, Title: "Untimed"}}
	plans := []plan.StudyPlan{{ID: 1, Subject: "Maths", Topics: []plan.Topic{
		{ID: 1, Name: "Later", Status: plan.StatusPending},
	}}}

	activities := recentActivity(now, notes, plans, DefaultActivityLimit)
	if len(activities) != 2 {
		t.Fatalf("got %d activities, want 2", len(activities))
	}
	for _, a := range activities {
		if !a.Timestamp.Equal(now) {
			t.Errorf("%s timestamp = %v, want now", a.Type, a.Timestamp)
		}
	}

	// a completed topic without an update time falls back to its own
	// creation time, never the parent plan's update time
	created := now.Add(-48 * time.Hour)
	plans = []plan.StudyPlan{{
		ID:        1,
		Subject:   "Maths",
		UpdatedAt: now.Add(-time.Hour),
		Topics: []plan.Topic{
			{ID: 1, Name: "Integrals", Status: plan.StatusCompleted, CreatedAt: created},
		},
	}}

	activities = recentActivity(now, nil, plans, DefaultActivityLimit)
	if len(activities) != 1 {
		t.Fatalf("got %d activities, want 1", len(activities))
	}
	if !activities[0].Timestamp.Equal(created) {
		t.Errorf("completed topic timestamp = %v, want topic creation time %v", activities[0].Timestamp, created)
	}
}

func TestTasksDoneThisWeek(t *testing.T) {
	now := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	day := 24 * time.Hour

	tests := []struct {
		name  string
		plans []plan.StudyPlan
		want  string
	}{
		{name: "no plans", plans: nil, want: "0/0"},
		{
			name: "lifetime denominator",
			plans: []plan.StudyPlan{{ID: 1, Topics: []plan.Topic{
				done(1, now.Add(-day)),
				done(2, now.Add(-7*day)), // exactly 7 days old still counts
				done(3, now.Add(-8*day)), // completed before the window
				pending(4),
			}}},
			want: "2/4",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tasksDoneThisWeek(now, tt.plans); got != tt.want {
				t.Errorf("tasksDoneThisWeek() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBadges(t *testing.T) {
	now := time.Now()

	doneTopics := func(n int) []plan.Topic {
		topics := make([]plan.Topic, n)
		for i := range topics {
			topics[i] = done(int64(i+1), now)
		}
		return topics
	}

	tests := []struct {
		name  string
		plans []plan.StudyPlan
		want  []string
	}{
		{name: "nothing completed", plans: []plan.StudyPlan{{ID: 1, Topics: []plan.Topic{pending(1)}}}, want: []string{}},
		{
			name:  "first completion earns first steps",
			plans: []plan.StudyPlan{{ID: 1, Topics: []plan.Topic{done(1, now), pending(2)}}},
			want:  []string{BadgeFirstSteps},
		},
		{
			name:  "fully completed plan earns subject master",
			plans: []plan.StudyPlan{{ID: 1, Topics: doneTopics(2)}},
			want:  []string{BadgeFirstSteps, BadgeSubjectMaster},
		},
		{
			name: "ten completions earn on a roll",
			plans: []plan.StudyPlan{
				{ID: 1, Topics: append(doneTopics(9), pending(99))},
				{ID: 2, Topics: []plan.Topic{done(10, now), pending(11)}},
			},
			want: []string{BadgeFirstSteps, BadgeOnARoll},
		},
		{name: "empty plan earns nothing", plans: []plan.StudyPlan{{ID: 1}}, want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := badges(tt.plans)
			if len(got) != len(tt.want) {
				t.Fatalf("badges() = %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Fatalf("badges() = %v, want %v", got, tt.want)
				}
			}
		})
	}
}
