package progress

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/revisehub/revisehub/core"
	"github.com/revisehub/revisehub/core/note"
	"github.com/revisehub/revisehub/core/plan"
)

// Activity types
const (
	ActivityNoteUploaded   = "note_uploaded"
	ActivityNoteDeleted    = "note_deleted"
	ActivityTopicAdded     = "topic_added"
	ActivityTopicCompleted = "topic_completed"
)

// Badges
const (
	BadgeFirstSteps    = "First Steps"
	BadgeOnARoll       = "On a Roll"
	BadgeSubjectMaster = "Subject Master"
)

const (
	DefaultActivityLimit = 10
	weekBuckets          = 4
	onARollThreshold     = 10
)

var (
	NowFunc = time.Now // mockable

	dayLabels  = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}
	weekLabels = [weekBuckets]string{"this week", "last week", "2 weeks ago", "3 weeks ago"}
)

type (
	// SubjectProgress is one plan's completion summary.
	SubjectProgress struct {
		PlanID    int64  `json:"plan_id"`
		Subject   string `json:"subject"`
		Total     int    `json:"total_topics"`
		Completed int    `json:"completed_topics"`
		Percent   int    `json:"percent"`
		Weak      bool   `json:"weak"`
	}

	DailyStat struct {
		Day       string `json:"day"`
		Completed int    `json:"completed"`
	}

	WeeklyStat struct {
		Week   string `json:"week"`
		Notes  int    `json:"notes"`
		Topics int    `json:"topics"`
	}

	Activity struct {
		Type      string    `json:"type"`
		Title     string    `json:"title"`
		Category  string    `json:"category"`
		Timestamp time.Time `json:"timestamp"`
	}

	// Overview is the full derived progress payload. The JSON keys match the
	// client's historical contract.
	Overview struct {
		OverallProgress   int               `json:"overallProgress"`
		Plans             []plan.StudyPlan  `json:"plans"`
		Subjects          []SubjectProgress `json:"subjects"`
		WeakSubjects      []SubjectProgress `json:"weakSubjects"`
		DailyStats        []DailyStat       `json:"dailyStats"`
		WeeklyStats       []WeeklyStat      `json:"weeklyStats"`
		RecentActivity    []Activity        `json:"recentActivity"`
		TasksDoneThisWeek string            `json:"tasksDoneThisWeek"`
		Badges            []string          `json:"badges"`
	}

	// Service derives read-only progress views from the note and planner
	// read paths. Source data is never mutated.
	Service interface {
		// Overview degrades to zeroed/empty aggregates on upstream failure
		// instead of failing the whole view.
		Overview(ctx context.Context, userID int64, activityLimit int) Overview
	}

	service struct {
		noteSvc note.Service
		planSvc plan.Service
		logger  core.Logger
	}
)

var _ Service = (*service)(nil)

func NewService(noteSvc note.Service, planSvc plan.Service, logger core.Logger) Service {
	return &service{
		noteSvc: noteSvc,
		planSvc: planSvc,
		logger:  logger,
	}
}

func (svc *service) Overview(ctx context.Context, userID int64, activityLimit int) Overview {
	if activityLimit <= 0 {
		activityLimit = DefaultActivityLimit
	}

	plans, err := svc.planSvc.Query(ctx, userID)
	if err != nil {
		svc.logger.Error("progress: querying plans", errors.Wrap(err, "querying plans"))
		plans = nil
	}
	notes, err := svc.noteSvc.Query(ctx, userID, true /* includeDeleted */)
	if err != nil {
		svc.logger.Error("progress: querying notes", errors.Wrap(err, "querying notes"))
		notes = nil
	}
	if plans == nil {
		plans = []plan.StudyPlan{}
	}

	now := NowFunc()
	subjects, weak := subjectProgress(plans)

	return Overview{
		OverallProgress:   OverallPercent(plans),
		Plans:             plans,
		Subjects:          subjects,
		WeakSubjects:      weak,
		DailyStats:        dailyStats(now, plans),
		WeeklyStats:       weeklyStats(now, notes, plans),
		RecentActivity:    recentActivity(now, notes, plans, activityLimit),
		TasksDoneThisWeek: tasksDoneThisWeek(now, plans),
		Badges:            badges(plans),
	}
}

// CompletionPercent is round(100*completed/total), 0 for an empty list.
func CompletionPercent(topics []plan.Topic) int {
	if len(topics) == 0 {
		return 0
	}
	var completed int
	for _, t := range topics {
		if t.Completed() {
			completed++
		}
	}
	return int(math.Round(100 * float64(completed) / float64(len(topics))))
}

// OverallPercent is the completion percentage across all plans' topics.
func OverallPercent(plans []plan.StudyPlan) int {
	var topics []plan.Topic
	for _, p := range plans {
		topics = append(topics, p.Topics...)
	}
	return CompletionPercent(topics)
}

func subjectProgress(plans []plan.StudyPlan) (subjects, weak []SubjectProgress) {
	subjects = make([]SubjectProgress, 0, len(plans))
	weak = make([]SubjectProgress, 0)
	for _, p := range plans {
		var completed int
		for _, t := range p.Topics {
			if t.Completed() {
				completed++
			}
		}
		sp := SubjectProgress{
			PlanID:    p.ID,
			Subject:   p.Subject,
			Total:     len(p.Topics),
			Completed: completed,
			Percent:   CompletionPercent(p.Topics),
		}
		sp.Weak = sp.Total > 0 && sp.Percent < 50
		subjects = append(subjects, sp)
		if sp.Weak {
			weak = append(weak, sp)
		}
	}
	return subjects, weak
}

// completedAt is a topic's effective completion timestamp: its own update
// time, else the parent plan's, else now.
func completedAt(now time.Time, p plan.StudyPlan, t plan.Topic) time.Time {
	if !t.UpdatedAt.IsZero() {
		return t.UpdatedAt
	}
	if !p.UpdatedAt.IsZero() {
		return p.UpdatedAt
	}
	return now
}

// dailyStats buckets the trailing 7 days of topic completions by day of week,
// Monday first, Sunday last.
func dailyStats(now time.Time, plans []plan.StudyPlan) []DailyStat {
	counts := make([]int, 7)
	weekAgo := now.Add(-7 * 24 * time.Hour)
	for _, p := range plans {
		for _, t := range p.Topics {
			if !t.Completed() {
				continue
			}
			done := completedAt(now, p, t)
			if done.Before(weekAgo) || done.After(now) {
				continue
			}
			counts[(int(done.Weekday())+6)%7]++ // Sunday -> index 6
		}
	}

	stats := make([]DailyStat, 7)
	for i, c := range counts {
		stats[i] = DailyStat{Day: dayLabels[i], Completed: c}
	}
	return stats
}

// weeklyStats reports 4 trailing 7-day buckets, index 0 the most recent, with
// parallel note-upload and topic-completion counts per bucket. Consumers pick
// whichever series they render.
func weeklyStats(now time.Time, notes []note.Note, plans []plan.StudyPlan) []WeeklyStat {
	stats := make([]WeeklyStat, weekBuckets)
	for i := range stats {
		stats[i].Week = weekLabels[i]
	}
	for _, n := range notes {
		stats[note.WeekBucket(now, n.CreatedAt)].Notes++
	}
	for _, p := range plans {
		for _, t := range p.Topics {
			if t.Completed() {
				stats[note.WeekBucket(now, completedAt(now, p, t))].Topics++
			}
		}
	}
	return stats
}

func recentActivity(now time.Time, notes []note.Note, plans []plan.StudyPlan, limit int) []Activity {
	activities := make([]Activity, 0, len(notes))

	for _, n := range notes {
		created := n.CreatedAt
		if created.IsZero() {
			created = now
		}
		activities = append(activities, Activity{
			Type:      ActivityNoteUploaded,
			Title:     fmt.Sprintf("You uploaded %q", n.Title),
			Category:  n.Category,
			Timestamp: created,
		})
		if n.IsDeleted {
			deleted := n.UpdatedAt
			if deleted.IsZero() {
				deleted = now
			}
			activities = append(activities, Activity{
				Type:      ActivityNoteDeleted,
				Title:     fmt.Sprintf("You deleted %q", n.Title),
				Category:  n.Category,
				Timestamp: deleted,
			})
		}
	}

	for _, p := range plans {
		for _, t := range p.Topics {
			if t.Completed() {
				// feed entries fall back to the topic's own creation time,
				// not the parent plan's update time
				done := t.UpdatedAt
				if done.IsZero() {
					done = t.CreatedAt
				}
				if done.IsZero() {
					done = now
				}
				activities = append(activities, Activity{
					Type:      ActivityTopicCompleted,
					Title:     fmt.Sprintf("You completed %q", t.Name),
					Category:  p.Subject,
					Timestamp: done,
				})
			} else {
				created := t.CreatedAt
				if created.IsZero() {
					created = p.CreatedAt
				}
				if created.IsZero() {
					created = now
				}
				activities = append(activities, Activity{
					Type:      ActivityTopicAdded,
					Title:     fmt.Sprintf("You added %q", t.Name),
					Category:  p.Subject,
					Timestamp: created,
				})
			}
		}
	}

	sort.SliceStable(activities, func(i, j int) bool {
		return activities[i].Timestamp.After(activities[j].Timestamp)
	})
	if len(activities) > limit {
		activities = activities[:limit]
	}
	return activities
}

// tasksDoneThisWeek is "{completed in trailing 7d}/{lifetime total topics}".
// The denominator is deliberately not windowed; this is presentational, not a
// percentage.
func tasksDoneThisWeek(now time.Time, plans []plan.StudyPlan) string {
	weekAgo := now.Add(-7 * 24 * time.Hour)
	var completedThisWeek, total int
	for _, p := range plans {
		for _, t := range p.Topics {
			total++
			if t.Completed() && !completedAt(now, p, t).Before(weekAgo) {
				completedThisWeek++
			}
		}
	}
	return fmt.Sprintf("%d/%d", completedThisWeek, total)
}

func badges(plans []plan.StudyPlan) []string {
	var completed int
	var mastered bool
	for _, p := range plans {
		var done int
		for _, t := range p.Topics {
			if t.Completed() {
				done++
			}
		}
		completed += done
		if len(p.Topics) > 0 && done == len(p.Topics) {
			mastered = true
		}
	}

	earned := make([]string, 0, 3)
	if completed >= 1 {
		earned = append(earned, BadgeFirstSteps)
	}
	if completed >= onARollThreshold {
		earned = append(earned, BadgeOnARoll)
	}
	if mastered {
		earned = append(earned, BadgeSubjectMaster)
	}
	return earned
}
