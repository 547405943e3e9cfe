package echoapi_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/revisehub/revisehub/core/plan"
)

func createPlan(t *testing.T, app http.Handler, token string, body []byte) plan.StudyPlan {
	t.Helper()
	req, rec := newAuthRequest(http.MethodPost, "/planner/create", token, body)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("creating plan: code = %v; body %s", rec.Code, rec.Body.String())
	}
	var p plan.StudyPlan
	decodeBody(t, rec, &p)
	return p
}

func TestPlannerCreate(t *testing.T) {
	app, deps := setup(t)
	usr := createUser(t, deps, "Jo", "jo@test.cm", "S3cr3t!pwd")
	token := getToken(t, deps.conf, usr)

	t.Run("requires auth", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/planner/create", []byte(`{"subject":"Math"}`))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)}, rec)
	})

	t.Run("missing subject fails", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/planner/create", token, []byte(`{}`))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"subject":"this field is required"}`),
		}, rec)
	})

	t.Run("invalid topic status fails", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/planner/create", token,
			[]byte(`{"subject":"Math","topics":[{"name":"Algebra","status":"paused"}]}`))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("code = %v; body %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("topics are normalized to defaults", func(t *testing.T) {
		p := createPlan(t, app, token, []byte(`{"subject":"Math","topics":[{"name":"Algebra"}]}`))

		if p.Subject != "Math" || len(p.Topics) != 1 {
			t.Fatalf("unexpected plan %+v", p)
		}
		if p.UserID != usr.ID {
			t.Errorf("plan owner = %d; want the authenticated user %d", p.UserID, usr.ID)
		}
		topic := p.Topics[0]
		if topic.Name != "Algebra" ||
			topic.Status != plan.StatusPending ||
			topic.Priority != plan.PriorityMedium ||
			topic.DueDate.Valid ||
			topic.Description != "" ||
			topic.Position != 0 {
			t.Errorf("topic not normalized: %+v", topic)
		}
	})
}

func TestPlannerTopicLifecycle(t *testing.T) {
	app, deps := setup(t)
	usr := createUser(t, deps, "Jo", "jo@test.cm", "S3cr3t!pwd")
	other := createUser(t, deps, "Sam", "sam@test.cm", "S3cr3t!pwd")
	token := getToken(t, deps.conf, usr)
	otherToken := getToken(t, deps.conf, other)

	p := createPlan(t, app, token,
		[]byte(`{"subject":"Math","topics":[{"name":"Algebra","due_date":"2026-09-15T00:00:00Z"},{"name":"Geometry"}]}`))
	algebra, geometry := p.Topics[0], p.Topics[1]

	topicPath := func(planID, topicID int64) string {
		return fmt.Sprintf("/planner/%d/topics/%d", planID, topicID)
	}

	t.Run("status-only update leaves name and due date unchanged", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, topicPath(p.ID, algebra.ID), token, []byte(`{"status":"completed"}`))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; body %s", rec.Code, rec.Body.String())
		}
		var got plan.StudyPlan
		decodeBody(t, rec, &got)
		topic := got.Topics[0]
		if topic.Status != plan.StatusCompleted {
			t.Errorf("status = %q; want completed", topic.Status)
		}
		if topic.Name != "Algebra" || !topic.DueDate.Valid {
			t.Errorf("partial update clobbered fields: %+v", topic)
		}
	})

	t.Run("completion is reversible", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, topicPath(p.ID, algebra.ID), token, []byte(`{"status":"pending"}`))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; body %s", rec.Code, rec.Body.String())
		}
		var got plan.StudyPlan
		decodeBody(t, rec, &got)
		if got.Topics[0].Status != plan.StatusPending {
			t.Errorf("status = %q; want pending", got.Topics[0].Status)
		}
	})

	t.Run("unknown topic is a 404", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, topicPath(p.ID, 99999), token, []byte(`{"status":"completed"}`))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusNotFound, wantData: []byte(`{"error":"topic not found"}`)}, rec)
	})

	t.Run("another user's plan is a 404", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, topicPath(p.ID, algebra.ID), otherToken, []byte(`{"status":"completed"}`))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusNotFound, wantData: []byte(`{"error":"study plan not found"}`)}, rec)
	})

	t.Run("add topic appends at the end", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, fmt.Sprintf("/planner/%d/topics", p.ID), token,
			[]byte(`{"name":"Calculus","priority":"high"}`))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; body %s", rec.Code, rec.Body.String())
		}
		var got plan.StudyPlan
		decodeBody(t, rec, &got)
		if len(got.Topics) != 3 {
			t.Fatalf("expected 3 topics, got %d", len(got.Topics))
		}
		added := got.Topics[2]
		if added.Name != "Calculus" || added.Priority != plan.PriorityHigh ||
			added.Status != plan.StatusPending || added.Position != 2 {
			t.Errorf("unexpected appended topic %+v", added)
		}
	})

	t.Run("delete removes exactly one topic", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, topicPath(p.ID, geometry.ID), token)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; body %s", rec.Code, rec.Body.String())
		}
		var got plan.StudyPlan
		decodeBody(t, rec, &got)
		if len(got.Topics) != 2 {
			t.Fatalf("expected 2 topics, got %d", len(got.Topics))
		}
		for _, topic := range got.Topics {
			if topic.ID == geometry.ID {
				t.Errorf("deleted topic still present: %+v", topic)
			}
		}
	})
}

func TestPlannerReorder(t *testing.T) {
	app, deps := setup(t)
	usr := createUser(t, deps, "Jo", "jo@test.cm", "S3cr3t!pwd")
	token := getToken(t, deps.conf, usr)

	p := createPlan(t, app, token,
		[]byte(`{"subject":"Math","topics":[{"name":"Algebra"},{"name":"Geometry"},{"name":"Calculus"}]}`))
	a, g, c := p.Topics[0].ID, p.Topics[1].ID, p.Topics[2].ID

	reorderPath := fmt.Sprintf("/planner/%d/reorder", p.ID)

	t.Run("wrong id multiset fails and changes nothing", func(t *testing.T) {
		for _, body := range [][]byte{
			[]byte(fmt.Sprintf(`{"topic_ids":[%d,%d]}`, g, a)),             // missing one
			[]byte(fmt.Sprintf(`{"topic_ids":[%d,%d,%d,%d]}`, g, a, c, c)), // duplicate
			[]byte(fmt.Sprintf(`{"topic_ids":[%d,%d,%d]}`, g, a, 99999)),   // foreign id
		} {
			req, rec := newAuthRequest(http.MethodPut, reorderPath, token, body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, httpTest{
				wantCode: http.StatusBadRequest,
				wantData: []byte(`{"topic_ids":"topic ids must be a permutation of the plan's topics"}`),
			}, rec)
		}

		// order unchanged
		req, rec := newAuthRequest(http.MethodGet, "/planner", token)
		app.ServeHTTP(rec, req)
		var plans []plan.StudyPlan
		decodeBody(t, rec, &plans)
		if got := []int64{plans[0].Topics[0].ID, plans[0].Topics[1].ID, plans[0].Topics[2].ID}; got[0] != a || got[1] != g || got[2] != c {
			t.Errorf("order changed after rejected reorder: %v", got)
		}
	})

	t.Run("valid permutation reorders positions only", func(t *testing.T) {
		body := []byte(fmt.Sprintf(`{"topic_ids":[%d,%d,%d]}`, c, a, g))
		req, rec := newAuthRequest(http.MethodPut, reorderPath, token, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; body %s", rec.Code, rec.Body.String())
		}
		var got plan.StudyPlan
		decodeBody(t, rec, &got)
		if got.Topics[0].ID != c || got.Topics[1].ID != a || got.Topics[2].ID != g {
			t.Fatalf("unexpected order %+v", got.Topics)
		}
		for i, topic := range got.Topics {
			if topic.Position != i {
				t.Errorf("topic %d position = %d; want %d", topic.ID, topic.Position, i)
			}
			if topic.Name == "" || topic.Status == "" {
				t.Errorf("reorder dropped fields: %+v", topic)
			}
		}
	})
}
