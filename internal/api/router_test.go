package api

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/cognicore/autotag/internal/auth"
	"github.com/cognicore/autotag/pkg/autotag"
	"github.com/cognicore/autotag/pkg/autotag/artifact/artifacttest"
	"github.com/cognicore/autotag/pkg/autotag/inference"
	"github.com/cognicore/autotag/pkg/autotag/store/memstore"
)

type testEnv struct {
	handler http.Handler
	auth    *auth.Manager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	svc, err := inference.New(artifacttest.Load(t))
	if err != nil {
		t.Fatalf("inference.New: %v", err)
	}
	mgr, err := auth.NewManager("test-secret-test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	cat := autotag.New(autotag.Options{Store: memstore.New(), Tagger: svc})

	return &testEnv{
		handler: NewRouter(Options{
			Catalog:     cat,
			Auth:        mgr,
			CORSOrigins: []string{"http://localhost:3000"},
		}),
		auth: mgr,
	}
}

func (e *testEnv) do(t *testing.T, method, path, user string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		tok, err := e.auth.Issue(user)
		if err != nil {
			t.Fatalf("Issue: %v", err)
		}
		req.Header.Set(auth.HeaderName, tok)
	}

	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func (e *testEnv) create(t *testing.T, user, name, description string) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/cuisines", user, map[string]string{"name": name, "description": description})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp cuisineResponse
	decodeBody(t, rec, &resp)
	return resp.Cuisine.ID
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("unexpected health response %d %s", rec.Code, rec.Body.String())
	}
}

func TestTagsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/tags", "", map[string]string{"text": "affordable quick bites"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Tags map[string]string `json:"tags"`
	}
	decodeBody(t, rec, &resp)
	if resp.Tags["cuisine"] != "fast-food" || resp.Tags["budget"] != "low" {
		t.Errorf("unexpected tags %v", resp.Tags)
	}
	if len(resp.Tags) != 4 {
		t.Errorf("expected four attributes, got %v", resp.Tags)
	}
}

func TestCreateRequiresToken(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/cuisines", "", map[string]string{"name": "x", "description": "pizza"})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestCreateAndGet(t *testing.T) {
	env := newTestEnv(t)
	id := env.create(t, "u1", "Green Bowl", "spicy vegan curry")

	rec := env.do(t, http.MethodGet, "/cuisines/"+id, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp cuisineResponse
	decodeBody(t, rec, &resp)
	if resp.Cuisine.Cuisine != "thai" || resp.Cuisine.DietaryOptions != "vegan" || resp.Cuisine.UserID != "u1" {
		t.Errorf("unexpected record %+v", resp.Cuisine)
	}

	if rec := env.do(t, http.MethodGet, "/cuisines/nope", "", nil); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestCreateValidation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		body interface{}
	}{
		{"missing description", map[string]string{"name": "x"}},
		{"bad latitude", map[string]string{"name": "x", "description": "pizza", "latitude": "123"}},
		{"unknown field", map[string]string{"name": "x", "description": "pizza", "cuisine": "thai"}},
		{"malformed", "{nope"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/cuisines", "u1", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestUpdateFlow(t *testing.T) {
	env := newTestEnv(t)
	id := env.create(t, "owner", "Green Bowl", "spicy vegan curry")

	rec := env.do(t, http.MethodPut, "/cuisines/"+id, "intruder", map[string]string{"name": "stolen"})
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", rec.Code)
	}

	rec = env.do(t, http.MethodPut, "/cuisines/missing", "owner", map[string]string{"name": "x"})
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}

	rec = env.do(t, http.MethodPut, "/cuisines/"+id, "owner", map[string]string{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty update: expected 400, got %d", rec.Code)
	}

	rec = env.do(t, http.MethodPut, "/cuisines/"+id, "owner", map[string]string{"description": "affordable quick bites"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp cuisineResponse
	decodeBody(t, rec, &resp)
	if resp.Cuisine.Cuisine != "fast-food" || resp.Cuisine.Budget != "low" {
		t.Errorf("expected re-derived tags, got %+v", resp.Cuisine)
	}
}

func TestDeleteFlow(t *testing.T) {
	env := newTestEnv(t)
	id := env.create(t, "owner", "Luigi's", "pizza")

	if rec := env.do(t, http.MethodDelete, "/cuisines/"+id, "intruder", nil); rec.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", rec.Code)
	}
	if rec := env.do(t, http.MethodDelete, "/cuisines/"+id, "owner", nil); rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if rec := env.do(t, http.MethodGet, "/cuisines/"+id, "", nil); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestListMineAndSearch(t *testing.T) {
	env := newTestEnv(t)
	env.create(t, "u1", "Luigi's", "pizza")
	env.create(t, "u1", "Green Bowl", "spicy vegan curry")
	env.create(t, "u2", "Burger Shack", "affordable quick bites")

	rec := env.do(t, http.MethodGet, "/cuisines/mine", "u1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var mine listResponse
	decodeBody(t, rec, &mine)
	if len(mine.Cuisines) != 2 {
		t.Errorf("expected 2 of mine, got %d", len(mine.Cuisines))
	}

	rec = env.do(t, http.MethodGet, "/cuisines", "", nil)
	var all listResponse
	decodeBody(t, rec, &all)
	if len(all.Cuisines) != 3 || all.Filter != nil {
		t.Errorf("no prompt should list all without filter, got %d %v", len(all.Cuisines), all.Filter)
	}

	rec = env.do(t, http.MethodGet, "/cuisines?prompt=cheap+burger+and+fries", "", nil)
	var found listResponse
	decodeBody(t, rec, &found)
	if len(found.Cuisines) != 1 || found.Cuisines[0].Name != "Burger Shack" {
		t.Errorf("expected Burger Shack only, got %+v", found.Cuisines)
	}
	if found.Filter["cuisine"] != "fast-food" || len(found.Filter) != 4 {
		t.Errorf("unexpected filter %v", found.Filter)
	}

	rec = env.do(t, http.MethodGet, "/cuisines?prompt=tacos+tacos", "", nil)
	var none listResponse
	decodeBody(t, rec, &none)
	if none.Cuisines == nil || len(none.Cuisines) != 0 {
		t.Errorf("expected empty list, got %+v", none.Cuisines)
	}
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodOptions, "/cuisines", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("expected allowed origin, got %q", got)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPost, "/tags", "", map[string]string{"text": "pizza"})

	rec := env.do(t, http.MethodGet, "/metrics", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "autotag_inferences_total") {
		t.Error("expected inference counter in /metrics output")
	}
}
