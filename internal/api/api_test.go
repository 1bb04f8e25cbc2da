package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/starford/ladle/internal/index"
	"github.com/starford/ladle/internal/models"
	"github.com/starford/ladle/internal/recipesvc"
	"github.com/starford/ladle/internal/testutil"
	"github.com/starford/ladle/internal/upstream"
)

type stubFetcher struct {
	page *upstream.CatalogPage
}

func (f *stubFetcher) FetchAll(context.Context) (*upstream.CatalogPage, error) {
	return f.page, nil
}

func (f *stubFetcher) InvalidateCache() {}

func catalogPage() *upstream.CatalogPage {
	return &upstream.CatalogPage{
		Recipes: []upstream.ExternalRecipe{{
			ID:           9,
			Name:         "Lasagna",
			Cuisine:      "Italian",
			Ingredients:  []string{"pasta"},
			Instructions: []string{"boil", "layer", "bake"},
			Tags:         []string{"dinner"},
		}},
		Total: 1, Skip: 0, Limit: 1,
	}
}

// testEnv sets up a temp store, index, stubbed fetcher, service, and router.
func testEnv(t *testing.T) (*recipesvc.Service, http.Handler) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := recipesvc.NewService(testutil.TestStore(t), index.New(), &stubFetcher{page: catalogPage()}, logger)
	return svc, NewRouter(svc, 1000, 1000)
}

type envelope struct {
	Status    int             `json:"status"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
	Success   bool            `json:"success"`
}

func doRequest(t *testing.T, router http.Handler, method, path string, body []byte) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (body = %s)", err, w.Body.String())
	}
	return w, env
}

// loadAndWait triggers a catalog load and waits for the background ingestion
// to land in the store.
func loadAndWait(t *testing.T, svc *recipesvc.Service, router http.Handler) {
	t.Helper()
	w, env := doRequest(t, router, http.MethodPost, "/recipes/load", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("load status = %d, body = %s", w.Code, w.Body.String())
	}
	var data string
	_ = json.Unmarshal(env.Data, &data)
	if data != "Recipe loading initiated successfully" {
		t.Fatalf("load data = %q", data)
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		all, err := svc.GetAll()
		if err != nil {
			t.Fatal(err)
		}
		if len(all) > 0 {
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("ingestion did not land in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestLoadEnvelope(t *testing.T) {
	svc, router := testEnv(t)
	loadAndWait(t, svc, router)

	// A second load reports that recipes are already there.
	w, env := doRequest(t, router, http.MethodPost, "/recipes/load", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !env.Success || env.Message != "Success" {
		t.Errorf("envelope = %+v", env)
	}
	var data string
	_ = json.Unmarshal(env.Data, &data)
	if data != "Recipes already loaded" {
		t.Errorf("data = %q, want already-loaded message", data)
	}
}

func TestGetAllRecipes(t *testing.T) {
	svc, router := testEnv(t)
	loadAndWait(t, svc, router)

	w, env := doRequest(t, router, http.MethodGet, "/recipes", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var recipes []models.Recipe
	if err := json.Unmarshal(env.Data, &recipes); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if len(recipes) != 1 {
		t.Fatalf("len = %d, want 1", len(recipes))
	}
	r := recipes[0]
	if r.ID == 9 {
		t.Error("external id leaked through the API")
	}
	if want := []string{"boil", "layer", "bake"}; len(r.Instructions) != 3 ||
		r.Instructions[0] != want[0] || r.Instructions[1] != want[1] || r.Instructions[2] != want[2] {
		t.Errorf("instructions = %v, want %v", r.Instructions, want)
	}
}

func TestSearchRecipes(t *testing.T) {
	svc, router := testEnv(t)
	loadAndWait(t, svc, router)

	body, _ := json.Marshal(map[string]string{"query": "lasagna"})
	w, env := doRequest(t, router, http.MethodPost, "/recipes/search", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if env.Message != "Search completed successfully" {
		t.Errorf("message = %q", env.Message)
	}
	var recipes []models.Recipe
	if err := json.Unmarshal(env.Data, &recipes); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if len(recipes) != 1 || recipes[0].Name != "Lasagna" {
		t.Errorf("recipes = %+v", recipes)
	}
}

func TestSearchValidation(t *testing.T) {
	_, router := testEnv(t)

	// Missing query.
	w, env := doRequest(t, router, http.MethodPost, "/recipes/search", []byte(`{}`))
	if w.Code != http.StatusBadRequest || env.Success {
		t.Errorf("missing query: status = %d, env = %+v", w.Code, env)
	}

	// Too short before trimming: hard validation failure.
	body, _ := json.Marshal(map[string]string{"query": "ab"})
	w, _ = doRequest(t, router, http.MethodPost, "/recipes/search", body)
	if w.Code != http.StatusBadRequest {
		t.Errorf("short query: status = %d, want 400", w.Code)
	}

	// Malformed JSON.
	w, _ = doRequest(t, router, http.MethodPost, "/recipes/search", []byte(`{broken`))
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad json: status = %d, want 400", w.Code)
	}
}

func TestSearchTooShortAfterTrimIsSoft(t *testing.T) {
	_, router := testEnv(t)

	// Four raw characters pass the hard length check, but the trimmed query
	// is below the minimum: soft empty result, not an error.
	body, _ := json.Marshal(map[string]string{"query": " ab "})
	w, env := doRequest(t, router, http.MethodPost, "/recipes/search", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !env.Success {
		t.Error("soft validation must still be a success envelope")
	}
	if env.Message != "Query too short - minimum 3 characters required" {
		t.Errorf("message = %q", env.Message)
	}
	var recipes []models.Recipe
	_ = json.Unmarshal(env.Data, &recipes)
	if len(recipes) != 0 {
		t.Errorf("recipes = %+v, want empty", recipes)
	}
}

func TestGetRecipeBoundaries(t *testing.T) {
	svc, router := testEnv(t)
	loadAndWait(t, svc, router)

	for _, path := range []string{"/recipes/0", "/recipes/-1", "/recipes/abc"} {
		w, env := doRequest(t, router, http.MethodGet, path, nil)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", path, w.Code)
		}
		if env.Success {
			t.Errorf("%s: success = true", path)
		}
	}

	w, env := doRequest(t, router, http.MethodGet, "/recipes/99999", nil)
	if w.Code != http.StatusNotFound || env.Success {
		t.Errorf("unassigned id: status = %d, env = %+v", w.Code, env)
	}
}

func TestGetRecipeByID(t *testing.T) {
	svc, router := testEnv(t)
	loadAndWait(t, svc, router)

	all, err := svc.GetAll()
	if err != nil {
		t.Fatal(err)
	}
	id := all[0].ID

	w, env := doRequest(t, router, http.MethodGet, "/recipes/"+strconv.FormatInt(id, 10), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var r models.Recipe
	if err := json.Unmarshal(env.Data, &r); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if r.ID != id || r.Name != "Lasagna" {
		t.Errorf("recipe = %+v", r)
	}
}

func TestRateLimit(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := recipesvc.NewService(testutil.TestStore(t), index.New(), &stubFetcher{page: catalogPage()}, logger)
	router := NewRouter(svc, 1, 1)

	w, _ := doRequest(t, router, http.MethodGet, "/recipes", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("first request status = %d", w.Code)
	}
	w, env := doRequest(t, router, http.MethodGet, "/recipes", nil)
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("second request status = %d, want 429", w.Code)
	}
	if env.Success {
		t.Error("rate limited response must not be a success envelope")
	}
}
