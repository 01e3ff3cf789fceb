package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/mind-note/internal/model"
	"github.com/rcliao/mind-note/internal/refine"
	"github.com/rcliao/mind-note/internal/store"
)

type stubRefiner struct {
	got []string
}

func (r *stubRefiner) Refine(_ context.Context, text string) (model.Refinement, error) {
	if strings.TrimSpace(text) == "" {
		return model.Refinement{}, refine.ErrInvalidInput
	}
	r.got = append(r.got, text)
	return model.Refinement{
		Refined:      "Tomorrow's shopping list: milk, bread, and eggs.",
		Tags:         []string{"#shopping"},
		Context:      "Work Memo",
		Language:     "en",
		OriginalText: text,
	}, nil
}

type fixture struct {
	srv     *Server
	store   *store.SQLiteStore
	refiner *stubRefiner
	logs    *bytes.Buffer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "memos.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	logs := &bytes.Buffer{}
	ref := &stubRefiner{}
	srv := New(ref, st, nil,
		WithLogger(zerolog.New(logs)),
		WithAllowedOrigins([]string{"http://localhost:3000"}),
	)
	return &fixture{srv: srv, store: st, refiner: ref, logs: logs}
}

func (f *fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealthz(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode[map[string]string](t, rec)["status"])
}

func TestRefineEndpoint(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/api/refine", `{"text":"need buy milk bread eggs tmrw"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	got := decode[model.Refinement](t, rec)
	assert.Equal(t, "Work Memo", got.Context)
	assert.Equal(t, "need buy milk bread eggs tmrw", got.OriginalText)
	assert.False(t, got.IsFallback)
	assert.Equal(t, []string{"need buy milk bread eggs tmrw"}, f.refiner.got)
}

func TestRefineEndpointRejectsMissingText(t *testing.T) {
	for name, body := range map[string]string{
		"empty":     `{"text":""}`,
		"blank":     `{"text":"   "}`,
		"missing":   `{}`,
		"malformed": `{"text":`,
		"wrongtype": `{"text":42}`,
	} {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			rec := f.do(t, http.MethodPost, "/api/refine", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "Text is required", decode[errorBody](t, rec).Error)
			assert.Empty(t, f.refiner.got)
		})
	}
}

func TestMemoLifecycle(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/memos", `{
		"refined": "Tomorrow's shopping list.",
		"tags": ["#shopping"],
		"context": "업무메모",
		"original_text": "need buy milk"
	}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[model.Memo](t, rec)
	assert.Equal(t, "Work Memo", created.Context)
	assert.Equal(t, 1, created.Version)

	rec = f.do(t, http.MethodGet, "/api/memos/"+created.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, created.ID, decode[model.Memo](t, rec).ID)

	rec = f.do(t, http.MethodPatch, "/api/memos/"+created.ID, `{"context":"not a category","insight":"Buy early."}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[model.Memo](t, rec)
	assert.Equal(t, "Memory Archive", updated.Context)
	assert.Equal(t, "Buy early.", updated.Insight)
	assert.Equal(t, 2, updated.Version)

	rec = f.do(t, http.MethodDelete, "/api/memos/"+created.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/memos/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Memo not found", decode[errorBody](t, rec).Error)
}

func TestCreateMemoValidation(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/api/memos", `{"refined":"","tags":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotEmpty(t, decode[errorBody](t, rec).Details)
}

func TestListMemosFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, p := range []store.CreateParams{
		{Refined: "Shopping list", Tags: []string{"#shopping"}, Context: "Work Memo", Language: "en", OriginalText: "shopping"},
		{Refined: "Gym plan", Tags: []string{"#health", "#habit"}, Context: "Habit Log", Language: "en", OriginalText: "gym"},
		{Refined: "운동 계획", Tags: []string{"#habit"}, Context: "Habit Log", Language: "ko", OriginalText: "운동"},
	} {
		_, err := f.store.Create(ctx, p)
		require.NoError(t, err)
	}

	rec := f.do(t, http.MethodGet, "/api/memos?tags=%23habit&limit=10", "")
	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[store.ListResult](t, rec)
	assert.Equal(t, 2, res.Total)
	assert.Len(t, res.Memos, 2)

	rec = f.do(t, http.MethodGet, "/api/memos?context=Habit%20Log&language=ko", "")
	require.Equal(t, http.StatusOK, rec.Code)
	res = decode[store.ListResult](t, rec)
	require.Len(t, res.Memos, 1)
	assert.Equal(t, "운동 계획", res.Memos[0].Refined)

	rec = f.do(t, http.MethodGet, "/api/memos?language=ko-KR", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decode[store.ListResult](t, rec).Total)

	rec = f.do(t, http.MethodGet, "/api/memos?language=tlh", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/memos?limit=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchEndpoint(t *testing.T) {
	f := newFixture(t)
	_, err := f.store.Create(context.Background(), store.CreateParams{
		Refined:      "Quarterly planning meeting notes",
		Tags:         []string{"#planning"},
		Context:      "Meeting Notes",
		OriginalText: "planning mtg notes",
	})
	require.NoError(t, err)

	rec := f.do(t, http.MethodGet, "/api/search?q=planning", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string][]store.SearchResult](t, rec)
	require.Len(t, body["results"], 1)

	rec = f.do(t, http.MethodGet, "/api/search", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCategoriesEndpoint(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/api/categories", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Default    string         `json:"default"`
		Categories []categoryView `json:"categories"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Memory Archive", body.Default)
	require.Len(t, body.Categories, 22)
	assert.Equal(t, "Idea", body.Categories[0].Name)
	assert.Equal(t, "업무메모", body.Categories[2].Labels["ko"])
}

func TestAccessLogAndCORS(t *testing.T) {
	f := newFixture(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/refine", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	f.srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))

	f.do(t, http.MethodGet, "/healthz", "")
	assert.Contains(t, f.logs.String(), `"message":"request done"`)
	assert.Contains(t, f.logs.String(), `"path":"/healthz"`)
	assert.Contains(t, f.logs.String(), `"request_id"`)
}

func TestRunStopsOnCancel(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.srv.Run(ctx, "127.0.0.1:0") }()
	cancel()
	assert.NoError(t, <-done)
}
