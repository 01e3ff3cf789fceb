package server

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/rcliao/mind-note/internal/language"
	"github.com/rcliao/mind-note/internal/refine"
	"github.com/rcliao/mind-note/internal/store"
)

type refineRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleRefine(w http.ResponseWriter, r *http.Request) {
	var req refineRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, refine.ErrInvalidInput)
		return
	}
	res, err := s.refiner.Refine(r.Context(), req.Text)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type categoryView struct {
	Name   string            `json:"name"`
	Labels map[string]string `json:"labels,omitempty"`
}

func (s *Server) handleCategories(w http.ResponseWriter, _ *http.Request) {
	locales := s.reg.Locales()
	cats := make([]categoryView, 0, len(s.reg.Categories()))
	for _, c := range s.reg.Categories() {
		view := categoryView{Name: c, Labels: map[string]string{}}
		for _, loc := range locales {
			if label := s.reg.Localize(c, loc); label != c {
				view.Labels[loc] = label
			}
		}
		cats = append(cats, view)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"default":    s.reg.DefaultCategory(),
		"categories": cats,
	})
}

func (s *Server) handleListMemos(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, err := intParam(q.Get("limit"), store.DefaultLimit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	offset, err := intParam(q.Get("offset"), 0)
	if err != nil {
		writeError(w, r, err)
		return
	}
	lang, err := languageParam(q.Get("language"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := s.store.List(r.Context(), store.ListParams{
		Tags:     splitList(q.Get("tags")),
		Context:  q.Get("context"),
		Language: lang,
		Search:   q.Get("search"),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, err := intParam(q.Get("limit"), store.DefaultLimit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	lang, err := languageParam(q.Get("language"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	results, err := s.store.Search(r.Context(), store.SearchParams{
		Query:    q.Get("q"),
		Context:  q.Get("context"),
		Language: lang,
		Limit:    limit,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	if results == nil {
		results = []store.SearchResult{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

func (s *Server) handleCreateMemo(w http.ResponseWriter, r *http.Request) {
	var p store.CreateParams
	if err := decodeBody(w, r, &p); err != nil {
		writeError(w, r, err)
		return
	}
	p.Context = s.reg.Normalize(strings.TrimSpace(p.Context))
	m, err := s.store.Create(r.Context(), p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (s *Server) handleGetMemo(w http.ResponseWriter, r *http.Request) {
	m, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

type updateRequest struct {
	Refined *string  `json:"refined"`
	Tags    []string `json:"tags"`
	Context *string  `json:"context"`
	Insight *string  `json:"insight"`
}

func (s *Server) handleUpdateMemo(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Context != nil && strings.TrimSpace(*req.Context) != "" {
		normalized := s.reg.Normalize(*req.Context)
		req.Context = &normalized
	}
	m, err := s.store.Update(r.Context(), store.UpdateParams{
		ID:      chi.URLParam(r, "id"),
		Refined: req.Refined,
		Tags:    req.Tags,
		Context: req.Context,
		Insight: req.Insight,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleDeleteMemo(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	hard, _ := strconv.ParseBool(r.URL.Query().Get("hard"))
	if err := s.store.Delete(r.Context(), store.DeleteParams{ID: id, Hard: hard}); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Memo deleted", "id": id})
}

func intParam(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %q is not a non-negative integer", errBadRequest, raw)
	}
	return n, nil
}

// languageParam accepts a code or BCP 47 tag and returns the bare code.
func languageParam(raw string) (string, error) {
	if raw == "" {
		return "", nil
	}
	code, ok := language.Parse(raw)
	if !ok {
		return "", fmt.Errorf("%w: unsupported language %q", errBadRequest, raw)
	}
	return code.String(), nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
