// Package web exposes the tracker over HTTP as a JSON API.
//
// Handlers are deliberately thin: parse scalars, call the storage core,
// encode the result. No framework types cross into internal/db.
package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ravithakur-bit/tracker/internal/db"
	"github.com/ravithakur-bit/tracker/internal/model"
)

// Server routes HTTP requests to the storage core.
type Server struct {
	db       *db.DB
	log      *slog.Logger
	pageSize int
	mux      *http.ServeMux
}

// New builds a server over an initialized database. pageSize is the list
// page size used when a request omits ?limit.
func New(database *db.DB, logger *slog.Logger, pageSize int) *Server {
	s := &Server{db: database, log: logger, pageSize: pageSize, mux: http.NewServeMux()}
	s.mux.HandleFunc("GET /{$}", s.handleDashboard)
	s.register(db.Bugs)
	s.register(db.Tasks)
	return s
}

// Handler returns the routing tree wrapped with request logging.
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		s.mux.ServeHTTP(rec, r)
		s.log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start))
	})
}

func (s *Server) register(fam db.Family) {
	p := fam.PathPrefix
	s.mux.HandleFunc("GET "+p, func(w http.ResponseWriter, r *http.Request) { s.handleList(w, r, fam) })
	s.mux.HandleFunc("POST "+p, func(w http.ResponseWriter, r *http.Request) { s.handleCreate(w, r, fam) })
	s.mux.HandleFunc("GET "+p+"/{slug}", func(w http.ResponseWriter, r *http.Request) { s.handleDetail(w, r, fam) })
	s.mux.HandleFunc("POST "+p+"/{id}/update", func(w http.ResponseWriter, r *http.Request) { s.handleUpdate(w, r, fam) })
	s.mux.HandleFunc("POST "+p+"/{id}/comment", func(w http.ResponseWriter, r *http.Request) { s.handleComment(w, r, fam) })
	s.mux.HandleFunc("POST "+p+"/{id}/attach", func(w http.ResponseWriter, r *http.Request) { s.handleAttach(w, r, fam) })
	s.mux.HandleFunc("POST "+p+"/{id}/details", func(w http.ResponseWriter, r *http.Request) { s.handleDetails(w, r, fam) })
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.db.BuildDashboard()
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// listItemView decorates an item with its text fields highlighted against
// the active search terms.
type listItemView struct {
	model.Item
	TitleHTML       string `json:"title_html,omitempty"`
	DescriptionHTML string `json:"description_html,omitempty"`
}

type listResponse struct {
	*db.Page
	Items       []listItemView `json:"items"`
	SearchQuery string         `json:"search_query,omitempty"`
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request, fam db.Family) {
	q := r.URL.Query()
	params := db.ListParams{
		StatusSlugs: q["status"],
		Search:      q.Get("search"),
		Page:        atoiDefault(q.Get("page"), 1),
		Limit:       atoiDefault(q.Get("limit"), s.pageSize),
	}

	page, err := s.db.ListPage(fam, params)
	if err != nil {
		s.writeErr(w, err)
		return
	}

	views := make([]listItemView, len(page.Items))
	for i, item := range page.Items {
		views[i] = listItemView{Item: item}
		if params.Search != "" {
			views[i].TitleHTML = Highlight(item.Title, params.Search)
			views[i].DescriptionHTML = Highlight(item.Description, params.Search)
		}
	}
	writeJSON(w, http.StatusOK, listResponse{Page: page, Items: views, SearchQuery: params.Search})
}

type createRequest struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	StatusID    int64        `json:"status_id"`
	TargetDate  string       `json:"target_date"` // YYYY-MM-DD
	ReportedAt  string       `json:"reported_at"` // YYYY-MM-DDTHH:MM, bugs only
	Links       []model.Link `json:"links"`
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request, fam db.Family) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErr(w, fmt.Errorf("%w: bad request body: %v", db.ErrValidation, err))
		return
	}

	target, err := parseDate(req.TargetDate)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	reported, err := parseDateTime(req.ReportedAt)
	if err != nil {
		s.writeErr(w, err)
		return
	}

	item, err := s.db.CreateItem(fam, db.NewItem{
		Title:       req.Title,
		Description: req.Description,
		StatusID:    req.StatusID,
		TargetDate:  target,
		ReportedAt:  reported,
		Links:       req.Links,
	})
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

type activityView struct {
	model.Activity
	Age string `json:"age"`
}

type detailResponse struct {
	Item            *model.Item     `json:"item"`
	DescriptionHTML string          `json:"description_html"`
	Age             string          `json:"age"`
	DaysUntilDue    *int            `json:"days_until_due"`
	Statuses        []model.Status  `json:"statuses"`
	Links           []model.Link    `json:"links"`
	History         []model.History `json:"history"`
	Activity        []activityView  `json:"activity"`
}

func (s *Server) handleDetail(w http.ResponseWriter, r *http.Request, fam db.Family) {
	item, err := s.db.GetItemBySlug(fam, r.PathValue("slug"))
	if err != nil {
		s.writeErr(w, err)
		return
	}

	statuses, err := s.db.Statuses(fam)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	links, err := s.db.ListLinks(fam, item.ID)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	history, err := s.db.ListHistory(fam, item.ID)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	activity, err := s.db.ListActivity(fam, item.ID)
	if err != nil {
		s.writeErr(w, err)
		return
	}

	now := time.Now().UTC()
	views := make([]activityView, len(activity))
	for i, a := range activity {
		views[i] = activityView{Activity: a, Age: TimeAgo(a.CreatedAt)}
	}

	writeJSON(w, http.StatusOK, detailResponse{
		Item:            item,
		DescriptionHTML: MarkdownHTML(item.Description),
		Age:             TimeAgo(item.CreatedAt),
		DaysUntilDue:    DaysUntil(item.TargetDate, now),
		Statuses:        statuses,
		Links:           links,
		History:         history,
		Activity:        views,
	})
}

type updateRequest struct {
	StatusID   int64  `json:"status_id"`
	TargetDate string `json:"target_date"` // YYYY-MM-DD, empty clears
	Remark     string `json:"remark"`
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request, fam db.Family) {
	id, err := pathID(r)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErr(w, fmt.Errorf("%w: bad request body: %v", db.ErrValidation, err))
		return
	}
	target, err := parseDate(req.TargetDate)
	if err != nil {
		s.writeErr(w, err)
		return
	}

	if err := s.db.ApplyUpdate(fam, id, req.StatusID, target, req.Remark); err != nil {
		s.writeErr(w, err)
		return
	}
	item, err := s.db.GetItem(fam, id)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

type commentRequest struct {
	Content string `json:"content"`
}

func (s *Server) handleComment(w http.ResponseWriter, r *http.Request, fam db.Family) {
	id, err := pathID(r)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErr(w, fmt.Errorf("%w: bad request body: %v", db.ErrValidation, err))
		return
	}
	if err := s.db.AddActivity(fam, id, req.Content); err != nil {
		s.writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type attachRequest struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

func (s *Server) handleAttach(w http.ResponseWriter, r *http.Request, fam db.Family) {
	id, err := pathID(r)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	var req attachRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErr(w, fmt.Errorf("%w: bad request body: %v", db.ErrValidation, err))
		return
	}
	if err := s.db.AttachLink(fam, id, req.Name, req.URL); err != nil {
		s.writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type detailsRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (s *Server) handleDetails(w http.ResponseWriter, r *http.Request, fam db.Family) {
	id, err := pathID(r)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	var req detailsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErr(w, fmt.Errorf("%w: bad request body: %v", db.ErrValidation, err))
		return
	}
	if err := s.db.UpdateDetails(fam, id, req.Title, req.Description); err != nil {
		s.writeErr(w, err)
		return
	}
	item, err := s.db.GetItem(fam, id)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) writeErr(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, db.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, db.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, db.ErrConflict):
		status = http.StatusConflict
	default:
		s.log.Error("request failed", "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad id %q", db.ErrValidation, r.PathValue("id"))
	}
	return id, nil
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

// parseDate parses a YYYY-MM-DD date. Empty means no date.
func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, fmt.Errorf("%w: bad date %q (want YYYY-MM-DD)", db.ErrValidation, s)
	}
	t = t.UTC()
	return &t, nil
}

// parseDateTime parses the datetime-local wire format, YYYY-MM-DDTHH:MM.
func parseDateTime(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02T15:04", s)
	if err != nil {
		return nil, fmt.Errorf("%w: bad timestamp %q (want YYYY-MM-DDTHH:MM)", db.ErrValidation, s)
	}
	t = t.UTC()
	return &t, nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
