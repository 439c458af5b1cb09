package notify

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/EVFleetLink/EVFleetLink/internal/common/errs"
	"github.com/EVFleetLink/EVFleetLink/internal/common/logger"
	"github.com/go-chi/chi/v5"
)

// HTTPServer 通知的查询/已读接口。
type HTTPServer struct {
	repo *Repo
	log  logger.Logger
}

func NewHTTPServer(repo *Repo, log logger.Logger) *HTTPServer {
	return &HTTPServer{repo: repo, log: log}
}

func (s *HTTPServer) Register(r chi.Router) {
	r.Route("/notifications", func(r chi.Router) {
		r.Get("/", s.list)
		r.Put("/{id}/read", s.markRead)
	})
}

func (s *HTTPServer) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	userID := q.Get("user_id")
	if userID == "" {
		s.writeJSONError(w, http.StatusBadRequest, "validation", "user_id is required")
		return
	}
	unreadOnly := q.Get("unread") == "true"
	offset := atoiOr(q.Get("offset"), 0)
	limit := atoiOr(q.Get("limit"), 20)

	list, total, err := s.repo.ListByUser(r.Context(), userID, unreadOnly, offset, limit)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"notifications": list, "total": total})
}

func (s *HTTPServer) markRead(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.MarkRead(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeErr(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) writeErr(w http.ResponseWriter, err error) {
	switch errs.KindOf(err) {
	case errs.KindNotFound:
		s.writeJSONError(w, http.StatusNotFound, "not_found", err.Error())
	case errs.KindValidation:
		s.writeJSONError(w, http.StatusBadRequest, "validation", err.Error())
	default:
		if s.log != nil {
			s.log.Errorf("internal error: %v", err)
		}
		s.writeJSONError(w, http.StatusInternalServerError, "internal", "internal error")
	}
}

func (s *HTTPServer) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *HTTPServer) writeJSONError(w http.ResponseWriter, code int, errCode, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"code": errCode, "error": msg})
}

func atoiOr(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
