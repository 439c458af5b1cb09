package fleet

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/EVFleetLink/EVFleetLink/internal/common/errs"
	"github.com/EVFleetLink/EVFleetLink/internal/common/logger"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// HTTPServer 车队目录的 HTTP 入口（车辆/司机的查询与录入）。
type HTTPServer struct {
	repo *Repo
	log  logger.Logger
}

func NewHTTPServer(repo *Repo, log logger.Logger) *HTTPServer {
	return &HTTPServer{repo: repo, log: log}
}

// Register 挂载车辆与司机路由。
func (s *HTTPServer) Register(r chi.Router) {
	r.Route("/vehicles", func(r chi.Router) {
		r.Get("/", s.listVehicles)
		r.Post("/", s.createVehicle)
		r.Get("/{id}", s.getVehicle)
	})
	r.Route("/drivers", func(r chi.Router) {
		r.Get("/", s.listDrivers)
		r.Post("/", s.createDriver)
		r.Get("/{id}", s.getDriver)
	})
}

func (s *HTTPServer) listVehicles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	vehicles, total, err := s.repo.ListVehicles(r.Context(),
		VehicleStatus(q.Get("status")), q.Get("model"),
		atoiOr(q.Get("offset"), 0), atoiOr(q.Get("limit"), 20))
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"vehicles": vehicles, "total": total})
}

func (s *HTTPServer) createVehicle(w http.ResponseWriter, r *http.Request) {
	var v Vehicle
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		writeJSONError(w, http.StatusBadRequest, "validation", "invalid json")
		return
	}
	if v.LicensePlate == "" {
		writeJSONError(w, http.StatusBadRequest, "validation", "license plate required")
		return
	}
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	if v.Status == "" {
		v.Status = VehicleAvailable
	}
	if err := s.repo.UpsertVehicle(r.Context(), &v); err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

func (s *HTTPServer) getVehicle(w http.ResponseWriter, r *http.Request) {
	v, err := s.repo.GetVehicle(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *HTTPServer) listDrivers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	drivers, total, err := s.repo.ListDrivers(r.Context(),
		DriverStatus(q.Get("status")),
		atoiOr(q.Get("offset"), 0), atoiOr(q.Get("limit"), 20))
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"drivers": drivers, "total": total})
}

func (s *HTTPServer) createDriver(w http.ResponseWriter, r *http.Request) {
	var d Driver
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		writeJSONError(w, http.StatusBadRequest, "validation", "invalid json")
		return
	}
	if d.Name == "" {
		writeJSONError(w, http.StatusBadRequest, "validation", "name required")
		return
	}
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.Status == "" {
		d.Status = DriverAvailable
	}
	if err := s.repo.UpsertDriver(r.Context(), &d); err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

func (s *HTTPServer) getDriver(w http.ResponseWriter, r *http.Request) {
	d, err := s.repo.GetDriver(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *HTTPServer) writeErr(w http.ResponseWriter, err error) {
	switch errs.KindOf(err) {
	case errs.KindNotFound:
		writeJSONError(w, http.StatusNotFound, "not_found", err.Error())
	case errs.KindConflict:
		writeJSONError(w, http.StatusConflict, "conflict", err.Error())
	case errs.KindValidation:
		writeJSONError(w, http.StatusBadRequest, "validation", err.Error())
	default:
		if s.log != nil {
			s.log.Errorf("internal error: %v", err)
		}
		writeJSONError(w, http.StatusInternalServerError, "internal", "internal error")
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, code int, errCode, msg string) {
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
