package account

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/EVFleetLink/EVFleetLink/internal/common/auth"
	"github.com/EVFleetLink/EVFleetLink/internal/common/config"
	"github.com/EVFleetLink/EVFleetLink/internal/common/errs"
	"github.com/EVFleetLink/EVFleetLink/internal/common/httpserver"
	"github.com/EVFleetLink/EVFleetLink/internal/common/logger"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// HTTPServer 账号注册/登录接口，登录成功后签发 JWT。
type HTTPServer struct {
	repo    *Repo
	authCfg config.AuthConfig
	log     logger.Logger
}

func NewHTTPServer(repo *Repo, authCfg config.AuthConfig, log logger.Logger) *HTTPServer {
	return &HTTPServer{repo: repo, authCfg: authCfg, log: log}
}

func (s *HTTPServer) Register(r chi.Router) {
	r.Route("/accounts", func(r chi.Router) {
		r.Post("/register", s.register)
		r.Post("/login", s.login)
		r.Get("/me", s.me)
	})
}

type registerRequest struct {
	Username string   `json:"username"`
	Password string   `json:"password"`
	Nickname string   `json:"nickname"`
	Phone    string   `json:"phone"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
	DriverID string   `json:"driverId"`
}

func (s *HTTPServer) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSONError(w, http.StatusBadRequest, "validation", "invalid json")
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		s.writeJSONError(w, http.StatusBadRequest, "validation", "username and password are required")
		return
	}

	salt, err := GenerateSaltHex()
	if err != nil {
		s.writeErr(w, err)
		return
	}
	hash, err := HashPassword(req.Password, salt)
	if err != nil {
		s.writeErr(w, err)
		return
	}

	roles := req.Roles
	if len(roles) == 0 {
		roles = []string{"dispatcher"}
	}
	a := &Account{
		ID:           uuid.NewString(),
		Username:     req.Username,
		PasswordHash: hash,
		PasswordSalt: salt,
		Nickname:     req.Nickname,
		Phone:        req.Phone,
		Email:        req.Email,
		Roles:        RolesJoin(roles),
		DriverID:     req.DriverID,
	}
	if err := s.repo.Create(r.Context(), a); err != nil {
		// uniqueIndex 冲突按用户名占用处理
		if strings.Contains(err.Error(), "Duplicate entry") || strings.Contains(err.Error(), "UNIQUE constraint") {
			s.writeJSONError(w, http.StatusConflict, "conflict", "username already taken")
			return
		}
		s.writeErr(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, a)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *HTTPServer) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSONError(w, http.StatusBadRequest, "validation", "invalid json")
		return
	}

	a, err := s.repo.FindByUsername(r.Context(), strings.TrimSpace(req.Username))
	if err != nil {
		// 不区分"用户不存在"和"密码错误"
		s.writeJSONError(w, http.StatusUnauthorized, "unauthenticated", "invalid username or password")
		return
	}
	if !VerifyPassword(req.Password, a.PasswordSalt, a.PasswordHash) {
		s.writeJSONError(w, http.StatusUnauthorized, "unauthenticated", "invalid username or password")
		return
	}

	token, expiresAt, err := auth.GenerateAccessToken(s.authCfg, a.ID, a.RolesSlice(), 24*time.Hour)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"accessToken": token,
		"expiresAt":   expiresAt.UTC().Format(time.RFC3339),
		"account":     a,
	})
}

func (s *HTTPServer) me(w http.ResponseWriter, r *http.Request) {
	ai, ok := httpserver.AuthFromContext(r.Context())
	if !ok {
		s.writeJSONError(w, http.StatusUnauthorized, "unauthenticated", "login required")
		return
	}
	a, err := s.repo.FindByID(r.Context(), ai.Subject)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, a)
}

func (s *HTTPServer) writeErr(w http.ResponseWriter, err error) {
	switch errs.KindOf(err) {
	case errs.KindNotFound:
		s.writeJSONError(w, http.StatusNotFound, "not_found", err.Error())
	case errs.KindConflict:
		s.writeJSONError(w, http.StatusConflict, "conflict", err.Error())
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
