package api

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"

	"go.uber.org/zap"

	"github.com/JakeFAU/trend-briefing-portal/internal/metrics"
	"github.com/JakeFAU/trend-briefing-portal/internal/portal"
)

const invalidCredentialsMessage = "사번 또는 비밀번호가 올바르지 않습니다."

type loginRequest struct {
	EmployeeID string `json:"employee_id"`
	Password   string `json:"password"`
}

func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	_, err := s.lookupSession(r)
	switch {
	case errors.Is(err, portal.ErrSessionNotFound):
		http.Redirect(w, r, "/login", http.StatusFound)
	case err != nil:
		s.logger.Error("session lookup failed", zap.Error(err))
		http.Error(w, "session store unavailable", http.StatusInternalServerError)
	default:
		http.Redirect(w, r, "/dashboard", http.StatusFound)
	}
}

func (s *Server) loginPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "login.html", nil)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	req, err := decodeLogin(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	identity, err := s.deps.Verifier.Verify(r.Context(), req.EmployeeID, req.Password)
	switch {
	case errors.Is(err, portal.ErrInvalidCredentials):
		metrics.ObserveLogin("failure")
		s.logger.Info("login rejected", zap.String("employee_id", req.EmployeeID))
		writeError(w, http.StatusOK, invalidCredentialsMessage)
		return
	case err != nil:
		s.logger.Error("credential check failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	token, err := s.deps.Tokens.NewToken()
	if err != nil {
		s.logger.Error("generate session token", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	session := portal.Session{
		Token:     token,
		Identity:  identity,
		CreatedAt: s.deps.Clock.Now(),
	}
	if err := s.deps.Sessions.Set(r.Context(), session); err != nil {
		s.logger.Error("store session", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     s.opts.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.opts.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	metrics.ObserveLogin("success")
	s.logger.Info("login succeeded", zap.String("employee_id", identity.SubjectID))
	writeJSON(w, http.StatusOK, envelope{Success: true})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(s.opts.CookieName); err == nil && cookie.Value != "" {
		if err := s.deps.Sessions.Clear(r.Context(), cookie.Value); err != nil {
			s.logger.Warn("clear session", zap.Error(err))
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.opts.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.opts.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/login", http.StatusFound)
}

// decodeLogin accepts a JSON body or a url-encoded/multipart form.
func decodeLogin(r *http.Request) (loginRequest, error) {
	if isJSON(r) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return loginRequest{}, err
		}
		return req, nil
	}
	if mediaType(r) == "multipart/form-data" {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			return loginRequest{}, err
		}
	} else if err := r.ParseForm(); err != nil {
		return loginRequest{}, err
	}
	return loginRequest{
		EmployeeID: r.PostFormValue("employee_id"),
		Password:   r.PostFormValue("password"),
	}, nil
}

func mediaType(r *http.Request) string {
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return mt
}

func isJSON(r *http.Request) bool {
	return mediaType(r) == "application/json"
}
