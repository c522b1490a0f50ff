package api

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/JakeFAU/trend-briefing-portal/internal/metrics"
	"github.com/JakeFAU/trend-briefing-portal/internal/portal"
)

const unauthenticatedMessage = "로그인이 필요합니다."

type requestIDKey struct{}

type sessionKey struct{}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" {
			id, err := uuid.NewV7()
			if err != nil {
				id = uuid.New()
			}
			reqID = id.String()
		}
		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func loggingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			logger.Info("request completed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.status),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", requestID(r.Context())),
			)
		})
	}
}

func recoverMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rec),
						zap.String("path", r.URL.Path),
						zap.String("request_id", requestID(r.Context())),
						zap.Stack("stack"),
					)
					writeError(w, http.StatusInternalServerError, "internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// requirePageSession redirects to /login when the request has no session.
func (s *Server) requirePageSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := s.lookupSession(r)
		switch {
		case errors.Is(err, portal.ErrSessionNotFound):
			metrics.ObserveSessionRejection("page")
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		case err != nil:
			s.logger.Error("session lookup failed", zap.Error(err))
			http.Error(w, "session store unavailable", http.StatusInternalServerError)
			return
		}
		next.ServeHTTP(w, r.WithContext(withSession(r.Context(), session)))
	})
}

// requireAPISession answers 401 JSON when the request has no session.
func (s *Server) requireAPISession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := s.lookupSession(r)
		switch {
		case errors.Is(err, portal.ErrSessionNotFound):
			metrics.ObserveSessionRejection("api")
			writeError(w, http.StatusUnauthorized, unauthenticatedMessage)
			return
		case err != nil:
			s.logger.Error("session lookup failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "session store unavailable")
			return
		}
		next.ServeHTTP(w, r.WithContext(withSession(r.Context(), session)))
	})
}

// lookupSession returns portal.ErrSessionNotFound for a missing cookie as
// well as an unknown token.
func (s *Server) lookupSession(r *http.Request) (portal.Session, error) {
	cookie, err := r.Cookie(s.opts.CookieName)
	if err != nil || cookie.Value == "" {
		return portal.Session{}, portal.ErrSessionNotFound
	}
	session, err := s.deps.Sessions.Get(r.Context(), cookie.Value)
	if err != nil {
		return portal.Session{}, fmt.Errorf("get session: %w", err)
	}
	return session, nil
}

func withSession(ctx context.Context, session portal.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, session)
}

func sessionFrom(ctx context.Context) (portal.Session, bool) {
	session, ok := ctx.Value(sessionKey{}).(portal.Session)
	return session, ok
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	if err != nil {
		return n, fmt.Errorf("write response: %w", err)
	}
	return n, nil
}

func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if h, ok := rw.ResponseWriter.(http.Hijacker); ok {
		conn, buf, err := h.Hijack()
		if err != nil {
			return nil, nil, fmt.Errorf("hijack connection: %w", err)
		}
		return conn, buf, nil
	}
	return nil, nil, errors.New("hijacker not supported")
}
