package api

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/JakeFAU/trend-briefing-portal/internal/portal"
)

//go:embed templates/*.html
var templateFS embed.FS

type pageData struct {
	UserName   string
	Department string
	Character  string
	Trends     []portal.Trend
	Video      *portal.Video
}

// characterOptions are the presenter avatars offered on the player page.
var characterOptions = []string{"귀여운 라마", "친절한 아나운서", "전파 연구원"}

func parsePages() (*template.Template, error) {
	funcs := template.FuncMap{
		"characterOptions": func() []string { return characterOptions },
	}
	tmpl, err := template.New("pages").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse page templates: %w", err)
	}
	return tmpl, nil
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	var buf bytes.Buffer
	if err := s.pages.ExecuteTemplate(&buf, name, data); err != nil {
		s.logger.Error("render page",
			zap.String("template", name),
			zap.String("request_id", requestID(r.Context())),
			zap.Error(err),
		)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (s *Server) sessionPage(r *http.Request) pageData {
	session, _ := sessionFrom(r.Context())
	return pageData{
		UserName:   session.Identity.DisplayName,
		Department: session.Identity.Department,
		Character:  session.Character,
	}
}

func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) {
	data := s.sessionPage(r)
	data.Trends = s.deps.Catalog.Trends()
	s.render(w, r, "dashboard.html", data)
}

func (s *Server) video(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	data := s.sessionPage(r)
	video := s.deps.Catalog.Video(id)
	data.Video = &video
	s.render(w, r, "video.html", data)
}

func (s *Server) admin(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "admin.html", s.sessionPage(r))
}
