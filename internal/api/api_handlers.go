package api

import (
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/JakeFAU/trend-briefing-portal/internal/portal"
)

const maxHistoryPageSize = 100

type characterRequest struct {
	Character string `json:"character"`
}

type characterResponse struct {
	Success   bool   `json:"success"`
	Character string `json:"character"`
}

type historyResponse struct {
	History  []portal.SearchHistoryEntry `json:"history"`
	Total    int                         `json:"total"`
	Page     int                         `json:"page"`
	PageSize int                         `json:"page_size"`
	HasMore  bool                        `json:"has_more"`
}

func (s *Server) changeCharacter(w http.ResponseWriter, r *http.Request) {
	var req characterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	session, _ := sessionFrom(r.Context())
	err := s.deps.Sessions.Update(r.Context(), session.Token, func(sess *portal.Session) {
		sess.Character = req.Character
	})
	switch {
	case errors.Is(err, portal.ErrSessionNotFound):
		writeError(w, http.StatusUnauthorized, unauthenticatedMessage)
		return
	case err != nil:
		s.logger.Error("store session character", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, characterResponse{Success: true, Character: req.Character})
}

func (s *Server) progress(w http.ResponseWriter, _ *http.Request) {
	writeData(w, s.deps.Catalog.Progress())
}

func (s *Server) crawlStatus(w http.ResponseWriter, _ *http.Request) {
	writeData(w, s.deps.Catalog.CrawlStatus())
}

func (s *Server) searchHistory(w http.ResponseWriter, r *http.Request) {
	page := positiveQueryInt(r, "page", 1)
	pageSize := positiveQueryInt(r, "page_size", s.opts.HistoryPageSize)
	if pageSize > maxHistoryPageSize {
		pageSize = maxHistoryPageSize
	}
	// Keep page*pageSize within int.
	if maxPage := math.MaxInt / pageSize; page > maxPage {
		page = maxPage
	}
	offset := (page - 1) * pageSize

	resp := historyResponse{
		History:  []portal.SearchHistoryEntry{},
		Page:     page,
		PageSize: pageSize,
	}
	if s.deps.History != nil {
		session, _ := sessionFrom(r.Context())
		result, err := s.deps.History.List(r.Context(), session.Identity.SubjectID, pageSize, offset)
		if err != nil {
			s.logger.Error("list search history", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to load search history")
			return
		}
		if len(result.Entries) > 0 {
			resp.History = result.Entries
		}
		resp.Total = result.Total
		resp.HasMore = offset+len(result.Entries) < result.Total
	}
	writeData(w, resp)
}

func positiveQueryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return def
	}
	return v
}

type crawlRequest struct {
	Keyword string `json:"keyword"`
}

// decodeCrawl reads the keyword from a JSON body or form value. An empty
// body is a request for the default keyword.
func decodeCrawl(r *http.Request) (crawlRequest, error) {
	var req crawlRequest
	if r.Header.Get("Content-Type") == "" || isJSON(r) {
		err := json.NewDecoder(r.Body).Decode(&req)
		if err != nil && !errors.Is(err, io.EOF) {
			return crawlRequest{}, err
		}
		return req, nil
	}
	if err := r.ParseForm(); err != nil {
		return crawlRequest{}, err
	}
	req.Keyword = r.PostFormValue("keyword")
	return req, nil
}
