package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/trend-briefing-portal/internal/portal"
	"github.com/JakeFAU/trend-briefing-portal/internal/storage"
)

const sideEffectTimeout = 10 * time.Second

// archiveRecord is the document written to the blob store per crawl.
type archiveRecord struct {
	ID        string             `json:"id"`
	SubjectID string             `json:"subject_id"`
	Fallback  bool               `json:"fallback"`
	Result    portal.CrawlResult `json:"result"`
}

func (s *Server) crawl(w http.ResponseWriter, r *http.Request) {
	req, err := decodeCrawl(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	session, _ := sessionFrom(r.Context())
	keyword := s.deps.Crawler.NormalizeKeyword(req.Keyword)

	start := s.deps.Clock.Now()
	result, err := s.deps.Crawler.Crawl(r.Context(), keyword)
	elapsed := s.deps.Clock.Now().Sub(start)

	// Side effects outlive a client that hangs up after the crawl.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), sideEffectTimeout)
	defer cancel()
	logger := s.logger.With(
		zap.String("keyword", keyword),
		zap.String("request_id", requestID(r.Context())),
	)

	entry := portal.SearchHistoryEntry{
		SubjectID:  session.Identity.SubjectID,
		Keyword:    keyword,
		DurationMs: elapsed.Milliseconds(),
		CreatedAt:  start,
	}
	if err != nil {
		entry.Status = portal.HistoryStatusFailed
		entry.ErrorText = err.Error()
		s.recordHistory(ctx, logger, &entry)
		writeError(w, http.StatusInternalServerError, "crawl error: "+err.Error())
		return
	}

	entry.Status = portal.HistoryStatusCompleted
	entry.ResultCount = result.TotalCount
	entry.Fallback = result.Fallback
	s.recordHistory(ctx, logger, &entry)
	blobURI := s.archive(ctx, logger, entry, result)
	s.publish(ctx, logger, entry, result, blobURI)

	writeData(w, result)
}

// recordHistory assigns entry an id and stores it. The id is reused as the
// archive object name and event id even when no history store is set.
func (s *Server) recordHistory(ctx context.Context, logger *zap.Logger, entry *portal.SearchHistoryEntry) {
	id, err := s.deps.IDs.NewID()
	if err != nil {
		logger.Warn("generate history id", zap.Error(err))
		return
	}
	entry.ID = id
	if s.deps.History == nil {
		return
	}
	if err := s.deps.History.Record(ctx, *entry); err != nil {
		logger.Warn("record search history", zap.Error(err))
	}
}

func (s *Server) archive(
	ctx context.Context,
	logger *zap.Logger,
	entry portal.SearchHistoryEntry,
	result portal.CrawlResult,
) string {
	if s.deps.Blobs == nil || entry.ID == "" {
		return ""
	}
	body, err := json.Marshal(archiveRecord{
		ID:        entry.ID,
		SubjectID: entry.SubjectID,
		Fallback:  result.Fallback,
		Result:    result,
	})
	if err != nil {
		logger.Warn("encode crawl archive", zap.Error(err))
		return ""
	}
	path := storage.ObjectPath(s.opts.ArchivePrefix, entry.CreatedAt, entry.ID)
	uri, err := s.deps.Blobs.PutObject(ctx, path, "application/json", bytes.NewReader(body))
	if err != nil {
		logger.Warn("archive crawl result", zap.String("path", path), zap.Error(err))
		return ""
	}
	logger.Debug("archived crawl result", zap.String("uri", uri))
	return uri
}

func (s *Server) publish(
	ctx context.Context,
	logger *zap.Logger,
	entry portal.SearchHistoryEntry,
	result portal.CrawlResult,
	blobURI string,
) {
	if s.deps.Publisher == nil || s.opts.Topic == "" {
		return
	}
	event := portal.CrawlEvent{
		ID:         entry.ID,
		Keyword:    result.Keyword,
		TotalCount: result.TotalCount,
		Fallback:   result.Fallback,
		CrawlTime:  result.CrawlTime,
		BlobURI:    blobURI,
	}
	msgID, err := s.deps.Publisher.Publish(ctx, s.opts.Topic, event)
	if err != nil {
		logger.Warn("publish crawl event", zap.String("topic", s.opts.Topic), zap.Error(err))
		return
	}
	logger.Debug("published crawl event", zap.String("message_id", msgID), zap.String("topic", s.opts.Topic))
}
