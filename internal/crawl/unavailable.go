package crawl

import (
	"context"

	"github.com/JakeFAU/trend-briefing-portal/internal/portal"
)

// Unavailable returns an extractor that fails every call with err. It stands
// in for a backend that cannot be constructed, such as Firecrawl without an
// API key, so the rest of the portal keeps serving.
func Unavailable(err error) portal.Extractor {
	return unavailable{err: err}
}

type unavailable struct {
	err error
}

func (u unavailable) Extract(context.Context, portal.ExtractRequest) (*portal.Extraction, error) {
	return nil, u.err
}
