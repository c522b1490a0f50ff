package portal

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCatalogTrends(t *testing.T) {
	t.Parallel()

	trends := NewCatalog().Trends()
	require.Len(t, trends, 3)
	require.Equal(t, []string{"technology", "satellite", "industry"},
		[]string{trends[0].Category, trends[1].Category, trends[2].Category})
}

func TestCatalogVideoEchoesID(t *testing.T) {
	t.Parallel()

	video := NewCatalog().Video(42)
	require.Equal(t, 42, video.ID)
	require.Len(t, video.Chapters, 5)
	require.Equal(t, "00:00", video.Chapters[0].Time)
	require.Len(t, video.Resources, 3)
}

func TestCatalogProgress(t *testing.T) {
	t.Parallel()

	progress := NewCatalog().Progress()
	require.Equal(t, 12, progress.Completed)
	require.Equal(t, 30, progress.Total)
	require.Equal(t, 40, progress.Percentage)
	require.Len(t, progress.RecentVideos, 3)
}

func TestCatalogCrawlStatusCounts(t *testing.T) {
	t.Parallel()

	status := NewCatalog().CrawlStatus()
	require.Equal(t, 2, status.TotalJobs)
	require.Equal(t, 1, status.RunningJobs)
	require.Equal(t, 1, status.CompletedJobs)
	require.Equal(t, "running", status.Jobs[0].Status)
	require.Equal(t, "completed", status.Jobs[1].Status)
}
