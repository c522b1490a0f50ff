package portal

// Trend is a briefing video listed on the dashboard.
type Trend struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Date        string `json:"date"`
	Duration    string `json:"duration"`
	Category    string `json:"category"`
	Thumbnail   string `json:"thumbnail"`
	Description string `json:"description"`
}

// Chapter is a seek marker within a video.
type Chapter struct {
	Time  string `json:"time"`
	Title string `json:"title"`
}

// Resource is a downloadable attachment for a video.
type Resource struct {
	Title string `json:"title"`
	Type  string `json:"type"`
}

// Video is the detail record rendered by the player page.
type Video struct {
	ID          int        `json:"id"`
	Title       string     `json:"title"`
	Date        string     `json:"date"`
	Duration    string     `json:"duration"`
	Character   string     `json:"character"`
	Description string     `json:"description"`
	Chapters    []Chapter  `json:"chapters"`
	Resources   []Resource `json:"resources"`
}

// RecentVideo is a progress row for a recently watched video.
type RecentVideo struct {
	ID       int    `json:"id"`
	Title    string `json:"title"`
	Progress int    `json:"progress"`
}

// Progress summarizes an employee's viewing progress.
type Progress struct {
	Completed    int           `json:"completed"`
	Total        int           `json:"total"`
	Percentage   int           `json:"percentage"`
	RecentVideos []RecentVideo `json:"recent_videos"`
}

// CrawlJob is a row of the crawl status board.
type CrawlJob struct {
	ID            string `json:"id"`
	Keyword       string `json:"keyword"`
	Status        string `json:"status"`
	Progress      int    `json:"progress"`
	ArticlesFound int    `json:"articles_found"`
	StartedAt     string `json:"started_at"`
	CompletedAt   string `json:"completed_at,omitempty"`
}

// CrawlStatus is the crawl status board payload.
type CrawlStatus struct {
	Jobs          []CrawlJob `json:"jobs"`
	TotalJobs     int        `json:"total_jobs"`
	RunningJobs   int        `json:"running_jobs"`
	CompletedJobs int        `json:"completed_jobs"`
}

// Catalog serves the fixed demo content of the portal. It has no mutation
// path; every accessor returns a fresh copy.
type Catalog struct{}

// NewCatalog returns the demo catalog.
func NewCatalog() *Catalog {
	return &Catalog{}
}

// Trends returns the dashboard briefing list.
func (Catalog) Trends() []Trend {
	return []Trend{
		{
			ID:          1,
			Title:       "6G 전파 기술 발전 동향",
			Date:        "2024.01.15",
			Duration:    "15:42",
			Category:    "technology",
			Thumbnail:   "/static/images/thumb1.jpg",
			Description: "차세대 6G 통신 기술의 최신 동향과 발전 방향을 소개합니다.",
		},
		{
			ID:          2,
			Title:       "위성 통신 주파수 할당 현황",
			Date:        "2024.01.10",
			Duration:    "12:30",
			Category:    "satellite",
			Thumbnail:   "/static/images/thumb2.jpg",
			Description: "글로벌 위성 통신 주파수 할당 현황과 국내 동향을 분석합니다.",
		},
		{
			ID:          3,
			Title:       "mmWave 기술의 산업 적용",
			Date:        "2024.01.05",
			Duration:    "18:15",
			Category:    "industry",
			Thumbnail:   "/static/images/thumb3.jpg",
			Description: "밀리미터파 기술의 다양한 산업 분야 적용 사례를 살펴봅니다.",
		},
	}
}

// Video returns the player detail for id. Every id maps to the same sample
// briefing; only the id is echoed back.
func (Catalog) Video(id int) Video {
	return Video{
		ID:          id,
		Title:       "6G 전파 기술 발전 동향",
		Date:        "2024.01.15",
		Duration:    "15:42",
		Character:   "귀여운 라마",
		Description: "차세대 6G 통신 기술의 최신 동향과 발전 방향을 소개합니다.",
		Chapters: []Chapter{
			{Time: "00:00", Title: "소개"},
			{Time: "02:30", Title: "6G 기술 개요"},
			{Time: "05:45", Title: "주요 특징 및 성능"},
			{Time: "09:20", Title: "글로벌 동향"},
			{Time: "12:15", Title: "향후 전망"},
		},
		Resources: []Resource{
			{Title: "6G Vision White Paper", Type: "pdf"},
			{Title: "기술 사양 문서", Type: "doc"},
			{Title: "프레젠테이션 자료", Type: "ppt"},
		},
	}
}

// Progress returns the sample learning progress.
func (Catalog) Progress() Progress {
	return Progress{
		Completed:  12,
		Total:      30,
		Percentage: 40,
		RecentVideos: []RecentVideo{
			{ID: 1, Title: "6G 전파 기술 발전 동향", Progress: 100},
			{ID: 2, Title: "위성 통신 주파수 할당 현황", Progress: 75},
			{ID: 3, Title: "mmWave 기술의 산업 적용", Progress: 30},
		},
	}
}

// CrawlStatus returns the fixed crawl status board. It is not connected to
// real crawl invocations.
func (Catalog) CrawlStatus() CrawlStatus {
	jobs := []CrawlJob{
		{
			ID:            "job_001",
			Keyword:       "6G 기술",
			Status:        "running",
			Progress:      65,
			ArticlesFound: 23,
			StartedAt:     "2024-01-15 10:30:00",
		},
		{
			ID:            "job_002",
			Keyword:       "위성 통신",
			Status:        "completed",
			Progress:      100,
			ArticlesFound: 45,
			StartedAt:     "2024-01-15 09:00:00",
			CompletedAt:   "2024-01-15 09:15:00",
		},
	}
	status := CrawlStatus{Jobs: jobs, TotalJobs: len(jobs)}
	for _, job := range jobs {
		switch job.Status {
		case "running":
			status.RunningJobs++
		case "completed":
			status.CompletedJobs++
		}
	}
	return status
}
