package factserver

import "github.com/anatolykoptev/go_factcheck/internal/toolutil"

// URLInput is the input for tools that take a single video URL.
type URLInput struct {
	URL string `json:"url" jsonschema:"YouTube video URL, passed to the backend as-is"`
}

// FactCheckOutput is the output for video_fact_check.
type FactCheckOutput struct {
	URL          string   `json:"url"`
	ThumbnailURL string   `json:"thumbnail_url,omitempty"`
	Claims       []string `json:"claims"`
	Error        string   `json:"error,omitempty"`
	HistoryID    int64    `json:"history_id,omitempty"`
	Markdown     string   `json:"markdown"`
}

// VideoInfoOutput is the output for video_info.
type VideoInfoOutput struct {
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	Title        string `json:"title,omitempty"`
}

// ClaimsOutput is the output for extract_claims.
type ClaimsOutput struct {
	URL        string   `json:"url"`
	Claims     []string `json:"claims"`
	Transcript string   `json:"transcript,omitempty"`
}

// HistoryListInput is the input for fact_check_history.
type HistoryListInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"Max records to return (default 20, max 100)"`
}

// HistoryListOutput is the output for fact_check_history.
type HistoryListOutput struct {
	Items []toolutil.HistoryItem `json:"items"`
	Total int                    `json:"total"`
}

// HistoryGetInput is the input for fact_check_get.
type HistoryGetInput struct {
	ID int64 `json:"id" jsonschema:"History record ID from fact_check_history"`
}
