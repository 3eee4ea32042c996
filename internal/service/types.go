package service

// TemplateRequest holds the editable fields of a template.
type TemplateRequest struct {
	Text         string
	Instructions string
}

// TrendingPoem is a template rendered with demo names for the landing page.
type TrendingPoem struct {
	TemplateID string `json:"templateId"`
	Text       string `json:"text"`
}

// BackfillRequest holds parameters for a fit backfill job.
type BackfillRequest struct {
	BatchSize    int
	RecomputeAll bool
}

// Demo names used to render trending poems.
var (
	TrendingUserName    = "आप"
	TrendingFriendNames = []string{"मोनू", "टिंकू", "बबलू"}
)

// TrendingCount is how many templates the trending feed shows.
const TrendingCount = 4
