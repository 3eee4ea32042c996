package cliclient

import "time"

// LoginRequest represents a login request. Email also accepts a username.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse represents a login response.
type LoginResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Token string `json:"token"`
}

// User represents a user as listed by the admin API.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

// GenerateRequest names the user and their friends.
type GenerateRequest struct {
	UserName    string   `json:"userName"`
	FriendNames []string `json:"friendNames"`
}

// Poem is a rendered poem.
type Poem struct {
	Text       string `json:"text"`
	TemplateID string `json:"templateId"`
}

// Analysis describes the placeholders in template text.
type Analysis struct {
	Tokens                 []string `json:"tokens"`
	UnknownTokens          []string `json:"unknownTokens"`
	MaxFriendIndexRequired int      `json:"maxFriendIndexRequired"`
}

// BackfillRequest configures a backfill job.
type BackfillRequest struct {
	BatchSize    int  `json:"batch_size,omitempty"`
	RecomputeAll bool `json:"recompute_all"`
}

// Job represents a background job.
type Job struct {
	ID          string     `json:"id"`
	Type        string     `json:"type"`
	Status      string     `json:"status"`
	Logs        string     `json:"logs"`
	Error       string     `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}
