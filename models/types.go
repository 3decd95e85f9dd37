package models

import "time"

// Default status for new feature requests; any string is accepted afterwards
const StatusOpen = "open"

// Priority bounds (0 = none, 3 = critical)
const (
	MinPriority = 0
	MaxPriority = 3
)

// Activity item kinds
const (
	ActivityFeature = "feature"
	ActivityVote    = "vote"
	ActivityComment = "comment"
)

// Request types

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type CreateBoardRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Slug        string `json:"slug"`
}

// Nil fields are left unchanged
type UpdateBoardRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type CreateFeatureRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
	Priority    int      `json:"priority"`
	AuthorName  string   `json:"author_name"`
	AuthorEmail string   `json:"author_email"`
}

type UpdateFeatureRequest struct {
	Status string `json:"status"`
}

type VoteRequest struct {
	IsDownvote bool    `json:"is_downvote"`
	Reason     *string `json:"reason"`
}

type CreateCommentRequest struct {
	Content     string `json:"content"`
	AuthorName  string `json:"author_name"`
	AuthorEmail string `json:"author_email"`
}

// Response types

type AuthResponse struct {
	User      User      `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type UserResponse struct {
	User User `json:"user"`
}

// IsDownvote is null when the visitor no longer has a vote
type VoteResponse struct {
	VoteCount  int    `json:"vote_count"`
	HasVoted   bool   `json:"has_voted"`
	IsDownvote *bool  `json:"is_downvote"`
	Message    string `json:"message"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type DashboardResponse struct {
	Boards         []Board        `json:"boards"`
	Stats          DashboardStats `json:"stats"`
	RecentActivity []ActivityItem `json:"recent_activity"`
}

// Domain types

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never expose in JSON
	CreatedAt    time.Time `json:"created_at"`
}

type Board struct {
	ID           string    `json:"id"`
	Slug         string    `json:"slug"`
	Name         string    `json:"name"`
	Description  *string   `json:"description,omitempty"`
	UserID       string    `json:"user_id"`
	FeatureCount int       `json:"feature_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type BoardWithFeatures struct {
	Board    Board     `json:"board"`
	Features []Feature `json:"features"`
}

type Feature struct {
	ID           string    `json:"id"`
	BoardID      string    `json:"board_id"`
	BoardName    string    `json:"board_name,omitempty"`
	BoardSlug    string    `json:"board_slug,omitempty"`
	Title        string    `json:"title"`
	Description  *string   `json:"description,omitempty"`
	Status       string    `json:"status"`
	Category     *string   `json:"category,omitempty"`
	Tags         []string  `json:"tags"`
	Priority     int       `json:"priority"`
	AuthorName   string    `json:"author_name"`
	AuthorEmail  *string   `json:"author_email,omitempty"`
	VoteCount    int       `json:"vote_count"`
	Upvotes      int       `json:"upvotes"`
	Downvotes    int       `json:"downvotes"`
	CommentCount int       `json:"comment_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// FeatureDetail adds rendered markdown and the caller's own vote
type FeatureDetail struct {
	Feature
	DescriptionHTML string `json:"description_html"`
	HasVoted        bool   `json:"has_voted"`
	IsDownvote      *bool  `json:"is_downvote"`
}

type Vote struct {
	ID          string    `json:"id"`
	FeatureID   string    `json:"feature_id"`
	VisitorHash string    `json:"-"` // Never expose in JSON
	IsDownvote  bool      `json:"is_downvote"`
	Reason      *string   `json:"reason,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Comment struct {
	ID          string    `json:"id"`
	FeatureID   string    `json:"feature_id"`
	Content     string    `json:"content"`
	ContentHTML string    `json:"content_html"`
	AuthorName  string    `json:"author_name"`
	AuthorEmail *string   `json:"author_email,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	Ago         string    `json:"ago"`
}

// Dashboard types

type DashboardStats struct {
	TotalFeatures     int `json:"total_features"`
	TotalVotes        int `json:"total_votes"`
	TotalComments     int `json:"total_comments"`
	FeaturesThisMonth int `json:"features_this_month"`
	VotesThisMonth    int `json:"votes_this_month"`
	CommentsThisMonth int `json:"comments_this_month"`
}

// ActivityItem is one entry of the owner's activity feed.
// For votes and comments, Title is the parent feature's title.
type ActivityItem struct {
	Type      string    `json:"type"`
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	BoardName string    `json:"board_name"`
	BoardSlug string    `json:"board_slug"`
	CreatedAt time.Time `json:"created_at"`
	Ago       string    `json:"ago"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
