package blogservice

import (
	"database/sql"
	"time"

	"github.com/sushihentaime/blogapi/internal/userservice"
)

const (
	StateDraft     = "draft"
	StatePublished = "published"
)

type Blog struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	// Body is free text; the reading time estimate is derived from it.
	Body        string            `json:"body"`
	Tags        []string          `json:"tags"`
	Author      *userservice.User `json:"author,omitempty"`
	AuthorID    int               `json:"author_id"`
	State       string            `json:"state"`
	ReadingTime int               `json:"reading_time"`
	ReadCount   int               `json:"read_count"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

type BlogModel struct {
	db *sql.DB
}

type BlogService struct {
	m *BlogModel
}
