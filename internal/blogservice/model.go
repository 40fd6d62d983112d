package blogservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/sushihentaime/blogapi/internal/userservice"
)

var (
	ErrRecordNotFound   = errors.New("record not found")
	ErrNotPermitted     = errors.New("blog not accessible")
	ErrInvalidState     = errors.New("invalid blog state")
	ErrAuthorForeignKey = errors.New("author does not exist")
)

func newBlogModel(db *sql.DB) *BlogModel {
	return &BlogModel{db: db}
}

// ForeignKeyError is a helper function to check if the error is a foreign key constraint error.
func ForeignKeyError(err error, name string) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Code == "23503" && pqErr.Constraint == name {
			return true
		}
	}

	return false
}

func (m *BlogModel) insert(ctx context.Context, b *Blog) error {
	query := `
		INSERT INTO blogs (title, description, body, tags, author_id, reading_time)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, state, read_count, created_at, updated_at`

	args := []any{b.Title, b.Description, b.Body, pq.Array(b.Tags), b.AuthorID, b.ReadingTime}

	err := m.db.QueryRowContext(ctx, query, args...).Scan(&b.ID, &b.State, &b.ReadCount, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		switch {
		case ForeignKeyError(err, "blogs_author_id_fkey"):
			return ErrAuthorForeignKey
		default:
			return err
		}
	}

	return nil
}

// getBlogById fetches a blog together with its author.
func (m *BlogModel) getBlogById(ctx context.Context, id int) (*Blog, error) {
	query := `
		SELECT b.id, b.title, b.description, b.body, b.tags, b.author_id, b.state, b.reading_time, b.read_count, b.created_at, b.updated_at,
			u.first_name, u.last_name, u.email, u.created_at, u.updated_at
		FROM blogs b
		JOIN users u ON u.id = b.author_id
		WHERE b.id = $1`

	row := m.db.QueryRowContext(ctx, query, id)

	var blog Blog
	blog.Author = &userservice.User{}

	err := row.Scan(&blog.ID, &blog.Title, &blog.Description, &blog.Body, pq.Array(&blog.Tags), &blog.AuthorID, &blog.State, &blog.ReadingTime, &blog.ReadCount, &blog.CreatedAt, &blog.UpdatedAt,
		&blog.Author.FirstName, &blog.Author.LastName, &blog.Author.Email, &blog.Author.CreatedAt, &blog.Author.UpdatedAt)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	blog.Author.ID = blog.AuthorID

	return &blog, nil
}

// updateBlog applies the non-nil fields to the blog scoped by (id, author).
// Zero matched rows means "does not exist or not yours" and both surface as
// ErrRecordNotFound.
func (m *BlogModel) updateBlog(ctx context.Context, id, authorID int, title, description, body *string, tags *[]string, readingTime *int) (*Blog, error) {
	query := `
		UPDATE blogs
		SET title = COALESCE($1, title),
			description = COALESCE($2, description),
			body = COALESCE($3, body),
			tags = COALESCE($4, tags),
			reading_time = COALESCE($5, reading_time),
			updated_at = now()
		WHERE id = $6 AND author_id = $7
		RETURNING id, title, description, body, tags, author_id, state, reading_time, read_count, created_at, updated_at`

	var tagsArg any
	if tags != nil {
		tagsArg = pq.Array(*tags)
	}

	args := []any{title, description, body, tagsArg, readingTime, id, authorID}

	var blog Blog
	err := m.db.QueryRowContext(ctx, query, args...).Scan(&blog.ID, &blog.Title, &blog.Description, &blog.Body, pq.Array(&blog.Tags), &blog.AuthorID, &blog.State, &blog.ReadingTime, &blog.ReadCount, &blog.CreatedAt, &blog.UpdatedAt)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return &blog, nil
}

func (m *BlogModel) updateBlogState(ctx context.Context, id, authorID int, state string) (*Blog, error) {
	query := `
		UPDATE blogs
		SET state = $1, updated_at = now()
		WHERE id = $2 AND author_id = $3
		RETURNING id, title, description, body, tags, author_id, state, reading_time, read_count, created_at, updated_at`

	var blog Blog
	err := m.db.QueryRowContext(ctx, query, state, id, authorID).Scan(&blog.ID, &blog.Title, &blog.Description, &blog.Body, pq.Array(&blog.Tags), &blog.AuthorID, &blog.State, &blog.ReadingTime, &blog.ReadCount, &blog.CreatedAt, &blog.UpdatedAt)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return &blog, nil
}

// updateReadCount persists a read counter value computed by the caller. The
// read and the write are two round trips; concurrent readers may lose an
// increment and that is accepted.
func (m *BlogModel) updateReadCount(ctx context.Context, id, count int) error {
	query := `
		UPDATE blogs
		SET read_count = $1
		WHERE id = $2`

	_, err := m.db.ExecContext(ctx, query, count, id)
	return err
}

func (m *BlogModel) deleteBlog(ctx context.Context, id, authorID int) error {
	query := `
		DELETE FROM blogs
		WHERE id = $1 AND author_id = $2`

	res, err := m.db.ExecContext(ctx, query, id, authorID)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if rows != 1 {
		switch {
		case rows == 0:
			return ErrRecordNotFound
		default:
			return fmt.Errorf("expected 1 row to be affected, got %d", rows)
		}
	}

	return nil
}

// listBlogs composes the filtered, sorted and paginated listing query. The
// total matching count rides along on every row via a window function. An
// authorID greater than zero scopes the listing to that author.
func (m *BlogModel) listBlogs(ctx context.Context, authorID int, f Filter) ([]Blog, Metadata, error) {
	conditions := []string{"TRUE"}
	args := []any{}

	arg := func(value any) string {
		args = append(args, value)
		return fmt.Sprintf("$%d", len(args))
	}

	if authorID > 0 {
		conditions = append(conditions, fmt.Sprintf("b.author_id = %s", arg(authorID)))
	}

	if f.State != "" {
		conditions = append(conditions, fmt.Sprintf("b.state = %s", arg(f.State)))
	}

	if f.Title != "" {
		conditions = append(conditions, fmt.Sprintf("b.title ILIKE '%%' || %s || '%%'", arg(f.Title)))
	}

	if len(f.Tags) > 0 {
		conditions = append(conditions, fmt.Sprintf("b.tags && %s", arg(pq.Array(f.Tags))))
	}

	if f.Author != "" {
		p := arg(f.Author)
		conditions = append(conditions, fmt.Sprintf(`b.author_id IN (
			SELECT id FROM users
			WHERE first_name ILIKE '%%' || %[1]s || '%%'
				OR last_name ILIKE '%%' || %[1]s || '%%'
				OR email ILIKE '%%' || %[1]s || '%%')`, p))
	}

	query := fmt.Sprintf(`
		SELECT count(*) OVER(), b.id, b.title, b.description, b.body, b.tags, b.author_id, b.state, b.reading_time, b.read_count, b.created_at, b.updated_at,
			u.first_name, u.last_name, u.email, u.created_at, u.updated_at
		FROM blogs b
		JOIN users u ON u.id = b.author_id
		WHERE %s
		ORDER BY %s
		LIMIT %s OFFSET %s`,
		strings.Join(conditions, " AND "), f.orderBy(), arg(f.limit()), arg(f.offset()))

	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, Metadata{}, err
	}
	defer rows.Close()

	total := 0
	blogs := []Blog{}

	for rows.Next() {
		var blog Blog
		blog.Author = &userservice.User{}

		err := rows.Scan(&total, &blog.ID, &blog.Title, &blog.Description, &blog.Body, pq.Array(&blog.Tags), &blog.AuthorID, &blog.State, &blog.ReadingTime, &blog.ReadCount, &blog.CreatedAt, &blog.UpdatedAt,
			&blog.Author.FirstName, &blog.Author.LastName, &blog.Author.Email, &blog.Author.CreatedAt, &blog.Author.UpdatedAt)
		if err != nil {
			return nil, Metadata{}, err
		}

		blog.Author.ID = blog.AuthorID
		blogs = append(blogs, blog)
	}

	if err := rows.Err(); err != nil {
		return nil, Metadata{}, err
	}

	return blogs, calculateMetadata(total, f.Page, f.PerPage), nil
}
