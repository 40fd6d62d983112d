package blogservice

import (
	"context"
	"database/sql"

	"github.com/sushihentaime/blogapi/internal/common"
)

func NewBlogService(db *sql.DB) *BlogService {
	return &BlogService{m: newBlogModel(db)}
}

type CreateBlogRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Body        string   `json:"body"`
	AuthorID    int      `json:"-"`
}

// CreateBlog creates a new blog post in draft state. The state is never taken
// from the request; the reading time is derived from the body and the read
// counter starts at zero.
func (s *BlogService) CreateBlog(ctx context.Context, req *CreateBlogRequest) (*Blog, error) {
	v := common.NewValidator()
	validateTitle(v, req.Title)
	validateTags(v, req.Tags)
	validateInt(v, req.AuthorID, "author_id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	blog := &Blog{
		Title:       req.Title,
		Description: req.Description,
		Body:        sanitizeBody(req.Body),
		Tags:        req.Tags,
		AuthorID:    req.AuthorID,
	}
	blog.ReadingTime = ReadingTime(blog.Body)

	if blog.Tags == nil {
		blog.Tags = []string{}
	}

	err := s.m.insert(ctx, blog)
	if err != nil {
		return nil, err
	}

	return blog, nil
}

type UpdateBlogRequest struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Tags        *[]string `json:"tags"`
	Body        *string   `json:"body"`
}

// UpdateBlog applies only the supplied fields to a blog owned by authorID. A
// body change recomputes the reading time. A blog that does not exist and a
// blog owned by someone else are indistinguishable: both return
// ErrRecordNotFound.
func (s *BlogService) UpdateBlog(ctx context.Context, id, authorID int, req *UpdateBlogRequest) (*Blog, error) {
	v := common.NewValidator()
	validateInt(v, id, "id")
	validateInt(v, authorID, "author_id")
	if req.Title != nil {
		validateTitle(v, *req.Title)
	}
	if req.Tags != nil {
		validateTags(v, *req.Tags)
	}
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	var readingTime *int
	if req.Body != nil {
		clean := sanitizeBody(*req.Body)
		req.Body = &clean

		rt := ReadingTime(clean)
		readingTime = &rt
	}

	return s.m.updateBlog(ctx, id, authorID, req.Title, req.Description, req.Body, req.Tags, readingTime)
}

// ChangeBlogState moves a blog between draft and published. Both directions
// are allowed; anything other than those two states is rejected.
func (s *BlogService) ChangeBlogState(ctx context.Context, id, authorID int, state string) (*Blog, error) {
	v := common.NewValidator()
	validateInt(v, id, "id")
	validateInt(v, authorID, "author_id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	if !common.PermittedValue(state, StateDraft, StatePublished) {
		return nil, ErrInvalidState
	}

	return s.m.updateBlogState(ctx, id, authorID, state)
}

// DeleteBlog removes a blog owned by authorID, with the same
// existence/ownership conflation as UpdateBlog.
func (s *BlogService) DeleteBlog(ctx context.Context, id, authorID int) error {
	v := common.NewValidator()
	validateInt(v, id, "id")
	validateInt(v, authorID, "author_id")
	if !v.Valid() {
		return v.ValidationError()
	}

	return s.m.deleteBlog(ctx, id, authorID)
}

// GetBlog fetches a single blog. Drafts are only visible to their author; a
// requesterID of zero means anonymous. Every successful read of a published
// blog bumps its read counter before the blog is returned, author included.
func (s *BlogService) GetBlog(ctx context.Context, id, requesterID int) (*Blog, error) {
	v := common.NewValidator()
	validateInt(v, id, "id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	blog, err := s.m.getBlogById(ctx, id)
	if err != nil {
		return nil, err
	}

	if blog.State == StateDraft && blog.AuthorID != requesterID {
		return nil, ErrNotPermitted
	}

	if blog.State == StatePublished {
		blog.ReadCount++
		if err := s.m.updateReadCount(ctx, blog.ID, blog.ReadCount); err != nil {
			return nil, err
		}
	}

	return blog, nil
}

// ListBlogs is the public listing. Without an explicit state filter it is
// restricted to published blogs; an explicit state filter is honored as
// supplied, even for anonymous callers.
func (s *BlogService) ListBlogs(ctx context.Context, f Filter) ([]Blog, Metadata, error) {
	v := common.NewValidator()
	f.validate(v)
	if !v.Valid() {
		return nil, Metadata{}, v.ValidationError()
	}

	if f.State == "" {
		f.State = StatePublished
	}

	return s.m.listBlogs(ctx, 0, f)
}

// ListBlogsByAuthor lists the author's own blogs with the same filter, sort
// and pagination mechanics as ListBlogs but no default state restriction.
func (s *BlogService) ListBlogsByAuthor(ctx context.Context, authorID int, f Filter) ([]Blog, Metadata, error) {
	v := common.NewValidator()
	validateInt(v, authorID, "author_id")
	f.validate(v)
	if !v.Valid() {
		return nil, Metadata{}, v.ValidationError()
	}

	return s.m.listBlogs(ctx, authorID, f)
}
