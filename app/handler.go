package main

import (
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/sushihentaime/blogapi/internal/blogservice"
	"github.com/sushihentaime/blogapi/internal/common"
	"github.com/sushihentaime/blogapi/internal/userservice"
)

func validationErrors(err error) map[string]string {
	var v common.ValidationError
	errors.As(err, &v)
	return v.Errors
}

type signupUserRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

func (app *application) signupUserHandler(w http.ResponseWriter, r *http.Request) {
	var input signupUserRequest

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	user, token, err := app.userService.RegisterUser(r.Context(), input.FirstName, input.LastName, input.Email, input.Password)
	if err != nil {
		switch {
		case errors.Is(err, userservice.ErrDuplicateEmail):
			app.failedValidationErrorResponse(w, r, map[string]string{"email": "a user with this email address already exists"})
		case errors.As(err, &common.ValidationError{}):
			app.failedValidationErrorResponse(w, r, validationErrors(err))
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusCreated, envelope{"token": token.Plain, "user": user}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

type signinUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (app *application) signinUserHandler(w http.ResponseWriter, r *http.Request) {
	var input signinUserRequest

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	user, token, err := app.userService.LoginUser(r.Context(), input.Email, input.Password)
	if err != nil {
		switch {
		case errors.Is(err, userservice.ErrAuthenticationFailure):
			app.invalidCredentialsErrorResponse(w, r)
		case errors.As(err, &common.ValidationError{}):
			app.failedValidationErrorResponse(w, r, validationErrors(err))
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"token": token.Plain, "user": user}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) signoutUserHandler(w http.ResponseWriter, r *http.Request) {
	user := app.getUserContext(r)

	err := app.userService.LogoutUser(r.Context(), user.ID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"message": "user signed out"}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

type createBlogRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Body        string   `json:"body"`
	// State is accepted but discarded: new blogs always start as drafts.
	State string `json:"state"`
}

func (app *application) createBlogHandler(w http.ResponseWriter, r *http.Request) {
	var input createBlogRequest

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	user := app.getUserContext(r)

	blog, err := app.blogService.CreateBlog(r.Context(), &blogservice.CreateBlogRequest{
		Title:       input.Title,
		Description: input.Description,
		Tags:        input.Tags,
		Body:        input.Body,
		AuthorID:    user.ID,
	})
	if err != nil {
		switch {
		case errors.As(err, &common.ValidationError{}):
			app.failedValidationErrorResponse(w, r, validationErrors(err))
		case errors.Is(err, blogservice.ErrAuthorForeignKey):
			app.invalidAuthenticationTokenResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusCreated, envelope{"blog": blog}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) getBlogHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	// the route is optional-auth: an anonymous requester has ID zero
	user := app.getUserContext(r)

	blog, err := app.blogService.GetBlog(r.Context(), id, user.ID)
	if err != nil {
		switch {
		case errors.Is(err, blogservice.ErrRecordNotFound):
			app.notFoundErrorResponse(w, r)
		case errors.Is(err, blogservice.ErrNotPermitted):
			app.forbiddenErrorResponse(w, r)
		case errors.As(err, &common.ValidationError{}):
			app.failedValidationErrorResponse(w, r, validationErrors(err))
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"blog": blog}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

type updateBlogRequest struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Tags        *[]string `json:"tags"`
	Body        *string   `json:"body"`
	// State is accepted but discarded: state only changes through the
	// dedicated state endpoint.
	State *string `json:"state"`
}

func (app *application) updateBlogHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	var input updateBlogRequest

	err = app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	user := app.getUserContext(r)

	blog, err := app.blogService.UpdateBlog(r.Context(), id, user.ID, &blogservice.UpdateBlogRequest{
		Title:       input.Title,
		Description: input.Description,
		Tags:        input.Tags,
		Body:        input.Body,
	})
	if err != nil {
		switch {
		case errors.Is(err, blogservice.ErrRecordNotFound):
			app.notFoundErrorResponse(w, r)
		case errors.As(err, &common.ValidationError{}):
			app.failedValidationErrorResponse(w, r, validationErrors(err))
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"blog": blog}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

type changeBlogStateRequest struct {
	State string `json:"state"`
}

func (app *application) changeBlogStateHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	var input changeBlogStateRequest

	err = app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	user := app.getUserContext(r)

	blog, err := app.blogService.ChangeBlogState(r.Context(), id, user.ID, input.State)
	if err != nil {
		switch {
		case errors.Is(err, blogservice.ErrInvalidState):
			app.badRequestErrorResponse(w, r, err)
		case errors.Is(err, blogservice.ErrRecordNotFound):
			app.notFoundErrorResponse(w, r)
		case errors.As(err, &common.ValidationError{}):
			app.failedValidationErrorResponse(w, r, validationErrors(err))
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"blog": blog}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) deleteBlogHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	user := app.getUserContext(r)

	err = app.blogService.DeleteBlog(r.Context(), id, user.ID)
	if err != nil {
		switch {
		case errors.Is(err, blogservice.ErrRecordNotFound):
			app.notFoundErrorResponse(w, r)
		case errors.As(err, &common.ValidationError{}):
			app.failedValidationErrorResponse(w, r, validationErrors(err))
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"message": "blog deleted"}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// readListFilter builds the common listing filter from the query string.
func (app *application) readListFilter(r *http.Request) (blogservice.Filter, error) {
	page, err := app.readQueryInt(r, "page", 1)
	if err != nil {
		return blogservice.Filter{}, err
	}

	perPage, err := app.readQueryInt(r, "per_page", app.config.DefaultPageSize)
	if err != nil {
		return blogservice.Filter{}, err
	}

	query := r.URL.Query()

	return blogservice.Filter{
		State:   query.Get("state"),
		Title:   query.Get("title"),
		Author:  query.Get("author"),
		Tags:    app.readQueryCSV(r, "tags"),
		Page:    page,
		PerPage: perPage,
		SortBy:  query.Get("sort_by"),
	}, nil
}

func (app *application) listBlogsHandler(w http.ResponseWriter, r *http.Request) {
	filter, err := app.readListFilter(r)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	blogs, meta, err := app.blogService.ListBlogs(r.Context(), filter)
	if err != nil {
		switch {
		case errors.As(err, &common.ValidationError{}):
			app.failedValidationErrorResponse(w, r, validationErrors(err))
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"meta": meta, "data": blogs}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) listMyBlogsHandler(w http.ResponseWriter, r *http.Request) {
	// registered as /api/blogs/:id/list; only /api/blogs/me/list is real
	if httprouter.ParamsFromContext(r.Context()).ByName("id") != "me" {
		app.notFoundErrorResponse(w, r)
		return
	}

	filter, err := app.readListFilter(r)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	user := app.getUserContext(r)

	blogs, meta, err := app.blogService.ListBlogsByAuthor(r.Context(), user.ID, filter)
	if err != nil {
		switch {
		case errors.As(err, &common.ValidationError{}):
			app.failedValidationErrorResponse(w, r, validationErrors(err))
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"meta": meta, "data": blogs}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
