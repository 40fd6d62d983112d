package main

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// signupTestUser registers a user through the API and returns the bearer
// token together with the user id.
func signupTestUser(t *testing.T, ts *testServer, email string) (string, int) {
	t.Helper()

	status, _, env := ts.post(t, "/api/auth/signup", map[string]any{
		"first_name": "Test",
		"last_name":  "User",
		"email":      email,
		"password":   "Test_1234!",
	}, nil)
	if status != http.StatusCreated {
		t.Fatalf("signup failed with status %d: %s", status, env.JSON())
	}

	token := env["token"].(string)
	id := int(env["user"].(map[string]any)["id"].(float64))

	return token, id
}

// createTestBlog creates a blog through the API and returns its id.
func createTestBlog(t *testing.T, ts *testServer, token string, payload map[string]any) int {
	t.Helper()

	status, _, env := ts.post(t, "/api/blogs", payload, &token)
	if status != http.StatusCreated {
		t.Fatalf("create blog failed with status %d: %s", status, env.JSON())
	}

	return int(env["blog"].(map[string]any)["id"].(float64))
}

// publishTestBlog moves a blog into the published state through the API.
func publishTestBlog(t *testing.T, ts *testServer, token string, id int) {
	t.Helper()

	status, _, env := ts.patch(t, fmt.Sprintf("/api/blogs/%d/state", id), &token, map[string]any{"state": "published"})
	if status != http.StatusOK {
		t.Fatalf("publish blog failed with status %d: %s", status, env.JSON())
	}
}

func blogFromEnvelope(t *testing.T, env envelope) map[string]any {
	t.Helper()

	blog, ok := env["blog"].(map[string]any)
	if !ok {
		t.Fatalf("response has no blog object: %s", env.JSON())
	}

	return blog
}

func TestSignupUserHandler(t *testing.T) {
	app, _ := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	testCases := []struct {
		name       string
		payload    any
		wantStatus int
		wantErrors map[string]string
	}{
		{
			name: "Valid Request",
			payload: map[string]any{
				"first_name": "Test",
				"last_name":  "User",
				"email":      "testuser@example.com",
				"password":   "Test_1234!",
			},
			wantStatus: http.StatusCreated,
		},
		{
			name: "Invalid Email",
			payload: map[string]any{
				"first_name": "Test",
				"last_name":  "User",
				"email":      "not-an-email",
				"password":   "Test_1234!",
			},
			wantStatus: http.StatusUnprocessableEntity,
			wantErrors: map[string]string{"email": "must be a valid email address"},
		},
		{
			name: "Short Password",
			payload: map[string]any{
				"first_name": "Test",
				"last_name":  "User",
				"email":      "short@example.com",
				"password":   "short",
			},
			wantStatus: http.StatusUnprocessableEntity,
			wantErrors: map[string]string{"password": "must be between 8 and 72 characters long"},
		},
		{
			name: "Missing First Name",
			payload: map[string]any{
				"last_name": "User",
				"email":     "noname@example.com",
				"password":  "Test_1234!",
			},
			wantStatus: http.StatusUnprocessableEntity,
			wantErrors: map[string]string{"first_name": "must be provided"},
		},
		{
			name: "Duplicate Email",
			payload: map[string]any{
				"first_name": "Other",
				"last_name":  "User",
				"email":      "testuser@example.com",
				"password":   "Test_1234!",
			},
			wantStatus: http.StatusUnprocessableEntity,
			wantErrors: map[string]string{"email": "a user with this email address already exists"},
		},
		{
			name:       "Unknown Field",
			payload:    map[string]any{"username": "testuser"},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			status, _, env := ts.post(t, "/api/auth/signup", tc.payload, nil)

			assert.Equal(t, tc.wantStatus, status)

			if tc.wantStatus == http.StatusCreated {
				token, ok := env["token"].(string)
				assert.True(t, ok)
				assert.Len(t, token, 26)

				user := env["user"].(map[string]any)
				assert.Equal(t, "testuser@example.com", user["email"])
				assert.Equal(t, "Test", user["first_name"])
				assert.NotContains(t, user, "password")
			}

			for field, message := range tc.wantErrors {
				errs, ok := env["error"].(map[string]any)
				assert.True(t, ok)
				assert.Equal(t, message, errs[field])
			}
		})
	}
}

func TestSigninUserHandler(t *testing.T) {
	app, _ := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	signupTestUser(t, ts, "testuser@example.com")

	testCases := []struct {
		name       string
		payload    any
		wantStatus int
	}{
		{
			name:       "Valid Credentials",
			payload:    map[string]any{"email": "testuser@example.com", "password": "Test_1234!"},
			wantStatus: http.StatusOK,
		},
		{
			name:       "Wrong Password",
			payload:    map[string]any{"email": "testuser@example.com", "password": "Wrong_1234!"},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "Unknown Email",
			payload:    map[string]any{"email": "nobody@example.com", "password": "Test_1234!"},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "Invalid Email Format",
			payload:    map[string]any{"email": "nobody", "password": "Test_1234!"},
			wantStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			status, _, env := ts.post(t, "/api/auth/signin", tc.payload, nil)

			assert.Equal(t, tc.wantStatus, status)

			if tc.wantStatus == http.StatusOK {
				token, ok := env["token"].(string)
				assert.True(t, ok)
				assert.Len(t, token, 26)
			}
		})
	}
}

func TestSignoutUserHandler(t *testing.T) {
	app, _ := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	token, _ := signupTestUser(t, ts, "testuser@example.com")

	t.Run("Without Token", func(t *testing.T) {
		status, _, _ := ts.post(t, "/api/auth/signout", nil, nil)
		assert.Equal(t, http.StatusUnauthorized, status)
	})

	t.Run("With Token", func(t *testing.T) {
		status, _, env := ts.post(t, "/api/auth/signout", nil, &token)
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, "user signed out", env["message"])
	})

	t.Run("Token Revoked After Signout", func(t *testing.T) {
		status, _, _ := ts.post(t, "/api/auth/signout", nil, &token)
		assert.Equal(t, http.StatusUnauthorized, status)
	})
}

func TestCreateBlogHandler(t *testing.T) {
	app, _ := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	token, userID := signupTestUser(t, ts, "author@example.com")

	t.Run("Without Token", func(t *testing.T) {
		status, _, _ := ts.post(t, "/api/blogs", map[string]any{"title": "My Post"}, nil)
		assert.Equal(t, http.StatusUnauthorized, status)
	})

	t.Run("Valid Request", func(t *testing.T) {
		body := strings.TrimSpace(strings.Repeat("word ", 250))

		status, _, env := ts.post(t, "/api/blogs", map[string]any{
			"title":       "My First Post",
			"description": "a short description",
			"tags":        []string{"go", "testing"},
			"body":        body,
		}, &token)

		assert.Equal(t, http.StatusCreated, status)

		blog := blogFromEnvelope(t, env)
		assert.Equal(t, "My First Post", blog["title"])
		assert.Equal(t, "draft", blog["state"])
		assert.Equal(t, float64(2), blog["reading_time"])
		assert.Equal(t, float64(0), blog["read_count"])
		assert.Equal(t, float64(userID), blog["author_id"])
		assert.Equal(t, []any{"go", "testing"}, blog["tags"])
	})

	t.Run("Supplied State Is Ignored", func(t *testing.T) {
		status, _, env := ts.post(t, "/api/blogs", map[string]any{
			"title": "Sneaky Post",
			"body":  "content",
			"state": "published",
		}, &token)

		assert.Equal(t, http.StatusCreated, status)
		assert.Equal(t, "draft", blogFromEnvelope(t, env)["state"])
	})

	t.Run("No Tags Defaults To Empty List", func(t *testing.T) {
		status, _, env := ts.post(t, "/api/blogs", map[string]any{
			"title": "Untagged Post",
			"body":  "hello world",
		}, &token)

		assert.Equal(t, http.StatusCreated, status)

		blog := blogFromEnvelope(t, env)
		assert.Equal(t, []any{}, blog["tags"])
		assert.Equal(t, float64(1), blog["reading_time"])
	})

	t.Run("Missing Title", func(t *testing.T) {
		status, _, env := ts.post(t, "/api/blogs", map[string]any{
			"body": "hello world",
		}, &token)

		assert.Equal(t, http.StatusUnprocessableEntity, status)

		errs := env["error"].(map[string]any)
		assert.Equal(t, "must be provided", errs["title"])
	})
}

func TestGetBlogHandler(t *testing.T) {
	app, _ := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	authorToken, _ := signupTestUser(t, ts, "author@example.com")
	otherToken, _ := signupTestUser(t, ts, "other@example.com")

	publishedID := createTestBlog(t, ts, authorToken, map[string]any{
		"title": "Published Post",
		"body":  "content here",
	})
	publishTestBlog(t, ts, authorToken, publishedID)

	draftID := createTestBlog(t, ts, authorToken, map[string]any{
		"title": "Draft Post",
		"body":  "unfinished content",
	})

	t.Run("Published Anonymous", func(t *testing.T) {
		status, _, env := ts.get(t, fmt.Sprintf("/api/blogs/%d", publishedID), nil)

		assert.Equal(t, http.StatusOK, status)

		blog := blogFromEnvelope(t, env)
		assert.Equal(t, "Published Post", blog["title"])
		assert.Equal(t, float64(1), blog["read_count"])

		author, ok := blog["author"].(map[string]any)
		assert.True(t, ok)
		assert.Equal(t, "author@example.com", author["email"])
	})

	t.Run("Read Count Increments Per Access", func(t *testing.T) {
		status, _, env := ts.get(t, fmt.Sprintf("/api/blogs/%d", publishedID), nil)

		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, float64(2), blogFromEnvelope(t, env)["read_count"])
	})

	t.Run("Draft Visible To Author", func(t *testing.T) {
		status, _, env := ts.get(t, fmt.Sprintf("/api/blogs/%d", draftID), &authorToken)

		assert.Equal(t, http.StatusOK, status)

		blog := blogFromEnvelope(t, env)
		assert.Equal(t, "Draft Post", blog["title"])
		assert.Equal(t, float64(0), blog["read_count"])
	})

	t.Run("Draft Hidden From Anonymous", func(t *testing.T) {
		status, _, _ := ts.get(t, fmt.Sprintf("/api/blogs/%d", draftID), nil)
		assert.Equal(t, http.StatusForbidden, status)
	})

	t.Run("Draft Hidden From Other User", func(t *testing.T) {
		status, _, _ := ts.get(t, fmt.Sprintf("/api/blogs/%d", draftID), &otherToken)
		assert.Equal(t, http.StatusForbidden, status)
	})

	t.Run("Unknown Blog", func(t *testing.T) {
		status, _, _ := ts.get(t, "/api/blogs/99999", nil)
		assert.Equal(t, http.StatusNotFound, status)
	})

	t.Run("Invalid ID", func(t *testing.T) {
		status, _, _ := ts.get(t, "/api/blogs/abc", nil)
		assert.Equal(t, http.StatusBadRequest, status)
	})
}

func TestUpdateBlogHandler(t *testing.T) {
	app, _ := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	authorToken, _ := signupTestUser(t, ts, "author@example.com")
	otherToken, _ := signupTestUser(t, ts, "other@example.com")

	id := createTestBlog(t, ts, authorToken, map[string]any{
		"title": "Original Title",
		"body":  "original body",
	})

	t.Run("Without Token", func(t *testing.T) {
		status, _, _ := ts.put(t, fmt.Sprintf("/api/blogs/%d", id), nil, map[string]any{"title": "New"})
		assert.Equal(t, http.StatusUnauthorized, status)
	})

	t.Run("Other User Sees Not Found", func(t *testing.T) {
		status, _, _ := ts.put(t, fmt.Sprintf("/api/blogs/%d", id), &otherToken, map[string]any{"title": "Hijacked"})
		assert.Equal(t, http.StatusNotFound, status)
	})

	t.Run("Partial Update Keeps Other Fields", func(t *testing.T) {
		status, _, env := ts.put(t, fmt.Sprintf("/api/blogs/%d", id), &authorToken, map[string]any{"title": "Updated Title"})

		assert.Equal(t, http.StatusOK, status)

		blog := blogFromEnvelope(t, env)
		assert.Equal(t, "Updated Title", blog["title"])
		assert.Equal(t, "original body", blog["body"])
	})

	t.Run("Supplied State Is Ignored", func(t *testing.T) {
		status, _, env := ts.put(t, fmt.Sprintf("/api/blogs/%d", id), &authorToken, map[string]any{
			"title": "Still A Draft",
			"state": "published",
		})

		assert.Equal(t, http.StatusOK, status)

		blog := blogFromEnvelope(t, env)
		assert.Equal(t, "Still A Draft", blog["title"])
		assert.Equal(t, "draft", blog["state"])
	})

	t.Run("Body Update Recomputes Reading Time", func(t *testing.T) {
		body := strings.TrimSpace(strings.Repeat("word ", 450))

		status, _, env := ts.put(t, fmt.Sprintf("/api/blogs/%d", id), &authorToken, map[string]any{"body": body})

		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, float64(3), blogFromEnvelope(t, env)["reading_time"])
	})

	t.Run("Unknown Blog", func(t *testing.T) {
		status, _, _ := ts.put(t, "/api/blogs/99999", &authorToken, map[string]any{"title": "New"})
		assert.Equal(t, http.StatusNotFound, status)
	})
}

func TestChangeBlogStateHandler(t *testing.T) {
	app, _ := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	authorToken, _ := signupTestUser(t, ts, "author@example.com")
	otherToken, _ := signupTestUser(t, ts, "other@example.com")

	id := createTestBlog(t, ts, authorToken, map[string]any{
		"title": "State Machine Post",
		"body":  "content",
	})

	t.Run("Publish", func(t *testing.T) {
		status, _, env := ts.patch(t, fmt.Sprintf("/api/blogs/%d/state", id), &authorToken, map[string]any{"state": "published"})

		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, "published", blogFromEnvelope(t, env)["state"])
	})

	t.Run("Unpublish", func(t *testing.T) {
		status, _, env := ts.patch(t, fmt.Sprintf("/api/blogs/%d/state", id), &authorToken, map[string]any{"state": "draft"})

		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, "draft", blogFromEnvelope(t, env)["state"])
	})

	t.Run("Invalid State", func(t *testing.T) {
		status, _, _ := ts.patch(t, fmt.Sprintf("/api/blogs/%d/state", id), &authorToken, map[string]any{"state": "archived"})
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("Other User Sees Not Found", func(t *testing.T) {
		status, _, _ := ts.patch(t, fmt.Sprintf("/api/blogs/%d/state", id), &otherToken, map[string]any{"state": "published"})
		assert.Equal(t, http.StatusNotFound, status)
	})
}

func TestDeleteBlogHandler(t *testing.T) {
	app, _ := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	authorToken, _ := signupTestUser(t, ts, "author@example.com")
	otherToken, _ := signupTestUser(t, ts, "other@example.com")

	id := createTestBlog(t, ts, authorToken, map[string]any{
		"title": "Doomed Post",
		"body":  "content",
	})

	t.Run("Other User Sees Not Found", func(t *testing.T) {
		status, _, _ := ts.delete(t, fmt.Sprintf("/api/blogs/%d", id), &otherToken)
		assert.Equal(t, http.StatusNotFound, status)
	})

	t.Run("Author Deletes", func(t *testing.T) {
		status, _, env := ts.delete(t, fmt.Sprintf("/api/blogs/%d", id), &authorToken)

		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, "blog deleted", env["message"])
	})

	t.Run("Gone After Delete", func(t *testing.T) {
		status, _, _ := ts.get(t, fmt.Sprintf("/api/blogs/%d", id), &authorToken)
		assert.Equal(t, http.StatusNotFound, status)
	})
}

func TestListBlogsHandler(t *testing.T) {
	app, _ := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	authorToken, _ := signupTestUser(t, ts, "jane.doe@example.com")

	firstID := createTestBlog(t, ts, authorToken, map[string]any{
		"title": "Go Concurrency Patterns",
		"tags":  []string{"go", "concurrency"},
		"body":  "content one",
	})
	publishTestBlog(t, ts, authorToken, firstID)

	secondID := createTestBlog(t, ts, authorToken, map[string]any{
		"title": "Postgres Indexing",
		"tags":  []string{"postgres"},
		"body":  "content two",
	})
	publishTestBlog(t, ts, authorToken, secondID)

	// stays a draft
	createTestBlog(t, ts, authorToken, map[string]any{
		"title": "Unfinished Thoughts",
		"body":  "content three",
	})

	listTitles := func(env envelope) []string {
		var titles []string
		for _, item := range env["data"].([]any) {
			titles = append(titles, item.(map[string]any)["title"].(string))
		}
		return titles
	}

	t.Run("Defaults To Published", func(t *testing.T) {
		status, _, env := ts.get(t, "/api/blogs", nil)

		assert.Equal(t, http.StatusOK, status)

		titles := listTitles(env)
		assert.Len(t, titles, 2)
		assert.NotContains(t, titles, "Unfinished Thoughts")

		meta := env["meta"].(map[string]any)
		assert.Equal(t, float64(1), meta["page"])
		assert.Equal(t, float64(20), meta["per_page"])
		assert.Equal(t, float64(2), meta["total"])
		assert.Equal(t, float64(1), meta["total_pages"])
	})

	t.Run("Title Filter", func(t *testing.T) {
		status, _, env := ts.get(t, "/api/blogs?title="+url.QueryEscape("postgres"), nil)

		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, []string{"Postgres Indexing"}, listTitles(env))
	})

	t.Run("Tags Filter", func(t *testing.T) {
		status, _, env := ts.get(t, "/api/blogs?tags=go,concurrency", nil)

		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, []string{"Go Concurrency Patterns"}, listTitles(env))
	})

	t.Run("Author Filter", func(t *testing.T) {
		status, _, env := ts.get(t, "/api/blogs?author=jane", nil)

		assert.Equal(t, http.StatusOK, status)
		assert.Len(t, listTitles(env), 2)
	})

	t.Run("Author Filter No Match", func(t *testing.T) {
		status, _, env := ts.get(t, "/api/blogs?author=nobody", nil)

		assert.Equal(t, http.StatusOK, status)
		assert.Empty(t, env["data"])

		meta := env["meta"].(map[string]any)
		assert.Equal(t, float64(0), meta["total"])
		assert.Equal(t, float64(0), meta["total_pages"])
	})

	t.Run("Pagination", func(t *testing.T) {
		status, _, env := ts.get(t, "/api/blogs?page=2&per_page=1&sort_by=title", nil)

		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, []string{"Postgres Indexing"}, listTitles(env))

		meta := env["meta"].(map[string]any)
		assert.Equal(t, float64(2), meta["page"])
		assert.Equal(t, float64(1), meta["per_page"])
		assert.Equal(t, float64(2), meta["total"])
		assert.Equal(t, float64(2), meta["total_pages"])
	})

	t.Run("Descending Sort", func(t *testing.T) {
		status, _, env := ts.get(t, "/api/blogs?sort_by=-title", nil)

		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, []string{"Postgres Indexing", "Go Concurrency Patterns"}, listTitles(env))
	})

	t.Run("Invalid Per Page", func(t *testing.T) {
		status, _, _ := ts.get(t, "/api/blogs?per_page=0", nil)
		assert.Equal(t, http.StatusUnprocessableEntity, status)
	})

	t.Run("Unknown Sort Field", func(t *testing.T) {
		status, _, _ := ts.get(t, "/api/blogs?sort_by=password", nil)
		assert.Equal(t, http.StatusUnprocessableEntity, status)
	})

	t.Run("Non Numeric Page", func(t *testing.T) {
		status, _, _ := ts.get(t, "/api/blogs?page=abc", nil)
		assert.Equal(t, http.StatusBadRequest, status)
	})
}

func TestListMyBlogsHandler(t *testing.T) {
	app, _ := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	authorToken, _ := signupTestUser(t, ts, "author@example.com")
	otherToken, _ := signupTestUser(t, ts, "other@example.com")

	publishedID := createTestBlog(t, ts, authorToken, map[string]any{
		"title": "Mine Published",
		"body":  "content",
	})
	publishTestBlog(t, ts, authorToken, publishedID)

	createTestBlog(t, ts, authorToken, map[string]any{
		"title": "Mine Draft",
		"body":  "content",
	})

	theirsID := createTestBlog(t, ts, otherToken, map[string]any{
		"title": "Theirs Published",
		"body":  "content",
	})
	publishTestBlog(t, ts, otherToken, theirsID)

	t.Run("Without Token", func(t *testing.T) {
		status, _, _ := ts.get(t, "/api/blogs/me/list", nil)
		assert.Equal(t, http.StatusUnauthorized, status)
	})

	t.Run("Returns Own Blogs In All States", func(t *testing.T) {
		status, _, env := ts.get(t, "/api/blogs/me/list", &authorToken)

		assert.Equal(t, http.StatusOK, status)

		var titles []string
		for _, item := range env["data"].([]any) {
			titles = append(titles, item.(map[string]any)["title"].(string))
		}

		assert.Len(t, titles, 2)
		assert.Contains(t, titles, "Mine Published")
		assert.Contains(t, titles, "Mine Draft")
		assert.NotContains(t, titles, "Theirs Published")
	})

	t.Run("State Filter", func(t *testing.T) {
		status, _, env := ts.get(t, "/api/blogs/me/list?state=draft", &authorToken)

		assert.Equal(t, http.StatusOK, status)

		data := env["data"].([]any)
		assert.Len(t, data, 1)
		assert.Equal(t, "Mine Draft", data[0].(map[string]any)["title"])
	})

	t.Run("Other Path Segment", func(t *testing.T) {
		status, _, _ := ts.get(t, "/api/blogs/42/list", &authorToken)
		assert.Equal(t, http.StatusNotFound, status)
	})
}
