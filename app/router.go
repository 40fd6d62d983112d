package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

func (app *application) routes() http.Handler {
	router := httprouter.New()

	router.NotFound = http.HandlerFunc(app.notFoundErrorResponse)
	router.MethodNotAllowed = http.HandlerFunc(app.methodNotAllowedErrorResponse)

	router.HandlerFunc(http.MethodGet, "/api/healthcheck", app.healthCheckHandler)

	// auth
	router.HandlerFunc(http.MethodPost, "/api/auth/signup", app.signupUserHandler)
	router.HandlerFunc(http.MethodPost, "/api/auth/signin", app.signinUserHandler)
	router.HandlerFunc(http.MethodPost, "/api/auth/signout", app.requireAuthUser(app.signoutUserHandler))

	// blogs
	router.HandlerFunc(http.MethodGet, "/api/blogs", app.listBlogsHandler)
	router.HandlerFunc(http.MethodPost, "/api/blogs", app.requireAuthUser(app.createBlogHandler))
	router.HandlerFunc(http.MethodGet, "/api/blogs/:id", app.getBlogHandler)
	// httprouter cannot mix the static "me" segment with ":id", so the
	// /api/blogs/me/list route is registered through the wildcard and the
	// handler rejects anything other than "me".
	router.HandlerFunc(http.MethodGet, "/api/blogs/:id/list", app.requireAuthUser(app.listMyBlogsHandler))
	router.HandlerFunc(http.MethodPut, "/api/blogs/:id", app.requireAuthUser(app.updateBlogHandler))
	router.HandlerFunc(http.MethodPatch, "/api/blogs/:id/state", app.requireAuthUser(app.changeBlogStateHandler))
	router.HandlerFunc(http.MethodDelete, "/api/blogs/:id", app.requireAuthUser(app.deleteBlogHandler))

	return app.recoverPanic(app.logRequest(app.authenticate(router)))
}
