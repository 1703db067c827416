// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"

	"github.com/TimLeitch/ms-contact-sync/internal/delivery/http/middleware"
	"github.com/TimLeitch/ms-contact-sync/internal/delivery/http/router/handler"
)

type RouterParams struct {
	fx.In

	AuthHandler       *handler.AuthHandler
	DirectoryHandler  *handler.DirectoryHandler
	ContactHandler    *handler.ContactHandler
	SessionMiddleware *middleware.SessionMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	authHandler       *handler.AuthHandler
	directoryHandler  *handler.DirectoryHandler
	contactHandler    *handler.ContactHandler
	sessionMiddleware *middleware.SessionMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		authHandler:       params.AuthHandler,
		directoryHandler:  params.DirectoryHandler,
		contactHandler:    params.ContactHandler,
		sessionMiddleware: params.SessionMiddleware,
	}
}

// RegisterRoutes sets up all the routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	e.Use(r.sessionMiddleware.Resolve)

	e.GET("/", r.directoryHandler.Index)

	// Sign-in flow
	authGroup := e.Group("/auth")
	{
		authGroup.GET("/login", r.authHandler.Login)
		authGroup.GET("/callback", r.authHandler.Callback)
		authGroup.GET("/logout", r.authHandler.Logout)
	}

	// Directory pages need a usable token
	apiGroup := e.Group("/api")
	apiGroup.Use(r.sessionMiddleware.RequireSession)
	{
		apiGroup.GET("/users", r.directoryHandler.ListUsers)
		apiGroup.GET("/groups", r.directoryHandler.ListGroups)
		apiGroup.GET("/groups/:id/members", r.directoryHandler.GroupMembers)
		apiGroup.GET("/user/:id/contacts", r.directoryHandler.UserContacts)
	}

	// Local contact list works without a directory token, except the GAL
	// import which calls out to the directory.
	contactGroup := e.Group("/contacts")
	{
		contactGroup.GET("", r.contactHandler.List)
		contactGroup.GET("/add/local", r.contactHandler.ShowAddForm)
		contactGroup.POST("/add/local", r.contactHandler.Create)
		contactGroup.POST("/add/csv", r.contactHandler.ImportCSV)
		contactGroup.POST("/add/gal", r.contactHandler.ImportGAL, r.sessionMiddleware.RequireSession)
		contactGroup.GET("/close-modal", r.contactHandler.CloseModal)
		contactGroup.GET("/:id/edit", r.contactHandler.ShowEditForm)
		contactGroup.PUT("/:id", r.contactHandler.Update)
		contactGroup.DELETE("/:id", r.contactHandler.Delete)
	}
}
