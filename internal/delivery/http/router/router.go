// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"

	"passport/internal/delivery/http/middleware"
	"passport/internal/delivery/http/router/handler"
)

type RouterParams struct {
	fx.In

	AccountHandler      *handler.AccountHandler
	AuthMiddleware      *middleware.AuthMiddleware
	RequestIDMiddleware *middleware.RequestIDMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	accountHandler      *handler.AccountHandler
	authMiddleware      *middleware.AuthMiddleware
	requestIDMiddleware *middleware.RequestIDMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		accountHandler:      params.AccountHandler,
		authMiddleware:      params.AuthMiddleware,
		requestIDMiddleware: params.RequestIDMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
// The paths mirror the public contract of the original service.
func (r *router) RegisterRoutes(e *echo.Echo) {
	e.Use(r.requestIDMiddleware.Process)

	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	e.GET("/", r.accountHandler.Greet)
	e.POST("/signup", r.accountHandler.SignUp)
	e.POST("/signin", r.accountHandler.SignIn)
	e.POST("/refresh", r.accountHandler.Refresh)
	e.POST("/sendmail", r.accountHandler.SendMail)
	e.POST("/reset", r.accountHandler.ResetPassword)

	// Profile requires a verified access token.
	e.GET("/profile/:email", r.accountHandler.GetProfile, r.authMiddleware.Authenticate)
}
