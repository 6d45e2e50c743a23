package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/user-service/api/handler"
)

type Handlers struct {
	User   *apiHandler.UserHandler
	Card   *apiHandler.CardHandler
	Health *apiHandler.HealthHandler
}

// New wires the route table. The identity middleware wraps every API route;
// it never rejects by itself, it only resolves the caller so the
// authorization policy inside the use cases can decide.
func New(handlers Handlers, identity func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	// User routes
	r.GET("/api/v1/users", identity(handlers.User.Search))
	r.POST("/api/v1/users", identity(handlers.User.Create))
	r.GET("/api/v1/users/by-email", identity(handlers.User.GetByEmail))
	r.GET("/api/v1/users/{id}", identity(handlers.User.GetByID))
	r.PUT("/api/v1/users/{id}", identity(handlers.User.Update))
	r.DELETE("/api/v1/users/{id}", identity(handlers.User.Delete))
	r.PATCH("/api/v1/users/{id}/activity", identity(handlers.User.SetActivity))

	// Card routes
	r.GET("/api/v1/users/{id}/cards", identity(handlers.Card.List))
	r.POST("/api/v1/users/{id}/cards", identity(handlers.Card.Add))
	r.PUT("/api/v1/cards/{id}", identity(handlers.Card.Update))
	r.DELETE("/api/v1/cards/{id}", identity(handlers.Card.Delete))
	r.PATCH("/api/v1/cards/{id}/activity", identity(handlers.Card.SetActivity))

	// Internal routes for inter-service calls (registration, login, rollback).
	// Same handlers; the policy admits only Service identities.
	r.POST("/internal/users", identity(handlers.User.Create))
	r.GET("/internal/users/by-email", identity(handlers.User.GetByEmail))
	r.GET("/internal/users/{id}", identity(handlers.User.GetByID))
	r.DELETE("/internal/users/{id}", identity(handlers.User.Delete))

	return r
}
