// Package api provides the HTTP API layer for the Highlights application.
// It uses the Huma framework to provide automatic OpenAPI documentation,
// request/response validation, and a clean handler interface.
//
// # Architecture
//
// - server.go: Huma API configuration and setup
// - handlers/: HTTP request handlers (articles, highlights, events, reader)
// - dto/: Data Transfer Objects for requests and responses
// - middleware/: request logging and per-client rate limiting
//
// The OpenAPI spec is served at /openapi.json and the docs UI at /docs.
//
// # Users
//
// Every article route is scoped to the user named by the X-User-ID header.
// Requests without it act as the "anonymous" user.
//
// # Usage Example
//
//	humaAPI, router := api.NewAPIWithMiddleware(api.APIConfig{
//	    Logger:      logger,
//	    RateLimiter: middleware.NewRateLimiter(10, 20),
//	    Flags:       flags,
//	})
//
//	handlers.NewArticleHandler(library, flags).RegisterRoutes(humaAPI)
//	handlers.NewHighlightHandler(library).RegisterRoutes(humaAPI)
//
//	http.ListenAndServe(":8000", router)
//
// # Error Handling
//
// Errors use the RFC 7807 problem format. Domain errors map to status codes:
// not found 404, validation 400, empty selection 422, stale selection 409,
// corrupt content 500, storage failure 503.
package api
