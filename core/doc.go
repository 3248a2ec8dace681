// Package core contains the business logic for the Highlights API.
// It is designed to be framework-agnostic and can be used independently
// of any web framework or infrastructure concerns.
//
// The core package is organized into several sub-packages:
//
// - domain: Pure domain models (Article, HighlightRecord, ReaderView)
// - content: Arena tree of sanitized article HTML with text offsets
// - highlight: Anchors, highlight mutations, normalization and the per-article editor
// - library: Saving, tagging and highlighting a user's articles
// - reader: Article extraction and sanitizing
// - workers: Background persistence of highlight edits
// - errors: Custom error types for better error handling
// - interfaces: Contracts for external dependencies (store, broker, cache, HTTP, logger)
//
// # Design Principles
//
// The core package follows clean architecture principles:
// - No web framework dependencies
// - All external dependencies are injected via interfaces
// - Business logic is testable in isolation
// - Domain models are free from persistence concerns
//
// # Usage Example
//
//	import (
//	    "highlights-app-api/core/highlight"
//	    "highlights-app-api/core/interfaces"
//	    "highlights-app-api/core/library"
//	    "highlights-app-api/core/workers"
//	)
//
//	deps := interfaces.Dependencies{
//	    Store:  myStore,  // implements interfaces.ArticleStore
//	    Broker: myBroker, // implements interfaces.ChangeBroker
//	    Logger: myLogger, // implements interfaces.Logger
//	}
//
//	worker := workers.NewPersistWorker(deps.Store, deps.Broker, deps.Logger, workers.DefaultWorkerConfig())
//	_ = worker.Start()
//	workspace := highlight.NewWorkspace(deps, worker)
//	svc := library.NewService(deps, readerService, workspace)
//
//	rec, err := svc.CreateHighlight(ctx, "user-1", articleID, 6, 10, "pink", "")
//
package core
