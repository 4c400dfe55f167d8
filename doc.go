// Package greenprint provides the Greenprint API server.

// The server code is organized into subpackages:

// - cmd/server: API server entry point
// - cmd/cli: migrations, seeding and admin operations
// - internal/handlers: HTTP request handlers for all API endpoints
// - internal/models: Data models and database schemas
// - internal/auth: Password and JWT authentication services
// - internal/websocket: WebSocket hub for real-time updates
// - internal/notify: Notification persistence and live delivery
// - internal/database: Database connection and migrations
// - internal/cache: Redis caching for leaderboards and stats
// - internal/middleware: HTTP middleware (logging, rate limiting, metrics)
// - internal/purge: Retention sweeps for soft-deleted content
// - internal/seed: Development data seeding

// See the individual package documentation for detailed API reference.
package greenprint
