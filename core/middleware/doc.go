// Package middleware contains HTTP middleware for the Fiber application.
//
// # Components
//
//   - auth: API key validation (X-API-Key header or Bearer token).
//   - rayid: a per-request id (RayID) stored in the context and echoed in the
//     X-Ray-ID response header, picked up by logger.WithRayID.
//
// Both are registered globally by the start command.
package middleware
