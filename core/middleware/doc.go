// Package middleware contains HTTP middleware for the serve-mode Fiber application.
//
// # Components
//
//   - Auth: Implements API key validation to protect the sync endpoints.
//   - RayID: Generates a unique Request ID (RayID) for every incoming request,
//     injecting it into the context and response headers for tracing.
package middleware
