// Package requestid correlates log records of one HTTP request.
//
// Middleware assigns every request an ID, taken from a well-formed
// X-Request-ID header or freshly generated, and echoes it back. Register
// LogExtractor with logger.WithContextExtractors so guard transitions and
// preference writes logged with the request context carry it.
package requestid
