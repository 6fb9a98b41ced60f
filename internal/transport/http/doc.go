// Package http implements the HTTP handlers of the grade sheet service.
//
// Handlers stay thin: they parse the request, delegate to the services
// package and render either the result or an RFC 7807 problem through
// errors.ErrorHandler.
//
//	POST /api/gradesheets?confirm=true&output=json   multipart field "file"
//	GET  /api/health, /api/health/ready, /api/health/live
//	GET  /api/version
package http
