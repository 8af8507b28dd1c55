// Package api serves vidcheck over HTTP and defines its wire-format types.
//
// Routes:
//
//	GET  /health
//	POST /api/v1/checks/text   {"text": "..."}
//	POST /api/v1/checks/url    {"url": "https://..."}
//	POST /api/v1/checks/video  multipart form, file field "file"
//
// Every check response carries the pipeline report translated into a
// transport DTO (camelCase JSON, RFC3339 timestamps with milliseconds).
// Failed runs still return their partial report next to the error.
//
// When api.token is set every /api route requires
// "Authorization: Bearer <token>".
package api
