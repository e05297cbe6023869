// Package http implements the HTTP handlers of the report server. Handlers
// stay thin: they decode and validate the request, call the report or health
// service and render the result.
//
// # Routes
//
//	POST /api/reports/run              run the report (body: {"today": "DD/MM/YY", "dry_run": bool})
//	GET  /api/reports/latest           every table of the last successful run
//	GET  /api/reports/latest/{table}   one table, ?format=json|csv
//	GET  /api/health                   service and runtime health
//	GET  /api/version                  build information
//
// # Error Handling
//
// Errors are rendered as RFC 7807 Problem Details by the shared error
// handler, so a schedule that cannot be parsed answers 422 and a missing
// source sheet answers 404:
//
//	{
//	    "type": "/errors/schedule/invalid",
//	    "title": "Unprocessable Entity",
//	    "status": 422,
//	    "detail": "date header is not a date",
//	    "instance": "/api/reports/run"
//	}
//
// # Testing
//
// Handlers are tested with httptest against a fake ReportServiceInterface.
package http
