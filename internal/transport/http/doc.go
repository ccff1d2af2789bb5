// Package http implements the HTTP handlers of the CFEM × CRM analytics API.
// Handlers stay thin: they parse and validate the request, call the session
// service and format the response. Analytics live in the service layer.
//
// # Routes
//
// The session handler is mounted under /api/session:
//
//	POST   /upload                table upload (multipart "file" or raw body, ?delimiter=, ?name=)
//	GET    /                      data summary
//	DELETE /                      reset the session
//	GET    /filters               filter options
//	GET    /selection             current selection
//	PUT    /selection             replace the selection
//	GET    /records?limit=        filtered records
//	GET    /display               formatted detail table
//	GET    /overview              headline KPIs
//	GET    /pareto?value=&group=  Pareto ranking
//	GET    /strategic             mines Pareto, group analysis and opportunity gap
//	POST   /simulate              {selection, capture_rate}
//	GET    /export/records?format=csv|xlsx
//	POST   /export/simulation?format=csv|xlsx
//
// Successful JSON responses use the envelope {"status":"success","data":...}.
//
// # Error Handling
//
// All errors follow RFC 7807 Problem Details:
//
//	{
//	    "type": "/errors/data/no-dataset",
//	    "title": "Not Found",
//	    "status": 404,
//	    "detail": "No dataset loaded; upload a table first",
//	    "instance": "/api/session/overview"
//	}
//
// Exports are rendered into memory before any byte is sent, so a failed
// export yields a problem response rather than a truncated file.
package http
