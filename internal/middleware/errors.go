package middleware

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/leonardosegantin10-br/dashboard-cfem-crm/internal/errors"
)

// ProblemFromStatus builds an RFC 7807 problem for statuses the middleware emits itself
func ProblemFromStatus(status int, detail, instance string) *apperrors.ProblemDetails {
	var title, problemType string

	switch status {
	case http.StatusTooManyRequests:
		title = "Too Many Requests"
		problemType = apperrors.TypeRateLimit
	case http.StatusGatewayTimeout:
		title = "Request Timeout"
		problemType = apperrors.TypeTimeout
	case http.StatusInternalServerError:
		title = "Internal Server Error"
		problemType = apperrors.TypeInternal
	case http.StatusServiceUnavailable:
		title = "Service Unavailable"
		problemType = apperrors.TypeServiceDown
	default:
		title = http.StatusText(status)
		problemType = "/errors/unknown"
	}

	return apperrors.NewProblemDetails(status, problemType, title, detail, instance)
}

// writeProblem writes a problem+json response tagged with the request ID
func writeProblem(w http.ResponseWriter, r *http.Request, status int, detail string) {
	problem := ProblemFromStatus(status, detail, r.URL.Path)
	if reqID := GetRequestID(r.Context()); reqID != "" {
		problem.WithExtension("trace_id", reqID)
	}

	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(problem)
}
