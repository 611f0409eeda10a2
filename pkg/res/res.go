package res

import (
	"encoding/json"
	"net/http"
)

// ProblemContentType is the media type of RFC 7807 error bodies.
const ProblemContentType = "application/problem+json"

// ProblemTypeDefault is used when a problem has no more specific type URI.
const ProblemTypeDefault = "https://tools.ietf.org/html/rfc7807"

// ProblemDetails is an RFC 7807 error body. Errors maps a field name to its
// validation messages.
type ProblemDetails struct {
	Type     string              `json:"type"`
	Title    string              `json:"title"`
	Status   int                 `json:"status"`
	Detail   string              `json:"detail,omitempty"`
	Instance string              `json:"instance,omitempty"`
	Errors   map[string][]string `json:"errors,omitempty"`
	TraceID  string              `json:"traceId,omitempty"`
}

// Problem builds a ProblemDetails with the default type.
func Problem(status int, title, detail string) ProblemDetails {
	return ProblemDetails{
		Type:   ProblemTypeDefault,
		Title:  title,
		Status: status,
		Detail: detail,
	}
}

// JsonResponse writes data as JSON with the given status.
func JsonResponse(w http.ResponseWriter, data any, status int) {
	writeJSON(w, "application/json; charset=utf-8", data, status)
}

// WriteProblem writes p as application/problem+json with p.Status.
func WriteProblem(w http.ResponseWriter, p ProblemDetails) {
	if p.Type == "" {
		p.Type = ProblemTypeDefault
	}
	writeJSON(w, ProblemContentType, p, p.Status)
}

func writeJSON(w http.ResponseWriter, contentType string, data any, status int) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
