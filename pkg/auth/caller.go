package auth

import (
	"net/http"
	"strings"
)

// Unknown is recorded when a request carries no usable origin or agent.
const Unknown = "unknown"

// Caller is who made a request and where it came from. Only EmployeeID is
// used for access decisions; the rest is recorded for audit.
type Caller struct {
	EmployeeID string
	IPAddress  string
	UserAgent  string
}

// Authenticated reports whether an identity provider resolved an employee.
func (c Caller) Authenticated() bool {
	return c.EmployeeID != ""
}

type ipHeader struct {
	name string
	list bool // comma-separated chain; the client is the first entry
}

// Probed in order. Proxies closest to the client are listed first.
var ipHeaders = []ipHeader{
	{name: "X-Real-IP"},
	{name: "CF-Connecting-IP"},
	{name: "X-Client-IP"},
	{name: "X-Forwarded-For", list: true},
	{name: "Fastly-Client-IP"},
	{name: "True-Client-IP"},
	{name: "X-Cluster-Client-IP"},
	{name: "X-Forwarded", list: true},
	{name: "Forwarded", list: true},
}

// ClientIP returns the first non-empty client address found in h, or
// Unknown. Header values are client-controlled and only fit for logging.
func ClientIP(h http.Header) string {
	for _, hdr := range ipHeaders {
		v := h.Get(hdr.name)
		if hdr.list {
			v, _, _ = strings.Cut(v, ",")
		}
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return Unknown
}

// UserAgent returns the raw User-Agent header, or Unknown.
func UserAgent(h http.Header) string {
	if ua := h.Get("User-Agent"); ua != "" {
		return ua
	}
	return Unknown
}

// CallerFromRequest combines the identity set by Authenticate with the
// request's network origin.
func CallerFromRequest(r *http.Request) Caller {
	employeeID, _ := EmployeeIDFromCtx(r.Context())
	return Caller{
		EmployeeID: employeeID,
		IPAddress:  ClientIP(r.Header),
		UserAgent:  UserAgent(r.Header),
	}
}
