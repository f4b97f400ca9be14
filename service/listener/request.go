package listener

import (
	"bytes"
	"strings"
)

const (
	// MaxMethodLength bounds the scanned request method.
	MaxMethodLength = 15
	// MaxPathLength bounds the scanned request target.
	MaxPathLength = 255
)

var headerSeparator = []byte("\r\n\r\n")

// Request is the parsed subset of an inbound HTTP request.
type Request struct {
	Method string
	Path   string
	Body   string
}

// ParseRequest extracts the method and target from the request line and the
// body following the blank-line separator. Oversized tokens are truncated.
func ParseRequest(raw []byte) *Request {
	line := raw
	if i := bytes.IndexAny(line, "\r\n"); i >= 0 {
		line = line[:i]
	}
	fields := strings.Fields(string(line))
	ret := &Request{}
	if len(fields) > 0 {
		ret.Method = truncate(fields[0], MaxMethodLength)
	}
	if len(fields) > 1 {
		ret.Path = truncate(fields[1], MaxPathLength)
	}
	if i := bytes.Index(raw, headerSeparator); i >= 0 {
		ret.Body = string(raw[i+len(headerSeparator):])
	}
	return ret
}

func truncate(s string, limit int) string {
	if len(s) > limit {
		return s[:limit]
	}
	return s
}
