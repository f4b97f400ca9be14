package listener

import (
	"net/http"
	"strconv"
	"strings"
)

const defaultBody = "Hello, World!"

// BuildResponse renders a complete HTTP/1.1 response. Content-Length is
// always the byte length of body as sent.
func BuildResponse(status int, contentType, body string) []byte {
	var b strings.Builder
	b.Grow(len(body) + 128)
	b.WriteString("HTTP/1.1 ")
	b.WriteString(strconv.Itoa(status))
	b.WriteByte(' ')
	b.WriteString(http.StatusText(status))
	b.WriteString("\r\n")
	if contentType != "" {
		b.WriteString("Content-Type: ")
		b.WriteString(contentType)
		b.WriteString("\r\n")
	}
	b.WriteString("Content-Length: ")
	b.WriteString(strconv.Itoa(len(body)))
	b.WriteString("\r\nConnection: close\r\n\r\n")
	b.WriteString(body)
	return []byte(b.String())
}
