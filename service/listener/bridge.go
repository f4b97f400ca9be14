package listener

// RequestHandler processes a raw request body and returns the response
// payload. A returned error produces a 500 response.
type RequestHandler func(body string) (string, error)

// Default handlers used until the compiler entry points are linked in.
var (
	DefaultCompileHandler RequestHandler = func(string) (string, error) {
		return `{"status":"error","message":"Compiler not linked"}`, nil
	}
	DefaultRunHandler RequestHandler = func(string) (string, error) {
		return `{"status":"error","message":"Runtime not linked"}`, nil
	}
)
