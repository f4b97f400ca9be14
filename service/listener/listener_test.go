package listener

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/spindle/service/fiber"
	"github.com/viant/spindle/tracing"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestParseRequest(t *testing.T) {
	var testCases = []struct {
		description string
		raw         string
		expect      Request
	}{
		{
			description: "post with body",
			raw:         "POST /api/compile HTTP/1.1\r\nHost: localhost\r\n\r\n{\"code\":\"x\"}",
			expect:      Request{Method: "POST", Path: "/api/compile", Body: `{"code":"x"}`},
		},
		{
			description: "get without body",
			raw:         "GET / HTTP/1.1\r\nHost: localhost\r\n\r\n",
			expect:      Request{Method: "GET", Path: "/"},
		},
		{
			description: "no separator",
			raw:         "GET /index HTTP/1.1\r\nHost: localhost",
			expect:      Request{Method: "GET", Path: "/index"},
		},
		{
			description: "oversized method and path",
			raw:         strings.Repeat("M", 40) + " /" + strings.Repeat("p", 400) + " HTTP/1.1\r\n\r\n",
			expect:      Request{Method: strings.Repeat("M", MaxMethodLength), Path: "/" + strings.Repeat("p", MaxPathLength-1)},
		},
		{
			description: "empty",
			raw:         "",
			expect:      Request{},
		},
	}
	for _, testCase := range testCases {
		actual := ParseRequest([]byte(testCase.raw))
		assert.Equal(t, testCase.expect, *actual, testCase.description)
	}
}

func TestBuildResponse_ContentLength(t *testing.T) {
	var testCases = []struct {
		description string
		body        string
	}{
		{description: "empty", body: ""},
		{description: "17 bytes", body: `{"status":"okay"}`},
		{description: "large", body: strings.Repeat("x", 1500)},
		{description: "escaped characters", body: `{"out":"a\"b\\c\nd\t"}`},
		{description: "multibyte", body: "żółw"},
	}
	for _, testCase := range testCases {
		response := string(BuildResponse(200, "application/json", testCase.body))
		header, body, found := strings.Cut(response, "\r\n\r\n")
		require.True(t, found, testCase.description)
		assert.Equal(t, testCase.body, body, testCase.description)
		assert.Contains(t, header, fmt.Sprintf("Content-Length: %d\r\n", len(testCase.body)), testCase.description)
		assert.True(t, strings.HasPrefix(header, "HTTP/1.1 200 OK\r\n"), testCase.description)
	}
}

func TestServer_Route(t *testing.T) {
	failing := func(string) (string, error) { return "", errors.New("boom") }
	echo := func(body string) (string, error) { return "echo:" + body, nil }

	var testCases = []struct {
		description string
		options     []Option
		request     Request
		status      string
		body        string
		expectErr   bool
	}{
		{
			description: "default compile stub",
			request:     Request{Method: "POST", Path: "/api/compile"},
			status:      "200 OK",
			body:        `{"status":"error","message":"Compiler not linked"}`,
		},
		{
			description: "default run stub",
			request:     Request{Method: "POST", Path: "/api/run"},
			status:      "200 OK",
			body:        `{"status":"error","message":"Runtime not linked"}`,
		},
		{
			description: "custom run",
			options:     []Option{WithRunHandler(echo)},
			request:     Request{Method: "POST", Path: "/api/run", Body: "1"},
			status:      "200 OK",
			body:        "echo:1",
		},
		{
			description: "handler failure",
			options:     []Option{WithCompileHandler(failing)},
			request:     Request{Method: "POST", Path: "/api/compile"},
			status:      "500 Internal Server Error",
			body:        "Error processing request",
			expectErr:   true,
		},
		{
			description: "get falls back",
			request:     Request{Method: "GET", Path: "/api/run"},
			status:      "200 OK",
			body:        "Hello, World!",
		},
		{
			description: "unknown path",
			request:     Request{Method: "POST", Path: "/other"},
			status:      "200 OK",
			body:        "Hello, World!",
		},
	}
	for _, testCase := range testCases {
		srv, err := New(fiber.New(), testCase.options...)
		require.NoError(t, err)
		request := testCase.request
		response, err := srv.Route(&request)
		if testCase.expectErr {
			assert.Error(t, err, testCase.description)
		} else {
			assert.NoError(t, err, testCase.description)
		}
		text := string(response)
		assert.True(t, strings.HasPrefix(text, "HTTP/1.1 "+testCase.status+"\r\n"), testCase.description)
		assert.True(t, strings.HasSuffix(text, "\r\n\r\n"+testCase.body), testCase.description)
	}
}

func TestNew_Validation(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)

	_, err = New(fiber.New(), WithConfig(Config{Address: "127.0.0.1", Port: -1}))
	assert.ErrorIs(t, err, ErrInvalidPort)

	_, err = New(fiber.New(), WithConfig(Config{Port: 80}))
	assert.ErrorIs(t, err, ErrInvalidAddress)
}

func TestServer_ListenRoundTrip(t *testing.T) {
	fibers := fiber.New()
	config := DefaultConfig()
	config.Port = 0
	srv, err := New(fibers, WithConfig(config), WithCompileHandler(func(body string) (string, error) {
		return `{"status":"ok","size":` + fmt.Sprint(len(body)) + `}`, nil
	}))
	require.NoError(t, err)
	require.NoError(t, srv.Listen(context.Background()))
	assert.ErrorIs(t, srv.Listen(context.Background()), ErrAlreadyListening)
	assert.Greater(t, srv.FiberID(), int64(0))

	send := func(raw string) string {
		conn, err := net.Dial("tcp", srv.Addr().String())
		require.NoError(t, err)
		defer conn.Close()
		_, err = conn.Write([]byte(raw))
		require.NoError(t, err)
		data, err := io.ReadAll(conn)
		require.NoError(t, err)
		return string(data)
	}

	response := send("POST /api/compile HTTP/1.1\r\nContent-Length: 5\r\n\r\nhello")
	assert.Equal(t, string(BuildResponse(200, "application/json", `{"status":"ok","size":5}`)), response)

	response = send("GET / HTTP/1.1\r\n\r\n")
	assert.Equal(t, string(BuildResponse(200, "text/plain", "Hello, World!")), response)

	require.NoError(t, srv.Stop())
	aFiber, err := fibers.Lookup(srv.FiberID())
	require.NoError(t, err)
	assert.Equal(t, fiber.StateCompleted, aFiber.State())
	assert.NoError(t, srv.Stop())
}

func TestServer_ListenDeterministic(t *testing.T) {
	config := DefaultConfig()
	config.Port = 0
	srv, err := New(fiber.New(fiber.WithDeterministic(true)), WithConfig(config))
	require.NoError(t, err)
	assert.ErrorIs(t, srv.Listen(context.Background()), ErrDeterministicMode)
	assert.Nil(t, srv.Addr())
}

func TestServer_RequestSpansNestUnderServe(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	require.NoError(t, tracing.InitWithExporter("spindle", "test", exporter))

	config := DefaultConfig()
	config.Port = 0
	srv, err := New(fiber.New(), WithConfig(config), WithRunHandler(func(string) (string, error) {
		return "", errors.New("not available")
	}))
	require.NoError(t, err)
	require.NoError(t, srv.Listen(context.Background()))

	conn, err := net.Dial("tcp", srv.Addr().String())
	require.NoError(t, err)
	_, err = conn.Write([]byte("POST /api/run HTTP/1.1\r\n\r\n{}"))
	require.NoError(t, err)
	response, err := io.ReadAll(conn)
	require.NoError(t, err)
	_ = conn.Close()
	assert.True(t, strings.HasPrefix(string(response), "HTTP/1.1 500 "))
	require.NoError(t, srv.Stop())

	var serve, request *tracetest.SpanStub
	spans := exporter.GetSpans()
	for i := range spans {
		switch spans[i].Name {
		case tracing.SpanServe:
			serve = &spans[i]
		case tracing.SpanRequest:
			request = &spans[i]
		}
	}
	require.NotNil(t, serve)
	require.NotNil(t, request)
	assert.Equal(t, serve.SpanContext.TraceID(), request.SpanContext.TraceID())
	assert.Equal(t, serve.SpanContext.SpanID(), request.Parent.SpanID())
	assert.Equal(t, "not available", request.Status.Description)
}
