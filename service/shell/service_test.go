package shell

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_Run(t *testing.T) {
	srv := New()
	defer srv.Close()
	ctx := context.Background()

	testCases := []struct {
		name         string
		command      string
		expectOutput string
		expectStatus int
	}{
		{name: "echo", command: "echo hello", expectOutput: "hello", expectStatus: 0},
		{name: "false", command: "false", expectStatus: 1},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			stdout, status, err := srv.Run(ctx, tc.command)
			require.NoError(t, err)
			assert.Equal(t, tc.expectStatus, status)
			if tc.expectOutput != "" {
				assert.Equal(t, tc.expectOutput, strings.TrimSpace(stdout))
			}
		})
	}
}

func TestService_EmptyCommand(t *testing.T) {
	srv := New()
	_, status, err := srv.Run(context.Background(), "")
	assert.Error(t, err)
	assert.Equal(t, -1, status)
	assert.NoError(t, srv.Close())
}

func TestService_RunIsolatesCommands(t *testing.T) {
	srv := New()
	defer srv.Close()
	ctx := context.Background()

	testCases := []struct {
		name         string
		command      string
		expectOutput string
		expectStatus int
	}{
		{name: "exit status", command: "exit 3", expectStatus: 3},
		{name: "session survives exit", command: "echo x", expectOutput: "x"},
		{name: "change dir", command: "cd / && pwd", expectOutput: "/"},
		{name: "export", command: "export SPINDLE_LEAK=1", expectStatus: 0},
		{name: "no carried state", command: `echo "[$SPINDLE_LEAK]"; test "$PWD" != /`, expectOutput: "[]"},
		{name: "single quotes", command: `echo 'it'"'"'s'`, expectOutput: "it's"},
		{name: "stdin detached", command: "cat", expectStatus: 0},
		{name: "exit after output", command: "echo before; exit 7", expectOutput: "before", expectStatus: 7},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			stdout, status, err := srv.Run(ctx, tc.command)
			require.NoError(t, err)
			assert.Equal(t, tc.expectStatus, status)
			if tc.expectOutput != "" {
				assert.Equal(t, tc.expectOutput, strings.TrimSpace(stdout))
			}
		})
	}
}

func TestService_RunRecoversClosedSession(t *testing.T) {
	srv := New()
	ctx := context.Background()
	_, _, err := srv.Run(ctx, "true")
	require.NoError(t, err)

	// a broken session is replaced on the next call
	srv.mux.Lock()
	_ = srv.session.Close()
	srv.mux.Unlock()
	_, _, _ = srv.Run(ctx, "true")

	stdout, status, err := srv.Run(ctx, "echo again")
	require.NoError(t, err)
	assert.Equal(t, 0, status)
	assert.Equal(t, "again", strings.TrimSpace(stdout))
	assert.NoError(t, srv.Close())
}

func TestQuote(t *testing.T) {
	assert.Equal(t, `'plain'`, quote("plain"))
	assert.Equal(t, `'it'\''s'`, quote("it's"))
	assert.Equal(t, `sh -c 'exit 3' < /dev/null`, isolate("exit 3"))
}
