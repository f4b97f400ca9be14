package process

import (
	"errors"
	"log"

	"github.com/viant/spindle/internal/clock"
	"github.com/viant/spindle/progress"
	"golang.org/x/sys/unix"
)

// stream is one pipe read end watched by the monitor.
type stream struct {
	fd   int
	kind EventType
	open bool
}

// monitor multiplexes the output pipes of h and reports its lifecycle.
func (s *Service) monitor(h *Handle) {
	defer close(h.done)

	// the child holds its own copies of the write ends
	_ = h.stdoutW.Close()
	_ = h.stderrW.Close()
	h.stdoutW, h.stderrW = nil, nil

	streams := []*stream{
		{fd: h.stdoutFd, kind: EventStdout, open: true},
		{fd: h.stderrFd, kind: EventStderr, open: true},
	}
	for _, st := range streams {
		if err := unix.SetNonblock(st.fd, true); err != nil {
			log.Printf("process %d: failed to set %v non-blocking: %v", h.id, st.kind, err)
		}
	}
	buffer := make([]byte, s.config.ChunkSize)
	timeoutMs := int(s.config.PollInterval.Milliseconds())

	for {
		s.pollRound(h, streams, buffer, timeoutMs)
		if exited, code := reap(h.pid); exited {
			s.drain(h, streams, buffer)
			s.finish(h, code)
			closeFds(h.stdoutFd, h.stderrFd)
			return
		}
	}
}

// pollRound waits for readiness and reads at most one chunk per ready pipe.
func (s *Service) pollRound(h *Handle, streams []*stream, buffer []byte, timeoutMs int) {
	fds := make([]unix.PollFd, 0, len(streams))
	watched := make([]*stream, 0, len(streams))
	for _, st := range streams {
		if st.open {
			fds = append(fds, unix.PollFd{Fd: int32(st.fd), Events: unix.POLLIN})
			watched = append(watched, st)
		}
	}
	if len(fds) == 0 {
		// both pipes reached EOF, only the exit status is outstanding
		clock.Sleep(s.config.PollInterval)
		return
	}
	ready, err := unix.Poll(fds, timeoutMs)
	if err != nil || ready <= 0 {
		return
	}
	for i, pfd := range fds {
		if pfd.Revents&(unix.POLLIN|unix.POLLHUP|unix.POLLERR) != 0 {
			s.read(h, watched[i], buffer)
		}
	}
}

// read delivers one chunk from st and reports whether more may follow.
func (s *Service) read(h *Handle, st *stream, buffer []byte) bool {
	n, err := unix.Read(st.fd, buffer)
	switch {
	case n > 0:
		s.emit(h, st.kind, string(buffer[:n]))
		return true
	case err == nil:
		st.open = false
	case errors.Is(err, unix.EAGAIN), errors.Is(err, unix.EINTR):
	default:
		st.open = false
	}
	return false
}

// drain delivers whatever the child wrote before it exited.
func (s *Service) drain(h *Handle, streams []*stream, buffer []byte) {
	for _, st := range streams {
		for st.open && s.read(h, st, buffer) {
		}
	}
}

// reap checks for child termination without blocking.
func reap(pid int) (bool, int) {
	var status unix.WaitStatus
	wpid, err := unix.Wait4(pid, &status, unix.WNOHANG, nil)
	if err != nil {
		if errors.Is(err, unix.EINTR) {
			return false, ExitCodeUnknown
		}
		return true, ExitCodeAbnormal
	}
	if wpid == 0 {
		return false, ExitCodeUnknown
	}
	switch {
	case status.Exited():
		return true, status.ExitStatus()
	case status.Signaled():
		return true, ExitCodeAbnormal
	}
	return false, ExitCodeUnknown
}

func (s *Service) finish(h *Handle, code int) {
	h.mu.Lock()
	h.state = StateExited
	h.exitCode = code
	h.finishedAt = clock.Now()
	h.mu.Unlock()

	if code == 0 {
		s.progress.Update(progress.Delta{Running: -1, Completed: 1})
	} else {
		s.progress.Update(progress.Delta{Running: -1, Failed: 1})
	}
	h.span.Exited(code)
	s.emit(h, EventExit, exitCodeText(code))
}

// emit invokes the handler in-line; a panicking handler is logged and does
// not stop supervision. Output chunks are also recorded on the process span.
func (s *Service) emit(h *Handle, kind EventType, data string) {
	if kind != EventExit {
		h.span.Output(kind.String(), len(data))
	}
	defer func() {
		if r := recover(); r != nil {
			log.Printf("process %d: handler panic on %v event: %v", h.id, kind, r)
		}
	}()
	h.handler(h.id, kind, data)
}
