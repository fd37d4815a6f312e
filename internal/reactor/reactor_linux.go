//go:build linux

// Package reactor implements the single-threaded, epoll-driven event loop:
// accept/read/write dispatch over a dense connection table. Grounded on
// original_source's src/reactor.c, translated onto golang.org/x/sys/unix's
// epoll primitives instead of the frozen syscall package — the idiomatic
// choice for new epoll code, and already present in the retrieved corpus's
// own module graph (the teacher's pkg/websocket/netpoll.go reaches for the
// same family of calls, via the raw syscall package, for its own
// from-scratch epoll experiment).
package reactor

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// Handler is the single installed message handler the dispatcher hands the
// reactor. It inspects and mutates conn's buffers directly and returns the
// number of bytes now waiting in WriteBuf: positive to arm for write,
// zero to skip sending entirely, negative to signal a fatal error that
// closes the connection. This mirrors original_source's msg_handler
// function-pointer contract exactly.
type Handler func(c *Conn) int

// AcceptGuard is consulted before a newly accepted connection is
// registered. Returning false drops the connection immediately without
// ever handing it to Handler — the admission-control hook the rate
// limiter uses.
type AcceptGuard func(remoteAddr string) bool

const backlog = 65535

// Reactor owns the epoll instance, the connection table, and the set of
// listening sockets.
type Reactor struct {
	epfd      int
	tbl       *table
	handler   Handler
	guard     AcceptGuard
	Stats     Stats
	listeners []int
	events    []unix.EpollEvent
}

// New creates a Reactor with a connection table sized for maxConns and
// per-connection buffers of bufSize bytes.
func New(maxConns, bufSize int, handler Handler, guard AcceptGuard) (*Reactor, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("epoll_create1: %w", err)
	}
	return &Reactor{
		epfd:    epfd,
		tbl:     newTable(maxConns, bufSize),
		handler: handler,
		guard:   guard,
		events:  make([]unix.EpollEvent, 1024),
	}, nil
}

func (r *Reactor) epollCtl(op int, fd int, events uint32) error {
	ev := unix.EpollEvent{Events: events, Fd: int32(fd)}
	return unix.EpollCtl(r.epfd, op, fd, &ev)
}

func createListener(port int) (int, error) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
	if err != nil {
		return -1, fmt.Errorf("socket: %w", err)
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("setsockopt SO_REUSEADDR: %w", err)
	}
	addr := &unix.SockaddrInet4{Port: port}
	if err := unix.Bind(fd, addr); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("bind :%d: %w", port, err)
	}
	if err := unix.Listen(fd, backlog); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("listen :%d: %w", port, err)
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("set nonblocking :%d: %w", port, err)
	}
	return fd, nil
}

// Run binds portCount consecutive listening sockets starting at
// portStart, registers them with epoll, and runs the accept/read/write
// loop until ctx-equivalent shutdown (Close) or a fatal epoll error.
// Mirrors original_source's reactor_mainloop.
func (r *Reactor) Run(portStart, portCount int) error {
	if portCount <= 0 {
		portCount = 1
	}
	for i := 0; i < portCount; i++ {
		port := portStart + i
		fd, err := createListener(port)
		if err != nil {
			return err
		}
		c := r.tbl.register(fd, "", true)
		_ = c
		if err := r.epollCtl(unix.EPOLL_CTL_ADD, fd, unix.EPOLLIN); err != nil {
			return fmt.Errorf("epoll_ctl add listener :%d: %w", port, err)
		}
		r.listeners = append(r.listeners, fd)
	}

	for {
		n, err := unix.EpollWait(r.epfd, r.events, -1)
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			return fmt.Errorf("epoll_wait: %w", err)
		}
		for i := 0; i < n; i++ {
			fd := int(r.events[i].Fd)
			mask := r.events[i].Events
			c := r.tbl.get(fd)
			if c == nil {
				continue
			}
			switch {
			case c.isListener && mask&unix.EPOLLIN != 0:
				r.accept(fd)
			case mask&unix.EPOLLIN != 0:
				r.read(c)
			case mask&unix.EPOLLOUT != 0:
				r.write(c)
			}
		}
	}
}

func (r *Reactor) accept(listenerFd int) {
	nfd, sa, err := unix.Accept4(listenerFd, unix.SOCK_NONBLOCK)
	if err != nil {
		if errors.Is(err, unix.EAGAIN) {
			return
		}
		return
	}
	remoteAddr := sockaddrString(sa)
	if r.guard != nil && !r.guard(remoteAddr) {
		unix.Close(nfd)
		return
	}
	r.tbl.register(nfd, remoteAddr, false)
	if err := r.epollCtl(unix.EPOLL_CTL_ADD, nfd, unix.EPOLLIN); err != nil {
		unix.Close(nfd)
		r.tbl.release(nfd)
		return
	}
	r.Stats.TotalConnections.Add(1)
	r.Stats.ActiveConnections.Add(1)
}

func sockaddrString(sa unix.Sockaddr) string {
	v4, ok := sa.(*unix.SockaddrInet4)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%d.%d.%d.%d:%d", v4.Addr[0], v4.Addr[1], v4.Addr[2], v4.Addr[3], v4.Port)
}

func (r *Reactor) read(c *Conn) {
	n, err := unix.Read(c.Fd, c.ReadBuf)
	if err != nil {
		if errors.Is(err, unix.EAGAIN) {
			return
		}
		r.closeConn(c)
		return
	}
	if n == 0 {
		r.closeConn(c)
		return
	}
	c.ReadLen = n
	r.Stats.BytesReceived.Add(int64(n))
	r.Stats.TotalRequests.Add(1)

	wlen := r.handler(c)
	if wlen < 0 {
		r.closeConn(c)
		return
	}
	if wlen == 0 {
		return
	}
	c.WriteLen = wlen
	c.WriteSent = 0
	if err := r.epollCtl(unix.EPOLL_CTL_MOD, c.Fd, unix.EPOLLOUT); err != nil {
		r.closeConn(c)
	}
}

func (r *Reactor) write(c *Conn) {
	if c.WriteLen == 0 {
		r.closeConn(c)
		return
	}
	n, err := unix.Write(c.Fd, c.WriteBuf[c.WriteSent:c.WriteLen])
	if err != nil {
		if errors.Is(err, unix.EAGAIN) {
			return
		}
		r.closeConn(c)
		return
	}
	c.WriteSent += n
	r.Stats.BytesSent.Add(int64(n))
	if c.WriteSent < c.WriteLen {
		return
	}
	if c.CloseAfterFlush {
		r.closeConn(c)
		return
	}
	c.WriteLen = 0
	c.WriteSent = 0
	if err := r.epollCtl(unix.EPOLL_CTL_MOD, c.Fd, unix.EPOLLIN); err != nil {
		r.closeConn(c)
	}
}

func (r *Reactor) closeConn(c *Conn) {
	_ = r.epollCtl(unix.EPOLL_CTL_DEL, c.Fd, 0)
	unix.Close(c.Fd)
	r.tbl.release(c.Fd)
	r.Stats.ActiveConnections.Add(-1)
}

// Close tears down the epoll instance and every listening socket.
func (r *Reactor) Close() error {
	for _, fd := range r.listeners {
		unix.Close(fd)
	}
	return unix.Close(r.epfd)
}
