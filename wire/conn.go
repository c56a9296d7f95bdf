package wire

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"deedles.dev/wlcomp/internal/set"
	"golang.org/x/sys/unix"
)

func xdgRuntimeDir() string {
	dir, ok := os.LookupEnv("XDG_RUNTIME_DIR")
	if ok {
		return dir
	}
	return fmt.Sprintf("/var/run/user/%v", os.Getuid())
}

// SocketPath determines the path to the Wayland Unix domain socket
// based on the contents of the $WAYLAND_DISPLAY environment variable.
// It does not attempt to determine if the value corresponds to an
// actual socket.
func SocketPath() string {
	v, ok := os.LookupEnv("WAYLAND_DISPLAY")
	if !ok {
		v = "wayland-0"
	}
	return ResolveSocketPath(v)
}

// ResolveSocketPath returns name if it is absolute and otherwise
// resolves it relative to $XDG_RUNTIME_DIR.
func ResolveSocketPath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(xdgRuntimeDir(), name)
}

// NewSocketPath attempts to generate a valid path for opening a new
// socket to listen on.
func NewSocketPath() (string, error) {
	dir := xdgRuntimeDir()
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	names := make(set.Set[int], len(entries))
	for _, ent := range entries {
		after, ok := strings.CutPrefix(ent.Name(), "wayland-")
		if !ok {
			continue
		}
		after, _ = strings.CutSuffix(after, ".lock")
		n, err := strconv.ParseInt(after, 10, 0)
		if err != nil {
			continue
		}
		names.Add(int(n))
	}

	var num int
	for names.Has(num) {
		num++
	}

	return filepath.Join(dir, fmt.Sprintf("wayland-%v", num)), nil
}

// Conn represents a low-level Wayland connection. It is not generally
// used directly, instead being handled automatically by a server or a
// client display.
type Conn struct {
	conn *net.UnixConn

	// fds is a FIFO of received descriptors. A single recvmsg can
	// carry the descriptors of several messages, so they are claimed
	// by ReadFile in order instead of being tied to a message.
	fdm    sync.Mutex
	fds    []int
	closed bool
}

// NewConn creates a new Conn that wraps c. After this is called, use
// the provided Close method to close c instead of calling its own
// Close method.
func NewConn(c *net.UnixConn) *Conn {
	return &Conn{
		conn: c,
	}
}

// Close closes the underlying connection and any received file
// descriptors that were never claimed.
func (c *Conn) Close() error {
	c.fdm.Lock()
	fds := c.fds
	c.fds = nil
	c.closed = true
	c.fdm.Unlock()

	errs := []error{c.conn.Close()}
	for _, fd := range fds {
		errs = append(errs, unix.Close(fd))
	}
	return errors.Join(errs...)
}

// SetReadDeadline sets the deadline for future reads of messages.
func (c *Conn) SetReadDeadline(t time.Time) error {
	return c.conn.SetReadDeadline(t)
}

func (c *Conn) String() string {
	return fmt.Sprintf("conn(%v)", c.conn.LocalAddr())
}

// Credentials returns the process credentials of the peer.
func (c *Conn) Credentials() (*unix.Ucred, error) {
	sc, err := c.conn.SyscallConn()
	if err != nil {
		return nil, err
	}

	var cred *unix.Ucred
	var cerr error
	err = sc.Control(func(fd uintptr) {
		cred, cerr = unix.GetsockoptUcred(int(fd), unix.SOL_SOCKET, unix.SO_PEERCRED)
	})
	return cred, errors.Join(err, cerr)
}

func (c *Conn) readFDs(data []byte) error {
	if len(data) == 0 {
		return nil
	}

	cmsgs, err := unix.ParseSocketControlMessage(data)
	if err != nil {
		return fmt.Errorf("parse socket control messages: %w", err)
	}

	c.fdm.Lock()
	defer c.fdm.Unlock()

	for _, cmsg := range cmsgs {
		fds, err := unix.ParseUnixRights(&cmsg)
		if err != nil {
			if errors.Is(err, unix.EINVAL) {
				continue
			}
			return fmt.Errorf("parse unix control message: %w", err)
		}
		if c.closed {
			for _, fd := range fds {
				unix.Close(fd)
			}
			continue
		}
		c.fds = append(c.fds, fds...)
	}
	return nil
}

func (c *Conn) popFD() (int, bool) {
	c.fdm.Lock()
	defer c.fdm.Unlock()

	if len(c.fds) == 0 {
		return -1, false
	}
	fd := c.fds[0]
	c.fds = c.fds[1:]
	return fd, true
}

// pendingFDs returns the number of received descriptors that have not
// yet been claimed.
func (c *Conn) pendingFDs() int {
	c.fdm.Lock()
	defer c.fdm.Unlock()
	return len(c.fds)
}

// Dial opens a connection to the Wayland socket based on the current
// environment. It follows the procedure outlined at
// https://wayland-book.com/protocol-design/wire-protocol.html#transports
func Dial() (*Conn, error) {
	if v, ok := os.LookupEnv("WAYLAND_SOCKET"); ok {
		fd, err := strconv.ParseInt(v, 10, 0)
		if err != nil {
			return nil, fmt.Errorf("parse WAYLAND_SOCKET fd: %w", err)
		}
		file := os.NewFile(uintptr(fd), "WAYLAND_SOCKET")
		defer file.Close()

		c, err := net.FileConn(file)
		if err != nil {
			return nil, fmt.Errorf("open WAYLAND_SOCKET connection: %w", err)
		}
		uc, ok := c.(*net.UnixConn)
		if !ok {
			c.Close()
			return nil, errors.New("WAYLAND_SOCKET is not a Unix socket")
		}
		return NewConn(uc), nil
	}

	return DialPath(SocketPath())
}

// DialPath opens a connection to the socket at path.
func DialPath(path string) (*Conn, error) {
	s, err := net.DialUnix("unix", nil, &net.UnixAddr{Name: path, Net: "unix"})
	if err != nil {
		return nil, err
	}
	return NewConn(s), nil
}

// Pipe returns a pair of connected Conns backed by a Unix socketpair.
// It is useful for handing a pre-connected socket to a child process
// via $WAYLAND_SOCKET and for tests.
func Pipe() (*Conn, *Conn, error) {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return nil, nil, fmt.Errorf("socketpair: %w", err)
	}

	conns := make([]*Conn, 0, 2)
	for i, fd := range fds {
		file := os.NewFile(uintptr(fd), "wayland-pipe")
		c, err := net.FileConn(file)
		file.Close()
		if err != nil {
			for _, c := range conns {
				c.Close()
			}
			if i == 0 {
				unix.Close(fds[1])
			}
			return nil, nil, fmt.Errorf("wrap socketpair: %w", err)
		}
		conns = append(conns, NewConn(c.(*net.UnixConn)))
	}

	return conns[0], conns[1], nil
}
