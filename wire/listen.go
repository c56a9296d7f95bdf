package wire

import (
	"errors"
	"fmt"
	"net"
	"os"

	"golang.org/x/sys/unix"
)

// Listener is a Wayland server socket together with the lock file
// that marks it as owned by a live process.
type Listener struct {
	*net.UnixListener
	path string
	lock *os.File
}

// Listen creates a socket named name in $XDG_RUNTIME_DIR, or at name
// if it is absolute. If name is empty, the first free wayland-N name
// is used. A stale socket left by a dead process is removed first; a
// socket whose lock is held by a running server is an error.
func Listen(name string) (*Listener, error) {
	path := ResolveSocketPath(name)
	if name == "" {
		p, err := NewSocketPath()
		if err != nil {
			return nil, fmt.Errorf("find free socket name: %w", err)
		}
		path = p
	}

	lock, err := os.OpenFile(path+".lock", os.O_CREATE|os.O_RDWR, 0660)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}
	err = unix.Flock(int(lock.Fd()), unix.LOCK_EX|unix.LOCK_NB)
	if err != nil {
		lock.Close()
		return nil, fmt.Errorf("socket %v is in use: %w", path, err)
	}

	err = os.Remove(path)
	if (err != nil) && !errors.Is(err, os.ErrNotExist) {
		lock.Close()
		return nil, fmt.Errorf("remove stale socket: %w", err)
	}

	lis, err := net.ListenUnix("unix", &net.UnixAddr{Name: path, Net: "unix"})
	if err != nil {
		lock.Close()
		return nil, err
	}
	lis.SetUnlinkOnClose(true)

	return &Listener{
		UnixListener: lis,
		path:         path,
		lock:         lock,
	}, nil
}

// Path returns the filesystem path of the socket.
func (lis *Listener) Path() string {
	return lis.path
}

// Accept waits for the next client connection.
func (lis *Listener) Accept() (*Conn, error) {
	c, err := lis.AcceptUnix()
	if err != nil {
		return nil, err
	}
	return NewConn(c), nil
}

// Close closes the socket and releases its lock file.
func (lis *Listener) Close() error {
	err := lis.UnixListener.Close()
	return errors.Join(
		err,
		os.Remove(lis.path+".lock"),
		lis.lock.Close(),
	)
}
