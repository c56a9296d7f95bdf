// Package shm provides helpers for dealing with shared memory.
package shm

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Create returns an anonymous, resizable shared memory file of the
// given size. The file is suitable for passing to wl_shm.create_pool.
func Create(name string, size int) (*os.File, error) {
	fd, err := unix.MemfdCreate(name, unix.MFD_CLOEXEC|unix.MFD_ALLOW_SEALING)
	if err != nil {
		return nil, fmt.Errorf("memfd_create: %w", err)
	}

	file := os.NewFile(uintptr(fd), name)
	err = file.Truncate(int64(size))
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("truncate %v to %v: %w", name, size, err)
	}

	return file, nil
}

// Mmap is a region of mapped memory.
type Mmap []byte

// Map maps the first size bytes of file with the given protection
// flags. The mapping is shared, so writes by other processes are
// visible through it.
func Map(file *os.File, size int, prot int) (mmap Mmap, err error) {
	sc, err := file.SyscallConn()
	if err != nil {
		return nil, err
	}

	cerr := sc.Control(func(fd uintptr) {
		m, merr := unix.Mmap(int(fd), 0, size, prot, unix.MAP_SHARED)
		mmap, err = Mmap(m), merr
	})
	if cerr != nil {
		return nil, cerr
	}

	return mmap, err
}

func (mmap Mmap) Unmap() error {
	return unix.Munmap(mmap)
}
