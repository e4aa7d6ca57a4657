//go:build unix

package shmio

import "golang.org/x/sys/unix"

// mmapFile maps the first length bytes of fd, PROT_READ or PROT_READ|PROT_WRITE
// depending on writable, always MAP_SHARED so writes are visible to other
// processes mapping the same file.
func mmapFile(fd int, length int, writable bool) ([]byte, error) {
	prot := unix.PROT_READ
	if writable {
		prot |= unix.PROT_WRITE
	}
	return unix.Mmap(fd, 0, length, prot, unix.MAP_SHARED)
}

// munmapFile unmaps a region previously returned by mmapFile.
func munmapFile(mem []byte) error {
	if len(mem) == 0 {
		return nil
	}
	return unix.Munmap(mem)
}
