package probe

import (
	"fmt"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"
)

const (
	// BlockSize is the transfer unit for direct reads. O_DIRECT requires
	// block-aligned transfer sizes, so trailing partial blocks are skipped.
	BlockSize = 512
	// bufferAlignment is the memory alignment of the read buffer. Page
	// alignment satisfies every filesystem's O_DIRECT requirements.
	bufferAlignment = 4096
)

// AlignedSize returns the largest multiple of BlockSize not exceeding size.
func AlignedSize(size int64) int64 {
	if size < 0 {
		return 0
	}
	return (size / BlockSize) * BlockSize
}

// Run performs one direct-I/O read pass over the file at path. Exactly one
// descriptor is opened and one buffer allocated per call; both are released
// on every exit path. Run never retries; the caller's next iteration is the
// retry mechanism.
func Run(path string) Result {
	start := time.Now()
	finish := func(r Result) Result {
		r.Duration = time.Since(start)
		return r
	}

	buf, err := alignedBlock(BlockSize, bufferAlignment)
	if err != nil {
		return finish(Result{Outcome: OutcomeAllocFailed, Err: err})
	}

	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_DIRECT|unix.O_CLOEXEC, 0)
	if err != nil {
		return finish(Result{Outcome: OutcomeOpenFailed, Err: fmt.Errorf("open %s: %w", path, err)})
	}

	size, err := unix.Seek(fd, 0, unix.SEEK_END)
	if err != nil {
		_ = unix.Close(fd)
		return finish(Result{Outcome: OutcomeSeekFailed, Err: fmt.Errorf("seek end: %w", err)})
	}
	if _, err := unix.Seek(fd, 0, unix.SEEK_SET); err != nil {
		_ = unix.Close(fd)
		return finish(Result{Outcome: OutcomeSeekFailed, Err: fmt.Errorf("seek start: %w", err)})
	}

	alignedSize := AlignedSize(size)

	var bytesRead int64
	for bytesRead < alignedSize {
		n, err := unix.Read(fd, buf)
		switch {
		case err != nil:
			_ = unix.Close(fd)
			return finish(Result{
				Outcome:   OutcomeReadFailed,
				Offset:    bytesRead,
				BytesRead: bytesRead,
				Err:       fmt.Errorf("read at offset %d: %w", bytesRead, err),
			})
		case n == 0:
			// The file shrank between the size check and this read.
			_ = unix.Close(fd)
			return finish(Result{
				Outcome:   OutcomeUnexpectedEOF,
				Offset:    bytesRead,
				BytesRead: bytesRead,
			})
		case n != BlockSize:
			// O_DIRECT must deliver whole blocks; a partial block signals
			// device or filesystem trouble.
			_ = unix.Close(fd)
			return finish(Result{
				Outcome:   OutcomeShortRead,
				Offset:    bytesRead,
				Read:      n,
				BytesRead: bytesRead + int64(n),
			})
		}
		bytesRead += int64(n)
	}

	if err := unix.Close(fd); err != nil {
		// close can surface deferred device errors even after clean reads.
		return finish(Result{
			Outcome:   OutcomeCloseFailed,
			BytesRead: bytesRead,
			Err:       fmt.Errorf("close: %w", err),
		})
	}

	return finish(Result{Outcome: OutcomeOK, BytesRead: bytesRead})
}

// alignedBlock allocates a size-byte slice whose backing memory starts on
// an align-byte boundary.
func alignedBlock(size, align int) ([]byte, error) {
	if align <= 0 || align&(align-1) != 0 {
		return nil, fmt.Errorf("alignment %d is not a power of two", align)
	}
	raw := make([]byte, size+align)
	misalignment := int(uintptr(unsafe.Pointer(&raw[0])) & uintptr(align-1))
	offset := 0
	if misalignment != 0 {
		offset = align - misalignment
	}
	block := raw[offset : offset+size]
	if uintptr(unsafe.Pointer(&block[0]))&uintptr(align-1) != 0 {
		return nil, fmt.Errorf("failed to align buffer to %d bytes", align)
	}
	return block, nil
}
