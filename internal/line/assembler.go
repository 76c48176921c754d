// Package line assembles newline terminated records out of a byte stream
// buffered in a ring buffer, the typical job of a serial line discipline.
package line

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/FerroO2000/ringo/internal/config"
	"github.com/FerroO2000/ringo/internal/rb"
)

// Default configuration values for the line assembler.
const (
	DefaultCapacity    = 256
	DefaultDropControl = false
)

// ErrStorageMismatch is returned when the storage length differs from the configured capacity.
var ErrStorageMismatch = errors.New("line assembler: storage length does not match the capacity")

// Config is the configuration of an [Assembler].
type Config struct {
	// Capacity is the size of the storage of the ring buffer.
	// It must be a power of two.
	//
	// Default: 256
	Capacity uint32

	// DropControl states whether the ASCII control characters
	// (except line feed, carriage return and tab) are discarded on insertion.
	//
	// Default: false
	DropControl bool
}

// NewConfig returns the default configuration of an [Assembler].
func NewConfig() *Config {
	return &Config{
		Capacity:    DefaultCapacity,
		DropControl: DefaultDropControl,
	}
}

// Validate checks the configuration.
func (c *Config) Validate(ac *config.AnomalyCollector) {
	config.CheckNotZero(ac, "Capacity", &c.Capacity, DefaultCapacity)
	config.CheckPowerOfTwo(ac, "Capacity", &c.Capacity)
}

// Stats contains the counters of an [Assembler].
type Stats struct {
	// FedBytes is the number of bytes consumed by Feed.
	FedBytes int64
	// FilteredBytes is the number of bytes discarded by the control character filter.
	FilteredBytes int64
	// Lines is the number of lines returned by Next.
	Lines int64
	// TruncatedLines is the number of lines that did not fit the destination
	// or the ring buffer.
	TruncatedLines int64
}

// Assembler splits the bytes it is fed into lines.
// It is not safe for concurrent use.
type Assembler struct {
	buf *rb.SliceBuffer[byte]

	dropControl bool

	fedBytes       atomic.Int64
	filteredBytes  atomic.Int64
	lines          atomic.Int64
	truncatedLines atomic.Int64
}

// NewAssembler returns a line assembler that buffers the bytes in storage.
// The length of storage must match cfg.Capacity.
func NewAssembler(storage []byte, cfg *Config) (*Assembler, error) {
	var hook rb.PushHook[byte]
	if cfg.DropControl {
		hook = rb.FilterHook(isAccepted)
	}

	if uint64(len(storage)) != uint64(cfg.Capacity) {
		return nil, fmt.Errorf("%w: got %d, expected %d", ErrStorageMismatch, len(storage), cfg.Capacity)
	}

	buf, err := rb.NewSliceBuffer(storage, hook)
	if err != nil {
		return nil, err
	}

	return &Assembler{
		buf: buf,

		dropControl: cfg.DropControl,
	}, nil
}

func isLineFeed(c byte) bool {
	return c == '\n'
}

func isLineBreak(c byte) bool {
	return c == '\n' || c == '\r'
}

func isAccepted(c byte) bool {
	if c == '\n' || c == '\r' || c == '\t' {
		return true
	}

	return c >= 0x20 && c != 0x7f
}

// Feed buffers the bytes of p until the ring buffer is full.
// It returns the number of bytes consumed, the filtered bytes are counted as consumed.
func (a *Assembler) Feed(p []byte) int {
	consumed := 0

	if a.buf.Full() {
		return 0
	}

	if !a.dropControl {
		consumed = a.buf.PushString(p)
		a.fedBytes.Add(int64(consumed))
		return consumed
	}

	filtered := 0
	for consumed < len(p) && !a.buf.Full() {
		// The buffer is not full, so a failed push is a rejection of the hook
		if !a.buf.PushFront(&p[consumed]) {
			filtered++
		}
		consumed++
	}

	a.fedBytes.Add(int64(consumed))
	a.filteredBytes.Add(int64(filtered))

	return consumed
}

// Next pops the oldest complete line into dest and reports whether a line was returned.
// The line feed and a trailing carriage return are removed and dest is NUL terminated,
// so at most len(dest)-1 bytes are copied: the rest of a longer line is discarded.
// When the ring buffer is full and holds no line feed, its content
// is returned as a truncated line.
func (a *Assembler) Next(dest []byte) (int, bool) {
	if len(dest) == 0 {
		return 0, false
	}

	lineLen, found := a.findLineFeed()
	if !found {
		if !a.buf.Full() {
			return 0, false
		}

		// No line feed in a full buffer, flush what fits and drop the rest
		n := a.buf.PopCString(dest)
		a.discard(a.Len())
		a.lines.Add(1)
		a.truncatedLines.Add(1)
		return n, true
	}

	// The carriage return is stripped, so it does not count as content
	contentLen := lineLen
	if lineLen > 0 && *a.buf.Peek(rb.Index(lineLen-1)) == '\r' {
		contentLen--
	}

	before := a.buf.Count()
	n := a.buf.PopCStringCond(dest, isLineFeed, rb.SkipStop)
	consumed := int(before - a.buf.Count())

	// dest has been filled before reaching the line feed
	if consumed <= lineLen {
		a.discard(lineLen - consumed + 1)

		if n < contentLen {
			a.truncatedLines.Add(1)
		}
	}

	if n > 0 && dest[n-1] == '\r' {
		n--
		dest[n] = 0
	}

	a.lines.Add(1)

	return n, true
}

// Drain pops the buffered bytes into dest skipping the line breaks.
// It is meant to recover the incomplete line left in the buffer at the end of a stream.
func (a *Assembler) Drain(dest []byte) int {
	return a.buf.PopCStringCond(dest, isLineBreak, rb.SkipContinue)
}

// Len returns the number of buffered bytes.
func (a *Assembler) Len() int {
	return int(a.buf.Count())
}

// Cap returns the capacity of the ring buffer.
func (a *Assembler) Cap() int {
	return int(a.buf.Cap())
}

// Stats returns a snapshot of the counters.
func (a *Assembler) Stats() Stats {
	return Stats{
		FedBytes:       a.fedBytes.Load(),
		FilteredBytes:  a.filteredBytes.Load(),
		Lines:          a.lines.Load(),
		TruncatedLines: a.truncatedLines.Load(),
	}
}

// findLineFeed returns the offset of the first buffered line feed.
func (a *Assembler) findLineFeed() (int, bool) {
	for offset, c := range a.buf.All() {
		if *c == '\n' {
			return int(offset), true
		}
	}

	return 0, false
}

func (a *Assembler) discard(count int) {
	for range count {
		if !a.buf.PopBack() {
			return
		}
	}
}
