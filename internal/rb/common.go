package rb

import (
	"errors"
	"fmt"
)

// Index is the type of the virtual cursors of a ring buffer.
// The cursors only ever grow and are allowed to overflow,
// the occupancy is always computed with wraparound arithmetic.
type Index = uint32

// MaxCapacity is the largest capacity a ring buffer can have.
// The occupancy (input - output) must fit in an [Index].
const MaxCapacity = 1 << 31

// ErrInvalidCapacity is returned when the capacity of a ring buffer
// is zero, not a power of two or greater than [MaxCapacity].
var ErrInvalidCapacity = errors.New("ring buffer: invalid capacity")

// Storage is the constraint satisfied by the fixed-size arrays
// that can back a [Buffer]. Only power of two lengths are listed,
// so a wrong capacity is rejected by the compiler.
type Storage[T any] interface {
	~[1]T | ~[2]T | ~[4]T | ~[8]T | ~[16]T | ~[32]T | ~[64]T | ~[128]T |
		~[256]T | ~[512]T | ~[1024]T | ~[2048]T | ~[4096]T | ~[8192]T |
		~[16384]T | ~[32768]T | ~[65536]T | ~[131072]T | ~[262144]T |
		~[524288]T | ~[1048576]T | ~[2097152]T | ~[4194304]T |
		~[8388608]T | ~[16777216]T
}

// IsPowerOfTwo states whether n has exactly one bit set.
func IsPowerOfTwo(n uint64) bool {
	return n != 0 && n&(n-1) == 0
}

// RoundToPowerOfTwo returns the smallest power of two greater than or equal to n.
// Zero is rounded to one, values above 1<<31 are clamped to 1<<31.
func RoundToPowerOfTwo(n uint32) uint32 {
	if n <= 1 {
		return 1
	}
	if n > MaxCapacity {
		return MaxCapacity
	}

	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16

	return n + 1
}

func checkCapacity(capacity int) error {
	switch {
	case capacity <= 0:
		return fmt.Errorf("%w: must be greater than zero, got %d", ErrInvalidCapacity, capacity)
	case uint64(capacity) > MaxCapacity:
		return fmt.Errorf("%w: must not exceed %d, got %d", ErrInvalidCapacity, uint64(MaxCapacity), capacity)
	case !IsPowerOfTwo(uint64(capacity)):
		return fmt.Errorf("%w: %d is not a power of two", ErrInvalidCapacity, capacity)
	}

	return nil
}

// cursors holds the virtual input/output positions of a buffer.
// P is placed between them: struct{} packs the cursors together,
// cpu.CacheLinePad puts them on different cache lines.
type cursors[P any] struct {
	// input counts the items ever pushed.
	input Index

	_ P

	// output counts the items ever popped.
	output Index
}

func (c *cursors[P]) reset() {
	c.input = 0
	c.output = 0
}

func (c *cursors[P]) positions() (input, output *Index) {
	return &c.input, &c.output
}
