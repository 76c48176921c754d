package rb

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Buffer_init(t *testing.T) {
	assert := assert.New(t)

	var b Buffer[int, [8]int]
	b.input = 5
	b.output = 2

	b.Init(nil)

	assert.True(b.Empty())
	assert.False(b.Full())
	assert.Equal(Index(0), b.Count())
	assert.Equal(Index(8), b.Cap())
	assert.Equal(Index(8), b.Free())
	assert.Nil(b.Oldest())
	assert.Nil(b.Peek(0))
}

func Test_Buffer_zeroValue(t *testing.T) {
	assert := assert.New(t)

	var b Buffer[string, [2]string]

	assert.True(b.Empty())

	item := "first"
	assert.True(b.PushFront(&item))
	assert.Equal("first", *b.Oldest())
}

func Test_Buffer_pushPop(t *testing.T) {
	assert := assert.New(t)

	const capacity = 16

	var b Buffer[int, [capacity]int]
	b.Init(nil)

	for i := range capacity {
		assert.True(b.PushFront(&i))
		assert.Equal(Index(i+1), b.Count())
	}

	assert.True(b.Full())
	assert.Equal(Index(0), b.Free())

	// Overflow
	extra := 100
	assert.False(b.PushFront(&extra))
	assert.Equal(Index(capacity), b.Count())
	assert.Equal(capacity-1, *b.Peek(capacity - 1))

	assert.Equal(0, *b.Peek(0))
	assert.Equal(0, *b.Oldest())
	assert.Nil(b.Peek(capacity))

	for i := range capacity {
		require.NotNil(t, b.Oldest())
		assert.Equal(i, *b.Oldest())
		assert.True(b.PopBack())
	}

	// Underflow
	assert.True(b.Empty())
	assert.False(b.PopBack())
	assert.Nil(b.Oldest())
	assert.Equal(Index(0), b.Count())
}

func Test_Buffer_peek(t *testing.T) {
	assert := assert.New(t)

	var b Buffer[int, [4]int]
	b.Init(nil)

	for i := range 3 {
		val := i * 10
		b.PushFront(&val)
	}

	// The newest item is at count-1
	assert.Equal(0, *b.Peek(0))
	assert.Equal(20, *b.Peek(b.Count()-1))
	assert.Nil(b.Peek(b.Count()))
	assert.Nil(b.Peek(math.MaxUint32))

	// Peek returns a reference to the stored item
	*b.Peek(1) = 11
	b.PopBack()
	assert.Equal(11, *b.Oldest())
}

func Test_Buffer_wraparound(t *testing.T) {
	assert := assert.New(t)

	var b Buffer[int, [4]int]
	b.Init(nil)

	// Move both cursors close to the overflow of the index
	b.input = math.MaxUint32 - 1
	b.output = math.MaxUint32 - 1

	assert.True(b.Empty())

	next := 0
	expected := 0
	for range 10 {
		for !b.Full() {
			assert.True(b.PushFront(&next))
			next++
		}

		assert.Equal(Index(4), b.Count())
		assert.Equal(expected, *b.Oldest())
		assert.Equal(next-1, *b.Peek(3))

		assert.True(b.PopBack())
		assert.True(b.PopBack())
		expected += 2
	}

	// Both cursors overflowed, the occupancy is still right
	assert.Less(b.input, Index(math.MaxUint32-1))
	assert.Less(b.output, Index(math.MaxUint32-1))
	assert.Equal(Index(2), b.Count())
	assert.Equal(expected, *b.Oldest())
}

func Test_Buffer_wraparoundAcrossCursors(t *testing.T) {
	assert := assert.New(t)

	var b Buffer[byte, [8]byte]
	b.Init(nil)

	// The input cursor already overflowed while the output did not
	b.output = math.MaxUint32 - 2
	b.input = b.output

	for _, c := range []byte("abcdef") {
		assert.True(b.PushFront(&c))
	}

	assert.Less(b.input, b.output)
	assert.Equal(Index(6), b.Count())

	dest := make([]byte, 6)
	assert.Equal(6, b.PopString(dest))
	assert.Equal("abcdef", string(dest))
	assert.True(b.Empty())
}

func Test_Buffer_hook(t *testing.T) {
	assert := assert.New(t)

	calls := 0
	rejectOdd := func(buf Slots[int], item *int) bool {
		calls++
		if *item%2 != 0 {
			return false
		}
		*buf.Slot() = *item
		return true
	}

	var b Buffer[int, [2]int]
	b.Init(rejectOdd)

	even, odd := 2, 3

	assert.True(b.PushFront(&even))
	assert.Equal(Index(1), b.Count())

	// Rejected push does not advance the input cursor
	assert.False(b.PushFront(&odd))
	assert.Equal(Index(1), b.Count())

	assert.True(b.PushFront(&even))
	assert.True(b.Full())

	// The hook is not called when the buffer is full
	assert.False(b.PushFront(&even))
	assert.Equal(3, calls)
}

func Test_Buffer_hookSlot(t *testing.T) {
	assert := assert.New(t)

	var b Buffer[int, [4]int]

	var seenCount []Index
	b.Init(func(buf Slots[int], item *int) bool {
		seenCount = append(seenCount, buf.Count())
		assert.Equal(Index(4), buf.Cap())

		*buf.Slot() = *item
		return true
	})

	for i := range 3 {
		assert.True(b.PushFront(&i))
	}

	assert.Equal([]Index{0, 1, 2}, seenCount)
	assert.Equal(2, *b.Peek(2))
}

func Test_hookConstructors(t *testing.T) {
	assert := assert.New(t)

	var b Buffer[int, [4]int]

	b.Init(MapHook(func(item int) int { return item * item }))
	val := 3
	assert.True(b.PushFront(&val))
	assert.Equal(9, *b.Oldest())
	assert.Equal(3, val)

	b.Init(FilterHook(func(item int) bool { return item > 0 }))
	neg := -1
	assert.False(b.PushFront(&neg))
	assert.True(b.PushFront(&val))
	assert.Equal(Index(1), b.Count())
	assert.Equal(3, *b.Oldest())

	b.Init(CopyHook[int]())
	assert.True(b.PushFront(&neg))
	assert.Equal(-1, *b.Oldest())
}

func Test_Buffer_resetKeepsHook(t *testing.T) {
	assert := assert.New(t)

	var b Buffer[int, [4]int]
	b.Init(FilterHook(func(item int) bool { return item != 0 }))

	one := 1
	b.PushFront(&one)
	b.Reset()

	assert.True(b.Empty())

	zero := 0
	assert.False(b.PushFront(&zero))
}

func Test_Buffer_all(t *testing.T) {
	assert := assert.New(t)

	var b Buffer[int, [8]int]
	b.Init(nil)

	for i := range 6 {
		b.PushFront(&i)
	}
	b.PopBack()
	b.PopBack()

	offsets := []Index{}
	values := []int{}
	for offset, item := range b.All() {
		offsets = append(offsets, offset)
		values = append(values, *item)
	}

	assert.Equal([]Index{0, 1, 2, 3}, offsets)
	assert.Equal([]int{2, 3, 4, 5}, values)

	// Early stop
	visited := 0
	for range b.All() {
		visited++
		if visited == 2 {
			break
		}
	}
	assert.Equal(2, visited)

	// Iterating does not consume
	assert.Equal(Index(4), b.Count())
}

func Test_Buffer_tombstone(t *testing.T) {
	assert := assert.New(t)

	var b Buffer[int, [2]int]
	b.Init(nil)

	val := 42
	b.PushFront(&val)
	b.PopBack()

	// Popping does not erase the slot
	assert.Equal(42, b.storage[0])
	assert.Nil(b.Oldest())
}

func Test_Buffer_capacityOne(t *testing.T) {
	assert := assert.New(t)

	var b Buffer[int, [1]int]
	b.Init(nil)

	for i := range 5 {
		assert.True(b.PushFront(&i))
		assert.True(b.Full())
		assert.False(b.PushFront(&i))
		assert.Equal(i, *b.Oldest())
		assert.True(b.PopBack())
		assert.True(b.Empty())
	}
}

type namedStorage [32]uint16

func Test_Buffer_namedStorage(t *testing.T) {
	assert := assert.New(t)

	var b Buffer[uint16, namedStorage]
	b.Init(nil)

	assert.Equal(Index(32), b.Cap())
	assert.Equal(32, b.PushString(make([]uint16, 40)))
	assert.True(b.Full())
}

func Benchmark_Buffer_pushPop(b *testing.B) {
	var buf Buffer[int, [1024]int]
	buf.Init(nil)

	item := 0
	for b.Loop() {
		buf.PushFront(&item)
		_ = buf.Oldest()
		buf.PopBack()
		item++
	}
}

func Benchmark_Buffer_pushPopHook(b *testing.B) {
	var buf Buffer[int, [1024]int]
	buf.Init(CopyHook[int]())

	item := 0
	for b.Loop() {
		buf.PushFront(&item)
		buf.PopBack()
		item++
	}
}
