package rb

import (
	"iter"

	"golang.org/x/sys/cpu"
)

var _ engine[int] = (*SliceBuffer[int])(nil)

// SliceBuffer is a ring buffer of items of type T backed by a caller supplied slice.
// It behaves exactly like [Buffer], the capacity is checked when the buffer is created.
// The buffer never grows nor reallocates the backing slice.
//
// The input and output cursors sit on different cache lines, so a producer
// and a consumer coordinated by the caller do not share one.
type SliceBuffer[T any] struct {
	cursors[cpu.CacheLinePad]

	storage []T
	capMask Index

	hook PushHook[T]
}

// NewSliceBuffer returns a ring buffer over storage.
// The length of storage is the capacity: it must be a power of two
// not greater than [MaxCapacity], otherwise an error wrapping
// [ErrInvalidCapacity] is returned.
func NewSliceBuffer[T any](storage []T, hook PushHook[T]) (*SliceBuffer[T], error) {
	if err := checkCapacity(len(storage)); err != nil {
		return nil, err
	}

	return &SliceBuffer[T]{
		storage: storage,
		capMask: Index(len(storage) - 1),

		hook: hook,
	}, nil
}

// Init resets the buffer and sets the push hook.
// The hook can be nil.
func (b *SliceBuffer[T]) Init(hook PushHook[T]) {
	b.reset()
	b.hook = hook
}

// Reset empties the buffer, the push hook is kept.
func (b *SliceBuffer[T]) Reset() {
	b.reset()
}

func (b *SliceBuffer[T]) at(pos Index) *T {
	return &b.storage[pos&b.capMask]
}

// Cap returns the capacity of the buffer.
func (b *SliceBuffer[T]) Cap() Index {
	return b.capMask + 1
}

// Count returns the number of items in the buffer.
func (b *SliceBuffer[T]) Count() Index {
	return length[T](b)
}

// Free returns the number of items that can still be pushed.
func (b *SliceBuffer[T]) Free() Index {
	return b.Cap() - length[T](b)
}

// Empty states whether the buffer is empty.
func (b *SliceBuffer[T]) Empty() bool {
	return isEmpty[T](b)
}

// Full states whether the buffer is full.
func (b *SliceBuffer[T]) Full() bool {
	return isFull[T](b)
}

// Slot returns the slot at the input cursor.
func (b *SliceBuffer[T]) Slot() *T {
	return b.at(b.input)
}

// PushFront inserts the item as the newest one.
// It returns false if the buffer is full or if the push hook rejected the item.
func (b *SliceBuffer[T]) PushFront(item *T) bool {
	return pushFront(b, b.hook, item)
}

// PopBack removes the oldest item.
// It returns false if the buffer is empty.
func (b *SliceBuffer[T]) PopBack() bool {
	return popBack[T](b)
}

// Peek returns the item at the given offset from the oldest one,
// or nil if there is no such item.
func (b *SliceBuffer[T]) Peek(offset Index) *T {
	return peek[T](b, offset)
}

// Oldest returns the oldest item, or nil if the buffer is empty.
func (b *SliceBuffer[T]) Oldest() *T {
	return peek[T](b, 0)
}

// All returns an iterator over the items, from the oldest to the newest.
func (b *SliceBuffer[T]) All() iter.Seq2[Index, *T] {
	return all[T](b)
}

// PushString copies the items of data until the buffer is full,
// bypassing the push hook.
func (b *SliceBuffer[T]) PushString(data []T) int {
	return pushString(b, data)
}

// PopString moves the oldest items into dest.
func (b *SliceBuffer[T]) PopString(dest []T) int {
	return popString(b, dest)
}

// PopCString moves the oldest items into dest and terminates it with the zero value of T.
func (b *SliceBuffer[T]) PopCString(dest []T) int {
	return popCString(b, dest, nil, SkipContinue)
}

// PopCStringCond moves the oldest items not skipped into dest and terminates it.
// Every consumed item counts against the len(dest)-1 limit.
func (b *SliceBuffer[T]) PopCStringCond(dest []T, skip SkipFunc[T], action SkipAction) int {
	return popCString(b, dest, skip, action)
}
