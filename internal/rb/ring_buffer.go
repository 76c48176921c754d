// Package rb provides an allocation free, fixed capacity, generic ring buffer.
//
// The buffer keeps two ever increasing virtual cursors, input and output.
// Their difference is the number of stored items and the physical slot of
// a virtual position is obtained by masking it with capacity-1,
// which is why the capacity must be a power of two.
// Popping an item only advances the output cursor, the slot is not erased.
//
// Nothing in this package is safe for concurrent use.
package rb

import "iter"

var _ engine[int] = (*Buffer[int, [8]int])(nil)

// Buffer is a ring buffer of items of type T backed by the array A.
// The capacity is the length of A, it is checked at compile time by [Storage].
//
// The zero value is an empty buffer without push hook.
// A Buffer must not be copied after first use.
type Buffer[T any, A Storage[T]] struct {
	cursors[struct{}]

	storage A

	hook PushHook[T]
}

// Init resets the buffer and sets the push hook.
// The hook can be nil.
func (b *Buffer[T, A]) Init(hook PushHook[T]) {
	b.reset()
	b.hook = hook
}

// Reset empties the buffer, the push hook is kept.
func (b *Buffer[T, A]) Reset() {
	b.reset()
}

func (b *Buffer[T, A]) at(pos Index) *T {
	return &b.storage[pos&(b.Cap()-1)]
}

// Cap returns the capacity of the buffer.
func (b *Buffer[T, A]) Cap() Index {
	return Index(len(b.storage))
}

// Count returns the number of items in the buffer.
func (b *Buffer[T, A]) Count() Index {
	return length[T](b)
}

// Free returns the number of items that can still be pushed.
func (b *Buffer[T, A]) Free() Index {
	return b.Cap() - length[T](b)
}

// Empty states whether the buffer is empty.
func (b *Buffer[T, A]) Empty() bool {
	return isEmpty[T](b)
}

// Full states whether the buffer is full.
func (b *Buffer[T, A]) Full() bool {
	return isFull[T](b)
}

// Slot returns the slot at the input cursor.
// It is the slot written by the next push.
func (b *Buffer[T, A]) Slot() *T {
	return b.at(b.input)
}

// PushFront inserts the item as the newest one.
// It returns false if the buffer is full or if the push hook rejected the item.
func (b *Buffer[T, A]) PushFront(item *T) bool {
	return pushFront(b, b.hook, item)
}

// PopBack removes the oldest item.
// It returns false if the buffer is empty.
// The item must be read with [Buffer.Peek] before popping it.
func (b *Buffer[T, A]) PopBack() bool {
	return popBack[T](b)
}

// Peek returns the item at the given offset from the oldest one.
// It returns nil if the offset is not lower than the number of items.
func (b *Buffer[T, A]) Peek(offset Index) *T {
	return peek[T](b, offset)
}

// Oldest returns the oldest item, or nil if the buffer is empty.
func (b *Buffer[T, A]) Oldest() *T {
	return peek[T](b, 0)
}

// All returns an iterator over the items, from the oldest to the newest,
// along with their offset.
func (b *Buffer[T, A]) All() iter.Seq2[Index, *T] {
	return all[T](b)
}

// PushString copies the items of data until the buffer is full.
// The push hook is not called. It returns the number of copied items.
func (b *Buffer[T, A]) PushString(data []T) int {
	return pushString(b, data)
}

// PopString moves the oldest items into dest until dest is filled or the buffer is empty.
// It returns the number of moved items.
func (b *Buffer[T, A]) PopString(dest []T) int {
	return popString(b, dest)
}

// PopCString works like [Buffer.PopString] but it reserves the last item of dest
// for a terminator (the zero value of T), which is always written.
// An empty dest is left untouched.
func (b *Buffer[T, A]) PopCString(dest []T) int {
	return popCString(b, dest, nil, SkipContinue)
}

// PopCStringCond works like [Buffer.PopCString] but each item is checked with skip
// before being copied. A skipped item is consumed but not copied, then
// the copy goes on or stops depending on action.
// Every consumed item counts against the len(dest)-1 limit, skipped ones included.
func (b *Buffer[T, A]) PopCStringCond(dest []T, skip SkipFunc[T], action SkipAction) int {
	return popCString(b, dest, skip, action)
}
