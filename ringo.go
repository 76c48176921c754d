// Package ringo provides an allocation free, fixed capacity, generic ring buffer.
//
// [Buffer] stores its items in an array whose length, a power of two,
// is checked at compile time. [SliceBuffer] stores them in a caller supplied
// slice whose length is checked when the buffer is created.
// Both support a push hook that decides how an item is written into its slot,
// and bulk operations that move runs of items in and out of the buffer,
// such as reading a NUL terminated string.
//
// The buffers are not safe for concurrent use.
package ringo

import "github.com/FerroO2000/ringo/internal/rb"

// Index is the type of the cursors, counts and capacities.
type Index = rb.Index

// MaxCapacity is the largest capacity of a [SliceBuffer].
const MaxCapacity = rb.MaxCapacity

// ErrInvalidCapacity is returned when the storage length is not a power of two.
var ErrInvalidCapacity = rb.ErrInvalidCapacity

// Storage is the set of arrays that can back a [Buffer].
// Their length is a power of two between 1 and 1<<24.
type Storage[T any] = rb.Storage[T]

// Buffer is a ring buffer backed by the array A.
// The zero value is an empty buffer without push hook.
type Buffer[T any, A Storage[T]] = rb.Buffer[T, A]

// SliceBuffer is a ring buffer backed by a caller supplied slice.
type SliceBuffer[T any] = rb.SliceBuffer[T]

// NewSliceBuffer returns a ring buffer that stores its items in storage.
// The length of storage must be a power of two not greater than [MaxCapacity].
func NewSliceBuffer[T any](storage []T, hook PushHook[T]) (*SliceBuffer[T], error) {
	return rb.NewSliceBuffer(storage, hook)
}

// Slots is the view of a buffer given to a [PushHook].
type Slots[T any] = rb.Slots[T]

// PushHook writes the pushed item into the slot of the buffer.
// Returning false rejects the item.
type PushHook[T any] = rb.PushHook[T]

// CopyHook returns a hook that copies the item into the slot.
func CopyHook[T any]() PushHook[T] {
	return rb.CopyHook[T]()
}

// FilterHook returns a hook that copies only the items accepted by accept.
func FilterHook[T any](accept func(item T) bool) PushHook[T] {
	return rb.FilterHook(accept)
}

// MapHook returns a hook that stores the result of fn.
func MapHook[T any](fn func(item T) T) PushHook[T] {
	return rb.MapHook(fn)
}

// SkipFunc selects the items skipped by PopCStringCond.
type SkipFunc[T any] = rb.SkipFunc[T]

// SkipAction is what PopCStringCond does after skipping an item.
type SkipAction = rb.SkipAction

const (
	// SkipContinue keeps popping after a skipped item.
	SkipContinue = rb.SkipContinue
	// SkipStop stops popping after a skipped item.
	SkipStop = rb.SkipStop
)

// IsPowerOfTwo states whether n is a valid capacity.
func IsPowerOfTwo(n uint64) bool {
	return rb.IsPowerOfTwo(n)
}

// RoundToPowerOfTwo returns the smallest valid capacity not lower than n.
func RoundToPowerOfTwo(n uint32) uint32 {
	return rb.RoundToPowerOfTwo(n)
}
