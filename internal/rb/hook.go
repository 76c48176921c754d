package rb

// Slots is the view of a ring buffer handed to a [PushHook].
type Slots[T any] interface {
	// Slot returns the slot that will be committed by the running push.
	Slot() *T
	// Count returns the number of items in the buffer.
	Count() Index
	// Cap returns the capacity of the buffer.
	Cap() Index
}

// PushHook replaces the direct assignment performed by a push.
// It is expected to write the slot returned by buf.Slot and return true
// to commit the push. When it returns false the push is aborted,
// the input cursor is left untouched and the slot content is unspecified.
type PushHook[T any] func(buf Slots[T], item *T) bool

// CopyHook returns a hook that copies the item into the slot,
// it behaves like a buffer without hook.
func CopyHook[T any]() PushHook[T] {
	return func(buf Slots[T], item *T) bool {
		*buf.Slot() = *item
		return true
	}
}

// FilterHook returns a hook that rejects the items not accepted by the given function.
func FilterHook[T any](accept func(item T) bool) PushHook[T] {
	return func(buf Slots[T], item *T) bool {
		if !accept(*item) {
			return false
		}

		*buf.Slot() = *item
		return true
	}
}

// MapHook returns a hook that stores the result of fn instead of the pushed item.
// The pushed item is not modified.
func MapHook[T any](fn func(item T) T) PushHook[T] {
	return func(buf Slots[T], item *T) bool {
		*buf.Slot() = fn(*item)
		return true
	}
}
