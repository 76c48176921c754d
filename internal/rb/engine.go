package rb

import "iter"

// engine is the set of primitives shared by every buffer flavour.
// The operations of the buffers are written once on top of it.
type engine[T any] interface {
	Slots[T]

	at(pos Index) *T
	positions() (input, output *Index)
}

func length[T any, E engine[T]](e E) Index {
	input, output := e.positions()
	return *input - *output
}

func isEmpty[T any, E engine[T]](e E) bool {
	return length[T](e) == 0
}

func isFull[T any, E engine[T]](e E) bool {
	return length[T](e) == e.Cap()
}

func pushFront[T any, E engine[T]](e E, hook PushHook[T], item *T) bool {
	if isFull[T](e) {
		return false
	}

	input, _ := e.positions()

	if hook != nil {
		if !hook(e, item) {
			return false
		}
	} else {
		*e.at(*input) = *item
	}

	*input++

	return true
}

func popBack[T any, E engine[T]](e E) bool {
	if isEmpty[T](e) {
		return false
	}

	_, output := e.positions()
	*output++

	return true
}

func peek[T any, E engine[T]](e E, offset Index) *T {
	if offset >= length[T](e) {
		return nil
	}

	_, output := e.positions()

	return e.at(*output + offset)
}

func all[T any, E engine[T]](e E) iter.Seq2[Index, *T] {
	return func(yield func(Index, *T) bool) {
		_, output := e.positions()

		for offset := range length[T](e) {
			if !yield(offset, e.at(*output+offset)) {
				return
			}
		}
	}
}
