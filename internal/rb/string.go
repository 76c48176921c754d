package rb

// SkipFunc reports whether an item must be skipped by a conditional pop.
type SkipFunc[T any] func(item T) bool

// SkipAction is the behaviour of a conditional pop when an item is skipped.
type SkipAction uint8

const (
	// SkipContinue drops the skipped item and goes on with the next one.
	SkipContinue SkipAction = iota
	// SkipStop drops the skipped item and stops the copy.
	SkipStop
)

func (sa SkipAction) String() string {
	switch sa {
	case SkipContinue:
		return "continue"
	case SkipStop:
		return "stop"
	default:
		return "unknown"
	}
}

func pushString[T any, E engine[T]](e E, data []T) int {
	input, _ := e.positions()
	written := 0

	// Copy while there is something to copy and room for it
	for written < len(data) && !isFull[T](e) {
		*e.at(*input) = data[written]
		*input++
		written++
	}

	return written
}

func popString[T any, E engine[T]](e E, dest []T) int {
	_, output := e.positions()
	read := 0

	for read < len(dest) && !isEmpty[T](e) {
		dest[read] = *e.at(*output)
		*output++
		read++
	}

	return read
}

func popCString[T any, E engine[T]](e E, dest []T, skip SkipFunc[T], action SkipAction) int {
	// No room for the terminator
	if len(dest) == 0 {
		return 0
	}

	_, output := e.positions()

	// Every consumed item uses up the limit, skipped or not
	limit := len(dest) - 1
	written := 0

	for pass := 0; pass < limit && !isEmpty[T](e); pass++ {
		item := *e.at(*output)
		*output++

		if skip != nil && skip(item) {
			if action == SkipStop {
				break
			}
			continue
		}

		dest[written] = item
		written++
	}

	var terminator T
	dest[written] = terminator

	return written
}
