package bench

import (
	"math/rand/v2"
)

const (
	firstPrintable = 0x20
	lastPrintable  = 0x7e

	// bell is injected into the stream when the control characters are filtered.
	bell = 0x07
)

// generator produces a deterministic sequence of random printable lines.
// Two generators with the same seed produce the same lines,
// this is how the consumer knows what the producer sent.
type generator struct {
	rand *rand.Rand

	maxLineLength int
	injectControl bool

	content []byte
	wire    []byte
}

func newGenerator(seed uint64, maxLineLength int, injectControl bool) *generator {
	return &generator{
		rand: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),

		maxLineLength: maxLineLength,
		injectControl: injectControl,

		content: make([]byte, 0, maxLineLength),
		wire:    make([]byte, 0, 2*maxLineLength+2),
	}
}

// next returns the content of the next line and the bytes sent on the wire for it.
// The returned slices are reused by the following call.
func (g *generator) next() (content, wire []byte) {
	g.content = g.content[:0]
	g.wire = g.wire[:0]

	length := g.rand.IntN(g.maxLineLength + 1)
	for range length {
		c := byte(firstPrintable + g.rand.IntN(lastPrintable-firstPrintable+1))

		if g.injectControl && g.rand.IntN(8) == 0 {
			g.wire = append(g.wire, bell)
		}

		g.content = append(g.content, c)
		g.wire = append(g.wire, c)
	}

	if g.rand.IntN(2) == 0 {
		g.wire = append(g.wire, '\r')
	}
	g.wire = append(g.wire, '\n')

	return g.content, g.wire
}
