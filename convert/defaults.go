package convert

import (
	"github.com/McLeodMoores/xl4j-sub002/heap"
)

// Defaults returns the standard converter set. Object references are
// resolved through h.
func Defaults(h *heap.Heap) []Converter {
	return []Converter{
		identity{},
		float{},
		infNaN{},
		integer{},
		boolean{},
		text{},
		nilValue{},
		bigInt{},
		bigFloat{},
		serialDate{},
		vector{},
		grid{},
		table{},
		optional{},
		NewObject(h),
	}
}

// Default builds a registry holding Defaults(h) followed by extra.
func Default(h *heap.Heap, extra ...Converter) (*Registry, error) {
	return NewBuilder().Add(Defaults(h)...).Add(extra...).Build()
}
