package icons

import (
	"fmt"
	"sort"
)

type Size int

const (
	Size16   Size = 16
	Size32   Size = 32
	Size64   Size = 64
	Size128  Size = 128
	Size256  Size = 256
	Size512  Size = 512
	Size1024 Size = 1024
)

// BaseSize is the edge length of the canonical image every variant is derived from.
const BaseSize = 1024

var sizes = [...]Size{Size16, Size32, Size64, Size128, Size256, Size512, Size1024}

// Sizes returns every icon size in ascending order.
func Sizes() []Size {
	out := make([]Size, len(sizes))
	copy(out, sizes[:])

	return out
}

func (s Size) Valid() bool {
	for _, v := range sizes {
		if v == s {
			return true
		}
	}

	return false
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", int(s), int(s))
}

// Icons maps each size to its encoded PNG.
type Icons map[Size][]byte

// Sizes returns the sizes present, ascending.
func (i Icons) Sizes() []Size {
	out := make([]Size, 0, len(i))
	for s := range i {
		out = append(out, s)
	}

	sort.Slice(out, func(a, b int) bool { return out[a] < out[b] })

	return out
}

// Each calls fn for every icon in ascending size order and stops at the first error.
func (i Icons) Each(fn func(size Size, data []byte) error) error {
	for _, s := range i.Sizes() {
		if err := fn(s, i[s]); err != nil {
			return err
		}
	}

	return nil
}
