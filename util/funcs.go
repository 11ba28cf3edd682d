package util

import (
	"iter"

	"github.com/hashicorp/go-set/v3"
)

// UniqueHashable returns elems without repeated elements (by Hash), keeping the
// first occurrence of each and the original order.
func UniqueHashable[A set.Hasher[H], H set.Hash](elems []A) []A {
	seen := set.NewHashSet[A, H](len(elems))
	ret := make([]A, 0, len(elems))
	for _, elem := range elems {
		if seen.Insert(elem) {
			ret = append(ret, elem)
		}
	}
	return ret
}

// Unique is UniqueHashable for comparable elements
func Unique[A comparable](elems []A) []A {
	seen := set.New[A](len(elems))
	ret := make([]A, 0, len(elems))
	for _, elem := range elems {
		if seen.Insert(elem) {
			ret = append(ret, elem)
		}
	}
	return ret
}

func MapSlice[A, B any](slice []A, f func(A) B) []B {
	ret := make([]B, len(slice))
	for i, a := range slice {
		ret[i] = f(a)
	}
	return ret
}

func Reverse[A any](slice []A) iter.Seq[A] {
	return func(yield func(A) bool) {
		for i := len(slice) - 1; i >= 0; i-- {
			if !yield(slice[i]) {
				return
			}
		}
	}
}
