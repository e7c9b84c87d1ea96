// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package editor

// Reorder moves the entry at index from to index to and reassigns
// DisplayOrder so the result is dense and zero-based: after any valid
// move the set of orders is exactly {0 … n-1}. Dropping an entry onto its
// own position, or passing an out-of-range index, returns the input
// unchanged. The function is pure; it never touches the network or any UI
// layer.
func Reorder(entries []GalleryEntry, from, to int) []GalleryEntry {
	n := len(entries)
	if from < 0 || from >= n || to < 0 || to >= n || from == to {
		return entries
	}

	out := make([]GalleryEntry, 0, n)
	out = append(out, entries[:from]...)
	out = append(out, entries[from+1:]...)

	moved := entries[from]
	out = append(out[:to], append([]GalleryEntry{moved}, out[to:]...)...)

	for i := range out {
		out[i].DisplayOrder = i
	}
	return out
}
