// Package treepath provides byte-level path utilities for root-relative
// snapshot paths. Paths always use '/' as a separator and never begin with
// '/'; the empty string denotes the snapshot root.
package treepath

import (
	"strings"
	"unicode/utf8"
)

// Join is a fast alternative to path.Join designed specifically for
// root-relative snapshot paths. It avoids the path-cleaning overhead incurred
// by path.Join. The provided leaf name must be non-empty, otherwise this
// function will panic.
func Join(base, leaf string) string {
	if leaf == "" {
		panic("treepath: empty leaf name")
	}
	if base == "" {
		return leaf
	}
	return base + "/" + leaf
}

// Dir is a fast alternative to path.Dir designed specifically for
// root-relative snapshot paths. Unlike path.Dir, it is not equivalent to the
// first return value of path.Split, since no trailing slash is ever retained.
// The provided path must be non-empty, otherwise this function will panic.
func Dir(p string) string {
	if p == "" {
		panic("treepath: empty path")
	}
	index := strings.LastIndexByte(p, '/')
	if index == -1 {
		return ""
	}
	return p[:index]
}

// Base is a fast alternative to path.Base designed specifically for
// root-relative snapshot paths. If the provided path is the root (empty
// string), Base returns the empty string.
func Base(p string) string {
	if p == "" {
		return ""
	}
	index := strings.LastIndexByte(p, '/')
	if index == -1 {
		return p
	}
	return p[index+1:]
}

// Less performs a depth-first-traversal sort comparison between two
// root-relative paths. It reports whether first sorts before second.
func Less(first, second string) bool {
	if first == second {
		return false
	} else if first == "" {
		return true
	} else if second == "" {
		return false
	}
	for {
		firstSlash := strings.IndexByte(first, '/')
		var firstComponent string
		if firstSlash == -1 {
			firstComponent = first
		} else {
			firstComponent = first[:firstSlash]
		}

		secondSlash := strings.IndexByte(second, '/')
		var secondComponent string
		if secondSlash == -1 {
			secondComponent = second
		} else {
			secondComponent = second[:secondSlash]
		}

		if firstComponent < secondComponent {
			return true
		} else if secondComponent < firstComponent {
			return false
		}

		if firstSlash == -1 {
			return true
		} else if secondSlash == -1 {
			return false
		}
		first = first[firstSlash+1:]
		second = second[secondSlash+1:]
	}
}

// Depth returns the number of components in a root-relative path.
func Depth(p string) int {
	if p == "" {
		return 0
	}
	return strings.Count(p, "/") + 1
}

// omitMarker is the literal marker inserted into a truncated component name to
// signal that part of it was dropped to satisfy the component length limit.
const omitMarker = "(omit)"

// maxComponentBytes is the assumed hard filesystem limit on the length, in
// bytes, of a single path component.
const maxComponentBytes = 255

// ShortenComponent truncates a single path component name so that
// name+suffix fits within the maxComponentBytes limit, inserting the literal
// "(omit)" marker at the truncation point. Truncation always falls on a
// code-point boundary: multi-byte UTF-8 runes are never split. If name+suffix
// already fits, it is returned unchanged (with no marker inserted).
func ShortenComponent(name, suffix string) string {
	if len(name)+len(suffix) <= maxComponentBytes {
		return name + suffix
	}

	headBudget := maxComponentBytes - len(omitMarker) - len(suffix)
	if headBudget < 0 {
		headBudget = 0
	}

	head := name
	if len(head) > headBudget {
		head = head[:headBudget]
		// Walk backward to a valid rune boundary so we never split a
		// multi-byte character.
		for len(head) > 0 {
			r, size := utf8.DecodeLastRuneInString(head)
			if r != utf8.RuneError || size != 1 {
				break
			}
			head = head[:len(head)-1]
		}
	}

	return head + omitMarker + suffix
}
