// Package memory contains the in-process implementations of repository interfaces.
package memory

import "strconv"

// maxNumericID returns the highest id that parses as an unsigned decimal, or 0.
func maxNumericID(ids []string) uint64 {
	var hi uint64
	for _, id := range ids {
		if v, err := strconv.ParseUint(id, 10, 64); err == nil && v > hi {
			hi = v
		}
	}
	return hi
}
