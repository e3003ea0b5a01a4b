package collection

import (
	"fmt"
	"strconv"
	"strings"
)

// Separator splits a collection name from its item keys in the store.
const Separator = "!!"

// Item keys are zero padded to the width of the largest uint64, so the
// store's byte order is the numeric order.
const keyWidth = 20

func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidName)
	}
	if strings.Contains(name, Separator) {
		return fmt.Errorf("%w: '%s' contains the reserved sequence '%s'", ErrInvalidName, name, Separator)
	}
	return nil
}

func formatKey(index uint64) []byte {
	s := strconv.FormatUint(index, 10)
	return []byte(strings.Repeat("0", keyWidth-len(s)) + s)
}

// parseKey accepts padded and unpadded decimal keys. Anything else under the
// collection prefix belongs to a collection whose name extends this one
// (e.g. "a!" seen from "a") and is rejected.
func parseKey(key []byte) (uint64, bool) {
	if len(key) == 0 || len(key) > keyWidth {
		return 0, false
	}
	for _, b := range key {
		if b < '0' || b > '9' {
			return 0, false
		}
	}
	index, err := strconv.ParseUint(string(key), 10, 64)
	if err != nil {
		return 0, false
	}
	return index, true
}
