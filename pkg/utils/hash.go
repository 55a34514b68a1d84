// Package utils holds small helpers shared across packages.
package utils

import (
	"crypto/md5"
	"fmt"
)

// HashString returns the hex md5 digest of input. Used to derive fixed-length
// cache keys, not for anything security-sensitive.
func HashString(input string) string {
	hash := md5.Sum([]byte(input))
	return fmt.Sprintf("%x", hash)
}
