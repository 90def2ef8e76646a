package common

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// RandomHandle returns a phone-shaped handle in the +SIG-1000..+SIG-9999 range.
func RandomHandle() string {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return "+SIG-1000"
	}
	return fmt.Sprintf("+SIG-%d", n.Int64()+1000)
}

// WipeByteArray zeroes b in place. A nil slice is left alone.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
