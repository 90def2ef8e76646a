package common

import (
	"regexp"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomHandle_Shape(t *testing.T) {
	re := regexp.MustCompile(`^\+SIG-(\d{4})$`)
	for i := 0; i < 50; i++ {
		h := RandomHandle()
		m := re.FindStringSubmatch(h)
		require.Len(t, m, 2, "unexpected handle %q", h)
		n, err := strconv.Atoi(m[1])
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 1000)
		assert.LessOrEqual(t, n, 9999)
	}
}

func TestWipeByteArray_ZerosBuffer(t *testing.T) {
	b := []byte("secret")
	WipeByteArray(b)
	assert.Equal(t, make([]byte, 6), b)
}

func TestWipeByteArray_NilSafe(t *testing.T) {
	assert.NotPanics(t, func() { WipeByteArray(nil) })
}
