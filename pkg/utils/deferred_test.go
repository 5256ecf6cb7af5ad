package utils

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeferredWriter_FlushPreservesOrder(t *testing.T) {
	d := &DeferredWriter{}

	_, err := d.Write([]byte("first\n"))
	require.NoError(t, err)
	_, err = d.Write([]byte("second\n"))
	require.NoError(t, err)
	assert.Equal(t, 2, d.Len())

	var out bytes.Buffer
	require.NoError(t, d.Flush(&out))

	assert.Equal(t, "first\nsecond\n", out.String())
	assert.Equal(t, 0, d.Len())
}

func TestDeferredWriter_WriteCopiesInput(t *testing.T) {
	d := &DeferredWriter{}

	buf := []byte("original\n")
	_, _ = d.Write(buf)
	copy(buf, "mutated!")

	var out bytes.Buffer
	require.NoError(t, d.Flush(&out))
	assert.Equal(t, "original\n", out.String())
}
