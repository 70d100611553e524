package mem_test

import (
	"testing"

	"github.com/jhlagado/tacit/internal/mem"
	"github.com/stretchr/testify/require"
)

func Test_Bytes(t *testing.T) {
	var m mem.Bytes
	m.PageSize = 4

	require.NoError(t, m.Stor(0, 0x01))
	b, err := m.Load8(0)
	require.NoError(t, err)
	require.Equal(t, byte(0x01), b)

	require.NoError(t, m.Stor16(2, 0xBEEF))
	u, err := m.Load16(2)
	require.NoError(t, err)
	require.Equal(t, uint16(0xBEEF), u)

	require.NoError(t, m.StorF32(8, 0x7FC00001))
	f, err := m.LoadF32(8)
	require.NoError(t, err)
	require.Equal(t, uint32(0x7FC00001), f)
}
