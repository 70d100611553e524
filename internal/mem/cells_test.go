package mem_test

import (
	"testing"

	"github.com/jhlagado/tacit/internal/mem"
	"github.com/stretchr/testify/require"
)

func Test_Cells(t *testing.T) {
	var m mem.Cells
	m.PageSize = 4

	val, err := m.Load(0)
	require.NoError(t, err)
	require.Equal(t, uint32(0), val, "unallocated cell reads as 0")
	require.Equal(t, uint(0), m.Size())

	require.NoError(t, m.Stor(0, 9))
	val, err = m.Load(0)
	require.NoError(t, err)
	require.Equal(t, uint32(9), val)

	require.NoError(t, m.Stor(0x9, 1, 2, 3, 4, 5, 6))
	buf := make([]uint32, 12)
	require.NoError(t, m.LoadInto(6, buf))
	require.Equal(t, []uint32{
		0, 0,
		0, 1, 2, 3,
		4, 5, 6, 0,
		0, 0,
	}, buf, "expected a page hole between the two stores")
}

func Test_Cells_Limit(t *testing.T) {
	var m mem.Cells
	m.PageSize = 4
	m.Limit = 8

	require.NoError(t, m.Stor(4, 1))
	err := m.Stor(9, 1)
	require.Error(t, err)
	var lim mem.LimitError
	require.ErrorAs(t, err, &lim)
	require.Equal(t, "stor", lim.Op)
}
