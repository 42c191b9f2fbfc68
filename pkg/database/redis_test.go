package database

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := InitRedis(mr.Addr(), "", 0)
	require.NoError(t, err)
	assert.Same(t, client, RDB)
	CloseRedis()
	RDB = nil
}

func TestInitRedis_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := InitRedis(addr, "", 0)
	assert.Error(t, err)
}
