package rng

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewSystem(t *testing.T) {
	system, err := NewSystem(NewAuditLogger())
	require.NoError(t, err)
	require.NotNil(t, system)
}

func TestRandomUint64_NoImmediateRepeat(t *testing.T) {
	system, err := NewSystem(NewAuditLogger())
	require.NoError(t, err)

	seen := make(map[uint64]bool)
	for i := 0; i < 1000; i++ {
		n := system.RandomUint64()
		require.False(t, seen[n], "unexpected collision in 1000 draws")
		seen[n] = true
	}
}

func TestRandomInt_StaysInRange(t *testing.T) {
	system, err := NewSystem(NewAuditLogger())
	require.NoError(t, err)

	for i := 0; i < 5000; i++ {
		n := system.RandomInt(37)
		require.GreaterOrEqual(t, n, 0)
		require.Less(t, n, 37)
	}
}

func TestRandomBytes_DeterministicWithSeed(t *testing.T) {
	seed := []byte("deterministic-test-seed-32bytes")
	a, err := NewSystemWithSeed(seed, NewAuditLogger())
	require.NoError(t, err)
	b, err := NewSystemWithSeed(seed, NewAuditLogger())
	require.NoError(t, err)

	bytesA, err := a.RandomBytes(32)
	require.NoError(t, err)
	bytesB, err := b.RandomBytes(32)
	require.NoError(t, err)
	require.Equal(t, bytesA, bytesB)
}
