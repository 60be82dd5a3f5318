package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSettersClamp(t *testing.T) {
	old := GetSnapshot()
	defer func() {
		SetTolerance(old.Tolerance)
		SetSafetyDist(old.SafetyDist)
		SetMaxNodes(old.MaxNodes)
	}()

	SetTolerance(0)
	require.Equal(t, float32(0.001), GetTolerance())
	SetTolerance(50)
	require.Equal(t, float32(10), GetTolerance())

	SetSafetyDist(1)
	require.Equal(t, float32(0), GetSafetyDist())
	SetSafetyDist(-20)
	require.Equal(t, float32(-10), GetSafetyDist())

	SetMaxNodes(1)
	require.Equal(t, 64, GetMaxNodes())
}

func TestSnapshotDefaults(t *testing.T) {
	s := GetSnapshot()
	require.Equal(t, float32(0.1), s.Tolerance)
	require.Equal(t, float32(-0.1), s.SafetyDist)
	require.True(t, s.NormalizeFrustum)
	require.True(t, s.CullFarPlane)
	require.Equal(t, 4096, s.MaxNodes)
}
