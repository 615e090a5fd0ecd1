package language

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDetect(t *testing.T) {
	d := NewDetector()

	require.Equal(t, "en", d.Detect("The quick brown fox jumps over the lazy dog near the river bank."))
	require.Equal(t, "es", d.Detect("El rápido zorro marrón salta sobre el perro perezoso junto al río."))
	require.Equal(t, "", d.Detect("   \n\t"))
}

func TestIsSupported(t *testing.T) {
	require.True(t, IsSupported("en"))
	require.True(t, IsSupported("es"))
	require.False(t, IsSupported("fr"))
	require.False(t, IsSupported(""))
}
