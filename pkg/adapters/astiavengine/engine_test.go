//go:build astiav

package astiavengine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/user/h264grab/pkg/ports"
)

func TestLifecycle(t *testing.T) {
	e := New()
	require.NoError(t, e.Create())
	defer e.Destroy()

	require.NoError(t, e.Initialize(ports.EngineConfig{}))
	require.NoError(t, e.SetTraceLevel(ports.TraceQuiet))

	res, err := e.Decode([]byte{0, 0, 0, 1, 0x09, 0xf0})
	require.NoError(t, err)
	require.False(t, res.BufferReady, "access unit delimiter should not yield a picture")

	require.NoError(t, e.Uninitialize())
}
