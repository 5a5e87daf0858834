package platform

import (
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestSingleInstanceActivatesRunningInstance(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	name := "practicetimer-test-" + t.Name()
	var activations atomic.Int32
	guard, err := AcquireSingleInstance(name, func() { activations.Add(1) })
	require.NoError(t, err)

	second, err := AcquireSingleInstance(name, nil)
	assert.ErrorIs(t, err, ErrAlreadyRunning)
	assert.Nil(t, second)
	require.Eventually(t, func() bool { return activations.Load() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, guard.Release())
	require.NoError(t, guard.Release())

	again, err := AcquireSingleInstance(name, nil)
	require.NoError(t, err)
	assert.Equal(t, guard.Address(), again.Address())
	require.NoError(t, again.Release())
}

func TestPortFromNameIsStableAndInRange(t *testing.T) {
	port := portFromName("Practice Timer")
	assert.Equal(t, port, portFromName("Practice Timer"))
	assert.GreaterOrEqual(t, port, 20000)
	assert.LessOrEqual(t, port, 39999)
}

func TestAppConfigDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("AppData", t.TempDir())

	configDir, err := ConfigDir()
	require.NoError(t, err)

	appDir, err := AppConfigDir("practicetimer")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(configDir, "practicetimer"), appDir)
}

func TestReleaseNilGuard(t *testing.T) {
	var guard *InstanceGuard
	assert.NoError(t, guard.Release())
	assert.Empty(t, guard.Address())
}
