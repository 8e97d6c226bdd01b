package app

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	_ "github.com/koinonia-app/koinonia/testing"
)

func TestGuardEnablesTestMode(t *testing.T) {
	// The blank-imported testing package sets the flag before any
	// test code runs.
	assert.Equal(t, "1", os.Getenv(testModeEnv))
	RefreshTestMode()
	assert.True(t, InTestMode())
}

func TestRefreshTestMode(t *testing.T) {
	t.Cleanup(RefreshTestMode)

	t.Setenv(testModeEnv, "0")
	RefreshTestMode()
	assert.False(t, InTestMode())

	t.Setenv(testModeEnv, "1")
	RefreshTestMode()
	assert.True(t, InTestMode())
}
