package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("HELP_API_KEY", "")
	t.Setenv("API_KEY", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "file", cfg.Store.Driver)
	assert.Equal(t, 5, cfg.Auth.ChallengeDigits)
	assert.Empty(t, cfg.Help.APIKey)
	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
}

func TestLoadHelpKeyFallsBackToAPIKey(t *testing.T) {
	t.Setenv("HELP_API_KEY", "")
	t.Setenv("API_KEY", "from-api-key")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from-api-key", cfg.Help.APIKey)
}

func TestLoadRejectsBadRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "zero")

	_, err := Load()
	assert.Error(t, err)
}

func TestTimeouts(t *testing.T) {
	assert.Equal(t, time.Duration(0), AppConfig{}.RequestTimeout())
	assert.Equal(t, 3*time.Second, AppConfig{RequestTimeoutSeconds: 3}.RequestTimeout())
	assert.Equal(t, 20*time.Second, HelpConfig{}.Timeout())
}

func TestSessionIdle(t *testing.T) {
	assert.Equal(t, 30*time.Minute, AuthConfig{}.SessionIdle())
	assert.Equal(t, 5*time.Minute, AuthConfig{SessionIdleMinutes: 5}.SessionIdle())
}
