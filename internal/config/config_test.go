package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.test.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFrom_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "release", cfg.Mode)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 54*time.Second, cfg.PingPeriod)
	assert.Equal(t, 60*time.Second, cfg.PongWait)
	assert.Equal(t, "_", cfg.PairSeparator)
	assert.Equal(t, "admins", cfg.AdminRoom)
	assert.Equal(t, "drop", cfg.SlowConsumer)
	assert.Equal(t, "any", cfg.Call.HangupNotify)
	assert.False(t, cfg.Call.Strict)
	assert.Zero(t, cfg.Call.RingTimeout)
	assert.Equal(t, 20, cfg.JoinRate.Limit)
	require.Len(t, cfg.ICEServers, 1)
	assert.Equal(t, []string{"stun:stun.l.google.com:19302"}, cfg.ICEServers[0].URLs)
}

func TestLoadFrom_FileAndEnv(t *testing.T) {
	path := writeConfig(t, `
mode: debug
port: 9000
pair_separator: ":"
call:
  strict: true
  ring_timeout: 30s
  hangup_notify: peer
ice_servers:
  - urls: ["turn:turn.example.org:3478"]
    username: alice
    credential: secret
`)
	t.Setenv("CARELINE_PORT", "9100")
	t.Setenv("CARELINE_SLOW_CONSUMER", "kick")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Mode)
	assert.Equal(t, 9100, cfg.Port)
	assert.Equal(t, "kick", cfg.SlowConsumer)
	assert.Equal(t, ":", cfg.PairSeparator)
	assert.True(t, cfg.Call.Strict)
	assert.Equal(t, 30*time.Second, cfg.Call.RingTimeout)
	assert.Equal(t, "peer", cfg.Call.HangupNotify)

	servers := cfg.WebRTCICEServers()
	require.Len(t, servers, 1)
	assert.Equal(t, []string{"turn:turn.example.org:3478"}, servers[0].URLs)
	assert.Equal(t, "alice", servers[0].Username)
	assert.Equal(t, "secret", servers[0].Credential)
}

func TestLoadFrom_Invalid(t *testing.T) {
	path := writeConfig(t, `
slow_consumer: block
`)
	_, err := LoadFrom(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "slow_consumer")
}

func TestValidate_CollectsEveryProblem(t *testing.T) {
	cfg := Config{
		Port:         70000,
		PingPeriod:   time.Minute,
		PongWait:     time.Second,
		SlowConsumer: "drop",
		Call:         Call{HangupNotify: "everyone", RingTimeout: -time.Second},
	}

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"port", "pong_wait", "send_buffer", "pair_separator", "hangup_notify", "ring_timeout"} {
		assert.Contains(t, err.Error(), want)
	}
	assert.NotContains(t, err.Error(), "slow_consumer")
}

func TestLoadFrom_MalformedFileIsAnError(t *testing.T) {
	path := writeConfig(t, "port: [8080\nmode: debug\n")

	_, err := LoadFrom(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config")
}
