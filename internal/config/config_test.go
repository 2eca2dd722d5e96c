package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"codeberg.org/mutker/wifimon/internal/config"
	"codeberg.org/mutker/wifimon/internal/errors"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "wifimon.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()

	fs := pflag.NewFlagSet("wifimon", pflag.ContinueOnError)
	config.RegisterFlags(fs)
	require.NoError(t, fs.Parse(args))

	return fs
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
log_level = "debug"

[monitor]
interval = "2s"

[radio]
driver = "static"
interface = "wlan1"
listen_interval = 0
static_rssi = -61

[probe]
target = "1.1.1.1"
count = 6
interval = "500ms"

[led]
enabled = false
pin = 48

[status]
driver = "cycle"
step = "3s"

[report]
require_throughput = false
`)

	cfg, err := config.Load(nil, config.WithConfigFile(path))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 2*time.Second, cfg.Monitor.Interval)
	assert.Equal(t, config.RadioStatic, cfg.Radio.Driver)
	assert.Equal(t, "wlan1", cfg.Radio.Interface)
	assert.Equal(t, 0, cfg.Radio.ListenInterval)
	assert.Equal(t, -61, cfg.Radio.StaticRSSI)
	assert.Equal(t, "1.1.1.1", cfg.Probe.Target)
	assert.Equal(t, 6, cfg.Probe.Count)
	assert.Equal(t, 500*time.Millisecond, cfg.Probe.Interval)
	assert.Equal(t, config.DefaultProbeTimeout, cfg.Probe.Timeout)
	assert.False(t, cfg.LED.Enabled)
	assert.Equal(t, 48, cfg.LED.Pin)
	assert.Equal(t, config.StatusCycle, cfg.Status.Driver)
	assert.Equal(t, 3*time.Second, cfg.Status.Step)
	assert.False(t, cfg.Report.RequireThroughput)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("WIFIMON_CONFIG", "")

	cfg, err := config.Load(newFlags(t))
	require.NoError(t, err, "Failed to load config")

	assert.Equal(t, config.DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, 5*time.Second, cfg.Monitor.Interval)
	assert.Equal(t, config.RadioNL80211, cfg.Radio.Driver)
	assert.Equal(t, "8.8.8.8", cfg.Probe.Target)
	assert.Equal(t, 4, cfg.Probe.Count)
	assert.Equal(t, time.Second, cfg.Probe.Interval)
	assert.Equal(t, 64, cfg.Probe.Size)
	assert.False(t, cfg.Probe.Privileged)
	assert.True(t, cfg.LED.Enabled)
	assert.Equal(t, 8, cfg.LED.Pin)
	assert.Equal(t, 1, cfg.LED.Count)
	assert.Equal(t, config.StatusStatic, cfg.Status.Driver)
	assert.Equal(t, "disconnected", cfg.Status.Initial)
	assert.True(t, cfg.Report.RequireThroughput)
}

func TestFlagsOverrideFile(t *testing.T) {
	path := writeConfig(t, `
log_level = "error"

[monitor]
interval = "2s"
`)

	fs := newFlags(t, "--config", path, "--log-level", "debug", "--target", "9.9.9.9", "--require-all=false")
	cfg, err := config.Load(fs)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 2*time.Second, cfg.Monitor.Interval, "unset flag must not override the file")
	assert.Equal(t, "9.9.9.9", cfg.Probe.Target)
	assert.False(t, cfg.Report.RequireThroughput)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("WIFIMON_CONFIG", "")
	t.Setenv("WIFIMON_MONITOR_INTERVAL", "10s")
	t.Setenv("WIFIMON_PROBE_TARGET", "dns.google")

	cfg, err := config.Load(nil)
	require.NoError(t, err)

	assert.Equal(t, 10*time.Second, cfg.Monitor.Interval)
	assert.Equal(t, "dns.google", cfg.Probe.Target)
}

func TestLoadConfigFileInvalidFormat(t *testing.T) {
	path := writeConfig(t, `
This is not a valid TOML file
`)

	_, err := config.Load(nil, config.WithConfigFile(path))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to read config file")
	assert.True(t, errors.HasCode(err, errors.ErrReadConfig))
}

func TestMissingExplicitConfigFile(t *testing.T) {
	_, err := config.Load(nil, config.WithConfigFile(filepath.Join(t.TempDir(), "absent.toml")))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrReadConfig))
}

func TestInvalidLogLevel(t *testing.T) {
	path := writeConfig(t, `
log_level = "invalid"
`)

	_, err := config.Load(nil, config.WithConfigFile(path))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrInvalidLogLevel))
}

func TestValidate(t *testing.T) {
	t.Setenv("WIFIMON_CONFIG", "")

	base, err := config.Load(nil)
	require.NoError(t, err)

	cases := []struct {
		name   string
		mutate func(*config.Config)
		code   errors.ErrorCode
	}{
		{"zero interval", func(c *config.Config) { c.Monitor.Interval = 0 }, errors.ErrInvalidInterval},
		{"unknown radio", func(c *config.Config) { c.Radio.Driver = "esp" }, errors.ErrInvalidConfig},
		{"empty target", func(c *config.Config) { c.Probe.Target = "" }, errors.ErrInvalidConfig},
		{"zero count", func(c *config.Config) { c.Probe.Count = 0 }, errors.ErrInvalidConfig},
		{"zero timeout", func(c *config.Config) { c.Probe.Timeout = 0 }, errors.ErrInvalidInterval},
		{"tiny payload", func(c *config.Config) { c.Probe.Size = 4 }, errors.ErrInvalidConfig},
		{"no leds", func(c *config.Config) { c.LED.Count = 0 }, errors.ErrInvalidConfig},
		{"unknown status", func(c *config.Config) { c.Status.Driver = "mqtt" }, errors.ErrInvalidConfig},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := *base
			tc.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, tc.code))
		})
	}
}
