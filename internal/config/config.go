package config

import (
	"os"
	"strings"
	"time"

	"codeberg.org/mutker/wifimon/internal/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultConfigPath     = "/etc/wifimon.toml"
	DefaultEnvPrefix      = "WIFIMON"
	DefaultLogLevel       = "info"
	DefaultInterval       = 5000 * time.Millisecond
	DefaultRadioDriver    = RadioNL80211
	DefaultListenInterval = 3
	DefaultProbeTarget    = "8.8.8.8"
	DefaultProbeCount     = 4
	DefaultProbeInterval  = 1000 * time.Millisecond
	DefaultProbeTimeout   = 1000 * time.Millisecond
	DefaultProbeSize      = 64
	DefaultLEDPin         = 8
	DefaultLEDCount       = 1
	DefaultStatusDriver   = StatusStatic
	DefaultStatusStep     = 5000 * time.Millisecond
	DefaultStatusInitial  = "disconnected"
)

type Config struct {
	LogLevel string        `mapstructure:"log_level"`
	Monitor  MonitorConfig `mapstructure:"monitor"`
	Radio    RadioConfig   `mapstructure:"radio"`
	Probe    ProbeConfig   `mapstructure:"probe"`
	LED      LEDConfig     `mapstructure:"led"`
	Status   StatusConfig  `mapstructure:"status"`
	Report   ReportConfig  `mapstructure:"report"`
}

type MonitorConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

type RadioConfig struct {
	Driver    string `mapstructure:"driver"`
	Interface string `mapstructure:"interface"`
	// ListenInterval is the station's configured listen interval in
	// beacon periods, reported back by the driver's station config query.
	ListenInterval int `mapstructure:"listen_interval"`
	StaticRSSI     int `mapstructure:"static_rssi"`
	StaticStations int `mapstructure:"static_stations"`
}

type ProbeConfig struct {
	Target     string        `mapstructure:"target"`
	Count      int           `mapstructure:"count"`
	Interval   time.Duration `mapstructure:"interval"`
	Timeout    time.Duration `mapstructure:"timeout"`
	Size       int           `mapstructure:"size"`
	Privileged bool          `mapstructure:"privileged"`
}

type LEDConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Pin     int  `mapstructure:"pin"`
	Count   int  `mapstructure:"count"`
}

type StatusConfig struct {
	Driver  string        `mapstructure:"driver"`
	Step    time.Duration `mapstructure:"step"`
	Initial string        `mapstructure:"initial"`
}

type ReportConfig struct {
	// RequireThroughput keeps the throughput flag in the emit condition.
	// Nothing samples throughput, so leaving this on means no report is
	// ever emitted.
	RequireThroughput bool `mapstructure:"require_throughput"`
}

// flag name -> config key
var flagKeys = map[string]string{
	"log-level":       "log_level",
	"interval":        "monitor.interval",
	"radio":           "radio.driver",
	"interface":       "radio.interface",
	"target":          "probe.target",
	"privileged":      "probe.privileged",
	"led":             "led.enabled",
	"status":          "status.driver",
	"require-all":     "report.require_throughput",
	"listen-interval": "radio.listen_interval",
}

// RegisterFlags defines the command line flags that override the config file.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "Path to config file (default "+DefaultConfigPath+")")
	fs.String("log-level", DefaultLogLevel, "Log level: debug, info, warning, error")
	fs.Duration("interval", DefaultInterval, "Interval between monitor cycles")
	fs.String("radio", DefaultRadioDriver, "Radio driver: nl80211 or static")
	fs.String("interface", "", "Wireless interface to query (default: first station interface)")
	fs.Int("listen-interval", DefaultListenInterval, "Configured station listen interval in beacon periods")
	fs.String("target", DefaultProbeTarget, "Latency probe target host")
	fs.Bool("privileged", false, "Use raw ICMP sockets instead of unprivileged datagram sockets")
	fs.Bool("led", true, "Drive the status LED")
	fs.String("status", DefaultStatusDriver, "Status driver: static, cycle or link")
	fs.Bool("require-all", true, "Require every report field, including unsampled throughput, before emitting")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("monitor.interval", DefaultInterval)
	v.SetDefault("radio.driver", DefaultRadioDriver)
	v.SetDefault("radio.interface", "")
	v.SetDefault("radio.listen_interval", DefaultListenInterval)
	v.SetDefault("radio.static_rssi", -50)
	v.SetDefault("radio.static_stations", 1)
	v.SetDefault("probe.target", DefaultProbeTarget)
	v.SetDefault("probe.count", DefaultProbeCount)
	v.SetDefault("probe.interval", DefaultProbeInterval)
	v.SetDefault("probe.timeout", DefaultProbeTimeout)
	v.SetDefault("probe.size", DefaultProbeSize)
	v.SetDefault("probe.privileged", false)
	v.SetDefault("led.enabled", true)
	v.SetDefault("led.pin", DefaultLEDPin)
	v.SetDefault("led.count", DefaultLEDCount)
	v.SetDefault("status.driver", DefaultStatusDriver)
	v.SetDefault("status.step", DefaultStatusStep)
	v.SetDefault("status.initial", DefaultStatusInitial)
	v.SetDefault("report.require_throughput", true)
}

// Load reads configuration from defaults, the config file, environment
// and flags, in increasing order of precedence. fs may be nil.
func Load(fs *pflag.FlagSet, opts ...Option) (*Config, error) {
	errFactory := errors.New()

	o := &options{envPrefix: DefaultEnvPrefix}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
		}
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(o.envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if fs != nil {
		if f := fs.Lookup("config"); f != nil && f.Changed {
			o.configPath = f.Value.String()
		}
		for name, key := range flagKeys {
			f := fs.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, errFactory.Wrap(errors.ErrBindFlags, err)
			}
		}
	}

	if err := readConfigFile(v, o); err != nil {
		return nil, err
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func readConfigFile(v *viper.Viper, o *options) error {
	errFactory := errors.New()

	path := o.configPath
	if path == "" {
		path = os.Getenv(o.envPrefix + "_CONFIG")
	}
	if path == "" {
		if _, err := os.Stat(DefaultConfigPath); err != nil {
			return nil
		}
		path = DefaultConfigPath
	}

	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return errFactory.Wrap(errors.ErrReadConfig, err)
	}

	return nil
}

// Validate checks the loaded values and returns the first problem found
func (c *Config) Validate() error {
	errFactory := errors.New()

	if !LogLevel(strings.ToLower(c.LogLevel)).IsValid() && c.LogLevel != "warn" {
		return errFactory.WithData(errors.ErrInvalidLogLevel, c.LogLevel)
	}
	if c.Monitor.Interval <= 0 {
		return errFactory.WithData(errors.ErrInvalidInterval, c.Monitor.Interval)
	}

	switch c.Radio.Driver {
	case RadioNL80211, RadioStatic:
	default:
		return errFactory.WithData(errors.ErrInvalidConfig, "unknown radio driver "+c.Radio.Driver)
	}

	if c.Probe.Target == "" {
		return errFactory.WithData(errors.ErrInvalidConfig, "probe target is empty")
	}
	if c.Probe.Count <= 0 {
		return errFactory.WithData(errors.ErrInvalidConfig, "probe count must be positive")
	}
	if c.Probe.Interval <= 0 || c.Probe.Timeout <= 0 {
		return errFactory.WithData(errors.ErrInvalidInterval, "probe interval and timeout must be positive")
	}
	if c.Probe.Size < 8 {
		return errFactory.WithData(errors.ErrInvalidConfig, "probe size must be at least 8 bytes")
	}

	if c.LED.Pin < 0 || c.LED.Count < 1 {
		return errFactory.WithData(errors.ErrInvalidConfig, "led pin must be >= 0 and count >= 1")
	}

	switch c.Status.Driver {
	case StatusStatic, StatusCycle, StatusLink:
	default:
		return errFactory.WithData(errors.ErrInvalidConfig, "unknown status driver "+c.Status.Driver)
	}
	if c.Status.Step <= 0 {
		return errFactory.WithData(errors.ErrInvalidInterval, c.Status.Step)
	}

	return nil
}
