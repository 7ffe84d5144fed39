// Package config loads the YAML configuration file for cmd/go61850report,
// following the defaulting-then-overlay pattern: populate a Config with
// defaults, then let yaml.Unmarshal overwrite only the fields the file
// sets. Using a Config is optional — every constructor elsewhere in this
// module also takes functional options, so a caller can wire a Session
// up without ever touching YAML.
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration document.
type Config struct {
	Host             string        `yaml:"host"`
	Port             int           `yaml:"port"`
	Timeout          time.Duration `yaml:"timeout"`
	HeartbeatTimeout time.Duration `yaml:"heartbeat_timeout"`
	InvokeIDBase     uint16        `yaml:"invoke_id_base"`
	RCB              RCBConfig     `yaml:"rcb"`
	Diagnostics      Diagnostics   `yaml:"diagnostics"`
}

// RCBConfig holds the RCB activation settings read from the config
// file. Only IntgPdMillis reaches the activation driver (the subscribe
// command passes it to Session.EnableReporting); ResvTms, PurgeBuf and
// ProbeFirst are parsed but not used, so activation always writes
// mms.DefaultResvTms and mms.DefaultPurgeBuf and always probes first.
type RCBConfig struct {
	ResvTms      uint64 `yaml:"resv_tms"`
	IntgPdMillis uint64 `yaml:"intg_pd_ms"`
	PurgeBuf     bool   `yaml:"purge_buf"`
	ProbeFirst   bool   `yaml:"probe_first"`
}

// Diagnostics configures the opt-in metrics/health HTTP server.
type Diagnostics struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// Load reads and parses the YAML file at path, starting from Defaults()
// and letting the file's contents overlay it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Defaults returns a Config populated with the values a captured
// working session uses: 5s connect timeout, 60s heartbeat, invoke-ID
// base 0x012C, and the RCB activation defaults from mms.Default*.
func Defaults() *Config {
	return &Config{
		Port:             102,
		Timeout:          5 * time.Second,
		HeartbeatTimeout: 60 * time.Second,
		InvokeIDBase:     0x012C,
		RCB: RCBConfig{
			ResvTms:      5,
			IntgPdMillis: 2000,
			PurgeBuf:     true,
			ProbeFirst:   true,
		},
		Diagnostics: Diagnostics{
			Enabled: false,
			Addr:    ":9100",
		},
	}
}
