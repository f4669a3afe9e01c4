// Package config loads the deployment's TOML configuration file, mirroring
// the original's config.rs one-for-one: the shared field parameters, and
// one endpoint block per proxy/aggregator/follower role.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/rawblock/privagg/internal/flpcp"
)

// Config is the top-level deployment descriptor every cmd/ entry point
// loads at startup.
type Config struct {
	RootCert  string      `toml:"root_cert"`
	Queries   string      `toml:"queries"`
	InputLen  uint64      `toml:"input_len"`
	Prime     uint64      `toml:"prime"`
	Generator uint64      `toml:"generator"`
	Proxy     []Proxy     `toml:"proxy"`
	Aggregator []Aggregator `toml:"aggregator"`
	Follower  []Follower  `toml:"follower"`
}

// Proxy describes one client-facing entry point's network and TLS identity.
type Proxy struct {
	IP       string `toml:"ip"`
	Port     string `toml:"port"`
	Pubkey   string `toml:"pubkey"`
	Privkey  string `toml:"privkey"`
	Identity string `toml:"identity"`
	Password string `toml:"password"`
}

// Aggregator describes one decider-tier station: its own deterministic
// verifier seed plus two listening ports (one per connecting role).
type Aggregator struct {
	Seed     uint64 `toml:"seed"`
	IP       string `toml:"ip"`
	Port1    string `toml:"port1"`
	Port2    string `toml:"port2"`
	Pubkey   string `toml:"pubkey"`
	Privkey  string `toml:"privkey"`
	Identity string `toml:"identity"`
	Password string `toml:"password"`
}

// Follower describes one follower-tier station, same shape as Aggregator —
// the role is carried by which section of the file a block appears in, not
// by a discriminator field.
type Follower struct {
	Seed     uint64 `toml:"seed"`
	IP       string `toml:"ip"`
	Port1    string `toml:"port1"`
	Port2    string `toml:"port2"`
	Pubkey   string `toml:"pubkey"`
	Privkey  string `toml:"privkey"`
	Identity string `toml:"identity"`
	Password string `toml:"password"`
}

// Load reads and parses a TOML config file.
func Load(filename string) (Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return Config{}, fmt.Errorf("config: reading %s: %w", filename, err)
	}
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parsing %s: %w", filename, err)
	}
	return cfg, nil
}

// Save writes cfg back out as TOML, used by cmd/genconfig to produce a
// starter file.
func Save(filename string, cfg Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: marshaling: %w", err)
	}
	if err := os.WriteFile(filename, data, 0o600); err != nil {
		return fmt.Errorf("config: writing %s: %w", filename, err)
	}
	return nil
}

// queriesFile is the on-disk shape of a precomputed QueryState — a small
// indirection so the TOML tags live here rather than on flpcp.QueryState
// itself, which has no business knowing about file formats.
type queriesFile struct {
	R  uint64        `toml:"r"`
	Xs []uint64      `toml:"xs"`
	Q0 queryFile     `toml:"q0"`
	Q1 queryFile     `toml:"q1"`
	Q2 queryFile     `toml:"q2"`
}

type queryFile struct {
	Vec    []uint64 `toml:"vec"`
	Scalar uint64   `toml:"scalar"`
}

// LoadQueries reads a precomputed QueryState written by cmd/precompute.
// cmd/aggregator and cmd/follower do not call it; their stations derive the
// QueryState per request.
func LoadQueries(filename string) (flpcp.QueryState, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return flpcp.QueryState{}, fmt.Errorf("config: reading queries %s: %w", filename, err)
	}
	var qf queriesFile
	if err := toml.Unmarshal(data, &qf); err != nil {
		return flpcp.QueryState{}, fmt.Errorf("config: parsing queries %s: %w", filename, err)
	}
	return flpcp.QueryState{
		R:  qf.R,
		Xs: qf.Xs,
		Q0: flpcp.Query{Vec: qf.Q0.Vec, Scalar: qf.Q0.Scalar},
		Q1: flpcp.Query{Vec: qf.Q1.Vec, Scalar: qf.Q1.Scalar},
		Q2: flpcp.Query{Vec: qf.Q2.Vec, Scalar: qf.Q2.Scalar},
	}, nil
}

// SaveQueries writes a precomputed QueryState out as TOML.
func SaveQueries(filename string, qs flpcp.QueryState) error {
	qf := queriesFile{
		R:  qs.R,
		Xs: qs.Xs,
		Q0: queryFile{Vec: qs.Q0.Vec, Scalar: qs.Q0.Scalar},
		Q1: queryFile{Vec: qs.Q1.Vec, Scalar: qs.Q1.Scalar},
		Q2: queryFile{Vec: qs.Q2.Vec, Scalar: qs.Q2.Scalar},
	}
	data, err := toml.Marshal(qf)
	if err != nil {
		return fmt.Errorf("config: marshaling queries: %w", err)
	}
	if err := os.WriteFile(filename, data, 0o600); err != nil {
		return fmt.Errorf("config: writing queries %s: %w", filename, err)
	}
	return nil
}
