package config

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/rawblock/privagg/internal/flpcp"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	filename := filepath.Join(dir, "config.toml")

	cfg := Config{
		RootCert:  "rootCA.pem",
		Queries:   "bitvector-queries.toml",
		InputLen:  127,
		Prime:     18446744073709547521,
		Generator: 323234694403053661,
		Proxy: []Proxy{
			{IP: "localhost", Port: "8080", Identity: "proxy1"},
		},
		Aggregator: []Aggregator{
			{Seed: 1, IP: "localhost", Port1: "8082", Port2: "8083", Identity: "aggregator1"},
		},
		Follower: []Follower{
			{Seed: 1, IP: "localhost", Port1: "8086", Port2: "8087", Identity: "follower1"},
		},
	}

	if err := Save(filename, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(filename)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(got, cfg) {
		t.Errorf("round-tripped config = %+v, want %+v", got, cfg)
	}
}

func TestSaveLoadQueriesRoundTrip(t *testing.T) {
	dir := t.TempDir()
	filename := filepath.Join(dir, "queries.toml")

	qs := flpcp.QueryState{
		R:  11,
		Xs: []uint64{1, 31, 2, 3},
		Q0: flpcp.Query{Vec: []uint64{1, 2, 3}, Scalar: 4},
		Q1: flpcp.Query{Vec: []uint64{5, 6}, Scalar: 0},
		Q2: flpcp.Query{Vec: []uint64{7}, Scalar: 8},
	}

	if err := SaveQueries(filename, qs); err != nil {
		t.Fatalf("SaveQueries: %v", err)
	}
	got, err := LoadQueries(filename)
	if err != nil {
		t.Fatalf("LoadQueries: %v", err)
	}
	if !reflect.DeepEqual(got, qs) {
		t.Errorf("round-tripped queries = %+v, want %+v", got, qs)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.toml"); err == nil {
		t.Errorf("Load on a missing file should error")
	}
}
