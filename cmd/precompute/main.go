// Command precompute derives the deterministic verifier QueryState once,
// ahead of time, and writes it to the queries file config.toml references
// (mirrors the original's precompute.rs). cmd/aggregator and cmd/follower do
// not read that file: each station derives its QueryState per request.
package main

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/rawblock/privagg/internal/circuit"
	"github.com/rawblock/privagg/internal/config"
	"github.com/rawblock/privagg/internal/flpcp"
)

func main() {
	app := &cli.App{
		Name:  "precompute",
		Usage: "derive and save the shared verifier QueryState for a given field and circuit size",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config-dir", Aliases: []string{"c"}, Value: "config", Usage: "directory containing config.toml; the queries file is written alongside it"},
			&cli.Uint64Flag{Name: "seed", Value: 1, Usage: "verifier seed the QueryState is derived under"},
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatalf("precompute: %v", err)
	}
}

func run(c *cli.Context) error {
	dir := c.String("config-dir")
	cfg, err := config.Load(dir + "/config.toml")
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	circ := circuit.BitvectorTest(cfg.Prime, int(cfg.InputLen))
	ctxt := flpcp.Context{Generator: cfg.Generator, Circuit: circ}

	// The proof used here only shapes the QueryState (its dimensions and
	// challenge point derive from the circuit and seed, not from these
	// input values) — an all-ones vector is the same placeholder the
	// original tool seeds it with.
	inputs := make([]uint64, cfg.InputLen)
	for i := range inputs {
		inputs[i] = 1
	}
	proverSeed, err := randomSeed()
	if err != nil {
		return fmt.Errorf("drawing prover seed: %w", err)
	}
	prover := flpcp.Prover{Ctxt: ctxt, Inputs: inputs, Seed: proverSeed}
	pi := prover.GenProof()

	verifier := &flpcp.BitvectorVerifier{Ctxt: ctxt, Seed: c.Uint64("seed")}
	qs := verifier.GenQueries(&pi)

	filename := dir + "/" + cfg.Queries
	if err := config.SaveQueries(filename, qs); err != nil {
		return err
	}
	log.Printf("precompute: wrote %s (input_len=%d, prime=%d, generator=%d, seed=%d)",
		filename, cfg.InputLen, cfg.Prime, cfg.Generator, c.Uint64("seed"))
	return nil
}

func randomSeed() (uint64, error) {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(buf[:]), nil
}
