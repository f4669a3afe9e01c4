// Command client is the prover: it builds a bit-validity proof over a
// submitted input vector, splits it into the two aggregator-tier shares,
// and sends each over its own mutual-TLS connection.
package main

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"log"
	"math/big"
	"net"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/rawblock/privagg/internal/config"
	"github.com/rawblock/privagg/internal/payload"
	"github.com/rawblock/privagg/internal/transport"
)

func main() {
	app := &cli.App{
		Name:  "client",
		Usage: "submit a bit-validity-proven input under a bucket index",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config-dir", Aliases: []string{"c"}, Value: "config", Usage: "directory containing config.toml"},
			&cli.Uint64Flag{Name: "bucket", Required: true, Usage: "bucket index this input aggregates into"},
			&cli.Int64SliceFlag{Name: "bit", Required: true, Usage: "one input bit (0 or 1); repeat for each vector component"},
			&cli.StringFlag{Name: "proxy-addr", Required: true, Usage: "host:port of the client-facing proxy to submit the explicit-share Payload to"},
			&cli.StringFlag{Name: "proxy-seed-addr", Required: true, Usage: "host:port of the client-facing proxy to submit the seed-compressed PayloadSeed to"},
			&cli.StringFlag{Name: "identity", Required: true, Usage: "this client's TLS identity name under config-dir, e.g. client0 -> client0.crt/.key"},
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatalf("client: %v", err)
	}
}

func run(c *cli.Context) error {
	dir := c.String("config-dir")
	cfg, err := config.Load(dir + "/config.toml")
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	bits := c.Int64Slice("bit")
	if uint64(len(bits)) != cfg.InputLen {
		return fmt.Errorf("expected %d input bits per config.toml's input_len, got %d", cfg.InputLen, len(bits))
	}
	inputs := make([]uint64, len(bits))
	for i, b := range bits {
		if b != 0 && b != 1 {
			return fmt.Errorf("bit %d is %d, must be 0 or 1", i, b)
		}
		inputs[i] = uint64(b)
	}

	proverSeed, err := freshSeed()
	if err != nil {
		return fmt.Errorf("drawing prover seed: %w", err)
	}

	index := uint32(c.Uint64("bucket"))
	explicit, seeded := payload.GenPayloads(index, inputs, cfg.Prime, cfg.Generator, proverSeed)

	id := transport.Identity{
		CertFile: fmt.Sprintf("%s/%s.crt", dir, c.String("identity")),
		KeyFile:  fmt.Sprintf("%s/%s.key", dir, c.String("identity")),
		RootFile: fmt.Sprintf("%s/%s", dir, cfg.RootCert),
	}

	proxyAddr := c.String("proxy-addr")
	proxyHost, _, err := net.SplitHostPort(proxyAddr)
	if err != nil {
		return fmt.Errorf("invalid proxy-addr %q: %w", proxyAddr, err)
	}
	proxySeedAddr := c.String("proxy-seed-addr")
	proxySeedHost, _, err := net.SplitHostPort(proxySeedAddr)
	if err != nil {
		return fmt.Errorf("invalid proxy-seed-addr %q: %w", proxySeedAddr, err)
	}

	cfg1, err := transport.ClientTLSConfig(id, proxyHost)
	if err != nil {
		return fmt.Errorf("building tls config: %w", err)
	}
	conn1, err := transport.Dial(proxyAddr, cfg1)
	if err != nil {
		return fmt.Errorf("dialing %s: %w", proxyAddr, err)
	}
	defer conn1.Close()
	if _, err := conn1.Write(payload.EncodePayload(explicit)); err != nil {
		return fmt.Errorf("sending payload: %w", err)
	}

	cfg2, err := transport.ClientTLSConfig(id, proxySeedHost)
	if err != nil {
		return fmt.Errorf("building tls config: %w", err)
	}
	conn2, err := transport.Dial(proxySeedAddr, cfg2)
	if err != nil {
		return fmt.Errorf("dialing %s: %w", proxySeedAddr, err)
	}
	defer conn2.Close()
	if _, err := conn2.Write(payload.EncodePayloadSeed(seeded)); err != nil {
		return fmt.Errorf("sending payload seed: %w", err)
	}

	log.Printf("client: submitted uuid %s, bucket %d", explicit.UUID, index)
	return nil
}

// freshSeed draws an unpredictable 64-bit prover seed. This is the one
// genuinely random draw the client makes — every downstream derivation
// from it is deterministic.
func freshSeed() (uint64, error) {
	n, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 64))
	if err != nil {
		return 0, err
	}
	var buf [8]byte
	n.FillBytes(buf[:])
	return binary.BigEndian.Uint64(buf[:]), nil
}
