// Command follower runs one station of the follower tier: the decision
// protocol's odd-indexed stations, which receive seed-compressed proof
// shares, re-derive them locally, and call their paired aggregator-tier
// station's CheckProof RPC to learn and apply the joint decision.
package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/rawblock/privagg/internal/aggregator"
	"github.com/rawblock/privagg/internal/api"
	"github.com/rawblock/privagg/internal/circuit"
	"github.com/rawblock/privagg/internal/config"
	"github.com/rawblock/privagg/internal/fingerprint"
	"github.com/rawblock/privagg/internal/flpcp"
	"github.com/rawblock/privagg/internal/payload"
	"github.com/rawblock/privagg/internal/store"
	"github.com/rawblock/privagg/internal/transport"
)

func main() {
	app := &cli.App{
		Name:  "follower",
		Usage: "run one follower-tier station of the two-party decision protocol",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "index", Aliases: []string{"i"}, Value: 0, Usage: "this station's index into config.toml's [[follower]] table"},
			&cli.IntFlag{Name: "peer-index", Value: 0, Usage: "the paired aggregator station's index"},
			&cli.StringFlag{Name: "config-dir", Aliases: []string{"c"}, Value: "config", Usage: "directory containing config.toml and the queries file"},
			&cli.StringFlag{Name: "admin-addr", Value: "", Usage: "optional address to serve the gin admin/status API on, e.g. :8081"},
			&cli.StringFlag{Name: "database-url", EnvVars: []string{"DATABASE_URL"}, Usage: "optional Postgres connection string for accumulator persistence"},
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatalf("follower: %v", err)
	}
}

func run(c *cli.Context) error {
	index := c.Int("index")
	peerIndex := c.Int("peer-index")
	dir := c.String("config-dir")

	cfg, err := config.Load(dir + "/config.toml")
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if index < 0 || index >= len(cfg.Follower) {
		return fmt.Errorf("index %d out of range for %d configured followers", index, len(cfg.Follower))
	}
	if peerIndex < 0 || peerIndex >= len(cfg.Aggregator) {
		return fmt.Errorf("peer-index %d out of range for %d configured aggregators", peerIndex, len(cfg.Aggregator))
	}
	station := cfg.Follower[index]
	peer := cfg.Aggregator[peerIndex]

	ctxt := flpcp.Context{
		Generator: cfg.Generator,
		Circuit:   circuit.BitvectorTest(cfg.Prime, int(cfg.InputLen)),
	}
	verifier := &flpcp.BitvectorVerifier{Ctxt: ctxt, Seed: station.Seed}
	fp := fingerprint.Compute(cfg.Prime, cfg.Generator, int(cfg.InputLen), station.Seed)
	log.Printf("follower[%d]: field fingerprint %s", index, fp.String())

	acc := aggregator.NewAccumulator(cfg.Prime)
	st := aggregator.NewStation(verifier, acc)

	var dbStore *store.PostgresStore
	if url := c.String("database-url"); url != "" {
		dbStore, err = store.Connect(url)
		if err != nil {
			log.Printf("follower[%d]: warning: failed to connect to Postgres, continuing without persistence: %v", index, err)
		} else {
			defer dbStore.Close()
			if err := dbStore.InitSchema(); err != nil {
				log.Printf("follower[%d]: initializing schema: %v", index, err)
			}
			if snapshot, err := dbStore.LoadBucketSnapshots(context.Background()); err != nil {
				log.Printf("follower[%d]: loading bucket snapshots: %v", index, err)
			} else {
				acc.Restore(snapshot)
				log.Printf("follower[%d]: restored %d bucket(s) from Postgres", index, len(snapshot))
			}
		}
	}

	wsHub := api.NewHub()
	go wsHub.Run()
	st.OnDecision = func(id uuid.UUID, bucketIndex uint32, accepted bool) {
		api.BroadcastDecision(wsHub, id, bucketIndex, accepted)
		if dbStore == nil || !accepted {
			return
		}
		ctx := context.Background()
		if err := dbStore.RecordAcceptedUUID(ctx, id, bucketIndex); err != nil {
			log.Printf("follower[%d]: recording accepted uuid: %v", index, err)
		}
		if values, ok := acc.Snapshot(bucketIndex); ok {
			if err := dbStore.SaveBucketSnapshot(ctx, bucketIndex, values); err != nil {
				log.Printf("follower[%d]: saving bucket snapshot: %v", index, err)
			}
		}
	}

	if addr := c.String("admin-addr"); addr != "" {
		router := api.SetupRouter(st, dbStore, wsHub, fp)
		go func() {
			if err := router.Run(addr); err != nil {
				log.Printf("follower[%d]: admin API exited: %v", index, err)
			}
		}()
	}

	id := transport.Identity{
		CertFile: fmt.Sprintf("%s/%s.crt", dir, station.Identity),
		KeyFile:  fmt.Sprintf("%s/%s.key", dir, station.Identity),
		RootFile: fmt.Sprintf("%s/%s", dir, cfg.RootCert),
	}
	serverTLSCfg, err := transport.ServerTLSConfig(id)
	if err != nil {
		return fmt.Errorf("building server tls config: %w", err)
	}
	clientTLSCfg, err := transport.ClientTLSConfig(id, peer.IP)
	if err != nil {
		return fmt.Errorf("building client tls config: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	conn, err := transport.Dial(fmt.Sprintf("%s:%s", peer.IP, peer.Port2), clientTLSCfg)
	if err != nil {
		return fmt.Errorf("dialing paired aggregator's rpc listener: %w", err)
	}
	client := transport.NewClient(conn)
	defer client.Close()

	payloadAddr := fmt.Sprintf("%s:%s", station.IP, station.Port1)
	payloadListener, err := transport.Listen(payloadAddr, serverTLSCfg)
	if err != nil {
		return err
	}
	log.Printf("follower[%d]: listening for payload seeds on %s", index, payloadAddr)

	go serveSender(ctx, payloadListener, st, client)

	<-ctx.Done()
	return nil
}

// serveSender accepts raw PayloadSeed connections, re-derives each share,
// and drives the send half of the decision protocol against client.
func serveSender(ctx context.Context, l net.Listener, st *aggregator.Station, client aggregator.CheckProofClient) {
	for {
		conn, err := l.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("follower: accept: %v", err)
			continue
		}
		go func() {
			defer conn.Close()
			buf := make([]byte, 1<<20)
			n, err := conn.Read(buf)
			if err != nil {
				return
			}
			ps, err := payload.DecodePayloadSeed(buf[:n])
			if err != nil {
				log.Printf("follower: malformed payload seed: %v", err)
				return
			}
			share := ps.ProofSeed.GetShare()
			accepted, err := st.Send(ctx, client, ps.UUID, ps.Index, share.X, &share)
			if err != nil {
				log.Printf("follower: send(%s): %v", ps.UUID, err)
				return
			}
			log.Printf("follower: uuid %s index %d accepted=%v", ps.UUID, ps.Index, accepted)
		}()
	}
}
