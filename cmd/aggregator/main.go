// Command aggregator runs one station of the aggregator tier: the decision
// protocol's even-indexed stations, which receive full Proof shares
// directly and expose the CheckProof RPC their paired follower-tier
// sender calls.
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
		Name:  "aggregator",
		Usage: "run one aggregator-tier station of the two-party decision protocol",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "index", Aliases: []string{"i"}, Value: 0, Usage: "this station's index into config.toml's [[aggregator]] table"},
			&cli.StringFlag{Name: "config-dir", Aliases: []string{"c"}, Value: "config", Usage: "directory containing config.toml and the queries file"},
			&cli.StringFlag{Name: "admin-addr", Value: "", Usage: "optional address to serve the gin admin/status API on, e.g. :8080"},
			&cli.StringFlag{Name: "database-url", EnvVars: []string{"DATABASE_URL"}, Usage: "optional Postgres connection string for accumulator persistence"},
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatalf("aggregator: %v", err)
	}
}

func run(c *cli.Context) error {
	index := c.Int("index")
	dir := c.String("config-dir")

	cfg, err := config.Load(dir + "/config.toml")
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if index < 0 || index >= len(cfg.Aggregator) {
		return fmt.Errorf("index %d out of range for %d configured aggregators", index, len(cfg.Aggregator))
	}
	station := cfg.Aggregator[index]

	ctxt := flpcp.Context{
		Generator: cfg.Generator,
		Circuit:   circuit.BitvectorTest(cfg.Prime, int(cfg.InputLen)),
	}
	verifier := &flpcp.BitvectorVerifier{Ctxt: ctxt, Seed: station.Seed}
	fp := fingerprint.Compute(cfg.Prime, cfg.Generator, int(cfg.InputLen), station.Seed)
	log.Printf("aggregator[%d]: field fingerprint %s", index, fp.String())

	acc := aggregator.NewAccumulator(cfg.Prime)
	st := aggregator.NewStation(verifier, acc)

	var dbStore *store.PostgresStore
	if url := c.String("database-url"); url != "" {
		dbStore, err = store.Connect(url)
		if err != nil {
			log.Printf("aggregator[%d]: warning: failed to connect to Postgres, continuing without persistence: %v", index, err)
		} else {
			defer dbStore.Close()
			if err := dbStore.InitSchema(); err != nil {
				log.Printf("aggregator[%d]: initializing schema: %v", index, err)
			}
			if snapshot, err := dbStore.LoadBucketSnapshots(context.Background()); err != nil {
				log.Printf("aggregator[%d]: loading bucket snapshots: %v", index, err)
			} else {
				acc.Restore(snapshot)
				log.Printf("aggregator[%d]: restored %d bucket(s) from Postgres", index, len(snapshot))
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
			log.Printf("aggregator[%d]: recording accepted uuid: %v", index, err)
		}
		if values, ok := acc.Snapshot(bucketIndex); ok {
			if err := dbStore.SaveBucketSnapshot(ctx, bucketIndex, values); err != nil {
				log.Printf("aggregator[%d]: saving bucket snapshot: %v", index, err)
			}
		}
	}

	if addr := c.String("admin-addr"); addr != "" {
		router := api.SetupRouter(st, dbStore, wsHub, fp)
		go func() {
			if err := router.Run(addr); err != nil {
				log.Printf("aggregator[%d]: admin API exited: %v", index, err)
			}
		}()
	}

	id := transport.Identity{
		CertFile: fmt.Sprintf("%s/%s.crt", dir, station.Identity),
		KeyFile:  fmt.Sprintf("%s/%s.key", dir, station.Identity),
		RootFile: fmt.Sprintf("%s/%s", dir, cfg.RootCert),
	}
	tlsCfg, err := transport.ServerTLSConfig(id)
	if err != nil {
		return fmt.Errorf("building tls config: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	payloadAddr := fmt.Sprintf("%s:%s", station.IP, station.Port1)
	rpcAddr := fmt.Sprintf("%s:%s", station.IP, station.Port2)

	payloadListener, err := transport.Listen(payloadAddr, tlsCfg)
	if err != nil {
		return err
	}
	log.Printf("aggregator[%d]: listening for payloads on %s", index, payloadAddr)

	rpcListener, err := transport.Listen(rpcAddr, tlsCfg)
	if err != nil {
		return err
	}
	log.Printf("aggregator[%d]: listening for check-proof rpcs on %s", index, rpcAddr)

	svc := transport.NewService(st)
	rpcErr := make(chan error, 1)
	go func() { rpcErr <- transport.Serve(ctx, rpcListener, svc) }()

	go serveReceiver(ctx, payloadListener, st)

	select {
	case <-ctx.Done():
		return nil
	case err := <-rpcErr:
		return err
	}
}

// serveReceiver accepts raw Payload connections and ingests each one as
// this station's receiver half — no busy-waiting: ingestion just records
// the local query result for whichever sender later calls CheckProof for
// the same uuid.
func serveReceiver(ctx context.Context, l net.Listener, st *aggregator.Station) {
	for {
		conn, err := l.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("aggregator: accept: %v", err)
			continue
		}
		go func() {
			defer conn.Close()
			buf := make([]byte, 1<<20)
			n, err := conn.Read(buf)
			if err != nil {
				return
			}
			p, err := payload.DecodePayload(buf[:n])
			if err != nil {
				log.Printf("aggregator: malformed payload: %v", err)
				return
			}
			st.Receive(p.UUID, p.Index, p.Proof.X, &p.Proof)
		}()
	}
}
