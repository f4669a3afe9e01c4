package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/rpc"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/rawblock/privagg/internal/aggerr"
	"github.com/rawblock/privagg/internal/flpcp"
)

// CheckProofArgs and CheckProofReply are the net/rpc wire types for the
// decider's one RPC method — the Go rendering of the original's
// `check_proof(uuid, res) -> bool` service.
type CheckProofArgs struct {
	UUID uuid.UUID
	Res  flpcp.QueryRes
}

type CheckProofReply struct {
	Accepted bool
}

// station is the subset of *aggregator.Station the RPC service needs; kept
// as a narrow interface here so transport never imports the aggregator
// package's concrete Station type back.
type station interface {
	CheckProof(ctx context.Context, id uuid.UUID, res flpcp.QueryRes) (bool, error)
}

// Service adapts a Station's CheckProof method to the net/rpc calling
// convention. Register it under a *rpc.Server and serve accepted TLS
// connections with ServeConn.
type Service struct {
	station station
}

// NewService wraps st for RPC dispatch.
func NewService(st station) *Service {
	return &Service{station: st}
}

// CheckProof is the exported net/rpc method a paired sender station calls.
func (s *Service) CheckProof(args *CheckProofArgs, reply *CheckProofReply) error {
	accepted, err := s.station.CheckProof(context.Background(), args.UUID, args.Res)
	if err != nil {
		return err
	}
	reply.Accepted = accepted
	return nil
}

// Serve accepts connections on l forever, registering svc under its own
// private *rpc.Server (never the package-level default, so a process
// hosting more than one station never collides on method names) and
// serving each connection on its own goroutine. When ctx is canceled Serve
// closes l itself and returns nil; any other l.Accept failure is returned
// as an error.
func Serve(ctx context.Context, l net.Listener, svc *Service) error {
	server := rpc.NewServer()
	if err := server.RegisterName("Agg", svc); err != nil {
		return fmt.Errorf("transport: registering rpc service: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-ctx.Done()
		return l.Close()
	})
	g.Go(func() error {
		for {
			conn, err := l.Accept()
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("transport: accept: %w", err)
			}
			go server.ServeConn(conn)
		}
	})
	return g.Wait()
}

// Client is the sender-side RPC handle to a paired receiver station,
// implementing aggregator.CheckProofClient.
type Client struct {
	mu  sync.Mutex
	rpc *rpc.Client
}

// NewClient wraps an already-established TLS connection as an RPC client.
func NewClient(conn net.Conn) *Client {
	return &Client{rpc: rpc.NewClient(conn)}
}

// CheckProof calls the paired station's CheckProof method, respecting ctx
// cancellation even though net/rpc itself has no context awareness.
func (c *Client) CheckProof(ctx context.Context, id uuid.UUID, res flpcp.QueryRes) (bool, error) {
	args := &CheckProofArgs{UUID: id, Res: res}
	var reply CheckProofReply

	c.mu.Lock()
	call := c.rpc.Go("Agg.CheckProof", args, &reply, nil)
	c.mu.Unlock()

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case done := <-call.Done:
		if done.Error != nil {
			return false, fmt.Errorf("%w: %v", aggerr.ErrRPCFailure, done.Error)
		}
		return reply.Accepted, nil
	}
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.rpc.Close(); err != nil && !errors.Is(err, rpc.ErrShutdown) {
		return err
	}
	return nil
}
