// Package transport provides the mutual-TLS listeners and net/rpc
// check-proof service/client every aggregator and follower station uses to
// talk to its paired station. Every certificate and key is loaded from
// disk once at startup; nothing here ever touches the network before TLS
// has verified both ends of the connection.
package transport

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net"
	"os"
)

// Identity is one station's TLS material: its own certificate/key pair and
// the root CA it trusts for its peer's certificate.
type Identity struct {
	CertFile string
	KeyFile  string
	RootFile string
}

// ServerTLSConfig builds a mutual-TLS server config: it presents id's own
// certificate and requires and verifies the peer's certificate against
// id's root CA.
func ServerTLSConfig(id Identity) (*tls.Config, error) {
	cert, err := tls.LoadX509KeyPair(id.CertFile, id.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("transport: loading server keypair: %w", err)
	}
	pool, err := loadRootCA(id.RootFile)
	if err != nil {
		return nil, err
	}
	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		ClientCAs:    pool,
		ClientAuth:   tls.RequireAndVerifyClientCert,
		MinVersion:   tls.VersionTLS13,
	}, nil
}

// ClientTLSConfig builds a mutual-TLS client config: it presents id's own
// certificate and verifies the server's certificate against id's root CA
// for the given expected server name.
func ClientTLSConfig(id Identity, serverName string) (*tls.Config, error) {
	cert, err := tls.LoadX509KeyPair(id.CertFile, id.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("transport: loading client keypair: %w", err)
	}
	pool, err := loadRootCA(id.RootFile)
	if err != nil {
		return nil, err
	}
	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		RootCAs:      pool,
		ServerName:   serverName,
		MinVersion:   tls.VersionTLS13,
	}, nil
}

func loadRootCA(rootFile string) (*x509.CertPool, error) {
	pem, err := os.ReadFile(rootFile)
	if err != nil {
		return nil, fmt.Errorf("transport: reading root cert %s: %w", rootFile, err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("transport: no certificates found in %s", rootFile)
	}
	return pool, nil
}

// Listen opens a TLS listener bound to addr under cfg.
func Listen(addr string, cfg *tls.Config) (net.Listener, error) {
	l, err := tls.Listen("tcp", addr, cfg)
	if err != nil {
		return nil, fmt.Errorf("transport: listening on %s: %w", addr, err)
	}
	return l, nil
}

// Dial opens a TLS connection to addr under cfg.
func Dial(addr string, cfg *tls.Config) (*tls.Conn, error) {
	conn, err := tls.Dial("tcp", addr, cfg)
	if err != nil {
		return nil, fmt.Errorf("transport: dialing %s: %w", addr, err)
	}
	return conn, nil
}
