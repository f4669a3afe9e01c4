package transport

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/rawblock/privagg/internal/flpcp"
)

// writeTestIdentity builds a throwaway CA plus one leaf certificate signed
// by it, both good for server and client auth, and returns the Identity
// pointing at the written files.
func writeTestIdentity(t *testing.T, dir string) Identity {
	t.Helper()

	caKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("generating ca key: %v", err)
	}
	caTmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "test root"},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(time.Hour),
		KeyUsage:              x509.KeyUsageCertSign,
		BasicConstraintsValid: true,
		IsCA:                  true,
	}
	caDER, err := x509.CreateCertificate(rand.Reader, caTmpl, caTmpl, &caKey.PublicKey, caKey)
	if err != nil {
		t.Fatalf("creating ca cert: %v", err)
	}
	caCert, err := x509.ParseCertificate(caDER)
	if err != nil {
		t.Fatalf("parsing ca cert: %v", err)
	}
	rootFile := filepath.Join(dir, "root.pem")
	writePEM(t, rootFile, "CERTIFICATE", caDER)

	leafKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("generating leaf key: %v", err)
	}
	leafTmpl := &x509.Certificate{
		SerialNumber: big.NewInt(2),
		Subject:      pkix.Name{CommonName: "localhost"},
		DNSNames:     []string{"localhost"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth, x509.ExtKeyUsageClientAuth},
	}
	leafDER, err := x509.CreateCertificate(rand.Reader, leafTmpl, caCert, &leafKey.PublicKey, caKey)
	if err != nil {
		t.Fatalf("creating leaf cert: %v", err)
	}
	certFile := filepath.Join(dir, "leaf.crt")
	writePEM(t, certFile, "CERTIFICATE", leafDER)

	keyBytes, err := x509.MarshalECPrivateKey(leafKey)
	if err != nil {
		t.Fatalf("marshaling leaf key: %v", err)
	}
	keyFile := filepath.Join(dir, "leaf.key")
	writePEM(t, keyFile, "EC PRIVATE KEY", keyBytes)

	return Identity{CertFile: certFile, KeyFile: keyFile, RootFile: rootFile}
}

func writePEM(t *testing.T, path, blockType string, der []byte) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating %s: %v", path, err)
	}
	defer f.Close()
	if err := pem.Encode(f, &pem.Block{Type: blockType, Bytes: der}); err != nil {
		t.Fatalf("encoding %s: %v", path, err)
	}
}

func TestListenDialMutualTLS(t *testing.T) {
	dir := t.TempDir()
	id := writeTestIdentity(t, dir)

	serverCfg, err := ServerTLSConfig(id)
	if err != nil {
		t.Fatalf("ServerTLSConfig: %v", err)
	}
	l, err := Listen("127.0.0.1:0", serverCfg)
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer l.Close()

	accepted := make(chan []byte, 1)
	go func() {
		conn, err := l.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		buf := make([]byte, 64)
		n, _ := conn.Read(buf)
		accepted <- buf[:n]
	}()

	clientCfg, err := ClientTLSConfig(id, "localhost")
	if err != nil {
		t.Fatalf("ClientTLSConfig: %v", err)
	}
	conn, err := Dial(l.Addr().String(), clientCfg)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()
	if _, err := conn.Write([]byte("hello")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	select {
	case got := <-accepted:
		if string(got) != "hello" {
			t.Errorf("server received %q, want %q", got, "hello")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for server to receive data")
	}
}

type stubStation struct {
	accept bool
}

func (s *stubStation) CheckProof(ctx context.Context, id uuid.UUID, res flpcp.QueryRes) (bool, error) {
	return s.accept, nil
}

func TestCheckProofRPCRoundTrip(t *testing.T) {
	dir := t.TempDir()
	id := writeTestIdentity(t, dir)

	serverCfg, err := ServerTLSConfig(id)
	if err != nil {
		t.Fatalf("ServerTLSConfig: %v", err)
	}
	l, err := Listen("127.0.0.1:0", serverCfg)
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer l.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc := NewService(&stubStation{accept: true})
	go Serve(ctx, l, svc)

	clientCfg, err := ClientTLSConfig(id, "localhost")
	if err != nil {
		t.Fatalf("ClientTLSConfig: %v", err)
	}
	conn, err := Dial(l.Addr().String(), clientCfg)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	client := NewClient(conn)
	defer client.Close()

	accepted, err := client.CheckProof(context.Background(), uuid.New(), flpcp.QueryRes{})
	if err != nil {
		t.Fatalf("CheckProof: %v", err)
	}
	if !accepted {
		t.Errorf("CheckProof returned false, want true")
	}
}
