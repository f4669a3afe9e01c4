// Command genconfig writes a starter config.toml plus a self-signed root CA
// and one leaf TLS identity per configured endpoint, enough to bring up a
// local two-proxy, two-aggregator, two-follower deployment end to end.
// It mirrors the original's gen_config.rs, minus the HPKE keypairs this
// deployment no longer needs, and with PEM/crypto-x509 identities in place
// of PKCS12 bundles (see DESIGN.md).
package main

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/binary"
	"encoding/pem"
	"fmt"
	"log"
	"math/big"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/rawblock/privagg/internal/config"
)

func main() {
	app := &cli.App{
		Name:  "genconfig",
		Usage: "generate a local dev config.toml and the TLS identities it references",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config-dir", Aliases: []string{"c"}, Value: "config", Usage: "directory to write config.toml and pki material into"},
			&cli.Uint64Flag{Name: "input-len", Value: 127, Usage: "bit-vector length; must match one of the circuit's supported generator orders"},
			&cli.Uint64Flag{Name: "prime", Value: 18446744073709547521, Usage: "field modulus"},
			&cli.Uint64Flag{Name: "generator", Value: 323234694403053661, Usage: "subgroup generator of order next-pow2(input-len+1), for the chosen prime"},
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatalf("genconfig: %v", err)
	}
}

func run(c *cli.Context) error {
	dir := c.String("config-dir")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	caCert, caKey, err := genCA()
	if err != nil {
		return fmt.Errorf("generating root CA: %w", err)
	}
	if err := writePEMPair(dir, "rootCA", caCert.Raw, caKey); err != nil {
		return err
	}
	// The trust anchor every station loads is the certificate alone.
	if err := os.Rename(dir+"/rootCA.crt", dir+"/rootCA.pem"); err != nil {
		return fmt.Errorf("renaming root cert: %w", err)
	}

	identities := []string{
		"proxy1", "proxy2",
		"aggregator1", "aggregator2",
		"follower1", "follower2",
		"client0",
	}
	for _, name := range identities {
		if err := issueLeaf(dir, name, caCert, caKey); err != nil {
			return fmt.Errorf("issuing identity %s: %w", name, err)
		}
	}

	seed, err := randomSeed()
	if err != nil {
		return fmt.Errorf("drawing shared verifier seed: %w", err)
	}

	cfg := config.Config{
		RootCert:  "rootCA.pem",
		Queries:   "bitvector-queries.toml",
		InputLen:  c.Uint64("input-len"),
		Prime:     c.Uint64("prime"),
		Generator: c.Uint64("generator"),
		Proxy: []config.Proxy{
			{IP: "localhost", Port: "8080", Identity: "proxy1"},
			{IP: "localhost", Port: "8081", Identity: "proxy2"},
		},
		Aggregator: []config.Aggregator{
			{Seed: seed, IP: "localhost", Port1: "8082", Port2: "8083", Identity: "aggregator1"},
			{Seed: seed, IP: "localhost", Port1: "8084", Port2: "8085", Identity: "aggregator2"},
		},
		Follower: []config.Follower{
			{Seed: seed, IP: "localhost", Port1: "8086", Port2: "8087", Identity: "follower1"},
			{Seed: seed, IP: "localhost", Port1: "8088", Port2: "8089", Identity: "follower2"},
		},
	}

	filename := dir + "/config.toml"
	if err := config.Save(filename, cfg); err != nil {
		return err
	}
	log.Printf("genconfig: wrote %s and %d TLS identities under %s", filename, len(identities), dir)
	return nil
}

// genCA creates a self-signed ECDSA root certificate good for ten years —
// a dev-only trust anchor, not meant to survive a real rollover cycle.
func genCA() (*x509.Certificate, *ecdsa.PrivateKey, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, nil, err
	}
	serial, err := randomSerial()
	if err != nil {
		return nil, nil, err
	}
	tmpl := &x509.Certificate{
		SerialNumber:          serial,
		Subject:               pkix.Name{CommonName: "privagg dev root"},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().AddDate(10, 0, 0),
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageDigitalSignature,
		BasicConstraintsValid: true,
		IsCA:                  true,
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	if err != nil {
		return nil, nil, err
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, nil, err
	}
	return cert, key, nil
}

// issueLeaf signs a server+client auth certificate for name under ca, and
// writes <dir>/<name>.crt and <dir>/<name>.key.
func issueLeaf(dir, name string, ca *x509.Certificate, caKey *ecdsa.PrivateKey) error {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return err
	}
	serial, err := randomSerial()
	if err != nil {
		return err
	}
	tmpl := &x509.Certificate{
		SerialNumber: serial,
		Subject:      pkix.Name{CommonName: name},
		DNSNames:     []string{"localhost", name},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().AddDate(5, 0, 0),
		KeyUsage:     x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth, x509.ExtKeyUsageClientAuth},
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, ca, &key.PublicKey, caKey)
	if err != nil {
		return err
	}
	return writePEMPair(dir, name, der, key)
}

func writePEMPair(dir, name string, certDER []byte, key *ecdsa.PrivateKey) error {
	certOut, err := os.OpenFile(fmt.Sprintf("%s/%s.crt", dir, name), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer certOut.Close()
	if err := pem.Encode(certOut, &pem.Block{Type: "CERTIFICATE", Bytes: certDER}); err != nil {
		return err
	}

	keyBytes, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		return err
	}
	keyOut, err := os.OpenFile(fmt.Sprintf("%s/%s.key", dir, name), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	defer keyOut.Close()
	return pem.Encode(keyOut, &pem.Block{Type: "EC PRIVATE KEY", Bytes: keyBytes})
}

func randomSerial() (*big.Int, error) {
	limit := new(big.Int).Lsh(big.NewInt(1), 128)
	return rand.Int(rand.Reader, limit)
}

// randomSeed draws the one shared verifier seed every aggregator/follower
// pair in the generated config carries, matching the original's gen_config
// behavior of sharing a single rng.gen() draw across every station block.
func randomSeed() (uint64, error) {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(buf[:]), nil
}
