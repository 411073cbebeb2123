//go:build integration

package integration

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"io"
	"log"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/amirimatin/go-ftlconn/pkg/bootstrap"
)

func TestTLS_StatusRequiresClientCert(t *testing.T) {
	for _, proto := range []string{"http", "grpc"} {
		t.Run(proto, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
			defer cancel()

			dir := t.TempDir()
			caCrt, _, srvCrt, srvKey, cliCrt, cliKey := mustMakeTestCerts(t, dir)

			n, err := bootstrap.Run(ctx, bootstrap.Config{
				Kind: "udp", Target: "203.0.113.7:60000",
				MgmtAddr: "127.0.0.1:0", MgmtProto: proto,
				TLSEnable: true, TLSCA: caCrt, TLSCert: srvCrt, TLSKey: srvKey,
				Logger: log.New(io.Discard, "", 0),
			})
			if err != nil {
				t.Fatalf("run: %v", err)
			}
			defer n.Close()

			withCert := bootstrap.Config{TLSEnable: true, TLSCA: caCrt, TLSCert: cliCrt, TLSKey: cliKey}
			cli, err := bootstrap.NewMgmtClient(withCert, proto, 3*time.Second)
			if err != nil {
				t.Fatalf("client: %v", err)
			}
			data, err := cli.GetStatus(ctx, n.MgmtAddr())
			if err != nil {
				t.Fatalf("status with client cert: %v", err)
			}
			if !strings.Contains(string(data), n.Endpoint().ID()) {
				t.Fatalf("status lacks endpoint id: %s", data)
			}

			noCert := bootstrap.Config{TLSEnable: true, TLSCA: caCrt}
			anon, err := bootstrap.NewMgmtClient(noCert, proto, time.Second)
			if err != nil {
				t.Fatalf("anon client: %v", err)
			}
			actx, acancel := context.WithTimeout(ctx, 3*time.Second)
			defer acancel()
			if _, err := anon.GetStatus(actx, n.MgmtAddr()); err == nil {
				t.Fatalf("expected status without client cert to fail")
			}
		})
	}
}

func mustMakeTestCerts(t *testing.T, dir string) (caCrt, caKey, srvCrt, srvKey, cliCrt, cliKey string) {
	t.Helper()
	caPriv, _ := rsa.GenerateKey(rand.Reader, 2048)
	caTpl := &x509.Certificate{SerialNumber: big.NewInt(1), Subject: pkix.Name{CommonName: "ftlconn-test-ca"}, NotBefore: time.Now().Add(-time.Hour), NotAfter: time.Now().Add(48 * time.Hour), KeyUsage: x509.KeyUsageCertSign | x509.KeyUsageCRLSign, IsCA: true, BasicConstraintsValid: true}
	caDER, _ := x509.CreateCertificate(rand.Reader, caTpl, caTpl, &caPriv.PublicKey, caPriv)
	caCrt = filepath.Join(dir, "ca.crt")
	caKey = filepath.Join(dir, "ca.key")
	writePEM(t, caCrt, "CERTIFICATE", caDER)
	writePEM(t, caKey, "RSA PRIVATE KEY", x509.MarshalPKCS1PrivateKey(caPriv))

	makeLeaf := func(cn, crtName, keyName string, isClient bool) (string, string) {
		priv, _ := rsa.GenerateKey(rand.Reader, 2048)
		tpl := &x509.Certificate{SerialNumber: big.NewInt(time.Now().UnixNano()), Subject: pkix.Name{CommonName: cn}, NotBefore: time.Now().Add(-time.Hour), NotAfter: time.Now().Add(24 * time.Hour), KeyUsage: x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment}
		if isClient {
			tpl.ExtKeyUsage = []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth}
		} else {
			tpl.ExtKeyUsage = []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth}
		}
		tpl.IPAddresses = []net.IP{net.ParseIP("127.0.0.1")}
		der, _ := x509.CreateCertificate(rand.Reader, tpl, caTpl, &priv.PublicKey, caPriv)
		crtPath := filepath.Join(dir, crtName)
		keyPath := filepath.Join(dir, keyName)
		writePEM(t, crtPath, "CERTIFICATE", der)
		writePEM(t, keyPath, "RSA PRIVATE KEY", x509.MarshalPKCS1PrivateKey(priv))
		return crtPath, keyPath
	}

	srvCrt, srvKey = makeLeaf("ftlconn-mgmt", "server.crt", "server.key", false)
	cliCrt, cliKey = makeLeaf("ftlconn-ctl", "client.crt", "client.key", true)
	return
}

func writePEM(t *testing.T, path, typ string, der []byte) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := pem.Encode(f, &pem.Block{Type: typ, Bytes: der}); err != nil {
		t.Fatalf("pem encode %s: %v", path, err)
	}
}
