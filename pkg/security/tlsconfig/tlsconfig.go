package tlsconfig

import (
    "crypto/tls"
    "crypto/x509"
    "errors"
    "fmt"
    "os"
    "sync"
    "time"
)

// reloadTTL bounds how long a loaded key pair is reused before re-reading it.
const reloadTTL = 10 * time.Second

// Options defines TLS inputs for the management API.
type Options struct {
    Enable             bool
    CAFile             string
    CertFile           string
    KeyFile            string
    InsecureSkipVerify bool
    ServerName         string
}

func loadPool(path string) (*x509.CertPool, error) {
    pem, err := os.ReadFile(path)
    if err != nil { return nil, err }
    pool := x509.NewCertPool()
    if !pool.AppendCertsFromPEM(pem) {
        return nil, fmt.Errorf("tls: no certificates in %s", path)
    }
    return pool, nil
}

// keyPair lazily (re)loads a certificate from disk so it can be rotated by
// replacing the files.
type keyPair struct {
    certFile, keyFile string

    mu       sync.Mutex
    cached   *tls.Certificate
    lastLoad time.Time
}

func (k *keyPair) get() (*tls.Certificate, error) {
    k.mu.Lock(); defer k.mu.Unlock()
    if k.cached != nil && time.Since(k.lastLoad) < reloadTTL {
        return k.cached, nil
    }
    cert, err := tls.LoadX509KeyPair(k.certFile, k.keyFile)
    if err != nil { return nil, err }
    k.cached, k.lastLoad = &cert, time.Now()
    return k.cached, nil
}

// Server returns a server tls.Config if enabled, otherwise nil. The
// certificate is reloaded from disk on handshake at most every 10s. When a CA
// is configured, client certificates are required (mTLS).
func (o Options) Server() (*tls.Config, error) {
    if !o.Enable { return nil, nil }
    if o.CertFile == "" || o.KeyFile == "" {
        return nil, errors.New("tls: server cert/key required when TLS enabled")
    }
    kp := &keyPair{certFile: o.CertFile, keyFile: o.KeyFile}
    if _, err := kp.get(); err != nil { return nil, err }
    cfg := &tls.Config{
        MinVersion:     tls.VersionTLS12,
        GetCertificate: func(*tls.ClientHelloInfo) (*tls.Certificate, error) { return kp.get() },
    }
    if o.CAFile != "" {
        pool, err := loadPool(o.CAFile)
        if err != nil { return nil, err }
        cfg.ClientCAs = pool
        cfg.ClientAuth = tls.RequireAndVerifyClientCert
    }
    return cfg, nil
}

// Client returns a client tls.Config if enabled, otherwise nil.
func (o Options) Client() (*tls.Config, error) {
    if !o.Enable { return nil, nil }
    cfg := &tls.Config{MinVersion: tls.VersionTLS12, InsecureSkipVerify: o.InsecureSkipVerify} //nolint:gosec
    if o.ServerName != "" { cfg.ServerName = o.ServerName }
    if o.CAFile != "" {
        pool, err := loadPool(o.CAFile)
        if err != nil { return nil, err }
        cfg.RootCAs = pool
    }
    if o.CertFile != "" && o.KeyFile != "" {
        kp := &keyPair{certFile: o.CertFile, keyFile: o.KeyFile}
        if _, err := kp.get(); err != nil { return nil, err }
        cfg.GetClientCertificate = func(*tls.CertificateRequestInfo) (*tls.Certificate, error) { return kp.get() }
    }
    return cfg, nil
}
