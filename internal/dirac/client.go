// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package dirac

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"hash/adler32"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/apex/log"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"
)

// Service endpoints, relative to the server URL.
const (
	FileCatalog   = "DataManagement/FileCatalog"
	JobManager    = "WorkloadManagement/JobManager"
	JobMonitoring = "WorkloadManagement/JobMonitoring"
)

var (
	// ErrRequest wraps transport failures and unexpected HTTP statuses.
	ErrRequest = errors.New("dirac request failed")
	// ErrResponse is returned when the server answers with something other
	// than a JSON document.
	ErrResponse = errors.New("invalid dirac response")
)

// ServerError is a well formed reply with OK set to false.
type ServerError struct {
	Method  string
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("dirac %s: %s", e.Method, e.Message)
}

// Result is a decoded server reply, {"OK": bool, "Value": ..., "Message": ...}.
type Result struct {
	gjson.Result
}

// OK reports whether the server accepted the call.
func (r Result) OK() bool { return r.Get("OK").Bool() }

// Value is the payload of a successful reply.
func (r Result) Value() gjson.Result { return r.Get("Value") }

// Message is the reason given for a failed reply.
func (r Result) Message() string { return r.Get("Message").String() }

// Client talks to one DIRAC server.
type Client struct {
	settings Settings
	http     *retryablehttp.Client
}

// Option customizes a Client.
type Option func(*clientOptions)

type clientOptions struct {
	httpClient *http.Client
}

// WithHTTPClient replaces the certificate authenticated transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *clientOptions) { o.httpClient = hc }
}

// New returns a client for s. Unless an HTTP client is supplied, requests
// present the user proxy as client certificate and verify the server against
// the CA path.
func New(s Settings, opts ...Option) (*Client, error) {
	s = s.withDefaults()
	if s.ServerURL == "" {
		return nil, errors.New("dirac server URL is required")
	}
	s.ServerURL = strings.TrimRight(s.ServerURL, "/")

	var o clientOptions
	for _, opt := range opts {
		opt(&o)
	}

	hc := o.httpClient
	if hc == nil {
		cfg, err := tlsConfig(s)
		if err != nil {
			return nil, err
		}
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.TLSClientConfig = cfg
		hc = &http.Client{Transport: transport}
	}
	hc.Timeout = s.Timeout

	rc := retryablehttp.NewClient()
	rc.HTTPClient = hc
	rc.RetryMax = s.Retries
	rc.Logger = retryLogger{}

	return &Client{settings: s, http: rc}, nil
}

// Settings returns the effective settings of c.
func (c *Client) Settings() Settings { return c.settings }

func tlsConfig(s Settings) (*tls.Config, error) {
	cfg := &tls.Config{MinVersion: tls.VersionTLS12}

	if s.UserProxy != "" {
		cert, err := tls.LoadX509KeyPair(s.UserProxy, s.UserProxy)
		if err != nil {
			return nil, fmt.Errorf("failed to load user proxy %s: %w", s.UserProxy, err)
		}
		cfg.Certificates = []tls.Certificate{cert}
	}

	pool, err := caPool(s.CAPath)
	if err != nil {
		return nil, err
	}
	cfg.RootCAs = pool

	return cfg, nil
}

// caPool loads every PEM certificate found at path, a directory or a single
// bundle. A missing path falls back to the system pool.
func caPool(path string) (*x509.CertPool, error) {
	info, err := os.Stat(path)
	if err != nil {
		log.WithError(err).Warnf("CA path %s unavailable, using system roots", path)
		return x509.SystemCertPool()
	}

	pool := x509.NewCertPool()
	files := []string{path}
	if info.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA path %s: %w", path, err)
		}
		files = files[:0]
		for _, e := range entries {
			if !e.IsDir() {
				files = append(files, filepath.Join(path, e.Name()))
			}
		}
	}

	n := 0
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			continue
		}
		if pool.AppendCertsFromPEM(data) {
			n++
		}
	}
	log.Debugf("loaded CA certificates from %d files in %s", n, path)

	if n == 0 {
		return nil, fmt.Errorf("no CA certificates found in %s", path)
	}
	return pool, nil
}

// Call invokes method on a service endpoint. args, when present, travel as a
// JSON array in the "args" form field.
func (c *Client) Call(ctx context.Context, endpoint, method string, args ...any) (Result, error) {
	form := url.Values{"method": {method}}
	if len(args) > 0 {
		encoded, err := json.Marshal(args)
		if err != nil {
			return Result{}, fmt.Errorf("failed to encode %s arguments: %w", method, err)
		}
		form.Set("args", string(encoded))
	}
	if strings.Contains(c.settings.ServerURL, gridppHost) && form.Get("clientSetup") == "" {
		form.Set("clientSetup", "GridPP")
	}

	target := c.settings.ServerURL + "/" + endpoint
	log.Debugf("dirac %s %s", target, method)

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, target, []byte(form.Encode()))
	if err != nil {
		return Result{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	body, err := c.do(req)
	if err != nil {
		return Result{}, err
	}

	if !gjson.ValidBytes(body) {
		return Result{}, fmt.Errorf("%w: %s returned %q", ErrResponse, method, truncate(body))
	}

	res := Result{gjson.ParseBytes(body)}
	if !res.OK() {
		return res, &ServerError{Method: method, Message: res.Message()}
	}
	return res, nil
}

func (c *Client) do(req *retryablehttp.Request) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequest, err)
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", ErrRequest, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("%w: %s %s: %s", ErrRequest, req.Method, req.URL.Redacted(), resp.Status)
	}
	return buf.Bytes(), nil
}

func truncate(b []byte) string {
	const limit = 120
	if len(b) > limit {
		return string(b[:limit]) + "..."
	}
	return string(b)
}

// WhoAmI returns the identity the server associates with the proxy.
func (c *Client) WhoAmI(ctx context.Context) (Result, error) {
	return c.Call(ctx, FileCatalog, "whoami")
}

// SubmitJob submits a JDL job description.
func (c *Client) SubmitJob(ctx context.Context, jdl string) (Result, error) {
	return c.Call(ctx, JobManager, "submitJob", jdl)
}

// Jobs lists the caller's jobs.
func (c *Client) Jobs(ctx context.Context) (Result, error) {
	return c.Call(ctx, JobMonitoring, "getJobs")
}

// MaxParametricJobs returns the server's parametric job limit.
func (c *Client) MaxParametricJobs(ctx context.Context) (Result, error) {
	return c.Call(ctx, JobManager, "getMaxParametricJobs")
}

// DirectoryDump lists the catalog directory lfn.
func (c *Client) DirectoryDump(ctx context.Context, lfn string) (Result, error) {
	return c.Call(ctx, FileCatalog, "getDirectoryDump", lfn)
}

// CreateDirectory creates the catalog directory lfn.
func (c *Client) CreateDirectory(ctx context.Context, lfn string) (Result, error) {
	return c.Call(ctx, FileCatalog, "createDirectory", lfn)
}

// RemoveDirectory removes the catalog directory lfn.
func (c *Client) RemoveDirectory(ctx context.Context, lfn string) (Result, error) {
	return c.Call(ctx, FileCatalog, "removeDirectory", lfn)
}

// RemoveFile removes the catalog entry lfn.
func (c *Client) RemoveFile(ctx context.Context, lfn string) (Result, error) {
	return c.Call(ctx, FileCatalog, "removeFile", lfn)
}

// GetFile asks the catalog for the replica information of lfn.
func (c *Client) GetFile(ctx context.Context, lfn string) (Result, error) {
	return c.Call(ctx, FileCatalog, "getFile", lfn)
}

// FileEntry is the catalog record registered by RegisterFile.
type FileEntry struct {
	PFN      string `json:"PFN"`
	SE       string `json:"SE"`
	Size     int64  `json:"Size"`
	Checksum string `json:"Checksum"`
}

// RegisterFile adds lfn to the catalog. The file content must already be on
// the storage element.
func (c *Client) RegisterFile(ctx context.Context, lfn string, size int64, checksum string) (Result, error) {
	entry := map[string]FileEntry{
		lfn: {PFN: lfn, SE: c.settings.StorageElement, Size: size, Checksum: checksum},
	}
	return c.Call(ctx, FileCatalog, "addFile", entry)
}

// StorageURL is the storage element URL holding the content of lfn.
func (c *Client) StorageURL(lfn string) string {
	return strings.TrimRight(c.settings.StorageURL, "/") + "/" + strings.TrimLeft(lfn, "/")
}

// Upload writes data to the storage element under lfn.
func (c *Client) Upload(ctx context.Context, lfn string, data []byte, overwrite bool) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPut, c.StorageURL(lfn), data)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if !overwrite {
		req.Header.Set("If-None-Match", "*")
	}
	_, err = c.do(req)
	return err
}

// Download reads the content of lfn from the storage element.
func (c *Client) Download(ctx context.Context, lfn string) ([]byte, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.StorageURL(lfn), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.do(req)
}

// AddFile uploads a local file to the storage element and registers it in
// the catalog under lfn. With overwrite, an existing catalog entry is removed
// first.
func (c *Client) AddFile(ctx context.Context, localPath, lfn string, overwrite bool) (Result, error) {
	data, err := os.ReadFile(localPath)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read %s: %w", localPath, err)
	}

	if overwrite {
		if _, err := c.RemoveFile(ctx, lfn); err != nil {
			log.WithError(err).Warnf("failed to remove existing %s", lfn)
		}
	}

	if err := c.Upload(ctx, lfn, data, overwrite); err != nil {
		return Result{}, err
	}

	sum, err := Adler32(bytes.NewReader(data))
	if err != nil {
		return Result{}, err
	}
	return c.RegisterFile(ctx, lfn, int64(len(data)), sum)
}

// DirectorySuccessFiles flattens the file names of every directory listed
// under Value.Successful. Files may be reported as a list or as an object
// keyed by name.
func DirectorySuccessFiles(r Result) []string {
	var files []string
	r.Value().Get("Successful").ForEach(func(_, dir gjson.Result) bool {
		listing := dir.Get("Files")
		switch {
		case listing.IsArray():
			for _, f := range listing.Array() {
				files = append(files, f.String())
			}
		case listing.IsObject():
			listing.ForEach(func(name, _ gjson.Result) bool {
				files = append(files, name.String())
				return true
			})
		}
		return true
	})
	return files
}

// DirectoryFailures returns the per directory messages under Value.Failed.
func DirectoryFailures(r Result) map[string]string {
	out := map[string]string{}
	r.Value().Get("Failed").ForEach(func(dir, msg gjson.Result) bool {
		out[dir.String()] = msg.String()
		return true
	})
	return out
}

// IsNotExist reports whether a catalog failure message describes a missing
// path.
func IsNotExist(msg string) bool {
	m := strings.ToLower(msg)
	return strings.Contains(m, "no such file or directory") || strings.Contains(m, "does not exist")
}

// Adler32 returns the 8 digit lowercase hex Adler-32 checksum of r, the form
// the file catalog records.
func Adler32(r io.Reader) (string, error) {
	h := adler32.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", fmt.Errorf("failed to checksum: %w", err)
	}
	return fmt.Sprintf("%08x", h.Sum32()), nil
}

type retryLogger struct{}

func (retryLogger) Error(msg string, kv ...interface{}) { log.WithFields(fields(kv)).Error(msg) }
func (retryLogger) Warn(msg string, kv ...interface{})  { log.WithFields(fields(kv)).Warn(msg) }
func (retryLogger) Info(msg string, kv ...interface{})  { log.WithFields(fields(kv)).Debug(msg) }
func (retryLogger) Debug(msg string, kv ...interface{}) { log.WithFields(fields(kv)).Debug(msg) }

func fields(kv []interface{}) log.Fields {
	f := log.Fields{}
	for i := 0; i+1 < len(kv); i += 2 {
		f[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return f
}
