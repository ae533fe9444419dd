// Package source reads result list documents from files, URLs and S3.
//
// A location is dispatched on its scheme:
//
//	results.xml, /data/results.xml   file on the configured billy filesystem
//	http://host/results.xml          GET with the configured timeout
//	s3://bucket/path/results.xml     S3 GetObject
//
// Every document is sniffed before it is returned; anything that is not XML
// is rejected with ErrNotXML.
package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gabriel-vasile/mimetype"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"go.uber.org/zap"
)

var (
	// ErrNotXML is returned when a document is not XML.
	ErrNotXML = errors.New("document is not XML")

	// ErrTooLarge is returned when a document exceeds the size limit.
	ErrTooLarge = errors.New("document too large")
)

// DefaultTimeout bounds HTTP fetches.
const DefaultTimeout = 30 * time.Second

// DefaultMaxBytes is the largest document Fetch accepts.
const DefaultMaxBytes = 64 << 20

// S3API is the part of the S3 client the fetcher uses.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Fetcher reads documents by location.
//
// Thread-safety: Fetcher is safe for concurrent use.
type Fetcher struct {
	fs        billy.Filesystem
	hostPaths bool
	http      *http.Client
	log       *zap.Logger
	maxBytes  int64

	mu  sync.Mutex
	s3  S3API
	aws []func(*awsconfig.LoadOptions) error
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithFilesystem reads plain paths from fs instead of the OS filesystem.
func WithFilesystem(fs billy.Filesystem) Option {
	return func(f *Fetcher) {
		f.fs = fs
		f.hostPaths = false
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) { f.http = c }
}

// WithTimeout sets the HTTP timeout. Values <= 0 are ignored.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.http = &http.Client{Timeout: d}
		}
	}
}

// WithS3Client sets the S3 client. Without it a client is built from the
// default AWS credential chain on first use.
func WithS3Client(c S3API) Option {
	return func(f *Fetcher) { f.s3 = c }
}

// WithAWSRegion sets the region of the default S3 client.
func WithAWSRegion(region string) Option {
	return func(f *Fetcher) {
		if region != "" {
			f.aws = append(f.aws, awsconfig.WithRegion(region))
		}
	}
}

// WithMaxBytes sets the document size limit. Values <= 0 are ignored.
func WithMaxBytes(n int64) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxBytes = n
		}
	}
}

// WithLogger sets the logger. Default: zap.NewNop().
func WithLogger(l *zap.Logger) Option {
	return func(f *Fetcher) {
		if l != nil {
			f.log = l
		}
	}
}

// New creates a Fetcher.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		// Rooted at / so absolute paths resolve as on the host.
		fs:        osfs.New("/"),
		hostPaths: true,
		http:      &http.Client{Timeout: DefaultTimeout},
		log:       zap.NewNop(),
		maxBytes:  DefaultMaxBytes,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch returns the document at location.
func (f *Fetcher) Fetch(ctx context.Context, location string) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	switch scheme(location) {
	case "http", "https":
		data, err = f.fetchHTTP(ctx, location)
	case "s3":
		data, err = f.fetchS3(ctx, location)
	case "":
		data, err = f.fetchFile(location)
	default:
		return nil, fmt.Errorf("fetch %s: unsupported scheme", location)
	}
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", location, err)
	}

	if err := sniff(data); err != nil {
		return nil, fmt.Errorf("fetch %s: %w", location, err)
	}
	f.log.Debug("fetched document", zap.String("location", location), zap.Int("bytes", len(data)))
	return data, nil
}

// scheme returns the lower-case URL scheme, or "" for file paths. Windows
// drive letters are not schemes.
func scheme(location string) string {
	i := strings.Index(location, "://")
	if i <= 1 {
		return ""
	}
	return strings.ToLower(location[:i])
}

func (f *Fetcher) fetchFile(path string) ([]byte, error) {
	if f.hostPaths {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, err
		}
		path = abs
	}
	file, err := f.fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return f.readAll(file)
}

func (f *Fetcher) fetchHTTP(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/xml, text/xml")

	resp, err := f.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("invalid HTTP status code received: %s", resp.Status)
	}
	return f.readAll(resp.Body)
}

func (f *Fetcher) fetchS3(ctx context.Context, location string) ([]byte, error) {
	u, err := url.Parse(location)
	if err != nil {
		return nil, err
	}
	bucket, key := u.Host, strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return nil, fmt.Errorf("want s3://bucket/key")
	}

	client, err := f.s3Client(ctx)
	if err != nil {
		return nil, err
	}
	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, err
	}
	defer out.Body.Close()
	return f.readAll(out.Body)
}

func (f *Fetcher) s3Client(ctx context.Context) (S3API, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.s3 != nil {
		return f.s3, nil
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, f.aws...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	f.s3 = s3.NewFromConfig(cfg)
	return f.s3, nil
}

func (f *Fetcher) readAll(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, f.maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > f.maxBytes {
		return nil, fmt.Errorf("%w: over %d bytes", ErrTooLarge, f.maxBytes)
	}
	return data, nil
}

// sniff accepts XML and every format derived from it. mimetype only labels
// XML that starts with a declaration, which is optional, so undeclared
// documents that mimetype leaves as plain text or bytes are accepted when
// they open with markup.
func sniff(data []byte) error {
	detected := mimetype.Detect(data)
	for mt := detected; mt != nil; mt = mt.Parent() {
		if mt.Is("text/xml") || mt.Is("application/xml") {
			return nil
		}
	}
	if (detected.Is("text/plain") || detected.Is("application/octet-stream")) && opensWithMarkup(data) {
		return nil
	}
	return fmt.Errorf("%w: detected %s", ErrNotXML, detected.String())
}

// opensWithMarkup reports whether the first byte after a UTF-8 byte order
// mark and leading whitespace is '<'.
func opensWithMarkup(data []byte) bool {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	data = bytes.TrimLeft(data, " \t\r\n")
	return len(data) > 0 && data[0] == '<'
}
