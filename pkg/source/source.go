// Package source fetches raw node dumps from local files, HTTP(S) URLs and
// S3 objects.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"golang.org/x/exp/mmap"

	"github.com/dd0wney/nodelyzer/pkg/config"
)

var (
	// ErrTooLarge is returned when a dump exceeds the configured limit
	ErrTooLarge = errors.New("dump exceeds size limit")

	// ErrUnsupportedLocation is returned for schemes other than file, http(s) and s3
	ErrUnsupportedLocation = errors.New("unsupported dump location")
)

// DefaultMaxBytes caps a dump when Options.MaxBytes is zero
const DefaultMaxBytes = 64 << 20

// S3API is the subset of the S3 client the loader needs
type S3API interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Options configures a Loader
type Options struct {
	MaxBytes      int64
	Timeout       time.Duration
	S3Region      string
	S3Endpoint    string
	S3AccessKeyID string
	S3SecretKey   string
	HTTPClient    *http.Client
	S3Client      S3API
}

// Loader resolves dump locations; the S3 client is built on first use
type Loader struct {
	opts   Options
	http   *http.Client
	s3Once sync.Once
	s3     S3API
	s3Err  error
}

// New creates a Loader
func New(opts Options) *Loader {
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = DefaultMaxBytes
	}
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Loader{opts: opts, http: client, s3: opts.S3Client}
}

// Load returns the dump text at location and the file name used for
// format detection.
func (l *Loader) Load(ctx context.Context, location string) (string, string, error) {
	u, err := url.Parse(location)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		// bare paths, including Windows drive letters
		return l.loadFile(location)
	}

	switch strings.ToLower(u.Scheme) {
	case "file":
		return l.loadFile(u.Path)
	case "http", "https":
		return l.loadHTTP(ctx, u)
	case "s3":
		return l.loadS3(ctx, u)
	default:
		return "", "", fmt.Errorf("%w: %s", ErrUnsupportedLocation, u.Scheme)
	}
}

func (l *Loader) loadFile(p string) (string, string, error) {
	reader, err := mmap.Open(p)
	if err != nil {
		return "", "", fmt.Errorf("open dump: %w", err)
	}
	defer reader.Close()

	if int64(reader.Len()) > l.opts.MaxBytes {
		return "", "", fmt.Errorf("%w: %s is %d bytes", ErrTooLarge, p, reader.Len())
	}
	buf := make([]byte, reader.Len())
	if _, err := reader.ReadAt(buf, 0); err != nil && !errors.Is(err, io.EOF) {
		return "", "", fmt.Errorf("read dump: %w", err)
	}
	return string(buf), filepath.Base(p), nil
}

func (l *Loader) loadHTTP(ctx context.Context, u *url.URL) (string, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", "", err
	}
	resp, err := l.http.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("fetch dump: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("fetch dump: %s returned %s", u.Redacted(), resp.Status)
	}
	raw, err := l.readLimited(resp.Body)
	if err != nil {
		return "", "", err
	}
	return raw, path.Base(u.Path), nil
}

func (l *Loader) loadS3(ctx context.Context, u *url.URL) (string, string, error) {
	bucket, key := u.Host, strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return "", "", fmt.Errorf("%w: s3 location needs bucket and key", ErrUnsupportedLocation)
	}
	client, err := l.s3Client(ctx)
	if err != nil {
		return "", "", err
	}

	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", "", fmt.Errorf("get s3://%s/%s: %w", bucket, key, err)
	}
	defer out.Body.Close()

	if out.ContentLength != nil && *out.ContentLength > l.opts.MaxBytes {
		return "", "", fmt.Errorf("%w: s3://%s/%s is %d bytes", ErrTooLarge, bucket, key, *out.ContentLength)
	}
	raw, err := l.readLimited(out.Body)
	if err != nil {
		return "", "", err
	}
	return raw, path.Base(key), nil
}

func (l *Loader) s3Client(ctx context.Context) (S3API, error) {
	l.s3Once.Do(func() {
		if l.s3 != nil {
			return
		}
		var loadOpts []func(*awsconfig.LoadOptions) error
		if l.opts.S3Region != "" {
			loadOpts = append(loadOpts, awsconfig.WithRegion(l.opts.S3Region))
		}
		if l.opts.S3AccessKeyID != "" {
			loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(l.opts.S3AccessKeyID, l.opts.S3SecretKey, "")))
		}
		cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
		if err != nil {
			l.s3Err = fmt.Errorf("load aws config: %w", err)
			return
		}
		l.s3 = s3.NewFromConfig(cfg, func(o *s3.Options) {
			if l.opts.S3Endpoint != "" {
				o.BaseEndpoint = aws.String(l.opts.S3Endpoint)
				o.UsePathStyle = true
			}
		})
	})
	return l.s3, l.s3Err
}

func (l *Loader) readLimited(r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, l.opts.MaxBytes+1))
	if err != nil {
		return "", fmt.Errorf("read dump: %w", err)
	}
	if int64(len(data)) > l.opts.MaxBytes {
		return "", fmt.Errorf("%w: more than %d bytes", ErrTooLarge, l.opts.MaxBytes)
	}
	return string(data), nil
}

// OptionsFrom maps the source section of the process config
func OptionsFrom(cfg config.SourceConfig) Options {
	return Options{
		MaxBytes:      cfg.MaxBytes,
		Timeout:       cfg.Timeout,
		S3Region:      cfg.S3Region,
		S3Endpoint:    cfg.S3Endpoint,
		S3AccessKeyID: cfg.S3AccessKeyID,
		S3SecretKey:   cfg.S3SecretKey,
	}
}
