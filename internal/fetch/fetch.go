// Package fetch retrieves attachment bytes from remote storage. It
// normalizes https URLs, gs:// object URLs and in-memory files to a single
// byte-buffer abstraction so the assembly layer never touches transport.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"

	"github.com/claimworks/reportflow/internal/models"
)

const gsScheme = "gs://"

// Error is returned when an attachment reference cannot be resolved to
// bytes: an empty reference, a failed request, or a non-success status.
type Error struct {
	Ref string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Ref, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// statusError marks a response that completed with a non-success status,
// so the retry loop can tell permanent client errors from transient ones.
type statusError struct {
	code   int
	status string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %s", e.status)
}

func (e *statusError) permanent() bool {
	return e.code >= 400 && e.code < 500
}

// Config tunes the fetcher. Zero values fall back to sensible defaults.
type Config struct {
	MaxRetries     int
	InitialBackoff time.Duration
	RequestTimeout time.Duration
}

// Client resolves attachment references to raw bytes. The storage client is
// optional; without it gs:// references fail with an Error.
type Client struct {
	http   *http.Client
	gcs    *storage.Client
	config Config
}

// NewClient builds a fetcher around the given storage client (may be nil).
func NewClient(gcs *storage.Client, config Config) *Client {
	if config.MaxRetries <= 0 {
		config.MaxRetries = 3
	}
	if config.InitialBackoff <= 0 {
		config.InitialBackoff = 500 * time.Millisecond
	}
	if config.RequestTimeout <= 0 {
		config.RequestTimeout = 30 * time.Second
	}
	return &Client{
		http:   &http.Client{Timeout: config.RequestTimeout},
		gcs:    gcs,
		config: config,
	}
}

// Fetch resolves a reference to its bytes. File references are read
// directly with no IO; URL references are fetched with retries.
func (c *Client) Fetch(ctx context.Context, ref models.AttachmentRef) ([]byte, error) {
	switch ref.Kind {
	case models.RefFile:
		if ref.File == nil || len(ref.File.Data) == 0 {
			return nil, &Error{Ref: ref.Name(), Err: fmt.Errorf("empty file reference")}
		}
		return ref.File.Data, nil
	case models.RefURL:
		return c.FetchURL(ctx, ref.URL)
	}
	return nil, &Error{Ref: ref.Name(), Err: fmt.Errorf("unknown reference kind %q", ref.Kind)}
}

// FetchURL retrieves the full body behind an https or gs:// URL. Transient
// failures are retried with doubling backoff; context cancellation aborts
// the backoff wait.
func (c *Client) FetchURL(ctx context.Context, url string) ([]byte, error) {
	if url == "" {
		return nil, &Error{Ref: "<empty>", Err: fmt.Errorf("empty attachment URL")}
	}

	var lastErr error
	backoff := c.config.InitialBackoff

	for attempt := 1; attempt <= c.config.MaxRetries; attempt++ {
		data, err := c.fetchOnce(ctx, url)
		if err == nil {
			return data, nil
		}
		lastErr = err

		// A 4xx will not heal on retry; fail fast and let the batch skip.
		var se *statusError
		if errors.As(err, &se) && se.permanent() {
			return nil, &Error{Ref: url, Err: err}
		}
		slog.Warn("Attachment fetch failed, will retry.",
			"url", url,
			"attempt", attempt,
			"maxRetries", c.config.MaxRetries,
			"backoff", backoff.String(),
			"error", err,
		)
		select {
		case <-time.After(backoff):
			backoff *= 2
		case <-ctx.Done():
			return nil, &Error{Ref: url, Err: ctx.Err()}
		}
	}
	return nil, &Error{Ref: url, Err: lastErr}
}

func (c *Client) fetchOnce(ctx context.Context, url string) ([]byte, error) {
	if strings.HasPrefix(url, gsScheme) {
		return c.fetchObject(ctx, url)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &statusError{code: resp.StatusCode, status: resp.Status}
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}
	return data, nil
}

func (c *Client) fetchObject(ctx context.Context, url string) ([]byte, error) {
	if c.gcs == nil {
		return nil, fmt.Errorf("no storage client configured for %s", url)
	}
	bucket, object, err := splitObjectURL(url)
	if err != nil {
		return nil, err
	}
	readCtx, cancel := context.WithTimeout(ctx, c.config.RequestTimeout)
	defer cancel()

	reader, err := c.gcs.Bucket(bucket).Object(object).NewReader(readCtx)
	if err != nil {
		return nil, fmt.Errorf("failed to get object reader for %s: %w", url, err)
	}
	defer reader.Close()
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read object %s: %w", url, err)
	}
	return data, nil
}

// ListPrefix expands a gs://bucket/prefix/ URL to the object URLs stored
// beneath it, in lexical order. Used to resolve attachment folders into
// explicit reference lists.
func (c *Client) ListPrefix(ctx context.Context, url string) ([]string, error) {
	if c.gcs == nil {
		return nil, &Error{Ref: url, Err: fmt.Errorf("no storage client configured")}
	}
	bucket, prefix, err := splitObjectURL(url)
	if err != nil {
		return nil, &Error{Ref: url, Err: err}
	}

	var urls []string
	it := c.gcs.Bucket(bucket).Objects(ctx, &storage.Query{Prefix: prefix})
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, &Error{Ref: url, Err: fmt.Errorf("listing objects: %w", err)}
		}
		if strings.HasSuffix(attrs.Name, "/") {
			continue // folder placeholder objects
		}
		urls = append(urls, gsScheme+bucket+"/"+attrs.Name)
	}
	sort.Strings(urls)
	return urls, nil
}

func splitObjectURL(url string) (bucket, object string, err error) {
	trimmed := strings.TrimPrefix(url, gsScheme)
	bucket, object, ok := strings.Cut(trimmed, "/")
	if !ok || bucket == "" || object == "" {
		return "", "", fmt.Errorf("malformed object URL %q", url)
	}
	return bucket, object, nil
}
