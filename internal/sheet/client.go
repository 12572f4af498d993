package sheet

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
)

// SourceKind selects where a matrix is read from.
type SourceKind string

const (
	SourceFile SourceKind = "file"
	SourceURL  SourceKind = "url"
)

// Format is the encoding of an export.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// maxExportBytes caps the size of an export. Larger exports fail with
// ErrExportTooLarge rather than being cut short.
const maxExportBytes = 32 << 20

// ErrExportTooLarge is returned when an export exceeds the size cap.
var ErrExportTooLarge = errors.New("export exceeds size limit")

// Source describes one spreadsheet export.
type Source struct {
	Kind   SourceKind
	Path   string // for SourceFile
	URL    string // for SourceURL
	Format Format // empty means infer from the path/URL, defaulting to csv
}

// Client reads spreadsheet exports from disk or over HTTP.
type Client struct {
	FS   afero.Fs
	HTTP *http.Client
	// MaxBytes caps an export's size; zero means 32 MiB.
	MaxBytes int64
}

// NewClient creates a Client on the OS filesystem with the given HTTP timeout.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		FS:   afero.NewOsFs(),
		HTTP: &http.Client{Timeout: timeout},
	}
}

// Load fetches and decodes the export described by src. Any failure is
// returned as a single error; there is no partial matrix.
func (c *Client) Load(ctx context.Context, src Source) (Matrix, error) {
	var (
		data []byte
		err  error
	)
	switch src.Kind {
	case SourceFile:
		data, err = c.readFile(src.Path)
	case SourceURL:
		data, err = c.fetch(ctx, src.URL)
	default:
		return nil, fmt.Errorf("unsupported source kind %q", src.Kind)
	}
	if err != nil {
		return nil, err
	}

	switch src.format() {
	case FormatJSON:
		return ReadJSON(data)
	default:
		return ReadCSV(strings.NewReader(string(data)))
	}
}

func (c *Client) readFile(path string) ([]byte, error) {
	if path == "" {
		return nil, fmt.Errorf("file source: no path given")
	}
	f, err := c.FS.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", path, err)
	}
	defer f.Close()

	data, err := readCapped(f, c.limit())
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", path, err)
	}
	return data, nil
}

func (c *Client) fetch(ctx context.Context, url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("url source: no url given")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("GET %s returned %d", url, resp.StatusCode)
	}

	data, err := readCapped(resp.Body, c.limit())
	if err != nil {
		return nil, fmt.Errorf("read export body: %w", err)
	}
	return data, nil
}

// readCapped reads all of r, failing once more than limit bytes arrive.
func readCapped(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w (%d bytes)", ErrExportTooLarge, limit)
	}
	return data, nil
}

func (c *Client) limit() int64 {
	if c.MaxBytes > 0 {
		return c.MaxBytes
	}
	return maxExportBytes
}

func (s Source) format() Format {
	if s.Format != "" {
		return s.Format
	}
	name := s.Path
	if s.Kind == SourceURL {
		name = s.URL
		if strings.Contains(name, "format=json") {
			return FormatJSON
		}
	}
	if strings.EqualFold(filepath.Ext(name), ".json") {
		return FormatJSON
	}
	return FormatCSV
}
