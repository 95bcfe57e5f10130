package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/lexops/causelist/pkg/logger"
)

// Result carries the fetched cause-list PDF and where it came from / was
// archived.
type Result struct {
	Data        []byte `json:"-"`
	SourceURL   string `json:"source_url"`
	ArchivePath string `json:"archive_path"`
	Size        int64  `json:"size"`
}

// Fetcher retrieves the daily cause-list PDF for a listing date.
type Fetcher interface {
	Fetch(ctx context.Context, date string) (*Result, error)
}

// HTTPFetcher downloads the published cause-list PDF over HTTP and archives
// a copy on disk.
type HTTPFetcher struct {
	urlTemplate string
	archivePath string
	retries     int
	logger      *logger.Logger
	client      *http.Client
}

// NewHTTPFetcher creates a fetcher. urlTemplate must contain one %s verb
// for the YYYY-MM-DD listing date.
func NewHTTPFetcher(urlTemplate, archivePath string, timeout time.Duration, retries int, logger *logger.Logger) *HTTPFetcher {
	if retries <= 0 {
		retries = 3
	}
	return &HTTPFetcher{
		urlTemplate: urlTemplate,
		archivePath: archivePath,
		retries:     retries,
		logger:      logger,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Fetch downloads the PDF for the given date, retrying transient failures,
// and archives it under <archive>/pdfs/YYYY/MM/.
func (f *HTTPFetcher) Fetch(ctx context.Context, date string) (*Result, error) {
	url := fmt.Sprintf(f.urlTemplate, date)

	var data []byte
	err := retry.Do(
		func() error {
			var err error
			data, err = f.download(ctx, url)
			return err
		},
		retry.Attempts(uint(f.retries)),
		retry.Delay(2*time.Second),
		retry.DelayType(retry.BackOffDelay),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			f.logger.Warn("Cause-list download retry", "attempt", n+1, "url", url, "error", err)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to download cause list: %w", err)
	}

	archived, err := f.archive(date, data)
	if err != nil {
		// Archiving is best effort; the pipeline runs on the bytes
		f.logger.Warn("Failed to archive cause-list PDF", "date", date, "error", err)
	}

	f.logger.Info("Cause-list PDF fetched", "date", date, "size", len(data), "path", archived)

	return &Result{
		Data:        data,
		SourceURL:   url,
		ArchivePath: archived,
		Size:        int64(len(data)),
	}, nil
}

func (f *HTTPFetcher) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad status: %s", resp.Status)
	}

	return io.ReadAll(resp.Body)
}

// archive writes the PDF under pdfs/YYYY/MM/causelist_<date>.pdf
func (f *HTTPFetcher) archive(date string, data []byte) (string, error) {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		day = time.Now()
	}

	dirPath := filepath.Join(f.archivePath, "pdfs",
		fmt.Sprintf("%d", day.Year()),
		fmt.Sprintf("%02d", day.Month()))
	if err := os.MkdirAll(dirPath, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	fullPath := filepath.Join(dirPath, fmt.Sprintf("causelist_%s.pdf", date))
	if err := os.WriteFile(fullPath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	return fullPath, nil
}
