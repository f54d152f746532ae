// Package export writes query result frames as CSV, either to a folder in
// the project tree or to the object store configured in [export].
package export

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bignyap/go-sqlhelper/config"
	"github.com/bignyap/go-sqlhelper/logger/api"
	"github.com/bignyap/go-sqlhelper/logger/factory"
	"github.com/bignyap/go-sqlhelper/project"
	"github.com/bignyap/go-sqlhelper/query"
	storageapi "github.com/bignyap/go-sqlhelper/storage/api"
	storagefactory "github.com/bignyap/go-sqlhelper/storage/factory"
)

const (
	ContentTypeCSV = "text/csv"

	// LocalFolder is the project folder SaveCSV writes into.
	LocalFolder = "exports"
)

// Exporter uploads frames to a storage service under a fixed prefix.
type Exporter struct {
	store  storageapi.StorageService
	prefix string
	log    api.Logger
}

func NewExporter(store storageapi.StorageService, prefix string) *Exporter {
	return &Exporter{
		store:  store,
		prefix: prefix,
		log:    factory.GetGlobalLogger().WithComponent("export"),
	}
}

// FromConfig builds the storage service named by cfg and wraps it.
func FromConfig(cfg config.ExportConfig) (*Exporter, error) {
	store, err := storagefactory.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	return NewExporter(store, cfg.Prefix), nil
}

// WriteCSV uploads df as name, adding a .csv extension when missing, and
// returns the stored object path.
func (e *Exporter) WriteCSV(ctx context.Context, name string, df query.Frame) (string, error) {
	data, err := encodeCSV(df)
	if err != nil {
		return "", err
	}

	path, err := e.store.Upload(ctx, e.prefix, csvName(name), bytes.NewReader(data), int64(len(data)), ContentTypeCSV)
	if err != nil {
		return "", fmt.Errorf("export %s: %w", name, err)
	}

	e.log.Info(ctx, "frame exported",
		api.String("path", path),
		api.Int("rows", df.Nrow()),
	)
	return path, nil
}

// Link returns a presigned download URL for the export called name, valid
// for expiry.
func (e *Exporter) Link(ctx context.Context, name string, expiry time.Duration) (string, error) {
	if expiry < time.Second {
		return "", fmt.Errorf("export: link expiry %s is shorter than a second", expiry)
	}
	url, err := e.store.GetPresignedURL(ctx, e.objectPath(name), int(expiry/time.Second))
	if err != nil {
		return "", fmt.Errorf("export %s: %w", name, err)
	}
	return url, nil
}

// Fetch downloads the export called name into the local exports folder and
// returns the file path.
func (e *Exporter) Fetch(ctx context.Context, name string) (string, error) {
	data, contentType, err := e.store.Download(ctx, e.objectPath(name))
	if err != nil {
		return "", fmt.Errorf("export %s: %w", name, err)
	}
	if contentType != "" && !strings.HasPrefix(contentType, ContentTypeCSV) {
		e.log.Warn(ctx, "unexpected content type", api.String("name", name), api.String("content_type", contentType))
	}

	dir, err := project.EnsureFolder(LocalFolder)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, csvName(filepath.Base(name)))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", &project.PathError{Op: "write", Path: path, Err: err}
	}
	return path, nil
}

// Remove deletes the export called name from the store.
func (e *Exporter) Remove(ctx context.Context, name string) error {
	path := e.objectPath(name)
	if err := e.store.Delete(ctx, path); err != nil {
		return fmt.Errorf("export %s: %w", name, err)
	}
	e.log.Info(ctx, "export removed", api.String("path", path))
	return nil
}

func (e *Exporter) objectPath(name string) string {
	return storageapi.ObjectPath(e.prefix, csvName(name))
}

// SaveCSV writes df to the exports folder below the project base directory
// and returns the file path.
func SaveCSV(name string, df query.Frame) (string, error) {
	dir, err := project.EnsureFolder(LocalFolder)
	if err != nil {
		return "", err
	}
	data, err := encodeCSV(df)
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, csvName(name))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", &project.PathError{Op: "write", Path: path, Err: err}
	}
	return path, nil
}

func encodeCSV(df query.Frame) ([]byte, error) {
	if df.Err != nil {
		return nil, fmt.Errorf("export: frame has error: %w", df.Err)
	}
	var buf bytes.Buffer
	if err := df.WriteCSV(&buf); err != nil {
		return nil, fmt.Errorf("export: encode csv: %w", err)
	}
	return buf.Bytes(), nil
}

func csvName(name string) string {
	if strings.HasSuffix(strings.ToLower(name), ".csv") {
		return name
	}
	return name + ".csv"
}
