package loco

import (
	"context"
	"errors"
	"fmt"

	"github.com/konstantinfoerster/loco-importer-go/internal/aio"
	"github.com/konstantinfoerster/loco-importer-go/internal/android"
	"github.com/konstantinfoerster/loco-importer-go/internal/archive"
	"github.com/konstantinfoerster/loco-importer-go/internal/reconcile"
	"github.com/konstantinfoerster/loco-importer-go/internal/storage"
	"github.com/rs/zerolog/log"
)

// ErrFetch marks a failed download. Nothing in the project has been touched when it occurs.
var ErrFetch = errors.New("failed to download strings")

const (
	downloadDir    = "downloads"
	baseArchive    = "android.zip"
	featureArchive = "tag.zip"
)

// Fetcher downloads exports into a scratch store and prepares the res tree to import from.
type Fetcher struct {
	client       *Client
	store        storage.Storer
	baseTag      string
	valueFolders []string
	indent       string
}

func NewFetcher(client *Client, store storage.Storer, baseTag string, valueFolders []string, indent string) *Fetcher {
	return &Fetcher{
		client:       client,
		store:        store,
		baseTag:      baseTag,
		valueFolders: valueFolders,
		indent:       indent,
	}
}

// Downloads are the stored export archives of one run.
type Downloads struct {
	Base string
	// Feature is empty without a feature tag.
	Feature string
}

// Fetch downloads and extracts the exports and returns the res folder to import from.
func (f *Fetcher) Fetch(ctx context.Context, key, featureTag string) (string, error) {
	d, err := f.Download(ctx, key, featureTag)
	if err != nil {
		return "", err
	}

	return f.Extract(d)
}

// Download empties the scratch store and downloads the baseline export. With a feature tag the
// export of the feature is downloaded as well, excluding strings of all other tags.
func (f *Fetcher) Download(ctx context.Context, key, featureTag string) (Downloads, error) {
	if err := f.store.Reset(); err != nil {
		return Downloads{}, err
	}

	var d Downloads
	var err error
	d.Base, err = f.download(ctx, key, f.baseTag, baseArchive)
	if err != nil {
		return Downloads{}, err
	}

	if featureTag != "" {
		tags, err := f.client.Tags(ctx, key)
		if err != nil {
			log.Warn().Err(err).Msg("failed to list tags, no tags are excluded")
		}

		d.Feature, err = f.download(ctx, key, FeatureFilter(featureTag, f.baseTag, tags), featureArchive)
		if err != nil {
			return Downloads{}, err
		}
	}
	log.Info().Msg("String resources downloaded successfully")

	return d, nil
}

// Extract unpacks the downloads and returns the res folder. With a feature download the
// returned res folder only holds the strings present in both exports.
func (f *Fetcher) Extract(d Downloads) (string, error) {
	baseRes, err := f.extract(d.Base, "android")
	if err != nil {
		return "", err
	}
	if d.Feature == "" {
		return baseRes, nil
	}

	featureRes, err := f.extract(d.Feature, "tag")
	if err != nil {
		return "", err
	}

	return f.intersect(baseRes, featureRes)
}

// Cleanup removes the scratch store with all downloads.
func (f *Fetcher) Cleanup() error {
	log.Info().Msg("Deleting temporary downloaded strings resources")

	return f.store.Remove()
}

func (f *Fetcher) download(ctx context.Context, key, filter, name string) (string, error) {
	resp, err := f.client.Export(ctx, key, filter)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrFetch, err)
	}
	defer aio.Close(resp.Body)

	stored, err := f.store.Store(resp.Body, downloadDir, name)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrFetch, err)
	}
	log.Debug().Str("filter", filter).Str("file", stored.Path).Msg("stored export")

	return stored.AbsolutePath, nil
}

func (f *Fetcher) extract(zipPath, dir string) (string, error) {
	dest, err := f.store.Path(dir)
	if err != nil {
		return "", err
	}

	if _, err := archive.Unzip(zipPath, dest); err != nil {
		return "", err
	}

	return archive.ResFolder(dest)
}

func (f *Fetcher) intersect(baseRes, featureRes string) (string, error) {
	out, err := f.store.Path("merged", "res")
	if err != nil {
		return "", err
	}

	for _, folder := range f.valueFolders {
		baseline, err := android.ParseFile(android.Path(baseRes, folder))
		if err != nil {
			return "", err
		}
		feature, err := android.ParseFile(android.Path(featureRes, folder))
		if err != nil {
			return "", err
		}

		merged := reconcile.Intersect(baseline, feature)
		merged.Indent = f.indent
		if err := merged.WriteFile(android.Path(out, folder)); err != nil {
			return "", err
		}
	}

	return out, nil
}
