package main

import (
	"context"
	"io/fs"
	"net"
	"path/filepath"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/subplay/subplay/internal/catalog"
	"github.com/subplay/subplay/internal/config"
	"github.com/subplay/subplay/internal/media"
	"github.com/subplay/subplay/internal/mount"
	"github.com/subplay/subplay/internal/storage"
	"github.com/subplay/subplay/web"
)

// openMedia returns the catalog lister and media source of the configured
// backend. The local media directory is created when missing.
func openMedia(ctx context.Context, osfs afero.Fs, cfg config.Config) (catalog.Lister, media.Source, error) {
	if cfg.MediaSource == config.SourceS3 {
		store, err := storage.New(ctx, cfg.S3)
		if err != nil {
			return nil, nil, errors.Wrap(err, "storage initialization")
		}
		if err := store.CheckBucket(ctx); err != nil {
			return nil, nil, errors.Wrap(err, "storage bucket check")
		}
		log.WithField("bucket", cfg.S3.Bucket).Info("storage bucket ready")
		return store, media.NewS3Source(store), nil
	}

	dir, err := filepath.Abs(cfg.MediaDir)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "media dir %s", cfg.MediaDir)
	}
	lister := catalog.NewDirLister(osfs, dir)
	if err := lister.EnsureDir(); err != nil {
		return nil, nil, err
	}
	return lister, media.NewFSSource(osfs, dir), nil
}

// selectMedia scans the catalog and resolves which video and subtitle to serve.
func selectMedia(ctx context.Context, lister catalog.Lister, cfg config.Config, prompter catalog.Prompter) (catalog.Selection, error) {
	cat, err := catalog.Scan(ctx, lister)
	if err != nil {
		return catalog.Selection{}, errors.Wrap(err, "scan media")
	}
	sel, err := cat.Choose(catalog.Selection{Video: cfg.Video, Subtitle: cfg.Subtitle}, prompter)
	if err != nil {
		return catalog.Selection{}, err
	}
	return sel, nil
}

// webRoot returns the directory that holds the host page and static assets.
// A web dir without index.html is ignored in favour of the built-in page.
func webRoot(osfs afero.Fs, dir string) (fs.FS, error) {
	if dir != "" {
		ok, err := afero.Exists(osfs, filepath.Join(dir, "index.html"))
		if err != nil {
			return nil, errors.Wrapf(err, "web dir %s", dir)
		}
		if ok {
			log.WithField("dir", dir).Info("serving host page from web dir")
			return afero.NewIOFS(afero.NewBasePathFs(osfs, dir)), nil
		}
		log.WithField("dir", dir).Warn("web dir has no index.html, using built-in page")
	}
	return fs.Sub(web.StaticFS, "static")
}

func bootstrapMount(root fs.FS, anchor string) (*mount.Mount, error) {
	shell, err := root.Open("index.html")
	if err != nil {
		return nil, errors.Wrap(err, "open host page")
	}
	defer func() { _ = shell.Close() }()

	m, err := mount.Bootstrap(shell, anchor)
	if err != nil {
		return nil, errors.Wrapf(err, "mount #%s", anchor)
	}
	return m, nil
}

// firstIPv4 returns the first non-loopback IPv4 address, or "localhost".
func firstIPv4(addrs []net.Addr) string {
	for _, addr := range addrs {
		ipnet, ok := addr.(*net.IPNet)
		if !ok || ipnet.IP.IsLoopback() {
			continue
		}
		if ip := ipnet.IP.To4(); ip != nil {
			return ip.String()
		}
	}
	return "localhost"
}

func localIP() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		log.WithError(err).Debug("failed to list interface addresses")
		return "localhost"
	}
	return firstIPv4(addrs)
}
