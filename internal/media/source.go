package media

import (
	"context"
	"io"
	"io/fs"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/subplay/subplay/internal/storage"
)

var ErrNotFound = errors.New("media not found")

// Object is an opened media file. Content must be closed by the caller.
type Object struct {
	Name    string
	Size    int64
	ModTime time.Time
	Content io.ReadSeekCloser
}

type Source interface {
	Open(ctx context.Context, name string) (*Object, error)
}

// FSSource serves media from a directory.
type FSSource struct {
	fs afero.Fs
}

func NewFSSource(fs afero.Fs, dir string) *FSSource {
	return &FSSource{fs: afero.NewBasePathFs(fs, dir)}
}

func (s *FSSource) Open(_ context.Context, name string) (*Object, error) {
	f, err := s.fs.Open(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrap(ErrNotFound, name)
		}
		return nil, errors.Wrapf(err, "open %s", name)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, errors.Wrapf(err, "stat %s", name)
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, errors.Wrapf(ErrNotFound, "%s is a directory", name)
	}

	return &Object{Name: name, Size: info.Size(), ModTime: info.ModTime(), Content: f}, nil
}

// ObjectStore is the subset of *storage.Storage the S3 source needs.
type ObjectStore interface {
	HeadObject(ctx context.Context, name string) (storage.ObjectInfo, error)
	GetObjectFrom(ctx context.Context, name string, offset int64) (io.ReadCloser, error)
}

// S3Source serves media from an object store. Reads are issued lazily from the
// current offset, so seeking before reading costs a single ranged GET.
type S3Source struct {
	store ObjectStore
}

func NewS3Source(store ObjectStore) *S3Source {
	return &S3Source{store: store}
}

func (s *S3Source) Open(ctx context.Context, name string) (*Object, error) {
	info, err := s.store.HeadObject(ctx, name)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, errors.Wrap(ErrNotFound, name)
		}
		return nil, err
	}

	return &Object{
		Name:    name,
		Size:    info.Size,
		ModTime: info.LastModified,
		Content: &objectReader{ctx: ctx, store: s.store, name: name, size: info.Size},
	}, nil
}

type objectReader struct {
	ctx    context.Context
	store  ObjectStore
	name   string
	size   int64
	offset int64
	body   io.ReadCloser
}

func (r *objectReader) Read(p []byte) (int, error) {
	if r.offset >= r.size {
		return 0, io.EOF
	}
	if r.body == nil {
		body, err := r.store.GetObjectFrom(r.ctx, r.name, r.offset)
		if err != nil {
			return 0, err
		}
		r.body = body
	}

	n, err := r.body.Read(p)
	r.offset += int64(n)
	return n, err
}

func (r *objectReader) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = r.offset + offset
	case io.SeekEnd:
		abs = r.size + offset
	default:
		return 0, errors.Errorf("seek: invalid whence %d", whence)
	}
	if abs < 0 {
		return 0, errors.New("seek: negative position")
	}

	if abs != r.offset {
		r.closeBody()
		r.offset = abs
	}
	return abs, nil
}

func (r *objectReader) Close() error {
	r.closeBody()
	return nil
}

func (r *objectReader) closeBody() {
	if r.body != nil {
		_ = r.body.Close()
		r.body = nil
	}
}
