package server

import (
	"io/fs"
	"net/http"
	"strings"
)

// spaFileServer serves static assets from the web directory and hands every
// other path to the player page, so client-side deep links keep working.
type spaFileServer struct {
	fileServer http.Handler
	fileSystem fs.FS
	page       http.Handler
}

func newSPAFileServer(fsys fs.FS, page http.Handler) *spaFileServer {
	s := &spaFileServer{fileSystem: fsys, page: page}
	if fsys != nil {
		s.fileServer = http.FileServer(http.FS(fsys))
	}
	return s
}

func (s *spaFileServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.NotFound(w, r)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/")
	if strings.HasPrefix(path, "api/") {
		http.NotFound(w, r)
		return
	}
	if s.fileSystem == nil || path == "" || path == "index.html" {
		s.page.ServeHTTP(w, r)
		return
	}

	info, err := fs.Stat(s.fileSystem, path)
	if err != nil || info.IsDir() {
		s.page.ServeHTTP(w, r)
		return
	}

	s.fileServer.ServeHTTP(w, r)
}
