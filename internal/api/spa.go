package api

import (
	"net/http"
	"os"
)

// spaFileSystem implements http.FileSystem and handles SPA routing by
// falling back to index.html for paths the frontend router owns.
type spaFileSystem struct {
	root http.FileSystem
}

func (s *spaFileSystem) Open(name string) (http.File, error) {
	f, err := s.root.Open(name)
	if os.IsNotExist(err) {
		return s.root.Open("index.html")
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}
