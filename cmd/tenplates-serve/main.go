// Command tenplates-serve maps URL paths to .tenplate files under a
// template root and renders them with each request's query parameters
// bound as params.NAME, mirroring the teacher's examples/*/main.go demo
// servers (SPEC_FULL.md §D).
package main

import (
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	tenplates "github.com/frankiebaffa/tenplates"
	"github.com/frankiebaffa/tenplates/internal/tplerr"
)

func main() {
	var root string
	var addr string
	flag.StringVar(&root, "root", ".", "template root directory")
	flag.StringVar(&addr, "addr", ":8080", "listen address")
	flag.Parse()

	absRoot, err := filepath.Abs(root)
	if err != nil {
		log.Fatalf("resolving template root: %s", err)
	}

	srv := &server{root: absRoot}
	log.Printf("tenplates-serve: serving %s on %s", absRoot, addr)
	log.Fatal(http.ListenAndServe(addr, srv))
}

type server struct {
	root string
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path, err := s.resolve(r.URL.Path)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	f, err := os.Open(path)
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	defer f.Close()

	params := make(map[string]string)
	for k, v := range r.URL.Query() {
		if len(v) > 0 {
			params[k] = v[0]
		}
	}

	var cerr *tplerr.CompileError
	if err := tenplates.CompileWithCtx(f, path, w, params); err != nil {
		if errors.As(err, &cerr) && cerr.Kind == tplerr.Io {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

// resolve maps a request path to a .tenplate file under the template
// root, rejecting any path that would escape it.
func (s *server) resolve(urlPath string) (string, error) {
	clean := filepath.Clean("/" + urlPath)
	rel := strings.TrimPrefix(clean, "/")
	if rel == "" || strings.HasSuffix(clean, "/") {
		rel = filepath.Join(rel, "index.tenplate")
	} else if filepath.Ext(rel) == "" {
		rel += ".tenplate"
	}

	full := filepath.Join(s.root, rel)
	if !strings.HasPrefix(full, s.root+string(filepath.Separator)) && full != s.root {
		return "", errors.New("path escapes template root")
	}
	return full, nil
}
