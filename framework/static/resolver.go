// Package static maps request paths to files under a root directory.
package static

import (
	"github.com/taoxinyi/ruad/framework/wire"
	"io"
	"io/fs"
	"path"
	"strconv"
	"strings"
)

const indexPath = "/index.html"

// Resolver serves regular files from a read-only file system
type Resolver struct {
	root fs.FS
}

// New returns a Resolver serving files from root, typically os.DirFS("public")
func New(root fs.FS) *Resolver {
	return &Resolver{root: root}
}

// Resolve maps urlPath to a response.
// Any path containing ".." is refused with 403 before the file system is touched.
// The path is cleaned and "/" is served as "/index.html". Missing files and directories yield 404, read
// failures 500. A 200 response carries the whole file and a Content-Type header.
func (r *Resolver) Resolve(urlPath string) *wire.Response {
	if strings.Contains(urlPath, "..") {
		return textResponse(wire.StatusForbidden)
	}
	// "/./a" and "//a" name the same file as "/a"
	filePath := path.Clean(urlPath)
	if filePath == "/" {
		filePath = indexPath
	} else if strings.HasSuffix(urlPath, "/") {
		// only a directory can be named with a trailing slash
		return textResponse(wire.StatusNotFound)
	}
	name := strings.TrimPrefix(filePath, "/")
	if !fs.ValidPath(name) {
		return textResponse(wire.StatusNotFound)
	}

	f, err := r.root.Open(name)
	if err != nil {
		return textResponse(wire.StatusNotFound)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		return textResponse(wire.StatusNotFound)
	}
	size := info.Size()
	if size < 0 {
		return textResponse(wire.StatusInternalServerError)
	}
	contents := make([]byte, size)
	// a short read is an error, not a smaller file
	if _, err := io.ReadFull(f, contents); err != nil {
		return textResponse(wire.StatusInternalServerError)
	}

	resp := wire.NewResponse(wire.StatusOK, contents)
	resp.AddHeader("Content-Type", ContentType(filePath))
	return resp
}

// textResponse builds the fixed "<code> <reason>" error responses
func textResponse(code int) *wire.Response {
	text := wire.StatusText(code)
	return wire.NewResponse(code, []byte(strconv.Itoa(code)+" "+text))
}
