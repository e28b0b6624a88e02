// render.go
//
// Network boot configuration manager with weighted host profiles and one-shot alias overrides
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of bootmgr.
// bootmgr is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// bootmgr is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with bootmgr.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

// Package render turns a resource's template locator and a host's attributes
// into boot configuration text. Templates use Jinja-compatible syntax through
// pongo2 and are loaded from a single template directory.
package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/flosch/pongo2/v6"

	"github.com/localnerve/bootmgr/internal/types"
)

const uriScheme = "file://"

// DefaultMaxBytes bounds the size of a template file.
const DefaultMaxBytes int64 = 1 << 20

// MaxIncludes bounds the number of templates one render may load through
// include, extends or import.
const MaxIncludes = 32

// ErrInvalidURI is returned for template locators that are not file:// URIs.
var ErrInvalidURI = errors.New("unable to parse template URI")

var contextKeyRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func init() {
	if err := pongo2.RegisterFilter("from_json", filterFromJSON); err != nil {
		panic(err)
	}
}

// Renderer renders a template locator against a set of attributes.
type Renderer interface {
	Render(templateURI string, attributes map[string]string) (string, error)
}

// ParseTemplateURI returns the template path of a file:// locator.
func ParseTemplateURI(uri string) (string, error) {
	path, ok := strings.CutPrefix(uri, uriScheme)
	if !ok || path == "" {
		return "", ErrInvalidURI
	}
	return path, nil
}

// FileRenderer loads templates from a directory on the local filesystem.
type FileRenderer struct {
	root     string
	maxBytes int64
}

// NewFileRenderer returns a renderer rooted at dir. A maxBytes of zero uses DefaultMaxBytes.
func NewFileRenderer(dir string, maxBytes int64) *FileRenderer {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &FileRenderer{root: dir, maxBytes: maxBytes}
}

// Root returns the template directory.
func (r *FileRenderer) Root() string {
	return r.root
}

// Check reports whether the template directory is usable.
func (r *FileRenderer) Check() error {
	info, err := os.Stat(r.root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", r.root)
	}
	return nil
}

// Render implements Renderer. Failures come back as render CustomErrors whose
// message names the template or the evaluation error.
func (r *FileRenderer) Render(templateURI string, attributes map[string]string) (string, error) {
	name, err := ParseTemplateURI(templateURI)
	if err != nil {
		return "", types.NewValidationError("Unable to parse template URI")
	}

	src, err := r.load(name)
	if err != nil {
		return "", err
	}

	local, err := pongo2.NewLocalFileSystemLoader(r.root)
	if err != nil {
		return "", notFound(name, err)
	}
	loader := &boundedLoader{TemplateLoader: local, maxBytes: r.maxBytes, maxLoads: MaxIncludes}
	set := pongo2.NewSet("bootmgr", loader)

	tpl, err := set.FromBytes(src)
	if err != nil {
		return "", renderFailed(err)
	}

	ctx := make(pongo2.Context, len(attributes))
	for k, v := range attributes {
		// Keys that are not identifiers cannot be referenced from a template.
		if contextKeyRe.MatchString(k) {
			ctx[k] = v
		}
	}

	out, err := tpl.Execute(ctx)
	if err != nil {
		return "", renderFailed(err)
	}
	return out, nil
}

// boundedLoader caps how many templates a single render loads and how large
// each may be. A template that includes itself fails here instead of
// recursing without end.
type boundedLoader struct {
	pongo2.TemplateLoader
	maxBytes int64
	maxLoads int
	loads    int
}

func (l *boundedLoader) Get(path string) (io.Reader, error) {
	l.loads++
	if l.loads > l.maxLoads {
		return nil, fmt.Errorf("more than %d nested templates", l.maxLoads)
	}

	rd, err := l.TemplateLoader.Get(path)
	if err != nil {
		return nil, err
	}
	src, err := io.ReadAll(io.LimitReader(rd, l.maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(src)) > l.maxBytes {
		return nil, fmt.Errorf("template %s exceeds %d bytes", path, l.maxBytes)
	}
	return bytes.NewReader(src), nil
}

func (r *FileRenderer) load(name string) ([]byte, error) {
	rel := strings.TrimLeft(filepath.ToSlash(name), "/")
	for _, part := range strings.Split(rel, "/") {
		if part == ".." {
			return nil, notFound(name, nil)
		}
	}

	f, err := os.Open(filepath.Join(r.root, filepath.FromSlash(rel)))
	if err != nil {
		return nil, notFound(name, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		return nil, notFound(name, err)
	}
	if info.Size() > r.maxBytes {
		return nil, renderFailed(fmt.Errorf("template %s exceeds %d bytes", name, r.maxBytes))
	}

	src, err := io.ReadAll(io.LimitReader(f, r.maxBytes+1))
	if err != nil {
		return nil, renderFailed(err)
	}
	if int64(len(src)) > r.maxBytes {
		return nil, renderFailed(fmt.Errorf("template %s exceeds %d bytes", name, r.maxBytes))
	}
	return src, nil
}

func notFound(name string, cause error) error {
	return types.NewRenderError("Template not found on server: "+name, cause)
}

func renderFailed(cause error) error {
	return types.NewRenderError("Error while rendering template: "+cause.Error(), cause)
}

func filterFromJSON(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	dec := json.NewDecoder(strings.NewReader(in.String()))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, &pongo2.Error{
			Sender:    "filter:from_json",
			OrigError: err,
		}
	}
	return pongo2.AsValue(v), nil
}
