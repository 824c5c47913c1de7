package content

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/cockroachdb/errors"
)

// DirName is the directory FindRoot looks for.
const DirName = "Content"

var ErrNotFound = errors.New("content directory not found")

// FindRoot walks up from start until it finds a directory containing a
// Content directory, and returns the path of that Content directory.
func FindRoot(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", errors.Wrap(err, "resolve start directory")
	}

	for {
		candidate := filepath.Join(dir, DirName)
		info, err := os.Stat(candidate)
		if err == nil && info.IsDir() {
			return candidate, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.Wrapf(ErrNotFound, "no %s directory above %s", DirName, start)
		}
		dir = parent
	}
}

// Resolver reads assets by slash-separated names relative to a content root.
type Resolver struct {
	root string
	fsys fs.FS
}

// Open returns a Resolver rooted at dir. An empty dir is searched for upward
// from the working directory.
func Open(dir string) (*Resolver, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "get working directory")
		}

		dir, err = FindRoot(wd)
		if err != nil {
			return nil, err
		}
	}

	info, err := os.Stat(dir)
	if err != nil {
		return nil, errors.Wrap(err, "open content directory")
	}
	if !info.IsDir() {
		return nil, errors.Newf("content path %s is not a directory", dir)
	}

	return &Resolver{root: dir, fsys: os.DirFS(dir)}, nil
}

// NewResolver reads assets out of fsys.
func NewResolver(fsys fs.FS) *Resolver {
	return &Resolver{fsys: fsys}
}

func (r *Resolver) Root() string {
	return r.root
}

// Resolve maps an asset name onto the filesystem. Resolvers not backed by a
// directory return the cleaned name.
func (r *Resolver) Resolve(name string) string {
	name = path.Clean(filepath.ToSlash(name))
	if r.root == "" {
		return name
	}
	return filepath.Join(r.root, filepath.FromSlash(name))
}

func (r *Resolver) ReadFile(name string) ([]byte, error) {
	data, err := fs.ReadFile(r.fsys, path.Clean(filepath.ToSlash(name)))
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", name)
	}
	return data, nil
}

func (r *Resolver) Exists(name string) bool {
	_, err := fs.Stat(r.fsys, path.Clean(filepath.ToSlash(name)))
	return err == nil
}
