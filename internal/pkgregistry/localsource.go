package pkgregistry

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Masterminds/semver/v3"
)

// LocalSource is a filesystem-backed Source: packages live under
// Root/<namespace>/<name>/<version>/, every regular file beneath a
// version directory becomes one Manifest.Files entry (relative to the
// version directory), and EntryFile defaults to "main.typ" unless a
// file by that name isn't present, in which case the first file found
// in directory order is used. No example repo in the pack implements
// directory-tree package scanning, so this walks the tree with the
// standard library rather than a borrowed pattern (see DESIGN.md).
type LocalSource struct {
	Root string
}

// NewLocalSource constructs a LocalSource rooted at root.
func NewLocalSource(root string) *LocalSource {
	return &LocalSource{Root: root}
}

func (l *LocalSource) packageDir(namespace, name string) string {
	return filepath.Join(l.Root, namespace, name)
}

// ListVersions reads the version subdirectories of namespace/name.
func (l *LocalSource) ListVersions(ctx context.Context, namespace, name string) ([]*semver.Version, error) {
	entries, err := os.ReadDir(l.packageDir(namespace, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list versions for %s/%s: %w", namespace, name, err)
	}

	var versions []*semver.Version
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		v, err := semver.NewVersion(e.Name())
		if err != nil {
			continue // non-version directory entries are ignored, not fatal
		}
		versions = append(versions, v)
	}
	return versions, nil
}

// FetchManifest reads every regular file under the version directory
// into a Manifest.
func (l *LocalSource) FetchManifest(ctx context.Context, spec PackageSpec) (*Manifest, error) {
	if spec.Version == nil {
		return nil, fmt.Errorf("FetchManifest requires a resolved version for %s/%s", spec.Namespace, spec.Name)
	}
	dir := filepath.Join(l.packageDir(spec.Namespace, spec.Name), spec.Version.String())

	files := make(map[string]string)
	var first string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		files[rel] = string(data)
		if first == "" {
			first = rel
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read package %s: %w", spec.String(), err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("package %s has no files", spec.String())
	}

	entry := "main.typ"
	if _, ok := files[entry]; !ok {
		entry = first
	}

	return &Manifest{Spec: spec, EntryFile: entry, Files: files}, nil
}

// ListNamespace lists the package names published under namespace.
func (l *LocalSource) ListNamespace(ctx context.Context, namespace string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(l.Root, namespace))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list namespace %s: %w", namespace, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}
