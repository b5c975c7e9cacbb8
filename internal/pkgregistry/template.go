package pkgregistry

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"
)

// InitTemplate materializes spec's manifest files under dir (or a
// fresh temp directory when dir is empty), matching the original
// doInitTemplate: every declared file is written relative to dir, and
// the resolved entry file's path is returned.
func (r *Registry) InitTemplate(ctx context.Context, spec PackageSpec, dir string) (entryPath string, err error) {
	manifest, err := r.Resolve(ctx, spec)
	if err != nil {
		return "", err
	}

	if dir == "" {
		dir, err = os.MkdirTemp("", "tinymist-template-*")
		if err != nil {
			return "", fmt.Errorf("create temp directory for template: %w", err)
		}
	}

	for relPath, contents := range manifest.Files {
		full := filepath.Join(dir, relPath)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			return "", fmt.Errorf("create directory for %s: %w", relPath, err)
		}
		if err := os.WriteFile(full, []byte(contents), 0o644); err != nil {
			return "", fmt.Errorf("write template file %s: %w", relPath, err)
		}
	}

	return filepath.Join(dir, manifest.EntryFile), nil
}

// GetTemplateEntry returns the entry file's text for spec, erroring if
// the bytes are not valid UTF-8 — exactly as the original's
// parse_opts-adjacent entry-reading path does, since the editor can
// only display valid UTF-8 source.
func (r *Registry) GetTemplateEntry(ctx context.Context, spec PackageSpec) (string, error) {
	manifest, err := r.Resolve(ctx, spec)
	if err != nil {
		return "", err
	}
	entry, ok := manifest.Files[manifest.EntryFile]
	if !ok {
		return "", fmt.Errorf("package %s has no entry file %q", spec.String(), manifest.EntryFile)
	}
	if !utf8.ValidString(entry) {
		return "", fmt.Errorf("entry file %q of package %s is not valid UTF-8", manifest.EntryFile, spec.String())
	}
	return entry, nil
}
