// Package pkgregistry implements the package registry collaborator
// spec.md's Command Router delegates to for template materialization
// (doInitTemplate, doGetTemplateEntry) and namespace listing
// (SPEC_FULL.md §4.2's /package-index resource route).
package pkgregistry

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/semver/v3"
	backoff "github.com/cenkalti/backoff/v5"
	"github.com/sirupsen/logrus"

	"github.com/sjfhsjfh/tinymist/internal/logging"
)

// PackageSpec identifies one package, optionally pinned to a version.
// A nil Version means "resolve to latest" (SPEC_FULL.md §4.9).
type PackageSpec struct {
	Namespace string
	Name      string
	Version   *semver.Version
}

func (s PackageSpec) String() string {
	if s.Version != nil {
		return fmt.Sprintf("@%s/%s:%s", s.Namespace, s.Name, s.Version.String())
	}
	return fmt.Sprintf("@%s/%s", s.Namespace, s.Name)
}

// Manifest is a package's declared metadata: which files make up its
// template and which one is the entry point.
type Manifest struct {
	Spec      PackageSpec
	EntryFile string
	Files     map[string]string // relative path -> file contents
}

// Source fetches manifests and namespace listings from wherever
// packages actually live (a local cache directory, an HTTP registry,
// ...). Implementations are injected so pkgregistry stays testable
// without network access.
type Source interface {
	// ListVersions returns every known version of namespace/name.
	ListVersions(ctx context.Context, namespace, name string) ([]*semver.Version, error)
	// FetchManifest retrieves the manifest for an exact version.
	FetchManifest(ctx context.Context, spec PackageSpec) (*Manifest, error)
	// ListNamespace returns every package name published under namespace.
	ListNamespace(ctx context.Context, namespace string) ([]string, error)
}

// Registry resolves PackageSpecs against a Source, retrying transient
// fetch failures with bounded exponential backoff (SPEC_FULL.md's
// DOMAIN STACK entry for github.com/cenkalti/backoff/v5).
type Registry struct {
	source Source
	log    *logrus.Entry
	dedup  *logging.Deduper
}

// NewRegistry constructs a Registry over source.
func NewRegistry(source Source, log *logrus.Entry) *Registry {
	return &Registry{source: source, log: log, dedup: logging.NewDeduper()}
}

// TransientError marks a fetch failure as worth retrying (network
// blips, rate limiting); anything else is treated as permanent.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string { return e.Err.Error() }
func (e *TransientError) Unwrap() error { return e.Err }

// Resolve fills in spec.Version when absent, picking the highest
// known version, and returns spec's manifest.
func (r *Registry) Resolve(ctx context.Context, spec PackageSpec) (*Manifest, error) {
	resolved := spec
	if resolved.Version == nil {
		versions, err := r.source.ListVersions(ctx, spec.Namespace, spec.Name)
		if err != nil {
			return nil, fmt.Errorf("list versions for %s/%s: %w", spec.Namespace, spec.Name, err)
		}
		if len(versions) == 0 {
			return nil, fmt.Errorf("no versions found for %s/%s", spec.Namespace, spec.Name)
		}
		latest := versions[0]
		for _, v := range versions[1:] {
			if v.GreaterThan(latest) {
				latest = v
			}
		}
		resolved.Version = latest
	}

	return r.fetchWithRetry(ctx, resolved)
}

func (r *Registry) fetchWithRetry(ctx context.Context, spec PackageSpec) (*Manifest, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxInterval = 2 * time.Second
	b.Multiplier = 2.0

	return backoff.Retry(ctx, func() (*Manifest, error) {
		m, err := r.source.FetchManifest(ctx, spec)
		if err == nil {
			return m, nil
		}
		var transient *TransientError
		if !isTransient(err, &transient) {
			return nil, backoff.Permanent(err)
		}
		r.dedup.WarnOnce(r.log.WithError(err).WithField("package", spec.String()), "fetch:"+spec.String(),
			"transient registry fetch failure, retrying")
		return nil, err
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(4),
		backoff.WithMaxElapsedTime(0),
	)
}

func isTransient(err error, target **TransientError) bool {
	for err != nil {
		if t, ok := err.(*TransientError); ok {
			*target = t
			return true
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = unwrapper.Unwrap()
	}
	return false
}

// ListNamespace proxies to the Source, used by the /package-index
// resource route (SPEC_FULL.md §4.2).
func (r *Registry) ListNamespace(ctx context.Context, namespace string) ([]string, error) {
	return r.source.ListNamespace(ctx, namespace)
}
