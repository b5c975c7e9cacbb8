package pkgregistry

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/Masterminds/semver/v3"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func testLog() *logrus.Entry {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l.WithField("test", true)
}

type fakeSource struct {
	versions   map[string][]*semver.Version
	manifests  map[string]*Manifest
	namespaces map[string][]string
	failTimes  int
}

func key(namespace, name string) string { return namespace + "/" + name }

func (f *fakeSource) ListVersions(ctx context.Context, namespace, name string) ([]*semver.Version, error) {
	return f.versions[key(namespace, name)], nil
}

func (f *fakeSource) FetchManifest(ctx context.Context, spec PackageSpec) (*Manifest, error) {
	if f.failTimes > 0 {
		f.failTimes--
		return nil, &TransientError{Err: fmt.Errorf("temporary registry hiccup")}
	}
	m, ok := f.manifests[spec.String()]
	if !ok {
		return nil, fmt.Errorf("no manifest for %s", spec.String())
	}
	return m, nil
}

func (f *fakeSource) ListNamespace(ctx context.Context, namespace string) ([]string, error) {
	return f.namespaces[namespace], nil
}

func newFixture() (*fakeSource, PackageSpec) {
	v1 := semver.MustParse("1.0.0")
	v2 := semver.MustParse("2.0.0")
	spec := PackageSpec{Namespace: "preview", Name: "example", Version: v2}
	src := &fakeSource{
		versions: map[string][]*semver.Version{
			key("preview", "example"): {v1, v2},
		},
		manifests: map[string]*Manifest{
			spec.String(): {
				Spec:      spec,
				EntryFile: "main.typ",
				Files: map[string]string{
					"main.typ":   "#import \"template.typ\"",
					"lib/lib.typ": "// lib",
				},
			},
		},
		namespaces: map[string][]string{"preview": {"example", "other"}},
	}
	return src, spec
}

func TestResolveAutoPicksLatest(t *testing.T) {
	src, spec := newFixture()
	reg := NewRegistry(src, testLog())

	unversioned := PackageSpec{Namespace: spec.Namespace, Name: spec.Name}
	manifest, err := reg.Resolve(context.Background(), unversioned)
	require.NoError(t, err)
	require.Equal(t, "2.0.0", manifest.Spec.Version.String())
}

func TestResolveRetriesTransientFailures(t *testing.T) {
	src, spec := newFixture()
	src.failTimes = 2
	reg := NewRegistry(src, testLog())

	manifest, err := reg.Resolve(context.Background(), spec)
	require.NoError(t, err)
	require.Equal(t, "main.typ", manifest.EntryFile)
}

func TestInitTemplateWritesFilesAndReturnsEntry(t *testing.T) {
	src, spec := newFixture()
	reg := NewRegistry(src, testLog())

	dir := t.TempDir()
	entryPath, err := reg.InitTemplate(context.Background(), spec, dir)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "main.typ"), entryPath)

	data, err := os.ReadFile(entryPath)
	require.NoError(t, err)
	require.Contains(t, string(data), "import")
}

func TestInitTemplateUsesTempDirWhenDirEmpty(t *testing.T) {
	src, spec := newFixture()
	reg := NewRegistry(src, testLog())

	entryPath, err := reg.InitTemplate(context.Background(), spec, "")
	require.NoError(t, err)
	_, err = os.Stat(entryPath)
	require.NoError(t, err)
}

func TestGetTemplateEntryReturnsText(t *testing.T) {
	src, spec := newFixture()
	reg := NewRegistry(src, testLog())

	text, err := reg.GetTemplateEntry(context.Background(), spec)
	require.NoError(t, err)
	require.Equal(t, "#import \"template.typ\"", text)
}

func TestGetTemplateEntryRejectsNonUTF8(t *testing.T) {
	src, spec := newFixture()
	src.manifests[spec.String()].Files["main.typ"] = string([]byte{0xff, 0xfe, 0xfd})
	reg := NewRegistry(src, testLog())

	_, err := reg.GetTemplateEntry(context.Background(), spec)
	require.Error(t, err)
}

func TestListNamespaceProxies(t *testing.T) {
	src, _ := newFixture()
	reg := NewRegistry(src, testLog())
	names, err := reg.ListNamespace(context.Background(), "preview")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"example", "other"}, names)
}
