package app

import (
	"archive/tar"
	"context"
	"fmt"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/require"

	"rosmsg-packages/internal/adapters"
	"rosmsg-packages/internal/ports"
	"rosmsg-packages/internal/types"
)

var (
	setupNamePattern    = regexp.MustCompile(`name='([^']+)'`)
	setupVersionPattern = regexp.MustCompile(`version='([^']+)'`)
)

// fakePackaging mimics setuptools: it archives the package tree with
// fresh timestamps on every call, so only content decides equality.
type fakePackaging struct {
	calls int
}

func (f *fakePackaging) metadata(req types.PackagingRequest) (types.DistributionMetadata, error) {
	setup, err := os.ReadFile(filepath.Join(req.Dir, "setup.py"))
	if err != nil {
		return types.DistributionMetadata{}, err
	}
	meta := types.DistributionMetadata{Name: filepath.Base(req.Dir), Version: "0.0.0"}
	if m := setupNamePattern.FindSubmatch(setup); m != nil {
		meta.Name = string(m[1])
	}
	if m := setupVersionPattern.FindSubmatch(setup); m != nil {
		meta.Version = string(m[1])
	}
	if req.Rewriter != nil {
		meta = req.Rewriter.Rewrite(meta)
	}
	return meta, nil
}

func (f *fakePackaging) BuildSource(_ context.Context, req types.PackagingRequest) (string, error) {
	f.calls++
	meta, err := f.metadata(req)
	if err != nil {
		return "", err
	}
	distDir := filepath.Join(req.Dir, "dist")
	if err := os.RemoveAll(distDir); err != nil {
		return "", err
	}
	if err := os.MkdirAll(distDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(distDir, fmt.Sprintf("%s-%s.tar.gz", meta.Name, meta.Version))
	stamp := time.Now().Add(time.Duration(f.calls) * time.Hour)
	return path, writeSourceArchive(req.Dir, path, fmt.Sprintf("%s-%s", meta.Name, meta.Version), stamp)
}

func (f *fakePackaging) BuildBinary(_ context.Context, req types.PackagingRequest) ([]string, error) {
	meta, err := f.metadata(req)
	if err != nil {
		return nil, err
	}
	path := filepath.Join(req.Dir, "dist", fmt.Sprintf("%s-%s-py2.py3-none-any.whl", strings.ReplaceAll(meta.Name, "-", "_"), meta.Version))
	file, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	zw := zip.NewWriter(file)
	w, err := zw.Create(meta.Name + "/__init__.py")
	if err != nil {
		file.Close()
		return nil, err
	}
	_, _ = w.Write([]byte("# wheel\n"))
	if err := zw.Close(); err != nil {
		file.Close()
		return nil, err
	}
	return []string{path}, file.Close()
}

func writeSourceArchive(root string, dest string, prefix string, stamp time.Time) error {
	file, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer file.Close()
	gz := gzip.NewWriter(file)
	gz.ModTime = stamp
	tw := tar.NewWriter(gz)
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(root, path)
		if d.IsDir() {
			if rel == "dist" {
				return filepath.SkipDir
			}
			return nil
		}
		body, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		header := &tar.Header{
			Name:     prefix + "/" + filepath.ToSlash(rel),
			Mode:     0o644,
			ModTime:  stamp,
			Size:     int64(len(body)),
			Typeflag: tar.TypeReg,
		}
		if err := tw.WriteHeader(header); err != nil {
			return err
		}
		_, err = tw.Write(body)
		return err
	})
	if err != nil {
		return err
	}
	if err := tw.Close(); err != nil {
		return err
	}
	return gz.Close()
}

// fakeCodegen writes one module per schema.
type fakeCodegen struct{}

func (fakeCodegen) Generate(_ context.Context, req ports.CodegenRequest) error {
	if err := os.MkdirAll(req.OutputDir, 0o755); err != nil {
		return err
	}
	for _, file := range req.Files {
		name := strings.TrimSuffix(filepath.Base(file), req.Kind.Extension())
		body, err := os.ReadFile(file)
		if err != nil {
			return err
		}
		module := fmt.Sprintf("# generated from %s/%s\n%q\n", req.Package, name, string(body))
		if err := os.WriteFile(filepath.Join(req.OutputDir, "_"+name+".py"), []byte(module), 0o644); err != nil {
			return err
		}
	}
	return nil
}

func (fakeCodegen) WriteInit(_ context.Context, dir string) error {
	return os.WriteFile(filepath.Join(dir, "__init__.py"), []byte("# init\n"), 0o644)
}

type fakeRemote struct {
	artifacts map[string][]types.RemoteArtifact
}

func (f fakeRemote) OpenRemote(context.Context) (ports.RemoteArtifactListerPort, error) {
	return f, nil
}

func (f fakeRemote) ListRemoteArtifacts(_ context.Context, name string) ([]types.RemoteArtifact, error) {
	return f.artifacts[name], nil
}

type testEnv struct {
	root        string
	listPath    string
	storeDir    string
	diagnostics string
	searchRoot  string
	packaging   *fakePackaging
	service     Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	root := t.TempDir()
	env := &testEnv{
		root:        root,
		listPath:    filepath.Join(root, "packages.yaml"),
		storeDir:    filepath.Join(root, "index"),
		diagnostics: filepath.Join(root, "diagnostics"),
		searchRoot:  filepath.Join(root, "deps"),
		packaging:   &fakePackaging{},
	}
	writeFile(t, filepath.Join(env.searchRoot, "std_msgs", "msg", "Header.msg"), "uint32 seq\ntime stamp\nstring frame_id\n")
	writeFile(t, filepath.Join(env.searchRoot, "actionlib_msgs", "msg", "GoalID.msg"), "time stamp\nstring id\n")
	writeFile(t, filepath.Join(env.searchRoot, "actionlib_msgs", "msg", "GoalStatus.msg"), "GoalID goal_id\nuint8 status\n")

	hasher, err := adapters.NewTarContentHasher()
	require.NoError(t, err)
	packageXML := adapters.NewPackageXMLAdapter()
	env.service = Service{
		PackageList: adapters.NewPackageListFileAdapter(),
		Workspace:   adapters.NewWorkspaceAdapter(),
		PackageXML:  packageXML,
		Actions:     adapters.NewActionFilesAdapter(),
		Compiler:    adapters.NewInterfaceCompilerAdapter(fakeCodegen{}, packageXML),
		Packaging:   env.packaging,
		Legacy:      adapters.UnavailableBinaryBuilder{Python: "python2"},
		Hasher:      hasher,
		Fetcher:     adapters.HTTPSourceFetcher{RetryDelay: time.Millisecond},
		Extractor:   adapters.NewZipExtractor(),
		Index:       adapters.NewIndexHTMLAdapter(),
		Clock:       time.Now,
	}
	return env
}

func (e *testEnv) request() BuildRequest {
	return BuildRequest{
		ListPath:       e.listPath,
		StoreDir:       e.storeDir,
		SearchRoots:    []string{e.searchRoot},
		DiagnosticsDir: e.diagnostics,
	}
}

func writeFile(t *testing.T, path string, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	var names []string
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names
}

// archiveMembers returns the first path component of every member of a
// tar.gz below prefix, directories with a trailing slash.
func archiveMembers(t *testing.T, path string, prefix string) []string {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()
	gz, err := gzip.NewReader(file)
	require.NoError(t, err)
	defer gz.Close()

	seen := map[string]struct{}{}
	tr := tar.NewReader(gz)
	for {
		header, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		rest, ok := strings.CutPrefix(header.Name, prefix)
		if !ok || rest == "" {
			continue
		}
		if idx := strings.Index(rest, "/"); idx != -1 {
			rest = rest[:idx+1]
		}
		seen[rest] = struct{}{}
	}
	members := make([]string, 0, len(seen))
	for member := range seen {
		members = append(members, member)
	}
	sort.Strings(members)
	return members
}
