// Package kubeconfig maintains the set of contexts declared across a
// directory of kubeconfig files and resolves user-supplied context names,
// exact or partial, to a single authenticated client configuration.
package kubeconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/client-go/util/homedir"
)

// ContextRecord is a named context together with the kubeconfig file that
// declares it. Names are unique within a file but not across files.
type ContextRecord struct {
	Name string
	File string
}

// Registry scans a directory of kubeconfig files and resolves context names.
// Every resolving operation re-reads the directory first, so the registry
// never serves data older than the call that asked for it. The scan is cheap
// local I/O; tolerating external kubeconfig edits between calls matters more
// here than saving the re-read.
type Registry struct {
	dir     string
	logger  *zap.Logger
	records []ContextRecord
}

// NewRegistry creates a registry for the given kubeconfig directory. An empty
// dir falls back to ~/.kube. If dir points at a regular file its parent
// directory is used; this normalization happens once, not per call.
func NewRegistry(dir string, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dir == "" {
		if home := homedir.HomeDir(); home != "" {
			dir = filepath.Join(home, ".kube")
		}
	}
	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}
	return &Registry{dir: dir, logger: logger}
}

// Dir returns the directory the registry scans.
func (r *Registry) Dir() string { return r.dir }

// Refresh re-scans the kubeconfig directory and replaces the cached context
// set. Files that fail to parse are skipped; a grab-bag directory where only
// some files are kubeconfigs is the normal case. The returned slice holds
// every declared context name, duplicates across files preserved.
func (r *Registry) Refresh() ([]string, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read kubeconfig directory %s: %w", r.dir, err)
	}

	var records []ContextRecord
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(r.dir, entry.Name())
		config, err := clientcmd.LoadFromFile(path)
		if err != nil {
			r.logger.Debug("skipping unparseable kubeconfig file",
				zap.String("file", path), zap.Error(err))
			continue
		}
		names := make([]string, 0, len(config.Contexts))
		for name := range config.Contexts {
			names = append(names, name)
		}
		// Map iteration order is random; keep listing output stable per file.
		sort.Strings(names)
		for _, name := range names {
			records = append(records, ContextRecord{Name: name, File: path})
		}
	}

	r.records = records
	return r.ContextNames(), nil
}

// ContextNames returns the context names from the last refresh, duplicates
// across files preserved as distinct entries.
func (r *Registry) ContextNames() []string {
	names := make([]string, len(r.records))
	for i, rec := range r.records {
		names[i] = rec.Name
	}
	return names
}

// Resolve maps a full or partial context name to the single context it
// identifies. An exact match always wins, even when the name is also a
// substring of other entries. Otherwise all contexts containing the name as a
// case-sensitive substring are collected: exactly one is returned, several is
// an AmbiguousContextError, none is a ContextNotFoundError. The registry
// refreshes from disk before resolving.
func (r *Registry) Resolve(name string) (string, error) {
	if _, err := r.Refresh(); err != nil {
		return "", err
	}
	return r.resolveCached(name)
}

// resolveCached applies the resolution policy against the cached context set.
func (r *Registry) resolveCached(name string) (string, error) {
	for _, rec := range r.records {
		if rec.Name == name {
			return name, nil
		}
	}

	var matches []string
	for _, rec := range r.records {
		if strings.Contains(rec.Name, name) {
			matches = append(matches, rec.Name)
		}
	}

	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return "", &ContextNotFoundError{Name: name, Known: r.ContextNames()}
	default:
		return "", &AmbiguousContextError{Name: name, Candidates: matches}
	}
}

// RESTConfigFor resolves name and builds a rest.Config scoped to the single
// kubeconfig file and context that define it. When the same exact name exists
// in two files the first file in directory order wins. A file that disappears
// or stops parsing between resolution and load surfaces as a
// ContextLoadError.
func (r *Registry) RESTConfigFor(name string) (*rest.Config, string, error) {
	full, err := r.Resolve(name)
	if err != nil {
		return nil, "", err
	}

	for _, rec := range r.records {
		if rec.Name != full {
			continue
		}
		config, err := clientcmd.LoadFromFile(rec.File)
		if err != nil {
			return nil, "", &ContextLoadError{Name: full, Err: err}
		}
		restConfig, err := clientcmd.NewNonInteractiveClientConfig(
			*config, full, &clientcmd.ConfigOverrides{}, nil,
		).ClientConfig()
		if err != nil {
			return nil, "", &ContextLoadError{Name: full, Err: err}
		}
		return restConfig, full, nil
	}

	// Resolve succeeded against the same snapshot, so the record must exist;
	// reaching here means the set changed underneath us mid-call.
	return nil, "", &ContextLoadError{Name: full}
}
