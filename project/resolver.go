package project

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bignyap/go-sqlhelper/logger/api"
	"github.com/bignyap/go-sqlhelper/logger/factory"
)

const (
	// LibraryRootMarker marks a directory the search must not enter.
	LibraryRootMarker = "pyvenv.cfg"

	// ScriptsFolder is the folder ListSQLScripts reads.
	ScriptsFolder = "sql_scripts"

	// SQLSuffix selects the files ListSQLScripts returns.
	SQLSuffix = ".sql"
)

// Resolver finds and creates folders below a fixed base directory.
type Resolver struct {
	base   string
	logger api.Logger
}

// NewResolver returns a resolver rooted at the absolute form of base. A nil
// logger follows whatever global logger is installed at the time of each call.
func NewResolver(base string, log api.Logger) (*Resolver, error) {
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, &PathError{Op: "resolve base", Path: base, Err: err}
	}
	return &Resolver{base: abs, logger: log}, nil
}

func (r *Resolver) log() api.Logger {
	if r.logger != nil {
		return r.logger.WithComponent("project")
	}
	return factory.GetGlobalLogger().WithComponent("project")
}

func (r *Resolver) BaseDir() string {
	return r.base
}

// EnsureFolder joins segments onto the base directory and creates the
// result, parents included, if it is missing.
func (r *Resolver) EnsureFolder(segments ...string) (string, error) {
	path := filepath.Join(append([]string{r.base}, segments...)...)
	if err := os.MkdirAll(path, 0o755); err != nil {
		return "", &PathError{Op: "mkdir", Path: path, Err: err}
	}
	return path, nil
}

// ResolveOrCreate returns the first folder called name found below the base
// directory. When there is none it creates name directly under the base
// directory; the parent is not created, so a nested name whose parent is
// missing fails.
func (r *Resolver) ResolveOrCreate(name string) (string, error) {
	if path, ok := r.FindFolder(name, r.base); ok {
		return path, nil
	}

	path := filepath.Join(r.base, name)
	if err := os.Mkdir(path, 0o755); err != nil {
		return "", &PathError{Op: "mkdir", Path: path, Err: err}
	}
	r.log().Debug(context.Background(), "created folder", api.String("path", path))
	return path, nil
}

// FindFolder searches currentDir and its subdirectories, depth first, for
// an entry called name.
//
// At each directory the direct child currentDir/name wins before anything
// deeper is looked at. Subdirectories are visited in reverse lexical order
// and a library root is never entered. The first match is returned; no
// match returns false. Unreadable directories are skipped.
func (r *Resolver) FindFolder(name, currentDir string) (string, bool) {
	return findFolder(r.log(), name, currentDir)
}

func findFolder(log api.Logger, name, root string) (string, bool) {
	ctx := context.Background()
	visited := map[string]bool{}
	stack := []string{root}

	for len(stack) > 0 {
		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if real, err := filepath.EvalSymlinks(dir); err == nil {
			if visited[real] {
				continue
			}
			visited[real] = true
		}

		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			log.Debug(ctx, "found folder", api.String("path", candidate))
			return candidate, true
		}

		for _, sub := range subdirectories(log, dir) {
			log.Debug(ctx, "checking", api.String("path", sub))
			if IsLibraryRoot(sub) {
				log.Debug(ctx, "skipping library root", api.String("path", sub))
				continue
			}
			stack = append(stack, sub)
		}
	}
	return "", false
}

// subdirectories lists the directories directly under dir in lexical order.
// Symlinks to directories count as directories.
func subdirectories(log api.Logger, dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Debug(context.Background(), "cannot read directory", api.String("path", dir), api.ErrorField(err))
		return nil
	}

	var dirs []string
	for _, e := range entries {
		path := filepath.Join(dir, e.Name())
		if e.IsDir() {
			dirs = append(dirs, path)
			continue
		}
		if e.Type()&os.ModeSymlink != 0 {
			if info, err := os.Stat(path); err == nil && info.IsDir() {
				dirs = append(dirs, path)
			}
		}
	}
	return dirs
}

// IsLibraryRoot reports whether path is a directory directly containing the
// library root marker file.
func IsLibraryRoot(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return false
	}
	_, err = os.Stat(filepath.Join(path, LibraryRootMarker))
	return err == nil
}

// ListSQLScripts resolves the sql_scripts folder and maps each .sql file in
// it to its full path. The key is the file name up to its first dot, so
// "daily.summary.sql" is listed as "daily".
func (r *Resolver) ListSQLScripts() (map[string]string, error) {
	dir, err := r.ResolveOrCreate(ScriptsFolder)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &PathError{Op: "read dir", Path: dir, Err: err}
	}

	scripts := make(map[string]string)
	for _, e := range entries {
		if !strings.HasSuffix(e.Name(), SQLSuffix) {
			continue
		}
		key, _, _ := strings.Cut(e.Name(), ".")
		scripts[key] = filepath.Join(dir, e.Name())
	}
	return scripts, nil
}

var (
	defaultMu       sync.Mutex
	defaultResolver *Resolver
)

// Default returns the resolver rooted at the base directory, creating it
// from the working directory on first use.
func Default() (*Resolver, error) {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultResolver != nil {
		return defaultResolver, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, &PathError{Op: "getwd", Path: ".", Err: err}
	}
	r, err := NewResolver(wd, nil)
	if err != nil {
		return nil, err
	}
	defaultResolver = r
	return defaultResolver, nil
}

// SetBaseDir re-roots the default resolver at dir.
func SetBaseDir(dir string) error {
	r, err := NewResolver(dir, nil)
	if err != nil {
		return err
	}
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultResolver = r
	return nil
}

func BaseDir() (string, error) {
	r, err := Default()
	if err != nil {
		return "", err
	}
	return r.BaseDir(), nil
}

func EnsureFolder(segments ...string) (string, error) {
	r, err := Default()
	if err != nil {
		return "", err
	}
	return r.EnsureFolder(segments...)
}

func ResolveOrCreate(name string) (string, error) {
	r, err := Default()
	if err != nil {
		return "", err
	}
	return r.ResolveOrCreate(name)
}

// FindFolder is Resolver.FindFolder using the global logger.
func FindFolder(name, currentDir string) (string, bool) {
	return findFolder(factory.GetGlobalLogger().WithComponent("project"), name, currentDir)
}

func ListSQLScripts() (map[string]string, error) {
	r, err := Default()
	if err != nil {
		return nil, err
	}
	return r.ListSQLScripts()
}
