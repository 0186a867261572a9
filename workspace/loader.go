package workspace

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/lexcodex/sslsense/analysis"
)

// scanParallelism bounds concurrent header reads during startup scans. Only
// file IO and extraction run in parallel; results are applied to the index
// afterward on a single turn.
const scanParallelism = 8

// SymbolCache persists extracted symbols between runs so unchanged headers
// skip re-extraction. Implemented by persistence.SymbolStore.
type SymbolCache interface {
	Load(path string, mtime int64) ([]analysis.Symbol, bool)
	Save(path string, mtime int64, symbols []analysis.Symbol) error
}

// Loader builds the dynamic and static tier contents from disk.
type Loader struct {
	logger *log.Logger
	cache  SymbolCache
}

// NewLoader builds a Loader. cache may be nil; a nil logger falls back to
// log.Default.
func NewLoader(logger *log.Logger, cache SymbolCache) *Loader {
	if logger == nil {
		logger = log.Default()
	}
	return &Loader{logger: logger, cache: cache}
}

// ScanDynamic extracts symbols from every file under root whose extension is
// in exts. Symbols are tagged with workspace-relative slash paths and
// returned grouped by file in deterministic order. Unreadable files are
// logged and skipped; the scan is best-effort by design.
func (l *Loader) ScanDynamic(ctx context.Context, root string, exts []string) ([]analysis.Symbol, error) {
	paths, err := l.collect(root, exts)
	if err != nil {
		return nil, err
	}
	return l.extractAll(ctx, root, paths, func(rel string) string { return rel })
}

// LoadStatic extracts symbols from external header directories. A directory
// that is missing or nested inside the workspace aborts static loading for
// this run: the anomaly is logged and no static symbols are produced, while
// the self and dynamic tiers stay untouched. Static symbols are tagged with
// absolute paths.
func (l *Loader) LoadStatic(ctx context.Context, workspaceRoot string, dirs, exts []string) []analysis.Symbol {
	absWorkspace, err := filepath.Abs(workspaceRoot)
	if err != nil {
		l.logger.Printf("workspace: cannot resolve root %s: %v", workspaceRoot, err)
		return nil
	}
	var out []analysis.Symbol
	for _, dir := range dirs {
		absDir, err := filepath.Abs(dir)
		if err != nil {
			l.logger.Printf("workspace: cannot resolve header dir %s: %v", dir, err)
			return nil
		}
		if info, err := os.Stat(absDir); err != nil || !info.IsDir() {
			l.logger.Printf("workspace: external header dir %s missing, skipping static load", absDir)
			return nil
		}
		if insideDir(absWorkspace, absDir) {
			l.logger.Printf("workspace: external header dir %s is inside the workspace, skipping static load", absDir)
			return nil
		}
		paths, err := l.collect(absDir, exts)
		if err != nil {
			l.logger.Printf("workspace: scanning %s failed: %v", absDir, err)
			return nil
		}
		symbols, err := l.extractAll(ctx, absDir, paths, func(rel string) string {
			return filepath.ToSlash(filepath.Join(absDir, rel))
		})
		if err != nil {
			l.logger.Printf("workspace: extracting %s failed: %v", absDir, err)
			return nil
		}
		out = append(out, symbols...)
	}
	return out
}

func (l *Loader) collect(root string, exts []string) ([]string, error) {
	var paths []string
	for _, ext := range exts {
		found, err := FindFiles(root, ext)
		if err != nil {
			return nil, err
		}
		paths = append(paths, found...)
	}
	sort.Strings(paths)
	return paths, nil
}

// extractAll reads and extracts the listed files with bounded parallelism,
// preserving file order in the flattened result. sourceTag maps a relative
// path to the SourcePath recorded on its symbols.
func (l *Loader) extractAll(ctx context.Context, root string, paths []string, sourceTag func(string) string) ([]analysis.Symbol, error) {
	perFile := make([][]analysis.Symbol, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(scanParallelism)
	for i, rel := range paths {
		i, rel := i, rel
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			perFile[i] = l.extractFile(filepath.Join(root, filepath.FromSlash(rel)), sourceTag(rel))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	var out []analysis.Symbol
	for _, symbols := range perFile {
		out = append(out, symbols...)
	}
	return out, nil
}

func (l *Loader) extractFile(path, sourceTag string) []analysis.Symbol {
	info, err := os.Stat(path)
	if err != nil {
		l.logger.Printf("workspace: stat %s: %v", path, err)
		return nil
	}
	mtime := info.ModTime().UnixNano()
	if l.cache != nil {
		if cached, ok := l.cache.Load(path, mtime); ok {
			return retag(cached, sourceTag)
		}
	}
	text, err := ReadTextFile(path)
	if err != nil {
		l.logger.Printf("workspace: read %s: %v", path, err)
		return nil
	}
	symbols := analysis.Extract(text, sourceTag)
	if l.cache != nil {
		if err := l.cache.Save(path, mtime, symbols); err != nil {
			l.logger.Printf("workspace: caching %s: %v", path, err)
		}
	}
	return symbols
}

func retag(symbols []analysis.Symbol, sourceTag string) []analysis.Symbol {
	out := make([]analysis.Symbol, len(symbols))
	for i, sym := range symbols {
		sym.SourcePath = sourceTag
		out[i] = sym
	}
	return out
}
