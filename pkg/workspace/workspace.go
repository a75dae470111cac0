// Package workspace ties the config, the catalogs and the completion service
// to a file system, for the commands that work on files of a project.
package workspace

import (
	"context"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"

	"github.com/walteh/auhtml/pkg/completion"
	"github.com/walteh/auhtml/pkg/completion/providers"
	"github.com/walteh/auhtml/pkg/config"
	"github.com/walteh/auhtml/pkg/position"
)

type contextKey struct{}

type Workspace struct {
	Fs         afero.Fs
	Config     *config.Config
	ConfigPath string
	Service    *completion.Service
	// Catalogs back hover documentation, searched in order.
	Catalogs []*providers.Catalog
}

// Open loads the config at configPath, or the one discovered from dir when
// configPath is empty, and builds the enabled providers.
func Open(ctx context.Context, afs afero.Fs, configPath, dir string) (*Workspace, error) {
	logger := zerolog.Ctx(ctx)

	if configPath == "" {
		if found, ok := config.Discover(afs, dir); ok {
			configPath = found
		}
	}

	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(afs, configPath)
		if err != nil {
			return nil, errors.Errorf("loading config: %w", err)
		}
		cfg = loaded
		logger.Debug().Str("path", configPath).Msg("loaded config")
	}

	html, err := providers.HTMLCatalog()
	if err != nil {
		return nil, err
	}
	if path := cfg.CatalogPath(); path != "" {
		extra, err := providers.LoadCatalog(afs, path)
		if err != nil {
			return nil, errors.Errorf("loading extra catalog: %w", err)
		}
		html = html.Merge(extra)
	}
	aurelia, err := providers.AureliaCatalog()
	if err != nil {
		return nil, err
	}

	var enabled []completion.Provider
	for _, p := range []completion.Provider{
		providers.NewHTMLProvider(html),
		providers.NewAureliaProvider(html, aurelia),
	} {
		if cfg.Enabled(p.ID()) {
			enabled = append(enabled, p)
		} else {
			logger.Debug().Str("provider", p.ID()).Msg("provider disabled by config")
		}
	}

	catalogs := []*providers.Catalog{html}
	if cfg.Enabled(providers.AureliaProviderID) {
		catalogs = append(catalogs, aurelia)
	}

	return &Workspace{
		Fs:         afs,
		Config:     cfg,
		ConfigPath: configPath,
		Service:    completion.NewService(enabled...),
		Catalogs:   catalogs,
	}, nil
}

// LanguageID guesses the language of a file from its name.
func LanguageID(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return "html"
	default:
		return "plaintext"
	}
}

// ReadDocument reads path into a document snapshot. An empty languageID is
// guessed from the file name.
func (w *Workspace) ReadDocument(path, languageID string) (*position.Document, error) {
	data, err := afero.ReadFile(w.Fs, path)
	if err != nil {
		return nil, errors.Errorf("reading %s: %w", path, err)
	}
	if languageID == "" {
		languageID = LanguageID(path)
	}
	return position.NewDocument("file://"+filepath.ToSlash(path), languageID, 0, string(data)), nil
}

// Files expands args into file paths. Files are kept as given; directories
// are walked and filtered with the config's file patterns.
func (w *Workspace) Files(ctx context.Context, args []string) ([]string, error) {
	var out []string
	for _, arg := range args {
		info, err := w.Fs.Stat(arg)
		if err != nil {
			return nil, errors.Errorf("stat %s: %w", arg, err)
		}
		if !info.IsDir() {
			if !w.Config.Matches(filepath.Base(arg)) && !w.Config.Matches(arg) {
				zerolog.Ctx(ctx).Debug().Str("file", arg).Msg("file is not covered by the configured patterns")
			}
			out = append(out, arg)
			continue
		}

		matches, err := w.match(arg)
		if err != nil {
			return nil, err
		}
		zerolog.Ctx(ctx).Debug().Str("dir", arg).Int("files", len(matches)).Msg("expanded directory")
		out = append(out, matches...)
	}
	return out, nil
}

func (w *Workspace) match(dir string) ([]string, error) {
	base, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.Errorf("resolving %s: %w", dir, err)
	}
	root := afero.NewIOFS(afero.NewBasePathFs(w.Fs, base))

	seen := map[string]bool{}
	var out []string
	for _, pattern := range w.Config.Files {
		matches, err := doublestar.Glob(root, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, errors.Errorf("matching %q in %s: %w", pattern, dir, err)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				out = append(out, filepath.Join(dir, filepath.FromSlash(m)))
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

func (w *Workspace) WithContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, w)
}

func FromContext(ctx context.Context) (*Workspace, bool) {
	w, ok := ctx.Value(contextKey{}).(*Workspace)
	return w, ok
}

// MapDocuments reads every path and calls fn on it concurrently. Results keep
// the order of paths; the first error cancels the rest.
func MapDocuments[T any](ctx context.Context, w *Workspace, paths []string, languageID string, fn func(ctx context.Context, doc *position.Document) (T, error)) ([]T, error) {
	results := make([]T, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			doc, err := w.ReadDocument(path, languageID)
			if err != nil {
				return err
			}
			res, err := fn(ctx, doc)
			if err != nil {
				return errors.Errorf("processing %s: %w", path, err)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
