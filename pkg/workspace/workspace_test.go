package workspace_test

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/auhtml/pkg/position"
	"github.com/walteh/auhtml/pkg/workspace"
)

func newFs(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for path, content := range files {
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
	}
	return fs
}

func labels(t *testing.T, ws *workspace.Workspace, text string, pos position.Place) []string {
	t.Helper()
	doc := position.NewDocument("file:///x.html", "html", 0, text)
	list, err := ws.Service.DoComplete(context.Background(), doc, pos, nil)
	require.NoError(t, err)

	var out []string
	for _, item := range list.Items {
		out = append(out, item.Label)
	}
	return out
}

func TestOpenDiscoversConfig(t *testing.T) {
	fs := newFs(t, map[string]string{
		"/repo/.auhtml.yaml": "providers:\n  aurelia: false\ncatalog: extra.yaml\n",
		"/repo/extra.yaml":   "elements:\n  - name: au-card\n    documentation: A card.\n",
		"/repo/src/app.html": "<template></template>",
	})

	ws, err := workspace.Open(context.Background(), fs, "", "/repo/src")
	require.NoError(t, err)
	assert.Equal(t, "/repo/.auhtml.yaml", ws.ConfigPath)

	tags := labels(t, ws, "<", position.Place{Line: 0, Character: 1})
	assert.Contains(t, tags, "au-card", "extra catalog is merged")
	assert.Contains(t, tags, "button")
	assert.NotContains(t, tags, "compose", "aurelia provider is disabled")

	attrs := labels(t, ws, "<button ", position.Place{Line: 0, Character: 8})
	assert.Contains(t, attrs, "onclick")
	assert.NotContains(t, attrs, "click.trigger")

	require.Len(t, ws.Catalogs, 1)
	assert.NotNil(t, ws.Catalogs[0].Element("au-card"))
}

func TestOpenDefaults(t *testing.T) {
	ws, err := workspace.Open(context.Background(), afero.NewMemMapFs(), "", "/empty")
	require.NoError(t, err)
	assert.Empty(t, ws.ConfigPath)

	attrs := labels(t, ws, "<button ", position.Place{Line: 0, Character: 8})
	assert.Contains(t, attrs, "click.trigger")
	assert.Contains(t, attrs, "if.bind")
	assert.Len(t, ws.Catalogs, 2)
}

func TestOpenErrors(t *testing.T) {
	t.Run("bad config", func(t *testing.T) {
		fs := newFs(t, map[string]string{"/repo/.auhtml.yaml": "log_level: loud\n"})
		_, err := workspace.Open(context.Background(), fs, "/repo/.auhtml.yaml", "/repo")
		require.Error(t, err)
	})

	t.Run("missing catalog", func(t *testing.T) {
		fs := newFs(t, map[string]string{"/repo/.auhtml.yaml": "catalog: nope.yaml\n"})
		_, err := workspace.Open(context.Background(), fs, "", "/repo")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "loading extra catalog")
	})
}

func TestFiles(t *testing.T) {
	fs := newFs(t, map[string]string{
		"/repo/index.html":         "",
		"/repo/src/app.html":       "",
		"/repo/src/app.ts":         "",
		"/repo/src/views/list.htm": "",
	})

	ws, err := workspace.Open(context.Background(), fs, "", "/repo")
	require.NoError(t, err)

	files, err := ws.Files(context.Background(), []string{"/repo", "/repo/src/app.ts"})
	require.NoError(t, err)
	assert.Equal(t, []string{"/repo/index.html", "/repo/src/app.html", "/repo/src/app.ts"}, files)

	_, err = ws.Files(context.Background(), []string{"/repo/missing.html"})
	require.Error(t, err)
}

func TestReadDocument(t *testing.T) {
	fs := newFs(t, map[string]string{"/repo/app.html": "<div>\n</div>", "/repo/notes.txt": "x"})
	ws, err := workspace.Open(context.Background(), fs, "", "/repo")
	require.NoError(t, err)

	doc, err := ws.ReadDocument("/repo/app.html", "")
	require.NoError(t, err)
	assert.Equal(t, "html", doc.LanguageID)
	assert.Equal(t, "file:///repo/app.html", doc.URI)
	assert.Equal(t, 2, doc.LineCount())

	doc, err = ws.ReadDocument("/repo/notes.txt", "aurelia")
	require.NoError(t, err)
	assert.Equal(t, "aurelia", doc.LanguageID)

	assert.Equal(t, "plaintext", workspace.LanguageID("notes.txt"))
}

func TestMapDocuments(t *testing.T) {
	fs := newFs(t, map[string]string{
		"/repo/a.html": "<a>",
		"/repo/b.html": "<b></b>",
		"/repo/c.html": "",
	})
	ws, err := workspace.Open(context.Background(), fs, "", "/repo")
	require.NoError(t, err)

	paths := []string{"/repo/c.html", "/repo/a.html", "/repo/b.html"}
	lengths, err := workspace.MapDocuments(context.Background(), ws, paths, "", func(ctx context.Context, doc *position.Document) (int, error) {
		return len(doc.GetText()), nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 3, 7}, lengths, "results keep the order of paths")

	_, err = workspace.MapDocuments(context.Background(), ws, []string{"/repo/a.html", "/repo/nope.html"}, "", func(ctx context.Context, doc *position.Document) (int, error) {
		return 0, nil
	})
	require.Error(t, err)
}

func TestContext(t *testing.T) {
	ctx := context.Background()
	_, ok := workspace.FromContext(ctx)
	assert.False(t, ok)

	ws, err := workspace.Open(ctx, afero.NewMemMapFs(), "", "/")
	require.NoError(t, err)

	got, ok := workspace.FromContext(ws.WithContext(ctx))
	require.True(t, ok)
	assert.Same(t, ws, got)
}
