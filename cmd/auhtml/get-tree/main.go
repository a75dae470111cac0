package get_tree

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/auhtml/pkg/parser"
	"github.com/walteh/auhtml/pkg/position"
	"github.com/walteh/auhtml/pkg/workspace"
)

type Handler struct {
	fs  afero.Fs
	out io.Writer

	paths []string
	json  bool
}

func NewGetTreeCommand() *cobra.Command {
	me := &Handler{fs: afero.NewOsFs()}

	cmd := &cobra.Command{
		Use:   "get-tree PATH...",
		Short: "print the element tree of files or directories",
		Args:  cobra.MinimumNArgs(1),
	}

	cmd.Flags().BoolVar(&me.json, "json", false, "print JSON instead of an outline")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		me.paths = args
		me.out = cmd.OutOrStdout()
		return me.Run(cmd.Context())
	}

	return cmd
}

type node struct {
	Tag        string            `json:"tag"`
	Start      int               `json:"start"`
	End        int               `json:"end"`
	Range      position.Range    `json:"range"`
	Closed     bool              `json:"closed"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Children   []*node           `json:"children,omitempty"`
}

type fileTree struct {
	File  string  `json:"file"`
	Roots []*node `json:"roots"`

	outline string
}

func convert(doc *position.Document, tree *parser.Document, n *parser.Node) *node {
	out := &node{
		Tag:        n.TagName,
		Start:      n.Start,
		End:        n.End,
		Range:      doc.RangeAt(n.Start, n.End),
		Closed:     n.Closed,
		Attributes: n.Attributes,
	}
	for _, child := range tree.Children(n) {
		out.Children = append(out.Children, convert(doc, tree, child))
	}
	return out
}

func (me *Handler) Run(ctx context.Context) error {
	ctx = zerolog.Ctx(ctx).With().Str("request", uuid.NewString()).Logger().WithContext(ctx)

	ws, ok := workspace.FromContext(ctx)
	if !ok {
		var err error
		if ws, err = workspace.Open(ctx, me.fs, "", "."); err != nil {
			return errors.Errorf("opening workspace: %w", err)
		}
	}

	files, err := ws.Files(ctx, me.paths)
	if err != nil {
		return err
	}

	results, err := workspace.MapDocuments(ctx, ws, files, "", func(ctx context.Context, doc *position.Document) (fileTree, error) {
		tree := ws.Service.ParseDocument(doc)
		ft := fileTree{File: doc.URI, Roots: []*node{}, outline: tree.Dump()}
		for _, root := range tree.Roots() {
			ft.Roots = append(ft.Roots, convert(doc, tree, root))
		}
		zerolog.Ctx(ctx).Debug().Str("uri", doc.URI).Int("nodes", tree.Len()).Msg("parsed")
		return ft, nil
	})
	if err != nil {
		return err
	}

	if me.json {
		enc := json.NewEncoder(me.out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return errors.Errorf("writing result: %w", err)
		}
		return nil
	}

	for i, ft := range results {
		fmt.Fprintf(me.out, "%s\n%s", files[i], ft.outline)
	}
	return nil
}
