package get_hover

import (
	"context"
	"encoding/json"
	"io"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/auhtml/pkg/completion"
	"github.com/walteh/auhtml/pkg/hover"
	"github.com/walteh/auhtml/pkg/position"
	"github.com/walteh/auhtml/pkg/workspace"
)

type Handler struct {
	fs  afero.Fs
	out io.Writer

	file       string
	line       int
	character  int
	offset     int
	languageID string
}

func NewGetHoverCommand() *cobra.Command {
	me := &Handler{fs: afero.NewOsFs()}

	cmd := &cobra.Command{
		Use:   "get-hover FILE",
		Short: "print the documentation of the token at a position of a file as JSON",
		Args:  cobra.ExactArgs(1),
	}

	cmd.Flags().IntVar(&me.line, "line", 0, "zero-based line of the cursor")
	cmd.Flags().IntVar(&me.character, "character", 0, "zero-based UTF-16 character of the cursor")
	cmd.Flags().IntVar(&me.offset, "offset", -1, "byte offset of the cursor, overrides --line and --character")
	cmd.Flags().StringVar(&me.languageID, "language", "", "language id of the file (guessed from the extension by default)")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		me.file = args[0]
		me.out = cmd.OutOrStdout()
		return me.Run(cmd.Context())
	}

	return cmd
}

type result struct {
	File     string          `json:"file"`
	Offset   int             `json:"offset"`
	Contents []string        `json:"contents"`
	Range    *position.Range `json:"range,omitempty"`
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

	doc, err := ws.ReadDocument(me.file, me.languageID)
	if err != nil {
		return err
	}

	offset := doc.OffsetAt(position.Place{Line: me.line, Character: me.character})
	if me.offset != -1 {
		if me.offset < 0 {
			return errors.Errorf("%w: %d", completion.ErrOffsetOutOfRange, me.offset)
		}
		offset = me.offset
	}

	info, err := hover.BuildHoverResponseFromParse(ctx, ws.Service.ParseDocument(doc), position.NewBasicPosition("", offset), ws.Catalogs...)
	if err != nil {
		return errors.Errorf("hovering %s: %w", me.file, err)
	}

	res := result{File: me.file, Offset: offset, Contents: []string{}}
	if info != nil {
		rng := info.Position.GetRange(doc)
		res.Contents = info.Content
		res.Range = &rng
	}

	enc := json.NewEncoder(me.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return errors.Errorf("writing result: %w", err)
	}
	return nil
}
