package get_completions

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

func NewGetCompletionsCommand() *cobra.Command {
	me := &Handler{fs: afero.NewOsFs()}

	cmd := &cobra.Command{
		Use:   "get-completions FILE",
		Short: "print the completions at a position of a file as JSON",
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

type item struct {
	Label         string              `json:"label"`
	Kind          completion.Kind     `json:"kind"`
	Documentation string              `json:"documentation,omitempty"`
	FilterText    string              `json:"filterText,omitempty"`
	TextEdit      completion.TextEdit `json:"textEdit"`
}

type result struct {
	File         string         `json:"file"`
	Position     position.Place `json:"position"`
	Offset       int            `json:"offset"`
	IsIncomplete bool           `json:"isIncomplete"`
	Items        []item         `json:"items"`
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

	pos := position.Place{Line: me.line, Character: me.character}
	offset := doc.OffsetAt(pos)
	if me.offset != -1 {
		if me.offset < 0 || me.offset > len(doc.GetText()) {
			return errors.Errorf("%w: %d, %s has %d bytes", completion.ErrOffsetOutOfRange, me.offset, me.file, len(doc.GetText()))
		}
		offset = me.offset
		pos = doc.PositionAt(offset)
	}

	zerolog.Ctx(ctx).Debug().Str("file", me.file).Int("offset", offset).Str("language", doc.LanguageID).Msg("completing")

	list, err := ws.Service.DoComplete(ctx, doc, pos, nil)
	if err != nil {
		return errors.Errorf("completing %s: %w", me.file, err)
	}

	res := result{
		File:         me.file,
		Position:     pos,
		Offset:       offset,
		IsIncomplete: list.IsIncomplete,
		Items:        make([]item, 0, len(list.Items)),
	}
	for _, s := range list.Items {
		res.Items = append(res.Items, item{
			Label:         s.Label,
			Kind:          s.Kind,
			Documentation: s.Documentation,
			FilterText:    s.FilterText,
			TextEdit:      s.TextEdit(doc),
		})
	}

	enc := json.NewEncoder(me.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return errors.Errorf("writing result: %w", err)
	}
	return nil
}
