package get_tokens

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

	"github.com/walteh/auhtml/pkg/position"
	"github.com/walteh/auhtml/pkg/scanner"
	"github.com/walteh/auhtml/pkg/workspace"
)

type Handler struct {
	fs  afero.Fs
	out io.Writer

	paths  []string
	json   bool
	offset int
	state  string
}

func NewGetTokensCommand() *cobra.Command {
	me := &Handler{fs: afero.NewOsFs()}

	cmd := &cobra.Command{
		Use:   "get-tokens PATH...",
		Short: "print the token stream of files or directories",
		Args:  cobra.MinimumNArgs(1),
	}

	cmd.Flags().BoolVar(&me.json, "json", false, "print JSON instead of one token per line")
	cmd.Flags().IntVar(&me.offset, "offset", 0, "byte offset to start scanning at")
	cmd.Flags().StringVar(&me.state, "state", scanner.WithinContent.String(), "scanner state to start in")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		me.paths = args
		me.out = cmd.OutOrStdout()
		return me.Run(cmd.Context())
	}

	return cmd
}

type token struct {
	Kind   string `json:"kind"`
	Offset int    `json:"offset"`
	End    int    `json:"end"`
	Text   string `json:"text"`
}

type fileTokens struct {
	File   string  `json:"file"`
	Tokens []token `json:"tokens"`
}

func (me *Handler) Run(ctx context.Context) error {
	ctx = zerolog.Ctx(ctx).With().Str("request", uuid.NewString()).Logger().WithContext(ctx)

	state, err := scanner.ParseState(me.state)
	if err != nil {
		return err
	}

	ws, ok := workspace.FromContext(ctx)
	if !ok {
		if ws, err = workspace.Open(ctx, me.fs, "", "."); err != nil {
			return errors.Errorf("opening workspace: %w", err)
		}
	}

	files, err := ws.Files(ctx, me.paths)
	if err != nil {
		return err
	}

	results, err := workspace.MapDocuments(ctx, ws, files, "", func(ctx context.Context, doc *position.Document) (fileTokens, error) {
		ft := fileTokens{File: doc.URI, Tokens: []token{}}
		for tok := range scanner.Tokens(doc.GetText(), me.offset, state) {
			ft.Tokens = append(ft.Tokens, token{Kind: tok.Kind.String(), Offset: tok.Offset, End: tok.End, Text: tok.Text})
		}
		zerolog.Ctx(ctx).Debug().Str("uri", doc.URI).Int("tokens", len(ft.Tokens)).Msg("scanned")
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
		fmt.Fprintf(me.out, "%s\n", files[i])
		for _, tok := range ft.Tokens {
			fmt.Fprintf(me.out, "  %s[%d:%d] %q\n", tok.Kind, tok.Offset, tok.End, tok.Text)
		}
	}
	return nil
}
