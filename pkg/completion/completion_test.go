package completion_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/auhtml/pkg/completion"
	"github.com/walteh/auhtml/pkg/position"
)

func buttonProvider() *MockProvider {
	p := &MockProvider{}
	p.On("ID").Return("mock").Maybe()
	p.On("IsApplicable", "html").Return(true).Maybe()
	p.On("IsApplicable", "plaintext").Return(false).Maybe()
	p.On("CollectTags").Return([]mockTag{
		{Tag: "button", Label: "The button element represents a button."},
		{Tag: "caption", Label: "The caption element represents the title of a table."},
	}).Maybe()
	p.On("CollectAttributes", "button").Return([]mockAttribute{
		{Name: "type"},
		{Name: "disabled", Kind: completion.AttributeValueless},
		{Name: "onclick", Kind: completion.AttributeHandler},
	}).Maybe()
	p.On("CollectValues", "button", "type").Return([]string{"submit", "reset", "button"}).Maybe()
	return p
}

func labels(list *completion.List) []string {
	var out []string
	for _, item := range list.Items {
		out = append(out, item.Label)
	}
	return out
}

func TestCompleteTagName(t *testing.T) {
	provider := buttonProvider()

	list, err := completion.Complete(context.Background(), "<di", 3, nil, provider)
	require.NoError(t, err)

	assert.False(t, list.IsIncomplete)
	require.Len(t, list.Items, 2)
	assert.Equal(t, completion.Suggestion{
		Label:         "button",
		Documentation: "The button element represents a button.",
		Kind:          completion.KindTag,
		InsertText:    "button",
		Range:         completion.Range{Start: 1, End: 3},
	}, list.Items[0])
	assert.Equal(t, "caption", list.Items[1].Label)
	provider.AssertCalled(t, "CollectTags")
}

func TestCompleteAttributeName(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		offset int
		want   []completion.Suggestion
	}{
		{
			name:   "empty attribute position gets placeholders",
			text:   "<button ",
			offset: 8,
			want: []completion.Suggestion{
				{Label: "type", Kind: completion.KindAttribute, InsertText: `type="{{}}"`, Range: completion.Range{Start: 8, End: 8}},
				{Label: "disabled", Kind: completion.KindAttribute, InsertText: "disabled", Range: completion.Range{Start: 8, End: 8}},
				{Label: "onclick", Kind: completion.KindFunction, InsertText: `onclick="{{}}"`, Range: completion.Range{Start: 8, End: 8}},
			},
		},
		{
			name:   "partial name is replaced",
			text:   "<button disabled",
			offset: 16,
			want: []completion.Suggestion{
				{Label: "type", Kind: completion.KindAttribute, InsertText: `type="{{}}"`, Range: completion.Range{Start: 8, End: 16}},
				{Label: "disabled", Kind: completion.KindAttribute, InsertText: "disabled", Range: completion.Range{Start: 8, End: 16}},
				{Label: "onclick", Kind: completion.KindFunction, InsertText: `onclick="{{}}"`, Range: completion.Range{Start: 8, End: 16}},
			},
		},
		{
			name:   "cursor before an existing name replaces it",
			text:   `<button type="x">`,
			offset: 8,
			want: []completion.Suggestion{
				{Label: "type", Kind: completion.KindAttribute, InsertText: "type", Range: completion.Range{Start: 8, End: 12}},
				{Label: "disabled", Kind: completion.KindAttribute, InsertText: "disabled", Range: completion.Range{Start: 8, End: 12}},
				{Label: "onclick", Kind: completion.KindFunction, InsertText: "onclick", Range: completion.Range{Start: 8, End: 12}},
			},
		},
		{
			name:   "no placeholder when equals follows",
			text:   `<button type="x">`,
			offset: 10,
			want: []completion.Suggestion{
				{Label: "type", Kind: completion.KindAttribute, InsertText: "type", Range: completion.Range{Start: 8, End: 12}},
				{Label: "disabled", Kind: completion.KindAttribute, InsertText: "disabled", Range: completion.Range{Start: 8, End: 12}},
				{Label: "onclick", Kind: completion.KindFunction, InsertText: "onclick", Range: completion.Range{Start: 8, End: 12}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := buttonProvider()

			list, err := completion.Complete(context.Background(), tt.text, tt.offset, nil, provider)
			require.NoError(t, err)
			assert.Equal(t, tt.want, list.Items)
			provider.AssertCalled(t, "CollectAttributes", "button")
		})
	}
}

func TestCompleteAttributeValue(t *testing.T) {
	t.Run("inside quotes inserts bare values", func(t *testing.T) {
		list, err := completion.Complete(context.Background(), `<button type="sub">`, 17, nil, buttonProvider())
		require.NoError(t, err)

		require.Len(t, list.Items, 3)
		assert.Equal(t, completion.Suggestion{
			Label:      "submit",
			Kind:       completion.KindAttributeValue,
			InsertText: "submit",
			FilterText: "submit",
			Range:      completion.Range{Start: 14, End: 17},
		}, list.Items[0])
	})

	t.Run("after equals inserts quoted values", func(t *testing.T) {
		list, err := completion.Complete(context.Background(), "<button type=", 13, nil, buttonProvider())
		require.NoError(t, err)

		assert.Equal(t, []string{"submit", "reset", "button"}, labels(list))
		for _, item := range list.Items {
			assert.Equal(t, `"`+item.Label+`"`, item.InsertText)
			assert.Equal(t, item.InsertText, item.FilterText)
			assert.Equal(t, completion.Range{Start: 13, End: 13}, item.Range)
		}
	})

	t.Run("cursor on the opening quote replaces the quoted value", func(t *testing.T) {
		list, err := completion.Complete(context.Background(), `<button type="sub">`, 13, nil, buttonProvider())
		require.NoError(t, err)

		require.NotEmpty(t, list.Items)
		assert.Equal(t, `"submit"`, list.Items[0].InsertText)
		assert.Equal(t, completion.Range{Start: 13, End: 18}, list.Items[0].Range)
	})

	t.Run("unknown attribute has no values", func(t *testing.T) {
		provider := buttonProvider()
		provider.On("CollectValues", "button", "form").Return([]string(nil))

		list, err := completion.Complete(context.Background(), `<button form="">`, 14, nil, provider)
		require.NoError(t, err)
		assert.Empty(t, list.Items)
	})
}

func TestCompleteNoSuggestions(t *testing.T) {
	t.Run("text content", func(t *testing.T) {
		provider := &MockProvider{}

		list, err := completion.Complete(context.Background(), "<div>hello", 8, nil, provider)
		require.NoError(t, err)
		require.NotNil(t, list)
		assert.Empty(t, list.Items)
		assert.False(t, list.IsIncomplete)
		provider.AssertExpectations(t)
	})

	t.Run("nil provider", func(t *testing.T) {
		list, err := completion.Complete(context.Background(), "<di", 3, nil, nil)
		require.NoError(t, err)
		assert.NotNil(t, list.Items)
		assert.Empty(t, list.Items)
	})

	t.Run("offset out of range", func(t *testing.T) {
		_, err := completion.Complete(context.Background(), "<di", 10, nil, buttonProvider())
		require.Error(t, err)
		assert.True(t, errors.Is(err, completion.ErrOffsetOutOfRange))
	})
}

func TestServiceDoComplete(t *testing.T) {
	svc := completion.NewService(buttonProvider())
	doc := position.NewDocument("file:///app.html", "html", 1, "<template>\n  <bu\n</template>")

	list, err := svc.DoComplete(context.Background(), doc, position.Place{Line: 1, Character: 5}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"button", "caption"}, labels(list))

	edit := list.Items[0].TextEdit(doc)
	assert.Equal(t, position.Range{
		Start: position.Place{Line: 1, Character: 3},
		End:   position.Place{Line: 1, Character: 5},
	}, edit.Range)
	assert.Equal(t, "button", edit.NewText)

	t.Run("providers are filtered by language", func(t *testing.T) {
		doc := position.NewDocument("file:///notes.txt", "plaintext", 1, "<bu")
		list, err := svc.DoComplete(context.Background(), doc, position.Place{Line: 0, Character: 3}, nil)
		require.NoError(t, err)
		assert.Empty(t, list.Items)
	})
}

func TestSuggestionJSON(t *testing.T) {
	data, err := json.Marshal(completion.Suggestion{
		Label:      "onclick",
		Kind:       completion.KindFunction,
		InsertText: "onclick",
		Range:      completion.Range{Start: 1, End: 2},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"label":"onclick","kind":"function","insertText":"onclick","range":{"start":1,"end":2}}`, string(data))
}

func TestComposite(t *testing.T) {
	first := &MockProvider{}
	first.On("ID").Return("first")
	first.On("IsApplicable", "html").Return(true)
	first.On("CollectTags").Return([]mockTag{{Tag: "div", Label: "first div"}, {Tag: "span"}})
	first.On("CollectAttributes", "div").Return([]mockAttribute{{Name: "id"}})
	first.On("CollectValues", "div", "dir").Return([]string{"ltr", "rtl"})

	second := &MockProvider{}
	second.On("ID").Return("second")
	second.On("IsApplicable", "html").Return(false)
	second.On("CollectTags").Return([]mockTag{{Tag: "div", Label: "second div"}, {Tag: "compose"}})
	second.On("CollectAttributes", "div").Return([]mockAttribute{{Name: "id", Kind: completion.AttributeValueless}, {Name: "if.bind"}})
	second.On("CollectValues", "div", "dir").Return([]string{"rtl", "auto"})

	c := completion.NewComposite(first, nil, second)
	require.Len(t, c.Providers(), 2)
	assert.Equal(t, "composite+first+second", c.ID())

	var tags []mockTag
	c.CollectTags(func(tag, label string) { tags = append(tags, mockTag{Tag: tag, Label: label}) })
	assert.Equal(t, []mockTag{{Tag: "div", Label: "first div"}, {Tag: "span"}, {Tag: "compose"}}, tags, "first provider wins")

	var attrs []mockAttribute
	c.CollectAttributes("div", func(name string, kind completion.AttributeKind) {
		attrs = append(attrs, mockAttribute{Name: name, Kind: kind})
	})
	assert.Equal(t, []mockAttribute{{Name: "id"}, {Name: "if.bind"}}, attrs)

	var values []string
	c.CollectValues("div", "dir", func(v string) { values = append(values, v) })
	assert.Equal(t, []string{"ltr", "rtl", "auto"}, values)

	html := c.For("html")
	assert.True(t, html.IsApplicable("html"))
	assert.Equal(t, "composite+first", html.ID())
}

func TestKindJSON(t *testing.T) {
	for _, k := range []completion.Kind{completion.KindTag, completion.KindAttribute, completion.KindAttributeValue, completion.KindFunction} {
		data, err := json.Marshal(k)
		require.NoError(t, err)

		var got completion.Kind
		require.NoError(t, json.Unmarshal(data, &got))
		assert.Equal(t, k, got)
	}

	var k completion.Kind
	require.Error(t, json.Unmarshal([]byte(`"widget"`), &k))
}
