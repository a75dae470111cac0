package completion_test

import (
	"github.com/stretchr/testify/mock"

	"github.com/walteh/auhtml/pkg/completion"
)

type mockTag struct {
	Tag, Label string
}

type mockAttribute struct {
	Name string
	Kind completion.AttributeKind
}

type MockProvider struct {
	mock.Mock
}

var _ completion.Provider = (*MockProvider)(nil)

func (m *MockProvider) ID() string {
	return m.Called().String(0)
}

func (m *MockProvider) IsApplicable(languageID string) bool {
	return m.Called(languageID).Bool(0)
}

func (m *MockProvider) CollectTags(visit func(tag, label string)) {
	args := m.Called()
	for _, t := range args.Get(0).([]mockTag) {
		visit(t.Tag, t.Label)
	}
}

func (m *MockProvider) CollectAttributes(tag string, visit func(name string, kind completion.AttributeKind)) {
	args := m.Called(tag)
	for _, a := range args.Get(0).([]mockAttribute) {
		visit(a.Name, a.Kind)
	}
}

func (m *MockProvider) CollectValues(tag, attribute string, visit func(value string)) {
	args := m.Called(tag, attribute)
	for _, v := range args.Get(0).([]string) {
		visit(v)
	}
}
