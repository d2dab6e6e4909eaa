package planner

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"organizer/pkg/planner/llm"
	"organizer/pkg/planner/llmerrors"
)

func TestProposeStructureSuccess(t *testing.T) {
	mock := NewMockLLMClient([]llm.CompletionResponse{
		{Content: "Sure, here is your plan:\n[{\"source\":\"a.jpg\",\"destination\":\"Images/a.jpg\"}]"},
	}, nil)
	svc := NewService(mock, Options{})

	files := []FileDescriptor{{Path: "a.jpg", Name: "a.jpg"}}
	plan, err := svc.ProposeStructure(context.Background(), files, "")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"source":"a.jpg","destination":"Images/a.jpg"}]`, string(plan))

	// The rendered prompt reaches the model as a single user message.
	require.Len(t, mock.LastRequest.Messages, 1)
	assert.Equal(t, llm.RoleUser, mock.LastRequest.Messages[0].Role)
	assert.Contains(t, mock.LastRequest.Messages[0].Content, `"a.jpg"`)
	assert.Contains(t, mock.LastRequest.Messages[0].Content, DefaultInstruction)
}

func TestProposeStructureDisabled(t *testing.T) {
	svc := NewService(nil, Options{})
	assert.False(t, svc.Enabled())
	assert.Equal(t, "disabled", svc.ModelName())

	_, err := svc.ProposeStructure(context.Background(), []FileDescriptor{{Path: "a", Name: "a"}}, "")
	require.Error(t, err)
	assert.True(t, Is(err, KindConfiguration))
}

func TestProposeStructureRejectsOversizedInput(t *testing.T) {
	mock := NewMockLLMClient(nil, nil)
	svc := NewService(mock, Options{})

	files := []FileDescriptor{{Path: "a", Name: "a"}}
	huge := strings.Repeat("alpha beta gamma delta ", 9000)
	_, err := svc.ProposeStructure(context.Background(), files, huge)
	require.Error(t, err)
	assert.True(t, Is(err, KindInput))
	assert.Equal(t, 400, err.(*Error).HTTPStatus())
	// Generation is never invoked.
	assert.Empty(t, mock.LastRequest.Messages)
}

func TestProposeStructureProviderError(t *testing.T) {
	mock := NewMockLLMClient(nil, []error{
		llmerrors.NewErrorWithStatus(llmerrors.ErrorTypeRateLimit, 429, "quota exceeded"),
	})
	svc := NewService(mock, Options{})

	_, err := svc.ProposeStructure(context.Background(), nil, "x")
	require.Error(t, err)
	assert.True(t, Is(err, KindProvider))
	// The provider classification survives wrapping.
	assert.True(t, llmerrors.Is(err, llmerrors.ErrorTypeRateLimit))
}

func TestProposeStructureExtractionError(t *testing.T) {
	mock := NewMockLLMClient([]llm.CompletionResponse{
		{Content: "I could not produce a plan, sorry."},
	}, nil)
	svc := NewService(mock, Options{})

	_, err := svc.ProposeStructure(context.Background(), nil, "x")
	require.Error(t, err)
	assert.True(t, Is(err, KindExtraction))
	assert.Equal(t, ErrNoJSONList, err.Error())
}

func TestProposeStructureLenientPassesOddEntries(t *testing.T) {
	mock := NewMockLLMClient([]llm.CompletionResponse{
		{Content: `[{"src":"wrong-key"}]`},
	}, nil)
	svc := NewService(mock, Options{})

	plan, err := svc.ProposeStructure(context.Background(), nil, "x")
	require.NoError(t, err)
	assert.Equal(t, `[{"src":"wrong-key"}]`, string(plan))
}

func TestProposeStructureStrictRejectsOddEntries(t *testing.T) {
	mock := NewMockLLMClient([]llm.CompletionResponse{
		{Content: `[{"src":"wrong-key"}]`},
	}, nil)
	svc := NewService(mock, Options{Strict: true})

	_, err := svc.ProposeStructure(context.Background(), nil, "x")
	require.Error(t, err)
	assert.True(t, Is(err, KindValidation))
}

func TestProposeStructureStrictAcceptsValidPlan(t *testing.T) {
	mock := NewMockLLMClient([]llm.CompletionResponse{
		{Content: `[{"source":"a","destination":"Docs/a"}]`},
	}, nil)
	svc := NewService(mock, Options{Strict: true})

	plan, err := svc.ProposeStructure(context.Background(), nil, "x")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"source":"a","destination":"Docs/a"}]`, string(plan))
}

func TestProposeStructureEmptyPlan(t *testing.T) {
	mock := NewMockLLMClient([]llm.CompletionResponse{
		{Content: "Nothing to move: []"},
	}, nil)
	svc := NewService(mock, Options{})

	plan, err := svc.ProposeStructure(context.Background(), nil, "x")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(plan))
}

func TestErrorHTTPStatus(t *testing.T) {
	assert.Equal(t, 400, NewError(KindInput, "bad").HTTPStatus())
	assert.Equal(t, 500, NewError(KindProvider, "boom").HTTPStatus())
	assert.Equal(t, 500, NewError(KindConfiguration, "off").HTTPStatus())
	assert.Equal(t, 500, NewError(KindExtraction, "none").HTTPStatus())
}
