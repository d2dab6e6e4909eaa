package ollama

import (
	"errors"
	"testing"

	"github.com/ollama/ollama/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"organizer/pkg/planner/llm"
	"organizer/pkg/planner/llmerrors"
)

func TestConvertMessagesToOllama(t *testing.T) {
	messages := []llm.CompletionMessage{
		llm.NewSystemMessage("sys"),
		llm.NewUserMessage("hello"),
	}

	converted, err := convertMessagesToOllama(messages)
	require.NoError(t, err)
	require.Len(t, converted, 2)
	assert.Equal(t, "system", converted[0].Role)
	assert.Equal(t, "user", converted[1].Role)
	assert.Equal(t, "hello", converted[1].Content)

	_, err = convertMessagesToOllama(nil)
	assert.Error(t, err)
}

func TestClassifyError(t *testing.T) {
	assert.Nil(t, classifyError(nil))

	refused := classifyError(errors.New("dial tcp: connection refused"))
	assert.Equal(t, llmerrors.ErrorTypeTransient, llmerrors.TypeOf(refused))

	missing := classifyError(errors.New(`model "phi4" not found`))
	assert.Equal(t, llmerrors.ErrorTypeBadPrompt, llmerrors.TypeOf(missing))

	unknown := classifyError(errors.New("weird failure"))
	assert.Equal(t, llmerrors.ErrorTypeUnknown, llmerrors.TypeOf(unknown))
}

func TestGetStopReason(t *testing.T) {
	assert.Equal(t, "incomplete", getStopReason(&api.ChatResponse{Done: false}))
	assert.Equal(t, "end_turn", getStopReason(&api.ChatResponse{Done: true, DoneReason: "stop"}))
	assert.Equal(t, "max_tokens", getStopReason(&api.ChatResponse{Done: true, DoneReason: "length"}))
	assert.Equal(t, "end_turn", getStopReason(&api.ChatResponse{Done: true}))
}
