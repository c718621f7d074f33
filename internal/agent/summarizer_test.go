package agent

import (
	"context"
	"fmt"
	"testing"

	"github.com/Rrens/estate-chat/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func conversation(n int) []Turn {
	turns := make([]Turn, n)
	for i := range turns {
		role := domain.RoleUser
		if i%2 == 1 {
			role = domain.RoleAssistant
		}
		turns[i] = Turn{Role: role, Content: fmt.Sprintf("m%d", i)}
	}
	return turns
}

func TestSummarizer_KeepsWindowAndCondensesTheRest(t *testing.T) {
	chat := &recorder{name: GeneralChat, reply: "  user asked about Berlin prices  "}
	s := NewSummarizer(5, chat.capability())

	out, err := s.Run(context.Background(), State{Messages: conversation(7)})
	require.NoError(t, err)

	require.Len(t, out.Messages, 5)
	assert.Equal(t, "m2", out.Messages[0].Content)
	assert.Equal(t, "m6", out.Messages[4].Content)
	assert.Equal(t, "user asked about Berlin prices", out.Summary)

	require.Equal(t, 1, chat.calls())
	assert.Contains(t, chat.prompts[0], "User: m0\nAssistant: m1")
	assert.NotContains(t, chat.prompts[0], "m2")
}

func TestSummarizer_IncludesPreviousSummary(t *testing.T) {
	chat := &recorder{name: GeneralChat, reply: "merged"}
	s := NewSummarizer(2, chat.capability())

	out, err := s.Run(context.Background(), State{Messages: conversation(3), Summary: "earlier: rent in Hamburg"})
	require.NoError(t, err)
	assert.Equal(t, "merged", out.Summary)
	assert.Contains(t, chat.prompts[0], "earlier: rent in Hamburg")
}

func TestSummarizer_PassThroughWithinWindow(t *testing.T) {
	chat := &recorder{name: GeneralChat, reply: "unused"}
	s := NewSummarizer(5, chat.capability())

	in := State{Messages: conversation(5), Summary: "kept"}
	out, err := s.Run(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, in, out)
	assert.Equal(t, 0, chat.calls())
}

func TestSummarizer_Boundedness(t *testing.T) {
	for window := 1; window <= 6; window++ {
		for n := 0; n <= 12; n++ {
			chat := &recorder{name: GeneralChat, reply: "summary"}
			out, err := NewSummarizer(window, chat.capability()).Run(context.Background(), State{Messages: conversation(n)})
			require.NoError(t, err)
			assert.LessOrEqual(t, len(out.Messages), window, "window=%d n=%d", window, n)
			if n > window {
				assert.NotEmpty(t, out.Summary, "window=%d n=%d", window, n)
			}
		}
	}
}

func TestSummarizer_FailureKeepsState(t *testing.T) {
	chat := &recorder{name: GeneralChat, err: errBoom}
	s := NewSummarizer(2, chat.capability())

	in := State{Messages: conversation(4), Summary: "old"}
	out, err := s.Run(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestSummarizer_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	chat := &recorder{name: GeneralChat, err: context.Canceled}
	_, err := NewSummarizer(2, chat.capability()).Run(ctx, State{Messages: conversation(4)})

	var capErr *domain.CapabilityError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, GeneralChat, capErr.Capability)
}

func TestNewSummarizer_ClampsWindow(t *testing.T) {
	assert.Equal(t, 1, NewSummarizer(0, Capability{}).Window())
}
