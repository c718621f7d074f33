package agent

import (
	"context"
	"testing"

	"github.com/Rrens/estate-chat/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T, classifierReply string, db, chat *recorder) *Router {
	t.Helper()
	r, err := NewRouter(fixedClassifier(classifierReply, nil), "", []Capability{db.capability(), chat.capability()}, GeneralChat)
	require.NoError(t, err)
	return r
}

func TestRouter_RoutingSeparation(t *testing.T) {
	db := &recorder{name: RealEstateDB, reply: "The average monthly price in Prague is 18 EUR/m2."}
	chat := &recorder{name: GeneralChat, reply: "I'm great, thanks!"}

	r, err := NewRouter(keywordClassifier(), "", []Capability{db.capability(), chat.capability()}, GeneralChat)
	require.NoError(t, err)

	d, err := r.Route(context.Background(), "What is the average monthly price in Prague?")
	require.NoError(t, err)
	assert.Equal(t, RealEstateDB, d.Capability)
	assert.Equal(t, 1, db.calls())
	assert.Equal(t, 0, chat.calls())

	d, err = r.Route(context.Background(), "Hi, how are you?")
	require.NoError(t, err)
	assert.Equal(t, GeneralChat, d.Capability)
	assert.Equal(t, "I'm great, thanks!", d.Reply)
	assert.Equal(t, 1, db.calls(), "database must not be queried for small talk")
	assert.Equal(t, 1, chat.calls())
}

func TestRouter_FallsBackWhenDatabaseFails(t *testing.T) {
	db := &recorder{name: RealEstateDB, err: errBoom}
	chat := &recorder{name: GeneralChat, reply: "I can't look that up, but prices vary."}

	d, err := newTestRouter(t, RealEstateDB, db, chat).Route(context.Background(), "price in Prague?")
	require.NoError(t, err)
	assert.Equal(t, GeneralChat, d.Capability)
	assert.True(t, d.FellBack)
	assert.Equal(t, "I can't look that up, but prices vary.", d.Reply)
	require.Equal(t, 1, chat.calls())
	assert.Equal(t, "price in Prague?", chat.prompts[0], "fallback gets the original prompt")
}

func TestRouter_EmptyReplyCountsAsFailure(t *testing.T) {
	db := &recorder{name: RealEstateDB, reply: "   "}
	chat := &recorder{name: GeneralChat, reply: "fallback answer"}

	d, err := newTestRouter(t, RealEstateDB, db, chat).Route(context.Background(), "area?")
	require.NoError(t, err)
	assert.Equal(t, "fallback answer", d.Reply)
	assert.True(t, d.FellBack)
}

func TestRouter_ApologyWhenEverythingFails(t *testing.T) {
	db := &recorder{name: RealEstateDB, err: errBoom}
	chat := &recorder{name: GeneralChat, err: errBoom}

	d, err := newTestRouter(t, RealEstateDB, db, chat).Route(context.Background(), "price?")
	require.NoError(t, err)
	assert.Equal(t, Apology, d.Reply)
	assert.Equal(t, 1, chat.calls())

	// Chosen capability is the fallback itself: it is not retried.
	chat2 := &recorder{name: GeneralChat, err: errBoom}
	d, err = newTestRouter(t, GeneralChat, &recorder{name: RealEstateDB}, chat2).Route(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, Apology, d.Reply)
	assert.Equal(t, 1, chat2.calls())
}

func TestRouter_UnrecognizedClassification(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  string
	}{
		{"garbled", "banana", GeneralChat},
		{"quoted exact", `"real_estate_db"`, RealEstateDB},
		{"upper case", "GENERAL_CHAT.", GeneralChat},
		{"sentence", "I would use real_estate_db for this.", RealEstateDB},
		{"both named", "real_estate_db or general_chat", GeneralChat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := &recorder{name: RealEstateDB, reply: "db"}
			chat := &recorder{name: GeneralChat, reply: "chat"}

			d, err := newTestRouter(t, tt.reply, db, chat).Route(context.Background(), "question")
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Capability)
			assert.False(t, d.FellBack)
		})
	}
}

func TestRouter_ClassifierFailureUsesFallback(t *testing.T) {
	db := &recorder{name: RealEstateDB, reply: "db"}
	chat := &recorder{name: GeneralChat, reply: "chat"}

	r, err := NewRouter(fixedClassifier("", errBoom), "", []Capability{db.capability(), chat.capability()}, GeneralChat)
	require.NoError(t, err)

	d, err := r.Route(context.Background(), "price?")
	require.NoError(t, err)
	assert.Equal(t, GeneralChat, d.Capability)
	assert.Equal(t, 0, db.calls())
}

func TestRouter_CancelledContext(t *testing.T) {
	db := &recorder{name: RealEstateDB, reply: "db"}
	chat := &recorder{name: GeneralChat, reply: "chat"}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r, err := NewRouter(fixedClassifier("", context.Canceled), "", []Capability{db.capability(), chat.capability()}, GeneralChat)
	require.NoError(t, err)

	_, err = r.Route(ctx, "price?")
	var capErr *domain.CapabilityError
	require.ErrorAs(t, err, &capErr)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewRouter_Validation(t *testing.T) {
	chat := (&recorder{name: GeneralChat}).capability()

	_, err := NewRouter(nil, "", nil, GeneralChat)
	assert.Error(t, err)

	_, err = NewRouter(nil, "", []Capability{chat}, "missing")
	assert.Error(t, err)

	_, err = NewRouter(nil, "", []Capability{chat, chat}, GeneralChat)
	assert.Error(t, err)

	_, err = NewRouter(nil, "", []Capability{(&recorder{name: RealEstateDB}).capability(), chat}, GeneralChat)
	assert.Error(t, err, "two capabilities need a classifier")

	r, err := NewRouter(nil, "", []Capability{chat}, GeneralChat)
	require.NoError(t, err)
	assert.Equal(t, []string{GeneralChat}, r.Capabilities())
}
