package session_test

import (
	"testing"

	"github.com/myrjola/lastbroadcast/internal/caller"
	"github.com/myrjola/lastbroadcast/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialState(t *testing.T) {
	s := session.New()

	assert.Equal(t, session.PhaseSignOn, s.Phase)
	assert.Equal(t, 1, s.CurrentRound)
	assert.Nil(t, s.CurrentCaller)
	assert.Empty(t, s.PlayerCallsign)
	assert.Empty(t, s.Conversation)
	assert.False(t, s.Processing)
}

func TestTranscript(t *testing.T) {
	s := session.New()

	first := session.NewMessage(session.SpeakerCaller, "hello?")
	second := session.NewMessage(session.SpeakerPlayer, "this is Echo7")
	s.AddMessage(first)
	s.AddMessage(second)

	require.Len(t, s.Conversation, 2)
	assert.Equal(t, "hello?", s.Conversation[0].Text)
	assert.Equal(t, session.SpeakerPlayer, s.Conversation[1].Speaker)
	assert.NotEqual(t, s.Conversation[0].ID, s.Conversation[1].ID)

	s.ClearConversation()
	assert.Empty(t, s.Conversation)
}

func TestResetIdempotent(t *testing.T) {
	s := session.New()
	s.SetPhase(session.PhasePlayerTurn)
	s.SetRound(5)
	s.SetCallsign("Echo7")
	s.SetCaller(&caller.Caller{ID: "c1"})
	s.SetProcessing(true)
	s.AddMessage(session.NewMessage(session.SpeakerCaller, "hi"))

	s.Reset()
	once := *s
	s.Reset()

	assert.Equal(t, once, *s)
	assert.Equal(t, *session.New(), *s)
}
