package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slack-archive-sync/project/dto"
)

func TestClassify_URLVerification(t *testing.T) {
	d := Classify(&dto.SlackEventRequest{Type: "url_verification", Challenge: "abc123"})

	assert.Equal(t, DispositionVerify, d.Kind)
	assert.Equal(t, "abc123", d.Challenge)
	assert.Nil(t, d.Event)
}

func TestClassify_IgnoredSubtypes(t *testing.T) {
	for _, subtype := range []string{"message_changed", "message_deleted", "bot_message", "channel_join", "thread_broadcast", "FILE_SHARE"} {
		t.Run(subtype, func(t *testing.T) {
			d := Classify(&dto.SlackEventRequest{
				Type: "event_callback",
				Event: dto.SlackEvent{
					Type:    "message",
					SubType: subtype,
					Files:   []dto.SlackFile{{Name: "a.zip", URLPrivate: "https://x"}},
				},
			})
			assert.Equal(t, DispositionIgnore, d.Kind)
			assert.Nil(t, d.Event)
		})
	}
}

func TestClassify_Process(t *testing.T) {
	d := Classify(&dto.SlackEventRequest{
		Type:    "event_callback",
		EventID: "Ev1",
		TeamID:  "T1",
		Event: dto.SlackEvent{
			Type:    "message",
			SubType: "file_share",
			Channel: "C1",
			Text:    "週次レポート",
			Files: []dto.SlackFile{
				{ID: "F1", Name: "report.zip", Title: "report", Mimetype: "application/zip", URLPrivate: "https://files.slack.com/F1"},
			},
		},
	})

	require.Equal(t, DispositionProcess, d.Kind)
	require.NotNil(t, d.Event)
	assert.Equal(t, "Ev1", d.Event.EventID)
	assert.Equal(t, "C1", d.Event.ChannelID)
	assert.Equal(t, "週次レポート", d.Event.Text)
	require.Len(t, d.Event.Files, 1)
	assert.Equal(t, "F1", d.Event.Files[0].ID)
	assert.Equal(t, "report.zip", d.Event.Files[0].Name)
	assert.Equal(t, "application/zip", d.Event.Files[0].Mimetype)
	assert.Equal(t, "https://files.slack.com/F1", d.Event.Files[0].URLPrivate)
}

func TestClassify_ProcessDefaults(t *testing.T) {
	d := Classify(&dto.SlackEventRequest{
		Type:  "event_callback",
		Event: dto.SlackEvent{Type: "message"},
	})

	require.Equal(t, DispositionProcess, d.Kind)
	assert.Equal(t, "untitled", d.Event.Text)
	assert.NotNil(t, d.Event.Files)
	assert.Empty(t, d.Event.Files)
}

func TestClassify_NoOp(t *testing.T) {
	tests := []struct {
		name string
		req  *dto.SlackEventRequest
	}{
		{name: "nil", req: nil},
		{name: "empty", req: &dto.SlackEventRequest{}},
		{name: "unknown type", req: &dto.SlackEventRequest{Type: "app_rate_limited"}},
		{name: "non-message event", req: &dto.SlackEventRequest{Type: "event_callback", Event: dto.SlackEvent{Type: "app_mention"}}},
		{name: "missing event", req: &dto.SlackEventRequest{Type: "event_callback"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, DispositionNoOp, Classify(tt.req).Kind)
		})
	}
}

func TestDispositionKind_String(t *testing.T) {
	assert.Equal(t, "verify", DispositionVerify.String())
	assert.Equal(t, "process", DispositionProcess.String())
	assert.Equal(t, "ignore", DispositionIgnore.String())
	assert.Equal(t, "noop", DispositionNoOp.String())
}
