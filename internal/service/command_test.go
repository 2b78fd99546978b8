package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unitychat/unitychat/internal/model"
)

func TestParseCommand(t *testing.T) {
	cmd, err := ParseCommand("/ban", CommandParams{Username: "alice", Reason: "spam"})
	require.NoError(t, err)
	assert.Equal(t, BanCommand{Username: "alice", Reason: "spam"}, cmd)

	cmd, err = ParseCommand("/unban", CommandParams{Username: "alice"})
	require.NoError(t, err)
	assert.Equal(t, UnbanCommand{Username: "alice"}, cmd)

	cmd, err = ParseCommand("/mute", CommandParams{Username: "alice", Duration: "15"})
	require.NoError(t, err)
	assert.Equal(t, MuteCommand{Username: "alice", DurationMinutes: 15}, cmd)

	cmd, err = ParseCommand("/unmute", CommandParams{Username: "alice"})
	require.NoError(t, err)
	assert.Equal(t, UnmuteCommand{Username: "alice"}, cmd)

	cmd, err = ParseCommand("/clear", CommandParams{})
	require.NoError(t, err)
	assert.Equal(t, ClearCommand{}, cmd)

	cmd, err = ParseCommand("/edit", CommandParams{MessageID: 42, NewText: "fixed"})
	require.NoError(t, err)
	assert.Equal(t, EditCommand{MessageID: 42, NewText: "fixed"}, cmd)

	cmd, err = ParseCommand("/announce", CommandParams{Message: "hello"})
	require.NoError(t, err)
	assert.Equal(t, AnnounceCommand{Message: "hello"}, cmd)
}

func TestParseCommand_Unknown(t *testing.T) {
	_, err := ParseCommand("/dance", CommandParams{})
	assert.ErrorIs(t, err, ErrUnknownCommand)

	_, err = ParseCommand("", CommandParams{})
	assert.ErrorIs(t, err, ErrUnknownCommand)
}

func TestParseCommand_MissingParams(t *testing.T) {
	for _, name := range []string{"/ban", "/unban", "/mute", "/unmute"} {
		_, err := ParseCommand(name, CommandParams{})
		assert.ErrorIs(t, err, ErrMissingParam, "command %s requires a username", name)
	}

	_, err := ParseCommand("/edit", CommandParams{NewText: "x"})
	assert.ErrorIs(t, err, ErrMissingParam)

	_, err = ParseCommand("/edit", CommandParams{MessageID: 1})
	assert.ErrorIs(t, err, ErrMissingParam)

	_, err = ParseCommand("/announce", CommandParams{})
	assert.ErrorIs(t, err, ErrMissingParam)
}

func TestParseCommand_MuteDurationFallback(t *testing.T) {
	for _, duration := range []string{"", "abc", "-3", "0"} {
		cmd, err := ParseCommand("/mute", CommandParams{Username: "alice", Duration: duration})
		require.NoError(t, err)
		assert.Equal(t, DefaultMuteMinutes, cmd.(MuteCommand).DurationMinutes, "duration %q", duration)
	}
}

func TestDispatch_BanFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	admin := f.createUser(t, "admin", true)
	f.createUser(t, "alice", false)

	confirmation, err := f.commands.Dispatch(ctx, admin.ID, BanCommand{Username: "alice", Reason: "spam"})
	require.NoError(t, err)
	assert.Equal(t, "alice has been banned", confirmation)

	confirmation, err = f.commands.Dispatch(ctx, admin.ID, UnbanCommand{Username: "alice"})
	require.NoError(t, err)
	assert.Equal(t, "alice has been unbanned", confirmation)

	_, err = f.commands.Dispatch(ctx, admin.ID, UnbanCommand{Username: "alice"})
	assert.ErrorIs(t, err, ErrNotBanned)
}

func TestDispatch_MuteFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	admin := f.createUser(t, "admin", true)
	f.createUser(t, "alice", false)

	confirmation, err := f.commands.Dispatch(ctx, admin.ID, MuteCommand{Username: "alice", DurationMinutes: 5})
	require.NoError(t, err)
	assert.Equal(t, "alice has been muted for 5 minute(s)", confirmation)

	confirmation, err = f.commands.Dispatch(ctx, admin.ID, UnmuteCommand{Username: "alice"})
	require.NoError(t, err)
	assert.Equal(t, "alice has been unmuted", confirmation)
}

func TestDispatch_MessageCommands(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	admin := f.createUser(t, "admin", true)
	alice := f.createUser(t, "alice", false)
	msg := f.post(t, alice.ID, "original")

	confirmation, err := f.commands.Dispatch(ctx, admin.ID, EditCommand{MessageID: msg.ID, NewText: "edited"})
	require.NoError(t, err)
	assert.Equal(t, "message updated", confirmation)

	confirmation, err = f.commands.Dispatch(ctx, admin.ID, AnnounceCommand{Message: "big news"})
	require.NoError(t, err)
	assert.Equal(t, "announcement posted", confirmation)

	confirmation, err = f.commands.Dispatch(ctx, admin.ID, ClearCommand{})
	require.NoError(t, err)
	assert.Equal(t, "all messages cleared", confirmation)

	views, err := f.messages.List(ctx, 50)
	require.NoError(t, err)
	assert.Empty(t, views)
}

func TestDispatch_UnknownUser(t *testing.T) {
	f := newFixture(t)
	admin := f.createUser(t, "admin", true)

	_, err := f.commands.Dispatch(context.Background(), admin.ID, BanCommand{Username: "ghost"})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestDispatch_CommandsLeaveAuditTrail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	admin := f.createUser(t, "admin", true)
	f.createUser(t, "alice", false)

	_, err := f.commands.Dispatch(ctx, admin.ID, MuteCommand{Username: "alice", DurationMinutes: 5})
	require.NoError(t, err)

	var system []model.Message
	require.NoError(t, f.db.Where("message_type = ?", model.MessageTypeSystem).Find(&system).Error)
	require.Len(t, system, 1)
	assert.Equal(t, "!System: alice was muted for 5 minute(s)!", system[0].Body)
}
