package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateGuild(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	alice := f.createUser(t, "alice", false)

	guild, err := f.guilds.Create(ctx, alice.ID, "team", "our corner")
	require.NoError(t, err)
	assert.NotZero(t, guild.ID)
	assert.Equal(t, alice.ID, guild.CreatorID)

	// The creator joins automatically.
	view, err := f.guilds.Get(ctx, guild.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", view.CreatorUsername)
	assert.Equal(t, int64(1), view.MemberCount)
}

func TestCreateGuild_SingleGuildRule(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	alice := f.createUser(t, "alice", false)

	_, err := f.guilds.Create(ctx, alice.ID, "first", "")
	require.NoError(t, err)

	_, err = f.guilds.Create(ctx, alice.ID, "second", "")
	assert.ErrorIs(t, err, ErrAlreadyInGuild, "membership anywhere blocks creating another guild")
}

func TestGetGuild_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.guilds.Get(context.Background(), 999999)
	assert.ErrorIs(t, err, ErrGuildNotFound)
}

func TestJoinGuild(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	alice := f.createUser(t, "alice", false)
	bob := f.createUser(t, "bob", false)

	guild, err := f.guilds.Create(ctx, alice.ID, "team", "")
	require.NoError(t, err)

	require.NoError(t, f.guilds.Join(ctx, guild.ID, bob.ID))

	view, err := f.guilds.Get(ctx, guild.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), view.MemberCount)

	// A member of one guild may not join another.
	carol := f.createUser(t, "carol", false)
	other, err := f.guilds.Create(ctx, carol.ID, "rivals", "")
	require.NoError(t, err)
	assert.ErrorIs(t, f.guilds.Join(ctx, other.ID, bob.ID), ErrAlreadyInGuild)

	assert.ErrorIs(t, f.guilds.Join(ctx, 999999, bob.ID), ErrGuildNotFound)
}

func TestInviteGuild(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	alice := f.createUser(t, "alice", false)
	f.createUser(t, "bob", false)

	guild, err := f.guilds.Create(ctx, alice.ID, "team", "")
	require.NoError(t, err)

	require.NoError(t, f.guilds.Invite(ctx, guild.ID, "bob"))
	assert.ErrorIs(t, f.guilds.Invite(ctx, guild.ID, "bob"), ErrAlreadyInGuild)
	assert.ErrorIs(t, f.guilds.Invite(ctx, guild.ID, "ghost"), ErrUserNotFound)
	assert.ErrorIs(t, f.guilds.Invite(ctx, 999999, "bob"), ErrGuildNotFound)
}

func TestLeaveGuild(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	alice := f.createUser(t, "alice", false)
	bob := f.createUser(t, "bob", false)

	guild, err := f.guilds.Create(ctx, alice.ID, "team", "")
	require.NoError(t, err)
	require.NoError(t, f.guilds.Join(ctx, guild.ID, bob.ID))

	require.NoError(t, f.guilds.Leave(ctx, guild.ID, bob.ID))

	view, err := f.guilds.Get(ctx, guild.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), view.MemberCount)

	// Having left, bob is free to join elsewhere.
	carol := f.createUser(t, "carol", false)
	other, err := f.guilds.Create(ctx, carol.ID, "rivals", "")
	require.NoError(t, err)
	require.NoError(t, f.guilds.Join(ctx, other.ID, bob.ID))
}

func TestListForUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	alice := f.createUser(t, "alice", false)
	bob := f.createUser(t, "bob", false)

	guild, err := f.guilds.Create(ctx, alice.ID, "team", "")
	require.NoError(t, err)

	views, err := f.guilds.ListForUser(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, guild.ID, views[0].ID)

	views, err = f.guilds.ListForUser(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, views)
}
