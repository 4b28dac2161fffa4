package memory_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"meshroom/broker"
	"meshroom/broker/subscription"
	"meshroom/directory"
	"meshroom/directory/memory"
)

func newDB(t *testing.T) *memory.DB {
	t.Helper()
	return memory.New(directory.Config{}, broker.New())
}

func receiveRoster(t *testing.T, sub *subscription.Subscription) directory.Roster {
	t.Helper()
	select {
	case msg := <-sub.Receive():
		roster, ok := msg.(directory.Roster)
		require.True(t, ok)
		return roster
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for roster")
		return directory.Roster{}
	}
}

func TestCreateMemberInfo(t *testing.T) {
	tests := []struct {
		name     string
		capacity int
		members  []string
		joining  string
		wantErr  error
	}{
		{
			name:     "given empty room when member joins then member is created",
			capacity: 3,
			joining:  "p1",
		},
		{
			name:     "given full room when member joins then room full",
			capacity: 2,
			members:  []string{"p1", "p2"},
			joining:  "p3",
			wantErr:  directory.ErrRoomFull,
		},
		{
			name:     "given existing member when same member joins then already exists",
			capacity: 3,
			members:  []string{"p1"},
			joining:  "p1",
			wantErr:  directory.ErrMemberAlreadyExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := newDB(t)
			require.NoError(t, db.EnsureRoomInfo("r1", tt.capacity))
			for _, id := range tt.members {
				_, err := db.CreateMemberInfo("r1", id, id)
				require.NoError(t, err)
			}

			_, err := db.CreateMemberInfo("r1", tt.joining, tt.joining)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestCreateMemberInfoInUnknownRoom(t *testing.T) {
	db := newDB(t)
	_, err := db.CreateMemberInfo("missing", "p1", "P One")
	assert.ErrorIs(t, err, directory.ErrRoomNotFound)
}

func TestRosterIsPublishedOnMembershipChange(t *testing.T) {
	db := newDB(t)
	require.NoError(t, db.EnsureRoomInfo("r1", 4))

	sub := db.SubscribeRoster("r1")
	defer func() { _ = db.UnsubscribeRoster("r1", sub) }()

	_, err := db.CreateMemberInfo("r1", "p2", "P Two")
	require.NoError(t, err)
	assert.Equal(t, []string{"p2"}, receiveRoster(t, sub).MemberIDs)

	_, err = db.CreateMemberInfo("r1", "p1", "P One")
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2"}, receiveRoster(t, sub).MemberIDs)

	require.NoError(t, db.DeleteMemberInfoByID("r1", "p2"))
	assert.Equal(t, []string{"p1"}, receiveRoster(t, sub).MemberIDs)
}

func TestFindRoomInfoByID(t *testing.T) {
	db := newDB(t)
	require.NoError(t, db.EnsureRoomInfo("r1", 4))

	info, err := db.FindRoomInfoByID("r1")
	require.NoError(t, err)
	assert.Equal(t, 4, info.Capacity)
	assert.True(t, info.IsActive)

	_, err = db.FindRoomInfoByID("missing")
	assert.ErrorIs(t, err, directory.ErrRoomNotFound)
}

func TestDeleteMemberInfoByID(t *testing.T) {
	db := newDB(t)
	require.NoError(t, db.EnsureRoomInfo("r1", 4))
	_, err := db.CreateMemberInfo("r1", "p1", "P One")
	require.NoError(t, err)

	assert.NoError(t, db.DeleteMemberInfoByID("r1", "p1"))
	assert.ErrorIs(t, db.DeleteMemberInfoByID("r1", "p1"), directory.ErrMemberNotFound)
}
