// Package directory provides an interface for room directory operations.
package directory

import (
	"errors"

	"meshroom/broker/subscription"
)

const (
	// DefaultRoomID is the default room ID. It is registered if the flag is set.
	DefaultRoomID = "room-id"

	// DefaultRoomCapacity bounds the mesh size of the default room. A full
	// mesh holds N*(N-1)/2 links, so small capacities are the only ones
	// that behave well.
	DefaultRoomCapacity = 8
)

var (
	// ErrRoomAlreadyExists is returned when the room already exists.
	ErrRoomAlreadyExists = errors.New("room already exists")

	// ErrRoomNotFound is returned when the room is not found or inactive.
	ErrRoomNotFound = errors.New("room not found")

	// ErrRoomFull is returned when the room is at capacity.
	ErrRoomFull = errors.New("room full")

	// ErrMemberAlreadyExists is returned when the member already exists.
	ErrMemberAlreadyExists = errors.New("member already exists")

	// ErrMemberNotFound is returned when the member is not found.
	ErrMemberNotFound = errors.New("member not found")
)

// Roster is a snapshot of a room's membership, published on every change.
type Roster struct {
	RoomID    string
	MemberIDs []string
}

// Contains reports whether the given member ID is part of the snapshot.
func (r Roster) Contains(memberID string) bool {
	for _, id := range r.MemberIDs {
		if id == memberID {
			return true
		}
	}
	return false
}

// Directory is an interface for room directory operations. Membership
// mutations push a fresh Roster snapshot to every roster subscriber of
// the affected room.
type Directory interface {
	EnsureRoomInfo(roomID string, capacity int) error
	FindRoomInfoByID(id string) (*RoomInfo, error)

	CreateMemberInfo(roomID, memberID, name string) (*MemberInfo, error)
	FindMemberInfoByRoomID(roomID string) ([]*MemberInfo, error)
	DeleteMemberInfoByID(roomID, memberID string) error

	SubscribeRoster(roomID string) *subscription.Subscription
	UnsubscribeRoster(roomID string, sub *subscription.Subscription) error
}

// Config contains the configuration for the directory.
type Config struct {
	SetDefaultRoom      bool
	DefaultRoomCapacity int
}
