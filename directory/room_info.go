package directory

import "time"

// RoomInfo is a struct for room information.
type RoomInfo struct {
	ID        string
	Capacity  int
	IsActive  bool
	CreatedAt time.Time
}

// HasCapacity reports whether one more member fits in the room.
func (r *RoomInfo) HasCapacity(current int) bool {
	return current < r.Capacity
}

// DeepCopy creates a deep copy of the given RoomInfo.
func (r *RoomInfo) DeepCopy() *RoomInfo {
	return &RoomInfo{
		ID:        r.ID,
		Capacity:  r.Capacity,
		IsActive:  r.IsActive,
		CreatedAt: r.CreatedAt,
	}
}
