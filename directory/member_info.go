package directory

import "time"

// MemberInfo is a struct for room member information.
type MemberInfo struct {
	RoomID   string
	ID       string
	Name     string
	JoinedAt time.Time
}

// DeepCopy creates a deep copy of the given MemberInfo.
func (m *MemberInfo) DeepCopy() *MemberInfo {
	return &MemberInfo{
		RoomID:   m.RoomID,
		ID:       m.ID,
		Name:     m.Name,
		JoinedAt: m.JoinedAt,
	}
}
