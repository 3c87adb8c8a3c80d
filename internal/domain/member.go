package domain

// Member represents user's participation meta for a room.
// No transport or lifecycle logic here. Position is owned by the room
// the member is joined to and only changes under that room's lock.
type Member struct {
	User     *User
	Position Position
	Placed   bool
}

// NewMember avoids raw literals in adapters and keeps construction obvious.
func NewMember(user *User) *Member {
	return &Member{User: user}
}

// UserID returns the member's identity, or "" before authentication.
func (m *Member) UserID() UserID {
	if m == nil || m.User == nil {
		return ""
	}
	return m.User.ID
}
