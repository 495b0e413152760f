package domain

import "time"

// Member is the metadata of an attached connection.
// No transport or lifecycle logic here.
type Member struct {
	Conn        ConnID
	Device      string
	ConnectedAt time.Time
}

func NewMember(conn ConnID, device string) *Member {
	return &Member{Conn: conn, Device: device, ConnectedAt: time.Now()}
}
