package domain

import "strings"

// RoomKey names a group of connections on the transport.
type RoomKey string

const DefaultPairSeparator = "_"

// PairKey returns the canonical room key for two identities.
// The ids are sorted lexicographically so PairKey(a, b) == PairKey(b, a).
func PairKey(a, b UserID, sep string) RoomKey {
	x, y := string(a), string(b)
	if y < x {
		x, y = y, x
	}
	return RoomKey(strings.Join([]string{x, y}, sep))
}
