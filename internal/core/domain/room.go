package domain

const roomSeparator = "_"

// RoomID derives the pair room id from two user ids: sorted
// lexicographically and joined with "_". Both peers must compute the same
// id independently, so the derivation is fixed and order-insensitive.
func RoomID(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + roomSeparator + b
}
