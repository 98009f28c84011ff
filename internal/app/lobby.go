package app

// LowestAvailableSeat returns the lowest index of an empty seat, or -1 when the table is full.
func LowestAvailableSeat(seats []string) int {
	for i, userID := range seats {
		if userID == "" {
			return i
		}
	}
	return -1
}

// OccupiedSeats returns the number of non-empty seats.
func OccupiedSeats(seats []string) int {
	count := 0
	for _, userID := range seats {
		if userID != "" {
			count++
		}
	}
	return count
}

// SeatOf returns the seat index of userID, or -1.
func SeatOf(seats []string, userID string) int {
	for i, id := range seats {
		if id != "" && id == userID {
			return i
		}
	}
	return -1
}
