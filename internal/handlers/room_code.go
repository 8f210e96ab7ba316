// internal/handlers/room_code.go
package handlers

import (
	crand "crypto/rand"
	"math/big"
	"math/rand"
)

// RoomCodeChars leaves out characters that are easy to misread (I, O, 0, 1).
const RoomCodeChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// RoomCodeLength is the number of characters in a room code.
const RoomCodeLength = 4

// GenerateRoomCode creates a random room code. Uniqueness is enforced by the store.
func GenerateRoomCode() string {
	code := make([]byte, RoomCodeLength)
	for i := range RoomCodeLength {
		n, err := crand.Int(crand.Reader, big.NewInt(int64(len(RoomCodeChars))))
		if err != nil {
			// fallback to math/rand if crypto fails
			code[i] = RoomCodeChars[rand.Intn(len(RoomCodeChars))]
			continue
		}
		code[i] = RoomCodeChars[n.Int64()]
	}
	return string(code)
}
