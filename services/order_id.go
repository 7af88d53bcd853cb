package services

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/google/uuid"
)

const maxShortIDAttempts = 50

// IDGenerator produces order ids that are not in use
type IDGenerator interface {
	NewID(taken func(id string) bool) string
}

// OrderIDGenerator issues ids in the "#DH1234" form and falls back to a
// longer uuid-based suffix when the short space keeps colliding
type OrderIDGenerator struct{}

// NewID returns an id for which taken reports false
func (OrderIDGenerator) NewID(taken func(id string) bool) string {
	for i := 0; i < maxShortIDAttempts; i++ {
		id := fmt.Sprintf("#DH%d", rand.IntN(9000)+1000)
		if !taken(id) {
			return id
		}
	}

	for {
		suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
		id := "#DH" + suffix
		if !taken(id) {
			return id
		}
	}
}
