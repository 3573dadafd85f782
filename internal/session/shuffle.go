package session

import (
	"crypto/rand"
	"math/big"
)

// cryptoShuffle is a Fisher-Yates shuffle over crypto/rand.
func cryptoShuffle(xs []int) {
	for i := len(xs) - 1; i > 0; i-- {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			// keep the current order rather than fail the load
			return
		}
		j := int(n.Int64())
		xs[i], xs[j] = xs[j], xs[i]
	}
}
