package usecase

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"
)

// generateToken returns the unguessable public-link token: 32 hex chars from
// 16 bytes of crypto/rand.
func generateToken() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the platform RNG is broken; nothing
		// sensible to fall back to.
		panic(fmt.Sprintf("usecase: token generation failed: %v", err))
	}
	return hex.EncodeToString(buf)
}

// generateEstimateNo builds a human-readable number like EST-20260829-4821.
// Uniqueness is probabilistic; the ID remains the real key.
func generateEstimateNo() string {
	return documentNo("EST")
}

// generateInvoiceNo builds a number like INV-20260829-4821.
func generateInvoiceNo() string {
	return documentNo("INV")
}

func documentNo(prefix string) string {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		panic(fmt.Sprintf("usecase: document number generation failed: %v", err))
	}
	return fmt.Sprintf("%s-%s-%d", prefix, time.Now().UTC().Format("20060102"), n.Int64()+1000)
}
