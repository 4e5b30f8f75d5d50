package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/srgjo27/smart_parking/internal/core/domain"
)

const (
	codeSpace       = 1000000
	maxCodeAttempts = 10
)

// CodeGenerator draws six-digit codes. It is a variable so tests can make
// draws deterministic.
type CodeGenerator func() (string, error)

func RandomCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeSpace))
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%06d", n.Int64()), nil
}

// uniqueCode redraws until inUse reports the code free among currently
// active holders. Closed or cancelled holders do not block reuse.
func uniqueCode(ctx context.Context, gen CodeGenerator, inUse func(context.Context, string) (bool, error)) (string, error) {
	for i := 0; i < maxCodeAttempts; i++ {
		code, err := gen()
		if err != nil {
			return "", fmt.Errorf("generate code: %w", err)
		}

		taken, err := inUse(ctx, code)
		if err != nil {
			return "", fmt.Errorf("check code: %w", err)
		}

		if !taken {
			return code, nil
		}
	}

	return "", domain.ErrCodeSpaceExhausted
}
