package security

import (
	"crypto/rand"
	"math/big"

	"careermate/internal/domain"
)

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// CodeGenerator produces certificate codes of uppercase letters and digits.
type CodeGenerator struct {
	length int
}

func NewCodeGenerator() *CodeGenerator {
	return &CodeGenerator{length: domain.CertificateCodeLength}
}

func (g *CodeGenerator) Generate() (string, error) {
	max := big.NewInt(int64(len(codeAlphabet)))
	buf := make([]byte, g.length)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = codeAlphabet[n.Int64()]
	}
	return string(buf), nil
}
