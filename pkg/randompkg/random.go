// Package randompkg provides functionality gor generating random applications common items.
package randompkg

import (
	"crypto/rand"
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	alphabet = "abcdefghijklmnopqrstuvwxyz"
	numerals = "0123456789"
)

// Intn is a shortcut for generating a random integer between 0 and max using crypto/rand.
func Intn(max int) int64 {
	nBig, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		panic(err)
	}

	return nBig.Int64()
}

// Float64 is a shortcut for generating a random float between 0 and 1 using crypto/rand.
func Float64() float64 {
	return float64(Intn(1<<32)) / (1 << 32)
}

// FloatBetween generates a random decimal number between min and max rounded to 3 decimals.
func FloatBetween(min, max float64) float64 {
	numInRange := min + Float64()*(max-min)
	return math.Floor(numInRange*1_000) / 1_000
}

// String generates a random string of length n.
func String(n int) string {
	var sb strings.Builder

	k := len(alphabet)

	for i := 0; i < n; i++ {
		c := alphabet[Intn(k)]

		_ = sb.WriteByte(c) // The returned err is always nil.
	}

	return sb.String()
}

// Digits generates a random numeric string of length n.
func Digits(n int) string {
	var sb strings.Builder

	k := len(numerals)

	for i := 0; i < n; i++ {
		c := numerals[Intn(k)]

		_ = sb.WriteByte(c)
	}

	return sb.String()
}

// AccountNumber generates a random 12-digit account number.
func AccountNumber() string {
	return Digits(12)
}

// TransactionID generates a random transaction identifier.
func TransactionID() string {
	return "txn" + Digits(12)
}

// IFSC generates a random branch routing code.
func IFSC() string {
	return strings.ToUpper(String(4)) + "0" + Digits(6)
}

// HolderName generates a random account holder name.
func HolderName() string {
	return String(6) + " " + String(8)
}

// Username generates a random username.
func Username() string {
	return String(8)
}

// MoneyAmountBetween generates a random amount of money between min and max with 3 decimals.
func MoneyAmountBetween(min, max float64) string {
	return decimal.NewFromFloat(FloatBetween(min, max)).StringFixed(3)
}

// Email generates a random email.
func Email() string {
	return fmt.Sprintf("%s@email.com", String(10))
}
