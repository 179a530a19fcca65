package utils

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"io"
	"time"
)

// crockford is Crockford's base32 alphabet: no I, L, O or U, so codes read
// back over the phone are unambiguous.
var crockford = base32.NewEncoding("0123456789ABCDEFGHJKMNPQRSTVWXYZ").WithPadding(base32.NoPadding)

// BookingCodeGenerator produces codes of the form
//
//	BK-20261015093000-7M2Q9XKD
//
// a UTC second timestamp followed by 40 bits from crypto/rand.  Codes are
// not guaranteed unique on their own; bookings.booking_code carries a
// UNIQUE index and the booking service retries on collision.
type BookingCodeGenerator struct {
	now  func() time.Time
	rand io.Reader
}

// NewBookingCodeGenerator returns a generator backed by the system clock
// and crypto/rand.
func NewBookingCodeGenerator() *BookingCodeGenerator {
	return &BookingCodeGenerator{now: time.Now, rand: rand.Reader}
}

// NewBookingCodeGeneratorWith lets tests pin the clock and entropy source.
func NewBookingCodeGeneratorWith(now func() time.Time, r io.Reader) *BookingCodeGenerator {
	return &BookingCodeGenerator{now: now, rand: r}
}

// Generate returns a new booking code.
func (g *BookingCodeGenerator) Generate() (string, error) {
	var buf [5]byte
	if _, err := io.ReadFull(g.rand, buf[:]); err != nil {
		return "", fmt.Errorf("booking code entropy: %w", err)
	}
	return "BK-" + g.now().UTC().Format("20060102150405") + "-" + crockford.EncodeToString(buf[:]), nil
}
