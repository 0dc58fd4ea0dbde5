package booking

import "crypto/rand"

// codeAlphabet omits 0/O/1/I so codes survive being read over the
// phone.  8 characters over 32 symbols gives 40 bits, plenty for a
// uniqueness check backed by a bounded retry.
const (
	codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	codeLength   = 8
)

// newConfirmationCode returns a fresh random confirmation code.
// Uniqueness is enforced by the database; callers retry on collision.
func newConfirmationCode() (string, error) {
	buf := make([]byte, codeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf), nil
}
