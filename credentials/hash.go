package credentials

import (
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/argon2"
)

type (
	Params struct {
		Memory      uint32
		Time        uint32
		Parallelism uint8
		SaltLength  int
		KeyLength   uint32
	}
)

var (
	// DefaultParams matches the argon2 defaults used by most node tooling,
	// hashes created by either side can be checked by the other.
	DefaultParams = Params{
		Memory:      64 * 1024,
		Time:        3,
		Parallelism: 4,
		SaltLength:  16,
		KeyLength:   32,
	}
)

// Hash extends password with Argon2id and returns it in the PHC string
// format ($argon2id$v=19$m=...,t=...,p=...$salt$key).
func Hash(password string, rand io.Reader) (string, error) {
	return HashWith(DefaultParams, password, rand)
}

func HashWith(p Params, password string, rand io.Reader) (string, error) {
	salt := make([]byte, p.SaltLength)
	if _, err := io.ReadFull(rand, salt); err != nil {
		return "", fmt.Errorf("unable to generate salt, cause %w", err)
	}
	key := argon2.IDKey([]byte(password), salt, p.Time, p.Memory, p.Parallelism, p.KeyLength)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.Memory, p.Time, p.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key)), nil
}

// Compare reports whether plaintext matches the encoded hash, the
// comparison of the derived keys runs in constant time.
func Compare(encoded, plaintext string) (bool, error) {
	p, salt, key, err := decodeHash(encoded)
	if err != nil {
		return false, err
	}
	other := argon2.IDKey([]byte(plaintext), salt, p.Time, p.Memory, p.Parallelism, uint32(len(key)))
	return subtle.ConstantTimeCompare(key, other) == 1, nil
}

func decodeHash(encoded string) (Params, []byte, []byte, error) {
	var p Params
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return p, nil, nil, InvalidHash{Reason: "not an argon2id PHC string"}
	}
	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return p, nil, nil, InvalidHash{Reason: "missing version", cause: err}
	} else if version != argon2.Version {
		return p, nil, nil, InvalidHash{Reason: fmt.Sprintf("unsupported version %v", version)}
	}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Time, &p.Parallelism); err != nil {
		return p, nil, nil, InvalidHash{Reason: "invalid parameters", cause: err}
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return p, nil, nil, InvalidHash{Reason: "invalid salt", cause: err}
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return p, nil, nil, InvalidHash{Reason: "invalid key", cause: err}
	}
	p.SaltLength = len(salt)
	p.KeyLength = uint32(len(key))
	return p, salt, key, nil
}
