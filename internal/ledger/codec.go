package ledger

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"
)

// Blob layout: IV(16) || sha256(key || ciphertext)(32) || AES-256-CBC ciphertext
const (
	ivSize  = aes.BlockSize
	tagSize = sha256.Size
)

var (
	// ErrCiphertextFormat is returned when a blob is too short or misaligned
	ErrCiphertextFormat = errors.New("invalid encrypted data format")

	// ErrIntegrity is returned when no known key matches the integrity tag
	ErrIntegrity = errors.New("data integrity check failed")
)

type envelope struct {
	iv         []byte
	tag        []byte
	ciphertext []byte
}

func seal(key, plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	iv := make([]byte, ivSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return nil, err
	}

	padded := pad(plaintext, aes.BlockSize)
	ct := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ct, padded)

	out := make([]byte, 0, ivSize+tagSize+len(ct))
	out = append(out, iv...)
	out = append(out, integrityTag(key, ct)...)
	out = append(out, ct...)
	return out, nil
}

func split(blob []byte) (envelope, error) {
	if len(blob) < ivSize+tagSize {
		return envelope{}, ErrCiphertextFormat
	}
	env := envelope{
		iv:         blob[:ivSize],
		tag:        blob[ivSize : ivSize+tagSize],
		ciphertext: blob[ivSize+tagSize:],
	}
	if len(env.ciphertext) == 0 || len(env.ciphertext)%aes.BlockSize != 0 {
		return envelope{}, ErrCiphertextFormat
	}
	return env, nil
}

// verifiedBy reports whether key produced the envelope's tag
func (e envelope) verifiedBy(key []byte) bool {
	return subtle.ConstantTimeCompare(e.tag, integrityTag(key, e.ciphertext)) == 1
}

func (e envelope) open(key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	plain := make([]byte, len(e.ciphertext))
	cipher.NewCBCDecrypter(block, e.iv).CryptBlocks(plain, e.ciphertext)
	return unpad(plain, aes.BlockSize)
}

func integrityTag(key, ciphertext []byte) []byte {
	h := sha256.New()
	h.Write(key)
	h.Write(ciphertext)
	return h.Sum(nil)
}

func pad(data []byte, size int) []byte {
	n := size - len(data)%size
	return append(append([]byte(nil), data...), bytes.Repeat([]byte{byte(n)}, n)...)
}

func unpad(data []byte, size int) ([]byte, error) {
	if len(data) == 0 || len(data)%size != 0 {
		return nil, ErrCiphertextFormat
	}
	n := int(data[len(data)-1])
	if n == 0 || n > size || n > len(data) {
		return nil, fmt.Errorf("%w: bad padding", ErrCiphertextFormat)
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, fmt.Errorf("%w: bad padding", ErrCiphertextFormat)
		}
	}
	return data[:len(data)-n], nil
}
