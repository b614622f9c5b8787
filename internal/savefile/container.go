package savefile

import (
	"bytes"
	"crypto/aes"
	"encoding/binary"
	"fmt"
	"hash/adler32"
	"io"

	"github.com/klauspost/compress/flate"
)

// Container wire format, innermost first:
//
//	deflate(document) || u32le(adler32(document)) || u32le(len(document))
//
// PKCS#7-padded to a whole number of AES blocks and encrypted with
// AES-256-ECB under the derived key. The checksum/length footer is emitted
// on encode but only tolerated on decode: the inflater stops at the end of
// the compressed stream and ignores whatever trails it, which keeps the
// container compatible with producers that append extra metadata.

// DecodeContainer decrypts and inflates an encrypted save container into
// its document bytes.
func DecodeContainer(ciphertext []byte, identifier string, hint Platform) ([]byte, error) {
	if len(ciphertext)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("%w: ciphertext length %d is not a multiple of %d",
			ErrCorruptedContainer, len(ciphertext), aes.BlockSize)
	}

	block, err := aes.NewCipher(DeriveKey(identifier, hint))
	if err != nil {
		return nil, fmt.Errorf("%w: corrupted file: %v", ErrDecryptionFailed, err)
	}

	plaintext := make([]byte, len(ciphertext))
	for i := 0; i < len(ciphertext); i += aes.BlockSize {
		block.Decrypt(plaintext[i:i+aes.BlockSize], ciphertext[i:i+aes.BlockSize])
	}

	// Some producers do not pad, so a failed validation keeps the buffer
	// as-is rather than erroring.
	plaintext = stripPadding(plaintext)

	// A clean cipher pass that fails to inflate almost always means the key
	// (and therefore the identifier) was wrong, not that the file is broken.
	r := flate.NewReader(bytes.NewReader(plaintext))
	document, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: inflate failed, likely wrong platform identifier: %v",
			ErrDecryptionFailed, err)
	}
	if err := r.Close(); err != nil {
		return nil, fmt.Errorf("%w: inflate failed, likely wrong platform identifier: %v",
			ErrDecryptionFailed, err)
	}
	return document, nil
}

// EncodeContainer compresses and encrypts document bytes into a save
// container. The output length is always a multiple of the AES block size.
func EncodeContainer(document []byte, identifier string, hint Platform) ([]byte, error) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.BestCompression)
	if err != nil {
		return nil, fmt.Errorf("deflate: %w", err)
	}
	if _, err := w.Write(document); err != nil {
		return nil, fmt.Errorf("deflate: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("deflate: %w", err)
	}

	var footer [8]byte
	binary.LittleEndian.PutUint32(footer[:4], documentChecksum(document))
	binary.LittleEndian.PutUint32(footer[4:], uint32(len(document)))
	buf.Write(footer[:])

	padded := applyPadding(buf.Bytes())

	block, err := aes.NewCipher(DeriveKey(identifier, hint))
	if err != nil {
		return nil, fmt.Errorf("cipher: %w", err)
	}
	ciphertext := make([]byte, len(padded))
	for i := 0; i < len(padded); i += aes.BlockSize {
		block.Encrypt(ciphertext[i:i+aes.BlockSize], padded[i:i+aes.BlockSize])
	}
	return ciphertext, nil
}

// documentChecksum is the rolling mod-65521 checksum stored in the footer,
// computed over the uncompressed document bytes.
func documentChecksum(document []byte) uint32 {
	return adler32.Checksum(document)
}

// applyPadding appends PKCS#7 padding up to the next AES block boundary.
// A document that already ends on a boundary gets a full block of padding.
func applyPadding(b []byte) []byte {
	padLen := aes.BlockSize - len(b)%aes.BlockSize
	padding := bytes.Repeat([]byte{byte(padLen)}, padLen)
	return append(b, padding...)
}

// stripPadding removes PKCS#7 padding when the buffer actually carries it:
// the last byte names the pad length and every trailing pad byte must match.
// Anything else leaves the buffer untouched.
func stripPadding(b []byte) []byte {
	if len(b) == 0 {
		return b
	}
	padLen := int(b[len(b)-1])
	if padLen < 1 || padLen > aes.BlockSize || padLen > len(b) {
		return b
	}
	for _, pad := range b[len(b)-padLen:] {
		if int(pad) != padLen {
			return b
		}
	}
	return b[:len(b)-padLen]
}
