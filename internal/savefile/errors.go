package savefile

import "errors"

// Sentinel errors for programmatic handling. Use errors.Is to check them.
//
// The bit-pack and item field codecs never return errors: the underlying
// item format is only partially reverse-engineered, so those layers degrade
// to lower confidence or preserve the original bytes instead of failing.
var (
	// ErrCorruptedContainer indicates the container violates a structural
	// precondition (ciphertext not a whole number of cipher blocks).
	// Fatal; retrying with a different identifier will not help.
	ErrCorruptedContainer = errors.New("corrupted container")

	// ErrDecryptionFailed indicates the container could not be decrypted
	// and inflated, usually because the platform identifier is wrong.
	ErrDecryptionFailed = errors.New("decryption failed")

	// ErrPathNotFound indicates an edit referenced a document position
	// that does not exist. Caller bug.
	ErrPathNotFound = errors.New("path not found")

	// ErrVerificationFailed indicates a freshly encoded container did not
	// decode back to the intended document. The write must be discarded.
	ErrVerificationFailed = errors.New("verification failed")
)
