// Package savefile implements the save-container codec: the reversible
// transform between an encrypted save blob and an editable YAML document,
// and the decoding/encoding of the bit-packed item serials embedded in
// that document.
//
// The package is organized as five layers, each depending only on those
// below it:
//
//   - key derivation (keys.go): platform account identifier -> AES-256 key
//   - container codec (container.go): ciphertext <-> document bytes
//   - bit-pack codec (bitpack.go): serial string <-> payload bytes
//   - item field codec (items.go): payload bytes <-> named stat fields
//   - document scanner (scanner.go, document.go): find and rewrite serials
//     inside the parsed document tree
//
// Every operation is a pure transform over its inputs: no shared state, no
// caches, no I/O. Calls are safe to run concurrently because nothing is
// shared between them. Persistence and transport belong to the callers.
package savefile
