package core

import (
	"encoding/hex"

	"github.com/go-crypt/x/blake2b"
	"github.com/google/uuid"
)

// StableID is the fixed-width storage identifier for a chunk. It is derived
// deterministically from the chunk's logical key, so the same key always maps
// to the same stored point across processes and machines. Vector engines that
// restrict point ids to UUIDs or integers accept its string form.
type StableID = uuid.UUID

// StableIDFromKey maps a logical chunk key (e.g. "blog:post_123:chunk_0") to
// its StableID using a name-based UUID (version 5, DNS namespace). Equal keys
// always yield equal ids; distinct keys collide only with SHA-1 probability.
func StableIDFromKey(key string) StableID {
	return uuid.NewSHA1(uuid.NameSpaceDNS, []byte(key))
}

// Fingerprint returns a hex-encoded BLAKE2b digest of the text. Stored in
// chunk payloads so callers can detect content changes between sync runs
// without re-reading stored text.
func Fingerprint(text string) string {
	h, _ := blake2b.New(16, nil)
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}
