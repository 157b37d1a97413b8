package badger

import "github.com/agamjn/rumi/core"

// Key prefixes for different data types
const (
	pointPrefix      = "vecpnt"
	collectionPrefix = "veccol"
)

// makePointKey generates a key for a stored point by its stable id.
func makePointKey(collection string, id core.StableID) []byte {
	prefix := pointPrefix + ":" + collection + ":"
	buf := make([]byte, len(prefix)+len(id))
	offset := copy(buf, prefix)
	copy(buf[offset:], id[:])
	return buf
}

// makePointScanPrefix generates the iteration prefix covering every
// point in a collection.
func makePointScanPrefix(collection string) []byte {
	return []byte(pointPrefix + ":" + collection + ":")
}

// makeCollectionKey generates the key holding a collection's marker
// record.
func makeCollectionKey(collection string) []byte {
	return []byte(collectionPrefix + ":" + collection)
}
