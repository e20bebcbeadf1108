package badger

import (
	"encoding/binary"

	"github.com/poiesic/hymnal/core"
)

// Key prefixes for different data types
const (
	vectorPrefix = "vec:"
)

// makeVectorNamespacePrefix returns the key prefix shared by every vector
// stored under namespace.
// Format: prefix namespace 0x00
func makeVectorNamespacePrefix(namespace string) []byte {
	buf := make([]byte, 0, len(vectorPrefix)+len(namespace)+1)
	buf = append(buf, vectorPrefix...)
	buf = append(buf, namespace...)
	return append(buf, 0)
}

// makeVectorKey generates a key for a cached vector.
// Format: prefix namespace 0x00 id
func makeVectorKey(namespace string, id core.ID) []byte {
	buf := makeVectorNamespacePrefix(namespace)
	// Write in BigEndian order so lexicographic sort works correctly
	return binary.BigEndian.AppendUint64(buf, uint64(id))
}
