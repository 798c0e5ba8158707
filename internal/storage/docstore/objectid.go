package docstore

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"sync/atomic"
	"time"
)

// ObjectID is the 12-byte identifier assigned to every stored document:
// 4 bytes of big-endian unix seconds, 5 bytes of per-process randomness and
// a 3-byte counter.
type ObjectID [12]byte

// NilObjectID is the zero identifier. It is never assigned to a document.
var NilObjectID ObjectID

var (
	processUnique = newProcessUnique()
	idCounter     = newCounterSeed()
)

// NewObjectID returns a fresh identifier stamped with the current time.
func NewObjectID() ObjectID {
	return newObjectIDAt(time.Now())
}

func newObjectIDAt(t time.Time) ObjectID {
	var id ObjectID
	binary.BigEndian.PutUint32(id[0:4], uint32(t.Unix()))
	copy(id[4:9], processUnique[:])

	c := atomic.AddUint32(&idCounter, 1)
	id[9] = byte(c >> 16)
	id[10] = byte(c >> 8)
	id[11] = byte(c)
	return id
}

// ParseObjectID parses the 24-character hex form. Upper and lower case are
// both accepted; Hex always renders lower case.
func ParseObjectID(raw string) (ObjectID, error) {
	var id ObjectID
	if len(raw) != 2*len(id) {
		return NilObjectID, fmt.Errorf("%w: %q", ErrInvalidID, raw)
	}
	if _, err := hex.Decode(id[:], []byte(raw)); err != nil {
		return NilObjectID, fmt.Errorf("%w: %q", ErrInvalidID, raw)
	}
	return id, nil
}

// Hex returns the 24-character lower-case hex rendering.
func (id ObjectID) Hex() string {
	return hex.EncodeToString(id[:])
}

func (id ObjectID) String() string {
	return id.Hex()
}

// Timestamp returns the creation second encoded in the identifier.
func (id ObjectID) Timestamp() time.Time {
	return time.Unix(int64(binary.BigEndian.Uint32(id[0:4])), 0).UTC()
}

func (id ObjectID) IsZero() bool {
	return id == NilObjectID
}

func newProcessUnique() [5]byte {
	var b [5]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(fmt.Errorf("docstore: cannot seed object id: %w", err))
	}
	return b
}

func newCounterSeed() uint32 {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(fmt.Errorf("docstore: cannot seed object id counter: %w", err))
	}
	return binary.BigEndian.Uint32(b[:]) & 0x00ffffff
}
