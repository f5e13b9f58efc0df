package serializer

import (
	"encoding/binary"
	"time"
)

// DatetimeUTC serializes a time.Time as an 8-byte big-endian count of
// nanoseconds since the Unix epoch, normalized to UTC. Instants before the
// epoch are not representable (they would require signed-integer ordering,
// which this package does not attempt — see Int).
type DatetimeUTC struct{}

func (DatetimeUTC) Serialize(v any, width int) ([]byte, error) {
	if width != 8 {
		return nil, ErrWrongWidth
	}

	t, ok := v.(time.Time)
	if !ok {
		return nil, ErrUnsupportedType
	}

	nanos := t.UTC().UnixNano()
	if nanos < 0 {
		return nil, ErrWrongWidth
	}

	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(nanos))
	return buf, nil
}

func (DatetimeUTC) Deserialize(data []byte) (any, error) {
	if len(data) != 8 {
		return nil, ErrWrongWidth
	}
	nanos := binary.BigEndian.Uint64(data)
	return time.Unix(0, int64(nanos)).UTC(), nil
}
