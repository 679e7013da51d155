package session

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// CurrentSchemaVersion is the binary layout written by Encode.
const CurrentSchemaVersion = 1

const flagActive byte = 1 << 0

// Encode serializes s into the current binary layout.
func Encode(s *Session) ([]byte, error) {
	if s == nil {
		return nil, errors.New("nil session")
	}
	if s.SessionID == "" {
		return nil, errors.New("empty sessionID")
	}
	if len(s.SessionID) > 255 {
		return nil, errors.New("sessionID too long")
	}

	var buf bytes.Buffer
	buf.Grow(2 + len(s.SessionID) + 8 + 1)

	buf.WriteByte(CurrentSchemaVersion)
	buf.WriteByte(byte(len(s.SessionID)))
	buf.WriteString(s.SessionID)

	if err := binary.Write(&buf, binary.BigEndian, s.LastActivity); err != nil {
		return nil, err
	}

	var flags byte
	if s.IsActive {
		flags |= flagActive
	}
	buf.WriteByte(flags)

	return buf.Bytes(), nil
}

// Decode parses a record produced by Encode.
func Decode(data []byte) (*Session, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != CurrentSchemaVersion {
		return nil, fmt.Errorf("unsupported session schema version %d", version)
	}

	idLen, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	id := make([]byte, idLen)
	if _, err := io.ReadFull(reader, id); err != nil {
		return nil, err
	}

	s := &Session{SessionID: string(id)}
	if err := binary.Read(reader, binary.BigEndian, &s.LastActivity); err != nil {
		return nil, err
	}

	flags, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if flags&^flagActive != 0 {
		return nil, fmt.Errorf("unknown session flags 0x%02x", flags)
	}
	s.IsActive = flags&flagActive != 0

	if reader.Len() != 0 {
		return nil, errors.New("trailing bytes in session record")
	}

	return s, nil
}
