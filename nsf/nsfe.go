package nsf

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"chipplay/hw/hwdefs"
)

// Size of the INFO chunk, shorter chunks must hold at least the addresses
// and flags.
const (
	nsfeInfoSize    = 10
	nsfeInfoMinSize = 8
)

// decodeNSFE decodes the chunks following the NSFE magic. An NSFE file is
// a sequence of (size, id, data) chunks, terminated by NEND. Chunks whose id
// starts with an uppercase letter must be understood by the player.
func (f *File) decodeNSFE(buf []byte) error {
	f.IsNSFE = true
	f.Version = 1
	f.TrackCount = 1
	f.FirstTrack = 1
	f.NTSCSpeed = 0x411A
	f.PALSpeed = 0x4E20

	le := binary.LittleEndian
	var hasInfo, hasData bool
	for {
		if len(buf) < 8 {
			return fmt.Errorf("chunk header: %w", io.ErrUnexpectedEOF)
		}
		size := int(le.Uint32(buf))
		id := string(buf[4:8])
		buf = buf[8:]
		if size < 0 || size > len(buf) {
			return fmt.Errorf("chunk %q: %w", id, io.ErrUnexpectedEOF)
		}
		data := buf[:size]
		buf = buf[size:]

		switch id {
		case "INFO":
			if size < nsfeInfoMinSize {
				return fmt.Errorf("%w: INFO chunk too small", ErrFormat)
			}
			var info [nsfeInfoSize]byte
			copy(info[:], data)
			f.LoadAddr = le.Uint16(info[0:])
			f.InitAddr = le.Uint16(info[2:])
			f.PlayAddr = le.Uint16(info[4:])
			f.SpeedFlags = info[6]
			f.ChipFlags = info[7]
			if size > 8 {
				f.TrackCount = info[8]
			}
			f.FirstTrack = info[9] + 1
			hasInfo = true

		case "BANK":
			if size > len(f.Banks) {
				return fmt.Errorf("%w: BANK chunk too large", ErrFormat)
			}
			copy(f.Banks[:], data)

		case "DATA":
			if !hasInfo {
				return fmt.Errorf("%w: DATA before INFO", ErrFormat)
			}
			f.Data = data
			hasData = true

		case "NEND":
			if !hasData {
				return fmt.Errorf("%w: missing DATA chunk", ErrFormat)
			}
			return nil

		case "auth":
			strs := splitStrings(data)
			fields := []*string{&f.Game, &f.Author, &f.Copyright, &f.Ripper}
			for i, s := range strs {
				if i < len(fields) {
					*fields[i] = s
				}
			}

		case "time":
			f.Times = readInt32s(data)

		case "fade":
			f.Fades = readInt32s(data)

		case "tlbl":
			f.Labels = splitStrings(data)

		case "plst":
			f.Playlist = make([]int, len(data))
			for i, b := range data {
				f.Playlist[i] = int(b)
			}

		default:
			if id[0] >= 'A' && id[0] <= 'Z' {
				return fmt.Errorf("%w: unsupported chunk %q", ErrFormat, id)
			}
		}
	}
}

// splitStrings splits a list of NUL-terminated strings.
func splitStrings(data []byte) []string {
	var strs []string
	for len(data) > 0 {
		s := data
		if i := bytes.IndexByte(data, 0); i >= 0 {
			s, data = data[:i], data[i+1:]
		} else {
			data = nil
		}
		strs = append(strs, hwdefs.CleanText(s))
	}
	return strs
}

func readInt32s(data []byte) []int {
	vals := make([]int, len(data)/4)
	for i := range vals {
		vals[i] = int(int32(binary.LittleEndian.Uint32(data[i*4:])))
	}
	return vals
}
