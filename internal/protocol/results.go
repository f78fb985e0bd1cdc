package protocol

import "fmt"

// Result returns results[i] or ErrShortReply when the device sent fewer values.
func (r Reply) Result(i int) (string, error) {
	if i < 0 || i >= len(r.Results) {
		return "", fmt.Errorf("%w: index %d, have %d", ErrShortReply, i, len(r.Results))
	}
	return r.Results[i], nil
}

// DecodeInfo reads the version, device type and game fields; every remaining
// result is a flag.
func DecodeInfo(reply Reply) (DeviceInfo, error) {
	if len(reply.Results) < 3 {
		return DeviceInfo{}, fmt.Errorf("%w: info needs 3 results, have %d", ErrShortReply, len(reply.Results))
	}
	flags := make([]string, len(reply.Results)-3)
	copy(flags, reply.Results[3:])
	return DeviceInfo{
		Version:    reply.Results[0],
		DeviceType: reply.Results[1],
		Game:       reply.Results[2],
		Flags:      flags,
	}, nil
}

// DecodeEntries reads (type, name) pairs in reply order. Type "1" is a file;
// every other code is a directory.
func DecodeEntries(reply Reply) ([]DirEntry, error) {
	entries := make([]DirEntry, 0, len(reply.Results)/2)
	for i := 0; i < len(reply.Results); i += 2 {
		if i+1 >= len(reply.Results) {
			return nil, fmt.Errorf("%w: list entry %d has no name", ErrShortReply, i/2)
		}
		kind := EntryDirectory
		if reply.Results[i] == "1" {
			kind = EntryFile
		}
		entries = append(entries, DirEntry{Name: reply.Results[i+1], Kind: kind})
	}
	return entries, nil
}

// DecodeSize reads a hex-encoded byte count from results[0].
func DecodeSize(reply Reply) (int, error) {
	raw, err := reply.Result(0)
	if err != nil {
		return 0, err
	}
	n, err := ParseHex(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrMalformedReply, err)
	}
	if n > uint64(int(^uint(0)>>1)) {
		return 0, fmt.Errorf("%w: size %s overflows", ErrMalformedReply, raw)
	}
	return int(n), nil
}
