package scanner

// Lines of the export text format are space separated `Key: value` pairs.
// String values are double quoted and never contain quotes.

// Field returns the raw value of key. Keys only match whole tokens, so
// "Price" does not match "OrderPrice". Quoted values come back without
// their quotes.
func Field(line []byte, key []byte) ([]byte, bool) {
	idx := indexKey(line, key)
	if idx < 0 {
		return nil, false
	}
	i := idx + len(key) + 1
	for i < len(line) && IsSpace(line[i]) {
		i++
	}
	if i >= len(line) {
		return nil, false
	}

	if line[i] == '"' {
		i++
		start := i
		for i < len(line) && line[i] != '"' {
			i++
		}
		if i >= len(line) {
			return nil, false
		}
		return line[start:i], true
	}

	start := i
	for i < len(line) && !IsSpace(line[i]) {
		i++
	}
	return line[start:i], true
}

// ScanIntField parses a signed decimal value.
func ScanIntField(line []byte, key []byte) (int64, bool) {
	v, ok := Field(line, key)
	if !ok || len(v) == 0 {
		return 0, false
	}

	neg := v[0] == '-'
	if neg {
		v = v[1:]
	}
	if len(v) == 0 {
		return 0, false
	}

	var n int64
	for _, c := range v {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int64(c-'0')
	}
	if neg {
		n = -n
	}
	return n, true
}

// ScanStringField returns a quoted value. Unquoted values do not match.
func ScanStringField(line []byte, key []byte) ([]byte, bool) {
	idx := indexKey(line, key)
	if idx < 0 {
		return nil, false
	}
	i := idx + len(key) + 1
	for i < len(line) && IsSpace(line[i]) {
		i++
	}
	if i >= len(line) || line[i] != '"' {
		return nil, false
	}
	return Field(line, key)
}

// Keys lists the keys of a line in order.
func Keys(line []byte) [][]byte {
	var keys [][]byte
	i := 0
	for i < len(line) {
		for i < len(line) && IsSpace(line[i]) {
			i++
		}
		start := i
		for i < len(line) && line[i] != ':' && !IsSpace(line[i]) {
			i++
		}
		if i >= len(line) || line[i] != ':' {
			return keys
		}
		keys = append(keys, line[start:i])
		i++
		for i < len(line) && IsSpace(line[i]) {
			i++
		}
		if i < len(line) && line[i] == '"' {
			i++
			for i < len(line) && line[i] != '"' {
				i++
			}
			i++
			continue
		}
		for i < len(line) && !IsSpace(line[i]) {
			i++
		}
	}
	return keys
}

// indexKey finds "key:" at the start of the line or after a space.
func indexKey(line []byte, key []byte) int {
	if len(key) == 0 {
		return -1
	}
	from := 0
	for {
		idx := IndexOf(line[from:], key)
		if idx < 0 {
			return -1
		}
		idx += from
		end := idx + len(key)
		if (idx == 0 || IsSpace(line[idx-1])) && end < len(line) && line[end] == ':' {
			return idx
		}
		from = idx + 1
	}
}

func IndexOf(payload []byte, key []byte) int {
	if len(key) == 0 || len(payload) < len(key) {
		return -1
	}
outer:
	for i := 0; i <= len(payload)-len(key); i++ {
		for j := 0; j < len(key); j++ {
			if payload[i+j] != key[j] {
				continue outer
			}
		}
		return i
	}
	return -1
}

func IsSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
