package export

import (
	"bufio"
	"io"
	"os"
	"slices"
	"strings"

	"mdlog/internal/errors"
	"mdlog/internal/schema"
)

// Set is a deduplicated set of bare security codes.
type Set map[string]struct{}

// NewSet builds a set, stripping any exchange suffix from codes.
func NewSet(codes ...string) Set {
	s := make(Set, len(codes))
	for _, c := range codes {
		s.Add(c)
	}
	return s
}

func (s Set) Add(code string) {
	if code = schema.BareCode(strings.TrimSpace(code)); code != "" {
		s[code] = struct{}{}
	}
}

func (s Set) Has(code string) bool {
	_, ok := s[schema.BareCode(code)]
	return ok
}

// Sorted returns the codes in ascending order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for c := range s {
		out = append(out, c)
	}
	slices.Sort(out)
	return out
}

// LoadSymbols reads a symbol list file.
func LoadSymbols(path string) (Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open symbols")
	}
	defer f.Close()

	s, err := ReadSymbols(f)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return s, nil
}

// ReadSymbols parses one symbol per line. Blank lines and lines starting
// with '#' are skipped, only the first comma separated field is used and
// exchange suffixes are stripped: "600000.SH,SPDB" yields "600000".
func ReadSymbols(r io.Reader) (Set, error) {
	s := make(Set)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		field, _, _ := strings.Cut(text, ",")
		s.Add(field)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "read symbols")
	}
	return s, nil
}
