package export

import (
	"bufio"
	"io"
	"os"

	"mdlog/internal/errors"
	"mdlog/pkg/scanner"
)

const maxLineSize = 1 << 20

var (
	keySecurityID = []byte("HTSCSecurityID")
	keyMDTime     = []byte("MDTime")
	keyPowerOf10  = []byte("DataMultiplePowerOf10")
)

// VerifyReport summarizes an exported text file.
type VerifyReport struct {
	Lines uint64
	// Bad counts lines without a quoted HTSCSecurityID, a numeric MDTime or
	// a trailing DataMultiplePowerOf10.
	Bad uint64
	// FirstBad is the 1-based number of the first bad line, 0 if none.
	FirstBad uint64
	// Symbols counts lines per HTSCSecurityID.
	Symbols map[string]uint64
	// Backwards counts lines whose MDTime is below the previous line's.
	Backwards uint64
	FirstTime int64
	LastTime  int64
}

// VerifyFile re-reads an exported file.
func VerifyFile(path string) (VerifyReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return VerifyReport{}, errors.Wrap(err, "open export")
	}
	defer f.Close()

	rep, err := Verify(f)
	if err != nil {
		return rep, errors.Wrap(err, path)
	}
	return rep, nil
}

// Verify checks every line of an export stream.
func Verify(r io.Reader) (VerifyReport, error) {
	rep := VerifyReport{Symbols: make(map[string]uint64)}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64<<10), maxLineSize)

	var prev int64
	for sc.Scan() {
		line := sc.Bytes()
		rep.Lines++

		sym, okSym := scanner.ScanStringField(line, keySecurityID)
		ts, okTime := scanner.ScanIntField(line, keyMDTime)
		keys := scanner.Keys(line)
		okTail := len(keys) > 0 && string(keys[len(keys)-1]) == string(keyPowerOf10)
		if !okSym || !okTime || !okTail {
			rep.Bad++
			if rep.FirstBad == 0 {
				rep.FirstBad = rep.Lines
			}
			continue
		}

		rep.Symbols[string(sym)]++
		if rep.FirstTime == 0 {
			rep.FirstTime = ts
		} else if ts < prev {
			rep.Backwards++
		}
		prev, rep.LastTime = ts, ts
	}
	if err := sc.Err(); err != nil {
		return rep, errors.Wrap(err, "read export")
	}
	return rep, nil
}
