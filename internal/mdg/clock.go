package mdg

import (
	"fmt"
	"time"

	"mdlog/internal/schema"
)

const dayMillis = 24 * 60 * 60 * 1000

func clockMillis(mdtime int32) (int64, error) {
	h, m, s, ms := schema.Clock(mdtime)
	if mdtime < 0 || h > 23 || m > 59 || s > 59 {
		return 0, fmt.Errorf("bad MDTime %d", mdtime)
	}
	return int64(((h*60+m)*60+s)*1000 + ms), nil
}

// packClock turns milliseconds since midnight into HHMMSSmmm, wrapping at
// the end of the day.
func packClock(ms int64) int32 {
	ms %= dayMillis
	h := ms / 3600000
	m := (ms / 60000) % 60
	s := (ms / 1000) % 60
	return int32(h*10000000 + m*100000 + s*1000 + ms%1000)
}

// recvNanos is the local wall clock at ms since midnight of date, in ns.
func recvNanos(date int32, ms int64) int64 {
	d := int(date)
	day := time.Date(d/10000, time.Month((d/100)%100), d%100, 0, 0, 0, 0, time.Local)
	return day.Add(time.Duration(ms) * time.Millisecond).UnixNano()
}
