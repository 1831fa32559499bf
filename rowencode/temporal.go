package rowencode

import (
	"encoding/binary"
	"fmt"
	"strings"
	"time"

	"github.com/apache/arrow/go/v18/arrow"
)

// PostgreSQL's epoch is 2000-01-01, Arrow/Unix's is 1970-01-01.
const (
	pgEpochDays   = 10957
	pgEpochMicros = int64(pgEpochDays) * 86400 * 1_000_000
)

func time32Micros(unit arrow.TimeUnit, v arrow.Time32) int64 {
	switch unit {
	case arrow.Second:
		return int64(v) * 1_000_000
	case arrow.Millisecond:
		return int64(v) * 1_000
	default:
		return int64(v)
	}
}

func time64Micros(unit arrow.TimeUnit, v arrow.Time64) int64 {
	switch unit {
	case arrow.Microsecond:
		return int64(v)
	case arrow.Nanosecond:
		return int64(v) / 1_000
	default:
		return int64(v)
	}
}

func durationMicros(unit arrow.TimeUnit, v arrow.Duration) int64 {
	switch unit {
	case arrow.Second:
		return int64(v) * 1_000_000
	case arrow.Millisecond:
		return int64(v) * 1_000
	case arrow.Nanosecond:
		return int64(v) / 1_000
	default:
		return int64(v)
	}
}

func unixMicros(unit arrow.TimeUnit, v arrow.Timestamp) int64 {
	switch unit {
	case arrow.Second:
		return int64(v) * 1_000_000
	case arrow.Millisecond:
		return int64(v) * 1_000
	case arrow.Nanosecond:
		return int64(v) / 1_000
	default:
		return int64(v)
	}
}

func encodeDate(binaryFormat bool, unixDays int32) (any, error) {
	if binaryFormat {
		buf := make([]byte, 4)
		binary.BigEndian.PutUint32(buf, uint32(unixDays-pgEpochDays))
		return buf, nil
	}
	t := time.Unix(int64(unixDays)*86400, 0).UTC()
	return t.Format("2006-01-02"), nil
}

func encodeTime(binaryFormat bool, micros int64) (any, error) {
	if binaryFormat {
		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, uint64(micros))
		return buf, nil
	}
	d := time.Duration(micros) * time.Microsecond
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	d -= s * time.Second
	us := d / time.Microsecond
	if us == 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s), nil
	}
	return strings.TrimRight(fmt.Sprintf("%02d:%02d:%02d.%06d", h, m, s, us), "0"), nil
}

func encodeTimestamp(binaryFormat bool, t *arrow.TimestampType, v arrow.Timestamp) (any, error) {
	um := unixMicros(t.Unit, v)
	if binaryFormat {
		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, uint64(um-pgEpochMicros))
		return buf, nil
	}

	sec := um / 1_000_000
	frac := um % 1_000_000
	if frac < 0 {
		frac += 1_000_000
		sec--
	}
	when := time.Unix(sec, frac*1000).UTC()
	layout := "2006-01-02 15:04:05"
	if frac != 0 {
		layout = "2006-01-02 15:04:05.000000"
	}
	out := when.Format(layout)
	if frac != 0 {
		out = strings.TrimRight(out, "0")
	}
	if t.TimeZone != "" {
		out += "+00"
	}
	return out, nil
}

func encodeInterval(binaryFormat bool, micros int64, days, months int32) (any, error) {
	if binaryFormat {
		buf := make([]byte, 16)
		binary.BigEndian.PutUint64(buf[0:8], uint64(micros))
		binary.BigEndian.PutUint32(buf[8:12], uint32(days))
		binary.BigEndian.PutUint32(buf[12:16], uint32(months))
		return buf, nil
	}

	var parts []string
	if years := months / 12; years != 0 {
		parts = append(parts, fmt.Sprintf("%d year%s", years, plural(years)))
	}
	if mons := months % 12; mons != 0 {
		parts = append(parts, fmt.Sprintf("%d mon%s", mons, plural(mons)))
	}
	if days != 0 {
		parts = append(parts, fmt.Sprintf("%d day%s", days, plural(days)))
	}
	if micros != 0 || len(parts) == 0 {
		neg := micros < 0
		abs := micros
		if neg {
			abs = -abs
		}
		h := abs / 3_600_000_000
		abs -= h * 3_600_000_000
		m := abs / 60_000_000
		abs -= m * 60_000_000
		s := abs / 1_000_000
		us := abs % 1_000_000
		clock := fmt.Sprintf("%02d:%02d:%02d", h, m, s)
		if us != 0 {
			clock = strings.TrimRight(fmt.Sprintf("%s.%06d", clock, us), "0")
		}
		if neg {
			clock = "-" + clock
		}
		parts = append(parts, clock)
	}
	return strings.Join(parts, " "), nil
}

func plural(n int32) string {
	if n == 1 || n == -1 {
		return ""
	}
	return "s"
}
