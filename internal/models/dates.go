package models

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	// ISODateLayout is the date form used everywhere above the API client.
	ISODateLayout = "2006-01-02"
	// CompactDateLayout is the 8-digit form some endpoints expect.
	CompactDateLayout = "20060102"
	// TimeLayout is the 24-hour slot label form.
	TimeLayout = "15:04"
)

var (
	clockRe    = regexp.MustCompile(`^(\d{1,2}):(\d{2})(?::(\d{2}))?$`)
	meridiemRe = regexp.MustCompile(`^(\d{1,2}):(\d{2})\s*([AaPp][Mm])$`)
)

// NormalizeDate converts compact (YYYYMMDD), ISO (YYYY-MM-DD) and ISO datetime
// strings to YYYY-MM-DD. Empty input yields "". Anything unrecognised is
// returned trimmed so it never matches a real date.
func NormalizeDate(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	if strings.Contains(s, "-") {
		if len(s) >= 10 {
			if _, err := time.Parse(ISODateLayout, s[:10]); err == nil {
				return s[:10]
			}
		}
		return s
	}
	if len(s) == 8 {
		if t, err := time.Parse(CompactDateLayout, s); err == nil {
			return t.Format(ISODateLayout)
		}
	}
	return s
}

// CompactDate converts any accepted date form to YYYYMMDD.
func CompactDate(raw string) string {
	return strings.ReplaceAll(NormalizeDate(raw), "-", "")
}

// ParseDate parses any accepted date form.
func ParseDate(raw string) (time.Time, error) {
	iso := NormalizeDate(raw)
	t, err := time.Parse(ISODateLayout, iso)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q; expected YYYY-MM-DD or YYYYMMDD", raw)
	}
	return t, nil
}

// ShiftDate moves an ISO date by the given number of days.
func ShiftDate(iso string, days int) (string, error) {
	t, err := ParseDate(iso)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 0, days).Format(ISODateLayout), nil
}

// NormalizeTime converts "H:mm", "HH:mm", "HH:mm:ss" and "h:mm AM/PM" to
// zero-padded 24-hour "HH:mm".
func NormalizeTime(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}
	if m := clockRe.FindStringSubmatch(s); m != nil {
		h, _ := strconv.Atoi(m[1])
		mm, _ := strconv.Atoi(m[2])
		if h > 23 || mm > 59 {
			return "", false
		}
		return fmt.Sprintf("%02d:%02d", h, mm), true
	}
	if m := meridiemRe.FindStringSubmatch(s); m != nil {
		h, _ := strconv.Atoi(m[1])
		mm, _ := strconv.Atoi(m[2])
		if h < 1 || h > 12 || mm > 59 {
			return "", false
		}
		pm := strings.EqualFold(m[3], "PM")
		switch {
		case !pm && h == 12:
			h = 0
		case pm && h != 12:
			h += 12
		}
		return fmt.Sprintf("%02d:%02d", h, mm), true
	}
	return "", false
}

// SlotEntry is one element of the slots endpoint response. The backend
// returns bare "HH:mm" strings, some deployments return {"time": "HH:mm"}.
type SlotEntry struct {
	Time string
}

// UnmarshalJSON accepts either a JSON string or an object with a time field.
func (s *SlotEntry) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		s.Time = str
		return nil
	}
	var obj struct {
		Time string `json:"time"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("decode slot entry: %w", err)
	}
	s.Time = obj.Time
	return nil
}

// MarshalJSON writes the entry as a bare string.
func (s SlotEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Time)
}
