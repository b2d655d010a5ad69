package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// Date is a calendar date without time or zone semantics.
type Date struct {
	t time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses an ISO calendar date (YYYY-MM-DD).
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, fmt.Errorf("empty date")
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", s)
	}
	return Date{t: t}, nil
}

func MustDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Date) IsZero() bool { return d.t.IsZero() }

func (d Date) Time() time.Time { return d.t }

func (d Date) String() string {
	if d.t.IsZero() {
		return ""
	}
	return d.t.Format(DateLayout)
}

func (d Date) Before(o Date) bool { return d.t.Before(o.t) }

func (d Date) After(o Date) bool { return d.t.After(o.t) }

func (d Date) Equal(o Date) bool { return d.t.Equal(o.t) }

const secondsPerDay = 24 * 60 * 60

// Days returns the number of calendar days from d to o.
func (d Date) Days(o Date) int {
	return int((o.t.Unix() - d.t.Unix()) / secondsPerDay)
}

func (d Date) AddDays(n int) Date { return Date{t: d.t.AddDate(0, 0, n)} }

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if strings.TrimSpace(s) == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Task is a named unit of work on the timeline. Name is the identity within a store.
type Task struct {
	Name          string   `json:"name"`
	Start         Date     `json:"start"`
	End           Date     `json:"end"`
	Category      string   `json:"category"`
	Notes         string   `json:"notes"`
	AssignedUsers []string `json:"assignedUsers"`
}

// Clone returns a copy that shares no slices with t.
func (t Task) Clone() Task {
	out := t
	out.AssignedUsers = append([]string{}, t.AssignedUsers...)
	return out
}

// UsersText joins assigned users the way they are shown in forms and hover detail.
func (t Task) UsersText() string {
	return JoinUsers(t.AssignedUsers)
}

func (t Task) Equal(o Task) bool {
	if t.Name != o.Name || !t.Start.Equal(o.Start) || !t.End.Equal(o.End) ||
		t.Category != o.Category || t.Notes != o.Notes {
		return false
	}
	if len(t.AssignedUsers) != len(o.AssignedUsers) {
		return false
	}
	for i := range t.AssignedUsers {
		if t.AssignedUsers[i] != o.AssignedUsers[i] {
			return false
		}
	}
	return true
}

// ParseUsers splits comma-separated input into trimmed user names.
// Blank segments are dropped, so "" and " , " both yield an empty slice.
func ParseUsers(s string) []string {
	out := []string{}
	if strings.TrimSpace(s) == "" {
		return out
	}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

func JoinUsers(users []string) string {
	return strings.Join(users, ", ")
}
