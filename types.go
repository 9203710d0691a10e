package auraxis

import (
	"bytes"
	"strconv"
	"time"
)

// The API encodes almost every value as a JSON string: IDs and counts as
// quoted decimals, booleans as "0"/"1", timestamps as quoted epoch seconds.
// These types decode that format directly so collection structs can use
// plain json tags.

// CensusInt is an integer transmitted as a quoted decimal string.
type CensusInt int64

// Int64 returns the value as a plain int64.
func (i CensusInt) Int64() int64 { return int64(i) }

func (i CensusInt) String() string { return strconv.FormatInt(int64(i), 10) }

// UnmarshalJSON accepts both quoted and bare decimals. "NULL" and the empty
// string decode to zero; the API uses both for absent values.
func (i *CensusInt) UnmarshalJSON(data []byte) error {
	s := unquote(data)
	if s == "" || s == "NULL" || s == "null" {
		*i = 0
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return &PayloadError{Message: "not a numeric string: " + s}
	}
	*i = CensusInt(v)
	return nil
}

// CensusFloat is a decimal transmitted as a quoted string, used for
// percent and multiplier fields.
type CensusFloat float64

// Float64 returns the value as a plain float64.
func (f CensusFloat) Float64() float64 { return float64(f) }

func (f *CensusFloat) UnmarshalJSON(data []byte) error {
	s := unquote(data)
	if s == "" || s == "NULL" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return &PayloadError{Message: "not a decimal string: " + s}
	}
	*f = CensusFloat(v)
	return nil
}

// CensusBool is a boolean transmitted as "0" or "1".
type CensusBool bool

// Bool returns the value as a plain bool.
func (b CensusBool) Bool() bool { return bool(b) }

func (b *CensusBool) UnmarshalJSON(data []byte) error {
	switch unquote(data) {
	case "0", "false", "", "NULL", "null":
		*b = false
	case "1", "true":
		*b = true
	default:
		return &PayloadError{Message: "not a boolean string: " + string(data)}
	}
	return nil
}

// CensusTime is a UTC timestamp transmitted as quoted epoch seconds.
type CensusTime time.Time

// Time returns the value as a time.Time in UTC.
func (t CensusTime) Time() time.Time { return time.Time(t) }

// IsZero reports whether the timestamp was absent or zero.
func (t CensusTime) IsZero() bool { return time.Time(t).IsZero() }

func (t *CensusTime) UnmarshalJSON(data []byte) error {
	s := unquote(data)
	if s == "" || s == "0" || s == "NULL" || s == "null" {
		*t = CensusTime(time.Time{})
		return nil
	}
	secs, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return &PayloadError{Message: "not an epoch string: " + s}
	}
	*t = CensusTime(time.Unix(secs, 0).UTC())
	return nil
}

func unquote(data []byte) string {
	data = bytes.TrimSpace(data)
	if len(data) >= 2 && data[0] == '"' && data[len(data)-1] == '"' {
		data = data[1 : len(data)-1]
	}
	return string(data)
}
