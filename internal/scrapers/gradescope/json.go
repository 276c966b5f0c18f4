package gradescope

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// looseString accepts a json string or number. Ids on the site show up as
// either depending on the page.
type looseString string

func (s *looseString) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var str string
	if err := json.Unmarshal(b, &str); err == nil {
		*s = looseString(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(b, &num); err != nil {
		return fmt.Errorf("expected string or number, got %s", b)
	}
	*s = looseString(num.String())
	return nil
}

func (s *looseString) ptr() *string {
	if s == nil {
		return nil
	}
	str := string(*s)
	return &str
}

// looseFloat accepts a json number or a string holding one.
type looseFloat float64

func (f *looseFloat) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var num float64
	if err := json.Unmarshal(b, &num); err == nil {
		*f = looseFloat(num)
		return nil
	}
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return fmt.Errorf("expected number or string, got %s", b)
	}
	num, err := strconv.ParseFloat(strings.TrimSpace(str), 64)
	if err != nil {
		return err
	}
	*f = looseFloat(num)
	return nil
}

func (f *looseFloat) ptr() *float64 {
	if f == nil {
		return nil
	}
	num := float64(*f)
	return &num
}
