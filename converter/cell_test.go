package converter_test

import (
	"testing"
	"time"

	"github.com/bignyap/go-sqlhelper/converter"
	"github.com/stretchr/testify/assert"
)

func TestToCell(t *testing.T) {
	name := "pen"
	tests := []struct {
		in   interface{}
		want string
	}{
		{nil, converter.NA},
		{"x", "x"},
		{[]byte("raw"), "raw"},
		{int64(42), "42"},
		{3.5, "3.5"},
		{true, "true"},
		{time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), "2024-03-01"},
		{time.Date(2024, 3, 1, 8, 30, 0, 0, time.UTC), "2024-03-01T08:30:00Z"},
		{converter.NullText(&name), "pen"},
		{converter.NullText(nil), converter.NA},
		{uint16(9), "9"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, converter.ToCell(tt.in), "%#v", tt.in)
	}
}

func TestParseValue(t *testing.T) {
	assert.Equal(t, int64(10), converter.ParseValue("10"))
	assert.Equal(t, 2.5, converter.ParseValue("2.5"))
	assert.Equal(t, true, converter.ParseValue("true"))
	assert.Nil(t, converter.ParseValue("NA"))
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), converter.ParseValue("2024-01-02"))
	assert.Equal(t, "north", converter.ParseValue("north"))
}

func TestParseValue_LeadingZeroStaysString(t *testing.T) {
	assert.Equal(t, "02134", converter.ParseValue("02134"))
	assert.Equal(t, "-007", converter.ParseValue("-007"))
	assert.Equal(t, "00.5", converter.ParseValue("00.5"))
	assert.Equal(t, int64(0), converter.ParseValue("0"))
	assert.Equal(t, 0.5, converter.ParseValue("0.5"))
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), converter.ParseValue("2024-01-02"))
}

func TestNullHelpers(t *testing.T) {
	n := 5
	v, err := converter.NullInt(&n).Value()
	assert.NoError(t, err)
	assert.Equal(t, int64(5), v)

	v, err = converter.NullInt(nil).Value()
	assert.NoError(t, err)
	assert.Nil(t, v)

	ts := time.Unix(1700000000, 0)
	v, err = converter.NullUnixSeconds(&ts).Value()
	assert.NoError(t, err)
	assert.Equal(t, int64(1700000000), v)
}

func TestFromUnixTime(t *testing.T) {
	_, err := converter.FromUnixTime(-1)
	assert.Error(t, err)

	got, err := converter.FromUnixTime(60)
	assert.NoError(t, err)
	assert.Equal(t, int64(60), converter.ToUnixTime(got))
}
