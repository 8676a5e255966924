package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLocalTime(t *testing.T) {
	lt, err := ParseLocalTime("09:30")
	require.NoError(t, err)
	assert.Equal(t, 9, lt.Hour())
	assert.Equal(t, 30, lt.Minute())
	assert.Equal(t, "09:30", lt.String())

	lt, err = ParseLocalTime("23:59:58")
	require.NoError(t, err)
	assert.Equal(t, "23:59:58", lt.String())

	_, err = ParseLocalTime("24:00")
	require.Error(t, err)
	_, err = ParseLocalTime("noon")
	require.Error(t, err)
}

func TestLocalTimeOrdering(t *testing.T) {
	nine := MustLocalTime("09:00")
	noon := MustLocalTime("12:00")

	assert.True(t, nine.Before(noon))
	assert.True(t, noon.After(nine))
	assert.False(t, nine.Before(nine))
	assert.Equal(t, -1, nine.Compare(noon))
	assert.Equal(t, 0, noon.Compare(MustLocalTime("12:00:00")))
}

func TestLocalTimeJSON(t *testing.T) {
	var h OpeningHours
	require.NoError(t, json.Unmarshal([]byte(`{"day":1,"openAt":"09:00","closeAt":"18:30:15"}`), &h))
	assert.Equal(t, 1, h.Day)
	assert.Equal(t, "09:00", h.OpenAt.String())
	assert.Equal(t, "18:30:15", h.CloseAt.String())

	data, err := json.Marshal(h)
	require.NoError(t, err)
	assert.JSONEq(t, `{"day":1,"openAt":"09:00","closeAt":"18:30:15"}`, string(data))
}

func TestLocalTimeCBORIsEpochMillis(t *testing.T) {
	lt := MustLocalTime("13:30")

	data, err := cbor.Marshal(lt)
	require.NoError(t, err)

	var ms int64
	require.NoError(t, cbor.Unmarshal(data, &ms))
	assert.Equal(t, int64(13*3600+30*60)*1000, ms)

	var decoded LocalTime
	require.NoError(t, cbor.Unmarshal(data, &decoded))
	assert.Equal(t, lt, decoded)
}

func TestLocalTimeSQL(t *testing.T) {
	v, err := MustLocalTime("07:05").Value()
	require.NoError(t, err)
	assert.Equal(t, "07:05:00", v)

	var lt LocalTime
	require.NoError(t, lt.Scan([]byte("07:05:00")))
	assert.Equal(t, "07:05", lt.String())

	require.NoError(t, lt.Scan(time.Date(0, 1, 1, 8, 15, 0, 0, time.UTC)))
	assert.Equal(t, "08:15", lt.String())

	require.Error(t, lt.Scan(42))
}

func TestDate(t *testing.T) {
	d, err := ParseDate("2024-01-31")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-31", d.String())
	assert.True(t, d.Before(NewDate(2024, time.February, 1)))

	_, err = ParseDate("31/01/2024")
	require.Error(t, err)

	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2024-01-31"`, string(data))

	var back Date
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, d.Equal(back))

	require.NoError(t, back.Scan("2023-05-06 00:00:00+00:00"))
	assert.Equal(t, "2023-05-06", back.String())
}

func TestNewPage(t *testing.T) {
	p := NewPage([]int{1, 2}, NewPageRequest(1, 2), 5)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, 1, p.Page)

	empty := NewPage[int](nil, NewPageRequest(0, 10), 0)
	assert.NotNil(t, empty.Content)
	assert.Equal(t, 0, empty.TotalPages)

	all := NewPage([]int{1, 2, 3}, Unpaged(), 3)
	assert.Equal(t, 1, all.TotalPages)
	assert.Equal(t, 3, all.Size)
}

func TestNewPageRequestClamps(t *testing.T) {
	assert.Equal(t, PageRequest{Page: 0, Size: DefaultPageSize}, NewPageRequest(-3, 0))
	assert.Equal(t, MaxPageSize, NewPageRequest(0, 10_000).Size)
	assert.Equal(t, 40, NewPageRequest(2, 20).Offset())
	assert.Equal(t, 0, Unpaged().Offset())
}

func TestParseShopID(t *testing.T) {
	id, err := ParseShopID("42")
	require.NoError(t, err)
	assert.Equal(t, ShopID(42), id)
	assert.Equal(t, "42", id.String())

	_, err = ParseShopID("0")
	require.Error(t, err)
	_, err = ParseShopID("abc")
	require.Error(t, err)

	rid := id.RecordID()
	assert.Equal(t, ShopIndexTable, rid.Table)
}
