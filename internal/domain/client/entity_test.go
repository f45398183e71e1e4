package client

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptr[T any](v T) *T { return &v }

func TestListFilter_Normalize(t *testing.T) {
	tests := []struct {
		name string
		in   ListFilter
		want ListFilter
	}{
		{"defaults", ListFilter{}, ListFilter{Page: 1, PerPage: 10}},
		{"clamp high", ListFilter{Page: 3, PerPage: 500}, ListFilter{Page: 3, PerPage: 100}},
		{"clamp low", ListFilter{Page: -2, PerPage: -5}, ListFilter{Page: 1, PerPage: 1}},
		{"keeps status", ListFilter{Status: StatusInactive, Page: 2, PerPage: 20}, ListFilter{Status: StatusInactive, Page: 2, PerPage: 20}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Normalize(10, 100))
		})
	}
}

func TestListFilter_PagesAndOffset(t *testing.T) {
	f := ListFilter{Page: 2, PerPage: 10}
	assert.Equal(t, 10, f.Offset())
	assert.Equal(t, int64(2), f.Pages(15))
	assert.Equal(t, int64(1), f.Pages(10))
	assert.Equal(t, int64(0), f.Pages(0))
}

func TestListFilter_HugePage(t *testing.T) {
	f := ListFilter{Page: 1 << 62, PerPage: 100}.Normalize(10, 100)

	assert.Equal(t, math.MaxInt, f.Offset())
	assert.True(t, f.PastEnd(15))
	assert.False(t, ListFilter{Page: 2, PerPage: 10}.PastEnd(15))
	assert.True(t, ListFilter{Page: 3, PerPage: 10}.PastEnd(15))
	assert.False(t, ListFilter{Page: 1, PerPage: 10}.PastEnd(0))
}

func TestPatch_Changes(t *testing.T) {
	c := Client{Name: "Ana", Email: "ana@example.com", Phone: ptr("123"), Status: StatusActive}

	assert.False(t, Patch{}.Changes(c))
	assert.True(t, Patch{}.Empty())
	assert.False(t, Patch{Name: ptr("Ana"), Status: ptr(StatusActive)}.Changes(c))
	assert.False(t, Patch{Phone: ptr("123"), PhoneSet: true}.Changes(c))
	assert.True(t, Patch{PhoneSet: true}.Changes(c))
	assert.True(t, Patch{Status: ptr(StatusInactive)}.Changes(c))
	assert.True(t, Patch{Email: ptr("other@example.com")}.Changes(c))
}

func TestStatus_Valid(t *testing.T) {
	assert.True(t, StatusActive.Valid())
	assert.True(t, StatusInactive.Valid())
	assert.False(t, Status("ACTIVO").Valid())
	assert.False(t, Status("").Valid())
}
