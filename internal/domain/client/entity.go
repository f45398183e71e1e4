package client

import (
	"math"
	"time"
)

type (
	ID     int64
	Status string
	Client struct {
		ID     ID
		Name   string
		Email  string
		Phone  *string
		Status Status

		CreatedAt time.Time
		UpdatedAt time.Time
	}
	Clients []*Client

	// Draft is a validated client payload that has not been stored yet.
	Draft struct {
		Name   string
		Email  string
		Phone  *string
		Status Status
	}

	// Patch holds the fields supplied to an update. A nil pointer means
	// "leave unchanged"; PhoneSet distinguishes an explicit null phone
	// from an absent one.
	Patch struct {
		Name     *string
		Email    *string
		Phone    *string
		PhoneSet bool
		Status   *Status
	}

	ListFilter struct {
		Status  Status
		Page    int
		PerPage int
	}

	// CreateResult is the outcome of one item of a batch create.
	CreateResult struct {
		Index  int
		Client *Client
		Err    error
	}
)

const (
	StatusActive   Status = "activo"
	StatusInactive Status = "inactivo"
)

func (s Status) Valid() bool {
	return s == StatusActive || s == StatusInactive
}

// Empty reports whether the patch carries no fields at all.
func (p Patch) Empty() bool {
	return p.Name == nil && p.Email == nil && !p.PhoneSet && p.Status == nil
}

// Changes reports whether applying the patch to c would alter any value.
func (p Patch) Changes(c Client) bool {
	if p.Name != nil && *p.Name != c.Name {
		return true
	}
	if p.Email != nil && *p.Email != c.Email {
		return true
	}
	if p.PhoneSet && !samePhone(p.Phone, c.Phone) {
		return true
	}
	if p.Status != nil && *p.Status != c.Status {
		return true
	}
	return false
}

func samePhone(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// Normalize clamps the filter to a valid page window. PerPage falls back to
// defPerPage when unset and is clamped to [1, maxPerPage].
func (f ListFilter) Normalize(defPerPage, maxPerPage int) ListFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage == 0 {
		f.PerPage = defPerPage
	}
	if f.PerPage < 1 {
		f.PerPage = 1
	}
	if maxPerPage > 0 && f.PerPage > maxPerPage {
		f.PerPage = maxPerPage
	}
	return f
}

// Offset saturates at math.MaxInt instead of wrapping for huge pages.
func (f ListFilter) Offset() int {
	if f.Page < 1 || f.PerPage < 1 {
		return 0
	}
	if f.Page-1 > math.MaxInt/f.PerPage {
		return math.MaxInt
	}
	return (f.Page - 1) * f.PerPage
}

// PastEnd reports whether the page starts after the last of total items.
func (f ListFilter) PastEnd(total int64) bool {
	return f.Page > 1 && int64(f.Page-1) >= f.Pages(total)
}

// Pages returns the number of pages needed to hold total items.
func (f ListFilter) Pages(total int64) int64 {
	if f.PerPage < 1 || total <= 0 {
		return 0
	}
	return (total + int64(f.PerPage) - 1) / int64(f.PerPage)
}
