package domain

import (
	"encoding/json"
	"sort"
)

// ValueVersionPageSize is the fixed page size for value version listing.
const ValueVersionPageSize = 100

// KbValueVersions holds the key/value version counters of one knowledge base.
type KbValueVersions struct {
	KbGUID   string           `json:"kbGuid" yaml:"kbGuid"`
	Versions map[string]int64 `json:"versions" yaml:"versions"`
}

// MaxVersion returns the largest version counter, or 0 when empty.
func (v *KbValueVersions) MaxVersion() int64 {
	var max int64
	for _, ver := range v.Versions {
		if ver > max {
			max = ver
		}
	}
	return max
}

// Keys returns the value keys in sorted order.
func (v *KbValueVersions) Keys() []string {
	keys := make([]string, 0, len(v.Versions))
	for k := range v.Versions {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type valueVersionWire struct {
	Key     string `json:"key"`
	Version int64  `json:"version"`
}

// UnmarshalJSON accepts versions either as a key->version object or as a
// list of {key, version} pairs.
func (v *KbValueVersions) UnmarshalJSON(data []byte) error {
	var head struct {
		KbGUID   string          `json:"kbGuid"`
		Versions json.RawMessage `json:"versions"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}

	v.KbGUID = head.KbGUID
	v.Versions = make(map[string]int64)
	if len(head.Versions) == 0 || string(head.Versions) == "null" {
		return nil
	}

	if head.Versions[0] == '[' {
		var list []valueVersionWire
		if err := json.Unmarshal(head.Versions, &list); err != nil {
			return err
		}
		for _, item := range list {
			v.Versions[item.Key] = item.Version
		}
		return nil
	}

	return json.Unmarshal(head.Versions, &v.Versions)
}

// ValueVersionPage is one page of the value version listing.
type ValueVersionPage struct {
	Entries    []*KbValueVersions
	Cursor     int64 // cursor the page was requested with
	NextCursor int64 // largest version seen, or Cursor when the page is empty
	PageSize   int
}

// IsLast reports whether the server signalled the end of the listing.
func (p *ValueVersionPage) IsLast() bool {
	return len(p.Entries) < p.PageSize
}

// NewValueVersionPage builds a page and computes its next cursor.
func NewValueVersionPage(entries []*KbValueVersions, cursor int64, pageSize int) *ValueVersionPage {
	next := cursor
	for _, e := range entries {
		if m := e.MaxVersion(); m > next {
			next = m
		}
	}
	return &ValueVersionPage{
		Entries:    entries,
		Cursor:     cursor,
		NextCursor: next,
		PageSize:   pageSize,
	}
}
