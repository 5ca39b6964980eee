package hwc

import (
	"strconv"
	"strings"
)

// ListParams are the pagination options shared by the list endpoints.
// Nil numeric fields are omitted from the query.
type ListParams struct {
	Marker string
	Limit  *uint32
	Offset *uint32
}

// ImageListFilters narrow an image listing. Empty fields are omitted.
type ImageListFilters struct {
	Visibility string
	ImageType  string
	FlavorID   string
}

func Uint32(v uint32) *uint32 { return &v }

// query collects key=value pairs verbatim. Values are not escaped so the
// string that is signed is the string that is sent.
type query []string

func (q *query) add(key, value string) {
	if value != "" {
		*q = append(*q, key+"="+value)
	}
}

func (q *query) addUint32(key string, value *uint32) {
	if value != nil {
		*q = append(*q, key+"="+strconv.FormatUint(uint64(*value), 10))
	}
}

// appendTo returns path with the collected pairs, or path unchanged when empty.
func (q query) appendTo(path string) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + strings.Join(q, "&")
}
