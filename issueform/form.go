/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package issueform

import (
	"regexp"
	"slices"
	"strings"
)

// Field names a recognized section of the issue form.
type Field string

const (
	None          Field = ""
	Title         Field = "title"
	AddressText   Field = "address_text"
	Description   Field = "description"
	Latitude      Field = "latitude"
	Longitude     Field = "longitude"
	CostPerPerson Field = "cost_per_person"
	OpeningHours  Field = "opening_hours"
	Link          Field = "link"
	Amenities     Field = "amenities"
)

// KnownAmenities are the checkbox labels of the amenities section.
var KnownAmenities = []string{"WiFi", "电源插座", "安静", "可久坐", "饮品", "户外座位"}

// headers maps section header text to fields, first match wins.
var headers = []struct {
	field Field
	re    *regexp.Regexp
}{
	{Title, regexp.MustCompile(`(?i)名称|地点名|店名|\bname\b`)},
	{AddressText, regexp.MustCompile(`(?i)地址|\baddress\b`)},
	{Description, regexp.MustCompile(`(?i)描述|简介|介绍|\bdescription\b`)},
	{Latitude, regexp.MustCompile(`(?i)纬度|\blatitude\b`)},
	{Longitude, regexp.MustCompile(`(?i)经度|\blongitude\b`)},
	{CostPerPerson, regexp.MustCompile(`(?i)人均|消费|价格|\bcost\b`)},
	{OpeningHours, regexp.MustCompile(`(?i)营业时间|开放时间|\bhours\b`)},
	{Link, regexp.MustCompile(`(?i)链接|网址|\blink\b`)},
	{Amenities, regexp.MustCompile(`(?i)设施|便利|amenit`)},
}

var checkedBox = regexp.MustCompile(`^\s*[-*]\s*\[[xX]\]\s*(.+?)\s*$`)

// noResponse is what GitHub renders for an optional field left empty.
const noResponse = "_No response_"

// Form is the sparse result of ParseForm.
type Form struct {
	values    map[Field]string
	amenities []string
}

// Get returns the text entered under field.
func (f Form) Get(field Field) (string, bool) {
	v, ok := f.values[field]
	return v, ok
}

// Amenities returns the checked known amenities in form order.
func (f Form) Amenities() []string {
	return slices.Clone(f.amenities)
}

// ParseForm scans body line by line. Lines starting with "###" select the
// current field by header keyword; an unrecognized header drops lines until
// the next recognized one. Within the amenities section only checked boxes
// whose label is one of KnownAmenities are kept.
func ParseForm(body string) Form {
	f := Form{values: map[Field]string{}}
	current := None
	lines := map[Field][]string{}

	for _, line := range strings.Split(strings.ReplaceAll(body, "\r\n", "\n"), "\n") {
		if rest, ok := strings.CutPrefix(strings.TrimSpace(line), "###"); ok {
			current = headerField(strings.TrimLeft(rest, "# "))
			continue
		}

		switch current {
		case None:
		case Amenities:
			m := checkedBox.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			if label := m[1]; slices.Contains(KnownAmenities, label) && !slices.Contains(f.amenities, label) {
				f.amenities = append(f.amenities, label)
			}
		default:
			if t := strings.TrimSpace(line); t != "" && t != noResponse {
				lines[current] = append(lines[current], t)
			}
		}
	}

	for field, ls := range lines {
		f.values[field] = strings.Join(ls, "\n")
	}
	return f
}

func headerField(text string) Field {
	for _, h := range headers {
		if h.re.MatchString(text) {
			return h.field
		}
	}
	return None
}

var updateMarker = regexp.MustCompile(`(?i)\[更新\]|【更新】|\[update\]`)

// IsUpdateTitle reports whether an issue title asks to update an existing
// place rather than add one.
func IsUpdateTitle(title string) bool {
	return updateMarker.MatchString(title)
}
