package printadapter

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

// PageRange is an inclusive interval of 0-based output page indices.
type PageRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// AllPages selects every output page.
var AllPages = []PageRange{{Start: 0, End: math.MaxInt}}

// Contains reports whether page lies in the interval.
func (r PageRange) Contains(page int) bool {
	return r.Start <= page && page <= r.End
}

func (r PageRange) String() string {
	if r.End == math.MaxInt {
		return fmt.Sprintf("%d-", r.Start)
	}
	if r.Start == r.End {
		return strconv.Itoa(r.Start)
	}
	return fmt.Sprintf("%d-%d", r.Start, r.End)
}

// clipRanges returns the parts of ranges inside [0, total), sorted and merged
// so that no two intervals touch or overlap.
func clipRanges(ranges []PageRange, total int) []PageRange {
	if total <= 0 {
		return nil
	}
	if len(ranges) == 0 {
		ranges = AllPages
	}
	clipped := make([]PageRange, 0, len(ranges))
	for _, r := range ranges {
		start, end := max(r.Start, 0), min(r.End, total-1)
		if start > end {
			continue
		}
		clipped = append(clipped, PageRange{Start: start, End: end})
	}
	slices.SortFunc(clipped, func(a, b PageRange) int { return cmp.Compare(a.Start, b.Start) })

	merged := clipped[:0]
	for _, r := range clipped {
		if n := len(merged); n > 0 && r.Start <= merged[n-1].End+1 {
			merged[n-1].End = max(merged[n-1].End, r.End)
			continue
		}
		merged = append(merged, r)
	}
	return merged
}

// CountSelected is the number of output pages in [0, total) covered by
// ranges, computed without enumerating them.
func CountSelected(ranges []PageRange, total int) int {
	n := 0
	for _, r := range clipRanges(ranges, total) {
		n += r.End - r.Start + 1
	}
	return n
}

// SelectPages returns, in ascending order and without duplicates, the output
// indices in [0, total) covered by ranges. No ranges means all pages. Only the
// covered indices are visited; callers bound the result with CountSelected.
func SelectPages(ranges []PageRange, total int) []int {
	clipped := clipRanges(ranges, total)
	if len(clipped) == 0 {
		return nil
	}
	n := 0
	for _, r := range clipped {
		n += r.End - r.Start + 1
	}
	pages := make([]int, 0, n)
	for _, r := range clipped {
		for i := r.Start; i <= r.End; i++ {
			pages = append(pages, i)
		}
	}
	return pages
}

// CompactPages turns an ascending page list back into the minimal set of ranges.
func CompactPages(pages []int) []PageRange {
	var out []PageRange
	for _, p := range pages {
		if n := len(out); n > 0 && out[n-1].End+1 == p {
			out[n-1].End = p
			continue
		}
		out = append(out, PageRange{Start: p, End: p})
	}
	return out
}

// ParsePageRanges parses a 1-based selection such as "1-3,5,8-" into 0-based
// ranges. An empty string or "all" yields nil (every page).
func ParsePageRanges(s string) ([]PageRange, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "all") {
		return nil, nil
	}
	var ranges []PageRange
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		from, to, isRange := strings.Cut(part, "-")
		start, err := parsePageNumber(from)
		if err != nil {
			return nil, fmt.Errorf("invalid page range %q: %w", part, err)
		}
		end := start
		if isRange {
			if strings.TrimSpace(to) == "" {
				end = math.MaxInt
			} else if end, err = parsePageNumber(to); err != nil {
				return nil, fmt.Errorf("invalid page range %q: %w", part, err)
			}
		}
		if end < start {
			return nil, fmt.Errorf("invalid page range %q: end before start", part)
		}
		r := PageRange{Start: start - 1, End: end}
		if end != math.MaxInt {
			r.End = end - 1
		}
		ranges = append(ranges, r)
	}
	return ranges, nil
}

func parsePageNumber(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, fmt.Errorf("page numbers start at 1, got %d", n)
	}
	return n, nil
}
