// nodeset.go
//
// Network boot configuration manager with weighted host profiles and one-shot alias overrides
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of bootmgr.
// bootmgr is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// bootmgr is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with bootmgr.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

// Package nodeset expands and folds host-range patterns such as
// "node[1-50],svc256,cn[001-010]-ib".
//
// Hosts sharing a prefix, a suffix and a zero-padding width are stored as a
// single roaring bitmap of their numeric index, so a range of a hundred
// thousand hosts costs a few containers instead of a hundred thousand strings
// until the caller asks for them.
package nodeset

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/RoaringBitmap/roaring"
)

// ErrTooLarge is returned when a pattern expands to more hosts than allowed.
var ErrTooLarge = errors.New("nodeset too large")

// SyntaxError reports a malformed pattern.
type SyntaxError struct {
	Pattern string
	Reason  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("invalid nodeset %q: %s", e.Pattern, e.Reason)
}

type groupKey struct {
	prefix string
	suffix string
	pad    int
}

// NodeSet is an unordered set of host identifiers.
type NodeSet struct {
	literals map[string]struct{}
	groups   map[groupKey]*roaring.Bitmap
}

// New returns an empty NodeSet.
func New() *NodeSet {
	return &NodeSet{
		literals: make(map[string]struct{}),
		groups:   make(map[groupKey]*roaring.Bitmap),
	}
}

// Parse expands pattern without any size limit.
func Parse(pattern string) (*NodeSet, error) {
	return ParseLimit(pattern, 0)
}

// ParseLimit expands pattern, failing with ErrTooLarge as soon as the set
// would exceed limit hosts. A limit of zero disables the check.
func ParseLimit(pattern string, limit int) (*NodeSet, error) {
	ns := New()
	elements, err := splitTopLevel(pattern)
	if err != nil {
		return nil, err
	}
	for _, el := range elements {
		if err := ns.addElement(pattern, el, limit); err != nil {
			return nil, err
		}
		if limit > 0 && ns.Len() > limit {
			return nil, ErrTooLarge
		}
	}
	return ns, nil
}

// Expand returns the ordered, de-duplicated hosts denoted by pattern.
func Expand(pattern string) ([]string, error) {
	ns, err := Parse(pattern)
	if err != nil {
		return nil, err
	}
	return ns.Hosts(), nil
}

// Fold returns the canonical compact pattern denoting hosts.
func Fold(hosts []string) string {
	ns := New()
	for _, h := range hosts {
		ns.Add(h)
	}
	return ns.String()
}

// Add inserts a single host identifier.
func (ns *NodeSet) Add(host string) {
	prefix, digits, suffix, ok := splitLastNumber(host)
	if !ok {
		ns.literals[host] = struct{}{}
		return
	}
	n, err := strconv.ParseUint(digits, 10, 32)
	if err != nil {
		ns.literals[host] = struct{}{}
		return
	}
	pad := 0
	if len(digits) > 1 && digits[0] == '0' {
		pad = len(digits)
	}
	ns.bitmap(prefix, suffix, canonicalPad(uint32(n), pad)).Add(uint32(n))
}

// Len returns the number of hosts in the set.
func (ns *NodeSet) Len() int {
	total := uint64(len(ns.literals))
	for _, bm := range ns.groups {
		total += bm.GetCardinality()
	}
	if total > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(total)
}

// Contains reports whether host is a member of the set.
func (ns *NodeSet) Contains(host string) bool {
	if _, ok := ns.literals[host]; ok {
		return true
	}
	prefix, digits, suffix, ok := splitLastNumber(host)
	if !ok {
		return false
	}
	n, err := strconv.ParseUint(digits, 10, 32)
	if err != nil {
		return false
	}
	pad := 0
	if len(digits) > 1 && digits[0] == '0' {
		pad = len(digits)
	}
	bm, ok := ns.groups[groupKey{prefix, suffix, canonicalPad(uint32(n), pad)}]
	return ok && bm.Contains(uint32(n))
}

// Hosts materializes the set in canonical order: groups sorted by prefix,
// suffix and padding, indexes ascending within a group.
func (ns *NodeSet) Hosts() []string {
	out := make([]string, 0, ns.Len())
	for _, key := range ns.sortedKeys() {
		it := ns.groups[key].Iterator()
		for it.HasNext() {
			out = append(out, key.format(it.Next()))
		}
	}
	lits := make([]string, 0, len(ns.literals))
	for l := range ns.literals {
		lits = append(lits, l)
	}
	sort.Strings(lits)
	return append(out, lits...)
}

// String folds the set into its canonical pattern.
func (ns *NodeSet) String() string {
	type item struct {
		prefix, suffix string
		first          uint32
		text           string
	}

	groups := ns.mergedGroups()
	items := make([]item, 0, len(groups)+len(ns.literals))
	for key, bm := range groups {
		if bm.IsEmpty() {
			continue
		}
		var text string
		if bm.GetCardinality() == 1 {
			text = key.format(bm.Minimum())
		} else {
			text = key.prefix + "[" + key.ranges(bm) + "]" + key.suffix
		}
		items = append(items, item{key.prefix, key.suffix, bm.Minimum(), text})
	}
	for l := range ns.literals {
		items = append(items, item{prefix: l, text: l})
	}
	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.prefix != b.prefix {
			return a.prefix < b.prefix
		}
		if a.suffix != b.suffix {
			return a.suffix < b.suffix
		}
		return a.first < b.first
	})

	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = it.text
	}
	return strings.Join(parts, ",")
}

func (ns *NodeSet) bitmap(prefix, suffix string, pad int) *roaring.Bitmap {
	key := groupKey{prefix, suffix, pad}
	bm, ok := ns.groups[key]
	if !ok {
		bm = roaring.New()
		ns.groups[key] = bm
	}
	return bm
}

func (ns *NodeSet) sortedKeys() []groupKey {
	keys := make([]groupKey, 0, len(ns.groups))
	for k := range ns.groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.prefix != b.prefix {
			return a.prefix < b.prefix
		}
		if a.suffix != b.suffix {
			return a.suffix < b.suffix
		}
		return a.pad < b.pad
	})
	return keys
}

// mergedGroups moves unpadded indexes whose natural width equals a padded
// group's width into that group, so node[08-12] folds back as one range.
func (ns *NodeSet) mergedGroups() map[groupKey]*roaring.Bitmap {
	out := make(map[groupKey]*roaring.Bitmap, len(ns.groups))
	for k, bm := range ns.groups {
		out[k] = bm.Clone()
	}
	for k, bm := range out {
		if k.pad == 0 || k.pad > 10 {
			continue
		}
		natural, ok := out[groupKey{k.prefix, k.suffix, 0}]
		if !ok {
			continue
		}
		lo := uint64(math.Pow10(k.pad - 1))
		hi := uint64(math.Pow10(k.pad))
		if hi > 1<<32 {
			hi = 1 << 32
		}
		window := roaring.New()
		window.AddRange(lo, hi)
		moved := roaring.And(natural, window)
		bm.Or(moved)
		natural.AndNot(moved)
	}
	return out
}

func (k groupKey) format(n uint32) string {
	return k.prefix + padNumber(n, k.pad) + k.suffix
}

func (k groupKey) ranges(bm *roaring.Bitmap) string {
	var b strings.Builder
	it := bm.Iterator()
	first := true
	var start, prev uint32
	flush := func() {
		if !first {
			b.WriteByte(',')
		}
		first = false
		b.WriteString(padNumber(start, k.pad))
		if prev != start {
			b.WriteByte('-')
			b.WriteString(padNumber(prev, k.pad))
		}
	}
	started := false
	for it.HasNext() {
		n := it.Next()
		switch {
		case !started:
			start, prev, started = n, n, true
		case n == prev+1:
			prev = n
		default:
			flush()
			start, prev = n, n
		}
	}
	if started {
		flush()
	}
	return b.String()
}

func padNumber(n uint32, pad int) string {
	s := strconv.FormatUint(uint64(n), 10)
	if len(s) < pad {
		s = strings.Repeat("0", pad-len(s)) + s
	}
	return s
}

// canonicalPad drops padding that does not change the rendered number, so
// node12 parsed from "node[08-12]" and from "node12" land in the same group.
func canonicalPad(n uint32, pad int) int {
	if pad > 0 && len(strconv.FormatUint(uint64(n), 10)) < pad {
		return pad
	}
	return 0
}

func splitLastNumber(host string) (prefix, digits, suffix string, ok bool) {
	end := -1
	for i := len(host) - 1; i >= 0; i-- {
		if isDigit(host[i]) {
			end = i + 1
			break
		}
	}
	if end < 0 {
		return "", "", "", false
	}
	start := end - 1
	for start > 0 && isDigit(host[start-1]) {
		start--
	}
	return host[:start], host[start:end], host[end:], true
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
