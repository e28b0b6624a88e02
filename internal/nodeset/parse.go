package nodeset

import (
	"math"
	"strconv"
	"strings"
)

type bound struct {
	lo, hi, step uint64
	pad          int
}

func (b bound) count() uint64 {
	return (b.hi-b.lo)/b.step + 1
}

type segment struct {
	literal string
	ranges  []bound
}

func (s segment) isRange() bool { return s.ranges != nil }

func (s segment) count() uint64 {
	var total uint64
	for _, r := range s.ranges {
		total += r.count()
	}
	return total
}

func (s segment) values() []string {
	var out []string
	for _, r := range s.ranges {
		for n := r.lo; n <= r.hi; n += r.step {
			out = append(out, padNumber(uint32(n), r.pad))
		}
	}
	return out
}

func splitTopLevel(pattern string) ([]string, error) {
	if strings.TrimSpace(pattern) == "" {
		return nil, &SyntaxError{pattern, "empty pattern"}
	}
	var out []string
	depth, start := 0, 0
	for i := 0; i < len(pattern); i++ {
		switch pattern[i] {
		case '[':
			depth++
			if depth > 1 {
				return nil, &SyntaxError{pattern, "nested brackets"}
			}
		case ']':
			depth--
			if depth < 0 {
				return nil, &SyntaxError{pattern, "unbalanced brackets"}
			}
		case ',':
			if depth == 0 {
				out = append(out, strings.TrimSpace(pattern[start:i]))
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, &SyntaxError{pattern, "unbalanced brackets"}
	}
	out = append(out, strings.TrimSpace(pattern[start:]))
	for _, el := range out {
		if el == "" {
			return nil, &SyntaxError{pattern, "empty element"}
		}
	}
	return out, nil
}

func (ns *NodeSet) addElement(pattern, el string, limit int) error {
	segments, err := tokenize(pattern, el)
	if err != nil {
		return err
	}

	last := -1
	total := uint64(1)
	for i, seg := range segments {
		if !seg.isRange() {
			continue
		}
		last = i
		total = mulCapped(total, seg.count())
	}
	if last < 0 {
		ns.Add(el)
		return nil
	}
	if limit > 0 && total > uint64(limit) {
		return ErrTooLarge
	}

	prefixes := []string{""}
	for _, seg := range segments[:last] {
		if !seg.isRange() {
			for i := range prefixes {
				prefixes[i] += seg.literal
			}
			continue
		}
		vals := seg.values()
		next := make([]string, 0, len(prefixes)*len(vals))
		for _, p := range prefixes {
			for _, v := range vals {
				next = append(next, p+v)
			}
		}
		prefixes = next
	}

	var suffix strings.Builder
	for _, seg := range segments[last+1:] {
		suffix.WriteString(seg.literal)
	}
	sfx := suffix.String()
	tail := segments[last]

	for _, prefix := range prefixes {
		// A digit touching the range would make the index ambiguous with the
		// last-number split used by Add, so go through Add host by host.
		if (prefix != "" && isDigit(prefix[len(prefix)-1])) || (sfx != "" && isDigit(sfx[0])) {
			for _, v := range tail.values() {
				ns.Add(prefix + v + sfx)
			}
			continue
		}
		for _, r := range tail.ranges {
			ns.addRange(prefix, sfx, r)
		}
	}
	return nil
}

func (ns *NodeSet) addRange(prefix, suffix string, r bound) {
	if r.step != 1 {
		for n := r.lo; n <= r.hi; n += r.step {
			ns.bitmap(prefix, suffix, canonicalPad(uint32(n), r.pad)).Add(uint32(n))
		}
		return
	}
	lo, hi := r.lo, r.hi
	if r.pad > 0 {
		// Indexes narrower than the pad keep it, wider ones render the same
		// with or without it.
		split := uint64(math.Pow10(r.pad - 1))
		if lo < split {
			end := hi
			if end >= split {
				end = split - 1
			}
			ns.bitmap(prefix, suffix, r.pad).AddRange(lo, end+1)
			lo = split
		}
	}
	if lo <= hi {
		ns.bitmap(prefix, suffix, 0).AddRange(lo, hi+1)
	}
}

func tokenize(pattern, el string) ([]segment, error) {
	var segments []segment
	for len(el) > 0 {
		open := strings.IndexByte(el, '[')
		if open < 0 {
			if err := checkLiteral(pattern, el); err != nil {
				return nil, err
			}
			segments = append(segments, segment{literal: el})
			break
		}
		if open > 0 {
			if err := checkLiteral(pattern, el[:open]); err != nil {
				return nil, err
			}
			segments = append(segments, segment{literal: el[:open]})
		}
		end := strings.IndexByte(el, ']')
		if end < open {
			return nil, &SyntaxError{pattern, "unbalanced brackets"}
		}
		ranges, err := parseRanges(pattern, el[open+1:end])
		if err != nil {
			return nil, err
		}
		segments = append(segments, segment{ranges: ranges})
		el = el[end+1:]
	}
	return segments, nil
}

func parseRanges(pattern, body string) ([]bound, error) {
	if body == "" {
		return nil, &SyntaxError{pattern, "empty range"}
	}
	parts := strings.Split(body, ",")
	out := make([]bound, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		b := bound{step: 1}

		if slash := strings.IndexByte(part, '/'); slash >= 0 {
			step, err := strconv.ParseUint(part[slash+1:], 10, 32)
			if err != nil || step == 0 {
				return nil, &SyntaxError{pattern, "invalid step in " + strconv.Quote(part)}
			}
			b.step = step
			part = part[:slash]
		}

		loStr, hiStr := part, part
		if dash := strings.IndexByte(part, '-'); dash >= 0 {
			loStr, hiStr = part[:dash], part[dash+1:]
		}
		lo, err := strconv.ParseUint(loStr, 10, 32)
		if err != nil {
			return nil, &SyntaxError{pattern, "invalid range bound " + strconv.Quote(loStr)}
		}
		hi, err := strconv.ParseUint(hiStr, 10, 32)
		if err != nil {
			return nil, &SyntaxError{pattern, "invalid range bound " + strconv.Quote(hiStr)}
		}
		if lo > hi {
			return nil, &SyntaxError{pattern, "descending range " + strconv.Quote(part)}
		}
		if len(loStr) > 1 && loStr[0] == '0' {
			b.pad = len(loStr)
		}
		b.lo, b.hi = lo, hi
		out = append(out, b)
	}
	return out, nil
}

func checkLiteral(pattern, lit string) error {
	for i := 0; i < len(lit); i++ {
		c := lit[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', isDigit(c), c == '_', c == '.', c == '-':
		default:
			return &SyntaxError{pattern, "invalid character " + strconv.QuoteRune(rune(c))}
		}
	}
	return nil
}

func mulCapped(a, b uint64) uint64 {
	if a != 0 && b > math.MaxUint64/a {
		return math.MaxUint64
	}
	return a * b
}
