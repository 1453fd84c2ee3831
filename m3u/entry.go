package m3u

import "strings"

// scanner walks an entry line, field after field.
type scanner struct {
	s   string
	bad bool // unexpected characters were found
}

func (sc *scanner) peek() byte {
	if sc.s == "" {
		return 0
	}
	return sc.s[0]
}

func (sc *scanner) next() byte {
	c := sc.s[0]
	sc.s = sc.s[1:]
	return c
}

func (sc *scanner) skipWhite() { sc.s = trimWhite(sc.s) }

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func hexDigit(c byte) (int, bool) {
	switch {
	case isDigit(c):
		return int(c - '0'), true
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10, true
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10, true
	}
	return 0, false
}

// endField skips to the start of the next field. Anything but spaces before
// the comma makes the line bad.
func (sc *scanner) endField() {
	for {
		sc.skipWhite()
		if sc.s == "" {
			break
		}
		if sc.next() == ',' {
			break
		}
		sc.bad = true
	}
	sc.skipWhite()
}

// int reads a decimal number.
func (sc *scanner) int() (int, bool) {
	n, ok := 0, false
	for isDigit(sc.peek()) {
		n = n*10 + int(sc.next()-'0')
		ok = true
	}
	return n, ok
}

// text reads up to the comma ending the field. A comma is part of the text
// unless followed by one of the characters in stops, after spaces. A
// backslash escapes the next character.
func (sc *scanner) text(stops string) string {
	var b strings.Builder
	for sc.s != "" {
		c := sc.next()
		if c == ',' {
			p := trimWhite(sc.s)
			if p != "" && (isDigit(p[0]) || strings.IndexByte(stops, p[0]) >= 0) {
				sc.s = p
				break
			}
		}
		if c == '\\' {
			if sc.s == "" {
				break
			}
			c = sc.next()
		}
		b.WriteByte(c)
	}
	return b.String()
}

// filename reads the file name and its optional ::TYPE suffix.
func (sc *scanner) filename() (file, typ string) {
	var b strings.Builder
	for sc.s != "" {
		c := sc.next()
		if c == ',' {
			if p := trimWhite(sc.s); p != "" && (p[0] == '$' || isDigit(p[0])) {
				sc.s = p
				break
			}
		}
		if c == ':' && len(sc.s) >= 2 && sc.s[0] == ':' && (len(sc.s) == 2 || sc.s[2] != ',') {
			typ, sc.s, _ = strings.Cut(sc.s[1:], ",")
			sc.skipWhite()
			break
		}
		if c == '\\' {
			if sc.s == "" {
				break
			}
			c = sc.next()
		}
		b.WriteByte(c)
	}
	return b.String(), typ
}

// track reads a decimal or $hex track number.
func (sc *scanner) track() (n int, decimal bool) {
	n = -1
	if sc.peek() == '$' {
		sc.next()
		for h, ok := hexDigit(sc.peek()); ok; h, ok = hexDigit(sc.peek()) {
			sc.next()
			n = max(n, 0)*16 + h
		}
	} else if v, ok := sc.int(); ok {
		n, decimal = v, true
	}
	sc.endField()
	return n, decimal
}

// time reads [[h:]m:]s[.ms], in milliseconds, or -1.
func (sc *scanner) time() int {
	t, ok := sc.int()
	if !ok {
		return -1
	}
	for sc.peek() == ':' {
		sc.next()
		if n, ok := sc.int(); ok {
			t = t*60 + n
		}
	}
	t *= 1000
	if sc.peek() == '.' {
		sc.next()
		if n, ok := sc.int(); ok {
			t += n
		}
	}
	return t
}

// parse parses an entry line, and reports whether it's well formed.
func (e *Entry) parse(line string) bool {
	sc := scanner{s: line}

	e.File, e.Type = sc.filename()
	e.Track, e.Decimal = sc.track()
	e.Name = sc.text(",-")

	e.Length = sc.time()
	sc.endField()

	// The loop field is the loop length, "-" when the whole track loops, or
	// the intro length when followed by "-".
	e.Intro, e.Loop = -1, -1
	if sc.peek() == '-' {
		sc.next()
		e.Loop = e.Length
	} else if loop := sc.time(); loop >= 0 {
		e.Loop = loop
		e.Intro = e.Length - loop
		if sc.peek() == '-' {
			sc.next()
			e.Intro = loop
			e.Loop = e.Length - loop
		}
	}
	sc.endField()

	e.Fade = sc.time()
	sc.endField()

	e.Repeat = -1
	if n, ok := sc.int(); ok {
		e.Repeat = n
	}
	sc.endField()

	return !sc.bad
}
