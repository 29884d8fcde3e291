package grammar

import (
	"strings"
	"unicode/utf8"
)

// Character sets of the builtin fragments, alphanumerics excluded.
const (
	userPunct    = `-+.`
	passPunct    = `-,?;.:/!%$^*&~"#'`
	pathPunct    = `-_$.+!*,:;@&=?/~#|%'`
	voipPunct    = `-;/?:@&=+$,%*'!~._`
	newsManPunct = "-^_{|}~!\"#$%&'()*+,./;:=?`"
)

// pathNonTerm holds characters a path may contain but never end with.
const pathNonTerm = `.!,;?`

// Recognized protocol identifiers. Longer forms come before their own
// prefixes so the longest identifier wins.
var schemes = []string{"https", "http", "ftps", "ftp", "sftp", "news", "nntp", "telnet", "webcal"}

const schemeHint = `(?:[Nn][Ee][Ww][Ss]|[Nn][Nn][Tt][Pp]|[Tt][Ee][Ll][Nn][Ee][Tt]|[Hh][Tt][Tt][Pp][Ss]?|[Ff][Tt][Pp][Ss]?|[Ss][Ff][Tt][Pp]|[Ww][Ee][Bb][Cc][Aa][Ll])`

// builtinFragments returns the fragment set shared by all builtin grammars.
func builtinFragments(uni bool) []Fragment {
	return []Fragment{
		{Name: "scheme", Build: func(Deps) Op { return schemeOp }},
		{Name: "user", Build: func(Deps) Op { return userOp(uni) }},
		{Name: "pass", Build: func(Deps) Op { return passOp(uni) }},
		{Name: "userpass", Refs: []string{"user", "pass"}, Build: userpassOp},
		{Name: "hostname1", Build: func(Deps) Op { return hostnameOp(1, uni) }},
		{Name: "hostname2", Build: func(Deps) Op { return hostnameOp(2, uni) }},
		{Name: "s4", Build: func(Deps) Op { return s4Op }},
		{Name: "ipv4", Refs: []string{"s4"}, Build: ipv4Op},
		{Name: "ipv6", Refs: []string{"ipv4"}, Build: ipv6Op},
		{Name: "n-1-65535", Build: func(Deps) Op { return n65535Op }},
		{Name: "port", Refs: []string{"n-1-65535"}, Build: portOp},
		{Name: "url-host", Refs: []string{"hostname1", "ipv4", "ipv6"}, Build: urlHostOp},
		{Name: "email-host", Refs: []string{"hostname2", "ipv4", "ipv6"}, Build: emailHostOp},
		{Name: "pathtext", Build: func(Deps) Op { return pathTextOp(uni) }},
		{Name: "urlpath", Refs: []string{"pathtext"}, Build: urlpathOp},
		{
			Name:       "url-as-is",
			Refs:       []string{"scheme", "userpass", "url-host", "port", "urlpath"},
			ScanHint:   schemeHint + "://",
			PrefixHint: "^" + schemeHint + "://",
			Build:      urlAsIsOp,
		},
		{
			Name:       "url-http",
			Refs:       []string{"port", "urlpath"},
			ScanHint:   `(?:[Ww][Ww][Ww]|[Ff][Tt][Pp])`,
			PrefixHint: `^(?:[Ww][Ww][Ww]|[Ff][Tt][Pp])`,
			Build:      func(d Deps) Op { return urlHTTPOp(d, uni) },
		},
		{
			Name:       "url-file",
			Refs:       []string{"hostname1", "pathtext"},
			ScanHint:   `[Ff][Ii][Ll][Ee]:/`,
			PrefixHint: `^[Ff][Ii][Ll][Ee]:/`,
			Build:      urlFileOp,
		},
		{
			Name:       "url-voip",
			Refs:       []string{"userpass", "url-host", "port"},
			ScanHint:   `[Ss][Ii][Pp][Ss]?:`,
			PrefixHint: `^[Ss][Ii][Pp][Ss]?:`,
			Build:      func(d Deps) Op { return urlVoipOp(d, uni) },
		},
		{
			Name:       "email",
			Refs:       []string{"user", "email-host"},
			ScanHint:   `(?:[Mm][Aa][Ii][Ll][Tt][Oo]:)?[\p{L}\p{N}+.-]+@`,
			PrefixHint: `^(?:[Mm][Aa][Ii][Ll][Tt][Oo]:)?[\p{L}\p{N}+.-]+@`,
			Build:      emailOp,
		},
		{
			Name:       "news-man",
			Refs:       nil,
			ScanHint:   `(?:[Nn][Ee][Ww][Ss]|[Mm][Aa][Nn]):`,
			PrefixHint: `^(?:[Nn][Ee][Ww][Ss]|[Mm][Aa][Nn]):`,
			Build:      func(Deps) Op { return newsManOp(uni) },
		},
	}
}

func schemeOp(s []byte, at int) int {
	for _, sc := range schemes {
		if foldHasPrefix(s, at, sc) {
			return at + len(sc)
		}
	}
	return -1
}

func userOp(uni bool) Op {
	return func(s []byte, at int) int {
		end := punctRun(s, at, userPunct, uni)
		if end == at {
			return -1
		}
		return end
	}
}

// passOp recognizes an optional password: a ':' followed by any run of
// password characters, possibly empty. It always matches.
func passOp(uni bool) Op {
	return func(s []byte, at int) int {
		if at >= len(s) || s[at] != ':' {
			return at
		}
		return punctRun(s, at+1, passPunct, uni)
	}
}

// userpassOp recognizes "user[:pass]@" as a whole, or matches empty when
// the credentials are absent or not terminated by '@'.
func userpassOp(d Deps) Op {
	user, pass := d["user"], d["pass"]
	return func(s []byte, at int) int {
		if ue := user(s, at); ue >= 0 {
			pe := pass(s, ue)
			if pe < len(s) && s[pe] == '@' {
				return pe + 1
			}
		}
		return at
	}
}

// hostnameOp recognizes dot-separated hostname segments. Trailing
// segments are dropped until the final one contains a non-digit, so a
// bare dotted number never parses as a hostname. At least minSegs
// segments must remain.
func hostnameOp(minSegs int, uni bool) Op {
	return func(s []byte, at int) int {
		var starts, ends []int
		i := at
		for {
			e := hostSegEnd(s, i, uni)
			if e == i {
				break
			}
			starts = append(starts, i)
			ends = append(ends, e)
			i = e
			if i < len(s) && s[i] == '.' {
				i++
				continue
			}
			break
		}
		for k := len(ends) - 1; k >= 0; k-- {
			if !segHasNonDigit(s, starts[k], ends[k]) {
				continue
			}
			if k+1 < minSegs {
				break
			}
			return ends[k]
		}
		return -1
	}
}

// s4Op recognizes one decimal octet of a dotted quad: 0-255, no leading
// zeros. The whole digit run at the position must form the octet.
func s4Op(s []byte, at int) int {
	i := at
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	n := i - at
	if n == 0 || n > 3 {
		return -1
	}
	if n > 1 && s[at] == '0' {
		return -1
	}
	v := 0
	for j := at; j < i; j++ {
		v = v*10 + int(s[j]-'0')
	}
	if v > 255 {
		return -1
	}
	return i
}

func ipv4Op(d Deps) Op {
	s4 := d["s4"]
	return func(s []byte, at int) int {
		i := s4(s, at)
		if i < 0 {
			return -1
		}
		for n := 0; n < 3; n++ {
			if i >= len(s) || s[i] != '.' {
				return -1
			}
			j := s4(s, i+1)
			if j < 0 {
				return -1
			}
			i = j
		}
		return i
	}
}

// ipv6Op recognizes an IPv6 address: hextets separated by single colons,
// at most one "::" elision, optionally ending in an embedded IPv4 address
// that stands for the final two groups. The address must not be followed
// by a hex digit or a colon.
func ipv6Op(d Deps) Op {
	ipv4 := d["ipv4"]
	return func(s []byte, at int) int {
		i := at
		groups := 0
		elided := false
		if i+1 < len(s) && s[i] == ':' && s[i+1] == ':' {
			elided = true
			i += 2
		} else if i < len(s) && s[i] == ':' {
			return -1
		}
		for i < len(s) && isHexDigit(s[i]) {
			j := i
			dec := true
			for j < len(s) && isHexDigit(s[j]) {
				if !isDigit(s[j]) {
					dec = false
				}
				j++
			}
			if dec && j < len(s) && s[j] == '.' {
				e := ipv4(s, i)
				if e < 0 {
					return -1
				}
				groups += 2
				i = e
				break
			}
			if j-i > 4 {
				return -1
			}
			groups++
			i = j
			if i+1 < len(s) && s[i] == ':' && s[i+1] == ':' {
				if elided {
					break
				}
				elided = true
				i += 2
				continue
			}
			if i+1 < len(s) && s[i] == ':' && isHexDigit(s[i+1]) {
				i++
				continue
			}
			break
		}
		if elided {
			if groups > 7 {
				return -1
			}
		} else if groups != 8 {
			return -1
		}
		if i < len(s) && (isHexDigit(s[i]) || s[i] == ':') {
			return -1
		}
		return i
	}
}

// n65535Op recognizes a decimal number in 1..65535 without leading zeros.
// The whole digit run at the position must form the number.
func n65535Op(s []byte, at int) int {
	i := at
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	n := i - at
	if n < 1 || n > 5 {
		return -1
	}
	if s[at] == '0' {
		return -1
	}
	v := 0
	for j := at; j < i; j++ {
		v = v*10 + int(s[j]-'0')
	}
	if v > 65535 {
		return -1
	}
	return i
}

// portOp recognizes an optional ":port" suffix. An invalid port number
// yields an empty match, never a failure.
func portOp(d Deps) Op {
	num := d["n-1-65535"]
	return func(s []byte, at int) int {
		if at < len(s) && s[at] == ':' {
			if e := num(s, at+1); e >= 0 {
				return e
			}
		}
		return at
	}
}

func urlHostOp(d Deps) Op {
	hostname, ipv4, ipv6 := d["hostname1"], d["ipv4"], d["ipv6"]
	return func(s []byte, at int) int {
		if e := hostname(s, at); e >= 0 {
			return e
		}
		if e := ipv4(s, at); e >= 0 {
			return e
		}
		if at < len(s) && s[at] == '[' {
			if e := ipv6(s, at+1); e >= 0 && e < len(s) && s[e] == ']' {
				return e + 1
			}
		}
		return -1
	}
}

// emailHostOp recognizes an email host: a hostname of at least two
// segments, or a bracketed IPv4 or IPv6 address.
func emailHostOp(d Deps) Op {
	hostname, ipv4, ipv6 := d["hostname2"], d["ipv4"], d["ipv6"]
	return func(s []byte, at int) int {
		if e := hostname(s, at); e >= 0 {
			return e
		}
		if at < len(s) && s[at] == '[' {
			if e := ipv4(s, at+1); e >= 0 && e < len(s) && s[e] == ']' {
				return e + 1
			}
			if e := ipv6(s, at+1); e >= 0 && e < len(s) && s[e] == ']' {
				return e + 1
			}
		}
		return -1
	}
}

// pathTextOp consumes path text: path characters and balanced
// parenthesized or bracketed groups. An unterminated group is excluded
// whole. It always succeeds, possibly consuming nothing.
func pathTextOp(uni bool) Op {
	var text func(s []byte, at int) int
	text = func(s []byte, at int) int {
		i := at
		for i < len(s) {
			switch s[i] {
			case '(', '[':
				close := byte(')')
				if s[i] == '[' {
					close = ']'
				}
				j := text(s, i+1)
				if j < len(s) && s[j] == close {
					i = j + 1
					continue
				}
				return i
			case ')', ']':
				return i
			}
			if b := s[i]; b < utf8.RuneSelf && strings.IndexByte(pathPunct, b) >= 0 {
				i++
				continue
			}
			ok, sz := alnumAt(s, i, uni)
			if !ok {
				return i
			}
			i += sz
		}
		return i
	}
	return Op(text)
}

// urlpathOp recognizes an optional "/path" suffix with trailing
// punctuation trimmed. A bare "/" is a valid path.
func urlpathOp(d Deps) Op {
	text := d["pathtext"]
	return func(s []byte, at int) int {
		if at >= len(s) || s[at] != '/' {
			return at
		}
		return trimPathEnd(s, at+1, text(s, at+1))
	}
}

// trimPathEnd drops trailing characters a path must not end with, never
// trimming past floor.
func trimPathEnd(s []byte, floor, end int) int {
	for end > floor && strings.IndexByte(pathNonTerm, s[end-1]) >= 0 {
		end--
	}
	return end
}

func urlAsIsOp(d Deps) Op {
	scheme, userpass, host, port, path :=
		d["scheme"], d["userpass"], d["url-host"], d["port"], d["urlpath"]
	return func(s []byte, at int) int {
		i := scheme(s, at)
		if i < 0 {
			return -1
		}
		if !(i+3 <= len(s) && s[i] == ':' && s[i+1] == '/' && s[i+2] == '/') {
			return -1
		}
		i = userpass(s, i+3)
		h := host(s, i)
		if h < 0 {
			return -1
		}
		return path(s, port(s, h))
	}
}

// urlHTTPOp recognizes schemeless www/ftp URLs. The match must not be
// preceded by a hostname character or a dot, and the leading segment
// must be followed by at least one more.
func urlHTTPOp(d Deps, uni bool) Op {
	port, path := d["port"], d["urlpath"]
	return func(s []byte, at int) int {
		if at > 0 && precededByHostChar(s, at, uni) {
			return -1
		}
		if !foldHasPrefix(s, at, "www") && !foldHasPrefix(s, at, "ftp") {
			return -1
		}
		i := hostSegEnd(s, at+3, uni)
		if i >= len(s) || s[i] != '.' {
			return -1
		}
		end := -1
		for i < len(s) && s[i] == '.' {
			e := hostSegEnd(s, i+1, uni)
			if e == i+1 {
				break
			}
			end = e
			i = e
		}
		if end < 0 {
			return -1
		}
		return path(s, port(s, end))
	}
}

func precededByHostChar(s []byte, at int, uni bool) bool {
	b := s[at-1]
	if b < utf8.RuneSelf {
		return b == '.' || b == '-' || isASCIIAlnum(b)
	}
	return uni
}

// urlFileOp recognizes file: URLs: either "file://host/" with an optional
// hostname, or a bare "file:/". The remainder must not begin with another
// slash.
func urlFileOp(d Deps) Op {
	hostname, text := d["hostname1"], d["pathtext"]
	return func(s []byte, at int) int {
		if !foldHasPrefix(s, at, "file:") {
			return -1
		}
		i := at + 5
		if i >= len(s) || s[i] != '/' {
			return -1
		}
		rest := i + 1
		if rest < len(s) && s[rest] == '/' {
			k := rest + 1
			if he := hostname(s, k); he >= 0 {
				k = he
			}
			if k < len(s) && s[k] == '/' {
				rest = k + 1
			}
		}
		if rest < len(s) && s[rest] == '/' {
			return -1
		}
		return trimPathEnd(s, rest, text(s, rest))
	}
}

// urlVoipOp recognizes sip: and sips: URIs with an optional userinfo, a
// host, an optional port and a parameter tail.
func urlVoipOp(d Deps, uni bool) Op {
	userpass, host, port := d["userpass"], d["url-host"], d["port"]
	return func(s []byte, at int) int {
		if !foldHasPrefix(s, at, "sip") {
			return -1
		}
		i := at + 3
		if i < len(s) && (s[i] == 's' || s[i] == 'S') {
			i++
		}
		if i >= len(s) || s[i] != ':' {
			return -1
		}
		i = userpass(s, i+1)
		h := host(s, i)
		if h < 0 {
			return -1
		}
		i = port(s, h)
		j := punctRun(s, i, voipPunct, uni)
		for j > i && strings.IndexByte(pathNonTerm, s[j-1]) >= 0 {
			j--
		}
		return j
	}
}

func emailOp(d Deps) Op {
	user, host := d["user"], d["email-host"]
	return func(s []byte, at int) int {
		i := at
		if foldHasPrefix(s, i, "mailto:") {
			i += 7
		}
		u := user(s, i)
		if u < 0 || u >= len(s) || s[u] != '@' {
			return -1
		}
		return host(s, u+1)
	}
}

func newsManOp(uni bool) Op {
	return func(s []byte, at int) int {
		i := -1
		switch {
		case foldHasPrefix(s, at, "news:"):
			i = at + 5
		case foldHasPrefix(s, at, "man:"):
			i = at + 4
		}
		if i < 0 {
			return -1
		}
		j := punctRun(s, i, newsManPunct, uni)
		if j == i {
			return -1
		}
		return j
	}
}
