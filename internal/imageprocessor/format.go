package imageprocessor

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// IndentJSON pretty-prints body with two-space indentation the way a browser's
// JSON.stringify(JSON.parse(body), null, 2) does: key order is kept, a repeated
// key keeps its first position with its last value, numbers are printed in
// their shortest form (1.50 -> 1.5, 1e2 -> 100) and string escapes are
// resolved (\u00e9 -> é).
func IndentJSON(body []byte) (string, error) {
	if !json.Valid(body) {
		return "", ErrMalformedBody
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	root, err := decodeNode(dec)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return "", ErrMalformedBody
	}

	var out strings.Builder
	root.write(&out, 0)
	return out.String(), nil
}

type nodeKind int

const (
	nodeScalar nodeKind = iota
	nodeObject
	nodeArray
)

// node is a decoded JSON value with object keys kept in document order.
type node struct {
	kind   nodeKind
	scalar string
	keys   []string
	fields map[string]*node
	items  []*node
}

func decodeNode(dec *json.Decoder) (*node, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch v := tok.(type) {
	case json.Delim:
		if v == '[' {
			n := &node{kind: nodeArray}
			for dec.More() {
				item, err := decodeNode(dec)
				if err != nil {
					return nil, err
				}
				n.items = append(n.items, item)
			}
			_, err := dec.Token()
			return n, err
		}

		n := &node{kind: nodeObject, fields: make(map[string]*node)}
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, _ := keyTok.(string)
			value, err := decodeNode(dec)
			if err != nil {
				return nil, err
			}
			if _, seen := n.fields[key]; !seen {
				n.keys = append(n.keys, key)
			}
			n.fields[key] = value
		}
		_, err := dec.Token()
		return n, err
	case string:
		return &node{scalar: quoteString(v)}, nil
	case json.Number:
		return &node{scalar: formatNumber(v.String())}, nil
	case bool:
		return &node{scalar: strconv.FormatBool(v)}, nil
	default:
		return &node{scalar: "null"}, nil
	}
}

func (n *node) write(out *strings.Builder, depth int) {
	switch n.kind {
	case nodeObject:
		if len(n.keys) == 0 {
			out.WriteString("{}")
			return
		}
		out.WriteString("{")
		for i, key := range n.keys {
			if i > 0 {
				out.WriteString(",")
			}
			newline(out, depth+1)
			out.WriteString(quoteString(key))
			out.WriteString(": ")
			n.fields[key].write(out, depth+1)
		}
		newline(out, depth)
		out.WriteString("}")
	case nodeArray:
		if len(n.items) == 0 {
			out.WriteString("[]")
			return
		}
		out.WriteString("[")
		for i, item := range n.items {
			if i > 0 {
				out.WriteString(",")
			}
			newline(out, depth+1)
			item.write(out, depth+1)
		}
		newline(out, depth)
		out.WriteString("]")
	default:
		out.WriteString(n.scalar)
	}
}

func newline(out *strings.Builder, depth int) {
	out.WriteString("\n")
	out.WriteString(strings.Repeat("  ", depth))
}

// quoteString escapes only what JSON requires: quotes, backslashes and
// control characters. Non-ASCII text is written as is.
func quoteString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if r < 0x20 {
				fmt.Fprintf(&b, `\u%04x`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}

// formatNumber prints a JSON number as a double in its shortest round-trip
// form. Plain notation is used while the decimal exponent lies in (-6, 21];
// values that overflow a double print as null.
func formatNumber(raw string) string {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return raw
	}
	if math.IsInf(f, 0) {
		return "null"
	}
	if f == 0 {
		return "0"
	}

	sign := ""
	if f < 0 {
		sign = "-"
		f = -f
	}
	mantissa, expPart, _ := strings.Cut(strconv.FormatFloat(f, 'e', -1, 64), "e")
	exp, _ := strconv.Atoi(expPart)
	digits := strings.Replace(mantissa, ".", "", 1)
	k, n := len(digits), exp+1

	switch {
	case k <= n && n <= 21:
		return sign + digits + strings.Repeat("0", n-k)
	case 0 < n && n <= 21:
		return sign + digits[:n] + "." + digits[n:]
	case -6 < n && n <= 0:
		return sign + "0." + strings.Repeat("0", -n) + digits
	}

	e, expSign := n-1, "+"
	if e < 0 {
		e, expSign = -e, "-"
	}
	m := digits[:1]
	if k > 1 {
		m += "." + digits[1:]
	}
	return sign + m + "e" + expSign + strconv.Itoa(e)
}
