package value

import (
	"bytes"
	"encoding/json"
	"strings"
)

// String renders n as compact JSON text: booleans and numbers verbatim,
// strings double-quoted, lists as [e1,e2] and objects as {"k":v} with the
// fields in data order. This rendering is what diagnostics show.
func (n Node) String() string {
	var sb strings.Builder
	n.appendTo(&sb)
	return sb.String()
}

func (n Node) appendTo(sb *strings.Builder) {
	switch n.kind {
	case KindNull:
		sb.WriteString("null")
	case KindBool:
		if n.b {
			sb.WriteString("true")
		} else {
			sb.WriteString("false")
		}
	case KindNumber:
		sb.WriteString(n.text)
	case KindString:
		sb.WriteString(Quote(n.text))
	case KindList:
		sb.WriteByte('[')
		for i, item := range n.items {
			if i > 0 {
				sb.WriteByte(',')
			}
			item.appendTo(sb)
		}
		sb.WriteByte(']')
	case KindObject:
		sb.WriteByte('{')
		first := true
		for p := n.obj.Oldest(); p != nil; p = p.Next() {
			if !first {
				sb.WriteByte(',')
			}
			first = false
			sb.WriteString(Quote(p.Key))
			sb.WriteByte(':')
			p.Value.appendTo(sb)
		}
		sb.WriteByte('}')
	}
}

// MarshalJSON implements json.Marshaler using the canonical rendering.
func (n Node) MarshalJSON() ([]byte, error) {
	return []byte(n.String()), nil
}

// Quote returns s as a JSON string literal. Unlike encoding/json it leaves
// <, > and & unescaped so rendered values read the way the server sent them.
func Quote(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// Encoding a string cannot fail.
	_ = enc.Encode(s)
	return strings.TrimSuffix(buf.String(), "\n")
}
