package configtree

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// MarshalJSON writes the tree with object keys in order.
func (n *Node) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := n.writeJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (n *Node) writeJSON(buf *bytes.Buffer) error {
	switch n.Kind() {
	case Null:
		buf.WriteString("null")
	case Bool:
		if n.b {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case Number:
		if n.num == "" {
			buf.WriteString("0")
		} else {
			buf.WriteString(n.num.String())
		}
	case String:
		return writeJSONString(buf, n.str)
	case Array:
		buf.WriteByte('[')
		for i, it := range n.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := it.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case Object:
		buf.WriteByte('{')
		first := true
		for el := n.obj.Front(); el != nil; el = el.Next() {
			if !first {
				buf.WriteByte(',')
			}
			first = false
			if err := writeJSONString(buf, el.Key); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := el.Value.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	}
	return nil
}

func writeJSONString(buf *bytes.Buffer, s string) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	buf.Write(data)
	return nil
}

// UnmarshalJSON decodes a document preserving object key order.
func (n *Node) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	parsed, err := decodeJSON(dec)
	if err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return fmt.Errorf("configtree: trailing data after document")
	}
	*n = *parsed
	return nil
}

// ParseJSON decodes data into a new tree.
func ParseJSON(data []byte) (*Node, error) {
	var n Node
	if err := n.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return &n, nil
}

func decodeJSON(dec *json.Decoder) (*Node, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch v := tok.(type) {
	case nil:
		return NewNull(), nil
	case bool:
		return NewBool(v), nil
	case json.Number:
		return NewNumber(v), nil
	case string:
		return NewString(v), nil
	case json.Delim:
		switch v {
		case '[':
			arr := NewArray()
			for dec.More() {
				item, err := decodeJSON(dec)
				if err != nil {
					return nil, err
				}
				arr.items = append(arr.items, item)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return arr, nil
		case '{':
			obj := NewObject()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("configtree: object key is %T", keyTok)
				}
				val, err := decodeJSON(dec)
				if err != nil {
					return nil, err
				}
				obj.obj.Set(key, val)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return obj, nil
		}
	}
	return nil, fmt.Errorf("configtree: unexpected token %v", tok)
}
