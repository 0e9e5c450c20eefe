package formats

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/JonMunkholm/fileformatter/internal/core"
)

const msgJSONShape = "JSON file must contain an array of objects"

// parseJSON reads an array of objects. Headers are the keys of the first
// object in document order; every element is read by those keys.
func parseJSON(src core.Source) ([]string, []core.Row, error) {
	text, err := core.DecodeText(src.Data)
	if err != nil {
		return nil, nil, core.MalformedSource("", err)
	}
	if !gjson.Valid(text) {
		return nil, nil, core.MalformedSource("", errors.New("invalid JSON syntax"))
	}

	root := gjson.Parse(text)
	if !root.IsArray() {
		return nil, nil, core.MalformedSource(msgJSONShape, nil)
	}
	items := root.Array()
	if len(items) == 0 || !items[0].IsObject() {
		return nil, nil, core.MalformedSource(msgJSONShape, nil)
	}

	var headers []string
	seen := make(map[string]bool)
	items[0].ForEach(func(key, _ gjson.Result) bool {
		k := key.String()
		if !seen[k] {
			seen[k] = true
			headers = append(headers, k)
		}
		return true
	})

	rows := make([]core.Row, 0, len(items))
	for i, item := range items {
		if item.Type == gjson.Null {
			return nil, nil, core.MalformedSource(msgJSONShape, fmt.Errorf("null element at index %d", i))
		}
		rows = append(rows, jsonRow(item, headers))
	}
	return headers, rows, nil
}

// jsonRow reads headers off item. Non-object elements have no keys, so every
// cell is Empty. A repeated key takes its last value.
func jsonRow(item gjson.Result, headers []string) core.Row {
	row := make(core.Row, len(headers))
	if !item.IsObject() {
		return row
	}

	values := make(map[string]gjson.Result, len(headers))
	item.ForEach(func(key, value gjson.Result) bool {
		values[key.String()] = value
		return true
	})

	for i, h := range headers {
		if v, ok := values[h]; ok {
			row[i] = jsonCell(v)
		}
	}
	return row
}

func jsonCell(v gjson.Result) core.Cell {
	switch v.Type {
	case gjson.Null:
		return core.Null()
	case gjson.False:
		return core.Bool(false)
	case gjson.True:
		return core.Bool(true)
	case gjson.Number:
		return core.Num(v.Float())
	case gjson.String:
		return core.Str(v.String())
	default:
		// nested objects and arrays keep their JSON text
		return core.Str(v.Raw)
	}
}
