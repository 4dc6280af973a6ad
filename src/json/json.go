package json

import (
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	Marshal    = json.Marshal
	Unmarshal  = json.Unmarshal
	NewDecoder = json.NewDecoder
	NewEncoder = json.NewEncoder
	Valid      = json.Valid
)

type RawMessage = jsoniter.RawMessage

type Decoder = jsoniter.Decoder

type Encoder = jsoniter.Encoder

type Iterator = jsoniter.Iterator

// BorrowIterator returns a pooled streaming iterator over data.
// Callers must hand it back with ReturnIterator.
func BorrowIterator(data []byte) *Iterator {
	return json.BorrowIterator(data)
}

// ReturnIterator releases an iterator obtained from BorrowIterator.
func ReturnIterator(iter *Iterator) {
	json.ReturnIterator(iter)
}
