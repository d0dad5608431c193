package ds

import (
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func DumpIndentedJSON[T any](t T) ([]byte, error) {
	return json.MarshalIndent(t, "", "  ")
}
