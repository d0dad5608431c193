package lbits

import (
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ExecuteInstructions runs the read functions in order, collects their values under the
// instruction keys, and decodes the collection into a T through JSON. Instructions with an empty
// key only move the cursor or check a value. Fields of T that have no instruction keep their zero
// value.
func ExecuteInstructions[T any](instructions []Instruction) (*T, error) {
	tMap := map[string]any{}
	for _, instruction := range instructions {
		value, err := instruction.ReadFunction()
		if err != nil {
			err := errors.Wrapf(err, `ExecuteInstructions error reading key "%v"`, instruction.Key)
			return nil, err
		}
		if instruction.Key == "" {
			continue
		}
		tMap[instruction.Key] = value
	}
	tBytes, err := json.Marshal(tMap)
	if err != nil {
		err := errors.Wrapf(err, `ExecuteInstructions error marshalling map "%v" to JSON`, tMap)
		return nil, err
	}

	var t T
	if err := json.Unmarshal(tBytes, &t); err != nil {
		err := errors.Wrapf(
			err, `ExecuteInstructions error unmarshalling bytes "%s" to type "%T"`,
			string(tBytes), t,
		)
		return nil, err
	}

	return &t, nil
}

func CreateUIntReadFunction(reader *Reader, bits int) ReadFunction {
	return func() (any, error) {
		return reader.ReadBits(bits)
	}
}

func CreateNBytesReadFunction(reader *Reader, n int) ReadFunction {
	return func() (any, error) {
		return reader.ReadBytes(n)
	}
}

func CreateStringReadFunction(reader *Reader, n int) ReadFunction {
	return func() (any, error) {
		return reader.ReadString(n)
	}
}

// CreateSeekByteFunction moves the cursor to an absolute byte offset. It is meant for instructions
// with an empty key.
func CreateSeekByteFunction(reader *Reader, n int) ReadFunction {
	return func() (any, error) {
		return nil, reader.SeekByte(n)
	}
}
