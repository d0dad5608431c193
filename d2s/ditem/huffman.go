package ditem

import (
	"strings"

	"github.com/thanhnguyen2187/d2-savior/d2s/derr"
	"github.com/thanhnguyen2187/d2-savior/d2s/lbits"
)

type (
	huffmanCode struct {
		Value  uint64
		Length int
	}
	huffmanNode struct {
		children [2]*huffmanNode
		symbol   byte
		leaf     bool
	}
)

const (
	TypeCodeLen = 4
)

// HuffmanCodes maps each character of a type code to its code, written least significant bit
// first.
var HuffmanCodes = map[byte]huffmanCode{
	'0': {223, 8}, '1': {31, 7}, '2': {12, 6}, '3': {91, 7}, '4': {95, 8},
	'5': {104, 8}, '6': {123, 7}, '7': {30, 5}, '8': {8, 6}, '9': {14, 5},
	' ': {1, 2},
	'a': {15, 5}, 'b': {10, 4}, 'c': {2, 5}, 'd': {35, 6}, 'e': {3, 6},
	'f': {50, 6}, 'g': {11, 5}, 'h': {24, 5}, 'i': {63, 7}, 'j': {232, 9},
	'k': {18, 6}, 'l': {23, 5}, 'm': {22, 5}, 'n': {44, 6}, 'o': {127, 7},
	'p': {19, 5}, 'q': {155, 8}, 'r': {7, 5}, 's': {4, 4}, 't': {6, 5},
	'u': {16, 5}, 'v': {59, 7}, 'w': {0, 5}, 'x': {28, 5}, 'y': {40, 7},
	'z': {27, 8},
}

var huffmanRoot = buildHuffmanTree(HuffmanCodes)

func buildHuffmanTree(codes map[byte]huffmanCode) *huffmanNode {
	root := &huffmanNode{}
	for symbol, code := range codes {
		node := root
		for i := 0; i < code.Length; i++ {
			bit := (code.Value >> i) & 1
			if node.children[bit] == nil {
				node.children[bit] = &huffmanNode{}
			}
			node = node.children[bit]
		}
		node.symbol = symbol
		node.leaf = true
	}
	return root
}

// PadTypeCode pads a type code with spaces to the stored width.
func PadTypeCode(code string) string {
	if len(code) >= TypeCodeLen {
		return code
	}
	return code + strings.Repeat(" ", TypeCodeLen-len(code))
}

func DecodeHuffmanChar(reader *lbits.Reader) (byte, error) {
	offset := reader.Position()
	node := huffmanRoot
	for !node.leaf {
		bit, err := reader.ReadBit()
		if err != nil {
			return 0, err
		}
		node = node.children[bit]
		if node == nil {
			return 0, derr.ErrStructuralMismatch{
				Field:    "item.type",
				Offset:   offset,
				Expected: "a Huffman coded character",
				Actual:   "an unused code",
			}
		}
	}
	return node.symbol, nil
}

// DecodeHuffmanType reads a full padded type code.
func DecodeHuffmanType(reader *lbits.Reader) (string, error) {
	bs := make([]byte, TypeCodeLen)
	for i := range bs {
		c, err := DecodeHuffmanChar(reader)
		if err != nil {
			return "", err
		}
		bs[i] = c
	}
	return string(bs), nil
}

func EncodeHuffmanType(writer *lbits.Writer, code string) error {
	padded := PadTypeCode(code)
	for i := 0; i < len(padded); i++ {
		if _, ok := HuffmanCodes[padded[i]]; !ok {
			return derr.ErrStructuralMismatch{
				Field:    "item.type",
				Offset:   writer.Position(),
				Expected: "characters [a-z0-9 ]",
				Actual:   code,
			}
		}
	}
	for i := 0; i < len(padded); i++ {
		huffmanCode := HuffmanCodes[padded[i]]
		writer.WriteBits(huffmanCode.Value, huffmanCode.Length)
	}
	return nil
}
