package dstash

import (
	"github.com/samber/lo"
	"github.com/thanhnguyen2187/d2-savior/d2s/derr"
	"github.com/thanhnguyen2187/d2-savior/d2s/lbits"
)

// Sniff tells the container format from the first bytes of bs.
func Sniff(bs []byte) (Format, error) {
	reader := lbits.NewReader(bs)
	if magic, err := reader.PeekBits(32); err == nil && magic == SectorMagic {
		return FormatSectored, nil
	}
	switch {
	case reader.HasTag(SharedTag[:3]):
		return FormatShared, nil
	case reader.HasTag(PrivateTag[:3]):
		return FormatPrivate, nil
	case reader.HasTag(FlatTag):
		return FormatFlat, nil
	}
	prefix, _ := reader.PeekBytes(lo.Min([]int{len(bs), PagedTagLen}))
	return "", derr.ErrStructuralMismatch{
		Field:    "stash.header",
		Offset:   0,
		Expected: "a stash signature",
		Actual:   prefix,
	}
}
