package lbits

import (
	"github.com/thanhnguyen2187/d2-savior/d2s/derr"
)

// HasTag reports whether the next bytes equal tag, without moving the cursor.
func (r *Reader) HasTag(tag string) bool {
	bs, err := r.PeekBytes(len(tag))
	return err == nil && string(bs) == tag
}

// ExpectTag consumes tag or fails with a structural mismatch naming field.
func (r *Reader) ExpectTag(tag string, field string) error {
	offset := r.Position()
	bs, err := r.ReadBytes(len(tag))
	if err != nil {
		return derr.ErrStructuralMismatch{
			Field:    field,
			Offset:   offset,
			Expected: tag,
			Actual:   "end of buffer",
		}
	}
	if string(bs) != tag {
		r.pos = offset
		return derr.ErrStructuralMismatch{
			Field:    field,
			Offset:   offset,
			Expected: tag,
			Actual:   string(bs),
		}
	}
	return nil
}
