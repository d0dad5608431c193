package dskill

import (
	"github.com/thanhnguyen2187/d2-savior/d2s/derr"
	"github.com/thanhnguyen2187/d2-savior/d2s/lbits"
)

// Encode writes the block in the order of skills. Missing trailing skills are written as zero
// points; ids and names are not stored.
func Encode(writer *lbits.Writer, skills []Skill) error {
	if len(skills) > NrOfSkills {
		return derr.ErrStructuralMismatch{
			Field:    "skills",
			Offset:   writer.Position(),
			Expected: NrOfSkills,
			Actual:   len(skills),
		}
	}
	points := make([]byte, NrOfSkills)
	for i, skill := range skills {
		points[i] = skill.Points
	}
	writer.
		WriteString(Header, len(Header)).
		WriteBytes(points)
	return nil
}
