package schemes

import "fmt"

// Grading instructions attached to schemes.
const (
	StrictInstruction     = "Award marks only where the student's work satisfies the listed mark scheme criteria. Do not award marks that the scheme does not list."
	PermissiveInstruction = "No official mark scheme was found. Use the generic codes: M for correct method, A for accurate answers following correct method, B for independent correct statements. Award credit for any mathematically valid approach and use M0, A0 or B0 where work is present but earns nothing."
)

// GenericScheme builds a sequential rubric for a question with no official
// scheme. Each of M, A and B gets n slots plus a zero-value code, where n is
// the marks total found for the question or the default ceiling.
func GenericScheme(base, pageText, questionText string, defaultMarks, maxMarks int) NormalizedScheme {
	n, found := ParseMarksTotal(pageText, questionText, base, maxMarks)
	if !found {
		n = defaultMarks
	}

	marks := make([]Mark, 0, 3*n+3)
	for _, kind := range []struct{ prefix, criterion string }{
		{"M", "method mark"},
		{"A", "accuracy mark"},
		{"B", "independent mark"},
	} {
		for i := 1; i <= n; i++ {
			marks = append(marks, Mark{
				Code:      fmt.Sprintf("%s%d", kind.prefix, i),
				Criterion: fmt.Sprintf("%s worth %d", kind.criterion, i),
			})
		}
		marks = append(marks, Mark{
			Code:      kind.prefix + "0",
			Criterion: kind.criterion + " not earned",
		})
	}

	return NormalizedScheme{
		BaseQuestion:     base,
		Marks:            marks,
		SubQuestionMarks: make(map[string][]Mark),
		TotalMarks:       n,
		IsGeneric:        true,
		Instruction:      PermissiveInstruction,
	}
}
