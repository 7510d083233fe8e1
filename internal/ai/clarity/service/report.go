package service

import (
	"fmt"
	"strings"

	"github.com/Jamolkhon5/clarifi/internal/ai/clarity/models"
)

const (
	ReportHeader   = "ClariFi Analysis"
	LabelReality   = "Reality Summary"
	LabelVariables = "Key Variables"
	LabelNextStep  = "Suggested Next Step"
)

// FormatReport собирает текст отчета для копирования в буфер обмена
func FormatReport(a models.Analysis) string {
	var b strings.Builder

	b.WriteString(ReportHeader)
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "%s:\n%s\n\n", LabelReality, a.Reality)

	fmt.Fprintf(&b, "%s:\n", LabelVariables)
	for i, v := range a.Variables {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d. %s", i+1, v)
	}
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "%s:\n%s", LabelNextStep, a.NextStep)

	return strings.TrimSpace(b.String())
}
