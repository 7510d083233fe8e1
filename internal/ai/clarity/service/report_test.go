package service

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Jamolkhon5/clarifi/internal/ai/clarity/models"
)

func TestFormatReport(t *testing.T) {
	got := FormatReport(models.Analysis{
		Reality:   "R",
		Variables: []string{"A", "B"},
		NextStep:  "N",
	})

	want := "ClariFi Analysis\n" +
		"\n" +
		"Reality Summary:\n" +
		"R\n" +
		"\n" +
		"Key Variables:\n" +
		"1. A\n" +
		"2. B\n" +
		"\n" +
		"Suggested Next Step:\n" +
		"N"

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("FormatReport() mismatch (-want +got):\n%s", diff)
	}
}

func TestFormatReport_TrimsSurroundingWhitespace(t *testing.T) {
	got := FormatReport(models.Analysis{
		Reality:   "R",
		Variables: []string{"A"},
		NextStep:  "N\n\n  ",
	})

	want := "ClariFi Analysis\n\nReality Summary:\nR\n\nKey Variables:\n1. A\n\nSuggested Next Step:\nN"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("FormatReport() mismatch (-want +got):\n%s", diff)
	}
}

func TestFormatReport_LocalTemplate(t *testing.T) {
	got := FormatReport(Generate("a", models.ContextProject))
	for i, v := range defaultVariables {
		if want := fmt.Sprintf("%d. %s", i+1, v); !strings.Contains(got, want) {
			t.Errorf("report missing %q", want)
		}
	}
}
