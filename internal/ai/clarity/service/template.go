package service

import (
	"context"
	"fmt"

	"github.com/Jamolkhon5/clarifi/internal/ai/clarity/models"
)

const (
	situationPreviewLen = 50

	realityTemplate = "You are facing a %s-related decision regarding %s. " +
		"This situation requires a structured approach to evaluate your options objectively and move forward with confidence."

	defaultNextStep = "Write down the specific outcome you want to achieve in the next 7 days, " +
		"then identify the single smallest action you can take today to move toward that outcome. " +
		"Set a 2-hour block in your calendar this week to execute it."
)

var defaultVariables = [...]string{
	"Time constraints and available resources",
	"Short-term vs. long-term implications",
	"Risk tolerance and potential consequences",
	"Alignment with your core values and goals",
	"External dependencies and stakeholder impact",
}

// Generate строит анализ по фиксированному шаблону. Ситуация должна быть
// проверена вызывающей стороной, сама функция ошибок не возвращает.
func Generate(situation string, c models.Context) models.Analysis {
	variables := make([]string, len(defaultVariables))
	copy(variables, defaultVariables[:])

	return models.Analysis{
		Reality:   fmt.Sprintf(realityTemplate, c.Lower(), preview(situation)),
		Variables: variables,
		NextStep:  defaultNextStep,
	}
}

// preview обрезает ситуацию до 50 символов и добавляет многоточие
func preview(situation string) string {
	runes := []rune(situation)
	if len(runes) <= situationPreviewLen {
		return situation
	}
	return string(runes[:situationPreviewLen]) + "..."
}

// LocalProvider считает анализ в процессе, без сети
type LocalProvider struct{}

func NewLocalProvider() *LocalProvider {
	return &LocalProvider{}
}

func (p *LocalProvider) GetAnalysis(_ context.Context, situation string, c models.Context) (*models.Analysis, error) {
	analysis := Generate(situation, c)
	return &analysis, nil
}
