package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Jamolkhon5/clarifi/internal/ai/clarity/models"
)

var ErrEmptySituation = errors.New("situation is empty")

// ValidateSituation проверяет, что описание ситуации не пустое.
// Других ограничений (длина, символы) нет.
func ValidateSituation(situation string) error {
	if strings.TrimSpace(situation) == "" {
		return ErrEmptySituation
	}
	return nil
}

func ValidateContext(c models.Context) error {
	if !c.Valid() {
		return fmt.Errorf("%w: %q", models.ErrUnknownContext, string(c))
	}
	return nil
}

// ValidateRequest проверяет запрос на анализ целиком
func ValidateRequest(req models.AnalyzeRequest) error {
	if err := ValidateSituation(req.Situation); err != nil {
		return err
	}
	return ValidateContext(req.Context)
}
