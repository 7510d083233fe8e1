package service

import (
	"context"

	"github.com/Jamolkhon5/clarifi/internal/ai/clarity/models"
)

// Provider получает анализ ситуации. Локальная реализация подставляет
// текст в шаблон, удаленная обращается к HTTP сервису.
type Provider interface {
	GetAnalysis(ctx context.Context, situation string, c models.Context) (*models.Analysis, error)
}

// ProviderFunc позволяет использовать функцию как Provider
type ProviderFunc func(ctx context.Context, situation string, c models.Context) (*models.Analysis, error)

func (f ProviderFunc) GetAnalysis(ctx context.Context, situation string, c models.Context) (*models.Analysis, error) {
	return f(ctx, situation, c)
}
