package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Context - категория ситуации, выбранная пользователем
type Context string

const (
	ContextCareer   Context = "Career"
	ContextStudy    Context = "Study"
	ContextPersonal Context = "Personal"
	ContextProject  Context = "Project"

	DefaultContext = ContextPersonal
)

var ErrUnknownContext = errors.New("unknown context")

var contexts = [...]Context{ContextCareer, ContextStudy, ContextPersonal, ContextProject}

// Contexts возвращает допустимые категории в порядке отображения
func Contexts() []Context {
	out := make([]Context, len(contexts))
	copy(out, contexts[:])
	return out
}

// ParseContext разбирает название категории без учета регистра
func ParseContext(s string) (Context, error) {
	for _, c := range contexts {
		if strings.EqualFold(strings.TrimSpace(s), string(c)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownContext, s)
}

func (c Context) Valid() bool {
	for _, known := range contexts {
		if c == known {
			return true
		}
	}
	return false
}

func (c Context) Lower() string {
	return strings.ToLower(string(c))
}

func (c Context) String() string {
	return string(c)
}

// Analysis - отчет из трех частей, который получает пользователь
type Analysis struct {
	Reality   string   `json:"reality"`
	Variables []string `json:"variables"`
	NextStep  string   `json:"nextStep"`
}

// AnalyzeRequest - тело запроса к удаленному сервису анализа
type AnalyzeRequest struct {
	Situation string  `json:"situation"`
	Context   Context `json:"context"`
}

// State - снимок состояния виджета
type State struct {
	Situation string
	Context   Context
	Analysis  *Analysis
	Loading   bool
	Error     string
	Copied    bool
}

// Report - отчет, сохраненный в журнале сервера
type Report struct {
	ID        string    `json:"id"`
	Situation string    `json:"situation"`
	Context   Context   `json:"context"`
	Analysis  Analysis  `json:"analysis"`
	CreatedAt time.Time `json:"createdAt"`
}
