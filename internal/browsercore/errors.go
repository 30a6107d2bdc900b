package browsercore

import (
	"errors"
	"fmt"
	"strings"

	"signup-e2e/internal/domain/entity"
)

var (
	ErrLocation    = errors.New("element could not be located")
	ErrInteraction = errors.New("element could not be clicked")
)

type LocationFailure struct {
	Name  string
	Tried []entity.Selector
}

func (e *LocationFailure) Error() string {
	tried := make([]string, len(e.Tried))
	for i, s := range e.Tried {
		tried[i] = s.String()
	}
	return fmt.Sprintf("%s: %q (tried %s)", ErrLocation, e.Name, strings.Join(tried, ", "))
}

func (e *LocationFailure) Is(target error) bool {
	return target == ErrLocation
}

type InteractionFailure struct {
	Name   string
	Causes map[ClickStrategy]error
}

func (e *InteractionFailure) Error() string {
	parts := make([]string, 0, len(clickOrder))
	for _, s := range clickOrder {
		if err, ok := e.Causes[s]; ok {
			parts = append(parts, fmt.Sprintf("%s: %v", s, err))
		}
	}
	return fmt.Sprintf("%s: %q (%s)", ErrInteraction, e.Name, strings.Join(parts, "; "))
}

func (e *InteractionFailure) Is(target error) bool {
	return target == ErrInteraction
}
