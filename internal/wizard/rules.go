package wizard

import (
	"fmt"
	"strings"
)

const (
	msgRequired     = "Ce champ est obligatoire"
	msgRequiredList = "Sélectionnez ou saisissez au moins un élément"
)

func Required[T any](field string, get func(*T) string) Rule[T] {
	return Rule[T]{Field: field, Check: func(d *T) string {
		if strings.TrimSpace(get(d)) == "" {
			return msgRequired
		}
		return ""
	}}
}

// RequiredList accepts a list holding at least one non-blank entry.
func RequiredList[T any](field string, get func(*T) []string) Rule[T] {
	return Rule[T]{Field: field, Check: func(d *T) string {
		for _, s := range get(d) {
			if strings.TrimSpace(s) != "" {
				return ""
			}
		}
		return msgRequiredList
	}}
}

func IntRange[T any](field string, get func(*T) int, lo, hi int) Rule[T] {
	return Rule[T]{Field: field, Check: func(d *T) string {
		if v := get(d); v < lo || v > hi {
			return fmt.Sprintf("Doit être compris entre %d et %d", lo, hi)
		}
		return ""
	}}
}
