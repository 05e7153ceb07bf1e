package api

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// fieldErrors accumulates validation messages keyed by field name; it
// serializes straight into the details object of the error envelope.
type fieldErrors map[string][]string

func (fe fieldErrors) add(field, message string) {
	fe[field] = append(fe[field], message)
}

func (fe fieldErrors) empty() bool {
	return len(fe) == 0
}

var (
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	phonePattern = regexp.MustCompile(`^\+?[0-9 ()-]{7,20}$`)
	cardPattern  = regexp.MustCompile(`^[0-9]{13,19}$`)
	cvcPattern   = regexp.MustCompile(`^[0-9]{3,4}$`)
)

func checkRequired(fe fieldErrors, field, value string) bool {
	if strings.TrimSpace(value) == "" {
		fe.add(field, field+" is required")
		return false
	}
	return true
}

func checkMinLen(fe fieldErrors, field, value string, min int) {
	if utf8.RuneCountInString(strings.TrimSpace(value)) < min {
		fe.add(field, fmt.Sprintf("%s must be at least %d characters", field, min))
	}
}

func checkMaxLen(fe fieldErrors, field, value string, max int) {
	if utf8.RuneCountInString(value) > max {
		fe.add(field, fmt.Sprintf("%s must be at most %d characters", field, max))
	}
}

func checkEmail(fe fieldErrors, field, value string) {
	if !emailPattern.MatchString(value) {
		fe.add(field, field+" must be a valid email address")
	}
}

func checkPhone(fe fieldErrors, field, value string) {
	if value != "" && !phonePattern.MatchString(value) {
		fe.add(field, field+" must be a valid phone number")
	}
}

func checkCardNumber(fe fieldErrors, field, value string) {
	digits := strings.ReplaceAll(strings.ReplaceAll(value, " ", ""), "-", "")
	if !cardPattern.MatchString(digits) {
		fe.add(field, field+" must be a valid card number")
	}
}

func checkCVC(fe fieldErrors, field, value string) {
	if !cvcPattern.MatchString(value) {
		fe.add(field, field+" must be a 3 or 4 digit code")
	}
}

func checkOneOf(fe fieldErrors, field, value string, allowed ...string) {
	for _, a := range allowed {
		if value == a {
			return
		}
	}
	fe.add(field, fmt.Sprintf("%s must be one of: %s", field, strings.Join(allowed, ", ")))
}
