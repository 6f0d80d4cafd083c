package service

import "unicode"

const minPasswordLen = 8

// CheckPassword applies the password policy and requires confirm to match.
func CheckPassword(password, confirm string) error {
	v := policyViolations(password)
	if confirm != password {
		v = append(v, "Les mots de passe ne correspondent pas")
	}
	if len(v) > 0 {
		return &PolicyError{Violations: v}
	}
	return nil
}

// checkPolicy applies the policy alone, for accounts created from the CLI.
func checkPolicy(password string) error {
	if v := policyViolations(password); len(v) > 0 {
		return &PolicyError{Violations: v}
	}
	return nil
}

func policyViolations(password string) []string {
	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}

	var v []string
	if len([]rune(password)) < minPasswordLen {
		v = append(v, "Le mot de passe doit contenir au moins 8 caractères")
	}
	if !upper {
		v = append(v, "Le mot de passe doit contenir au moins une majuscule")
	}
	if !lower {
		v = append(v, "Le mot de passe doit contenir au moins une minuscule")
	}
	if !digit {
		v = append(v, "Le mot de passe doit contenir au moins un chiffre")
	}
	return v
}
