package domain

import "strings"

// PasswordKey is the secret store key holding a portal user's password.
func PasswordKey(username string) string {
	return "aula://" + strings.TrimSpace(username) + "/password"
}
