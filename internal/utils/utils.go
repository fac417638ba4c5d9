package utils

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// IsPGUniqueViolation reports whether error is PostgreSQL unique constraint violation (code 23505).
func IsPGUniqueViolation(err error) bool {
	var pge *pgconn.PgError
	if errors.As(err, &pge) {
		return pge.Code == "23505"
	}
	return false
}

// IsValidEmail is a cheap shape check: one @, something on both sides, a dot
// in the domain. Real verification is the mail loop's job.
func IsValidEmail(email string) bool {
	email = strings.TrimSpace(email)
	at := strings.Index(email, "@")
	if at <= 0 || at != strings.LastIndex(email, "@") {
		return false
	}
	local, dom := email[:at], email[at+1:]
	if local == "" || dom == "" || strings.ContainsAny(email, " \t") {
		return false
	}
	dot := strings.LastIndex(dom, ".")
	return dot > 0 && dot < len(dom)-1
}

// NormalizePhone strips everything but digits and a leading plus.
// Returns "" when the result has fewer than 10 or more than 15 digits.
func NormalizePhone(phone string) string {
	var b strings.Builder
	digits := 0
	for i, r := range phone {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
			digits++
		case r == '+' && i == 0:
			b.WriteRune(r)
		}
	}
	if digits < 10 || digits > 15 {
		return ""
	}
	return b.String()
}
