package lifespan

import (
	"fmt"
	"time"
)

// Pure expiry/quota helpers. No side effects, no dependencies; everything the
// UI shows about the 48h countdown and the free-tier limit is derived here.

// Remaining returns the time left until expiresAt, or 0 when it has passed.
func Remaining(expiresAt, now time.Time) time.Duration {
	d := expiresAt.Sub(now)
	if d <= 0 {
		return 0
	}
	return d
}

// Format renders a remaining duration for display: days+hours when >= 24h,
// hours+minutes when >= 1h, whole minutes otherwise. Truncates, never rounds
// up (45s -> "0m"). Zero means the window has passed.
func Format(d time.Duration) string {
	if d <= 0 {
		return "Expired"
	}
	if d >= 24*time.Hour {
		days := int(d.Hours()) / 24
		hours := int(d.Hours()) % 24
		return fmt.Sprintf("%dd %dh", days, hours)
	}
	if d >= time.Hour {
		hours := int(d.Hours())
		minutes := int(d.Minutes()) % 60
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", int(d.Minutes()))
}

// ExpiringSoon reports whether the list is still alive but inside the
// warning threshold. Display emphasis only, nothing acts on it.
func ExpiringSoon(expiresAt, now time.Time, threshold time.Duration) bool {
	d := Remaining(expiresAt, now)
	return d > 0 && d < threshold
}

// QuotaExceeded reports whether a free-tier account is at its list limit.
// Pro accounts are never limited.
func QuotaExceeded(count int, isPro bool, freeLimit int) bool {
	return !isPro && count >= freeLimit
}
