package problemid

import "strings"

// Normalize canonicalizes a problem name into the key used for lookups.
func Normalize(name string) string {
	normalized := strings.TrimSpace(strings.ToLower(name))
	normalized = strings.ReplaceAll(normalized, "_", "-")
	normalized = strings.ReplaceAll(normalized, " ", "-")
	normalized = collapseDashes(normalized)
	normalized = strings.Trim(normalized, "-.")
	if normalized == "" {
		return ""
	}
	if trimmed := trimProblemSuffix(normalized); trimmed != "" {
		return trimmed
	}
	return normalized
}

func collapseDashes(value string) string {
	for strings.Contains(value, "--") {
		value = strings.ReplaceAll(value, "--", "-")
	}
	return value
}

func trimProblemSuffix(value string) string {
	switch {
	case strings.HasSuffix(value, "-problem"):
		return strings.Trim(strings.TrimSuffix(value, "-problem"), "-.")
	case strings.HasSuffix(value, "problem") && !strings.Contains(value, "-"):
		return strings.Trim(strings.TrimSuffix(value, "problem"), "-.")
	default:
		return value
	}
}
