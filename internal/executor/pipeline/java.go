package pipeline

import "regexp"

// NoPublicClassMessage is reported when Java source has no public class to name the file after.
const NoPublicClassMessage = "Could not find a public class in the Java code."

// publicClassPattern matches `public [modifiers] class Name`. Class modifiers may sit
// between "public" and "class"; the name ends at the first non-identifier rune
// (whitespace, '{', '<', ...).
var publicClassPattern = regexp.MustCompile(
	`\bpublic\s+(?:(?:final|abstract|static|strictfp|sealed|non-sealed)\s+)*class\s+([\p{L}_$][\p{L}\p{N}_$]*)`,
)

// ExtractPublicClass returns the name of the first public class declared in source.
// Only the first match counts; comments and string literals are not skipped.
func ExtractPublicClass(source string) (string, bool) {
	m := publicClassPattern.FindStringSubmatch(source)
	if m == nil {
		return "", false
	}
	return m[1], true
}
