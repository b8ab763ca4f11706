package shell

import (
	"regexp"
)

// secretRef matches ${{ secrets.NAME }} references in env values.
var secretRef = regexp.MustCompile(`\$\{\{\s*secrets\.([A-Za-z_][A-Za-z0-9_]*)\s*\}\}`)

// ExpandSecrets replaces secret references with values from the secrets
// map. Unresolved references expand to the empty string so missing
// secrets never leak their reference into a command environment.
func ExpandSecrets(s string, secrets map[string]string) string {
	return secretRef.ReplaceAllStringFunc(s, func(m string) string {
		name := secretRef.FindStringSubmatch(m)[1]
		return secrets[name]
	})
}
