package ssh

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// buildCmdline renders an argv and its extra environment as a single shell
// command line. There is no remote exec without a shell, so environment
// variables ride along as K="V" assignments ahead of the command; values
// containing a double quote are rejected rather than quoted incorrectly.
func buildCmdline(argv []string, env map[string]string) (string, error) {
	if len(argv) == 0 {
		return "", errors.New("ssh: empty argv")
	}
	cmd := strings.Join(argv, " ")
	if len(env) == 0 {
		return cmd, nil
	}

	keys := make([]string, 0, len(env))
	for key := range env {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	assignments := make([]string, 0, len(keys))
	for _, key := range keys {
		value := env[key]
		if strings.Contains(value, `"`) {
			return "", fmt.Errorf("ssh: env %s: value cannot contain a double quote", key)
		}
		assignments = append(assignments, fmt.Sprintf(`%s="%s"`, key, value))
	}
	return strings.Join(assignments, " ") + " " + cmd, nil
}
