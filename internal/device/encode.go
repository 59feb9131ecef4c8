package device

import (
	"fmt"
	"strings"
)

// encode renders a value the way the robot formats record fields:
// booleans as 1/0, lists comma-joined element by element, nil as empty.
func encode(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case bool:
		if v {
			return "1"
		}

		return "0"
	case string:
		return v
	case []bool:
		parts := make([]string, len(v))
		for i, elem := range v {
			parts[i] = encode(elem)
		}

		return strings.Join(parts, ",")
	case []any:
		parts := make([]string, len(v))
		for i, elem := range v {
			parts[i] = encode(elem)
		}

		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(v)
	}
}

// parseCommand splits "name(arg1,arg2)" into its name and arguments.
// A bare "name" has no arguments.
func parseCommand(command string) (string, []string) {
	open := strings.IndexByte(command, '(')
	if open < 0 || !strings.HasSuffix(command, ")") {
		return command, nil
	}

	name := command[:open]
	inner := command[open+1 : len(command)-1]

	return name, strings.Split(inner, ",")
}
