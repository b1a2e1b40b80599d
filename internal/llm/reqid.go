package llm

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/courseforge/internal/types"
)

// newRequestID mints a per-call identifier of the form <op-abbrev>:<6-hex>.
// It appears bracketed in every log line and error message for the call.
func newRequestID(op types.Kind) string {
	hex := strings.ReplaceAll(uuid.New().String(), "-", "")
	return fmt.Sprintf("%s:%s", op.Abbrev(), hex[:6])
}
