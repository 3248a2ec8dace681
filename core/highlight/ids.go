// ABOUTME: Highlight id generation for new markers
// ABOUTME: Ids combine a millisecond timestamp with a random suffix

package highlight

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewID returns a highlight id of the form highlight-<unix ms>-<9 random chars>.
// Uniqueness is best effort: two ids collide only when created in the same
// millisecond with the same random suffix.
func NewID() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("highlight-%d-%s", time.Now().UnixMilli(), suffix)
}
