package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/angelmondragon/trio-pos/internal/ui"
)

const confirmHeader = "X-Confirm"

// Confirm attaches the operator's answer to destructive prompts. Requests without the header
// decline every prompt they raise.
func Confirm() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			confirmed, _ := strconv.ParseBool(strings.TrimSpace(r.Header.Get(confirmHeader)))
			next.ServeHTTP(w, r.WithContext(ui.WithConfirmation(r.Context(), confirmed)))
		})
	}
}
