package middleware

import (
	"encoding/json"
	"io"
)

func jsonEncode(w io.Writer, value any) error {
	return json.NewEncoder(w).Encode(value)
}
