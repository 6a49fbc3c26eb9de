package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestRequestID(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
		keep     bool
	}{
		{"generated", "", false},
		{"reused", "abc-123", true},
		{"too long", strings.Repeat("x", maxRequestIDLength+1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.incoming != "" {
				req.Header.Set(RequestIDHeader, tt.incoming)
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			var seen string
			if err := RequestID()(func(c echo.Context) error {
				seen = GetRequestID(c)
				return nil
			})(c); err != nil {
				t.Fatal(err)
			}

			if seen == "" || rec.Header().Get(RequestIDHeader) != seen {
				t.Fatalf("context id %q, header %q", seen, rec.Header().Get(RequestIDHeader))
			}
			if tt.keep != (seen == tt.incoming) {
				t.Errorf("id = %q, incoming %q, keep %v", seen, tt.incoming, tt.keep)
			}
		})
	}
}
