package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/flownet/pkg/cache"
	"github.com/matzehuels/flownet/pkg/expr"
	"github.com/matzehuels/flownet/pkg/graph"
	pio "github.com/matzehuels/flownet/pkg/io"
	"github.com/matzehuels/flownet/pkg/netgraph"
)

func TestFromDomain(t *testing.T) {
	_, exprErr := expr.Evaluate("1 / 0", nil)
	_, formatErr := pio.FormatFromPath("graph.csv")
	_, fileErr := os.Open(filepath.Join(t.TempDir(), "missing.json"))

	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"lookup", fmt.Errorf("edge 0: %w", &netgraph.LookupError{ID: 7}), ErrCodeNodeNotFound},
		{"duplicate", &netgraph.ValidationError{Field: "id", Value: 1, Err: netgraph.ErrDuplicateNode}, ErrCodeInvalidGraph},
		{"ambiguous capacity", fmt.Errorf("edge 2: %w", graph.ErrAmbiguousCapacity), ErrCodeInvalidGraph},
		{"expression", exprErr, ErrCodeInvalidExpression},
		{"format", formatErr, ErrCodeInvalidFormat},
		{"missing graph", fmt.Errorf("graph abc: %w", cache.ErrNotFound), ErrCodeGraphNotFound},
		{"missing file", fileErr, ErrCodeFileNotFound},
		{"backend", fmt.Errorf("redis: %w", cache.ErrNetwork), ErrCodeUnavailable},
		{"deadline", context.DeadlineExceeded, ErrCodeTimeout},
		{"canceled", context.Canceled, ErrCodeCanceled},
		{"other", errors.New("boom"), ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromDomain(tt.err)
			if GetCode(got) != tt.want {
				t.Errorf("FromDomain(%v) code = %q, want %q", tt.err, GetCode(got), tt.want)
			}
			if !errors.Is(got, tt.err) {
				t.Errorf("FromDomain should keep the cause in the chain")
			}
		})
	}
}

func TestFromDomainPassthrough(t *testing.T) {
	if FromDomain(nil) != nil {
		t.Error("FromDomain(nil) should be nil")
	}

	coded := New(ErrCodeInvalidAlgorithm, "bad")
	wrapped := fmt.Errorf("solve: %w", coded)
	if got := FromDomain(wrapped); got != wrapped {
		t.Errorf("FromDomain should return coded errors unchanged, got %v", got)
	}
}

func TestFromDomainLookupMessage(t *testing.T) {
	got := FromDomain(&netgraph.LookupError{ID: 42})
	if msg := UserMessage(got); msg != "node 42 does not exist" {
		t.Errorf("UserMessage = %q", msg)
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{ErrCodeInvalidInput, http.StatusBadRequest},
		{ErrCodeInvalidExpression, http.StatusBadRequest},
		{ErrCodeInvalidAlgorithm, http.StatusBadRequest},
		{ErrCodeNodeNotFound, http.StatusUnprocessableEntity},
		{ErrCodeGraphNotFound, http.StatusNotFound},
		{ErrCodeTimeout, http.StatusGatewayTimeout},
		{ErrCodeUnavailable, http.StatusServiceUnavailable},
		{ErrCodeUnsupported, http.StatusNotImplemented},
		{ErrCodeInternal, http.StatusInternalServerError},
		{"", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := HTTPStatus(tt.code); got != tt.want {
			t.Errorf("HTTPStatus(%q) = %d, want %d", tt.code, got, tt.want)
		}
	}
}
