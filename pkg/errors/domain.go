package errors

import (
	"context"
	"errors"
	"io/fs"
	"net/http"

	"github.com/matzehuels/flownet/pkg/cache"
	"github.com/matzehuels/flownet/pkg/expr"
	"github.com/matzehuels/flownet/pkg/graph"
	pio "github.com/matzehuels/flownet/pkg/io"
	"github.com/matzehuels/flownet/pkg/netgraph"
)

// FromDomain classifies an error returned by the library packages.
// An *Error anywhere in the chain is returned as-is; nil stays nil.
// Anything unrecognised becomes ErrCodeInternal.
func FromDomain(err error) error {
	if err == nil {
		return nil
	}
	var coded *Error
	if errors.As(err, &coded) {
		return err
	}

	var (
		lookup *netgraph.LookupError
		verr   *netgraph.ValidationError
		perr   *expr.ParseError
	)
	switch {
	case errors.As(err, &lookup):
		return Wrap(ErrCodeNodeNotFound, err, "node %d does not exist", lookup.ID)
	case errors.As(err, &verr), errors.Is(err, graph.ErrAmbiguousCapacity):
		return Wrap(ErrCodeInvalidGraph, err, "%v", err)
	case errors.As(err, &perr):
		return Wrap(ErrCodeInvalidExpression, err, "%v", err)
	case errors.Is(err, pio.ErrUnknownFormat):
		return Wrap(ErrCodeInvalidFormat, err, "%v", err)
	case errors.Is(err, cache.ErrNotFound):
		return Wrap(ErrCodeGraphNotFound, err, "graph not found")
	case errors.Is(err, fs.ErrNotExist):
		return Wrap(ErrCodeFileNotFound, err, "%v", err)
	case errors.Is(err, cache.ErrNetwork):
		return Wrap(ErrCodeUnavailable, err, "backend unavailable")
	case errors.Is(err, context.DeadlineExceeded):
		return Wrap(ErrCodeTimeout, err, "request timed out")
	case errors.Is(err, context.Canceled):
		return Wrap(ErrCodeCanceled, err, "request canceled")
	default:
		return Wrap(ErrCodeInternal, err, "internal error")
	}
}

// HTTPStatus maps an error code to an HTTP status.
func HTTPStatus(code Code) int {
	switch code {
	case ErrCodeInvalidInput, ErrCodeInvalidGraph, ErrCodeInvalidExpression,
		ErrCodeInvalidAlgorithm, ErrCodeInvalidFormat, ErrCodeInvalidName:
		return http.StatusBadRequest
	case ErrCodeNodeNotFound:
		return http.StatusUnprocessableEntity
	case ErrCodeNotFound, ErrCodeGraphNotFound, ErrCodeFileNotFound:
		return http.StatusNotFound
	case ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case ErrCodeNetwork, ErrCodeUnavailable:
		return http.StatusServiceUnavailable
	case ErrCodeCanceled:
		return 499 // client closed request
	case ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}
