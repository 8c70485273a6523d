package providers

import (
	"context"
	"fmt"
)

// Unavailable is a Completer that always fails with Err. It stands in when
// no provider could be constructed so callers take their default path.
type Unavailable struct {
	Provider string
	Err      error
}

func (u Unavailable) Name() string {
	if u.Provider == "" {
		return "unavailable"
	}
	return u.Provider
}

func (u Unavailable) Complete(ctx context.Context, req Request) (Response, error) {
	if u.Err == nil {
		return Response{}, fmt.Errorf("%s: provider unavailable", u.Name())
	}
	return Response{}, fmt.Errorf("%s: %w", u.Name(), u.Err)
}
