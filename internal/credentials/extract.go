package credentials

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrCredentialsNotFound is returned when a request carries no credential bundle.
var ErrCredentialsNotFound = errors.New("user credentials are required but not found in request, include them in the '_userCredentials' field")

// authFields are removed from tool arguments before the tool logic reads them.
var authFields = []string{ArgumentKey, "userCredentials", "_userContext", "userId", "sessionId"}

// Attach returns a copy of args with the bundle stored under ArgumentKey.
func Attach(args map[string]any, b Bundle) map[string]any {
	out := make(map[string]any, len(args)+1)
	for k, v := range args {
		out[k] = v
	}
	out[ArgumentKey] = b
	return out
}

// HasCredentials reports whether args carries a bundle in any of the recognised locations.
func HasCredentials(args map[string]any) bool {
	_, ok := locate(args)
	return ok
}

// FromArguments extracts the bundle from tool arguments. It looks in "_userCredentials",
// then "userCredentials", then "_userContext.credentials".
func FromArguments(args map[string]any) (Bundle, error) {
	raw, ok := locate(args)
	if !ok {
		return Bundle{}, ErrCredentialsNotFound
	}

	// Arguments arrive either as decoded JSON (map[string]any) or, in-process, as a Bundle.
	if b, ok := raw.(Bundle); ok {
		return b, nil
	}
	if b, ok := raw.(*Bundle); ok && b != nil {
		return *b, nil
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return Bundle{}, fmt.Errorf("failed to encode user credentials: %w", err)
	}
	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return Bundle{}, fmt.Errorf("invalid user credentials: %w", err)
	}
	return b, nil
}

// StripAuthFields returns a copy of args without any authentication related fields.
func StripAuthFields(args map[string]any) map[string]any {
	out := make(map[string]any, len(args))
	for k, v := range args {
		out[k] = v
	}
	for _, k := range authFields {
		delete(out, k)
	}
	return out
}

func locate(args map[string]any) (any, bool) {
	if args == nil {
		return nil, false
	}
	for _, key := range []string{ArgumentKey, "userCredentials"} {
		if v, ok := args[key]; ok && v != nil {
			return v, true
		}
	}
	if userCtx, ok := args["_userContext"].(map[string]any); ok {
		if v, ok := userCtx["credentials"]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}
