package agentql

import (
	"os"
	"strings"

	"agentql-tools/internal/domain/entity"
)

const APIKeyEnvVar = "AGENTQL_API_KEY"

// ResolveAPIKey returns the explicit key when set, otherwise the value of
// AGENTQL_API_KEY from lookup. A nil lookup falls back to os.LookupEnv.
func ResolveAPIKey(explicit string, lookup func(string) (string, bool)) (string, error) {
	if key := strings.TrimSpace(explicit); key != "" {
		return key, nil
	}
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if key, ok := lookup(APIKeyEnvVar); ok && strings.TrimSpace(key) != "" {
		return strings.TrimSpace(key), nil
	}
	return "", entity.NewConfigurationError(entity.MsgAPIKeyNotSet)
}
