package auth

import (
	"github.com/danielgtaylor/huma/v2"
)

// MetadataKey is the key used to store the auth policy in operation metadata.
const MetadataKey = "auth"

// Policy declares what a huma operation requires from the caller. Operations
// without a policy accept anonymous callers but still resolve a session when
// one is presented.
type Policy struct {
	Required  bool
	AdminOnly bool
}

// GetPolicy extracts the auth policy from operation metadata, if present.
func GetPolicy(ctx huma.Context) *Policy {
	op := ctx.Operation()
	if op == nil || op.Metadata == nil {
		return nil
	}

	policy, ok := op.Metadata[MetadataKey].(Policy)
	if !ok {
		return nil
	}

	return &policy
}
