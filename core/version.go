package core

import (
	_ "embed"
	"strings"

	version "github.com/hashicorp/go-version"
)

//go:embed version
var clientVersion string

func ClientVersion() string {
	return strings.TrimSpace(clientVersion)
}

// supportedApiVersions is the range of API major versions this client speaks.
var supportedApiVersions = version.MustConstraints(version.NewConstraint(">= 1, < 2"))

// CheckApiVersion reports whether an API version label such as "v1" is served by this client.
func CheckApiVersion(label string) error {
	raw := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(label)), "v")
	apiVer, err := version.NewVersion(raw)
	if err != nil {
		return &ValidationError{Field: "ApiVersion", Reason: "invalid api version " + label}
	}
	if !supportedApiVersions.Check(apiVer) {
		return &ValidationError{
			Field:  "ApiVersion",
			Reason: "api version " + label + " is not supported (" + supportedApiVersions.String() + ")",
		}
	}
	return nil
}
