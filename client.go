package lexware_client

import (
	"github.com/lexware-office/go-lexware-client/core"
	"github.com/lexware-office/go-lexware-client/rest"
)

type (
	Config                   = core.Config
	Params                   = core.Params
	Record                   = core.Record
	RecordSet                = core.RecordSet
	Renderable               = core.Renderable
	BinaryData               = core.BinaryData
	FileData                 = core.FileData
	ListOptions              = core.ListOptions
	LexwareRest              = rest.LexwareRest
	ResourceFactory          = rest.ResourceFactory
	ResourceType             = rest.ResourceType
	Operation                = rest.Operation
	ResourceAPI              = core.ResourceAPI
	ResourceAPIWithContext   = core.ResourceAPIWithContext
	InterceptableResourceAPI = core.InterceptableResourceAPI

	ApiError                  = core.ApiError
	NetworkError              = core.NetworkError
	ValidationError           = core.ValidationError
	NotFoundError             = core.NotFoundError
	UnsupportedOperationError = core.UnsupportedOperationError
)

func NewLexwareRest(config *Config) (*LexwareRest, error) {
	return rest.NewLexwareRest(config)
}

// NewResourceFactory creates a client for config and returns the string-addressable dispatcher over it.
func NewResourceFactory(config *Config) (*ResourceFactory, error) {
	client, err := rest.NewLexwareRest(config)
	if err != nil {
		return nil, err
	}
	return rest.NewResourceFactory(client), nil
}

func ClientVersion() string {
	return core.ClientVersion()
}
