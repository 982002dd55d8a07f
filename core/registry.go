package core

import "sort"

// OperationMetadata describes a resource specific operation beyond plain CRUD,
// e.g. Invoice "document" -> GET /invoices/{id}/document.
type OperationMetadata struct {
	Name     string // e.g., "Document"
	HTTPVerb string // e.g., "GET"
	URLPath  string // e.g., "/invoices/{id}/document"
	Summary  string // e.g., "Render the invoice PDF"
}

// operationRegistry maps resource type to operation name to metadata.
// Entries are registered from init functions of the resource packages.
var operationRegistry = map[string]map[string]OperationMetadata{}

// RegisterOperation records metadata for an operation of resourceType.
func RegisterOperation(resourceType, name, httpVerb, urlPath, summary string) {
	if operationRegistry[resourceType] == nil {
		operationRegistry[resourceType] = make(map[string]OperationMetadata)
	}
	operationRegistry[resourceType][name] = OperationMetadata{
		Name:     name,
		HTTPVerb: httpVerb,
		URLPath:  urlPath,
		Summary:  summary,
	}
}

// GetOperationMetadata retrieves metadata for a specific operation
func GetOperationMetadata(resourceType, name string) (OperationMetadata, bool) {
	if ops, ok := operationRegistry[resourceType]; ok {
		metadata, found := ops[name]
		return metadata, found
	}
	return OperationMetadata{}, false
}

// OperationsFor returns the registered operations of resourceType keyed by name.
func OperationsFor(resourceType string) map[string]OperationMetadata {
	return operationRegistry[resourceType]
}

// SortedOperationsFor returns the registered operations of resourceType ordered by name.
func SortedOperationsFor(resourceType string) []OperationMetadata {
	ops := operationRegistry[resourceType]
	result := make([]OperationMetadata, 0, len(ops))
	for _, metadata := range ops {
		result = append(result, metadata)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}
