package rest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/lexware-office/go-lexware-client/core"
)

// GetParams address a single resource.
type GetParams struct {
	ID string `mapstructure:"id"`
}

// GetAllParams control list operations. Every other key is passed on as a query filter.
type GetAllParams struct {
	ReturnAll bool           `mapstructure:"returnAll"`
	Limit     int            `mapstructure:"limit"`
	Filters   map[string]any `mapstructure:",remain"`
}

func (p GetAllParams) options() core.ListOptions {
	return core.ListOptions{ReturnAll: p.ReturnAll, Limit: p.Limit}
}

func (p GetAllParams) query() core.Params {
	return core.Params(p.Filters).Clone()
}

// CreateParams carry either a ready request body or flat fields that are
// transformed into one. Kind selects "company" or "person" for contacts.
type CreateParams struct {
	Kind     string         `mapstructure:"kind"`
	Finalize bool           `mapstructure:"finalize"`
	Body     map[string]any `mapstructure:"body"`
	Fields   map[string]any `mapstructure:",remain"`
}

// UpdateParams replace a resource. Version is required and kept as given so
// that it is validated by core.PrepareUpdate rather than coerced here.
type UpdateParams struct {
	ID      string         `mapstructure:"id"`
	Version any            `mapstructure:"version"`
	Body    map[string]any `mapstructure:"body"`
	Fields  map[string]any `mapstructure:",remain"`
}

// version returns the version with numeric strings turned into json.Number.
func (p UpdateParams) version() any {
	if s, ok := p.Version.(string); ok {
		return json.Number(strings.TrimSpace(s))
	}
	return p.Version
}

func (p UpdateParams) data() core.Params {
	if len(p.Body) > 0 {
		return core.Params(p.Body)
	}
	return core.Params(p.Fields).Clone()
}

// PursueParams create a follow-up voucher of PrecedingID.
type PursueParams struct {
	PrecedingID string         `mapstructure:"precedingSalesVoucherId"`
	Finalize    bool           `mapstructure:"finalize"`
	Body        map[string]any `mapstructure:"body"`
	Fields      map[string]any `mapstructure:",remain"`
}

// DownloadParams select a file and the representation to download.
type DownloadParams struct {
	ID     string `mapstructure:"id"`
	Accept string `mapstructure:"accept"`
}

type DeeplinkParams struct {
	ID   string `mapstructure:"id"`
	Edit bool   `mapstructure:"edit"`
}

// FileParams describe an upload or an attached file. Content may be given
// inline or read from Path.
type FileParams struct {
	ID          string `mapstructure:"id"`
	FileID      string `mapstructure:"fileId"`
	Type        string `mapstructure:"type"`
	FileName    string `mapstructure:"fileName"`
	ContentType string `mapstructure:"contentType"`
	Content     []byte `mapstructure:"content"`
	Path        string `mapstructure:"path"`
}

func (p FileParams) fileData() (core.FileData, error) {
	content := p.Content
	name := p.FileName
	if len(content) == 0 && p.Path != "" {
		data, err := os.ReadFile(p.Path)
		if err != nil {
			return core.FileData{}, &core.ValidationError{Field: "path", Reason: err.Error()}
		}
		content = data
		if name == "" {
			name = filepath.Base(p.Path)
		}
	}
	if len(content) == 0 {
		return core.FileData{}, &core.ValidationError{Field: "content", Reason: "either content or path is required"}
	}
	if name == "" {
		name = "upload"
	}
	contentType := p.ContentType
	if contentType == "" {
		contentType = http.DetectContentType(content)
	}
	return core.FileData{Filename: name, ContentType: contentType, Content: content}, nil
}

// CategoryParams filter posting categories by type (income or outgo).
type CategoryParams struct {
	Type string `mapstructure:"type"`
}

// decodeParams fills target from the flat params bag.
func decodeParams(params core.Params, target any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           target,
		TagName:          "mapstructure",
		DecodeHook:       mapstructure.ComposeDecodeHookFunc(stringToBytesHook, jsonStringToMapHook),
	})
	if err != nil {
		return err
	}
	if params == nil {
		params = core.Params{}
	}
	if err := decoder.Decode(map[string]any(params)); err != nil {
		return &core.ValidationError{Reason: fmt.Sprintf("invalid parameters: %v", err)}
	}
	return nil
}

var bytesType = reflect.TypeOf([]byte(nil))

func stringToBytesHook(from, to reflect.Type, data any) (any, error) {
	if to == bytesType && from.Kind() == reflect.String {
		return []byte(data.(string)), nil
	}
	return data, nil
}

// jsonStringToMapHook accepts JSON objects passed as strings, e.g. body='{"title":"x"}' on the command line.
func jsonStringToMapHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to.Kind() != reflect.Map {
		return data, nil
	}
	raw := data.(string)
	if raw == "" {
		return map[string]any{}, nil
	}
	var decoded map[string]any
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return nil, fmt.Errorf("expected a JSON object: %w", err)
	}
	return decoded, nil
}
