package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/bndr/gotabulate"
	"github.com/mitchellh/mapstructure"
	"github.com/shopspring/decimal"
)

const (
	ResourceTypeKey = "@resourceType"
	customRawKey    = "@raw" // used to store raw string values in Record
)

// ServerOwnedFields are attributes maintained by the API that must not be sent back on update.
var ServerOwnedFields = []string{"id", "version", "organizationId", "createdAt", "updatedAt"}

// metaFields are client side keys added to records, never part of a request body.
var metaFields = []string{ResourceTypeKey, customRawKey}

var empty = struct{}{}
var printableAttrs = map[string]struct{}{
	"id":                empty,
	"name":              empty,
	"version":           empty,
	"voucherNumber":     empty,
	"voucherType":       empty,
	"voucherStatus":     empty,
	"voucherDate":       empty,
	"dueDate":           empty,
	"contactName":       empty,
	"totalAmount":       empty,
	"openAmount":        empty,
	"currency":          empty,
	"title":             empty,
	"type":              empty,
	"articleNumber":     empty,
	"eventType":         empty,
	"callbackUrl":       empty,
	"subscriptionId":    empty,
	"companyName":       empty,
	"countryCode":       empty,
	"countryNameDE":     empty,
	"taxClassification": empty,
	"documentFileId":    empty,
	"resourceUri":       empty,
}

type FillFunc func(Record, any) error

// fillFunc decodes a Record into a struct by its json tags.
// Weak typing lets numeric values land in string fields and vice versa.
var fillFunc FillFunc = func(r Record, container any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Squash:           true,
		Result:           container,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			decimalHook,
			mapstructure.StringToTimeHookFunc(time.RFC3339Nano),
		),
	})
	if err != nil {
		return err
	}
	return decoder.Decode(map[string]any(r.withoutMeta()))
}

var decimalType = reflect.TypeOf(decimal.Decimal{})

// decimalHook converts JSON numbers and numeric strings into decimal.Decimal fields.
func decimalHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to != decimalType {
		return data, nil
	}
	switch v := data.(type) {
	case float64:
		return decimal.NewFromFloat(v), nil
	case float32:
		return decimal.NewFromFloat32(v), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case json.Number:
		return decimal.NewFromString(v.String())
	case string:
		return ParseDecimal(v)
	}
	return data, nil
}

// ParseDecimal parses a numeric string, accepting a decimal comma ("12,50").
func ParseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, ",") && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	return decimal.NewFromString(s)
}

//  ######################################################
//              FUNCTION PARAMS
//  ######################################################

// Params represents a generic set of key-value parameters,
// used for constructing query strings or request bodies.
type Params map[string]any

// FileData represents a file to be uploaded in multipart form data
type FileData struct {
	Filename    string
	ContentType string
	Content     []byte
}

// ToQuery serializes the Params into a URL-encoded query string.
// Keys are sorted. Empty strings are kept since some endpoints require a present but blank value.
func (pr *Params) ToQuery() string {
	return convertMapToQuery(*pr)
}

// ToBody serializes the Params into a JSON-encoded io.Reader,
// suitable for use as the body of an HTTP POST or PUT request.
func (pr *Params) ToBody() (io.Reader, error) {
	buffer, err := json.Marshal(*pr)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(buffer), nil
}

// MultipartFormData represents the result of ToMultipartFormData()
type MultipartFormData struct {
	Body        io.Reader
	ContentType string
}

// ToMultipartFormData serializes the Params into multipart/form-data format.
// Files should be provided as FileData values in the Params map.
func (pr *Params) ToMultipartFormData() (*MultipartFormData, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	keys := make([]string, 0, len(*pr))
	for key := range *pr {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		switch v := (*pr)[key].(type) {
		case FileData:
			fileWriter, err := createFormFile(writer, key, v)
			if err != nil {
				return nil, fmt.Errorf("failed to create form file for %s: %w", key, err)
			}
			if _, err := fileWriter.Write(v.Content); err != nil {
				return nil, fmt.Errorf("failed to write file content for %s: %w", key, err)
			}
		case []byte:
			fileWriter, err := writer.CreateFormFile(key, key)
			if err != nil {
				return nil, fmt.Errorf("failed to create form file for %s: %w", key, err)
			}
			if _, err := fileWriter.Write(v); err != nil {
				return nil, fmt.Errorf("failed to write byte content for %s: %w", key, err)
			}
		default:
			if err := writer.WriteField(key, fmt.Sprintf("%v", v)); err != nil {
				return nil, fmt.Errorf("failed to write field %s: %w", key, err)
			}
		}
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	return &MultipartFormData{
		Body:        &body,
		ContentType: writer.FormDataContentType(),
	}, nil
}

func createFormFile(writer *multipart.Writer, field string, file FileData) (io.Writer, error) {
	if file.ContentType == "" {
		return writer.CreateFormFile(field, file.Filename)
	}
	// Same disposition as multipart.Writer.CreateFormFile, with the real content type.
	h := make(textproto.MIMEHeader)
	h.Set(HeaderContentDisposition, fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(field), quoteEscaper.Replace(file.Filename)))
	h.Set(HeaderContentType, file.ContentType)
	return writer.CreatePart(h)
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// Update merges another Params map into the original Params.
// If a key already exists and `override` is false, its value is kept.
func (pr *Params) Update(other Params, override bool) {
	for key, value := range other {
		if _, exists := (*pr)[key]; exists && !override {
			continue
		}
		(*pr)[key] = value
	}
}

// Without removes the specified keys from the Params map.
func (pr *Params) Without(keys ...string) {
	for _, key := range keys {
		delete(*pr, key)
	}
}

// Clone returns a shallow copy of the Params, leaving out the given keys.
func (pr Params) Clone(without ...string) Params {
	out := make(Params, len(pr))
	for key, value := range pr {
		if contains(without, key) {
			continue
		}
		out[key] = value
	}
	return out
}

// GetString returns the value under key as a trimmed string. Missing and nil values yield "".
func (pr Params) GetString(key string) string {
	v, ok := pr[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

// NewParamsFromStruct creates Params from any struct, respecting json tags.
func NewParamsFromStruct(obj any) (Params, error) {
	params := make(Params)
	if obj == nil {
		return params, nil
	}
	b, err := json.Marshal(obj)
	if err != nil {
		return nil, err
	}
	if err = json.Unmarshal(b, &params); err != nil {
		return nil, fmt.Errorf("value of type %T does not serialize to a JSON object: %w", obj, err)
	}
	return params, nil
}

//  ######################################################
//              RETURN TYPES
//  ######################################################

// getPrintableAttrs returns a slice of keys to be printed from the Record
func getPrintableAttrs(r Record) []string {
	var attrs []string
	for key := range r {
		if _, ok := printableAttrs[key]; ok {
			attrs = append(attrs, key)
		}
	}
	sort.Strings(attrs)
	return attrs
}

// Renderable is an interface implemented by types that can render themselves
// into a human-readable string format, typically for CLI display or logging.
type Renderable interface {
	PrettyTable() string
	PrettyJson(indent ...string) string
}

// Filler is a generic interface for filling a struct or slice of structs.
type Filler interface {
	// Fill populates the given container with data from the implementing type.
	// The container can be a pointer to a struct (for Record),
	// or a pointer to a slice of structs (for RecordSet).
	Fill(container any) error
}

// DisplayableRecord combines rendering and struct filling.
// It is implemented by Record and RecordSet.
type DisplayableRecord interface {
	Renderable
	Filler
}

// Record represents a single generic data object as a key-value map.
// When a response is empty (e.g., 204 No Content), an empty Record{} is returned.
type Record map[string]any

// RecordSet represents a list of Record objects.
type RecordSet []Record

// RecordUnion defines a union of supported record types for generic operations.
type RecordUnion interface {
	Record | RecordSet
}

// Fill populates the exported fields of the given struct pointer using values
// from the Record, matching keys against `json` tags.
func (r Record) Fill(container any) error {
	val := reflect.ValueOf(container)
	if val.Kind() != reflect.Ptr || val.IsNil() {
		return fmt.Errorf("container must be a non-nil pointer to a struct")
	}
	val = val.Elem()
	if val.Kind() != reflect.Struct {
		return fmt.Errorf("container must point to a struct")
	}
	return fillFunc(r, container)
}

func (r Record) withoutMeta() Record {
	if _, ok := r[ResourceTypeKey]; !ok {
		return r
	}
	out := make(Record, len(r))
	for k, v := range r {
		if k == ResourceTypeKey {
			continue
		}
		out[k] = v
	}
	return out
}

// RecordID returns the id attribute. Lexware ids are UUID strings.
func (r Record) RecordID() string {
	idVal, ok := r["id"]
	if !ok || idVal == nil {
		return ""
	}
	return fmt.Sprintf("%v", idVal)
}

// RecordVersion returns the optimistic locking token of the record.
func (r Record) RecordVersion() (int64, bool) {
	return versionToInt(r[VersionKey])
}

// RecordName returns the name attribute as a string.
func (r Record) RecordName() string {
	nameVal, ok := r["name"]
	if !ok || nameVal == nil {
		return ""
	}
	return fmt.Sprintf("%v", nameVal)
}

// SetMissingValue If the key is not present in the Record, set it to the provided value
func (r Record) SetMissingValue(key string, value any) {
	if _, exists := r[key]; !exists {
		r[key] = value
	}
}

// PrettyTable prints a single Record as a table
func (r Record) PrettyTable() string {
	headers := []string{"attr", "value"}
	var rows [][]any
	var name string
	if resourceTyp, ok := r[ResourceTypeKey].(string); ok {
		name = resourceTyp
	}
	if len(r) == 0 {
		return "<>"
	}
	for _, key := range getPrintableAttrs(r) {
		if val, ok := r[key]; ok && val != nil {
			rows = append(rows, []any{key, fmt.Sprintf("%v", val)})
		}
	}

	remainingAttrs := make(map[string]any)
	for key, value := range r {
		if _, ok := printableAttrs[key]; !ok {
			if key == ResourceTypeKey || value == nil {
				continue
			}
			remainingAttrs[key] = value
		}
	}
	if len(remainingAttrs) > 0 {
		remainingJSON, _ := json.Marshal(remainingAttrs)
		rows = append(rows, []any{"<<remaining attrs>>", string(remainingJSON)})
	}
	if len(rows) == 0 {
		return fmt.Sprintf("%s: <>", name)
	}
	t := gotabulate.Create(rows)
	t.SetHeaders(headers)
	t.SetAlign("left")
	t.SetWrapStrings(true)
	t.SetMaxCellSize(85)
	if name != "" {
		return fmt.Sprintf("%s:\n%s", name, t.Render("grid"))
	}
	return fmt.Sprintf("\n%s", t.Render("grid"))
}

// PrettyJson prints the Record as JSON, optionally indented
func (r Record) PrettyJson(indent ...string) string {
	return prettyJson(r, indent...)
}

func (r Record) Empty() bool {
	return len(r) == 0
}

func (r Record) String() string {
	return r.PrettyTable()
}

// Fill populates the provided container slice with data from the RecordSet.
// The container must be a non-nil pointer to a slice of structs or struct pointers.
func (rs RecordSet) Fill(container any) error {
	val := reflect.ValueOf(container)
	if val.Kind() != reflect.Ptr || val.IsNil() {
		return fmt.Errorf("container must be a non-nil pointer to a slice")
	}

	sliceVal := val.Elem()
	if sliceVal.Kind() != reflect.Slice {
		return fmt.Errorf("container must point to a slice")
	}

	elemType := sliceVal.Type().Elem()
	isPtrElem := elemType.Kind() == reflect.Ptr

	var targetType reflect.Type
	if isPtrElem {
		if elemType.Elem().Kind() != reflect.Struct {
			return fmt.Errorf("slice element must be pointer to a struct")
		}
		targetType = elemType.Elem()
	} else {
		if elemType.Kind() != reflect.Struct {
			return fmt.Errorf("slice element must be a struct")
		}
		targetType = elemType
	}

	for _, record := range rs {
		elemPtr := reflect.New(targetType)
		if err := record.Fill(elemPtr.Interface()); err != nil {
			return err
		}
		if isPtrElem {
			sliceVal.Set(reflect.Append(sliceVal, elemPtr))
		} else {
			sliceVal.Set(reflect.Append(sliceVal, elemPtr.Elem()))
		}
	}
	return nil
}

// PrettyTable renders every record of the set as a table.
func (rs RecordSet) PrettyTable() string {
	if len(rs) == 0 {
		return "[]"
	}
	var out strings.Builder
	out.WriteString("[\n")
	for i, record := range rs {
		out.WriteString(record.PrettyTable())
		if i < len(rs)-1 {
			out.WriteString("\n\n")
		}
	}
	out.WriteString("\n]")
	return out.String()
}

func (rs RecordSet) Empty() bool {
	return len(rs) == 0
}

// PrettyJson prints the RecordSet as JSON, optionally indented
func (rs RecordSet) PrettyJson(indent ...string) string {
	return prettyJson(rs, indent...)
}

func prettyJson(v any, indent ...string) string {
	var b []byte
	var err error
	if len(indent) > 0 {
		b, err = json.MarshalIndent(v, "", indent[0])
	} else {
		b, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Sprintf("failed to marshal JSON: %v", err)
	}
	return string(b)
}

// BinaryData is a non-JSON response body such as a rendered PDF or an uploaded voucher image.
type BinaryData struct {
	ContentType string `json:"contentType"`
	FileName    string `json:"fileName,omitempty"`
	Content     []byte `json:"content"`
}

func (b *BinaryData) Size() int {
	if b == nil {
		return 0
	}
	return len(b.Content)
}

// PrettyTable renders file metadata. The content itself is not printed.
func (b *BinaryData) PrettyTable() string {
	if b == nil {
		return "<>"
	}
	rows := [][]any{
		{"contentType", b.ContentType},
		{"fileName", b.FileName},
		{"size", fmt.Sprintf("%d bytes", b.Size())},
	}
	t := gotabulate.Create(rows)
	t.SetHeaders([]string{"attr", "value"})
	t.SetAlign("left")
	return fmt.Sprintf("file:\n%s", t.Render("grid"))
}

// PrettyJson renders the file with base64 encoded content.
func (b *BinaryData) PrettyJson(indent ...string) string {
	return prettyJson(b, indent...)
}

// unmarshalToRenderable parses an HTTP response body into one of the supported types:
//   - Record for JSON objects and empty bodies (204 No Content),
//   - RecordSet for JSON arrays,
//   - *BinaryData for any non-JSON content type (PDF, images, XML e-invoices).
func unmarshalToRenderable(response *http.Response) (Renderable, error) {
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, err
	}
	contentType := response.Header.Get(HeaderContentType)
	if len(body) > 0 && !isJSONContentType(contentType) {
		return &BinaryData{
			ContentType: contentType,
			FileName:    fileNameFromDisposition(response.Header.Get(HeaderContentDisposition)),
			Content:     body,
		}, nil
	}
	if response.StatusCode == http.StatusNoContent {
		return Record{}, nil
	}
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return Record{}, nil
	}
	switch trimmed[0] {
	case '{':
		var rec Record
		if err := json.Unmarshal(trimmed, &rec); err != nil {
			return nil, err
		}
		return rec, nil
	case '[':
		var recSet RecordSet
		if err := json.Unmarshal(trimmed, &recSet); err == nil {
			return recSet, nil
		}
		var anySlice []any
		if err := json.Unmarshal(trimmed, &anySlice); err != nil {
			return nil, err
		}
		recordSet := make(RecordSet, len(anySlice))
		for i, item := range anySlice {
			recordSet[i] = Record{customRawKey: item}
		}
		return recordSet, nil
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return nil, err
		}
		return Record{customRawKey: s}, nil
	default:
		return nil, fmt.Errorf("unsupported JSON format: must be object or array")
	}
}

func isJSONContentType(contentType string) bool {
	if contentType == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.Contains(contentType, "json")
	}
	return mediaType == ContentTypeJSON || strings.HasSuffix(mediaType, "+json")
}

func fileNameFromDisposition(disposition string) string {
	if disposition == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return ""
	}
	return params["filename"]
}

// typeMatch checks whether the dynamic type of given Renderable value
// matches the generic type T at runtime.
func typeMatch[T RecordUnion](val Renderable) bool {
	var zero T
	return reflect.TypeOf(val) == reflect.TypeOf(zero)
}

// setResourceKey sets resource type key for tabular formatting (only if not already set).
func setResourceKey(result Renderable, resourceType string) error {
	switch v := result.(type) {
	case Record:
		if _, ok := v[ResourceTypeKey]; !ok && len(v) > 0 {
			v[ResourceTypeKey] = resourceType
		}
		return nil
	case RecordSet:
		for _, rec := range v {
			if _, ok := rec[ResourceTypeKey]; !ok && len(rec) > 0 {
				rec[ResourceTypeKey] = resourceType
			}
		}
		return nil
	case *BinaryData:
		return nil
	default:
		return fmt.Errorf("unsupported type %T", result)
	}
}

// StripMeta removes client side bookkeeping keys so a record can be sent back to the API.
func StripMeta(r Record) Record {
	return r.withoutMeta()
}
