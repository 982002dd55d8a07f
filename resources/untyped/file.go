package untyped

import (
	"context"
	"net/http"

	"github.com/lexware-office/go-lexware-client/core"
)

// FileTypeVoucher is the only upload type the files endpoint accepts.
const FileTypeVoucher = "voucher"

var multipartHeader = http.Header{core.HeaderContentType: []string{core.ContentTypeMultipartForm}}

type File struct {
	*core.Resource
}

func init() {
	core.RegisterOperation("File", "uploadFile", http.MethodPost, "/files", "Upload a voucher image or PDF")
	core.RegisterOperation("File", "downloadFile", http.MethodGet, "/files/{id}", "Download a file")
}

// UploadWithContext uploads file as multipart form data and returns {id}.
func (f *File) UploadWithContext(ctx context.Context, file core.FileData, fileType string) (core.Record, error) {
	if len(file.Content) == 0 {
		return nil, &core.ValidationError{Field: "file", Reason: "file content is empty"}
	}
	if fileType == "" {
		fileType = FileTypeVoucher
	}
	body := core.Params{"file": file, "type": fileType}
	return f.RequestWithContext(ctx, http.MethodPost, f.GetResourcePath(), nil, body, multipartHeader)
}

func (f *File) Upload(file core.FileData, fileType string) (core.Record, error) {
	return f.UploadWithContext(f.Rest.GetCtx(), file, fileType)
}

func (f *File) DownloadFileWithContext(ctx context.Context, id any, accept string) (*core.BinaryData, error) {
	return f.DownloadWithContext(ctx, id, accept)
}

func (f *File) DownloadFile(id any, accept string) (*core.BinaryData, error) {
	return f.DownloadFileWithContext(f.Rest.GetCtx(), id, accept)
}

// GetMetadataWithContext asks for the JSON description of a file instead of its content.
func (f *File) GetMetadataWithContext(ctx context.Context, id any) (core.Record, error) {
	path, err := core.BuildResourcePathWithID(f.GetResourcePath(), id)
	if err != nil {
		return nil, err
	}
	return f.RequestWithContext(ctx, http.MethodGet, path, nil, nil, http.Header{core.HeaderAccept: []string{core.ContentTypeJSON}})
}

func (f *File) GetMetadata(id any) (core.Record, error) {
	return f.GetMetadataWithContext(f.Rest.GetCtx(), id)
}
