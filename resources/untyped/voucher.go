package untyped

import (
	"context"
	"net/http"

	"github.com/lexware-office/go-lexware-client/core"
)

// BookkeepingVoucherTypes is the voucherlist filter covering every bookkeeping voucher.
const BookkeepingVoucherTypes = "salesinvoice,salescreditnote,purchaseinvoice,purchasecreditnote"

// Voucher is a bookkeeping voucher (/vouchers) as opposed to the sales vouchers.
type Voucher struct {
	*core.Resource
}

func init() {
	core.RegisterOperation("Voucher", "uploadFile", http.MethodPost, "/vouchers/{id}/files", "Attach a file to the voucher")
	core.RegisterOperation("Voucher", "getFiles", http.MethodGet, "/vouchers/{id}", "List the file ids attached to the voucher")
	core.RegisterOperation("Voucher", "deleteFile", http.MethodDelete, "/vouchers/{id}/files/{fileId}", "Detach a file from the voucher")
	core.RegisterOperation("Voucher", "getByStatus", http.MethodGet, "/voucherlist?voucherType="+BookkeepingVoucherTypes, "List bookkeeping vouchers by status")
}

func (v *Voucher) UploadFileWithContext(ctx context.Context, id any, file core.FileData) (core.Record, error) {
	if len(file.Content) == 0 {
		return nil, &core.ValidationError{Field: "file", Reason: "file content is empty"}
	}
	path, err := core.BuildResourcePathWithID(v.GetResourcePath(), id, core.SegmentFiles)
	if err != nil {
		return nil, err
	}
	return v.RequestWithContext(ctx, http.MethodPost, path, nil, core.Params{"file": file}, multipartHeader)
}

func (v *Voucher) UploadFile(id any, file core.FileData) (core.Record, error) {
	return v.UploadFileWithContext(v.Rest.GetCtx(), id, file)
}

// GetFilesWithContext returns one record {fileId} per attached file.
func (v *Voucher) GetFilesWithContext(ctx context.Context, id any) (core.RecordSet, error) {
	voucher, err := v.GetWithContext(ctx, id)
	if err != nil {
		return nil, err
	}
	files := core.RecordSet{}
	list, _ := voucher["files"].([]any)
	for _, fileID := range list {
		files = append(files, core.Record{"fileId": fileID})
	}
	return files, nil
}

func (v *Voucher) GetFiles(id any) (core.RecordSet, error) {
	return v.GetFilesWithContext(v.Rest.GetCtx(), id)
}

func (v *Voucher) DeleteFileWithContext(ctx context.Context, id, fileID any) (core.Record, error) {
	file, err := core.ParseID(fileID)
	if err != nil {
		return nil, err
	}
	path, err := core.BuildResourcePathWithID(v.GetResourcePath(), id, core.SegmentFiles, file.String())
	if err != nil {
		return nil, err
	}
	return v.RequestWithContext(ctx, http.MethodDelete, path, nil, nil)
}

func (v *Voucher) DeleteFile(id, fileID any) (core.Record, error) {
	return v.DeleteFileWithContext(v.Rest.GetCtx(), id, fileID)
}

func (v *Voucher) GetByStatusWithContext(ctx context.Context, status string, opts core.ListOptions) (core.RecordSet, error) {
	list, ok := v.Rest.GetResourceMap()[voucherListType]
	if !ok {
		return nil, &core.UnsupportedOperationError{Resource: v.GetResourceType(), Operation: "getByStatus"}
	}
	return list.GetAllWithContext(ctx, core.Params{
		core.QueryVoucherType:   BookkeepingVoucherTypes,
		core.QueryVoucherStatus: status,
	}, opts)
}

func (v *Voucher) GetByStatus(status string, opts core.ListOptions) (core.RecordSet, error) {
	return v.GetByStatusWithContext(v.Rest.GetCtx(), status, opts)
}
