package validators

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"

	pkgerrors "github.com/comcol/comcol-backend/pkg/errors"
)

const (
	uploadFileField   = "image"
	uploadParentField = "computer"
)

// PictureUpload is a decoded multipart picture submission.
type PictureUpload struct {
	ComputerID  uuid.UUID
	FileName    string
	ContentType string
	Data        []byte
}

// ParsePictureUpload reads the "computer" and "image" multipart fields,
// enforcing maxBytes across the whole request body. The content type comes
// from the file part header, falling back to sniffing when the client sent
// none or a generic octet-stream.
func ParsePictureUpload(r *http.Request, maxBytes int64) (*PictureUpload, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "upload exceeds the size limit").
				WithDetails(map[string]any{"max_bytes": tooLarge.Limit})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart body")
	}
	defer r.MultipartForm.RemoveAll()

	rawParent := strings.TrimSpace(r.FormValue(uploadParentField))
	if rawParent == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "computer field is required").
			WithDetails(map[string]string{uploadParentField: "is required"})
	}
	computerID, err := uuid.Parse(rawParent)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "computer must be a valid id").
			WithDetails(map[string]string{uploadParentField: "is invalid"})
	}

	file, header, err := r.FormFile(uploadFileField)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "image file is required").
			WithDetails(map[string]string{uploadFileField: "is required"})
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "reading uploaded file")
	}
	if len(data) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "image file is empty").
			WithDetails(map[string]string{uploadFileField: "is empty"})
	}

	contentType := strings.TrimSpace(header.Header.Get("Content-Type"))
	if contentType == "" || strings.EqualFold(contentType, "application/octet-stream") {
		contentType = http.DetectContentType(data)
	}

	return &PictureUpload{
		ComputerID:  computerID,
		FileName:    header.Filename,
		ContentType: contentType,
		Data:        data,
	}, nil
}
