package validators

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/google/uuid"

	pkgerrors "github.com/comcol/comcol-backend/pkg/errors"
)

func multipartRequest(t *testing.T, parent string, fileName string, contentType string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if parent != "" {
		if err := writer.WriteField("computer", parent); err != nil {
			t.Fatalf("writing parent field: %v", err)
		}
	}
	if fileName != "" {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", `form-data; name="image"; filename="`+fileName+`"`)
		if contentType != "" {
			header.Set("Content-Type", contentType)
		}
		part, err := writer.CreatePart(header)
		if err != nil {
			t.Fatalf("creating file part: %v", err)
		}
		if _, err := part.Write(data); err != nil {
			t.Fatalf("writing file part: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("closing writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/pictures", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestParsePictureUpload(t *testing.T) {
	t.Parallel()

	computerID := uuid.New()
	req := multipartRequest(t, computerID.String(), "front.heic", "image/heic", []byte("payload"))

	upload, err := ParsePictureUpload(req, 1<<20)
	if err != nil {
		t.Fatalf("ParsePictureUpload: %v", err)
	}

	if upload.ComputerID != computerID {
		t.Fatalf("expected computer %s, got %s", computerID, upload.ComputerID)
	}
	if upload.ContentType != "image/heic" {
		t.Fatalf("expected declared content type, got %q", upload.ContentType)
	}
	if upload.FileName != "front.heic" {
		t.Fatalf("expected file name retained, got %q", upload.FileName)
	}
	if string(upload.Data) != "payload" {
		t.Fatalf("unexpected data %q", upload.Data)
	}
}

func TestParsePictureUploadSniffsMissingContentType(t *testing.T) {
	t.Parallel()

	// Raw text sniffs to text/plain; the point is the fallback kicks in.
	req := multipartRequest(t, uuid.NewString(), "scan.bin", "application/octet-stream", []byte("plain text payload"))

	upload, err := ParsePictureUpload(req, 1<<20)
	if err != nil {
		t.Fatalf("ParsePictureUpload: %v", err)
	}
	if upload.ContentType == "application/octet-stream" {
		t.Fatal("expected sniffed content type to replace octet-stream")
	}
}

func TestParsePictureUploadValidation(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		req  func(t *testing.T) *http.Request
	}{
		{
			name: "missing computer field",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, "", "a.jpg", "image/jpeg", []byte("x"))
			},
		},
		{
			name: "malformed computer id",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, "not-a-uuid", "a.jpg", "image/jpeg", []byte("x"))
			},
		},
		{
			name: "missing file",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, uuid.NewString(), "", "", nil)
			},
		},
		{
			name: "empty file",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, uuid.NewString(), "a.jpg", "image/jpeg", nil)
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParsePictureUpload(tc.req(t), 1<<20)
			appErr := pkgerrors.As(err)
			if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestParsePictureUploadSizeLimit(t *testing.T) {
	t.Parallel()

	req := multipartRequest(t, uuid.NewString(), "big.jpg", "image/jpeg", bytes.Repeat([]byte("a"), 4096))

	_, err := ParsePictureUpload(req, 512)
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for oversized upload, got %v", err)
	}
}
