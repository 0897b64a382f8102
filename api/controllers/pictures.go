package controllers

import (
	"net/http"

	"github.com/comcol/comcol-backend/api/responses"
	"github.com/comcol/comcol-backend/api/validators"
	"github.com/comcol/comcol-backend/internal/pictures"
	"github.com/comcol/comcol-backend/pkg/logger"
)

// UploadPicture handles POST /api/v1/pictures. The multipart body carries the
// parent computer id and the image file; the response is the stored picture
// with its resolved variant URLs.
func UploadPicture(svc pictures.Service, maxUploadBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		upload, err := validators.ParsePictureUpload(r, maxUploadBytes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := logg.WithComputerID(r.Context(), upload.ComputerID.String())
		dto, err := svc.Ingest(ctx, pictures.IngestInput{
			ComputerID:  upload.ComputerID,
			Data:        upload.Data,
			ContentType: upload.ContentType,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

// ListComputerPictures handles GET /api/v1/computers/{computerId}/pictures.
func ListComputerPictures(svc pictures.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parsePathID(r, "computerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dtos, err := svc.ListByComputer(logg.WithComputerID(r.Context(), id.String()), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"images": dtos})
	}
}

// GetPicture handles GET /api/v1/pictures/{pictureId}.
func GetPicture(svc pictures.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parsePathID(r, "pictureId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Get(logg.WithPictureID(r.Context(), id.String()), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, dto)
	}
}

// DeletePicture handles DELETE /api/v1/pictures/{pictureId}.
func DeletePicture(svc pictures.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parsePathID(r, "pictureId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(logg.WithPictureID(r.Context(), id.String()), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}
