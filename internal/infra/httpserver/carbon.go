package httpserver

import (
	"errors"
	"io"
	"net/http"
	"strings"

	appfootprint "github.com/bryanwahyu/ecosense/internal/application/footprint"
	domai "github.com/bryanwahyu/ecosense/internal/domain/ai"
	"github.com/bryanwahyu/ecosense/internal/infra/storage"
	"github.com/bryanwahyu/ecosense/internal/middleware"
)

// POST /api/analyze
// multipart/form-data with a single "image" file field.
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	req.Body = http.MaxBytesReader(w, req.Body, r.maxUpload)
	if err := req.ParseMultipartForm(r.maxUpload); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) || strings.Contains(err.Error(), "request body too large") {
			return err
		}
		return badRequest("No image file provided", "Expected multipart/form-data with an 'image' field")
	}
	defer req.MultipartForm.RemoveAll()

	file, header, err := req.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return badRequest("No image file provided", "Please upload an image file")
	}
	if err != nil {
		return badRequest("No image file provided", err.Error())
	}
	defer file.Close()

	filename := middleware.SanitizeFilename(header.Filename)
	if filename == "" {
		return badRequest("No file selected", "Please select a file to upload")
	}
	if err := middleware.ValidateImageFilename(filename); err != nil {
		return badRequest("Invalid file type", "Please upload an image file ("+strings.Join(middleware.AllowedImageExtensions, ", ")+")")
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return err
	}
	mime := header.Header.Get("Content-Type")
	if !strings.HasPrefix(mime, "image/") {
		mime = storage.MIMEType(filename)
	}

	report, err := r.footprintSvc.Analyze(req.Context(), appfootprint.AnalyzeCommand{
		Image:     domai.Image{Data: data, MIMEType: mime},
		Filename:  filename,
		RequestID: middleware.GetRequestID(req.Context()),
	})
	middleware.RecordAnalysis(err)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, report)
}

// POST /api/test
// Runs the pipeline on the configured sample image.
func (r *Router) handleTest(w http.ResponseWriter, req *http.Request) error {
	report, err := r.footprintSvc.AnalyzeSample(req.Context(), middleware.GetRequestID(req.Context()))
	middleware.RecordAnalysis(err)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, report)
}
