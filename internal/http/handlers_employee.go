package httpx

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	apperrors "github.com/visorhr/visorhr-ui/internal/errors"
	"github.com/visorhr/visorhr-ui/internal/service"
)

// multipartOverhead is the slack allowed on top of MaxUploadBytes for form boundaries and headers.
const multipartOverhead = 64 << 10

// ChangeField handles POST /employee/fields/{name} with the new value in "value".
func (h *UIHandlers) ChangeField(w http.ResponseWriter, r *http.Request) {
	v, ok := requireView(w, r)
	if !ok {
		return
	}
	name := r.PathValue("name")
	err := v.Form.Change(r.Context(), name, r.FormValue("value"))
	h.finish(w, r, err, h.fieldFragment(w, v, name))
}

// ChangeFile handles POST /employee/files/{name}, a multipart form with the file in "file".
// Submitting the form without a file clears the field.
func (h *UIHandlers) ChangeFile(w http.ResponseWriter, r *http.Request) {
	v, ok := requireView(w, r)
	if !ok {
		return
	}
	name := r.PathValue("name")
	up, err := h.readUpload(w, r)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	err = v.Form.ChangeFile(r.Context(), name, up)
	h.finish(w, r, err, h.fieldFragment(w, v, name))
}

func (h *UIHandlers) readUpload(w http.ResponseWriter, r *http.Request) (service.Upload, error) {
	limit := h.MaxUploadBytes
	r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)
	if err := r.ParseMultipartForm(limit); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return service.Upload{}, tooLarge(limit)
		}
		return service.Upload{}, apperrors.Wrap(err, apperrors.ErrCodeValidation, "malformed upload")
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, hdr, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return service.Upload{}, nil
	}
	if err != nil {
		return service.Upload{}, apperrors.Wrap(err, apperrors.ErrCodeValidation, "malformed upload")
	}
	defer file.Close()

	if hdr.Size > limit {
		return service.Upload{}, tooLarge(limit)
	}
	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		return service.Upload{}, apperrors.Wrap(err, apperrors.ErrCodeInternal, "read upload")
	}
	if int64(len(data)) > limit {
		return service.Upload{}, tooLarge(limit)
	}
	return service.Upload{
		Filename:    hdr.Filename,
		ContentType: hdr.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func tooLarge(limit int64) error {
	return apperrors.ValidationField("file", fmt.Sprintf("file exceeds %s", humanBytes(limit)))
}

// ClearForm handles POST /employee/clear.
func (h *UIHandlers) ClearForm(w http.ResponseWriter, r *http.Request) {
	v, ok := requireView(w, r)
	if !ok {
		return
	}
	err := v.Form.Clear()
	h.finish(w, r, err, h.formFragment(w, r, v))
}

// SubmitForm handles POST /employee/submit. Nothing is sent to the backend; missing
// required fields are reported through the status slot and highlighted in the form.
func (h *UIHandlers) SubmitForm(w http.ResponseWriter, r *http.Request) {
	v, ok := requireView(w, r)
	if !ok {
		return
	}
	missing := v.Form.Submit(r.Context())
	if len(missing) > 0 {
		w.Header().Set("X-Missing-Fields", strconv.Itoa(len(missing)))
	}
	h.finish(w, r, nil, h.formFragment(w, r, v))
}

// Preview handles GET /previews/{id}. Only the view that acquired a preview can read it.
func (h *UIHandlers) Preview(w http.ResponseWriter, r *http.Request) {
	v, ok := requireView(w, r)
	if !ok {
		return
	}
	content, found := h.Previews.Open(v.ID, r.PathValue("id"))
	if !found {
		WriteAppError(w, apperrors.NotFound("preview not found"))
		return
	}
	w.Header().Set("Content-Type", content.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(content.Data)))
	w.Header().Set("Cache-Control", "private, no-store")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	_, _ = w.Write(content.Data)
}

func (h *UIHandlers) fieldFragment(w http.ResponseWriter, v *service.View, name string) func() error {
	return func() error {
		c, err := v.Form.Control(name)
		if err != nil {
			return err
		}
		return h.T.RenderPartial(w, tmplField, c)
	}
}

func (h *UIHandlers) formFragment(w http.ResponseWriter, r *http.Request, v *service.View) func() error {
	return func() error {
		return h.T.RenderPartial(w, tmplEmployee, h.pageData(r, v, ""))
	}
}
