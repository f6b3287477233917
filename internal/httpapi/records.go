package httpapi

import (
	"context"
	"net/http"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-kaizen/kaizen"
)

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	in, err := h.decodeCreate(w, r)
	if err != nil {
		h.fail(w, r, "Failed to add Kaizen detail", err)
		return
	}

	record := in.record
	record.Image = ""
	if in.image != nil {
		record.Image, err = h.upload(ctx, in.image)
		if err != nil {
			h.fail(w, r, "Failed to add Kaizen detail", err)
			return
		}
	}

	created, err := h.repo.Create(ctx, record)
	if err != nil {
		h.fail(w, r, "Failed to add Kaizen detail", err)
		return
	}

	writeJSON(w, http.StatusCreated, response{
		Success: true,
		Message: "Kaizen detail added successfully",
		Data:    created,
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	records, err := h.repo.List(r.Context())
	if err != nil {
		h.fail(w, r, "Failed to fetch Kaizen entries", err)
		return
	}
	writeJSON(w, http.StatusOK, response{Success: true, Data: records})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	record, err := h.repo.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, r, messageFor(err, "Kaizen not found", "Server error"), err)
		return
	}
	writeJSON(w, http.StatusOK, response{Success: true, Data: record})
}

// handleUpdateDetail answers with the bare record rather than an envelope.
func (h *Handler) handleUpdateDetail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	detail, err := h.decodeDetail(w, r)
	if err != nil {
		h.fail(w, r, "Failed to update Kaizen", err)
		return
	}

	updatedImage := ""
	if detail.image != nil {
		updatedImage, err = h.upload(ctx, detail.image)
		if err != nil {
			h.fail(w, r, "Failed to update Kaizen", err)
			return
		}
	}

	patch := kaizen.DetailPatch(detail.Detail, updatedImage, h.now().UTC())
	updated, err := h.repo.Update(ctx, id, patch)
	if err != nil {
		h.fail(w, r, messageFor(err, "Kaizen not found", "Failed to update Kaizen"), err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) fieldUpdate(f field) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		value, err := h.decodeField(w, r, f.name)
		if err != nil {
			h.fail(w, r, "Error updating "+f.name, err)
			return
		}
		if err := f.validate(value); err != nil {
			h.fail(w, r, f.label+" is required", err)
			return
		}

		updated, err := h.repo.Update(r.Context(), r.PathValue("id"), f.patch(value, h.now().UTC()))
		if err != nil {
			h.fail(w, r, messageFor(err, "Kaizen not found", "Error updating "+f.name), err)
			return
		}

		writeJSON(w, http.StatusOK, response{
			Success: true,
			Message: f.label + " updated successfully",
			Data:    updated,
		})
	}
}

func (h *Handler) upload(ctx context.Context, f *upload) (string, error) {
	defer f.Close()
	if h.uploader == nil {
		return "", goerrors.New("image uploads are not configured", goerrors.CategoryInternal)
	}
	return h.uploader.Upload(ctx, f)
}
