package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/assoc-admin/internal/auth"
	"github.com/ignite/assoc-admin/internal/domain"
	"github.com/ignite/assoc-admin/internal/listing"
	"github.com/ignite/assoc-admin/internal/pkg/httputil"
	"github.com/ignite/assoc-admin/internal/service/publication"
)

func (h *Handlers) ListPublications(w http.ResponseWriter, r *http.Request) {
	page, err := h.svc.Publications.List(r.Context(), listing.FromRequest(r))
	if err != nil {
		respondError(w, r, "load publications", err)
		return
	}
	httputil.OK(w, page)
}

func (h *Handlers) GetPublication(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Publications.Get(r.Context(), idParam(r))
	if err != nil {
		respondError(w, r, "load the publication", err)
		return
	}
	httputil.OK(w, p)
}

func (h *Handlers) CreatePublication(w http.ResponseWriter, r *http.Request) {
	var in publication.CreateInput
	if !httputil.Decode(w, r, &in) {
		return
	}
	in.SubmittedBy = auth.Actor(r.Context())
	p, err := h.svc.Publications.Create(r.Context(), in)
	if err != nil {
		respondError(w, r, "create the publication", err)
		return
	}
	httputil.Notify(w, http.StatusCreated, httputil.NoticeSuccess, "Publication created", p)
}

func (h *Handlers) DeletePublication(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Publications.Delete(r.Context(), idParam(r)); err != nil {
		respondError(w, r, "delete the publication", err)
		return
	}
	httputil.Success(w, "Publication deleted", nil)
}

type transition struct {
	run     func(s *publication.Service, ctx context.Context, id string) error
	message string
}

var transitions = map[string]transition{
	"submit":  {(*publication.Service).Submit, "Publication submitted for review"},
	"approve": {(*publication.Service).Approve, "Publication approved"},
	"reject":  {(*publication.Service).Reject, "Publication rejected"},
	"publish": {(*publication.Service).Publish, "Publication published"},
	"archive": {(*publication.Service).Archive, "Publication archived"},
	"revise":  {(*publication.Service).Revise, "Publication moved back to draft"},
}

// TransitionPublication moves a publication along its lifecycle.
func (h *Handlers) TransitionPublication(w http.ResponseWriter, r *http.Request) {
	action := chi.URLParam(r, "action")
	t, ok := transitions[action]
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", "Not found")
		return
	}
	if err := t.run(h.svc.Publications, r.Context(), idParam(r)); err != nil {
		respondError(w, r, action+" the publication", err)
		return
	}
	httputil.Success(w, t.message, nil)
}

func (h *Handlers) ListReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.svc.Publications.Reviews(r.Context(), idParam(r))
	if err != nil {
		respondError(w, r, "load reviews", err)
		return
	}
	if reviews == nil {
		reviews = []domain.Review{}
	}
	httputil.OK(w, reviews)
}

func (h *Handlers) AddReview(w http.ResponseWriter, r *http.Request) {
	var in publication.ReviewInput
	if !httputil.Decode(w, r, &in) {
		return
	}
	in.Reviewer = auth.Actor(r.Context())
	rv, err := h.svc.Publications.AddReview(r.Context(), idParam(r), in)
	if err != nil {
		respondError(w, r, "save the review", err)
		return
	}
	httputil.Notify(w, http.StatusCreated, httputil.NoticeSuccess, "Review saved", rv)
}

// UploadPublicationFile stores the multipart "file" field.
func (h *Handlers) UploadPublicationFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid", "Upload a file in the \"file\" field (max "+strconv.FormatInt(h.maxUpload>>20, 10)+" MB)")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid", "Upload a file in the \"file\" field")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	key, err := h.svc.Publications.AttachFile(r.Context(), idParam(r), header.Filename, contentType, file)
	if err != nil {
		respondError(w, r, "upload the file", err)
		return
	}
	httputil.Success(w, "File uploaded", map[string]string{"file_key": key})
}

// DownloadPublicationFile streams the stored file.
func (h *Handlers) DownloadPublicationFile(w http.ResponseWriter, r *http.Request) {
	obj, name, err := h.svc.Publications.OpenFile(r.Context(), idParam(r))
	if err != nil {
		respondError(w, r, "open the file", err)
		return
	}
	defer obj.Body.Close()

	w.Header().Set("Content-Type", obj.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	if obj.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(obj.Size, 10))
	}
	if _, err := io.Copy(w, obj.Body); err != nil {
		log.Warn("file download interrupted", "id", idParam(r), "error", err)
	}
}

type importRequest struct {
	URL string `json:"url"`
}

// ImportPublications creates drafts from an RSS or Atom feed.
func (h *Handlers) ImportPublications(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	res, err := h.svc.Publications.Import(r.Context(), req.URL, auth.Actor(r.Context()))
	if err != nil {
		respondError(w, r, "import the feed", err)
		return
	}
	kind := httputil.NoticeSuccess
	if len(res.Created) == 0 {
		kind = httputil.NoticeInfo
	}
	httputil.Notify(w, http.StatusOK, kind,
		fmt.Sprintf("Imported %d publications, skipped %d already imported", len(res.Created), res.Skipped), res)
}
