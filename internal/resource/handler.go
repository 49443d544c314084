package resource

import (
	"cmp"
	"net/http"

	"github.com/go-chi/chi"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/campus/internal/authz"
	perrors "github.com/mesh-intelligence/campus/internal/platform/errors"
	kithttp "github.com/mesh-intelligence/campus/internal/transport/http"
	"github.com/mesh-intelligence/campus/pkg/types"
)

// Handler is the HTTP binding of a resource Service.
type Handler[K cmp.Ordered, R types.Record[K]] struct {
	chi.Router
	api *kithttp.API
	log *zap.Logger
	svc *Service[K, R]
}

// NewHandler returns a handler serving svc under its definition's path:
//
//	GET    /all           list       user
//	GET    /?{key}=k      get        user
//	POST   /post?fields   create     admin
//	PUT    /?{key}=k      update     admin
//	DELETE /?{key}=k      delete     admin
func NewHandler[K cmp.Ordered, R types.Record[K]](log *zap.Logger, svc *Service[K, R]) *Handler[K, R] {
	h := &Handler[K, R]{
		api: kithttp.NewAPI(kithttp.WithLog(log)),
		log: log,
		svc: svc,
	}

	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(authz.Require(authz.User, h.api))
		r.Get("/all", h.handleList)
		r.Get("/", h.handleGet)
	})
	r.Group(func(r chi.Router) {
		r.Use(authz.Require(authz.Admin, h.api))
		r.Post("/post", h.handleCreate)
		r.Put("/", h.handleUpdate)
		r.Delete("/", h.handleDelete)
	})
	h.Router = r
	return h
}

// Prefix is the mount point of the handler.
func (h *Handler[K, R]) Prefix() string {
	return "/api/" + h.svc.def.Path
}

func (h *Handler[K, R]) key(r *http.Request) (K, error) {
	return h.svc.def.parseKey(r.URL.Query().Get(h.svc.def.KeyParam))
}

func (h *Handler[K, R]) handleList(w http.ResponseWriter, r *http.Request) {
	recs, err := h.svc.List(r.Context())
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	h.api.Respond(w, r, http.StatusOK, recs)
}

func (h *Handler[K, R]) handleGet(w http.ResponseWriter, r *http.Request) {
	key, err := h.key(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	rec, err := h.svc.Get(r.Context(), key)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	h.api.Respond(w, r, http.StatusOK, rec)
}

func (h *Handler[K, R]) handleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.api.Err(w, r, &perrors.Error{
			Code: perrors.EInvalid,
			Msg:  "malformed request parameters",
			Err:  err,
		})
		return
	}

	rec, err := h.svc.def.bindForm(r.Form)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	saved, err := h.svc.Create(r.Context(), rec)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	h.log.Debug("Record created",
		zap.String("type", h.svc.def.TypeName),
		zap.Any("key", saved.RecordKey()))
	h.api.Respond(w, r, http.StatusOK, saved)
}

func (h *Handler[K, R]) handleUpdate(w http.ResponseWriter, r *http.Request) {
	key, err := h.key(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	incoming := h.svc.def.Schema.New()
	if err := h.api.DecodeJSON(r.Body, incoming); err != nil {
		h.api.Err(w, r, err)
		return
	}

	saved, err := h.svc.Update(r.Context(), key, incoming)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	h.api.Respond(w, r, http.StatusOK, saved)
}

func (h *Handler[K, R]) handleDelete(w http.ResponseWriter, r *http.Request) {
	key, err := h.key(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	msg, err := h.svc.Delete(r.Context(), key)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	h.api.Respond(w, r, http.StatusOK, msg)
}
