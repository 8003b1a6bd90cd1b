package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"go-finance-tracker/internal/middleware"
	"go-finance-tracker/internal/model"
	"go-finance-tracker/internal/service"
	"go-finance-tracker/pkg/apierror"
)

type RecordHandler struct {
	service *service.RecordService
}

func NewRecordHandler(service *service.RecordService) *RecordHandler {
	return &RecordHandler{service: service}
}

func userIDFromRequest(r *http.Request) (int64, bool) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok || claims.UserID < 1 {
		return 0, false
	}
	return claims.UserID, true
}

func (h *RecordHandler) Create(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	userID, ok := userIDFromRequest(r)
	if !ok {
		writeError(w, apierror.Unauthorized("not logged in or invalid token"))
		return
	}

	var payload model.CreateRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.BadRequest("invalid JSON body"))
		return
	}

	id, err := h.service.Create(r.Context(), userID, payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.CreateRecordResponse{Message: "created", ID: id})
}

func (h *RecordHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(r)
	if !ok {
		writeError(w, apierror.Unauthorized("not logged in or invalid token"))
		return
	}

	query := r.URL.Query()
	page, _ := strconv.Atoi(query.Get("page"))
	pageSize, _ := strconv.Atoi(query.Get("pageSize"))

	records, total, err := h.service.List(r.Context(), userID, service.ListQuery{
		Page:      page,
		PageSize:  pageSize,
		StartDate: query.Get("startDate"),
		EndDate:   query.Get("endDate"),
		Type:      query.Get("type"),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.RecordListResponse{List: records, Total: total})
}

func (h *RecordHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(r)
	if !ok {
		writeError(w, apierror.Unauthorized("not logged in or invalid token"))
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, apierror.BadRequest("invalid record id"))
		return
	}

	if err := h.service.Delete(r.Context(), userID, id); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.SimpleResponse{Message: "deleted"})
}

func (h *RecordHandler) Categories(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(r)
	if !ok {
		writeError(w, apierror.Unauthorized("not logged in or invalid token"))
		return
	}

	list, err := h.service.Categories(r.Context(), userID, r.URL.Query().Get("type"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.CategoryListResponse{List: list})
}

func (h *RecordHandler) Summary(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(r)
	if !ok {
		writeError(w, apierror.Unauthorized("not logged in or invalid token"))
		return
	}

	query := r.URL.Query()
	summary, err := h.service.Summarize(r.Context(), userID, query.Get("startDate"), query.Get("endDate"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.SummaryResponse{Summary: summary})
}
