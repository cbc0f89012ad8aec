package timing

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/libradesk/libradesk/internal/rest"
	"github.com/libradesk/libradesk/internal/utils"
	"github.com/libradesk/libradesk/pkg/branch"
	log "github.com/sirupsen/logrus"
)

type WeekdayRuleDTO struct {
	Day      string `json:"day"`
	IsClosed bool   `json:"isClosed"`
	Open     string `json:"open"`
	Close    string `json:"close"`
}

type OverrideRuleDTO struct {
	Id        string `json:"id"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	IsClosed  bool   `json:"isClosed"`
	Open      string `json:"open"`
	Close     string `json:"close"`
	Note      string `json:"note,omitempty"`
}

type BranchTimingViewDTO struct {
	BranchId   int               `json:"branchId"`
	BranchName string            `json:"branchName"`
	Weekly     []WeekdayRuleDTO  `json:"weekly"`
	Overrides  []OverrideRuleDTO `json:"overrides"`
}

type BranchTimingStateDTO struct {
	Timings *BranchTimingViewDTO `json:"timings,omitempty"`
	State   string               `json:"state"`
	Dirty   bool                 `json:"dirty"`
	Saving  bool                 `json:"saving"`
	Error   string               `json:"error,omitempty"`
}

type WeekdayPatchDTO struct {
	IsClosed *bool   `json:"isClosed"`
	Open     *string `json:"open"`
	Close    *string `json:"close"`
}

type OverridePatchDTO struct {
	StartDate *string `json:"startDate"`
	EndDate   *string `json:"endDate"`
	IsClosed  *bool   `json:"isClosed"`
	Open      *string `json:"open"`
	Close     *string `json:"close"`
	Note      *string `json:"note"`
}

type EffectiveHoursDTO struct {
	Date       string `json:"date"`
	Day        string `json:"day"`
	IsClosed   bool   `json:"isClosed"`
	Open       string `json:"open,omitempty"`
	Close      string `json:"close,omitempty"`
	Source     string `json:"source"`
	OverrideId string `json:"overrideId,omitempty"`
}

type Handler struct {
	registry *Registry
	service  Service
}

func NewHandler(registry *Registry, service Service) *Handler {
	return &Handler{registry: registry, service: service}
}

// GetTimings godoc
// @Summary Get the editing view of a branch's hours
// @Tags Timing
// @Produce json
// @Param branchId path int true "Branch ID"
// @Param reload query bool false "Discard the cached view and reload from storage"
// @Param X-Editor-Session header string false "Editor session"
// @Success 200 {object} BranchTimingStateDTO
// @Failure 404 {object} rest.ErrorResponse "Branch not found"
// @Router /api/branches/{branchId}/timings [get]
func (h *Handler) GetTimings(w http.ResponseWriter, r *http.Request) {
	branchId, ok := branchIdFrom(w, r)
	if !ok {
		return
	}
	page := h.page(r.Context())
	reload := r.URL.Query().Get("reload") == "true"
	if _, err := page.SelectBranch(r.Context(), branchId, reload); err != nil {
		writeTimingError(w, err, "Failed to load timings")
		return
	}
	rest.WriteJSON(w, http.StatusOK, StateToDTO(page.Status(r.Context(), branchId)))
}

// ChangeWeekday godoc
// @Summary Change the weekly hours of one weekday
// @Tags Timing
// @Accept json
// @Produce json
// @Param branchId path int true "Branch ID"
// @Param index path int true "Weekday index, 0 is Monday"
// @Param patch body WeekdayPatchDTO true "Fields to change"
// @Success 200 {object} BranchTimingStateDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid request"
// @Router /api/branches/{branchId}/timings/weekly/{index} [put]
func (h *Handler) ChangeWeekday(w http.ResponseWriter, r *http.Request) {
	branchId, ok := branchIdFrom(w, r)
	if !ok {
		return
	}
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil || index < 0 || index >= len(Weekdays) {
		rest.WriteError(w, http.StatusBadRequest, "Weekday index must be between 0 and 6", "")
		return
	}
	var patch WeekdayPatchDTO
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", "")
		return
	}

	h.edit(w, r, branchId, http.StatusOK, func(e *Editor) BranchTimingView {
		return e.ChangeWeekday(index, WeekdayPatch{IsClosed: patch.IsClosed, Open: patch.Open, Close: patch.Close})
	})
}

// AddOverride godoc
// @Summary Add a date override, closed tomorrow by default
// @Tags Timing
// @Produce json
// @Param branchId path int true "Branch ID"
// @Success 201 {object} BranchTimingStateDTO
// @Router /api/branches/{branchId}/timings/overrides [post]
func (h *Handler) AddOverride(w http.ResponseWriter, r *http.Request) {
	branchId, ok := branchIdFrom(w, r)
	if !ok {
		return
	}
	h.edit(w, r, branchId, http.StatusCreated, func(e *Editor) BranchTimingView {
		return e.AddOverride()
	})
}

// ChangeOverride godoc
// @Summary Change a date override
// @Tags Timing
// @Accept json
// @Produce json
// @Param branchId path int true "Branch ID"
// @Param overrideId path string true "Override ID"
// @Param patch body OverridePatchDTO true "Fields to change"
// @Success 200 {object} BranchTimingStateDTO
// @Failure 404 {object} rest.ErrorResponse "Override not found"
// @Router /api/branches/{branchId}/timings/overrides/{overrideId} [patch]
func (h *Handler) ChangeOverride(w http.ResponseWriter, r *http.Request) {
	branchId, ok := branchIdFrom(w, r)
	if !ok {
		return
	}
	overrideId := mux.Vars(r)["overrideId"]
	var patch OverridePatchDTO
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", "")
		return
	}
	if !h.overrideExists(w, r, branchId, overrideId) {
		return
	}

	h.edit(w, r, branchId, http.StatusOK, func(e *Editor) BranchTimingView {
		return e.ChangeOverride(overrideId, OverridePatch{
			StartDate: patch.StartDate,
			EndDate:   patch.EndDate,
			IsClosed:  patch.IsClosed,
			Open:      patch.Open,
			Close:     patch.Close,
			Note:      patch.Note,
		})
	})
}

// DeleteOverride godoc
// @Summary Remove a date override
// @Tags Timing
// @Produce json
// @Param branchId path int true "Branch ID"
// @Param overrideId path string true "Override ID"
// @Success 200 {object} BranchTimingStateDTO
// @Failure 404 {object} rest.ErrorResponse "Override not found"
// @Router /api/branches/{branchId}/timings/overrides/{overrideId} [delete]
func (h *Handler) DeleteOverride(w http.ResponseWriter, r *http.Request) {
	branchId, ok := branchIdFrom(w, r)
	if !ok {
		return
	}
	overrideId := mux.Vars(r)["overrideId"]
	if !h.overrideExists(w, r, branchId, overrideId) {
		return
	}
	h.edit(w, r, branchId, http.StatusOK, func(e *Editor) BranchTimingView {
		return e.DeleteOverride(overrideId)
	})
}

// SaveTimings godoc
// @Summary Replace the stored hours of a branch with the edited view
// @Tags Timing
// @Produce json
// @Param branchId path int true "Branch ID"
// @Success 200 {object} BranchTimingStateDTO "The view reloaded from storage"
// @Failure 400 {object} rest.ErrorResponse "Override without dates"
// @Failure 409 {object} rest.ErrorResponse "Save in progress"
// @Failure 500 {object} rest.ErrorResponse "Storage error"
// @Router /api/branches/{branchId}/timings/save [post]
func (h *Handler) SaveTimings(w http.ResponseWriter, r *http.Request) {
	branchId, ok := branchIdFrom(w, r)
	if !ok {
		return
	}
	page := h.page(r.Context())
	if _, err := page.SelectBranch(r.Context(), branchId, false); err != nil {
		writeTimingError(w, err, "Failed to load timings")
		return
	}
	if _, err := page.Save(r.Context(), branchId); err != nil {
		writeTimingError(w, err, "Failed to save timings")
		return
	}
	rest.WriteJSON(w, http.StatusOK, StateToDTO(page.Status(r.Context(), branchId)))
}

// GetHours godoc
// @Summary Get the stored hours in force on a date
// @Tags Timing
// @Produce json
// @Param branchId path int true "Branch ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} EffectiveHoursDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid date"
// @Failure 404 {object} rest.ErrorResponse "Branch not found"
// @Router /api/branches/{branchId}/hours [get]
func (h *Handler) GetHours(w http.ResponseWriter, r *http.Request) {
	branchId, ok := branchIdFrom(w, r)
	if !ok {
		return
	}
	date, err := time.Parse(utils.DateLayout, r.URL.Query().Get("date"))
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid date format, expected YYYY-MM-DD", "")
		return
	}
	hours, err := h.service.EffectiveHours(r.Context(), branchId, date)
	if err != nil {
		writeTimingError(w, err, "Failed to resolve hours")
		return
	}
	rest.WriteJSON(w, http.StatusOK, EffectiveHoursToDTO(hours))
}

func (h *Handler) page(ctx context.Context) *Page {
	return h.registry.Page(CurrentSession(ctx))
}

// edit selects the branch, loading it if needed, and applies fn.
func (h *Handler) edit(w http.ResponseWriter, r *http.Request, branchId int, status int, fn func(e *Editor) BranchTimingView) {
	page := h.page(r.Context())
	if _, err := page.SelectBranch(r.Context(), branchId, false); err != nil {
		writeTimingError(w, err, "Failed to load timings")
		return
	}
	if _, err := page.Edit(r.Context(), branchId, fn); err != nil {
		writeTimingError(w, err, "Failed to edit timings")
		return
	}
	rest.WriteJSON(w, status, StateToDTO(page.Status(r.Context(), branchId)))
}

func (h *Handler) overrideExists(w http.ResponseWriter, r *http.Request, branchId int, overrideId string) bool {
	view, err := h.page(r.Context()).SelectBranch(r.Context(), branchId, false)
	if err != nil {
		writeTimingError(w, err, "Failed to load timings")
		return false
	}
	if _, ok := view.Override(overrideId); !ok {
		rest.WriteError(w, http.StatusNotFound, "Override not found", overrideId)
		return false
	}
	return true
}

func branchIdFrom(w http.ResponseWriter, r *http.Request) (int, bool) {
	branchId, err := strconv.Atoi(mux.Vars(r)["branchId"])
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid branch id", "")
		return 0, false
	}
	return branchId, true
}

func writeTimingError(w http.ResponseWriter, err error, message string) {
	switch {
	case errors.Is(err, branch.ErrBranchNotFound):
		rest.WriteError(w, http.StatusNotFound, "Branch not found", "")
	case errors.Is(err, ErrBranchNotLoaded):
		rest.WriteError(w, http.StatusNotFound, "Branch timings not loaded", "")
	case errors.Is(err, ErrSaveInProgress):
		rest.WriteError(w, http.StatusConflict, "A save is already in progress for this branch", "")
	case errors.Is(err, ErrOverrideWithoutDates):
		rest.WriteError(w, http.StatusBadRequest, "Every override needs a start or end date", err.Error())
	default:
		log.Errorf("%s: %v", message, err)
		rest.WriteError(w, http.StatusInternalServerError, message, err.Error())
	}
}

func ViewToDTO(view BranchTimingView) BranchTimingViewDTO {
	dto := BranchTimingViewDTO{
		BranchId:   view.BranchId,
		BranchName: view.BranchName,
		Weekly:     make([]WeekdayRuleDTO, 0, len(view.Weekly)),
		Overrides:  make([]OverrideRuleDTO, 0, len(view.Overrides)),
	}
	for _, rule := range view.Weekly {
		dto.Weekly = append(dto.Weekly, WeekdayRuleDTO{
			Day:      string(rule.Day),
			IsClosed: rule.IsClosed,
			Open:     rule.Open,
			Close:    rule.Close,
		})
	}
	for _, o := range view.Overrides {
		dto.Overrides = append(dto.Overrides, OverrideRuleDTO{
			Id:        o.Id,
			StartDate: o.StartDate,
			EndDate:   o.EndDate,
			IsClosed:  o.IsClosed,
			Open:      o.Open,
			Close:     o.Close,
			Note:      o.Note,
		})
	}
	return dto
}

func StateToDTO(state BranchTimingState) BranchTimingStateDTO {
	dto := BranchTimingStateDTO{
		State:  string(state.State),
		Dirty:  state.Dirty,
		Saving: state.Saving,
		Error:  state.ErrorMessage,
	}
	if state.View != nil {
		view := ViewToDTO(*state.View)
		dto.Timings = &view
	}
	return dto
}

func EffectiveHoursToDTO(hours EffectiveHours) EffectiveHoursDTO {
	return EffectiveHoursDTO{
		Date:       hours.Date,
		Day:        string(hours.Day),
		IsClosed:   hours.IsClosed,
		Open:       hours.Open,
		Close:      hours.Close,
		Source:     string(hours.Source),
		OverrideId: hours.OverrideId,
	}
}
