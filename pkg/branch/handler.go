package branch

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/libradesk/libradesk/internal/rest"
)

type BranchDTO struct {
	Id        int     `json:"id"`
	Name      string  `json:"name"`
	Address   string  `json:"address"`
	ManagerId *string `json:"managerId"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// ListBranches godoc
// @Summary List library branches
// @Tags Branch
// @Produce json
// @Success 200 {array} BranchDTO
// @Router /api/branches [get]
func (h *Handler) ListBranches(w http.ResponseWriter, r *http.Request) {
	branches, err := h.service.ListBranches(r.Context())
	if err != nil {
		rest.WriteError(w, http.StatusInternalServerError, "Failed to load branches", err.Error())
		return
	}
	dtos := make([]BranchDTO, 0, len(branches))
	for _, b := range branches {
		dtos = append(dtos, ToDTO(b))
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

// CreateBranch godoc
// @Summary Create a library branch
// @Tags Branch
// @Accept json
// @Produce json
// @Param branch body object{name=string,address=string} true "New branch"
// @Success 201 {object} BranchDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid request"
// @Router /api/branches [post]
func (h *Handler) CreateBranch(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Name    string `json:"name"`
		Address string `json:"address"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", "")
		return
	}

	created, err := h.service.CreateBranch(r.Context(), request.Name, request.Address)
	if err != nil {
		if errors.Is(err, ErrBranchNameRequired) {
			rest.WriteError(w, http.StatusBadRequest, "Branch name is required", "")
			return
		}
		rest.WriteError(w, http.StatusInternalServerError, "Failed to create branch", err.Error())
		return
	}
	rest.WriteJSON(w, http.StatusCreated, ToDTO(created))
}

func ToDTO(b Branch) BranchDTO {
	return BranchDTO{
		Id:        b.Id,
		Name:      b.Name,
		Address:   b.Address,
		ManagerId: b.ManagerId,
	}
}
