package family

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/familyhub/familyhub/internal/rest"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type FamilyMemberDTO struct {
	Uid       string    `json:"uid"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	Role      string    `json:"role,omitempty"`
	AvatarUrl string    `json:"avatarUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// ListMembers godoc
// @Summary List family members
// @Tags Family
// @Produce json
// @Success 200 {array} FamilyMemberDTO
// @Failure 403 {string} string "User not found"
// @Router /api/family/member [get]
// @Security XUserId
func (h *Handler) ListMembers(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	log.Trace("Listing family members")

	members, err := h.service.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	dtos := make([]FamilyMemberDTO, 0, len(members))
	for _, member := range members {
		dtos = append(dtos, memberToDTO(member))
	}
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// GetMember godoc
// @Summary Get a family member
// @Tags Family
// @Produce json
// @Param memberUid path string true "Family member UID"
// @Success 200 {object} FamilyMemberDTO
// @Failure 404 {string} string "Not found"
// @Router /api/family/member/{memberUid} [get]
// @Security XUserId
func (h *Handler) GetMember(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	member, err := h.service.Get(r.Context(), mux.Vars(r)["memberUid"])
	if err != nil {
		h.handleError(w, err)
		return
	}
	if err := json.NewEncoder(w).Encode(memberToDTO(member)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// CreateMember godoc
// @Summary Add a family member
// @Tags Family
// @Accept json
// @Produce json
// @Param member body FamilyMemberDTO true "Family member"
// @Success 201 {object} FamilyMemberDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid request"
// @Router /api/family/member [post]
// @Security XUserId
func (h *Handler) CreateMember(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var dto FamilyMemberDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", "")
		return
	}
	log.Tracef("Creating family member: %+v", dto)

	created, err := h.service.Create(r.Context(), dtoToMember(dto))
	if err != nil {
		h.handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(memberToDTO(created)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// UpdateMember godoc
// @Summary Update a family member
// @Tags Family
// @Accept json
// @Produce json
// @Param memberUid path string true "Family member UID"
// @Param member body FamilyMemberDTO true "Family member"
// @Success 200 {object} FamilyMemberDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid request"
// @Failure 404 {string} string "Not found"
// @Router /api/family/member/{memberUid} [put]
// @Security XUserId
func (h *Handler) UpdateMember(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var dto FamilyMemberDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", "")
		return
	}
	member := dtoToMember(dto)
	member.Uid = mux.Vars(r)["memberUid"]

	updated, err := h.service.Update(r.Context(), member)
	if err != nil {
		h.handleError(w, err)
		return
	}
	if err := json.NewEncoder(w).Encode(memberToDTO(updated)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// DeleteMember godoc
// @Summary Remove a family member
// @Description Events assigned to the member become unassigned
// @Tags Family
// @Param memberUid path string true "Family member UID"
// @Success 204 "No Content"
// @Failure 404 {string} string "Not found"
// @Router /api/family/member/{memberUid} [delete]
// @Security XUserId
func (h *Handler) DeleteMember(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), mux.Vars(r)["memberUid"]); err != nil {
		h.handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UploadAvatar godoc
// @Summary Upload a family member avatar
// @Description Upload an avatar image (max 3MB)
// @Tags Family
// @Accept multipart/form-data
// @Produce json
// @Param memberUid path string true "Family member UID"
// @Param avatar formData file true "Avatar image"
// @Success 200 {object} FamilyMemberDTO
// @Failure 400 {object} rest.ErrorResponse "Image too large or invalid"
// @Router /api/family/member/{memberUid}/avatar [put]
// @Security XUserId
func (h *Handler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	log.Trace("Uploading avatar")

	// leave room for the multipart envelope around the image
	r.Body = http.MaxBytesReader(w, r.Body, MaxAvatarSize+(64<<10))
	if err := r.ParseMultipartForm(MaxAvatarSize); err != nil {
		log.Debugf("File is too large: %v", err)
		rest.WriteError(w, http.StatusBadRequest, "Image is too large",
			"Maximum size is 3MB. Please try again with a smaller image.")
		return
	}

	file, header, err := r.FormFile("avatar")
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Missing avatar file", err.Error())
		return
	}
	defer file.Close()
	log.Debugf("Uploaded avatar %s of %d bytes", header.Filename, header.Size)

	image, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	member, err := h.service.UploadAvatar(r.Context(), mux.Vars(r)["memberUid"], image)
	if err != nil {
		h.handleError(w, err)
		return
	}
	if err := json.NewEncoder(w).Encode(memberToDTO(member)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// GetAvatar godoc
// @Summary Get a family member avatar
// @Tags Family
// @Produce image/jpeg
// @Param memberUid path string true "Family member UID"
// @Success 200 {file} image/jpeg
// @Failure 404 {string} string "Not found"
// @Router /api/family/member/{memberUid}/avatar [get]
// @Security XUserId
func (h *Handler) GetAvatar(w http.ResponseWriter, r *http.Request) {
	image, err := h.service.GetAvatar(r.Context(), mux.Vars(r)["memberUid"])
	if err != nil {
		h.handleError(w, err)
		return
	}
	w.Header().Set("Content-Type", http.DetectContentType(image))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(image); err != nil {
		log.Errorf("failed to write avatar: %v", err)
	}
}

// DeleteAvatar godoc
// @Summary Delete a family member avatar
// @Tags Family
// @Param memberUid path string true "Family member UID"
// @Success 204 "No Content"
// @Router /api/family/member/{memberUid}/avatar [delete]
// @Security XUserId
func (h *Handler) DeleteAvatar(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteAvatar(r.Context(), mux.Vars(r)["memberUid"]); err != nil {
		h.handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidMember):
		rest.WriteError(w, http.StatusBadRequest, "Invalid family member", err.Error())
	case errors.Is(err, ErrAvatarTooLarge):
		rest.WriteError(w, http.StatusBadRequest, "Image is too large",
			"Maximum size is 3MB. Please try again with a smaller image.")
	case errors.Is(err, ErrAvatarNotImage):
		rest.WriteError(w, http.StatusBadRequest, "File is not an image", "")
	case errors.Is(err, ErrMemberNotFound), errors.Is(err, ErrAvatarNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func memberToDTO(member FamilyMember) FamilyMemberDTO {
	return FamilyMemberDTO{
		Uid:       member.Uid,
		Name:      member.Name,
		Color:     member.Color,
		Role:      string(member.Role),
		AvatarUrl: member.AvatarUrl,
		CreatedAt: member.CreatedAt,
		UpdatedAt: member.UpdatedAt,
	}
}

func dtoToMember(dto FamilyMemberDTO) FamilyMember {
	return FamilyMember{
		Uid:   dto.Uid,
		Name:  dto.Name,
		Color: dto.Color,
		Role:  Role(dto.Role),
	}
}
