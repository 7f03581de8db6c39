package handler

import (
	"net/http"
	"time"

	"gestmed/internal/delivery/dto"
	"gestmed/internal/delivery/http/middleware"
	"gestmed/pkg/response"
)

// SystemHandler serves the endpoints every module exposes.
type SystemHandler struct {
	identityVerified bool
	now              func() time.Time
}

// NewSystemHandler takes whether identity token signatures are checked.
func NewSystemHandler(identityVerified bool) *SystemHandler {
	return &SystemHandler{
		identityVerified: identityVerified,
		now:              time.Now,
	}
}

func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	response.OK(w, dto.HealthResponse{
		Status:    "OK",
		Timestamp: h.now().UTC().Format(time.RFC3339Nano),
	})
}

// Me echoes the identity forwarded by the OAuth2 proxy.
func (h *SystemHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetIdentityFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	response.OK(w, dto.IdentityResponse{
		Subject:           claims.Subject,
		Email:             claims.Email,
		PreferredUsername: claims.PreferredUsername,
		Name:              claims.Name,
		Groups:            claims.Groups,
		Verified:          h.identityVerified,
	})
}
