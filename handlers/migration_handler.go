package handlers

import (
	"net/http"

	"github.com/ligadelmazo/backend/services"
)

type MigrationHandler struct {
	migrationService services.MigrationService
}

func NewMigrationHandler(migrationService services.MigrationService) *MigrationHandler {
	return &MigrationHandler{migrationService: migrationService}
}

func (h *MigrationHandler) Status(w http.ResponseWriter, r *http.Request) {
	status, err := h.migrationService.Status(r.Context())
	if err != nil {
		mapServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, envelope{
		"migracion": status,
		"completa":  status.Complete(),
	})
}

func (h *MigrationHandler) Apply(w http.ResponseWriter, r *http.Request) {
	status, err := h.migrationService.ApplyApprovalSystem(r.Context())
	if err != nil {
		mapServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, envelope{
		"message":   "Migración aplicada correctamente",
		"migracion": status,
	})
}
