package web

import (
	"net/http"

	"github.com/Olprog59/go-prodtrack/internal/domain"
	"github.com/Olprog59/go-prodtrack/internal/dto"
	"github.com/Olprog59/go-prodtrack/internal/service"
)

// ListPlanifications filters by semaine, jour, ligne and reference query parameters.
func (h *Handler) ListPlanifications(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	plans, err := h.container.PlanificationSvc.List(r.Context(), domain.PlanificationFilter{
		Semaine:   q.Get("semaine"),
		Jour:      domain.Jour(q.Get("jour")),
		Ligne:     q.Get("ligne"),
		Reference: q.Get("reference"),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	jsonResponse(w, dto.ListToDTO(plans, dto.PlanificationToDTO))
}

func (h *Handler) GetPlanification(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt64(w, r, "id")
	if !ok {
		return
	}
	p, err := h.container.PlanificationSvc.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	jsonResponse(w, dto.PlanificationToDTO(p))
}

func (h *Handler) CreatePlanification(w http.ResponseWriter, r *http.Request) {
	var req dto.PlanificationDTOReq
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := h.container.PlanificationSvc.Create(r.Context(), req.ToInput())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	createdResponse(w, dto.PlanificationToDTO(p))
}

// CreatePlanificationBatch imports a whole planning / Importe un planning complet
// Nothing is stored when one entry is rejected.
func (h *Handler) CreatePlanificationBatch(w http.ResponseWriter, r *http.Request) {
	var reqs []dto.PlanificationDTOReq
	if !decodeJSON(w, r, &reqs) {
		return
	}
	inputs := make([]service.PlanificationInput, len(reqs))
	for i, req := range reqs {
		inputs[i] = req.ToInput()
	}
	created, err := h.container.PlanificationSvc.CreateBatch(r.Context(), inputs)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	createdResponse(w, dto.ListToDTO(created, dto.PlanificationToDTO))
}

func (h *Handler) UpdatePlanification(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt64(w, r, "id")
	if !ok {
		return
	}
	var req dto.PlanningUpdateDTOReq
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := h.container.PlanificationSvc.Update(r.Context(), id, req.ToUpdate())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	jsonResponse(w, dto.PlanificationToDTO(p))
}

// DeclareProduction records produced quantities / Déclare les quantités produites
// The non-conformity of the slot follows the new deltaProd.
func (h *Handler) DeclareProduction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt64(w, r, "id")
	if !ok {
		return
	}
	var req dto.DeclarationDTOReq
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := h.container.PlanificationSvc.DeclareProduction(r.Context(), id, req.DecProduction, req.DecMagasin)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	jsonResponse(w, dto.PlanificationToDTO(p))
}

func (h *Handler) DeletePlanification(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt64(w, r, "id")
	if !ok {
		return
	}
	if err := h.container.PlanificationSvc.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	messageResponse(w, "Planification deleted successfully")
}

// ExportPlanifications downloads the week's planning as xlsx.
func (h *Handler) ExportPlanifications(w http.ResponseWriter, r *http.Request) {
	semaine := r.URL.Query().Get("semaine")
	if semaine == "" {
		ErrorResponse(w, "semaine is required", http.StatusBadRequest)
		return
	}
	data, err := h.container.PlanificationSvc.Export(r.Context(), semaine)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	xlsxResponse(w, "planification-"+semaine+".xlsx", data)
}

// Non-conformities / Non-conformités

// ListNonConformites filters by semaine, ligne and statut query parameters.
func (h *Handler) ListNonConformites(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	list, err := h.container.NonConformiteSvc.List(r.Context(), domain.NonConfFilter{
		Semaine: q.Get("semaine"),
		Ligne:   q.Get("ligne"),
		Statut:  domain.NonConfStatut(q.Get("statut")),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	jsonResponse(w, dto.ListToDTO(list, dto.NonConformiteToDTO))
}

func (h *Handler) GetNonConformite(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt64(w, r, "id")
	if !ok {
		return
	}
	nc, err := h.container.NonConformiteSvc.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	jsonResponse(w, dto.NonConformiteToDTO(nc))
}

// GetPlanificationNonConformite returns the non-conformity of a planification.
func (h *Handler) GetPlanificationNonConformite(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt64(w, r, "id")
	if !ok {
		return
	}
	nc, err := h.container.NonConformiteSvc.GetByPlanification(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	jsonResponse(w, dto.NonConformiteToDTO(nc))
}

func (h *Handler) NonConformiteHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt64(w, r, "id")
	if !ok {
		return
	}
	list, err := h.container.NonConformiteSvc.History(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	jsonResponse(w, dto.ListToDTO(list, dto.SaisieToDTO))
}

// DeclareCauses stores the 7M causes of a shortfall / Saisit les causes 7M d'un écart
func (h *Handler) DeclareCauses(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt64(w, r, "id")
	if !ok {
		return
	}
	var req dto.CausesDTOReq
	if !decodeJSON(w, r, &req) {
		return
	}
	userID, _ := UserIDFrom(r.Context())
	nc, err := h.container.NonConformiteSvc.DeclareCauses(r.Context(), id, req.ToInput(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	jsonResponse(w, dto.NonConformiteToDTO(nc))
}

func (h *Handler) DeleteNonConformite(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt64(w, r, "id")
	if !ok {
		return
	}
	if err := h.container.NonConformiteSvc.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	messageResponse(w, "Non-conformity deleted successfully")
}
