package web

import (
	"net/http"
	"time"

	"github.com/Olprog59/go-prodtrack/internal/domain"
	"github.com/Olprog59/go-prodtrack/internal/dto"
)

// queryDate reads a YYYY-MM-DD query parameter, def when absent.
// It writes a 400 and returns false when the value is malformed.
func queryDate(w http.ResponseWriter, r *http.Request, name string, def time.Time) (time.Time, bool) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return def, true
	}
	d, err := dto.ParseDate(name, s)
	if err != nil {
		ErrorResponse(w, err.Error(), http.StatusBadRequest)
		return time.Time{}, false
	}
	return d, true
}

func selectionFilter(r *http.Request) domain.SelectionFilter {
	q := r.URL.Query()
	return domain.SelectionFilter{
		Semaine: q.Get("semaine"),
		Jour:    domain.Jour(q.Get("jour")),
		Ligne:   q.Get("ligne"),
	}
}

// Ouvriers / Ouvriers

// ListOuvriers filters by ligne and a name search / Filtre par ligne et recherche sur le nom
func (h *Handler) ListOuvriers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	list, err := h.container.OuvrierSvc.List(r.Context(), domain.OuvrierFilter{
		Ligne:  q.Get("ligne"),
		Search: q.Get("search"),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	jsonResponse(w, dto.ListToDTO(list, dto.OuvrierToDTO))
}

func (h *Handler) GetOuvrier(w http.ResponseWriter, r *http.Request) {
	matricule, ok := pathInt64(w, r, "matricule")
	if !ok {
		return
	}
	o, err := h.container.OuvrierSvc.Get(r.Context(), matricule)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	jsonResponse(w, dto.OuvrierToDTO(o))
}

func (h *Handler) CreateOuvrier(w http.ResponseWriter, r *http.Request) {
	var req dto.OuvrierDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	o, err := h.container.OuvrierSvc.Create(r.Context(), req.ToInput())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	createdResponse(w, dto.OuvrierToDTO(o))
}

func (h *Handler) UpdateOuvrier(w http.ResponseWriter, r *http.Request) {
	matricule, ok := pathInt64(w, r, "matricule")
	if !ok {
		return
	}
	var req dto.OuvrierDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	o, err := h.container.OuvrierSvc.Update(r.Context(), matricule, req.ToInput())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	jsonResponse(w, dto.OuvrierToDTO(o))
}

func (h *Handler) DeleteOuvrier(w http.ResponseWriter, r *http.Request) {
	matricule, ok := pathInt64(w, r, "matricule")
	if !ok {
		return
	}
	if err := h.container.OuvrierSvc.Delete(r.Context(), matricule); err != nil {
		writeServiceError(w, r, err)
		return
	}
	messageResponse(w, "Ouvrier deleted successfully")
}

// Statuts / Présence des ouvriers

// SetStatut upserts the statut of a worker for a date.
func (h *Handler) SetStatut(w http.ResponseWriter, r *http.Request) {
	var req dto.StatutDTOReq
	if !decodeJSON(w, r, &req) {
		return
	}
	date, err := dto.ParseDate("date", req.Date)
	if err != nil {
		ErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}
	st, err := h.container.OuvrierSvc.SetStatut(r.Context(), req.Matricule, date, domain.StatutCode(req.Statut))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	jsonResponse(w, dto.StatutToDTO(st))
}

// ListStatuts returns the statuts of ?date=, today by default.
func (h *Handler) ListStatuts(w http.ResponseWriter, r *http.Request) {
	date, ok := queryDate(w, r, "date", time.Now().UTC())
	if !ok {
		return
	}
	list, err := h.container.OuvrierSvc.StatutsByDate(r.Context(), date)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	jsonResponse(w, dto.ListToDTO(list, dto.StatutToDTO))
}

// StatutsSummary returns counts per statut and the absenteeism rate of a date.
func (h *Handler) StatutsSummary(w http.ResponseWriter, r *http.Request) {
	date, ok := queryDate(w, r, "date", time.Now().UTC())
	if !ok {
		return
	}
	sum, err := h.container.OuvrierSvc.Summary(r.Context(), date)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	jsonResponse(w, sum)
}

// OuvrierStatuts returns a worker's statuts between ?from= and ?to=, the last 30 days by default.
func (h *Handler) OuvrierStatuts(w http.ResponseWriter, r *http.Request) {
	matricule, ok := pathInt64(w, r, "matricule")
	if !ok {
		return
	}
	today := time.Now().UTC()
	from, ok := queryDate(w, r, "from", today.AddDate(0, 0, -30))
	if !ok {
		return
	}
	to, ok := queryDate(w, r, "to", today)
	if !ok {
		return
	}
	list, err := h.container.OuvrierSvc.StatutsByMatricule(r.Context(), matricule, from, to)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	jsonResponse(w, dto.ListToDTO(list, dto.StatutToDTO))
}

func (h *Handler) DeleteStatut(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt64(w, r, "id")
	if !ok {
		return
	}
	if err := h.container.OuvrierSvc.DeleteStatut(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	messageResponse(w, "Statut deleted successfully")
}

// Planning selections / Affectations

func (h *Handler) ListSelections(w http.ResponseWriter, r *http.Request) {
	list, err := h.container.SelectionSvc.List(r.Context(), selectionFilter(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	jsonResponse(w, dto.ListToDTO(list, dto.SelectionToDTO))
}

// CreateSelection assigns a worker to a slot. Unavailable workers, daily
// hours overflow and duplicates answer 409.
func (h *Handler) CreateSelection(w http.ResponseWriter, r *http.Request) {
	var req dto.SelectionDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	sel, err := h.container.SelectionSvc.Create(r.Context(), req.ToInput())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	createdResponse(w, dto.SelectionToDTO(sel))
}

func (h *Handler) DeleteSelection(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt64(w, r, "id")
	if !ok {
		return
	}
	if err := h.container.SelectionSvc.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	messageResponse(w, "Selection deleted successfully")
}

// Rapports / Rapports journaliers

func (h *Handler) ListRapports(w http.ResponseWriter, r *http.Request) {
	list, err := h.container.RapportSvc.List(r.Context(), selectionFilter(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	jsonResponse(w, dto.ListToDTO(list, dto.RapportToDTO))
}

func (h *Handler) GetRapport(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt64(w, r, "id")
	if !ok {
		return
	}
	rapport, err := h.container.RapportSvc.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	jsonResponse(w, dto.RapportToDTO(rapport))
}

// SaveRapport creates or replaces the report of (semaine, jour, ligne, matricule).
func (h *Handler) SaveRapport(w http.ResponseWriter, r *http.Request) {
	var req dto.RapportDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	rapport, err := h.container.RapportSvc.Save(r.Context(), req.ToInput())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	jsonResponse(w, dto.RapportToDTO(rapport))
}

func (h *Handler) DeleteRapport(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt64(w, r, "id")
	if !ok {
		return
	}
	if err := h.container.RapportSvc.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	messageResponse(w, "Rapport deleted successfully")
}
