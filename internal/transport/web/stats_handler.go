package web

import (
	"net/http"
	"strconv"
	"time"
)

// Statistics / Statistiques de production

func (h *Handler) SemaineStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.container.StatsSvc.Semaine(r.Context(), r.PathValue("semaine"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	jsonResponse(w, stats)
}

// CauseStats aggregates the 7M causes of ?semaine=, optionally for one ?ligne=.
func (h *Handler) CauseStats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	stats, err := h.container.StatsSvc.Causes(r.Context(), q.Get("semaine"), q.Get("ligne"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	jsonResponse(w, stats)
}

func (h *Handler) ReferenceStats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	stats, err := h.container.StatsSvc.References(r.Context(), q.Get("semaine"), q.Get("ligne"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	jsonResponse(w, stats)
}

// LigneStats returns the weekly history of a production line.
func (h *Handler) LigneStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.container.StatsSvc.Ligne(r.Context(), r.PathValue("ligne"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	jsonResponse(w, stats)
}

// MoisStats returns the monthly totals of a year / Totaux mensuels d'une année
func (h *Handler) MoisStats(w http.ResponseWriter, r *http.Request) {
	annee, err := strconv.Atoi(r.PathValue("annee"))
	if err != nil {
		ErrorResponse(w, "Invalid annee", http.StatusBadRequest)
		return
	}
	stats, err := h.container.StatsSvc.Mois(r.Context(), annee)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	jsonResponse(w, stats)
}

// Dashboard summarizes ?semaine=, the week containing today when absent.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	today := time.Now().UTC()
	semaine := r.URL.Query().Get("semaine")
	if semaine == "" {
		current, err := h.container.SemaineSvc.Current(r.Context(), today)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		semaine = current.Nom
	}

	dash, err := h.container.StatsSvc.Dashboard(r.Context(), semaine, today)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	jsonResponse(w, dash)
}

func (h *Handler) ExportStats(w http.ResponseWriter, r *http.Request) {
	semaine := r.URL.Query().Get("semaine")
	if semaine == "" {
		ErrorResponse(w, "semaine is required", http.StatusBadRequest)
		return
	}
	data, err := h.container.StatsSvc.Export(r.Context(), semaine)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	xlsxResponse(w, "stats-"+semaine+".xlsx", data)
}
