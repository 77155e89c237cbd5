package web

import (
	"net/http"
	"time"

	"github.com/Olprog59/go-prodtrack/internal/dto"
)

// Products / Produits

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.container.ProductSvc.List(r.Context(), r.URL.Query().Get("ligne"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	jsonResponse(w, dto.ListToDTO(products, dto.ProductToDTO))
}

// ListLignes returns the distinct production lines / Retourne les lignes de production
func (h *Handler) ListLignes(w http.ResponseWriter, r *http.Request) {
	lignes, err := h.container.ProductSvc.ListLignes(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	jsonResponse(w, lignes)
}

// ListReferences returns the references produced on a line.
func (h *Handler) ListReferences(w http.ResponseWriter, r *http.Request) {
	refs, err := h.container.ProductSvc.ListReferences(r.Context(), r.PathValue("ligne"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	jsonResponse(w, refs)
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt64(w, r, "id")
	if !ok {
		return
	}
	p, err := h.container.ProductSvc.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	jsonResponse(w, dto.ProductToDTO(p))
}

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req dto.ProductDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := h.container.ProductSvc.Create(r.Context(), req.Ligne, req.Reference)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	createdResponse(w, dto.ProductToDTO(p))
}

func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt64(w, r, "id")
	if !ok {
		return
	}
	var req dto.ProductDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := h.container.ProductSvc.Update(r.Context(), id, req.Ligne, req.Reference)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	jsonResponse(w, dto.ProductToDTO(p))
}

func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt64(w, r, "id")
	if !ok {
		return
	}
	if err := h.container.ProductSvc.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	messageResponse(w, "Product deleted successfully")
}

// Semaines / Semaines de production

func (h *Handler) ListSemaines(w http.ResponseWriter, r *http.Request) {
	semaines, err := h.container.SemaineSvc.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	jsonResponse(w, dto.ListToDTO(semaines, dto.SemaineToDTO))
}

// CurrentSemaine returns the week containing ?date=YYYY-MM-DD, today by default.
func (h *Handler) CurrentSemaine(w http.ResponseWriter, r *http.Request) {
	date := time.Now().UTC()
	if s := r.URL.Query().Get("date"); s != "" {
		var err error
		if date, err = dto.ParseDate("date", s); err != nil {
			ErrorResponse(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	sem, err := h.container.SemaineSvc.Current(r.Context(), date)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	jsonResponse(w, dto.SemaineToDTO(sem))
}

func (h *Handler) GetSemaine(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt64(w, r, "id")
	if !ok {
		return
	}
	sem, err := h.container.SemaineSvc.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	jsonResponse(w, dto.SemaineToDTO(sem))
}

func (h *Handler) CreateSemaine(w http.ResponseWriter, r *http.Request) {
	var req dto.SemaineDTOReq
	if !decodeJSON(w, r, &req) {
		return
	}
	debut, fin, err := req.Dates()
	if err != nil {
		ErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}
	sem, err := h.container.SemaineSvc.Create(r.Context(), req.Nom, debut, fin)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	createdResponse(w, dto.SemaineToDTO(sem))
}

// UpdateSemaine changes the dates of a week, its name is kept.
func (h *Handler) UpdateSemaine(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt64(w, r, "id")
	if !ok {
		return
	}
	var req dto.SemaineDTOReq
	if !decodeJSON(w, r, &req) {
		return
	}
	debut, fin, err := req.Dates()
	if err != nil {
		ErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}
	sem, err := h.container.SemaineSvc.Update(r.Context(), id, debut, fin)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	jsonResponse(w, dto.SemaineToDTO(sem))
}

func (h *Handler) DeleteSemaine(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt64(w, r, "id")
	if !ok {
		return
	}
	if err := h.container.SemaineSvc.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	messageResponse(w, "Semaine deleted successfully")
}

// Commentaires / Catalogue des commentaires qualité

func (h *Handler) ListCommentaires(w http.ResponseWriter, r *http.Request) {
	list, err := h.container.CommentaireSvc.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	jsonResponse(w, dto.ListToDTO(list, dto.CommentaireToDTO))
}

func (h *Handler) CreateCommentaire(w http.ResponseWriter, r *http.Request) {
	var req dto.CommentaireDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	c, err := h.container.CommentaireSvc.Create(r.Context(), req.Commentaire)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	createdResponse(w, dto.CommentaireToDTO(c))
}

func (h *Handler) GetCommentaire(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt64(w, r, "id")
	if !ok {
		return
	}
	c, err := h.container.CommentaireSvc.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	jsonResponse(w, dto.CommentaireToDTO(c))
}

func (h *Handler) UpdateCommentaire(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt64(w, r, "id")
	if !ok {
		return
	}
	var req dto.CommentaireDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	c, err := h.container.CommentaireSvc.Update(r.Context(), id, req.Commentaire)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	jsonResponse(w, dto.CommentaireToDTO(c))
}

// DeleteCommentaire fails with 409 while a non-conformity uses the comment.
func (h *Handler) DeleteCommentaire(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt64(w, r, "id")
	if !ok {
		return
	}
	if err := h.container.CommentaireSvc.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	messageResponse(w, "Commentaire deleted successfully")
}
