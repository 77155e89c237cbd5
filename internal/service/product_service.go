package service

import (
	"context"

	"github.com/Olprog59/go-prodtrack/internal/domain"
	"github.com/Olprog59/go-prodtrack/internal/ports"
)

// ProductService manages the (ligne, reference) catalog / Gère le catalogue (ligne, référence)
type ProductService struct {
	repo ports.ProductRepository
}

func NewProductService(repo ports.ProductRepository) *ProductService {
	return &ProductService{repo: repo}
}

func (s *ProductService) validate(ligne, reference string) (*domain.Product, error) {
	l, err := required("ligne", ligne)
	if err != nil {
		return nil, err
	}
	r, err := required("reference", reference)
	if err != nil {
		return nil, err
	}
	return &domain.Product{Ligne: l, Reference: r}, nil
}

// Create adds a reference to a line / Ajoute une référence à une ligne
func (s *ProductService) Create(ctx context.Context, ligne, reference string) (*domain.Product, error) {
	p, err := s.validate(ligne, reference)
	if err != nil {
		return nil, err
	}
	created, err := s.repo.Create(ctx, p)
	if err != nil {
		return nil, repoError("product", err)
	}
	return created, nil
}

func (s *ProductService) Get(ctx context.Context, id int64) (*domain.Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, repoError("product", err)
	}
	return p, nil
}

// List returns products, all lines when ligne is empty.
func (s *ProductService) List(ctx context.Context, ligne string) ([]*domain.Product, error) {
	list, err := s.repo.List(ctx, ligne)
	if err != nil {
		return nil, repoError("product", err)
	}
	return list, nil
}

// ListLignes returns the distinct production lines / Retourne les lignes distinctes
func (s *ProductService) ListLignes(ctx context.Context) ([]string, error) {
	lignes, err := s.repo.ListLignes(ctx)
	if err != nil {
		return nil, repoError("product", err)
	}
	return lignes, nil
}

// ListReferences returns the references made on a line / Retourne les références d'une ligne
func (s *ProductService) ListReferences(ctx context.Context, ligne string) ([]string, error) {
	l, err := required("ligne", ligne)
	if err != nil {
		return nil, err
	}
	products, err := s.repo.List(ctx, l)
	if err != nil {
		return nil, repoError("product", err)
	}
	refs := make([]string, 0, len(products))
	for _, p := range products {
		refs = append(refs, p.Reference)
	}
	return refs, nil
}

func (s *ProductService) Update(ctx context.Context, id int64, ligne, reference string) (*domain.Product, error) {
	p, err := s.validate(ligne, reference)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, repoError("product", err)
	}
	p.ID = id
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, repoError("product", err)
	}
	return s.Get(ctx, id)
}

func (s *ProductService) Delete(ctx context.Context, id int64) error {
	return repoError("product", s.repo.Delete(ctx, id))
}
