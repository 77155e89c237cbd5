package sqlstore

import (
	"context"

	"github.com/Olprog59/go-prodtrack/internal/domain"
	"github.com/Olprog59/go-prodtrack/internal/ports"
	"github.com/Olprog59/go-prodtrack/internal/repository/db"
)

var _ ports.ProductRepository = (*productRepository)(nil)

type productRepository struct {
	db          ports.DBTX
	handleError db.ErrorTranslator
}

// NewProductRepository creates product repository / Crée le repository produit
func NewProductRepository(database ports.DBTX, dialect db.ErrorTranslator) ports.ProductRepository {
	return &productRepository{db: database, handleError: translator(dialect)}
}

func (r *productRepository) Create(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	query := `INSERT INTO products (ligne, reference, created_at) VALUES (?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query, p.Ligne, p.Reference, now())
	if err != nil {
		return nil, r.handleError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, r.handleError(err)
	}
	return r.GetByID(ctx, id)
}

func (r *productRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	query := `SELECT id, ligne, reference, created_at FROM products WHERE id = ?`
	p := &domain.Product{}
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.Ligne, &p.Reference, &p.CreatedAt); err != nil {
		return nil, r.handleError(err)
	}
	return p, nil
}

func (r *productRepository) Exists(ctx context.Context, ligne, reference string) (bool, error) {
	var n int
	query := `SELECT COUNT(*) FROM products WHERE ligne = ? AND reference = ?`
	if err := r.db.QueryRowContext(ctx, query, ligne, reference).Scan(&n); err != nil {
		return false, r.handleError(err)
	}
	return n > 0, nil
}

// List returns the catalog, restricted to one line when ligne is set.
func (r *productRepository) List(ctx context.Context, ligne string) ([]*domain.Product, error) {
	w := &where{}
	w.eq("ligne", ligne)
	query := `SELECT id, ligne, reference, created_at FROM products` + w.String() + ` ORDER BY ligne, reference`
	rows, err := r.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, r.handleError(err)
	}
	defer rows.Close()

	products := make([]*domain.Product, 0)
	for rows.Next() {
		p := &domain.Product{}
		if err := rows.Scan(&p.ID, &p.Ligne, &p.Reference, &p.CreatedAt); err != nil {
			return nil, r.handleError(err)
		}
		products = append(products, p)
	}
	return products, r.handleError(rows.Err())
}

func (r *productRepository) ListLignes(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT ligne FROM products ORDER BY ligne`)
	if err != nil {
		return nil, r.handleError(err)
	}
	defer rows.Close()

	lignes := make([]string, 0)
	for rows.Next() {
		var l string
		if err := rows.Scan(&l); err != nil {
			return nil, r.handleError(err)
		}
		lignes = append(lignes, l)
	}
	return lignes, r.handleError(rows.Err())
}

func (r *productRepository) Update(ctx context.Context, p *domain.Product) error {
	query := `UPDATE products SET ligne = ?, reference = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, p.Ligne, p.Reference, p.ID)
	return r.handleError(err)
}

func (r *productRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return r.handleError(err)
	}
	return expectRows(res, r.handleError)
}
