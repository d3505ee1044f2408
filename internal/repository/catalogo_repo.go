package repository

import (
	"context"

	"cafehenola/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CatalogoRepository covers the identities balances hang from: clients,
// buyers and products.
type CatalogoRepository interface {
	CreateCliente(ctx context.Context, c *model.Cliente) error
	FindClienteByID(ctx context.Context, id uuid.UUID) (*model.Cliente, error)
	ListClientes(ctx context.Context, soloActivos bool) ([]model.Cliente, error)
	FindClienteTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Cliente, error)

	CreateComprador(ctx context.Context, c *model.Comprador) error
	ListCompradores(ctx context.Context) ([]model.Comprador, error)
	FindCompradorTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Comprador, error)

	CreateProducto(ctx context.Context, p *model.Producto) error
	FindProductoByID(ctx context.Context, id uuid.UUID) (*model.Producto, error)
	ListProductos(ctx context.Context) ([]model.Producto, error)
	FindProductoTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Producto, error)

	DB() *gorm.DB
}

type catalogoRepo struct{ db *gorm.DB }

func NewCatalogoRepository(db *gorm.DB) CatalogoRepository { return &catalogoRepo{db: db} }

func (r *catalogoRepo) DB() *gorm.DB { return r.db }

func (r *catalogoRepo) CreateCliente(ctx context.Context, c *model.Cliente) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *catalogoRepo) FindClienteByID(ctx context.Context, id uuid.UUID) (*model.Cliente, error) {
	return r.FindClienteTx(ctx, r.db, id)
}

func (r *catalogoRepo) FindClienteTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Cliente, error) {
	var c model.Cliente
	err := tx.WithContext(ctx).Where("id = ?", id).First(&c).Error
	return &c, err
}

func (r *catalogoRepo) ListClientes(ctx context.Context, soloActivos bool) ([]model.Cliente, error) {
	var out []model.Cliente
	q := r.db.WithContext(ctx).Order("nombre")
	if soloActivos {
		q = q.Where("activo = ?", true)
	}
	err := q.Find(&out).Error
	return out, err
}

func (r *catalogoRepo) CreateComprador(ctx context.Context, c *model.Comprador) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *catalogoRepo) ListCompradores(ctx context.Context) ([]model.Comprador, error) {
	var out []model.Comprador
	err := r.db.WithContext(ctx).Order("nombre").Find(&out).Error
	return out, err
}

func (r *catalogoRepo) FindCompradorTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Comprador, error) {
	var c model.Comprador
	err := tx.WithContext(ctx).Where("id = ?", id).First(&c).Error
	return &c, err
}

func (r *catalogoRepo) CreateProducto(ctx context.Context, p *model.Producto) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *catalogoRepo) FindProductoByID(ctx context.Context, id uuid.UUID) (*model.Producto, error) {
	return r.FindProductoTx(ctx, r.db, id)
}

func (r *catalogoRepo) ListProductos(ctx context.Context) ([]model.Producto, error) {
	var out []model.Producto
	err := r.db.WithContext(ctx).Order("nombre").Find(&out).Error
	return out, err
}

func (r *catalogoRepo) FindProductoTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Producto, error) {
	var p model.Producto
	err := tx.WithContext(ctx).Where("id = ?", id).First(&p).Error
	return &p, err
}
