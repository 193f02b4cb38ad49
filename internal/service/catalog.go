package service

import (
	"context"
	"errors"
	"mime/multipart"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/images"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/search"
	"github.com/Skotchmaster/storefront/internal/util"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

const (
	MaxProductNameLen = 100
	PageSize          = 20
	indexTimeout      = 5 * time.Second
)

var MinPrice = decimal.New(1, -2)

type ImageStore interface {
	Save(fh *multipart.FileHeader) (string, error)
	Delete(name string) error
}

type CatalogService struct {
	Repo   *repo.GormRepo
	Images ImageStore
	Index  search.Index
	Events events.Publisher
}

type ProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Image       *multipart.FileHeader
}

type ProductPage struct {
	Items []models.Product
	Total int64
	Page  int
	Pages int
	Query string
}

func (in *ProductInput) validate() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)

	ve := &ValidationError{}
	if in.Name == "" {
		ve.Add("name", "Informe o nome do produto.")
	} else if utf8.RuneCountInString(in.Name) > MaxProductNameLen {
		ve.Add("name", "O nome deve ter no máximo 100 caracteres.")
	}
	if in.Price.LessThan(MinPrice) {
		ve.Add("price", "O preço deve ser no mínimo 0,01.")
	} else if !in.Price.Equal(in.Price.Round(2)) {
		ve.Add("price", "O preço deve ter no máximo duas casas decimais.")
	}
	if in.Image != nil && !images.Allowed(in.Image.Filename) {
		ve.Add("image", "Apenas imagens JPG, PNG e JPEG são permitidas!")
	}
	if !ve.Empty() {
		return ve
	}
	return nil
}

func (s *CatalogService) Get(ctx context.Context, id uint) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return nil, notFound(err, "product")
	}
	return p, nil
}

func (s *CatalogService) List(ctx context.Context, page int) (*ProductPage, error) {
	from, size := util.Calculate(page, PageSize)
	total, items, err := s.Repo.ListProducts(ctx, from, size)
	if err != nil {
		return nil, err
	}
	return newPage(items, total, page, size, ""), nil
}

func (s *CatalogService) Search(ctx context.Context, q string, page int) (*ProductPage, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return newPage(nil, 0, page, PageSize, ""), nil
	}
	from, size := util.Calculate(page, PageSize)
	total, items, err := s.Index.Search(ctx, q, from, size)
	if err != nil {
		return nil, err
	}
	return newPage(items, total, page, size, q), nil
}

func (s *CatalogService) Create(ctx context.Context, in ProductInput) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.create")
	if err := in.validate(); err != nil {
		return nil, err
	}

	p := &models.Product{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price.Round(2),
		Image:       models.DefaultImage,
	}
	if in.Image != nil {
		name, err := s.saveImage(in.Image)
		if err != nil {
			return nil, err
		}
		p.Image = name
	}

	if err := s.Repo.CreateProduct(ctx, p); err != nil {
		l.Error("create_product_error", "status", 500, "error", err)
		if p.HasCustomImage() {
			_ = s.Images.Delete(p.Image)
		}
		return nil, err
	}

	s.indexed(ctx, p)
	events.Emit(ctx, s.Events, events.TopicProduct, events.Key(p.ID), events.Event{Type: events.ProductCreated, ProductID: p.ID, Total: p.Price.StringFixed(2)})
	l.Info("product_created", "product_id", p.ID)
	return p, nil
}

// Update overwrites name, description and price. A new image replaces the old
// file: the old one is removed before the new one is written.
func (s *CatalogService) Update(ctx context.Context, id uint, in ProductInput) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.update", "product_id", id)

	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	if in.Image != nil {
		if p.HasCustomImage() {
			if err := s.Images.Delete(p.Image); err != nil {
				l.Warn("old_image_delete_failed", "image", p.Image, "error", err)
			}
		}
		name, err := s.saveImage(in.Image)
		if err != nil {
			return nil, err
		}
		p.Image = name
	}

	p.Name = in.Name
	p.Description = in.Description
	p.Price = in.Price.Round(2)

	if err := s.Repo.SaveProduct(ctx, p); err != nil {
		l.Error("update_product_error", "status", 500, "error", err)
		return nil, err
	}

	s.indexed(ctx, p)
	events.Emit(ctx, s.Events, events.TopicProduct, events.Key(p.ID), events.Event{Type: events.ProductUpdated, ProductID: p.ID, Total: p.Price.StringFixed(2)})
	return p, nil
}

func (s *CatalogService) Delete(ctx context.Context, id uint) error {
	l := logging.FromContext(ctx).With("svc", "catalog.delete", "product_id", id)

	p, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if p.HasCustomImage() {
		if err := s.Images.Delete(p.Image); err != nil {
			l.Warn("image_delete_failed", "image", p.Image, "error", err)
		}
	}
	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		return notFound(err, "product")
	}

	ictx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()
	if err := s.Index.Delete(ictx, id); err != nil {
		l.Warn("index_delete_failed", "error", err)
	}
	events.Emit(ctx, s.Events, events.TopicProduct, events.Key(id), events.Event{Type: events.ProductDeleted, ProductID: id})
	return nil
}

func (s *CatalogService) saveImage(fh *multipart.FileHeader) (string, error) {
	name, err := s.Images.Save(fh)
	if errors.Is(err, images.ErrExtension) {
		return "", Invalid("image", "Apenas imagens JPG, PNG e JPEG são permitidas!")
	}
	return name, err
}

func (s *CatalogService) indexed(ctx context.Context, p *models.Product) {
	ictx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()
	if err := s.Index.Upsert(ictx, *p); err != nil {
		logging.FromContext(ctx).Warn("index_upsert_failed", "product_id", p.ID, "error", err)
	}
}

func newPage(items []models.Product, total int64, page, size int, q string) *ProductPage {
	if page < 1 {
		page = 1
	}
	pages := int((total + int64(size) - 1) / int64(size))
	if items == nil {
		items = []models.Product{}
	}
	return &ProductPage{Items: items, Total: total, Page: page, Pages: pages, Query: q}
}
