package httpserver

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/flash"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/util"
	"github.com/Skotchmaster/storefront/internal/view"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type CatalogHTTP struct {
	Svc *service.CatalogService
}

type productFormPage struct {
	Product *models.Product
	Action  string
	Submit  string
}

func (h *CatalogHTTP) Index(c echo.Context) error {
	ctx := c.Request().Context()

	page, err := h.Svc.List(ctx, util.ParsePage(c.QueryParam("page")))
	if err != nil {
		logging.FromContext(ctx).Error("list_products_error", "status", 500, "error", err)
		return err
	}
	return render(c, http.StatusOK, "index", "Produtos", view.Page{Data: page})
}

func (h *CatalogHTTP) Search(c echo.Context) error {
	ctx := c.Request().Context()

	page, err := h.Svc.Search(ctx, c.QueryParam("q"), util.ParsePage(c.QueryParam("page")))
	if err != nil {
		logging.FromContext(ctx).Error("search_products_error", "status", 500, "error", err)
		return err
	}
	return render(c, http.StatusOK, "index", "Busca", view.Page{Data: page})
}

func (h *CatalogHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create")
	formPage := productFormPage{Action: "/adicionar_produto", Submit: "Salvar Produto"}

	if c.Request().Method == http.MethodGet {
		return render(c, http.StatusOK, "product_form", "Adicionar Produto", view.Page{Data: formPage})
	}

	in, form, errs, err := readProductForm(c)
	if err != nil {
		l.Warn("product_create_error", "status", 400, "reason", "invalid form", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	if errs != nil {
		return render(c, http.StatusOK, "product_form", "Adicionar Produto", view.Page{Data: formPage, Errors: errs, Form: form.values()})
	}

	if _, err := h.Svc.Create(ctx, in); err != nil {
		if fields := service.FieldErrors(err); fields != nil {
			return render(c, http.StatusOK, "product_form", "Adicionar Produto", view.Page{Data: formPage, Errors: fields, Form: form.values()})
		}
		return err
	}

	flash.Add(c, flash.Success, "Produto adicionado com sucesso!")
	return redirect(c, "/")
}

func (h *CatalogHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.update")

	id, err := parseID(c)
	if err != nil {
		return err
	}
	product, err := h.Svc.Get(ctx, id)
	if err != nil {
		return notFoundOr(err)
	}
	formPage := productFormPage{Product: product, Action: c.Request().URL.Path, Submit: "Atualizar Produto"}

	if c.Request().Method == http.MethodGet {
		values := map[string]string{
			"name":        product.Name,
			"description": product.Description,
			"price":       product.Price.StringFixed(2),
		}
		return render(c, http.StatusOK, "product_form", "Editar Produto", view.Page{Data: formPage, Form: values})
	}

	in, form, errs, err := readProductForm(c)
	if err != nil {
		l.Warn("product_update_error", "status", 400, "reason", "invalid form", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	if errs != nil {
		return render(c, http.StatusOK, "product_form", "Editar Produto", view.Page{Data: formPage, Errors: errs, Form: form.values()})
	}

	if _, err := h.Svc.Update(ctx, id, in); err != nil {
		if fields := service.FieldErrors(err); fields != nil {
			return render(c, http.StatusOK, "product_form", "Editar Produto", view.Page{Data: formPage, Errors: fields, Form: form.values()})
		}
		return notFoundOr(err)
	}

	flash.Add(c, flash.Success, "Produto atualizado com sucesso!")
	return redirect(c, "/")
}

func (h *CatalogHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.Svc.Delete(ctx, id); err != nil {
		return notFoundOr(err)
	}

	flash.Add(c, flash.Success, "Produto excluído com sucesso!")
	return redirect(c, "/")
}

// readProductForm binds and validates the product form. A non-nil field map
// means the form should be shown again.
func readProductForm(c echo.Context) (service.ProductInput, ProductForm, map[string]string, error) {
	var form ProductForm
	if err := c.Bind(&form); err != nil {
		return service.ProductInput{}, form, nil, err
	}

	errs := map[string]string{}
	if err := c.Validate(&form); err != nil {
		errs = fieldErrors(err, productMessages)
	}

	var price decimal.Decimal
	if _, bad := errs["price"]; !bad {
		p, err := decimal.NewFromString(strings.Replace(strings.TrimSpace(form.Price), ",", ".", 1))
		if err != nil {
			errs["price"] = "Informe um preço válido, por exemplo 10.99."
		}
		price = p
	}

	fh, err := c.FormFile("image")
	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		fh = nil
	case err != nil:
		return service.ProductInput{}, form, nil, err
	case fh.Filename == "":
		fh = nil
	}

	if len(errs) > 0 {
		return service.ProductInput{}, form, errs, nil
	}
	return service.ProductInput{Name: form.Name, Description: form.Description, Price: price, Image: fileOrNil(fh)}, form, nil, nil
}

func fileOrNil(fh *multipart.FileHeader) *multipart.FileHeader {
	if fh == nil || fh.Size == 0 {
		return nil
	}
	return fh
}

func notFoundOr(err error) error {
	if errors.Is(err, service.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	}
	return err
}
