package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/flash"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/view"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

const emptyCartMessage = "Seu carrinho está vazio."

type CartHTTP struct {
	Svc *service.CartService
}

func (h *CartHTTP) Add(c echo.Context) error {
	ctx := c.Request().Context()

	productID, err := parseID(c)
	if err != nil {
		return err
	}
	_, product, err := h.Svc.Add(ctx, identity(c).UserID, productID)
	if err != nil {
		return notFoundOr(err)
	}

	flash.Add(c, flash.Success, product.Name+" adicionado ao carrinho!")
	return redirect(c, "/")
}

func (h *CartHTTP) Remove(c echo.Context) error {
	ctx := c.Request().Context()

	productID, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.Svc.Remove(ctx, identity(c).UserID, productID); err != nil {
		if !errors.Is(err, service.ErrNotFound) {
			return err
		}
		flash.Add(c, flash.Warning, "Item não encontrado no carrinho.")
		return redirect(c, "/carrinho")
	}

	flash.Add(c, flash.Info, "Produto removido do carrinho.")
	return redirect(c, "/carrinho")
}

func (h *CartHTTP) View(c echo.Context) error {
	ctx := c.Request().Context()

	cart, err := h.Svc.View(ctx, identity(c).UserID)
	if err != nil {
		logging.FromContext(ctx).Error("view_cart_error", "status", 500, "error", err)
		return err
	}
	return render(c, http.StatusOK, "cart", "Carrinho", view.Page{Data: cart})
}

func (h *CartHTTP) Checkout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.checkout")
	userID := identity(c).UserID

	cart, err := h.Svc.View(ctx, userID)
	if err != nil {
		l.Error("checkout_error", "status", 500, "error", err)
		return err
	}
	if cart.Empty() {
		flash.Add(c, flash.Warning, emptyCartMessage)
		return redirect(c, "/")
	}

	if c.Request().Method == http.MethodGet {
		return render(c, http.StatusOK, "checkout", "Finalizar Pedido", view.Page{Data: cart})
	}

	var form service.CheckoutForm
	if err := c.Bind(&form); err != nil {
		l.Warn("checkout_error", "status", 400, "reason", "invalid form", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}

	if _, err := h.Svc.Checkout(ctx, userID, form); err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyCart):
			flash.Add(c, flash.Warning, emptyCartMessage)
			return redirect(c, "/")
		case errors.Is(err, service.ErrValidation):
			values := map[string]string{"full_name": form.FullName, "email": form.Email, "address": form.Address}
			return render(c, http.StatusOK, "checkout", "Finalizar Pedido", view.Page{Data: cart, Errors: service.FieldErrors(err), Form: values})
		default:
			return err
		}
	}

	return redirect(c, "/pedido_sucesso")
}

func (h *CartHTTP) Success(c echo.Context) error {
	return render(c, http.StatusOK, "order_success", "Pedido realizado", view.Page{})
}
