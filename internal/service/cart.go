package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type CartService struct {
	Repo     *repo.GormRepo
	Events   events.Publisher
	Validate *validator.Validate
}

type CartLine struct {
	Product  models.Product
	Quantity uint
	Subtotal decimal.Decimal
}

// CartView is the priced content of a cart, lines ordered by product id.
type CartView struct {
	Lines []CartLine
	Total decimal.Decimal
}

func (v *CartView) Empty() bool { return len(v.Lines) == 0 }

func (v *CartView) Get(productID uint) (CartLine, bool) {
	for _, line := range v.Lines {
		if line.Product.ID == productID {
			return line, true
		}
	}
	return CartLine{}, false
}

// Count is the number of units in the cart.
func (v *CartView) Count() uint {
	var n uint
	for _, line := range v.Lines {
		n += line.Quantity
	}
	return n
}

type CheckoutForm struct {
	FullName string `form:"full_name" validate:"required"`
	Email    string `form:"email"     validate:"required,email"`
	Address  string `form:"address"   validate:"required,min=10"`
}

type Receipt struct {
	FullName string
	Email    string
	Items    uint
	Total    decimal.Decimal
}

var checkoutMessages = map[string]string{
	"FullName.required": "Informe seu nome completo.",
	"Email.required":    "Informe seu email.",
	"Email.email":       "Informe um email válido.",
	"Address.required":  "Informe o endereço de entrega.",
	"Address.min":       "O endereço deve ter pelo menos 10 caracteres.",
}

var checkoutFields = map[string]string{"FullName": "full_name", "Email": "email", "Address": "address"}

var defaultValidate = validator.New()

func (s *CartService) checker() *validator.Validate {
	if s.Validate == nil {
		return defaultValidate
	}
	return s.Validate
}

// Add puts one unit of the product into the user's cart.
func (s *CartService) Add(ctx context.Context, userID, productID uint) (*models.CartItem, *models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, productID)
	if err != nil {
		return nil, nil, notFound(err, "product")
	}

	item, err := s.Repo.AddToCart(ctx, userID, productID)
	if err != nil {
		logging.FromContext(ctx).Error("add_to_cart_error", "status", 500, "product_id", productID, "error", err)
		return nil, nil, err
	}

	events.Emit(ctx, s.Events, events.TopicCart, events.Key(userID), events.Event{
		Type: events.CartItemAdded, UserID: userID, ProductID: productID, Quantity: item.Quantity,
	})
	return item, p, nil
}

func (s *CartService) Remove(ctx context.Context, userID, productID uint) error {
	if err := s.Repo.DeleteCartItem(ctx, userID, productID); err != nil {
		return notFound(err, "cart item")
	}
	events.Emit(ctx, s.Events, events.TopicCart, events.Key(userID), events.Event{
		Type: events.CartItemRemoved, UserID: userID, ProductID: productID,
	})
	return nil
}

func (s *CartService) View(ctx context.Context, userID uint) (*CartView, error) {
	items, err := s.Repo.FindCartItemsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	view := &CartView{Lines: make([]CartLine, 0, len(items)), Total: decimal.Zero}
	for _, it := range items {
		if it.Product == nil {
			continue
		}
		sub := it.Product.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
		view.Lines = append(view.Lines, CartLine{Product: *it.Product, Quantity: it.Quantity, Subtotal: sub})
		view.Total = view.Total.Add(sub)
	}
	return view, nil
}

// Checkout validates the delivery form and clears the whole cart in one statement.
// Nothing is persisted about the order itself.
func (s *CartService) Checkout(ctx context.Context, userID uint, form CheckoutForm) (*Receipt, error) {
	l := logging.FromContext(ctx).With("svc", "cart.checkout")

	view, err := s.View(ctx, userID)
	if err != nil {
		return nil, err
	}
	if view.Empty() {
		return nil, ErrEmptyCart
	}

	form.FullName = strings.TrimSpace(form.FullName)
	form.Email = strings.TrimSpace(form.Email)
	form.Address = strings.TrimSpace(form.Address)
	if err := s.validateCheckout(form); err != nil {
		return nil, err
	}

	if _, err := s.Repo.DeleteCartItemsByUser(ctx, userID); err != nil {
		l.Error("checkout_error", "status", 500, "reason", "cannot clear cart", "error", err)
		return nil, err
	}

	receipt := &Receipt{FullName: form.FullName, Email: form.Email, Items: view.Count(), Total: view.Total}
	l.Info("order_received", "name", form.FullName, "email", form.Email, "total", view.Total.StringFixed(2), "items", receipt.Items)
	events.Emit(ctx, s.Events, events.TopicOrder, events.Key(userID), events.Event{
		Type: events.OrderPlaced, UserID: userID, Items: len(view.Lines), Total: view.Total.StringFixed(2),
	})
	return receipt, nil
}

func (s *CartService) validateCheckout(form CheckoutForm) error {
	err := s.checker().Struct(form)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	ve := &ValidationError{}
	for _, fe := range verrs {
		msg, ok := checkoutMessages[fe.Field()+"."+fe.Tag()]
		if !ok {
			msg = "Valor inválido."
		}
		ve.Add(checkoutFields[fe.Field()], msg)
	}
	return ve
}
