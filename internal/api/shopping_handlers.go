package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/inkshelfapp/inkshelf-server/internal/domain"
	"github.com/inkshelfapp/inkshelf-server/internal/dto"
)

func (s *Server) registerShoppingRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getCart",
		Method:      http.MethodGet,
		Path:        "/api/v1/cart",
		Summary:     "Get cart",
		Description: "Returns the requester's cart with resolved books",
		Tags:        []string{"Shopping"},
	}, s.handleGetCart)

	huma.Register(s.api, huma.Operation{
		OperationID: "addToCart",
		Method:      http.MethodPost,
		Path:        "/api/v1/cart/items",
		Summary:     "Add to cart",
		Description: "Adds a book to the requester's cart",
		Tags:        []string{"Shopping"},
	}, s.handleAddToCart)

	huma.Register(s.api, huma.Operation{
		OperationID: "removeFromCart",
		Method:      http.MethodDelete,
		Path:        "/api/v1/cart/items/{bookID}",
		Summary:     "Remove from cart",
		Description: "Removes a book from the requester's cart",
		Tags:        []string{"Shopping"},
	}, s.handleRemoveFromCart)

	huma.Register(s.api, huma.Operation{
		OperationID: "getFavorites",
		Method:      http.MethodGet,
		Path:        "/api/v1/favorites",
		Summary:     "Get favorites",
		Description: "Returns the requester's favorites with resolved books",
		Tags:        []string{"Shopping"},
	}, s.handleGetFavorites)

	huma.Register(s.api, huma.Operation{
		OperationID: "addFavorite",
		Method:      http.MethodPost,
		Path:        "/api/v1/favorites/items",
		Summary:     "Add favorite",
		Description: "Adds a book to the requester's favorites",
		Tags:        []string{"Shopping"},
	}, s.handleAddFavorite)

	huma.Register(s.api, huma.Operation{
		OperationID: "removeFavorite",
		Method:      http.MethodDelete,
		Path:        "/api/v1/favorites/items/{bookID}",
		Summary:     "Remove favorite",
		Description: "Removes a book from the requester's favorites",
		Tags:        []string{"Shopping"},
	}, s.handleRemoveFavorite)

	huma.Register(s.api, huma.Operation{
		OperationID: "checkout",
		Method:      http.MethodPost,
		Path:        "/api/v1/orders",
		Summary:     "Checkout",
		Description: "Converts the requester's cart into an order with snapshot pricing",
		Tags:        []string{"Shopping"},
	}, s.handleCheckout)

	huma.Register(s.api, huma.Operation{
		OperationID: "listOrders",
		Method:      http.MethodGet,
		Path:        "/api/v1/orders",
		Summary:     "List orders",
		Description: "Returns the requester's orders, newest first",
		Tags:        []string{"Shopping"},
	}, s.handleListOrders)
}

// === DTOs ===

type RequesterInput struct {
	RequesterID string `header:"X-Requester-ID" doc:"Requesting user ID"`
}

type CartItemRequest struct {
	BookID string `json:"book_id" doc:"Book ID"`
}

type CartItemInput struct {
	RequesterID string `header:"X-Requester-ID" doc:"Requesting user ID"`
	Body        CartItemRequest
}

type CartItemPathInput struct {
	RequesterID string `header:"X-Requester-ID" doc:"Requesting user ID"`
	BookID      string `path:"bookID" doc:"Book ID"`
}

// CartResponse carries the stored membership plus the still-existing
// books resolved for display. A vanished book drops out of Books but
// never breaks the cart.
type CartResponse struct {
	BookIDs []string       `json:"book_ids" doc:"Book IDs in the cart"`
	Books   []BookResponse `json:"books" doc:"Resolved books"`
}

type CartOutput struct {
	Body CartResponse
}

// MembershipResponse is the cart or favorites membership after a mutation.
type MembershipResponse struct {
	BookIDs []string `json:"book_ids" doc:"Book IDs after the change"`
}

type MembershipOutput struct {
	Body MembershipResponse
}

type OrderLineResponse struct {
	BookID     string  `json:"book_id" doc:"Book ID at purchase time"`
	Title      string  `json:"title" doc:"Title at purchase time"`
	AuthorName string  `json:"author_name" doc:"Author name at purchase time"`
	UnitPrice  float64 `json:"unit_price" doc:"Sale price at purchase time"`
}

type OrderResponse struct {
	ID       string              `json:"id" doc:"Order ID"`
	Lines    []OrderLineResponse `json:"lines" doc:"Purchased line snapshots"`
	Total    float64             `json:"total" doc:"Order total"`
	PlacedAt time.Time           `json:"placed_at" doc:"When the order was placed"`
}

type OrderOutput struct {
	Body OrderResponse
}

type ListOrdersResponse struct {
	Orders []OrderResponse `json:"orders" doc:"Orders, newest first"`
}

type ListOrdersOutput struct {
	Body ListOrdersResponse
}

// === Handlers ===

func (s *Server) handleGetCart(ctx context.Context, input *RequesterInput) (*CartOutput, error) {
	userID, err := requireRequester(input.RequesterID)
	if err != nil {
		return nil, err
	}

	cart, books, err := s.services.Shopping.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &CartOutput{Body: mapCartResponse(cart.BookIDs, books)}, nil
}

func (s *Server) handleAddToCart(ctx context.Context, input *CartItemInput) (*MembershipOutput, error) {
	userID, err := requireRequester(input.RequesterID)
	if err != nil {
		return nil, err
	}

	cart, err := s.services.Shopping.AddToCart(ctx, userID, input.Body.BookID)
	if err != nil {
		return nil, err
	}

	return &MembershipOutput{Body: MembershipResponse{BookIDs: cart.BookIDs}}, nil
}

func (s *Server) handleRemoveFromCart(ctx context.Context, input *CartItemPathInput) (*MembershipOutput, error) {
	userID, err := requireRequester(input.RequesterID)
	if err != nil {
		return nil, err
	}

	cart, err := s.services.Shopping.RemoveFromCart(ctx, userID, input.BookID)
	if err != nil {
		return nil, err
	}

	return &MembershipOutput{Body: MembershipResponse{BookIDs: cart.BookIDs}}, nil
}

func (s *Server) handleGetFavorites(ctx context.Context, input *RequesterInput) (*CartOutput, error) {
	userID, err := requireRequester(input.RequesterID)
	if err != nil {
		return nil, err
	}

	favorites, books, err := s.services.Shopping.GetFavorites(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &CartOutput{Body: mapCartResponse(favorites.BookIDs, books)}, nil
}

func (s *Server) handleAddFavorite(ctx context.Context, input *CartItemInput) (*MembershipOutput, error) {
	userID, err := requireRequester(input.RequesterID)
	if err != nil {
		return nil, err
	}

	favorites, err := s.services.Shopping.AddFavorite(ctx, userID, input.Body.BookID)
	if err != nil {
		return nil, err
	}

	return &MembershipOutput{Body: MembershipResponse{BookIDs: favorites.BookIDs}}, nil
}

func (s *Server) handleRemoveFavorite(ctx context.Context, input *CartItemPathInput) (*MembershipOutput, error) {
	userID, err := requireRequester(input.RequesterID)
	if err != nil {
		return nil, err
	}

	favorites, err := s.services.Shopping.RemoveFavorite(ctx, userID, input.BookID)
	if err != nil {
		return nil, err
	}

	return &MembershipOutput{Body: MembershipResponse{BookIDs: favorites.BookIDs}}, nil
}

func (s *Server) handleCheckout(ctx context.Context, input *RequesterInput) (*OrderOutput, error) {
	userID, err := requireRequester(input.RequesterID)
	if err != nil {
		return nil, err
	}

	order, err := s.services.Shopping.Checkout(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &OrderOutput{Body: mapOrderResponse(order)}, nil
}

func (s *Server) handleListOrders(ctx context.Context, input *RequesterInput) (*ListOrdersOutput, error) {
	userID, err := requireRequester(input.RequesterID)
	if err != nil {
		return nil, err
	}

	orders, err := s.services.Shopping.ListOrders(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := make([]OrderResponse, len(orders))
	for i, o := range orders {
		resp[i] = mapOrderResponse(o)
	}

	return &ListOrdersOutput{Body: ListOrdersResponse{Orders: resp}}, nil
}

// === Mappers ===

func mapCartResponse(bookIDs []string, books []*dto.Book) CartResponse {
	resolved := make([]BookResponse, len(books))
	for i, b := range books {
		resolved[i] = mapBookResponse(b)
	}
	if bookIDs == nil {
		bookIDs = []string{}
	}
	return CartResponse{BookIDs: bookIDs, Books: resolved}
}

func mapOrderResponse(o *domain.Order) OrderResponse {
	lines := make([]OrderLineResponse, len(o.Lines))
	for i, l := range o.Lines {
		lines[i] = OrderLineResponse{
			BookID:     l.BookID,
			Title:      l.Title,
			AuthorName: l.AuthorName,
			UnitPrice:  l.UnitPrice,
		}
	}
	return OrderResponse{
		ID:       o.ID,
		Lines:    lines,
		Total:    o.Total,
		PlacedAt: o.PlacedAt,
	}
}
