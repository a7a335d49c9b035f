package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"storefront/internal/domain/model"
	"storefront/internal/metrics"
	repo "storefront/internal/repository"
)

// CartUsecase は /cart の業務ロジックです。
// 明細は (ユーザー, 商品) で1行。追加は数量加算、更新は指定値。
type CartUsecase struct {
	cartItemRepo repo.CartItemRepository
	productRepo  repo.ProductRepository
}

func NewCartUsecase(
	cartItemRepo repo.CartItemRepository,
	productRepo repo.ProductRepository,
) *CartUsecase {
	return &CartUsecase{
		cartItemRepo: cartItemRepo,
		productRepo:  productRepo,
	}
}

// price は unit_price_snapshot（追加時点の価格）を返します。
type CartItemResponse struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Image     string `json:"image"`
	Quantity  int64  `json:"quantity"`
}

type CartResponse struct {
	Items []CartItemResponse `json:"items"`
	Total int64              `json:"total"`
}

type AddCartInput struct {
	ProductID string
	Quantity  int64
}

func (u *CartUsecase) GetCart(ctx context.Context, userID string) (CartResponse, error) {
	if userID == "" {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return u.buildCartResponse(ctx, userID)
}

// AddToCart はカートに追加（同一商品は数量加算）。
func (u *CartUsecase) AddToCart(ctx context.Context, userID string, in AddCartInput) (out CartResponse, err error) {
	defer func() { metrics.RecordCartOperation("add", err) }()

	if userID == "" {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if strings.TrimSpace(in.ProductID) == "" {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}
	if in.Quantity < 1 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}

	// 商品チェック（公開のみ）
	p, err := u.activeProduct(ctx, in.ProductID)
	if err != nil {
		return CartResponse{}, err
	}

	existingQty, err := u.currentQuantity(ctx, userID, in.ProductID)
	if err != nil {
		return CartResponse{}, err
	}
	if existingQty+in.Quantity > p.Stock {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "stock exceeded")
	}

	// 追加時点の名前・価格・画像を保存
	if err := u.cartItemRepo.UpsertByUserAndProduct(ctx, snapshot(userID, p), in.Quantity); err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildCartResponse(ctx, userID)
}

// 数量を指定値にする。0なら削除。
func (u *CartUsecase) SetQuantity(ctx context.Context, userID string, productID string, qty int64) (out CartResponse, err error) {
	defer func() { metrics.RecordCartOperation("set_quantity", err) }()

	if userID == "" {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if strings.TrimSpace(productID) == "" {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}
	if qty < 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}
	if qty == 0 {
		return u.RemoveItem(ctx, userID, productID)
	}

	p, err := u.activeProduct(ctx, productID)
	if err != nil {
		return CartResponse{}, err
	}
	if qty > p.Stock {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "stock exceeded")
	}

	if err := u.cartItemRepo.SetQuantity(ctx, snapshot(userID, p), qty); err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return u.buildCartResponse(ctx, userID)
}

// 明細削除（自分のカートだけ）
func (u *CartUsecase) RemoveItem(ctx context.Context, userID string, productID string) (out CartResponse, err error) {
	defer func() { metrics.RecordCartOperation("remove", err) }()

	if userID == "" {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	err = u.cartItemRepo.DeleteByUserAndProduct(ctx, userID, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return u.buildCartResponse(ctx, userID)
}

// カートを空にする
func (u *CartUsecase) ClearCart(ctx context.Context, userID string) (out CartResponse, err error) {
	defer func() { metrics.RecordCartOperation("clear", err) }()

	if userID == "" {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err := u.cartItemRepo.ClearByUserID(ctx, userID); err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return CartResponse{Items: []CartItemResponse{}, Total: 0}, nil
}

func (u *CartUsecase) activeProduct(ctx context.Context, productID string) (model.Product, error) {
	p, err := u.productRepo.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid")
	}
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !p.IsActive {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid")
	}
	return p, nil
}

func (u *CartUsecase) currentQuantity(ctx context.Context, userID string, productID string) (int64, error) {
	items, err := u.cartItemRepo.ListByUserID(ctx, userID)
	if err != nil {
		return 0, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	for _, it := range items {
		if it.ProductID == productID {
			return it.Quantity, nil
		}
	}
	return 0, nil
}

func snapshot(userID string, p model.Product) model.CartItem {
	return model.CartItem{
		UserID:            userID,
		ProductID:         p.ID,
		Name:              p.Name,
		UnitPriceSnapshot: p.Price,
		Image:             p.Image,
	}
}

// 明細をまとめてCartResponseを作る。
func (u *CartUsecase) buildCartResponse(ctx context.Context, userID string) (CartResponse, error) {
	items, err := u.cartItemRepo.ListByUserID(ctx, userID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	respItems := make([]CartItemResponse, 0, len(items))
	var total int64 = 0

	for _, it := range items {
		respItems = append(respItems, CartItemResponse{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     it.UnitPriceSnapshot,
			Image:     it.Image,
			Quantity:  it.Quantity,
		})
		total += it.UnitPriceSnapshot * it.Quantity
	}

	return CartResponse{Items: respItems, Total: total}, nil
}
