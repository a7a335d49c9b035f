package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	repo "storefront/internal/repository"
)

// サーバー側のお気に入り（/user/wishlist）
type WishlistUsecase struct {
	wishlistRepo repo.WishlistRepository
	productRepo  repo.ProductRepository
}

// DI
func NewWishlistUsecase(wishlistRepo repo.WishlistRepository, productRepo repo.ProductRepository) *WishlistUsecase {
	return &WishlistUsecase{wishlistRepo: wishlistRepo, productRepo: productRepo}
}

type WishlistResponse struct {
	ProductIDs []string `json:"product_ids"`
}

func (u *WishlistUsecase) List(ctx context.Context, userID string) (WishlistResponse, error) {
	if userID == "" {
		return WishlistResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	items, err := u.wishlistRepo.List(ctx, userID)
	if err != nil {
		return WishlistResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	return WishlistResponse{ProductIDs: ids}, nil
}

// 既に入っていても成功
func (u *WishlistUsecase) Add(ctx context.Context, userID string, productID string) (WishlistResponse, error) {
	if userID == "" {
		return WishlistResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return WishlistResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}

	if _, err := u.productRepo.FindByID(ctx, productID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return WishlistResponse{}, NewHTTPError(http.StatusNotFound, "not found")
		}
		return WishlistResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.wishlistRepo.Add(ctx, userID, productID); err != nil {
		return WishlistResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return u.List(ctx, userID)
}

// 無くても成功
func (u *WishlistUsecase) Remove(ctx context.Context, userID string, productID string) (WishlistResponse, error) {
	if userID == "" {
		return WishlistResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err := u.wishlistRepo.Remove(ctx, userID, productID); err != nil {
		return WishlistResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return u.List(ctx, userID)
}
