package main

import (
	"github.com/hibiken/asynq"

	cartJob "shop-backend/internal/domains/cart/job"
	catalogJob "shop-backend/internal/domains/catalog/job"
	couponJob "shop-backend/internal/domains/coupon/job"
	orderJob "shop-backend/internal/domains/order/job"
	paymentJob "shop-backend/internal/domains/payment/job"
	"shop-backend/internal/shared"
	"shop-backend/pkg/container"
)

// HandlerRegistry holds every background task handler.
type HandlerRegistry struct {
	orderConfirmation *orderJob.ConfirmationHandler
	variantSync       *catalogJob.VariantSyncHandler
	trackCheckout     *cartJob.TrackCheckoutHandler
	expiredCoupons    *couponJob.ExpiredCouponHandler
	expiredPayments   *paymentJob.ExpiredPaymentHandler
}

func initializeHandlers(c *container.Container) *HandlerRegistry {
	return &HandlerRegistry{
		orderConfirmation: orderJob.NewConfirmationHandler(),
		variantSync:       catalogJob.NewVariantSyncHandler(c.CatalogService),
		trackCheckout:     cartJob.NewTrackCheckoutHandler(),
		expiredCoupons:    couponJob.NewExpiredCouponHandler(c.CouponService, c.Config.Job.ExpiredCouponBatch),
		expiredPayments:   paymentJob.NewExpiredPaymentHandler(c.PaymentService),
	}
}

func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(shared.TypeOrderConfirmation, h.orderConfirmation.ProcessTask)
	mux.HandleFunc(shared.TypeInventorySync, h.variantSync.ProcessTask)
	mux.HandleFunc(shared.TypeTrackCheckout, h.trackCheckout.ProcessTask)
	mux.HandleFunc(shared.TypeDeactivateExpiredCoupons, h.expiredCoupons.ProcessTask)
	mux.HandleFunc(shared.TypeCancelExpiredPayments, h.expiredPayments.ProcessTask)
}
