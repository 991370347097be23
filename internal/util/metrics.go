package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Total number of orders created at checkout",
	})

	OrdersFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_failed_total",
		Help: "Total number of failed checkouts",
	}, []string{"reason"})

	OrdersDeliveredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_delivered_total",
		Help: "Total number of orders marked delivered",
	})

	OrdersCancelledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_cancelled_total",
		Help: "Total number of cancelled orders",
	})

	PointsRedeemedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "loyalty_points_redeemed_total",
		Help: "Total loyalty points redeemed at checkout",
	})

	PointsAccruedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "loyalty_points_accrued_total",
		Help: "Total loyalty points credited on delivery",
	})

	ReviewsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reviews_created_total",
		Help: "Total number of reviews created",
	})
)
