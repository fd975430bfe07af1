package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "taller_ordenes_creadas_total",
		Help: "Work orders created",
	})

	TransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taller_transiciones_total",
		Help: "Work order transitions applied, by action",
	}, []string{"accion"})

	TransitionsRejectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "taller_transiciones_rechazadas_total",
		Help: "Work order transitions rejected by the state machine",
	})

	ExitsDeniedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "taller_salidas_denegadas_total",
		Help: "Vehicle exits denied by an active work order",
	})

	RequestErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taller_errores_total",
		Help: "Request handler errors, by resource",
	}, []string{"recurso"})
)
