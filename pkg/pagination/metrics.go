package pagination

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	pagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "roblox_pages_total",
		Help: "Total pages read by source (network, cache)",
	}, []string{"source"})

	cursorRepeatsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "roblox_pagination_cursor_repeats_total",
		Help: "Total collections stopped because a cursor was seen twice",
	})
)
